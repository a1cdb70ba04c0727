package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"template-tester-server/internal/model"
)

// ErrDuplicateKey reports a unique-constraint violation without leaking the
// persistence engine to callers.
var ErrDuplicateKey = errors.New("duplicate key")

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(user *model.User) error {
	if err := r.db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateKey
		}
		return fmt.Errorf("create user failed: %w", err)
	}
	return nil
}

func (r *UserRepository) GetByUsername(username string) (*model.User, error) {
	var user model.User
	if err := r.db.Where("username = ?", username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by username failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) GetByID(id uint) (*model.User, error) {
	var user model.User
	if err := r.db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query user by id failed: %w", err)
	}
	return &user, nil
}

func (r *UserRepository) SearchByDisplayName(query string, limit int) ([]model.User, error) {
	var users []model.User
	if err := r.db.
		Where("display_name LIKE ?", "%"+query+"%").
		Order("display_name").
		Limit(limit).
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("search users by display name failed: %w", err)
	}
	return users, nil
}
