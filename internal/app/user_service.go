package app

import (
	"strings"

	"template-tester-server/internal/model"
)

const searchResultLimit = 20

type UserService struct {
	users UserStore
}

func NewUserService(users UserStore) *UserService {
	return &UserService{users: users}
}

// SearchByDisplayName returns at most searchResultLimit users whose display
// name contains the query, as AuthUser projections.
func (s *UserService) SearchByDisplayName(query string) ([]model.AuthUser, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}

	users, err := s.users.SearchByDisplayName(query, searchResultLimit)
	if err != nil {
		return nil, err
	}

	views := make([]model.AuthUser, 0, len(users))
	for i := range users {
		views = append(views, *users[i].AuthView())
	}
	return views, nil
}
