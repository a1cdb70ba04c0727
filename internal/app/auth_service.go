package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"template-tester-server/internal/model"
	"template-tester-server/internal/pkg/jwtutil"
	"template-tester-server/internal/repository"
)

var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrUsernameTaken     = errors.New("username already exists")
	ErrInvalidCredential = errors.New("invalid username or password")
)

// UserStore is the persistence surface the services need. Implemented by
// repository.UserRepository.
type UserStore interface {
	Create(user *model.User) error
	GetByUsername(username string) (*model.User, error)
	GetByID(id uint) (*model.User, error)
	SearchByDisplayName(query string, limit int) ([]model.User, error)
}

type AuthEventPublisher interface {
	Publish(ctx context.Context, event model.AuthEvent) error
}

type UserCache interface {
	Get(ctx context.Context, userID uint) (*model.AuthUser, bool, error)
	Set(ctx context.Context, user *model.AuthUser) error
}

type AuthService struct {
	users         UserStore
	publisher     AuthEventPublisher
	userCache     UserCache
	jwtSecret     string
	jwtExpiration time.Duration
}

type SignupInput struct {
	Username    string
	Password    string
	DisplayName string
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	AccessToken string
	User        *model.AuthUser
}

func NewAuthService(
	users UserStore,
	publisher AuthEventPublisher,
	userCache UserCache,
	jwtSecret string,
	jwtExpiration time.Duration,
) *AuthService {
	return &AuthService{
		users:         users,
		publisher:     publisher,
		userCache:     userCache,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

func (s *AuthService) Signup(ctx context.Context, input SignupInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	displayName := strings.TrimSpace(input.DisplayName)

	if username == "" || displayName == "" || len(password) < 6 {
		return nil, ErrInvalidInput
	}

	// Advisory check only. The unique index on username is what actually
	// guards against a concurrent signup racing past this lookup.
	existing, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password failed: %w", err)
	}

	user := &model.User{
		Username:     username,
		PasswordHash: string(hash),
		DisplayName:  displayName,
	}
	if err := s.users.Create(user); err != nil {
		if errors.Is(err, repository.ErrDuplicateKey) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.AuthEventSignup, user)
	s.cacheUser(ctx, user.AuthView())

	return &AuthResult{AccessToken: token, User: user.AuthView()}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}

	// Unknown username and wrong password produce the same error so a caller
	// cannot probe which usernames exist.
	user, err := s.users.GetByUsername(username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredential
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, user.ID, user.Username)
	if err != nil {
		return nil, err
	}

	s.recordEvent(ctx, model.AuthEventLogin, user)
	s.cacheUser(ctx, user.AuthView())

	return &AuthResult{AccessToken: token, User: user.AuthView()}, nil
}

// CurrentUser resolves the AuthUser projection for a verified token subject.
// Returns nil without error when the user no longer exists.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*model.AuthUser, error) {
	if userID == 0 {
		return nil, ErrInvalidInput
	}

	if s.userCache != nil {
		cached, hit, err := s.userCache.Get(ctx, userID)
		if err != nil {
			log.Printf("user cache read failed: %v", err)
		} else if hit {
			return cached, nil
		}
	}

	user, err := s.users.GetByID(userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	view := user.AuthView()
	s.cacheUser(ctx, view)
	return view, nil
}

// Audit events are best-effort: a broker failure must not fail the request.
func (s *AuthService) recordEvent(ctx context.Context, kind string, user *model.User) {
	if s.publisher == nil {
		return
	}
	event := model.AuthEvent{
		Kind:     kind,
		UserID:   user.ID,
		Username: user.Username,
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		log.Printf("publish auth event failed: %v", err)
	}
}

func (s *AuthService) cacheUser(ctx context.Context, user *model.AuthUser) {
	if s.userCache == nil {
		return
	}
	if err := s.userCache.Set(ctx, user); err != nil {
		log.Printf("user cache write failed: %v", err)
	}
}
