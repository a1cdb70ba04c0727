package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"template-tester-server/internal/app"
	"template-tester-server/internal/model"
	"template-tester-server/internal/pkg/jwtutil"
	"template-tester-server/internal/repository"
	"template-tester-server/internal/transport/http/middleware"
)

const (
	testSecret = "handler-test-secret"
	testExpiry = time.Hour
)

type memoryUserStore struct {
	nextID uint
	byName map[string]*model.User
}

func newMemoryUserStore() *memoryUserStore {
	return &memoryUserStore{byName: map[string]*model.User{}}
}

func (s *memoryUserStore) Create(user *model.User) error {
	if _, ok := s.byName[user.Username]; ok {
		return repository.ErrDuplicateKey
	}
	s.nextID++
	user.ID = s.nextID
	copied := *user
	s.byName[user.Username] = &copied
	return nil
}

func (s *memoryUserStore) GetByUsername(username string) (*model.User, error) {
	user, ok := s.byName[username]
	if !ok {
		return nil, nil
	}
	copied := *user
	return &copied, nil
}

func (s *memoryUserStore) GetByID(id uint) (*model.User, error) {
	for _, user := range s.byName {
		if user.ID == id {
			copied := *user
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *memoryUserStore) SearchByDisplayName(query string, limit int) ([]model.User, error) {
	var out []model.User
	for _, user := range s.byName {
		if len(out) >= limit {
			break
		}
		if strings.Contains(user.DisplayName, query) {
			out = append(out, *user)
		}
	}
	return out, nil
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, model.AuthEvent) error { return nil }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := newMemoryUserStore()
	authService := app.NewAuthService(store, nopPublisher{}, nil, testSecret, testExpiry)
	userService := app.NewUserService(store)
	authHandler := NewAuthHandler(authService)
	userHandler := NewUserHandler(userService)

	router := gin.New()
	api := router.Group("/api")
	authGroup := api.Group("/auth")
	authGroup.POST("/signup", authHandler.Signup)
	authGroup.POST("/login", authHandler.Login)
	authGroup.GET("/me", middleware.AuthJWT(testSecret), authHandler.Me)

	userGroup := api.Group("/users")
	userGroup.Use(middleware.AuthJWT(testSecret))
	userGroup.GET("/search", userHandler.Search)

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewReader([]byte(body)))
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func signupAlice(t *testing.T, router *gin.Engine) (token string, userID uint) {
	t.Helper()
	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","password":"pw1secret","displayName":"Alice"}`, "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var envelope struct {
		Data struct {
			AccessToken string         `json:"accessToken"`
			User        model.AuthUser `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NotEmpty(t, envelope.Data.AccessToken)
	return envelope.Data.AccessToken, envelope.Data.User.ID
}

func TestSignupEndpoint(t *testing.T) {
	router := newTestRouter(t)

	token, userID := signupAlice(t, router)
	assert.Equal(t, uint(1), userID)

	claims, err := jwtutil.ParseToken(testSecret, token)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestSignupEndpoint_ResponseOmitsPasswordHash(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","password":"pw1secret","displayName":"Alice"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	body := strings.ToLower(rec.Body.String())
	assert.NotContains(t, body, "password")
	assert.NotContains(t, body, "hash")
}

func TestSignupEndpoint_UsernameTaken(t *testing.T) {
	router := newTestRouter(t)
	signupAlice(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup",
		`{"username":"alice","password":"pw2secret","displayName":"Alice2"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	var errBody struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &errBody))
	assert.Equal(t, "USERNAME_TAKEN", errBody.Code)
}

func TestSignupEndpoint_MalformedBody(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/signup", `{"username":"alice"}`, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginEndpoint(t *testing.T) {
	router := newTestRouter(t)
	_, userID := signupAlice(t, router)

	rec := doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"pw1secret"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data struct {
			AccessToken string         `json:"accessToken"`
			User        model.AuthUser `json:"user"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.User.ID)

	claims, err := jwtutil.ParseToken(testSecret, envelope.Data.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestLoginEndpoint_InvalidCredentials(t *testing.T) {
	router := newTestRouter(t)
	signupAlice(t, router)

	wrongPassword := doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"username":"alice","password":"wrongwrong"}`, "")
	unknownUser := doJSON(t, router, http.MethodPost, "/api/auth/login",
		`{"username":"bobby","password":"pw1secret"}`, "")

	assert.Equal(t, http.StatusUnauthorized, wrongPassword.Code)
	assert.Equal(t, http.StatusUnauthorized, unknownUser.Code)
	// Enumeration resistance: the two failures are byte-identical.
	assert.Equal(t, wrongPassword.Body.String(), unknownUser.Body.String())
}

func TestMeEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token, userID := signupAlice(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data model.AuthUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	assert.Equal(t, userID, envelope.Data.ID)
	assert.Equal(t, "alice", envelope.Data.Username)

	body := strings.ToLower(rec.Body.String())
	assert.NotContains(t, body, "password")
}

func TestMeEndpoint_MissingToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpoint_InvalidToken(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", "not-a-token")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestMeEndpoint_ExpiredToken(t *testing.T) {
	router := newTestRouter(t)
	signupAlice(t, router)

	expired, err := jwtutil.GenerateToken(testSecret, -time.Minute, 1, "alice")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", expired)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "expired")
}

func TestMeEndpoint_UserVanished(t *testing.T) {
	router := newTestRouter(t)

	// Token verifies but no such user exists in the store.
	ghost, err := jwtutil.GenerateToken(testSecret, time.Hour, 99, "ghost")
	require.NoError(t, err)

	rec := doJSON(t, router, http.MethodGet, "/api/auth/me", "", ghost)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchEndpoint(t *testing.T) {
	router := newTestRouter(t)
	token, _ := signupAlice(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/users/search?q=Alice", "", token)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope struct {
		Data []model.AuthUser `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.Len(t, envelope.Data, 1)
	assert.Equal(t, "alice", envelope.Data[0].Username)
}

func TestSearchEndpoint_RequiresAuth(t *testing.T) {
	router := newTestRouter(t)

	rec := doJSON(t, router, http.MethodGet, "/api/users/search?q=Alice", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestSearchEndpoint_EmptyQuery(t *testing.T) {
	router := newTestRouter(t)
	token, _ := signupAlice(t, router)

	rec := doJSON(t, router, http.MethodGet, "/api/users/search?q=", "", token)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
