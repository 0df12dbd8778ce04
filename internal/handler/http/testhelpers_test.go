package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/interfaces"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/infrastructure/security"
	"github.com/clearpath/auth-service/internal/service"
	"github.com/clearpath/auth-service/internal/utils/validation"
)

func init() {
	gin.SetMode(gin.TestMode)
	if err := validation.RegisterPasswordRule(); err != nil {
		panic(err)
	}
}

var testJWTConfig = config.JWTConfig{
	Secret:                 "test-secret-0123456789abcdef0123456789",
	Issuer:                 "auth-service",
	Audience:               "auth-service-clients",
	AccessTokenTTL:         15 * time.Minute,
	RefreshTokenTTL:        7 * 24 * time.Hour,
	RefreshTokenByteLength: 64,
}

// apiFixture wires the full router over in-memory repositories and real
// hashing and token services, so tests exercise the same request paths as
// production.
type apiFixture struct {
	router *gin.Engine
	users  *stubUserRepo
	roles  *stubRoleRepo
	tokens interfaces.TokenService
}

func newAPIFixture(t *testing.T) *apiFixture {
	t.Helper()
	log := zap.NewNop()

	users := newStubUserRepo()
	roles := newStubRoleRepo()

	passwords, err := security.NewArgon2idPasswordService(config.PasswordHashConfig{
		Memory: 8192, Iterations: 1, Parallelism: 1, SaltLength: 16, KeyLength: 32,
	})
	require.NoError(t, err)
	tokens, err := security.NewHMACTokenService(testJWTConfig)
	require.NoError(t, err)

	authSvc, err := service.NewAuthService(users, roles, passwords, tokens, testJWTConfig, log)
	require.NoError(t, err)
	profileSvc := service.NewProfileService(users, roles, passwords, log)
	adminSvc := service.NewAdminService(users, roles, passwords, log)

	cfg := &config.Config{
		JWT:    testJWTConfig,
		Cookie: config.CookieConfig{Secure: false},
		CORS:   config.CORSConfig{AllowedOrigins: []string{"http://localhost:3000"}},
	}
	cookies := NewCookieWriter(cfg.Cookie)

	router := NewRouter(RouterDeps{
		Config:  cfg,
		Logger:  log,
		Tokens:  tokens,
		Auth:    NewAuthHandler(authSvc, tokens, cookies, log),
		Profile: NewProfileHandler(profileSvc, authSvc, cookies, log),
		Admin:   NewAdminHandler(adminSvc, log),
		Health:  nil,
	})
	return &apiFixture{router: router, users: users, roles: roles, tokens: tokens}
}

func (f *apiFixture) do(t *testing.T, method, path string, body any, opts ...func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for _, opt := range opts {
		opt(req)
	}
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func withBearer(token string) func(*http.Request) {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

func withCookie(name, value string) func(*http.Request) {
	return func(req *http.Request) {
		req.AddCookie(&http.Cookie{Name: name, Value: value})
	}
}

// register creates an account through the API and returns its id.
func (f *apiFixture) registerUser(t *testing.T, email, password string) uuid.UUID {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/register", gin.H{
		"first_name": "Jamie",
		"last_name":  "Doe",
		"email":      email,
		"password":   password,
	})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp models.UserResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.ID
}

// login returns the token cookies issued for the credentials.
func (f *apiFixture) loginUser(t *testing.T, email, password string) (access, refresh *http.Cookie) {
	t.Helper()
	rec := f.do(t, http.MethodPost, "/api/auth/login", gin.H{
		"email":    email,
		"password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	for _, c := range rec.Result().Cookies() {
		switch c.Name {
		case "ACCESS_TOKEN":
			access = c
		case "REFRESH_TOKEN":
			refresh = c
		}
	}
	require.NotNil(t, access)
	require.NotNil(t, refresh)
	return access, refresh
}

// makeAdmin grants the admin role directly through the role store.
func (f *apiFixture) makeAdmin(t *testing.T, id uuid.UUID) {
	t.Helper()
	require.NoError(t, f.roles.AddToUser(context.Background(), id, models.RoleAdmin))
}

// stubUserRepo is an in-memory UserRepository for router-level tests.
type stubUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newStubUserRepo() *stubUserRepo {
	return &stubUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *stubUserRepo) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, user.Email) {
			return domainErrors.ErrEmailExists
		}
	}
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *stubUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if strings.EqualFold(u.Email, email) {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *stubUserRepo) FindByRefreshToken(_ context.Context, token string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			clone := *u
			return &clone, nil
		}
	}
	return nil, domainErrors.ErrUserNotFound
}

func (r *stubUserRepo) Update(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	for id, u := range r.users {
		if id != user.ID && strings.EqualFold(u.Email, user.Email) {
			return domainErrors.ErrEmailExists
		}
	}
	clone := *user
	clone.RefreshToken = stored.RefreshToken
	clone.RefreshTokenExpiresAt = stored.RefreshTokenExpiresAt
	r.users[user.ID] = &clone
	return nil
}

func (r *stubUserRepo) SetRefreshToken(_ context.Context, id uuid.UUID, token *string, expiresAt *time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return domainErrors.ErrUserNotFound
	}
	u.RefreshToken = token
	u.RefreshTokenExpiresAt = expiresAt
	return nil
}

func (r *stubUserRepo) RotateRefreshToken(_ context.Context, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == oldToken {
			u.RefreshToken = &newToken
			u.RefreshTokenExpiresAt = &expiresAt
			return true, nil
		}
	}
	return false, nil
}

func (r *stubUserRepo) List(_ context.Context, params models.ListUsersParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.User
	for _, u := range r.users {
		if u.IsDeleted != params.IsDeleted || u.IsDeactivated != params.IsDeactivated {
			continue
		}
		clone := *u
		all = append(all, &clone)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })
	total := int64(len(all))
	start := (params.Page - 1) * params.PageSize
	if start >= len(all) {
		return nil, total, nil
	}
	end := start + params.PageSize
	if end > len(all) {
		end = len(all)
	}
	return all[start:end], total, nil
}

func (r *stubUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domainErrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *stubUserRepo) storedToken(id uuid.UUID) *string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id].RefreshToken
}

func (r *stubUserRepo) expireToken(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	r.users[id].RefreshTokenExpiresAt = &past
}

// stubRoleRepo is an in-memory RoleRepository for router-level tests.
type stubRoleRepo struct {
	mu      sync.Mutex
	catalog map[string]*models.Role
	held    map[uuid.UUID]map[string]bool
}

func newStubRoleRepo() *stubRoleRepo {
	r := &stubRoleRepo{
		catalog: make(map[string]*models.Role),
		held:    make(map[uuid.UUID]map[string]bool),
	}
	for _, name := range models.DefaultRoles {
		r.catalog[name] = &models.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	}
	return r
}

func (r *stubRoleRepo) FindByName(_ context.Context, name string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.catalog[name]
	if !ok {
		return nil, domainErrors.ErrRoleNotFound
	}
	return role, nil
}

func (r *stubRoleRepo) EnsureExists(_ context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.catalog[name]; !ok {
			r.catalog[name] = &models.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
		}
	}
	return nil
}

func (r *stubRoleRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.held[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *stubRoleRepo) AddToUser(_ context.Context, userID uuid.UUID, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.catalog[roleName]; !ok {
		return domainErrors.ErrRoleNotFound
	}
	if r.held[userID] == nil {
		r.held[userID] = make(map[string]bool)
	}
	r.held[userID][roleName] = true
	return nil
}

func (r *stubRoleRepo) RemoveFromUser(_ context.Context, userID uuid.UUID, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held[userID], roleName)
	return nil
}

func (r *stubRoleRepo) List(_ context.Context, params models.ListRolesParams) ([]*models.Role, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roles []*models.Role
	for _, role := range r.catalog {
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, int64(len(roles)), nil
}
