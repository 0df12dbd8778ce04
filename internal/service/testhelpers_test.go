package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/clearpath/auth-service/internal/config"
	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/models"
)

// memUserRepo is an in-memory UserRepository with real rotate-on-use
// semantics, so session-lifecycle behavior is exercised against actual state.
type memUserRepo struct {
	mu    sync.Mutex
	users map[uuid.UUID]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[uuid.UUID]*models.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *models.User) error {
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

func (r *memUserRepo) FindByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) FindByEmail(_ context.Context, email string) (*models.User, error) {
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

func (r *memUserRepo) FindByRefreshToken(_ context.Context, token string) (*models.User, error) {
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

func (r *memUserRepo) Update(_ context.Context, user *models.User) error {
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

func (r *memUserRepo) SetRefreshToken(_ context.Context, id uuid.UUID, token *string, expiresAt *time.Time) error {
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

func (r *memUserRepo) RotateRefreshToken(_ context.Context, oldToken, newToken string, expiresAt time.Time) (bool, error) {
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

func (r *memUserRepo) List(_ context.Context, params models.ListUsersParams) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var all []*models.User
	for _, u := range r.users {
		if u.IsDeleted != params.IsDeleted || u.IsDeactivated != params.IsDeactivated {
			continue
		}
		if params.Search != "" && !strings.Contains(strings.ToLower(u.Email), strings.ToLower(params.Search)) {
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

func (r *memUserRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return domainErrors.ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

// storedToken peeks at the raw session state for assertions.
func (r *memUserRepo) storedToken(id uuid.UUID) (*string, *time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	return u.RefreshToken, u.RefreshTokenExpiresAt
}

// expireToken backdates the stored expiry to simulate an aged session.
func (r *memUserRepo) expireToken(id uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	past := time.Now().Add(-time.Minute)
	r.users[id].RefreshTokenExpiresAt = &past
}

// memRoleRepo is an in-memory RoleRepository.
type memRoleRepo struct {
	mu      sync.Mutex
	catalog map[string]*models.Role
	held    map[uuid.UUID]map[string]bool
}

func newMemRoleRepo() *memRoleRepo {
	r := &memRoleRepo{
		catalog: make(map[string]*models.Role),
		held:    make(map[uuid.UUID]map[string]bool),
	}
	for _, name := range models.DefaultRoles {
		r.catalog[name] = &models.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
	}
	return r
}

func (r *memRoleRepo) FindByName(_ context.Context, name string) (*models.Role, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	role, ok := r.catalog[name]
	if !ok {
		return nil, domainErrors.ErrRoleNotFound
	}
	return role, nil
}

func (r *memRoleRepo) EnsureExists(_ context.Context, names []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, name := range names {
		if _, ok := r.catalog[name]; !ok {
			r.catalog[name] = &models.Role{ID: uuid.New(), Name: name, CreatedAt: time.Now()}
		}
	}
	return nil
}

func (r *memRoleRepo) ListForUser(_ context.Context, userID uuid.UUID) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.held[userID] {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

func (r *memRoleRepo) AddToUser(_ context.Context, userID uuid.UUID, roleName string) error {
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

func (r *memRoleRepo) RemoveFromUser(_ context.Context, userID uuid.UUID, roleName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.held[userID], roleName)
	return nil
}

func (r *memRoleRepo) List(_ context.Context, params models.ListRolesParams) ([]*models.Role, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var roles []*models.Role
	for _, role := range r.catalog {
		if params.Search != "" && !strings.Contains(role.Name, params.Search) {
			continue
		}
		roles = append(roles, role)
	}
	sort.Slice(roles, func(i, j int) bool { return roles[i].Name < roles[j].Name })
	return roles, int64(len(roles)), nil
}

// fakePasswordService hashes with a reversible prefix and counts verify
// calls so the constant-cost login path can be asserted.
type fakePasswordService struct {
	mu          sync.Mutex
	verifyCalls int
}

func (f *fakePasswordService) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (f *fakePasswordService) CheckPasswordHash(password, encodedHash string) (bool, error) {
	f.mu.Lock()
	f.verifyCalls++
	f.mu.Unlock()
	return encodedHash == "hashed:"+password, nil
}

func (f *fakePasswordService) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.verifyCalls
}

// fakeTokenService issues deterministic sequential tokens.
type fakeTokenService struct {
	mu      sync.Mutex
	counter int
}

func (f *fakeTokenService) next(kind string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.counter++
	return fmt.Sprintf("%s-%d", kind, f.counter)
}

func (f *fakeTokenService) GenerateAccessToken(user *models.User, roles []string) (string, time.Time, error) {
	return f.next("access"), time.Now().Add(15 * time.Minute), nil
}

func (f *fakeTokenService) ValidateAccessToken(token string) (*models.AccessTokenClaims, error) {
	return nil, domainErrors.ErrInvalidToken
}

func (f *fakeTokenService) ParseAccessTokenAllowExpired(token string) (*models.AccessTokenClaims, error) {
	return nil, domainErrors.ErrInvalidToken
}

func (f *fakeTokenService) GenerateRefreshToken() (string, error) {
	return f.next("refresh"), nil
}

func testLogger() *zap.Logger { return zap.NewNop() }

func initialAdminConfig(enabled bool, email, password string) config.InitialAdminConfig {
	return config.InitialAdminConfig{Enabled: enabled, Email: email, Password: password}
}
