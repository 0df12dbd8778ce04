package database

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/domain/repository"
)

const userColumns = `
	id, email, password_hash, first_name, last_name, date_of_birth,
	refresh_token, refresh_token_expires_at, is_deactivated, is_deleted,
	created_at, updated_at`

// pgxUserRepository implements repository.UserRepository using pgx.
type pgxUserRepository struct {
	db *pgxpool.Pool
}

// NewPgxUserRepository creates a new instance of pgxUserRepository.
func NewPgxUserRepository(db *pgxpool.Pool) repository.UserRepository {
	return &pgxUserRepository{db: db}
}

func (r *pgxUserRepository) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`
	_, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, user.DateOfBirth,
		user.RefreshToken, user.RefreshTokenExpiresAt, user.IsDeactivated, user.IsDeleted,
		user.CreatedAt, user.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			if strings.Contains(pgErr.ConstraintName, "users_email_key") {
				return domainErrors.ErrEmailExists
			}
			return fmt.Errorf("unique constraint violation: %s: %w", pgErr.ConstraintName, domainErrors.ErrConflict)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *pgxUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

func (r *pgxUserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE lower(email) = lower($1)`
	return r.scanOne(r.db.QueryRow(ctx, query, email))
}

func (r *pgxUserRepository) FindByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.scanOne(r.db.QueryRow(ctx, query, token))
}

func (r *pgxUserRepository) Update(ctx context.Context, user *models.User) error {
	query := `
		UPDATE users SET
			email = $2, password_hash = $3, first_name = $4, last_name = $5,
			date_of_birth = $6, is_deactivated = $7, is_deleted = $8, updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName,
		user.DateOfBirth, user.IsDeactivated, user.IsDeleted,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return domainErrors.ErrEmailExists
		}
		return fmt.Errorf("failed to update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// SetRefreshToken writes the session pair. The schema CHECK constraint keeps
// the two columns paired; callers pass both nil or both non-nil.
func (r *pgxUserRepository) SetRefreshToken(ctx context.Context, id uuid.UUID, token *string, expiresAt *time.Time) error {
	query := `
		UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = now()
		WHERE id = $1`
	tag, err := r.db.Exec(ctx, query, id, token, expiresAt)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

// RotateRefreshToken replaces oldToken with newToken in a single conditional
// UPDATE keyed on the stored value. Concurrent rotations of the same token
// race on this statement and exactly one of them wins.
func (r *pgxUserRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE users SET refresh_token = $2, refresh_token_expires_at = $3, updated_at = now()
		WHERE refresh_token = $1`
	tag, err := r.db.Exec(ctx, query, oldToken, newToken, expiresAt)
	if err != nil {
		return false, fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *pgxUserRepository) List(ctx context.Context, params models.ListUsersParams) ([]*models.User, int64, error) {
	var conditions []string
	var args []interface{}

	add := func(cond string, value interface{}) {
		args = append(args, value)
		conditions = append(conditions, fmt.Sprintf(cond, len(args)))
	}

	if params.Search != "" {
		add(`(lower(email) LIKE lower($%[1]d) OR lower(first_name) LIKE lower($%[1]d) OR lower(last_name) LIKE lower($%[1]d))`,
			"%"+params.Search+"%")
	}
	add(`is_deleted = $%d`, params.IsDeleted)
	add(`is_deactivated = $%d`, params.IsDeactivated)
	if params.AdminsOnly {
		add(`id IN (
			SELECT ur.user_id FROM user_roles ur
			JOIN roles r ON r.id = ur.role_id
			WHERE r.name = $%d)`, models.RoleAdmin)
	}

	where := "WHERE " + strings.Join(conditions, " AND ")

	var total int64
	countQuery := `SELECT count(*) FROM users ` + where
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count users: %w", err)
	}

	orderBy := "ORDER BY id"
	if params.OrderByName {
		orderBy = "ORDER BY first_name, last_name"
	}

	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	query := fmt.Sprintf(`SELECT %s FROM users %s %s LIMIT $%d OFFSET $%d`,
		userColumns, where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		user := &models.User{}
		if err := scanUser(rows, user); err != nil {
			return nil, 0, fmt.Errorf("failed to scan user row: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate user rows: %w", err)
	}
	return users, total, nil
}

func (r *pgxUserRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domainErrors.ErrUserNotFound
	}
	return nil
}

func (r *pgxUserRepository) scanOne(row pgx.Row) (*models.User, error) {
	user := &models.User{}
	if err := scanUser(row, user); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return user, nil
}

func scanUser(row pgx.Row, user *models.User) error {
	return row.Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FirstName, &user.LastName, &user.DateOfBirth,
		&user.RefreshToken, &user.RefreshTokenExpiresAt, &user.IsDeactivated, &user.IsDeleted,
		&user.CreatedAt, &user.UpdatedAt,
	)
}
