package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	domainErrors "github.com/clearpath/auth-service/internal/domain/errors"
	"github.com/clearpath/auth-service/internal/domain/models"
	"github.com/clearpath/auth-service/internal/domain/repository"
)

// pgxRoleRepository implements repository.RoleRepository using pgx.
type pgxRoleRepository struct {
	db *pgxpool.Pool
}

// NewPgxRoleRepository creates a new instance of pgxRoleRepository.
func NewPgxRoleRepository(db *pgxpool.Pool) repository.RoleRepository {
	return &pgxRoleRepository{db: db}
}

func (r *pgxRoleRepository) FindByName(ctx context.Context, name string) (*models.Role, error) {
	role := &models.Role{}
	err := r.db.QueryRow(ctx,
		`SELECT id, name, created_at FROM roles WHERE name = $1`, name,
	).Scan(&role.ID, &role.Name, &role.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domainErrors.ErrRoleNotFound
		}
		return nil, fmt.Errorf("failed to find role by name: %w", err)
	}
	return role, nil
}

func (r *pgxRoleRepository) EnsureExists(ctx context.Context, names []string) error {
	for _, name := range names {
		_, err := r.db.Exec(ctx,
			`INSERT INTO roles (id, name, created_at) VALUES ($1, $2, now())
			 ON CONFLICT (name) DO NOTHING`,
			uuid.New(), name,
		)
		if err != nil {
			return fmt.Errorf("failed to ensure role %q exists: %w", name, err)
		}
	}
	return nil
}

func (r *pgxRoleRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	rows, err := r.db.Query(ctx, `
		SELECT r.name FROM roles r
		JOIN user_roles ur ON ur.role_id = r.id
		WHERE ur.user_id = $1
		ORDER BY r.name`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list roles for user: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("failed to scan role name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate role rows: %w", err)
	}
	return names, nil
}

func (r *pgxRoleRepository) AddToUser(ctx context.Context, userID uuid.UUID, roleName string) error {
	tag, err := r.db.Exec(ctx, `
		INSERT INTO user_roles (user_id, role_id)
		SELECT $1, id FROM roles WHERE name = $2
		ON CONFLICT DO NOTHING`, userID, roleName)
	if err != nil {
		return fmt.Errorf("failed to add role to user: %w", err)
	}
	// Zero rows with no conflict means the role name itself is unknown.
	if tag.RowsAffected() == 0 {
		if _, findErr := r.FindByName(ctx, roleName); findErr != nil {
			return findErr
		}
	}
	return nil
}

func (r *pgxRoleRepository) RemoveFromUser(ctx context.Context, userID uuid.UUID, roleName string) error {
	_, err := r.db.Exec(ctx, `
		DELETE FROM user_roles
		WHERE user_id = $1 AND role_id = (SELECT id FROM roles WHERE name = $2)`,
		userID, roleName)
	if err != nil {
		return fmt.Errorf("failed to remove role from user: %w", err)
	}
	return nil
}

func (r *pgxRoleRepository) List(ctx context.Context, params models.ListRolesParams) ([]*models.Role, int64, error) {
	where := ""
	var args []interface{}
	if params.Search != "" {
		where = `WHERE lower(name) LIKE lower($1)`
		args = append(args, "%"+params.Search+"%")
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM roles `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count roles: %w", err)
	}

	orderBy := "ORDER BY id"
	if params.OrderByName {
		orderBy = "ORDER BY name"
	}

	offset := (params.Page - 1) * params.PageSize
	args = append(args, params.PageSize, offset)
	query := fmt.Sprintf(`SELECT id, name, created_at FROM roles %s %s LIMIT $%d OFFSET $%d`,
		where, orderBy, len(args)-1, len(args))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list roles: %w", err)
	}
	defer rows.Close()

	var roles []*models.Role
	for rows.Next() {
		role := &models.Role{}
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt); err != nil {
			return nil, 0, fmt.Errorf("failed to scan role row: %w", err)
		}
		roles = append(roles, role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to iterate role rows: %w", err)
	}
	return roles, total, nil
}
