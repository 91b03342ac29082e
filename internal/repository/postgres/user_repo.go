// internal/repository/postgres/user_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, username, password_hash, role, name, email, mobile, manager_id, is_active, last_login_at, created_at`

func scanUser(row pgx.Row) (*user.User, error) {
	var u user.User
	err := row.Scan(
		&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name, &u.Email,
		&u.Mobile, &u.ManagerID, &u.IsActive, &u.LastLoginAt, &u.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return &u, nil
}

// Create inserts a new user. Username collisions surface as ErrConflict.
func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	query := `
		INSERT INTO users (username, password_hash, role, name, email, mobile, manager_id, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		u.Username, u.PasswordHash, u.Role, u.Name, u.Email, u.Mobile, u.ManagerID, u.IsActive,
	).Scan(&u.ID, &u.CreatedAt)

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return xerrors.ErrConflict
	}
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, id))
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*user.User, error) {
	query := fmt.Sprintf(`SELECT %s FROM users WHERE username = $1`, userColumns)
	return scanUser(r.db.QueryRow(ctx, query, username))
}

// List retrieves users, optionally filtered by role.
func (r *UserRepository) List(ctx context.Context, role user.Role) ([]user.User, error) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	if role != "" {
		conditions = append(conditions, "role = $1")
		args = append(args, role)
	}

	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE %s
		ORDER BY created_at, id
	`, userColumns, strings.Join(conditions, " AND "))

	return r.queryUsers(ctx, query, args...)
}

// ListActiveByRole retrieves active users of a role in stable creation order.
// The assignment engine relies on this ordering for round-robin selection.
func (r *UserRepository) ListActiveByRole(ctx context.Context, role user.Role) ([]user.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users
		WHERE role = $1 AND is_active = true
		ORDER BY created_at, id
	`, userColumns)

	return r.queryUsers(ctx, query, role)
}

// ListActiveExecutivesForManager retrieves the manager's active executives
// through the manager_executives mapping table, in stable creation order.
func (r *UserRepository) ListActiveExecutivesForManager(ctx context.Context, managerID int64) ([]user.User, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM users u
		JOIN manager_executives me ON me.executive_id = u.id
		WHERE me.manager_id = $1 AND u.is_active = true AND u.role = 'EXECUTIVE'
		ORDER BY u.created_at, u.id
	`, prefixColumns("u", userColumns))

	return r.queryUsers(ctx, query, managerID)
}

// LinkExecutive binds an executive to a manager. Re-linking is a no-op.
func (r *UserRepository) LinkExecutive(ctx context.Context, managerID, executiveID int64) error {
	query := `
		INSERT INTO manager_executives (manager_id, executive_id)
		VALUES ($1, $2)
		ON CONFLICT (manager_id, executive_id) DO NOTHING
	`
	_, err := r.db.Exec(ctx, query, managerID, executiveID)
	if err != nil {
		return fmt.Errorf("failed to link executive to manager: %w", err)
	}
	return nil
}

func (r *UserRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return count, nil
}

func (r *UserRepository) UpdateLastLogin(ctx context.Context, id int64) error {
	_, err := r.db.Exec(ctx, `UPDATE users SET last_login_at = $1 WHERE id = $2`, time.Now(), id)
	return err
}

func (r *UserRepository) queryUsers(ctx context.Context, query string, args ...interface{}) ([]user.User, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []user.User{}
	for rows.Next() {
		var u user.User
		err := rows.Scan(
			&u.ID, &u.Username, &u.PasswordHash, &u.Role, &u.Name, &u.Email,
			&u.Mobile, &u.ManagerID, &u.IsActive, &u.LastLoginAt, &u.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func prefixColumns(alias, columns string) string {
	parts := strings.Split(columns, ", ")
	for i, p := range parts {
		parts[i] = alias + "." + p
	}
	return strings.Join(parts, ", ")
}
