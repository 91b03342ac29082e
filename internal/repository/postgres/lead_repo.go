// internal/repository/postgres/lead_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"leadflow-service/internal/domain/lead"
	xerrors "leadflow-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type LeadRepository struct {
	db *pgxpool.Pool
}

func NewLeadRepository(db *pgxpool.Pool) *LeadRepository {
	return &LeadRepository{db: db}
}

const leadColumns = `id, name, mobile, service_type, city, source,
	assigned_manager_id, assigned_executive_id, assigned_by, assignment_stage,
	status, follow_up_at, auto_assign_level1, auto_assign_level2, created_at, updated_at`

func (r *LeadRepository) Create(ctx context.Context, l *lead.Lead) error {
	query := `
		INSERT INTO leads (name, mobile, service_type, city, source,
			assigned_manager_id, assigned_executive_id, assigned_by, assignment_stage,
			status, follow_up_at, auto_assign_level1, auto_assign_level2)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.Name, l.Mobile, l.ServiceType, l.City, l.Source,
		l.AssignedManagerID, l.AssignedExecutiveID, l.AssignedBy, l.AssignmentStage,
		l.Status, l.FollowUpAt, l.AutoAssignLevel1, l.AutoAssignLevel2,
	).Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to create lead: %w", err)
	}
	return nil
}

func (r *LeadRepository) FindByID(ctx context.Context, id int64) (*lead.Lead, error) {
	query := fmt.Sprintf(`SELECT %s FROM leads WHERE id = $1`, leadColumns)

	var l lead.Lead
	err := r.db.QueryRow(ctx, query, id).Scan(
		&l.ID, &l.Name, &l.Mobile, &l.ServiceType, &l.City, &l.Source,
		&l.AssignedManagerID, &l.AssignedExecutiveID, &l.AssignedBy, &l.AssignmentStage,
		&l.Status, &l.FollowUpAt, &l.AutoAssignLevel1, &l.AutoAssignLevel2,
		&l.CreatedAt, &l.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find lead: %w", err)
	}
	return &l, nil
}

// List retrieves leads visible under the scope, newest first. Status and
// search filters compose with the scope conditions.
func (r *LeadRepository) List(ctx context.Context, scope lead.Scope, filters *lead.ListFilters) ([]lead.Lead, error) {
	conditions, args := scopeConditions(scope)
	argPos := len(args) + 1

	if filters != nil {
		if filters.Status != "" {
			conditions = append(conditions, fmt.Sprintf("status = $%d", argPos))
			args = append(args, filters.Status)
			argPos++
		}
		if filters.Search != "" {
			pattern := "%" + strings.ToLower(filters.Search) + "%"
			conditions = append(conditions, fmt.Sprintf(
				"(lower(name) LIKE $%d OR lower(mobile) LIKE $%d OR lower(city) LIKE $%d)",
				argPos, argPos, argPos,
			))
			args = append(args, pattern)
			argPos++
		}
	}

	query := fmt.Sprintf(`
		SELECT %s FROM leads
		WHERE %s
		ORDER BY created_at DESC, id DESC
	`, leadColumns, strings.Join(conditions, " AND "))

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list leads: %w", err)
	}
	defer rows.Close()

	leads := []lead.Lead{}
	for rows.Next() {
		var l lead.Lead
		err := rows.Scan(
			&l.ID, &l.Name, &l.Mobile, &l.ServiceType, &l.City, &l.Source,
			&l.AssignedManagerID, &l.AssignedExecutiveID, &l.AssignedBy, &l.AssignmentStage,
			&l.Status, &l.FollowUpAt, &l.AutoAssignLevel1, &l.AutoAssignLevel2,
			&l.CreatedAt, &l.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan lead: %w", err)
		}
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// Update writes the full lead row back and refreshes updated_at.
func (r *LeadRepository) Update(ctx context.Context, l *lead.Lead) error {
	query := `
		UPDATE leads SET
			name = $1, mobile = $2, service_type = $3, city = $4, source = $5,
			assigned_manager_id = $6, assigned_executive_id = $7, assigned_by = $8,
			assignment_stage = $9, status = $10, follow_up_at = $11, updated_at = NOW()
		WHERE id = $12
		RETURNING updated_at
	`

	err := r.db.QueryRow(
		ctx, query,
		l.Name, l.Mobile, l.ServiceType, l.City, l.Source,
		l.AssignedManagerID, l.AssignedExecutiveID, l.AssignedBy,
		l.AssignmentStage, l.Status, l.FollowUpAt, l.ID,
	).Scan(&l.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return xerrors.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to update lead: %w", err)
	}
	return nil
}

// CountOpenByManager counts NEW and FOLLOW_UP leads currently assigned to
// the manager. Used by the least-workload strategy.
func (r *LeadRepository) CountOpenByManager(ctx context.Context, managerID int64) (int, error) {
	return r.countOpen(ctx, "assigned_manager_id", managerID)
}

func (r *LeadRepository) CountOpenByExecutive(ctx context.Context, executiveID int64) (int, error) {
	return r.countOpen(ctx, "assigned_executive_id", executiveID)
}

func (r *LeadRepository) countOpen(ctx context.Context, column string, id int64) (int, error) {
	query := fmt.Sprintf(`
		SELECT COUNT(*) FROM leads
		WHERE %s = $1 AND status IN ('NEW', 'FOLLOW_UP')
	`, column)

	var count int
	if err := r.db.QueryRow(ctx, query, id).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count open leads: %w", err)
	}
	return count, nil
}

// CountByScope counts all leads visible under the scope, with optional extra
// predicate SQL appended by the dashboard queries below.
func (r *LeadRepository) CountByScope(ctx context.Context, scope lead.Scope) (int64, error) {
	return r.countWhere(ctx, scope, "", nil)
}

func (r *LeadRepository) CountByScopeAndStatus(ctx context.Context, scope lead.Scope, status lead.Status) (int64, error) {
	return r.countWhere(ctx, scope, "status = %s", []interface{}{status})
}

func (r *LeadRepository) CountFollowUpsBetween(ctx context.Context, scope lead.Scope, from, to time.Time) (int64, error) {
	return r.countWhere(ctx, scope, "status = 'FOLLOW_UP' AND follow_up_at >= %s AND follow_up_at < %s", []interface{}{from, to})
}

func (r *LeadRepository) CountFollowUpsBefore(ctx context.Context, scope lead.Scope, cutoff time.Time) (int64, error) {
	return r.countWhere(ctx, scope, "status = 'FOLLOW_UP' AND follow_up_at < %s", []interface{}{cutoff})
}

// CountConvertedByExecutive counts the executive's converted leads for the
// team-performance rollup.
func (r *LeadRepository) CountConvertedByExecutive(ctx context.Context, executiveID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(*) FROM leads
		WHERE assigned_executive_id = $1 AND status = 'CONVERTED'
	`, executiveID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count converted leads: %w", err)
	}
	return count, nil
}

func (r *LeadRepository) countWhere(ctx context.Context, scope lead.Scope, predicate string, extraArgs []interface{}) (int64, error) {
	conditions, args := scopeConditions(scope)

	if predicate != "" {
		placeholders := make([]interface{}, 0, len(extraArgs))
		for i := range extraArgs {
			placeholders = append(placeholders, fmt.Sprintf("$%d", len(args)+i+1))
		}
		conditions = append(conditions, fmt.Sprintf(predicate, placeholders...))
		args = append(args, extraArgs...)
	}

	query := fmt.Sprintf(`SELECT COUNT(*) FROM leads WHERE %s`, strings.Join(conditions, " AND "))

	var count int64
	if err := r.db.QueryRow(ctx, query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count leads: %w", err)
	}
	return count, nil
}

func scopeConditions(scope lead.Scope) ([]string, []interface{}) {
	conditions := []string{"TRUE"}
	args := []interface{}{}
	if scope.ManagerID != nil {
		args = append(args, *scope.ManagerID)
		conditions = append(conditions, fmt.Sprintf("assigned_manager_id = $%d", len(args)))
	}
	if scope.ExecutiveID != nil {
		args = append(args, *scope.ExecutiveID)
		conditions = append(conditions, fmt.Sprintf("assigned_executive_id = $%d", len(args)))
	}
	return conditions, args
}
