// internal/repository/postgres/assignment_history_repo.go
package postgres

import (
	"context"
	"errors"
	"fmt"

	"leadflow-service/internal/domain/assignment"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// AssignmentHistoryRepository is the only writer of the assignment audit
// trail. Rows are append-only: there is no update or delete path.
type AssignmentHistoryRepository struct {
	db *pgxpool.Pool
}

func NewAssignmentHistoryRepository(db *pgxpool.Pool) *AssignmentHistoryRepository {
	return &AssignmentHistoryRepository{db: db}
}

const historyColumns = `id, lead_id, from_role_id, from_role, to_role_id, to_role, level, reason, created_at`

func (r *AssignmentHistoryRepository) Append(ctx context.Context, h *assignment.History) error {
	query := `
		INSERT INTO assignment_history (lead_id, from_role_id, from_role, to_role_id, to_role, level, reason)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(
		ctx, query,
		h.LeadID, h.FromRoleID, h.FromRole, h.ToRoleID, h.ToRole, h.Level, h.Reason,
	).Scan(&h.ID, &h.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to append assignment history: %w", err)
	}
	return nil
}

// ListByLead returns the lead's full trail in insertion order.
func (r *AssignmentHistoryRepository) ListByLead(ctx context.Context, leadID int64) ([]assignment.History, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM assignment_history
		WHERE lead_id = $1
		ORDER BY created_at, id
	`, historyColumns)

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignment history: %w", err)
	}
	defer rows.Close()

	entries := []assignment.History{}
	for rows.Next() {
		var h assignment.History
		err := rows.Scan(
			&h.ID, &h.LeadID, &h.FromRoleID, &h.FromRole, &h.ToRoleID, &h.ToRole,
			&h.Level, &h.Reason, &h.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan assignment history: %w", err)
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

// LatestByLevel returns the most recent entry at the level, or nil when the
// trail has none. Round-robin state is derived from this query rather than
// any in-memory cursor.
func (r *AssignmentHistoryRepository) LatestByLevel(ctx context.Context, level assignment.Level) (*assignment.History, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM assignment_history
		WHERE level = $1
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, historyColumns)

	return r.latest(ctx, query, level)
}

// LatestExecutiveByManager returns the most recent executive-level entry made
// under the given manager, or nil.
func (r *AssignmentHistoryRepository) LatestExecutiveByManager(ctx context.Context, managerID int64) (*assignment.History, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM assignment_history
		WHERE level = $1 AND from_role_id = $2
		ORDER BY created_at DESC, id DESC
		LIMIT 1
	`, historyColumns)

	return r.latest(ctx, query, assignment.LevelExecutive, managerID)
}

// CountLeadsEverAssigned counts distinct leads ever routed to the executive,
// for all-time team-performance numbers.
func (r *AssignmentHistoryRepository) CountLeadsEverAssigned(ctx context.Context, executiveID int64) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `
		SELECT COUNT(DISTINCT lead_id) FROM assignment_history
		WHERE to_role_id = $1 AND level = $2
	`, executiveID, assignment.LevelExecutive).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count assigned leads: %w", err)
	}
	return count, nil
}

func (r *AssignmentHistoryRepository) latest(ctx context.Context, query string, args ...interface{}) (*assignment.History, error) {
	var h assignment.History
	err := r.db.QueryRow(ctx, query, args...).Scan(
		&h.ID, &h.LeadID, &h.FromRoleID, &h.FromRole, &h.ToRoleID, &h.ToRole,
		&h.Level, &h.Reason, &h.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find latest assignment: %w", err)
	}
	return &h, nil
}
