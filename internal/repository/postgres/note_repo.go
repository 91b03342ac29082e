// internal/repository/postgres/note_repo.go
package postgres

import (
	"context"
	"fmt"

	"leadflow-service/internal/domain/note"

	"github.com/jackc/pgx/v5/pgxpool"
)

type NoteRepository struct {
	db *pgxpool.Pool
}

func NewNoteRepository(db *pgxpool.Pool) *NoteRepository {
	return &NoteRepository{db: db}
}

func (r *NoteRepository) Create(ctx context.Context, n *note.Note) error {
	query := `
		INSERT INTO lead_notes (lead_id, note_text, created_by)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`

	err := r.db.QueryRow(ctx, query, n.LeadID, n.NoteText, n.CreatedBy).Scan(&n.ID, &n.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to create note: %w", err)
	}
	return nil
}

// ListByLead returns the lead's notes newest first, with author names joined.
func (r *NoteRepository) ListByLead(ctx context.Context, leadID int64) ([]note.WithAuthor, error) {
	query := `
		SELECT n.id, n.lead_id, n.note_text, n.created_by, n.created_at, COALESCE(u.name, '')
		FROM lead_notes n
		LEFT JOIN users u ON u.id = n.created_by
		WHERE n.lead_id = $1
		ORDER BY n.created_at DESC, n.id DESC
	`

	rows, err := r.db.Query(ctx, query, leadID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes: %w", err)
	}
	defer rows.Close()

	notes := []note.WithAuthor{}
	for rows.Next() {
		var n note.WithAuthor
		if err := rows.Scan(&n.ID, &n.LeadID, &n.NoteText, &n.CreatedBy, &n.CreatedAt, &n.AuthorName); err != nil {
			return nil, fmt.Errorf("failed to scan note: %w", err)
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}
