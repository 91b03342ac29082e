package note

import "time"

type Note struct {
	ID        int64     `json:"id"`
	LeadID    int64     `json:"lead_id"`
	NoteText  string    `json:"note_text"`
	CreatedBy int64     `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
}

// WithAuthor is the read model for listing, joined with the author's name.
type WithAuthor struct {
	Note
	AuthorName string `json:"author_name"`
}

type CreateNoteRequest struct {
	NoteText string `json:"note_text" binding:"required"`
}
