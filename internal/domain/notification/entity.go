package notification

import "time"

const (
	TypeLeadAssigned   = "LEAD_ASSIGNED"
	TypeLeadReassigned = "LEAD_REASSIGNED"
)

type Notification struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	Type          string    `json:"type"`
	Title         string    `json:"title"`
	Message       string    `json:"message"`
	RelatedLeadID *int64    `json:"related_lead_id,omitempty"`
	IsRead        bool      `json:"is_read"`
	CreatedAt     time.Time `json:"created_at"`
}
