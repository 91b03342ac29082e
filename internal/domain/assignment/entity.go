package assignment

import (
	"time"

	"leadflow-service/internal/domain/user"
)

type Level string

const (
	LevelManager   Level = "MANAGER_LEVEL"
	LevelExecutive Level = "EXECUTIVE_LEVEL"
)

// History is one entry of the append-only assignment audit trail. Rows are
// never updated or deleted; the lead row itself is the only source of truth
// for the current assignee.
type History struct {
	ID         int64     `json:"id"`
	LeadID     int64     `json:"lead_id"`
	FromRoleID *int64    `json:"from_role_id,omitempty"`
	FromRole   user.Role `json:"from_role,omitempty"`
	ToRoleID   int64     `json:"to_role_id"`
	ToRole     user.Role `json:"to_role"`
	Level      Level     `json:"level"`
	Reason     *string   `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}
