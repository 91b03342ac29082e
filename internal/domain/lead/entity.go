package lead

import (
	"time"

	"leadflow-service/internal/domain/user"
)

type Status string

const (
	StatusNew       Status = "NEW"
	StatusFollowUp  Status = "FOLLOW_UP"
	StatusConverted Status = "CONVERTED"
	StatusClosed    Status = "CLOSED"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNew, StatusFollowUp, StatusConverted, StatusClosed:
		return true
	}
	return false
}

// Open reports whether the lead still counts towards an assignee's workload.
func (s Status) Open() bool {
	return s == StatusNew || s == StatusFollowUp
}

type Stage string

const (
	StageUnassigned        Stage = "UNASSIGNED"
	StageManagerAssigned   Stage = "MANAGER_ASSIGNED"
	StageExecutiveAssigned Stage = "EXECUTIVE_ASSIGNED"
)

type Lead struct {
	ID                  int64      `json:"id"`
	Name                string     `json:"name"`
	Mobile              string     `json:"mobile"`
	ServiceType         string     `json:"service_type"`
	City                string     `json:"city"`
	Source              string     `json:"source"`
	AssignedManagerID   *int64     `json:"assigned_manager_id,omitempty"`
	AssignedExecutiveID *int64     `json:"assigned_executive_id,omitempty"`
	AssignedBy          *int64     `json:"assigned_by,omitempty"`
	AssignmentStage     Stage      `json:"assignment_stage"`
	Status              Status     `json:"status"`
	FollowUpAt          *time.Time `json:"follow_up_at,omitempty"`
	AutoAssignLevel1    bool       `json:"auto_assign_level1"`
	AutoAssignLevel2    bool       `json:"auto_assign_level2"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// Scope narrows lead visibility to what the actor's role allows. A nil field
// means no constraint on that column.
type Scope struct {
	ManagerID   *int64
	ExecutiveID *int64
}

func ScopeFor(actor user.Actor) Scope {
	caps := actor.Role.Can()
	switch {
	case caps.SeesAllLeads:
		return Scope{}
	case caps.SeesManagedLeads:
		id := actor.ID
		return Scope{ManagerID: &id}
	default:
		id := actor.ID
		return Scope{ExecutiveID: &id}
	}
}
