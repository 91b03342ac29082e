package lead

import "time"

type CreateLeadRequest struct {
	Name             string     `json:"name" binding:"required,max=255"`
	Mobile           string     `json:"mobile" binding:"required,max=20"`
	ServiceType      string     `json:"service_type" binding:"required,max=100"`
	City             string     `json:"city" binding:"required,max=100"`
	Source           string     `json:"source" binding:"required,max=100"`
	Status           Status     `json:"status"`
	FollowUpAt       *time.Time `json:"follow_up_at"`
	AutoAssignLevel1 bool       `json:"auto_assign_level1"`
	AutoAssignLevel2 bool       `json:"auto_assign_level2"`
}

type UpdateLeadRequest struct {
	Name                *string    `json:"name" binding:"omitempty,max=255"`
	Mobile              *string    `json:"mobile" binding:"omitempty,max=20"`
	ServiceType         *string    `json:"service_type" binding:"omitempty,max=100"`
	City                *string    `json:"city" binding:"omitempty,max=100"`
	Source              *string    `json:"source" binding:"omitempty,max=100"`
	Status              *Status    `json:"status"`
	FollowUpAt          *time.Time `json:"follow_up_at"`
	AssignedManagerID   *int64     `json:"assigned_manager_id"`
	AssignedExecutiveID *int64     `json:"assigned_executive_id"`
}

type ListFilters struct {
	Status Status `form:"status"`
	Search string `form:"search"`
}

type ManualAssignRequest struct {
	UserID int64  `json:"user_id" binding:"required"`
	Reason string `json:"reason" binding:"max=200"`
}
