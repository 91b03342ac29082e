// internal/service/lead/lead.go
package lead

import (
	"context"
	"fmt"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/note"
	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"

	"go.uber.org/zap"
)

type LeadStore interface {
	Create(ctx context.Context, l *lead.Lead) error
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
	List(ctx context.Context, scope lead.Scope, filters *lead.ListFilters) ([]lead.Lead, error)
	Update(ctx context.Context, l *lead.Lead) error
}

type NoteStore interface {
	Create(ctx context.Context, n *note.Note) error
	ListByLead(ctx context.Context, leadID int64) ([]note.WithAuthor, error)
}

// Engine runs the create-time auto-assignment cascade.
type Engine interface {
	AssignLead(ctx context.Context, l *lead.Lead, actor user.Actor) error
}

type Service struct {
	leads  LeadStore
	notes  NoteStore
	engine Engine
	logger *zap.Logger
}

func NewService(leads LeadStore, notes NoteStore, engine Engine, logger *zap.Logger) *Service {
	return &Service{
		leads:  leads,
		notes:  notes,
		engine: engine,
		logger: logger,
	}
}

// Create persists a new lead and, when the auto-assign flags are set, runs
// the assignment cascade. Cascade failures are logged, never surfaced: the
// lead itself was created and a partially assigned lead is a valid outcome.
func (s *Service) Create(ctx context.Context, actor user.Actor, req *lead.CreateLeadRequest) (*lead.Lead, error) {
	status := req.Status
	if status == "" {
		status = lead.StatusNew
	}
	if !status.Valid() {
		return nil, xerrors.Field("status", "unknown status")
	}
	if status == lead.StatusFollowUp && req.FollowUpAt == nil {
		return nil, xerrors.Field("follow_up_at", "required when status is FOLLOW_UP")
	}

	l := &lead.Lead{
		Name:             req.Name,
		Mobile:           req.Mobile,
		ServiceType:      req.ServiceType,
		City:             req.City,
		Source:           req.Source,
		AssignmentStage:  lead.StageUnassigned,
		Status:           status,
		FollowUpAt:       req.FollowUpAt,
		AutoAssignLevel1: req.AutoAssignLevel1,
		AutoAssignLevel2: req.AutoAssignLevel2,
	}

	if err := s.leads.Create(ctx, l); err != nil {
		s.logger.Error("failed to create lead", zap.Error(err))
		return nil, fmt.Errorf("failed to create lead: %w", err)
	}

	if err := s.engine.AssignLead(ctx, l, actor); err != nil {
		s.logger.Error("auto-assignment cascade failed",
			zap.Int64("lead_id", l.ID), zap.Error(err))
	}

	s.logger.Info("lead created",
		zap.Int64("lead_id", l.ID),
		zap.String("stage", string(l.AssignmentStage)),
		zap.Int64("created_by", actor.ID),
	)

	return l, nil
}

// List returns leads visible to the actor, with optional status and search
// filters composed onto the role scope.
func (s *Service) List(ctx context.Context, actor user.Actor, filters *lead.ListFilters) ([]lead.Lead, error) {
	if filters != nil && filters.Status != "" && !filters.Status.Valid() {
		return nil, xerrors.Field("status", "unknown status")
	}
	return s.leads.List(ctx, lead.ScopeFor(actor), filters)
}

func (s *Service) Get(ctx context.Context, actor user.Actor, id int64) (*lead.Lead, error) {
	l, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, l) {
		return nil, xerrors.ErrForbidden
	}
	return l, nil
}

// Update applies field changes under the role rules: executives may only
// touch their own leads and never the assignment columns; closed or
// converted leads are admin-only.
func (s *Service) Update(ctx context.Context, actor user.Actor, id int64, req *lead.UpdateLeadRequest) (*lead.Lead, error) {
	l, err := s.leads.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, l) {
		return nil, xerrors.ErrForbidden
	}

	caps := actor.Role.Can()
	if !l.Status.Open() && !caps.CanEditClosedLeads {
		return nil, xerrors.ErrForbidden
	}

	if actor.Role == user.RoleExecutive {
		if reassigns(req.AssignedManagerID, l.AssignedManagerID) ||
			reassigns(req.AssignedExecutiveID, l.AssignedExecutiveID) {
			return nil, xerrors.ErrForbidden
		}
	}

	if req.Name != nil {
		l.Name = *req.Name
	}
	if req.Mobile != nil {
		l.Mobile = *req.Mobile
	}
	if req.ServiceType != nil {
		l.ServiceType = *req.ServiceType
	}
	if req.City != nil {
		l.City = *req.City
	}
	if req.Source != nil {
		l.Source = *req.Source
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, xerrors.Field("status", "unknown status")
		}
		l.Status = *req.Status
	}
	if req.FollowUpAt != nil {
		l.FollowUpAt = req.FollowUpAt
	}
	if req.AssignedManagerID != nil {
		l.AssignedManagerID = req.AssignedManagerID
	}
	if req.AssignedExecutiveID != nil {
		l.AssignedExecutiveID = req.AssignedExecutiveID
	}

	if l.Status == lead.StatusFollowUp && l.FollowUpAt == nil {
		return nil, xerrors.Field("follow_up_at", "required when status is FOLLOW_UP")
	}

	if err := s.leads.Update(ctx, l); err != nil {
		return nil, err
	}
	return l, nil
}

// AddNote appends a note to a lead the actor can see.
func (s *Service) AddNote(ctx context.Context, actor user.Actor, leadID int64, req *note.CreateNoteRequest) (*note.Note, error) {
	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, l) {
		return nil, xerrors.ErrForbidden
	}

	n := &note.Note{
		LeadID:    leadID,
		NoteText:  req.NoteText,
		CreatedBy: actor.ID,
	}
	if err := s.notes.Create(ctx, n); err != nil {
		return nil, fmt.Errorf("failed to create note: %w", err)
	}
	return n, nil
}

func (s *Service) ListNotes(ctx context.Context, actor user.Actor, leadID int64) ([]note.WithAuthor, error) {
	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if !visibleTo(actor, l) {
		return nil, xerrors.ErrForbidden
	}
	return s.notes.ListByLead(ctx, leadID)
}

func visibleTo(actor user.Actor, l *lead.Lead) bool {
	caps := actor.Role.Can()
	switch {
	case caps.SeesAllLeads:
		return true
	case caps.SeesManagedLeads:
		return l.AssignedManagerID != nil && *l.AssignedManagerID == actor.ID
	default:
		return l.AssignedExecutiveID != nil && *l.AssignedExecutiveID == actor.ID
	}
}

// reassigns reports whether the requested value changes the current assignee.
func reassigns(requested, current *int64) bool {
	if requested == nil {
		return false
	}
	return current == nil || *requested != *current
}
