// internal/service/assignment/assignment.go
package assignment

import (
	"context"
	"fmt"

	domain "leadflow-service/internal/domain/assignment"
	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/notification"
	"leadflow-service/internal/domain/user"
	xerrors "leadflow-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// CandidateStore lists assignment candidates in stable creation order.
type CandidateStore interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
	ListActiveByRole(ctx context.Context, role user.Role) ([]user.User, error)
	ListActiveExecutivesForManager(ctx context.Context, managerID int64) ([]user.User, error)
}

type LeadStore interface {
	FindByID(ctx context.Context, id int64) (*lead.Lead, error)
	Update(ctx context.Context, l *lead.Lead) error
	CountOpenByManager(ctx context.Context, managerID int64) (int, error)
	CountOpenByExecutive(ctx context.Context, executiveID int64) (int, error)
}

type HistoryStore interface {
	Append(ctx context.Context, h *domain.History) error
	ListByLead(ctx context.Context, leadID int64) ([]domain.History, error)
	LatestByLevel(ctx context.Context, level domain.Level) (*domain.History, error)
	LatestExecutiveByManager(ctx context.Context, managerID int64) (*domain.History, error)
}

// Notifier delivers a notification to a user. Delivery failures must never
// fail the assignment that triggered them.
type Notifier interface {
	Notify(ctx context.Context, userID int64, notifType, title, message string, relatedLeadID *int64)
}

// Service distributes leads across managers and executives and records every
// assignment in the append-only history trail. Round-robin state is always
// derived from the latest persisted history row, never cached in memory, so
// it survives restarts and stays consistent across instances.
type Service struct {
	users    CandidateStore
	leads    LeadStore
	history  HistoryStore
	notifier Notifier
	logger   *zap.Logger
}

func NewService(users CandidateStore, leads LeadStore, history HistoryStore, notifier Notifier, logger *zap.Logger) *Service {
	return &Service{
		users:    users,
		leads:    leads,
		history:  history,
		notifier: notifier,
		logger:   logger,
	}
}

// SelectNextManager picks the active manager following the last-assigned one
// in creation order, wrapping to the first. Returns nil when no active
// manager exists.
func (s *Service) SelectNextManager(ctx context.Context) (*user.User, error) {
	candidates, err := s.users.ListActiveByRole(ctx, user.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list manager candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	last, err := s.history.LatestByLevel(ctx, domain.LevelManager)
	if err != nil {
		return nil, err
	}
	return pickAfter(candidates, last), nil
}

// SelectNextExecutive runs the same round-robin among the manager's active
// executives, keyed by the latest executive-level entry under that manager.
func (s *Service) SelectNextExecutive(ctx context.Context, managerID int64) (*user.User, error) {
	candidates, err := s.users.ListActiveExecutivesForManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executive candidates: %w", err)
	}
	if len(candidates) == 0 {
		return nil, nil
	}

	last, err := s.history.LatestExecutiveByManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return pickAfter(candidates, last), nil
}

// SelectLeastLoadedManager returns the active manager with the fewest open
// (NEW or FOLLOW_UP) leads. Ties go to the earlier candidate in creation
// order. Not wired into the create-time cascade; exposed for alternate
// assignment policies.
func (s *Service) SelectLeastLoadedManager(ctx context.Context) (*user.User, error) {
	candidates, err := s.users.ListActiveByRole(ctx, user.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list manager candidates: %w", err)
	}
	return s.leastLoaded(ctx, candidates, s.leads.CountOpenByManager)
}

func (s *Service) SelectLeastLoadedExecutive(ctx context.Context, managerID int64) (*user.User, error) {
	candidates, err := s.users.ListActiveExecutivesForManager(ctx, managerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list executive candidates: %w", err)
	}
	return s.leastLoaded(ctx, candidates, s.leads.CountOpenByExecutive)
}

func (s *Service) leastLoaded(ctx context.Context, candidates []user.User, count func(context.Context, int64) (int, error)) (*user.User, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	best := -1
	bestCount := 0
	for i := range candidates {
		n, err := count(ctx, candidates[i].ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count open leads: %w", err)
		}
		if best == -1 || n < bestCount {
			best = i
			bestCount = n
		}
	}
	return &candidates[best], nil
}

// AssignLead runs the create-time auto-assignment cascade on a freshly
// persisted lead. Missing candidates at either level leave the lead at its
// current stage without error; the cascade is best-effort by design.
func (s *Service) AssignLead(ctx context.Context, l *lead.Lead, actor user.Actor) error {
	if !l.AutoAssignLevel1 {
		return nil
	}

	mgr, err := s.SelectNextManager(ctx)
	if err != nil {
		return err
	}
	if mgr == nil {
		s.logger.Info("auto-assignment stalled: no active manager", zap.Int64("lead_id", l.ID))
		return nil
	}

	if err := s.applyAssignment(ctx, l, actorRef(actor), mgr, domain.LevelManager, nil); err != nil {
		return err
	}
	s.notifier.Notify(ctx, mgr.ID, notification.TypeLeadAssigned,
		"New Lead Assigned", fmt.Sprintf("You have been assigned lead: %s", l.Name), &l.ID)

	if !l.AutoAssignLevel2 {
		return nil
	}

	exec, err := s.SelectNextExecutive(ctx, mgr.ID)
	if err != nil {
		return err
	}
	if exec == nil {
		s.logger.Info("auto-assignment stalled: manager has no active executives",
			zap.Int64("lead_id", l.ID), zap.Int64("manager_id", mgr.ID))
		return nil
	}

	from := participant{id: mgr.ID, role: user.RoleManager}
	if err := s.applyAssignment(ctx, l, from, exec, domain.LevelExecutive, nil); err != nil {
		return err
	}
	s.notifier.Notify(ctx, exec.ID, notification.TypeLeadAssigned,
		"New Lead Assigned", fmt.Sprintf("You have been assigned lead: %s", l.Name), &l.ID)

	return nil
}

// ManualAssignManager reassigns the lead to a manager. Admin only.
func (s *Service) ManualAssignManager(ctx context.Context, leadID, managerID int64, reason string, actor user.Actor) (*lead.Lead, error) {
	if !actor.Role.Can().CanAssignManager {
		return nil, xerrors.ErrForbidden
	}

	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	target, err := s.validTarget(ctx, managerID, user.RoleManager)
	if err != nil {
		return nil, err
	}

	if err := s.applyAssignment(ctx, l, actorRef(actor), target, domain.LevelManager, optional(reason)); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, target.ID, notification.TypeLeadReassigned,
		"Lead Reassigned", fmt.Sprintf("Lead %s has been assigned to you", l.Name), &l.ID)

	return l, nil
}

// ManualAssignExecutive reassigns the lead to an executive. Permitted for
// Admin, or for the manager currently owning the lead.
func (s *Service) ManualAssignExecutive(ctx context.Context, leadID, executiveID int64, reason string, actor user.Actor) (*lead.Lead, error) {
	if !actor.Role.Can().CanAssignExecutive {
		return nil, xerrors.ErrForbidden
	}

	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}

	if actor.Role == user.RoleManager {
		if l.AssignedManagerID == nil || *l.AssignedManagerID != actor.ID {
			return nil, xerrors.ErrForbidden
		}
	}

	target, err := s.validTarget(ctx, executiveID, user.RoleExecutive)
	if err != nil {
		return nil, err
	}

	if err := s.applyAssignment(ctx, l, actorRef(actor), target, domain.LevelExecutive, optional(reason)); err != nil {
		return nil, err
	}
	s.notifier.Notify(ctx, target.ID, notification.TypeLeadReassigned,
		"Lead Reassigned", fmt.Sprintf("Lead %s has been assigned to you", l.Name), &l.ID)

	return l, nil
}

// History returns the lead's full audit trail. Admin sees any lead; a
// manager only leads currently assigned to them.
func (s *Service) History(ctx context.Context, leadID int64, actor user.Actor) ([]domain.History, error) {
	caps := actor.Role.Can()
	if !caps.CanViewLeadHistory {
		return nil, xerrors.ErrForbidden
	}

	l, err := s.leads.FindByID(ctx, leadID)
	if err != nil {
		return nil, err
	}
	if caps.SeesManagedLeads {
		if l.AssignedManagerID == nil || *l.AssignedManagerID != actor.ID {
			return nil, xerrors.ErrForbidden
		}
	}

	return s.history.ListByLead(ctx, leadID)
}

// participant identifies one side of an assignment for the audit entry.
type participant struct {
	id   int64
	role user.Role
}

func actorRef(actor user.Actor) participant {
	return participant{id: actor.ID, role: actor.Role}
}

// applyAssignment writes the lead row first, then appends the history entry.
// The history row is the round-robin cursor, so it must only exist for
// assignments that actually landed on the lead.
func (s *Service) applyAssignment(ctx context.Context, l *lead.Lead, from participant, to *user.User, level domain.Level, reason *string) error {
	fromID := from.id

	switch level {
	case domain.LevelManager:
		l.AssignedManagerID = &to.ID
		l.AssignmentStage = lead.StageManagerAssigned
	case domain.LevelExecutive:
		l.AssignedExecutiveID = &to.ID
		l.AssignmentStage = lead.StageExecutiveAssigned
	}
	l.AssignedBy = &fromID

	if err := s.leads.Update(ctx, l); err != nil {
		return fmt.Errorf("failed to store assignment: %w", err)
	}

	h := &domain.History{
		LeadID:     l.ID,
		FromRoleID: &fromID,
		FromRole:   from.role,
		ToRoleID:   to.ID,
		ToRole:     to.Role,
		Level:      level,
		Reason:     reason,
	}
	if err := s.history.Append(ctx, h); err != nil {
		return fmt.Errorf("failed to record assignment history: %w", err)
	}
	return nil
}

func (s *Service) validTarget(ctx context.Context, id int64, role user.Role) (*user.User, error) {
	target, err := s.users.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if target.Role != role {
		return nil, xerrors.Field("user_id", fmt.Sprintf("user is not a %s", role))
	}
	if !target.IsActive {
		return nil, xerrors.Field("user_id", "user is not active")
	}
	return target, nil
}

// pickAfter implements the round-robin step: the candidate following the last
// assignee in order, wrapping around. A missing or since-deactivated last
// assignee falls back to the first candidate.
func pickAfter(candidates []user.User, last *domain.History) *user.User {
	if last == nil {
		return &candidates[0]
	}
	for i := range candidates {
		if candidates[i].ID == last.ToRoleID {
			return &candidates[(i+1)%len(candidates)]
		}
	}
	return &candidates[0]
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
