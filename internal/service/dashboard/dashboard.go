// internal/service/dashboard/dashboard.go
package dashboard

import (
	"context"
	"errors"
	"time"

	"leadflow-service/internal/domain/lead"
	"leadflow-service/internal/domain/user"

	"github.com/jackc/pgx/v5/pgconn"
	"go.uber.org/zap"
)

type LeadCounter interface {
	CountByScope(ctx context.Context, scope lead.Scope) (int64, error)
	CountByScopeAndStatus(ctx context.Context, scope lead.Scope, status lead.Status) (int64, error)
	CountFollowUpsBetween(ctx context.Context, scope lead.Scope, from, to time.Time) (int64, error)
	CountFollowUpsBefore(ctx context.Context, scope lead.Scope, cutoff time.Time) (int64, error)
	CountConvertedByExecutive(ctx context.Context, executiveID int64) (int64, error)
}

type TeamStore interface {
	ListActiveByRole(ctx context.Context, role user.Role) ([]user.User, error)
	ListActiveExecutivesForManager(ctx context.Context, managerID int64) ([]user.User, error)
}

type AssignmentCounter interface {
	CountLeadsEverAssigned(ctx context.Context, executiveID int64) (int64, error)
}

type ExecutivePerformance struct {
	ExecutiveID    int64  `json:"executive_id"`
	Name           string `json:"name"`
	AssignedCount  int64  `json:"assigned_count"`
	ConvertedCount int64  `json:"converted_count"`
}

type Stats struct {
	TotalLeads       int64                  `json:"total_leads"`
	TodayFollowUps   int64                  `json:"today_follow_ups"`
	OverdueFollowUps int64                  `json:"overdue_follow_ups"`
	ConvertedCount   int64                  `json:"converted_count"`
	ClosedCount      int64                  `json:"closed_count"`
	TeamPerformance  []ExecutivePerformance `json:"team_performance,omitempty"`
	Error            string                 `json:"error,omitempty"`
}

// Service computes dashboard stats live on every request. Nothing is cached.
type Service struct {
	leads   LeadCounter
	users   TeamStore
	history AssignmentCounter
	logger  *zap.Logger
}

func NewService(leads LeadCounter, users TeamStore, history AssignmentCounter, logger *zap.Logger) *Service {
	return &Service{
		leads:   leads,
		users:   users,
		history: history,
		logger:  logger,
	}
}

// Stats aggregates counts under the actor's lead-visibility scope. A schema
// mismatch from the query layer degrades to an all-zero stats object with an
// error marker instead of failing the dashboard outright.
func (s *Service) Stats(ctx context.Context, actor user.Actor) (*Stats, error) {
	scope := lead.ScopeFor(actor)

	now := time.Now()
	startOfToday := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	startOfTomorrow := startOfToday.Add(24 * time.Hour)

	stats := &Stats{}
	var err error

	if stats.TotalLeads, err = s.leads.CountByScope(ctx, scope); err != nil {
		return s.degradeOrFail(err)
	}
	if stats.TodayFollowUps, err = s.leads.CountFollowUpsBetween(ctx, scope, startOfToday, startOfTomorrow); err != nil {
		return s.degradeOrFail(err)
	}
	if stats.OverdueFollowUps, err = s.leads.CountFollowUpsBefore(ctx, scope, startOfToday); err != nil {
		return s.degradeOrFail(err)
	}
	if stats.ConvertedCount, err = s.leads.CountByScopeAndStatus(ctx, scope, lead.StatusConverted); err != nil {
		return s.degradeOrFail(err)
	}
	if stats.ClosedCount, err = s.leads.CountByScopeAndStatus(ctx, scope, lead.StatusClosed); err != nil {
		return s.degradeOrFail(err)
	}

	if actor.Role.Can().HasTeamPerformance {
		stats.TeamPerformance, err = s.teamPerformance(ctx, actor)
		if err != nil {
			return s.degradeOrFail(err)
		}
	}

	return stats, nil
}

func (s *Service) teamPerformance(ctx context.Context, actor user.Actor) ([]ExecutivePerformance, error) {
	var (
		execs []user.User
		err   error
	)
	if actor.Role == user.RoleManager {
		execs, err = s.users.ListActiveExecutivesForManager(ctx, actor.ID)
	} else {
		execs, err = s.users.ListActiveByRole(ctx, user.RoleExecutive)
	}
	if err != nil {
		return nil, err
	}

	performance := []ExecutivePerformance{}
	for _, e := range execs {
		assigned, err := s.history.CountLeadsEverAssigned(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		converted, err := s.leads.CountConvertedByExecutive(ctx, e.ID)
		if err != nil {
			return nil, err
		}
		performance = append(performance, ExecutivePerformance{
			ExecutiveID:    e.ID,
			Name:           e.Name,
			AssignedCount:  assigned,
			ConvertedCount: converted,
		})
	}
	return performance, nil
}

// degradeOrFail turns schema-mismatch errors (missing table or column) into
// a zero stats payload with an error marker; anything else propagates.
func (s *Service) degradeOrFail(err error) (*Stats, error) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "42P01" || pgErr.Code == "42703") {
		s.logger.Error("dashboard query hit schema mismatch", zap.Error(err))
		return &Stats{Error: "stats unavailable"}, nil
	}
	return nil, err
}
