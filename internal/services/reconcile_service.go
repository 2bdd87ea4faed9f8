package services

import (
	"context"
	"fmt"
	"time"

	"github.com/attendsync/server/internal/models"
	"github.com/attendsync/server/internal/observability"
	"github.com/attendsync/server/internal/repository"
)

// CheckOutStrategy decides which open session an ambiguous check-out
// closes when a prior inconsistent run left more than one open.
type CheckOutStrategy string

const (
	CloseNewest CheckOutStrategy = "newest"
	CloseOldest CheckOutStrategy = "oldest"
)

// ReconcilePolicy holds the conflict-resolution choices of the session
// state machine. The defaults mirror the observed device behavior:
// duplicate check-ins are swallowed and an ambiguous check-out closes
// the most recently created open session.
type ReconcilePolicy struct {
	CheckOut CheckOutStrategy
}

// DefaultReconcilePolicy returns the default policy
func DefaultReconcilePolicy() ReconcilePolicy {
	return ReconcilePolicy{CheckOut: CloseNewest}
}

// ReconcileResult counts the state transitions one punch caused
type ReconcileResult struct {
	SessionOpened  bool
	SessionClosed  bool
	OrphanCheckOut bool
}

// ReconcileService folds accepted punches into attendance sessions.
// State per employee is never held in memory; the open-session set is
// queried at processing time, so the machine is re-entered fresh on
// every sync pass.
type ReconcileService struct {
	sessionRepo repository.AttendanceSessionRepo
	policy      ReconcilePolicy
	logger      *observability.Logger
}

// NewReconcileService creates a new ReconcileService
func NewReconcileService(sessionRepo repository.AttendanceSessionRepo, policy ReconcilePolicy) *ReconcileService {
	if policy.CheckOut == "" {
		policy.CheckOut = CloseNewest
	}
	return &ReconcileService{
		sessionRepo: sessionRepo,
		policy:      policy,
		logger:      observability.GetLogger().WithField("service", "reconcile"),
	}
}

// Apply feeds one accepted punch into the state machine for its employee.
func (s *ReconcileService) Apply(ctx context.Context, employeeID string, direction int, at time.Time) (ReconcileResult, error) {
	var result ReconcileResult

	open, err := s.sessionRepo.GetOpenForEmployee(ctx, employeeID)
	if err != nil {
		return result, fmt.Errorf("loading open sessions: %w", err)
	}

	switch direction {
	case models.PunchIn:
		if len(open) > 0 {
			// Duplicate check-in while a session is open is swallowed,
			// not stacked.
			s.logger.WithContext(ctx).Debugf("duplicate check-in for employee %s at %s ignored", employeeID, at)
			return result, nil
		}
		session := models.NewAttendanceSession(employeeID, at)
		if err := s.sessionRepo.Add(ctx, session); err != nil {
			return result, fmt.Errorf("opening session: %w", err)
		}
		result.SessionOpened = true

	case models.PunchOut:
		if len(open) == 0 {
			// Orphan check-out with nothing to close is dropped.
			s.logger.WithContext(ctx).Warnf("orphan check-out for employee %s at %s dropped", employeeID, at)
			result.OrphanCheckOut = true
			return result, nil
		}
		target := open[len(open)-1]
		if s.policy.CheckOut == CloseOldest {
			target = open[0]
		}
		if len(open) > 1 {
			s.logger.WithContext(ctx).Warnf("employee %s has %d open sessions, closing %s per policy %q",
				employeeID, len(open), target.ID, s.policy.CheckOut)
		}
		if err := s.sessionRepo.Close(ctx, target.ID, at); err != nil {
			return result, fmt.Errorf("closing session %s: %w", target.ID, err)
		}
		result.SessionClosed = true

	default:
		// Unknown direction codes are treated like orphan punches and
		// dropped; the event row is still stored by the caller.
		s.logger.WithContext(ctx).Warnf("punch with unknown direction %d for employee %s dropped", direction, employeeID)
	}

	return result, nil
}
