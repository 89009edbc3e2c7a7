package checkin

import (
	"context"
	"errors"
	"time"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/geo"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QRTokens issues and verifies time-bounded check-in tokens bound to an activity
type QRTokens interface {
	Issue(activityID uuid.UUID, now time.Time) (token string, expiresAt time.Time, err error)
	Verify(token string, activityID uuid.UUID, now time.Time) error
}

// Geofence is the set of allowed check-in locations
type Geofence struct {
	Centers  []geo.Point
	RadiusKm float64
}

// Contains reports whether p is within RadiusKm of any center
func (g Geofence) Contains(p geo.Point) bool {
	return geo.IsWithinRadius(p, g.Centers, g.RadiusKm)
}

// Settings configures the check-in rules
type Settings struct {
	Geofence Geofence
	// Location is the organization's timezone; casual check-ins are scoped
	// to its calendar day
	Location *time.Location
}

// CheckInService records activity and casual check-ins
type CheckInService struct {
	txScope         TransactionScope
	checkRecordRepo checkin.CheckRecordRepository
	qrTokens        QRTokens
	settings        Settings
	clock           shared.Clock
	logger          *zap.Logger
}

// NewCheckInService creates a new CheckInService
func NewCheckInService(
	txScope TransactionScope,
	checkRecordRepo checkin.CheckRecordRepository,
	qrTokens QRTokens,
	settings Settings,
	clock shared.Clock,
	logger *zap.Logger,
) *CheckInService {
	if settings.Location == nil {
		settings.Location = time.UTC
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CheckInService{
		txScope:         txScope,
		checkRecordRepo: checkRecordRepo,
		qrTokens:        qrTokens,
		settings:        settings,
		clock:           clock,
		logger:          logger,
	}
}

// ===================== Query Methods =====================

// GetRecord returns the effective user's record for the activity, or nil
// when they have not checked in yet
func (s *CheckInService) GetRecord(ctx context.Context, access *appactivity.Access) (*CheckRecordResponse, error) {
	r, err := s.checkRecordRepo.FindByUserAndActivity(ctx, access.EffectiveUserID, access.Activity.ID)
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	response := ToCheckRecordResponse(r, "")
	return &response, nil
}

// ListRecords returns every check record of the activity
func (s *CheckInService) ListRecords(ctx context.Context, access *appactivity.Access) ([]CheckRecordResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	records, err := s.checkRecordRepo.FindByActivity(ctx, access.Activity.ID)
	if err != nil {
		return nil, err
	}
	return ToCheckRecordResponses(records), nil
}

// ===================== Command Methods =====================

// CheckInActivity checks the effective user in, or out if they already
// have an open record. A closed record is returned unchanged.
//
// Non-managers must be inside the ongoing window and prove presence with
// coordinates inside the geofence or a valid QR token. Managers skip both.
func (s *CheckInService) CheckInActivity(ctx context.Context, access *appactivity.Access, req CheckInRequest) (*CheckRecordResponse, error) {
	a := access.Activity
	ctx, span := telemetry.StartServiceSpan(ctx, "checkin", "check_in_activity",
		telemetry.SpanAttrActivityID, a.ID,
		telemetry.SpanAttrUserID, access.EffectiveUserID,
		telemetry.SpanAttrIsManager, access.IsManager,
	)
	defer span.End()

	now := s.clock.Now()
	loc := req.Location()

	if !access.IsManager {
		if !a.IsOngoing(now, access.Policy.GracePeriod) {
			return nil, shared.ErrNotOnGoing
		}
		if err := s.verifyPresence(a.ID, loc, req.QRToken, now); err != nil {
			s.logger.Debug("Check-in rejected",
				zap.String("activity_id", a.ID.String()),
				zap.String("user_id", access.EffectiveUserID.String()),
				zap.Error(err))
			return nil, err
		}
	}

	var (
		record *checkin.CheckRecord
		action CheckInAction
	)
	err := s.withConflictRetry(ctx, func(attempt int) error {
		telemetry.SetAttributes(span, telemetry.SpanAttrAttempt, attempt)
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			repo := repos.CheckRecordRepo()
			existing, err := repo.FindByUserAndActivityForUpdate(ctx, access.EffectiveUserID, a.ID)
			// read after the lookup so a retry never stamps a time older
			// than the record it lost to
			stamp := s.clock.Now()
			if errors.Is(err, shared.ErrNotFound) {
				r, err := checkin.NewCheckRecord(a.ID, access.EffectiveUserID, stamp, loc)
				if err != nil {
					return err
				}
				if err := repo.Create(ctx, r); err != nil {
					return err
				}
				record, action = r, ActionCheckedIn
				return nil
			}
			if err != nil {
				return err
			}

			if !existing.IsOpen() {
				record, action = existing, ActionUnchanged
				return nil
			}
			if err := existing.CheckOut(stamp, loc); err != nil {
				return err
			}
			if err := repo.Update(ctx, existing); err != nil {
				return err
			}
			record, action = existing, ActionCheckedOut
			return nil
		})
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	telemetry.SetAttributes(span, telemetry.SpanAttrOutcome, string(action))
	s.logger.Info("Activity check-in recorded",
		zap.String("activity_id", a.ID.String()),
		zap.String("user_id", access.EffectiveUserID.String()),
		zap.String("actor_id", access.Actor.UserID.String()),
		zap.String("action", string(action)))

	response := ToCheckRecordResponse(record, action)
	return &response, nil
}

// CasualCheckIn toggles the actor's casual check-in for today: an open
// record from today is checked out, otherwise a new one is opened
func (s *CheckInService) CasualCheckIn(ctx context.Context, actor identity.Actor, req CasualCheckInRequest) (*CasualCheckRecordResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "checkin", "casual_check_in",
		telemetry.SpanAttrUserID, actor.UserID,
	)
	defer span.End()

	loc := req.Location()
	if loc == nil {
		return nil, shared.NewDomainError(shared.CodeMissingLocation, "Location is required")
	}
	if !s.settings.Geofence.Contains(*loc) {
		return nil, shared.ErrOutOfRange
	}

	var (
		record *checkin.CasualCheckRecord
		action CheckInAction
	)
	err := s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
		repo := repos.CasualCheckRecordRepo()
		// No row exists to lock before the first check-in of the day, so
		// serialise on the user instead
		if err := repo.LockUser(ctx, actor.UserID); err != nil {
			return err
		}
		now := s.clock.Now()
		from, to := checkin.DayBounds(now, s.settings.Location)
		open, err := repo.FindLatestOpenForUpdate(ctx, actor.UserID, from, to)
		if errors.Is(err, shared.ErrNotFound) {
			r, err := checkin.NewCasualCheckRecord(actor.UserID, now, loc)
			if err != nil {
				return err
			}
			if err := repo.Create(ctx, r); err != nil {
				return err
			}
			record, action = r, ActionCheckedIn
			return nil
		}
		if err != nil {
			return err
		}
		if err := open.CheckOut(now, loc); err != nil {
			return err
		}
		if err := repo.Update(ctx, open); err != nil {
			return err
		}
		record, action = open, ActionCheckedOut
		return nil
	})
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	s.logger.Info("Casual check-in recorded",
		zap.String("user_id", actor.UserID.String()),
		zap.String("action", string(action)))

	response := ToCasualCheckRecordResponse(record, action)
	return &response, nil
}

// ManagerCheckIn sets both timestamps of userID's record, creating it when
// missing. Geofence and window checks do not apply.
func (s *CheckInService) ManagerCheckIn(ctx context.Context, access *appactivity.Access, userID uuid.UUID, req ManagerCheckInRequest) (*CheckRecordResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	if userID == uuid.Nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "User is required")
	}
	if !req.CheckOutAt.After(req.CheckInAt) {
		return nil, shared.NewDomainError(shared.CodeInvalidRange, "Check-out time must be after check-in time")
	}
	a := access.Activity

	var record *checkin.CheckRecord
	err := s.withConflictRetry(ctx, func(int) error {
		return s.txScope.Execute(ctx, func(repos TransactionalRepositories) error {
			repo := repos.CheckRecordRepo()
			existing, err := repo.FindByUserAndActivityForUpdate(ctx, userID, a.ID)
			if errors.Is(err, shared.ErrNotFound) {
				r, err := checkin.NewCorrectedCheckRecord(a.ID, userID, req.CheckInAt, req.CheckOutAt)
				if err != nil {
					return err
				}
				if err := repo.Create(ctx, r); err != nil {
					return err
				}
				record = r
				return nil
			}
			if err != nil {
				return err
			}
			if err := existing.Correct(req.CheckInAt, req.CheckOutAt); err != nil {
				return err
			}
			if err := repo.Update(ctx, existing); err != nil {
				return err
			}
			record = existing
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Check record corrected by manager",
		zap.String("activity_id", a.ID.String()),
		zap.String("user_id", userID.String()),
		zap.String("manager_id", access.Actor.UserID.String()))

	response := ToCheckRecordResponse(record, ActionCorrected)
	return &response, nil
}

// IssueQRToken creates a check-in token for the activity
func (s *CheckInService) IssueQRToken(_ context.Context, access *appactivity.Access) (*QRTokenResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	if s.qrTokens == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "QR check-in is not configured")
	}
	token, expiresAt, err := s.qrTokens.Issue(access.Activity.ID, s.clock.Now())
	if err != nil {
		return nil, err
	}
	return &QRTokenResponse{
		ActivityID: access.Activity.ID,
		Token:      token,
		ExpiresAt:  expiresAt,
	}, nil
}

// verifyPresence accepts coordinates inside the geofence or a valid QR token
func (s *CheckInService) verifyPresence(activityID uuid.UUID, loc *geo.Point, qrToken string, now time.Time) error {
	if loc == nil && qrToken == "" {
		return shared.ErrMissingLocation
	}
	if loc != nil && s.settings.Geofence.Contains(*loc) {
		return nil
	}
	if qrToken != "" && s.qrTokens != nil {
		if err := s.qrTokens.Verify(qrToken, activityID, now); err == nil {
			return nil
		}
		return shared.NewDomainError(shared.CodeOutOfRange, "QR code is invalid or expired")
	}
	return shared.ErrOutOfRange
}

// withConflictRetry runs fn and runs it once more if it failed on a unique
// constraint, which happens when two first check-ins race
func (s *CheckInService) withConflictRetry(ctx context.Context, fn func(attempt int) error) error {
	err := fn(1)
	if !errors.Is(err, shared.ErrConflict) || ctx.Err() != nil {
		return err
	}
	s.logger.Debug("Retrying check-in after conflict", zap.Error(err))
	return fn(2)
}
