package checkin

import (
	"context"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/checkin"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StatsService computes working hours
type StatsService struct {
	checkRecordRepo  checkin.CheckRecordRepository
	casualRecordRepo checkin.CasualCheckRecordRepository
	activityRepo     activity.ActivityRepository
	logger           *zap.Logger
}

// NewStatsService creates a new StatsService
func NewStatsService(
	checkRecordRepo checkin.CheckRecordRepository,
	casualRecordRepo checkin.CasualCheckRecordRepository,
	activityRepo activity.ActivityRepository,
	logger *zap.Logger,
) *StatsService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StatsService{
		checkRecordRepo:  checkRecordRepo,
		casualRecordRepo: casualRecordRepo,
		activityRepo:     activityRepo,
		logger:           logger,
	}
}

// GetWorkingStats returns the working hours of the actor, or of
// query.UserID when the actor administers any site
func (s *StatsService) GetWorkingStats(ctx context.Context, actor identity.Actor, query WorkingStatsQuery) (*WorkingStatsResponse, error) {
	userID, err := appactivity.ResolveEffectiveUser(actor, actor.IsAnyAdmin(), query.UserID)
	if err != nil {
		return nil, err
	}

	ctx, span := telemetry.StartServiceSpan(ctx, "stats", "get_working_stats",
		telemetry.SpanAttrUserID, userID,
		telemetry.SpanAttrActorID, actor.UserID,
	)
	defer span.End()

	activityRecords, err := s.checkRecordRepo.FindByUser(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}
	casualRecords, err := s.casualRecordRepo.FindByUser(ctx, userID)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	activities, err := s.activitiesOf(ctx, activityRecords)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	window := query.Window()
	hours := checkin.AggregateHours(activityRecords, casualRecords, window)

	records := make([]WorkRecordResponse, len(hours.Entries))
	for i, e := range hours.Entries {
		records[i] = WorkRecordResponse{
			Kind:          string(e.Kind),
			RecordID:      e.RecordID,
			ActivityID:    e.ActivityID,
			CheckInAt:     e.CheckInAt,
			CheckOutAt:    e.CheckOutAt,
			DurationHours: e.Hours,
			InWindow:      e.InWindow,
		}
		if e.ActivityID != nil {
			if a, ok := activities[*e.ActivityID]; ok {
				records[i].ActivityTitle = a.Title
				records[i].Site = string(a.Site)
			}
		}
	}

	return &WorkingStatsResponse{
		UserID:               userID,
		Records:              records,
		TotalWorkingHours:    hours.TotalHours,
		WindowedWorkingHours: hours.WindowedHours,
		WindowStart:          window.Start,
		WindowEnd:            window.End,
	}, nil
}

// activitiesOf loads the activities referenced by records. Deleted
// activities are simply missing from the result.
func (s *StatsService) activitiesOf(ctx context.Context, records []*checkin.CheckRecord) (map[uuid.UUID]*activity.Activity, error) {
	if len(records) == 0 {
		return map[uuid.UUID]*activity.Activity{}, nil
	}
	seen := make(map[uuid.UUID]struct{}, len(records))
	ids := make([]uuid.UUID, 0, len(records))
	for _, r := range records {
		if _, ok := seen[r.ActivityID]; ok {
			continue
		}
		seen[r.ActivityID] = struct{}{}
		ids = append(ids, r.ActivityID)
	}
	list, err := s.activityRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[uuid.UUID]*activity.Activity, len(list))
	for _, a := range list {
		out[a.ID] = a
	}
	return out, nil
}
