package activity

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"
	"time"

	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ImageStorage stores activity cover images
type ImageStorage interface {
	Upload(ctx context.Context, storageKey string, data []byte, contentType string) error
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)
	DeleteObject(ctx context.Context, storageKey string) error
}

// MaxCoverImageSize is the largest accepted cover image in bytes
const MaxCoverImageSize = 5 << 20

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
}

// ActivityService provides application services for activities
type ActivityService struct {
	activityRepo     activity.ActivityRepository
	registrationRepo activity.RegistrationRepository
	policies         activity.Policies
	images           ImageStorage
	eventPublisher   shared.EventPublisher
	clock            shared.Clock
	logger           *zap.Logger
}

// NewActivityService creates a new ActivityService. images and
// eventPublisher may be nil; a nil clock reads the wall clock.
func NewActivityService(
	activityRepo activity.ActivityRepository,
	registrationRepo activity.RegistrationRepository,
	policies activity.Policies,
	images ImageStorage,
	eventPublisher shared.EventPublisher,
	clock shared.Clock,
	logger *zap.Logger,
) *ActivityService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if clock == nil {
		clock = shared.SystemClock{}
	}
	return &ActivityService{
		activityRepo:     activityRepo,
		registrationRepo: registrationRepo,
		policies:         policies,
		images:           images,
		eventPublisher:   eventPublisher,
		clock:            clock,
		logger:           logger,
	}
}

// ===================== Query Methods =====================

// Get returns the activity behind a passed guard
func (s *ActivityService) Get(ctx context.Context, access *Access) (*ActivityResponse, error) {
	response := s.toResponse(ctx, access.Activity, access.IsManager)
	return &response, nil
}

// List returns a page of activities. Callers who are not admin of the
// filtered site only see published activities and the ones they organise.
func (s *ActivityService) List(ctx context.Context, actor identity.Actor, filter ListActivitiesFilter) ([]ActivityResponse, int64, error) {
	domainFilter := activity.Filter{
		Filter: shared.Filter{
			Page:     filter.Page,
			PageSize: filter.PageSize,
			OrderBy:  "start_time",
			OrderDir: "desc",
			Search:   strings.TrimSpace(filter.Search),
		},
	}
	if domainFilter.Page < 1 {
		domainFilter.Page = 1
	}
	if domainFilter.PageSize < 1 {
		domainFilter.PageSize = 20
	}

	seeAll := false
	if filter.Site != "" {
		site := activity.Site(filter.Site)
		domainFilter.Site = &site
		seeAll = actor.HasAdminRole(site)
	}
	if filter.Status != "" {
		status := activity.Status(filter.Status)
		domainFilter.Status = &status
	}
	if !seeAll {
		userID := actor.UserID
		domainFilter.VisibleTo = &userID
	}

	items, total, err := s.activityRepo.FindAll(ctx, domainFilter)
	if err != nil {
		s.logger.Error("Failed to list activities", zap.Error(err))
		return nil, 0, err
	}

	responses := make([]ActivityResponse, len(items))
	for i, a := range items {
		responses[i] = s.toResponse(ctx, a, IsManager(actor, a, s.policies.For(a.Site)))
	}
	return responses, total, nil
}

// ListRegistrations returns the participants of an activity
func (s *ActivityService) ListRegistrations(ctx context.Context, access *Access) ([]RegistrationResponse, error) {
	regs, err := s.registrationRepo.FindByActivity(ctx, access.Activity.ID)
	if err != nil {
		return nil, err
	}
	return ToRegistrationResponses(regs), nil
}

// ===================== Command Methods =====================

// Create creates an activity on a site. Sites that restrict creation to
// admins reject everyone else.
func (s *ActivityService) Create(ctx context.Context, actor identity.Actor, req CreateActivityRequest) (*ActivityResponse, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "activity", "create",
		telemetry.SpanAttrSite, req.Site,
		telemetry.SpanAttrActorID, actor.UserID,
	)
	defer span.End()

	site, err := activity.ParseSite(req.Site)
	if err != nil {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, err.Error())
	}
	policy := s.policies.For(site)
	if policy.CreateRequiresAdmin && !actor.HasAdminRole(site) {
		return nil, shared.NewDomainError(shared.CodePermissionDenied, fmt.Sprintf("Only %s admins can create activities", site))
	}

	a, err := activity.NewActivity(policy, actor.UserID, activity.Details{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}, req.Draft)
	if err != nil {
		return nil, err
	}

	if err := s.activityRepo.Save(ctx, a); err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Failed to create activity", zap.Error(err))
		return nil, err
	}

	s.logger.Info("Activity created",
		zap.String("activity_id", a.ID.String()),
		zap.String("site", site.String()),
		zap.String("status", a.Status.String()),
		zap.String("organiser_id", actor.UserID.String()))

	s.publishEvents(ctx, a)

	response := s.toResponse(ctx, a, true)
	return &response, nil
}

// Update edits an activity. The version always increments; with
// ExpectedVersion set, a stale version fails with CONFLICT.
func (s *ActivityService) Update(ctx context.Context, access *Access, req UpdateActivityRequest) (*ActivityResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	a := access.Activity

	if req.ExpectedVersion != nil && *req.ExpectedVersion != a.Version {
		return nil, shared.NewDomainError(shared.CodeConflict,
			fmt.Sprintf("Activity was modified (version %d, expected %d)", a.Version, *req.ExpectedVersion))
	}
	loadedVersion := a.Version

	if err := a.Update(activity.Details{
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		StartTime:   req.StartTime,
		EndTime:     req.EndTime,
	}); err != nil {
		return nil, err
	}

	var err error
	if req.ExpectedVersion != nil {
		err = s.activityRepo.SaveWithVersion(ctx, a, loadedVersion)
	} else {
		err = s.activityRepo.Save(ctx, a)
	}
	if err != nil {
		return nil, err
	}

	response := s.toResponse(ctx, a, true)
	return &response, nil
}

// Delete removes an activity with its registrations and check records
func (s *ActivityService) Delete(ctx context.Context, access *Access) error {
	if !access.IsManager {
		return shared.ErrPermissionDenied
	}
	a := access.Activity
	a.MarkDeleted(access.Actor.UserID)

	if err := s.activityRepo.Delete(ctx, a.ID); err != nil {
		return err
	}

	if a.CoverImageKey != "" && s.images != nil {
		if err := s.images.DeleteObject(ctx, a.CoverImageKey); err != nil {
			s.logger.Warn("Failed to delete cover image",
				zap.String("activity_id", a.ID.String()),
				zap.String("key", a.CoverImageKey),
				zap.Error(err))
		}
	}

	s.logger.Info("Activity deleted",
		zap.String("activity_id", a.ID.String()),
		zap.String("deleted_by", access.Actor.UserID.String()))

	s.publishEvents(ctx, a)
	return nil
}

// SubmitForReview moves a draft to INREVIEW, or to PUBLISHED on sites
// without approval. Managers only.
func (s *ActivityService) SubmitForReview(ctx context.Context, access *Access) (*ActivityResponse, error) {
	if !access.IsManager {
		return nil, shared.NewDomainError(shared.CodePermissionDenied, "Only managers of this activity can submit it")
	}
	a := access.Activity
	if err := a.SubmitForReview(access.Policy); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Activity submitted",
		zap.String("activity_id", a.ID.String()),
		zap.String("status", a.Status.String()))

	s.publishEvents(ctx, a)
	response := s.toResponse(ctx, a, true)
	return &response, nil
}

// Approve publishes an activity in review. Only an admin of the activity's
// site may approve; organiser or staff rights are not enough.
func (s *ActivityService) Approve(ctx context.Context, access *Access) (*ActivityResponse, error) {
	a := access.Activity
	if !access.Actor.HasAdminRole(a.Site) {
		return nil, shared.NewDomainError(shared.CodePermissionDenied, fmt.Sprintf("Only %s admins can approve activities", a.Site))
	}
	if err := a.Approve(access.Actor.UserID, s.clock.Now()); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	s.logger.Info("Activity approved",
		zap.String("activity_id", a.ID.String()),
		zap.String("approved_by", access.Actor.UserID.String()))

	s.publishEvents(ctx, a)
	response := s.toResponse(ctx, a, true)
	return &response, nil
}

// AssignStaff replaces the staff of an activity on a staffing site
func (s *ActivityService) AssignStaff(ctx context.Context, access *Access, req AssignStaffRequest) (*ActivityResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	a := access.Activity
	if err := a.AssignStaff(access.Policy, req.StaffIDs); err != nil {
		return nil, err
	}
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}
	response := s.toResponse(ctx, a, true)
	return &response, nil
}

// Register signs the actor up for a published activity
func (s *ActivityService) Register(ctx context.Context, access *Access, req RegisterRequest) (*RegistrationResponse, error) {
	reg, err := activity.NewRegistration(access.Activity.ID, access.Actor.UserID, req.Role, req.Subgroup)
	if err != nil {
		return nil, err
	}
	if err := s.registrationRepo.Create(ctx, reg); err != nil {
		if errors.Is(err, shared.ErrConflict) {
			return nil, shared.NewDomainError(shared.CodeConflict, "Already registered for this activity")
		}
		return nil, err
	}
	response := ToRegistrationResponse(reg)
	return &response, nil
}

// Unregister removes the effective user's registration
func (s *ActivityService) Unregister(ctx context.Context, access *Access) error {
	return s.registrationRepo.Delete(ctx, access.Activity.ID, access.EffectiveUserID)
}

// UploadCover stores a new cover image and bumps the activity version so
// cached share links refresh
func (s *ActivityService) UploadCover(ctx context.Context, access *Access, data []byte, contentType string) (*ActivityResponse, error) {
	if !access.IsManager {
		return nil, shared.ErrPermissionDenied
	}
	if s.images == nil {
		return nil, shared.NewDomainError(shared.CodeInvalidState, "Image storage is not configured")
	}
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cover image must be JPEG, PNG or WebP")
	}
	if len(data) == 0 || len(data) > MaxCoverImageSize {
		return nil, shared.NewDomainError(shared.CodeInvalidInput, "Cover image must be between 1 byte and 5 MB")
	}

	a := access.Activity
	previous := a.CoverImageKey
	key := path.Join("activities", a.ID.String(), "cover-"+uuid.NewString()+ext)

	if err := s.images.Upload(ctx, key, data, contentType); err != nil {
		s.logger.Error("Failed to upload cover image", zap.String("activity_id", a.ID.String()), zap.Error(err))
		return nil, err
	}

	a.SetCoverImage(key)
	if err := s.activityRepo.Save(ctx, a); err != nil {
		return nil, err
	}

	if previous != "" {
		if err := s.images.DeleteObject(ctx, previous); err != nil {
			s.logger.Warn("Failed to delete previous cover image", zap.String("key", previous), zap.Error(err))
		}
	}

	response := s.toResponse(ctx, a, true)
	return &response, nil
}

func (s *ActivityService) toResponse(ctx context.Context, a *activity.Activity, isManager bool) ActivityResponse {
	coverURL := ""
	if a.CoverImageKey != "" && s.images != nil {
		url, _, err := s.images.GenerateDownloadURL(ctx, a.CoverImageKey, time.Hour)
		if err == nil {
			coverURL = url
		}
	}
	return ToActivityResponse(a, isManager, coverURL)
}

// publishEvents publishes domain events from the aggregate
func (s *ActivityService) publishEvents(ctx context.Context, a *activity.Activity) {
	if s.eventPublisher == nil {
		a.ClearDomainEvents()
		return
	}

	for _, event := range a.GetDomainEvents() {
		if err := s.eventPublisher.Publish(ctx, event); err != nil {
			s.logger.Warn("Failed to publish event",
				zap.String("event_type", event.EventType()),
				zap.Error(err))
		}
	}
	a.ClearDomainEvents()
}
