package handler

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	appcheckin "github.com/activityhub/backend/internal/application/checkin"
	"github.com/activityhub/backend/internal/domain/activity"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/interfaces/http/dto"
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// MockActivityService is a mock implementation of ActivityUseCases
type MockActivityService struct {
	mock.Mock
}

func (m *MockActivityService) Get(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access)
	return activityResult(args)
}

func (m *MockActivityService) List(ctx context.Context, actor identity.Actor, filter appactivity.ListActivitiesFilter) ([]appactivity.ActivityResponse, int64, error) {
	args := m.Called(ctx, actor, filter)
	items, _ := args.Get(0).([]appactivity.ActivityResponse)
	return items, args.Get(1).(int64), args.Error(2)
}

func (m *MockActivityService) ListRegistrations(ctx context.Context, access *appactivity.Access) ([]appactivity.RegistrationResponse, error) {
	args := m.Called(ctx, access)
	regs, _ := args.Get(0).([]appactivity.RegistrationResponse)
	return regs, args.Error(1)
}

func (m *MockActivityService) Create(ctx context.Context, actor identity.Actor, req appactivity.CreateActivityRequest) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, actor, req)
	return activityResult(args)
}

func (m *MockActivityService) Update(ctx context.Context, access *appactivity.Access, req appactivity.UpdateActivityRequest) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access, req)
	return activityResult(args)
}

func (m *MockActivityService) Delete(ctx context.Context, access *appactivity.Access) error {
	return m.Called(ctx, access).Error(0)
}

func (m *MockActivityService) SubmitForReview(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access)
	return activityResult(args)
}

func (m *MockActivityService) Approve(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access)
	return activityResult(args)
}

func (m *MockActivityService) AssignStaff(ctx context.Context, access *appactivity.Access, req appactivity.AssignStaffRequest) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access, req)
	return activityResult(args)
}

func (m *MockActivityService) Register(ctx context.Context, access *appactivity.Access, req appactivity.RegisterRequest) (*appactivity.RegistrationResponse, error) {
	args := m.Called(ctx, access, req)
	if v := args.Get(0); v != nil {
		return v.(*appactivity.RegistrationResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockActivityService) Unregister(ctx context.Context, access *appactivity.Access) error {
	return m.Called(ctx, access).Error(0)
}

func (m *MockActivityService) UploadCover(ctx context.Context, access *appactivity.Access, data []byte, contentType string) (*appactivity.ActivityResponse, error) {
	args := m.Called(ctx, access, data, contentType)
	return activityResult(args)
}

func activityResult(args mock.Arguments) (*appactivity.ActivityResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*appactivity.ActivityResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockCheckInService is a mock implementation of CheckInUseCases
type MockCheckInService struct {
	mock.Mock
}

func (m *MockCheckInService) GetRecord(ctx context.Context, access *appactivity.Access) (*appcheckin.CheckRecordResponse, error) {
	args := m.Called(ctx, access)
	return recordResult(args)
}

func (m *MockCheckInService) ListRecords(ctx context.Context, access *appactivity.Access) ([]appcheckin.CheckRecordResponse, error) {
	args := m.Called(ctx, access)
	records, _ := args.Get(0).([]appcheckin.CheckRecordResponse)
	return records, args.Error(1)
}

func (m *MockCheckInService) CheckInActivity(ctx context.Context, access *appactivity.Access, req appcheckin.CheckInRequest) (*appcheckin.CheckRecordResponse, error) {
	args := m.Called(ctx, access, req)
	return recordResult(args)
}

func (m *MockCheckInService) CasualCheckIn(ctx context.Context, actor identity.Actor, req appcheckin.CasualCheckInRequest) (*appcheckin.CasualCheckRecordResponse, error) {
	args := m.Called(ctx, actor, req)
	if v := args.Get(0); v != nil {
		return v.(*appcheckin.CasualCheckRecordResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockCheckInService) ManagerCheckIn(ctx context.Context, access *appactivity.Access, userID uuid.UUID, req appcheckin.ManagerCheckInRequest) (*appcheckin.CheckRecordResponse, error) {
	args := m.Called(ctx, access, userID, req)
	return recordResult(args)
}

func (m *MockCheckInService) IssueQRToken(ctx context.Context, access *appactivity.Access) (*appcheckin.QRTokenResponse, error) {
	args := m.Called(ctx, access)
	if v := args.Get(0); v != nil {
		return v.(*appcheckin.QRTokenResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

func recordResult(args mock.Arguments) (*appcheckin.CheckRecordResponse, error) {
	if v := args.Get(0); v != nil {
		return v.(*appcheckin.CheckRecordResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockStatsService is a mock implementation of StatsUseCases
type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) GetWorkingStats(ctx context.Context, actor identity.Actor, query appcheckin.WorkingStatsQuery) (*appcheckin.WorkingStatsResponse, error) {
	args := m.Called(ctx, actor, query)
	if v := args.Get(0); v != nil {
		return v.(*appcheckin.WorkingStatsResponse), args.Error(1)
	}
	return nil, args.Error(1)
}

// envelope mirrors dto.Response with the payload left raw
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *dto.ErrorInfo  `json:"error"`
	Meta    *dto.Meta       `json:"meta"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func testActor(roles ...identity.AdminRole) identity.Actor {
	return identity.Actor{UserID: uuid.New(), Roles: identity.NewRoleSet(roles...)}
}

func testAccess(actor identity.Actor, manager bool) *appactivity.Access {
	return &appactivity.Access{
		Activity: &activity.Activity{
			BaseAggregateRoot: shared.NewBaseAggregateRoot(),
			Site:              activity.SiteVolunteer,
		},
		Actor:           actor,
		IsManager:       manager,
		EffectiveUserID: actor.UserID,
	}
}

// withCaller stands in for the JWT, CurrentUser and guard middleware
func withCaller(actor *identity.Actor, access *appactivity.Access) gin.HandlerFunc {
	return func(c *gin.Context) {
		if actor != nil {
			c.Set(middleware.ActorKey, *actor)
		}
		if access != nil {
			c.Set(middleware.AccessKey, access)
		}
		c.Next()
	}
}

func jsonRequest(method, path, body string) *http.Request {
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

func serve(router *gin.Engine, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}
