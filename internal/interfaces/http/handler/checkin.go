package handler

import (
	"context"
	"net/http"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	appcheckin "github.com/activityhub/backend/internal/application/checkin"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// CheckInUseCases is the check-in application service as seen by HTTP
type CheckInUseCases interface {
	GetRecord(ctx context.Context, access *appactivity.Access) (*appcheckin.CheckRecordResponse, error)
	ListRecords(ctx context.Context, access *appactivity.Access) ([]appcheckin.CheckRecordResponse, error)
	CheckInActivity(ctx context.Context, access *appactivity.Access, req appcheckin.CheckInRequest) (*appcheckin.CheckRecordResponse, error)
	CasualCheckIn(ctx context.Context, actor identity.Actor, req appcheckin.CasualCheckInRequest) (*appcheckin.CasualCheckRecordResponse, error)
	ManagerCheckIn(ctx context.Context, access *appactivity.Access, userID uuid.UUID, req appcheckin.ManagerCheckInRequest) (*appcheckin.CheckRecordResponse, error)
	IssueQRToken(ctx context.Context, access *appactivity.Access) (*appcheckin.QRTokenResponse, error)
}

// CheckInHandler handles attendance endpoints
type CheckInHandler struct {
	BaseHandler
	checkInService CheckInUseCases
}

// NewCheckInHandler creates a new CheckInHandler
func NewCheckInHandler(checkInService CheckInUseCases) *CheckInHandler {
	return &CheckInHandler{checkInService: checkInService}
}

// CheckIn checks the effective user in, or out on the second call
// POST /activities/:id/check-in
func (h *CheckInHandler) CheckIn(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	var req appcheckin.CheckInRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.checkInService.CheckInActivity(c.Request.Context(), access, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Action == appcheckin.ActionCheckedIn {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// CasualCheckIn toggles the caller's casual attendance for today
// POST /check-in/casual
func (h *CheckInHandler) CasualCheckIn(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appcheckin.CasualCheckInRequest
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.checkInService.CasualCheckIn(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if resp.Action == appcheckin.ActionCheckedIn {
		h.Created(c, resp)
		return
	}
	h.Success(c, resp)
}

// ManagerCheckIn sets both timestamps of a participant's record
// PUT /activities/:id/check-records/:userId
func (h *CheckInHandler) ManagerCheckIn(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	userID, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid user ID format")
		return
	}
	var req appcheckin.ManagerCheckInRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.checkInService.ManagerCheckIn(c.Request.Context(), access, userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// GetMyRecord returns the effective user's record; data is null before
// the first check-in
// GET /activities/:id/check-records/me
func (h *CheckInHandler) GetMyRecord(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	resp, err := h.checkInService.GetRecord(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// ListRecords returns the attendance roster
// GET /activities/:id/check-records
func (h *CheckInHandler) ListRecords(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	records, err := h.checkInService.ListRecords(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, records)
}

// IssueQRToken returns a short-lived token to display at the venue
// GET /activities/:id/qr-token
func (h *CheckInHandler) IssueQRToken(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	resp, err := h.checkInService.IssueQRToken(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	h.Success(c, resp)
}
