package handler

import (
	"context"
	"io"
	"net/http"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// ActivityUseCases is the activity application service as seen by HTTP
type ActivityUseCases interface {
	Get(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error)
	List(ctx context.Context, actor identity.Actor, filter appactivity.ListActivitiesFilter) ([]appactivity.ActivityResponse, int64, error)
	ListRegistrations(ctx context.Context, access *appactivity.Access) ([]appactivity.RegistrationResponse, error)
	Create(ctx context.Context, actor identity.Actor, req appactivity.CreateActivityRequest) (*appactivity.ActivityResponse, error)
	Update(ctx context.Context, access *appactivity.Access, req appactivity.UpdateActivityRequest) (*appactivity.ActivityResponse, error)
	Delete(ctx context.Context, access *appactivity.Access) error
	SubmitForReview(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error)
	Approve(ctx context.Context, access *appactivity.Access) (*appactivity.ActivityResponse, error)
	AssignStaff(ctx context.Context, access *appactivity.Access, req appactivity.AssignStaffRequest) (*appactivity.ActivityResponse, error)
	Register(ctx context.Context, access *appactivity.Access, req appactivity.RegisterRequest) (*appactivity.RegistrationResponse, error)
	Unregister(ctx context.Context, access *appactivity.Access) error
	UploadCover(ctx context.Context, access *appactivity.Access, data []byte, contentType string) (*appactivity.ActivityResponse, error)
}

// CoverFormField is the multipart field carrying a cover image
const CoverFormField = "file"

// ActivityHandler handles activity-related API endpoints
type ActivityHandler struct {
	BaseHandler
	activityService ActivityUseCases
}

// NewActivityHandler creates a new ActivityHandler
func NewActivityHandler(activityService ActivityUseCases) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

// List returns the activities visible to the caller
// GET /activities?site=&status=&search=&page=&page_size=
func (h *ActivityHandler) List(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var filter appactivity.ListActivitiesFilter
	if !h.BindQuery(c, &filter) {
		return
	}
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = 20
	}

	items, total, err := h.activityService.List(c.Request.Context(), actor, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, items, total, filter.Page, filter.PageSize)
}

// Get returns one activity
// GET /activities/:id
func (h *ActivityHandler) Get(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	resp, err := h.activityService.Get(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Create creates an activity
// POST /activities
func (h *ActivityHandler) Create(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var req appactivity.CreateActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.Create(c.Request.Context(), actor, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Update replaces the editable fields of an activity
// PUT /activities/:id
func (h *ActivityHandler) Update(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	var req appactivity.UpdateActivityRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.Update(c.Request.Context(), access, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Delete removes an activity with its registrations and check records
// DELETE /activities/:id
func (h *ActivityHandler) Delete(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	if err := h.activityService.Delete(c.Request.Context(), access); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// Submit sends a draft for review
// POST /activities/:id/submit
func (h *ActivityHandler) Submit(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	resp, err := h.activityService.SubmitForReview(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Approve publishes an activity in review
// POST /activities/:id/approve
func (h *ActivityHandler) Approve(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	resp, err := h.activityService.Approve(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// AssignStaff replaces the staff list
// PUT /activities/:id/staff
func (h *ActivityHandler) AssignStaff(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	var req appactivity.AssignStaffRequest
	if !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.AssignStaff(c.Request.Context(), access, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}

// Register signs the caller up
// POST /activities/:id/registrations
func (h *ActivityHandler) Register(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	var req appactivity.RegisterRequest
	// An empty body registers without role or subgroup
	if c.Request.ContentLength != 0 && !h.BindJSON(c, &req) {
		return
	}

	resp, err := h.activityService.Register(c.Request.Context(), access, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

// Unregister cancels a registration, the caller's own or (for managers)
// the one named by ?userId=
// DELETE /activities/:id/registrations
func (h *ActivityHandler) Unregister(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	if err := h.activityService.Unregister(c.Request.Context(), access); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ListRegistrations returns the participants
// GET /activities/:id/registrations
func (h *ActivityHandler) ListRegistrations(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	regs, err := h.activityService.ListRegistrations(c.Request.Context(), access)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, regs)
}

// UploadCover stores a cover image sent as multipart form field "file".
// The content type is sniffed from the bytes, not taken from the client.
// PUT /activities/:id/cover
func (h *ActivityHandler) UploadCover(c *gin.Context) {
	access, ok := h.access(c)
	if !ok {
		return
	}
	fileHeader, err := c.FormFile(CoverFormField)
	if err != nil {
		h.BadRequest(c, "Cover image file is required")
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.BadRequest(c, "Cover image could not be read")
		return
	}
	defer file.Close()

	// One byte over the limit is enough for the service to reject it
	data, err := io.ReadAll(io.LimitReader(file, appactivity.MaxCoverImageSize+1))
	if err != nil {
		h.BadRequest(c, "Cover image could not be read")
		return
	}

	resp, err := h.activityService.UploadCover(c.Request.Context(), access, data, http.DetectContentType(data))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
