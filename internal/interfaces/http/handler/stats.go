package handler

import (
	"context"
	"net/http"

	appcheckin "github.com/activityhub/backend/internal/application/checkin"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/interfaces/http/dto"
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// StatsUseCases is the working-stats service as seen by HTTP
type StatsUseCases interface {
	GetWorkingStats(ctx context.Context, actor identity.Actor, query appcheckin.WorkingStatsQuery) (*appcheckin.WorkingStatsResponse, error)
}

// StatsHandler serves working-hour statistics
type StatsHandler struct {
	BaseHandler
	statsService StatsUseCases
}

// NewStatsHandler creates a new StatsHandler
func NewStatsHandler(statsService StatsUseCases) *StatsHandler {
	return &StatsHandler{statsService: statsService}
}

// GetWorkingStats returns the caller's hours, or another user's for site
// admins. start and end are RFC 3339 timestamps and both optional.
// GET /working-stats?userId=&start=&end=
func (h *StatsHandler) GetWorkingStats(c *gin.Context) {
	actor, ok := h.actor(c)
	if !ok {
		return
	}
	var query appcheckin.WorkingStatsQuery
	if !h.BindQuery(c, &query) {
		return
	}
	if raw := c.Query(middleware.TargetUserParam); raw != "" {
		userID, err := uuid.Parse(raw)
		if err != nil {
			h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid userId format")
			return
		}
		query.UserID = &userID
	}
	if query.Start != nil && query.End != nil && query.End.Before(*query.Start) {
		h.Error(c, http.StatusBadRequest, dto.ErrCodeInvalidRange, "end must not be before start")
		return
	}

	resp, err := h.statsService.GetWorkingStats(c.Request.Context(), actor, query)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
