package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	appactivity "github.com/activityhub/backend/internal/application/activity"
	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AccessKey holds the *appactivity.Access resolved for the request
const AccessKey = "activity_access"

// TargetUserParam names the query parameter (and JSON body field) selecting
// the user a manager acts for
const TargetUserParam = "userId"

// ActivityGuard authorizes activity-scoped operations
type ActivityGuard interface {
	Manage(ctx context.Context, actor identity.Actor, activityID uuid.UUID) (*appactivity.Access, error)
	Representable(ctx context.Context, actor identity.Actor, activityID uuid.UUID, target *uuid.UUID) (*appactivity.Access, error)
	PublishedOnly(ctx context.Context, actor identity.Actor, activityID uuid.UUID) (*appactivity.Access, error)
}

// AccessMode selects the guard applied to a route
type AccessMode int

const (
	// AccessManage requires a manager of the activity
	AccessManage AccessMode = iota
	// AccessRepresentable lets managers act for another user
	AccessRepresentable
	// AccessPublishedOnly hides unpublished activities from non-managers
	AccessPublishedOnly
)

func (m AccessMode) String() string {
	switch m {
	case AccessManage:
		return "manage"
	case AccessRepresentable:
		return "representable"
	case AccessPublishedOnly:
		return "published_only"
	}
	return "unknown"
}

// RequireActivityAccess loads the activity named by the :id route parameter,
// applies the guard for mode and stores the resulting Access. Must run after
// CurrentUser.
func RequireActivityAccess(guard ActivityGuard, mode AccessMode) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := GetActor(c)
		if !ok {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Authentication required")
			return
		}
		activityID, err := uuid.Parse(c.Param("id"))
		if err != nil {
			abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid activity ID format")
			return
		}

		ctx := c.Request.Context()
		var access *appactivity.Access
		switch mode {
		case AccessManage:
			access, err = guard.Manage(ctx, actor, activityID)
		case AccessPublishedOnly:
			access, err = guard.PublishedOnly(ctx, actor, activityID)
		case AccessRepresentable:
			var target *uuid.UUID
			target, err = targetUser(c)
			if err != nil {
				abortWithError(c, http.StatusBadRequest, dto.ErrCodeInvalidInput, "Invalid userId format")
				return
			}
			access, err = guard.Representable(ctx, actor, activityID, target)
		}
		if err != nil {
			status, resp := dto.FromError(err, GetRequestID(c))
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Set(AccessKey, access)
		c.Next()
	}
}

// GetAccess returns the Access stored by RequireActivityAccess
func GetAccess(c *gin.Context) *appactivity.Access {
	if v, ok := c.Get(AccessKey); ok {
		if a, ok := v.(*appactivity.Access); ok {
			return a
		}
	}
	return nil
}

// targetUser reads userId from the query string, falling back to a JSON
// body field of the same name. The body is restored for the handler.
func targetUser(c *gin.Context) (*uuid.UUID, error) {
	if raw := c.Query(TargetUserParam); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	if c.Request.Body == nil || !strings.HasPrefix(c.ContentType(), "application/json") {
		return nil, nil
	}
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		return nil, err
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	var payload struct {
		UserID *string `json:"userId"`
	}
	// Malformed JSON is left for the handler's binding to report
	if json.Unmarshal(body, &payload) != nil || payload.UserID == nil || *payload.UserID == "" {
		return nil, nil
	}
	id, err := uuid.Parse(*payload.UserID)
	if err != nil {
		return nil, err
	}
	return &id, nil
}
