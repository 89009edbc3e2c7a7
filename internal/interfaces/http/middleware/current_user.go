package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/domain/shared"
	"github.com/activityhub/backend/internal/infrastructure/logger"
	"github.com/activityhub/backend/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	// ActorKey holds the identity.Actor of the authenticated caller
	ActorKey = "actor"
	// CurrentUserKey holds the loaded *identity.User
	CurrentUserKey = "current_user"
)

// UserLoader loads the account behind a token
type UserLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error)
}

// CurrentUser resolves the JWT subject to a user and its admin roles. Roles
// come from the users table, never from the token, so a revoked admin loses
// rights on the next request. Must run after JWTAuthWithConfig.
func CurrentUser(users UserLoader) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := uuid.Parse(GetJWTUserID(c))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Invalid token subject")
			return
		}

		user, err := users.FindByID(c.Request.Context(), userID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				abortWithError(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Unknown user")
				return
			}
			logger.L(c.Request.Context()).Error("Failed to load current user",
				zap.String("user_id", userID.String()), zap.Error(err))
			status, resp := dto.FromError(err, GetRequestID(c))
			c.AbortWithStatusJSON(status, resp)
			return
		}

		c.Set(CurrentUserKey, user)
		c.Set(ActorKey, user.Actor())
		c.Next()
	}
}

// GetActor returns the authenticated caller
func GetActor(c *gin.Context) (identity.Actor, bool) {
	v, ok := c.Get(ActorKey)
	if !ok {
		return identity.Actor{}, false
	}
	actor, ok := v.(identity.Actor)
	return actor, ok
}

// GetCurrentUser returns the loaded user, or nil
func GetCurrentUser(c *gin.Context) *identity.User {
	if v, ok := c.Get(CurrentUserKey); ok {
		if u, ok := v.(*identity.User); ok {
			return u
		}
	}
	return nil
}
