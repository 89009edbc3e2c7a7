package handler

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/activityhub/backend/internal/domain/identity"
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeHandler_Get(t *testing.T) {
	newRouter := func(user *identity.User) *gin.Engine {
		r := gin.New()
		r.Use(func(c *gin.Context) {
			if user != nil {
				c.Set(middleware.CurrentUserKey, user)
			}
			c.Next()
		})
		r.GET("/me", NewMeHandler().Get)
		return r
	}

	t.Run("admin", func(t *testing.T) {
		user := &identity.User{
			ID:    uuid.New(),
			Name:  "Mei",
			Roles: identity.NewRoleSet(identity.RoleVolunteerAdmin, identity.RoleWorkAdmin),
		}

		w := serve(newRouter(user), jsonRequest(http.MethodGet, "/me", ""))
		require.Equal(t, http.StatusOK, w.Code)

		var me MeResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
		assert.Equal(t, user.ID, me.ID)
		assert.True(t, me.IsAdmin)
		assert.ElementsMatch(t, []string{"volunteer", "work"}, me.AdminSites)
	})

	t.Run("member", func(t *testing.T) {
		w := serve(newRouter(&identity.User{ID: uuid.New(), Name: "Kai"}), jsonRequest(http.MethodGet, "/me", ""))
		require.Equal(t, http.StatusOK, w.Code)

		var me MeResponse
		require.NoError(t, json.Unmarshal(decode(t, w).Data, &me))
		assert.False(t, me.IsAdmin)
		assert.Empty(t, me.AdminSites)
	})

	t.Run("anonymous", func(t *testing.T) {
		w := serve(newRouter(nil), jsonRequest(http.MethodGet, "/me", ""))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
