package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/activityhub/backend/internal/interfaces/http/handler"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestNewRouter(t *testing.T) {
	r := NewRouter(gin.New())

	assert.Equal(t, "v1", r.apiVersion)
	assert.Equal(t, "/api/v1", r.Prefix())
	assert.Empty(t, r.registrars)
}

func TestRouterWithAPIVersion(t *testing.T) {
	r := NewRouter(gin.New(), WithAPIVersion("v2"))

	assert.Equal(t, "/api/v2", r.Prefix())
}

func TestRouterSetup(t *testing.T) {
	engine := gin.New()
	r := NewRouter(engine)

	group := NewDomainGroup("activities", "/activities")
	group.GET("/ping", func(c *gin.Context) {
		c.String(http.StatusOK, "pong")
	})
	r.Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/activities/ping", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "pong", w.Body.String())
}

func TestRouterMiddlewareScopedToAPI(t *testing.T) {
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) { c.Status(http.StatusOK) })

	deny := func(c *gin.Context) { c.AbortWithStatus(http.StatusUnauthorized) }
	group := NewDomainGroup("me", "/me")
	group.GET("", func(c *gin.Context) { c.Status(http.StatusOK) })
	NewRouter(engine, WithMiddleware(deny)).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestDomainGroup(t *testing.T) {
	engine := gin.New()
	group := NewDomainGroup("activities", "/activities")
	group.Use(func(c *gin.Context) {
		c.Header("X-Group", "activities")
		c.Next()
	})
	group.POST("", func(c *gin.Context) { c.Status(http.StatusCreated) })
	group.DELETE("/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })
	group.Group("registrations", "/:id/registrations").
		GET("", func(c *gin.Context) { c.String(http.StatusOK, c.Param("id")) })

	group.RegisterRoutes(engine.Group("/api/v1"))

	assert.Equal(t, "activities", group.Name())
	assert.Equal(t, "/activities", group.Prefix())

	tests := []struct {
		method string
		path   string
		status int
	}{
		{http.MethodPost, "/api/v1/activities", http.StatusCreated},
		{http.MethodDelete, "/api/v1/activities/42", http.StatusNoContent},
		{http.MethodGet, "/api/v1/activities/42/registrations", http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.method+" "+tt.path, func(t *testing.T) {
			w := httptest.NewRecorder()
			engine.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))
			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, "activities", w.Header().Get("X-Group"))
		})
	}
}

func TestAPIGroups_RegistersEveryRoute(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Activity: handler.NewActivityHandler(nil),
		CheckIn:  handler.NewCheckInHandler(nil),
		Stats:    handler.NewStatsHandler(nil),
		Me:       handler.NewMeHandler(),
	}
	NewRouter(engine).Register(APIGroups(h, nil)...).Setup()

	registered := make(map[string]bool)
	for _, route := range engine.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	want := []string{
		"GET /api/v1/activities",
		"POST /api/v1/activities",
		"GET /api/v1/activities/:id",
		"PUT /api/v1/activities/:id",
		"DELETE /api/v1/activities/:id",
		"POST /api/v1/activities/:id/submit",
		"POST /api/v1/activities/:id/approve",
		"PUT /api/v1/activities/:id/staff",
		"PUT /api/v1" + CoverRoute,
		"POST /api/v1/activities/:id/registrations",
		"DELETE /api/v1/activities/:id/registrations",
		"GET /api/v1/activities/:id/registrations",
		"POST /api/v1/activities/:id/check-in",
		"GET /api/v1/activities/:id/check-records",
		"GET /api/v1/activities/:id/check-records/me",
		"PUT /api/v1/activities/:id/check-records/:userId",
		"GET /api/v1/activities/:id/qr-token",
		"POST /api/v1/check-in/casual",
		"GET /api/v1/working-stats",
		"GET /api/v1/me",
	}
	require.Len(t, engine.Routes(), len(want))
	for _, route := range want {
		assert.True(t, registered[route], "missing route %s", route)
	}
}

func TestAPIGroups_GuardedRouteWithoutActor(t *testing.T) {
	engine := gin.New()
	h := Handlers{
		Activity: handler.NewActivityHandler(nil),
		CheckIn:  handler.NewCheckInHandler(nil),
		Stats:    handler.NewStatsHandler(nil),
		Me:       handler.NewMeHandler(),
	}
	NewRouter(engine).Register(APIGroups(h, nil)...).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPut,
		"/api/v1/activities/8b4d2f4e-4f0a-4c55-9a2b-1f1d8e6b6a01", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
