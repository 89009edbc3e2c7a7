package router

import (
	"github.com/activityhub/backend/internal/interfaces/http/handler"
	"github.com/activityhub/backend/internal/interfaces/http/middleware"
)

// Handlers bundles the API handlers
type Handlers struct {
	Activity *handler.ActivityHandler
	CheckIn  *handler.CheckInHandler
	Stats    *handler.StatsHandler
	Me       *handler.MeHandler
}

// CoverRoute is the cover upload route relative to the API prefix
const CoverRoute = "/activities/:id/cover"

// APIGroups builds the authenticated API routes. Each activity route
// declares its guard next to the handler.
func APIGroups(h Handlers, guard middleware.ActivityGuard) []RouteRegistrar {
	manage := middleware.RequireActivityAccess(guard, middleware.AccessManage)
	representable := middleware.RequireActivityAccess(guard, middleware.AccessRepresentable)
	publishedOnly := middleware.RequireActivityAccess(guard, middleware.AccessPublishedOnly)

	activities := NewDomainGroup("activities", "/activities")
	activities.GET("", h.Activity.List)
	activities.POST("", h.Activity.Create)
	activities.GET("/:id", publishedOnly, h.Activity.Get)
	activities.PUT("/:id", manage, h.Activity.Update)
	activities.DELETE("/:id", manage, h.Activity.Delete)
	activities.POST("/:id/submit", manage, h.Activity.Submit)
	activities.POST("/:id/approve", manage, h.Activity.Approve)
	activities.PUT("/:id/staff", manage, h.Activity.AssignStaff)
	activities.PUT("/:id/cover", manage, h.Activity.UploadCover)
	activities.POST("/:id/registrations", publishedOnly, h.Activity.Register)
	activities.DELETE("/:id/registrations", representable, h.Activity.Unregister)
	activities.GET("/:id/registrations", manage, h.Activity.ListRegistrations)

	activities.POST("/:id/check-in", representable, h.CheckIn.CheckIn)
	activities.GET("/:id/check-records", manage, h.CheckIn.ListRecords)
	activities.GET("/:id/check-records/me", representable, h.CheckIn.GetMyRecord)
	activities.PUT("/:id/check-records/:userId", manage, h.CheckIn.ManagerCheckIn)
	activities.GET("/:id/qr-token", manage, h.CheckIn.IssueQRToken)

	checkIn := NewDomainGroup("check-in", "/check-in")
	checkIn.POST("/casual", h.CheckIn.CasualCheckIn)

	stats := NewDomainGroup("stats", "/working-stats")
	stats.GET("", h.Stats.GetWorkingStats)

	me := NewDomainGroup("me", "/me")
	me.GET("", h.Me.Get)

	return []RouteRegistrar{activities, checkIn, stats, me}
}
