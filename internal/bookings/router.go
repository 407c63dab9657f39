package bookings

import (
	"busline/internal/shared/middleware"

	"github.com/gin-gonic/gin"
)

// SetupBookingRoutes configures all booking-related routes
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	bookings := rg.Group("/bookings")
	bookings.Use(auth)
	{
		bookings.GET("", controller.GetHistory) // GET /api/v1/bookings?page=1&limit=10
	}

	admin := rg.Group("/admin/bookings")
	admin.Use(auth, middleware.RequireRoles("ADMIN", "VENDOR"))
	{
		admin.PATCH("/:id", controller.UpdateStatus) // PATCH /api/v1/admin/bookings/:id
	}
}

// Route definitions for reference:
//
// BOOKING HISTORY
// GET    /api/v1/bookings?page=1&limit=10             - Caller's bookings, normalised to {items,total}
//
// STATUS MANAGEMENT (ADMIN, VENDOR)
// PATCH  /api/v1/admin/bookings/:id                   - Change status
// Request body: { "status": "CANCELLED", "cancellationReason": "bus breakdown" }
// Allowed: PENDING -> CONFIRMED -> COMPLETED, PENDING|CONFIRMED -> CANCELLED
