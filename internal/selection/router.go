package selection

import (
	"github.com/gin-gonic/gin"
)

// SetupSelectionRoutes configures the seat selection session routes
func SetupSelectionRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	selection := rg.Group("/selection")
	selection.Use(auth)
	{
		selection.GET("", controller.GetSelection)
		selection.DELETE("", controller.Reset)
		selection.POST("/open", controller.Open)
		selection.PUT("/date", controller.SetDate)
		selection.GET("/seats", controller.GetGrid)
		selection.POST("/seats/:key/toggle", controller.ToggleSeat)
		selection.PUT("/boarding-point", controller.SetBoardingPoint)
		selection.PUT("/dropping-point", controller.SetDroppingPoint)
	}
}

// Route definitions for reference:
//
// GET    /api/v1/selection                       - Current session state
// DELETE /api/v1/selection                       - Reset session, release seat holds
// POST   /api/v1/selection/open                  - { "vehicleId": "...", "bookingDate": "2024-06-01" }
// PUT    /api/v1/selection/date                  - { "bookingDate": "2024-06-02" } (clears seats on change)
// GET    /api/v1/selection/seats                 - Resolved seat grid per deck
// POST   /api/v1/selection/seats/:key/toggle     - Toggle lower-0-0 etc; refusals answer 200 with a warning
// PUT    /api/v1/selection/boarding-point        - { "stopId": "..." }
// PUT    /api/v1/selection/dropping-point        - { "stopId": "..." }
