package checkout

import (
	"github.com/gin-gonic/gin"
)

// SetupCheckoutRoutes configures the checkout routes
func SetupCheckoutRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	checkout := rg.Group("/checkout")
	checkout.Use(auth)
	{
		checkout.GET("", controller.Enter)
		checkout.GET("/config", controller.GetConfig)
		checkout.GET("/attempts", controller.GetAttempts)
		checkout.PUT("/method", controller.ChooseMethod)
		checkout.POST("/cash", controller.SubmitCash)
		checkout.POST("/card/complete", controller.CompleteCard)
	}
}

// Route definitions for reference:
//
// GET    /api/v1/checkout                  - Enter checkout, holds the selected seats (412 + redirect "/" if incomplete)
// GET    /api/v1/checkout/config           - Publishable payment key
// GET    /api/v1/checkout/attempts         - Caller's checkout ledger
// PUT    /api/v1/checkout/method           - { "method": "CASH" | "CARD" }; CARD creates a fresh payment intent
// POST   /api/v1/checkout/cash             - Submit a cash booking, redirect "/bookings"
// POST   /api/v1/checkout/card/complete    - { "paymentIntentId": "pi_..." }, redirect "/bookings/confirmation"
