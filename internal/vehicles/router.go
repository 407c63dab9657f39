package vehicles

import (
	"github.com/gin-gonic/gin"
)

func SetupVehicleRoutes(rg *gin.RouterGroup, controller *Controller, auth gin.HandlerFunc) {
	vehicles := rg.Group("/vehicles")
	vehicles.Use(auth)
	{
		vehicles.GET("/:id", controller.GetVehicle) // GET /api/v1/vehicles/:id
	}
}
