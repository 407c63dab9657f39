package vehicles

import (
	"errors"
	"net/http"

	"busline/internal/backend"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetVehicle handles GET /api/v1/vehicles/:id
func (c *Controller) GetVehicle(ctx *gin.Context) {
	vehicle, err := c.service.GetVehicle(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, ErrVehicleNotFound):
			response.RespondJSON(ctx, response.StatusError, http.StatusNotFound, "Vehicle not found", nil, nil)
		case errors.Is(err, ErrInvalidVehicle):
			response.RespondJSON(ctx, response.StatusError, http.StatusBadGateway, "Vehicle layout is unavailable", nil, err.Error())
		default:
			if status, message, ok := backend.StatusFor(err); ok {
				response.RespondJSON(ctx, response.StatusError, status, message, nil, nil)
				return
			}
			response.RespondJSON(ctx, response.StatusError, http.StatusInternalServerError, "Failed to get vehicle", nil, err.Error())
		}
		return
	}

	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Vehicle retrieved successfully", vehicle, nil)
}
