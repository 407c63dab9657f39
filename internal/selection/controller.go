package selection

import (
	"errors"
	"net/http"

	"busline/internal/backend"
	"busline/internal/seatmap"
	"busline/internal/shared/middleware"
	"busline/internal/shared/utils/response"
	"busline/internal/vehicles"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// GetSelection handles GET /api/v1/selection
func (c *Controller) GetSelection(ctx *gin.Context) {
	state, err := c.service.Get(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to get selection", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Selection retrieved successfully", state, nil)
}

// Open handles POST /api/v1/selection/open
func (c *Controller) Open(ctx *gin.Context) {
	var req OpenRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	state, err := c.service.Open(ctx.Request.Context(), middleware.UserID(ctx), req.VehicleID, req.BookingDate)
	if err != nil {
		c.respondError(ctx, "Failed to open selection", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Selection opened successfully", state, nil)
}

// SetDate handles PUT /api/v1/selection/date
func (c *Controller) SetDate(ctx *gin.Context) {
	var req DateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	state, err := c.service.SetDate(ctx.Request.Context(), middleware.UserID(ctx), req.BookingDate)
	if err != nil {
		c.respondError(ctx, "Failed to set booking date", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Booking date updated successfully", state, nil)
}

// ToggleSeat handles POST /api/v1/selection/seats/:key/toggle
func (c *Controller) ToggleSeat(ctx *gin.Context) {
	key := seatmap.SeatKey(ctx.Param("key"))
	if _, _, _, err := seatmap.ParseKey(string(key)); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid seat key", nil, err.Error())
		return
	}

	result, err := c.service.ToggleSeat(ctx.Request.Context(), middleware.UserID(ctx), key)
	if err != nil {
		c.respondError(ctx, "Failed to toggle seat", err)
		return
	}

	if result.Warning != "" {
		response.RespondWithWarning(ctx, http.StatusOK, "Seat selection unchanged", result, result.Warning)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Seat selection updated", result, nil)
}

// SetBoardingPoint handles PUT /api/v1/selection/boarding-point
func (c *Controller) SetBoardingPoint(ctx *gin.Context) {
	var req StopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	state, err := c.service.SetBoardingPoint(ctx.Request.Context(), middleware.UserID(ctx), req.StopID)
	if err != nil {
		c.respondError(ctx, "Failed to set boarding point", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Boarding point updated successfully", state, nil)
}

// SetDroppingPoint handles PUT /api/v1/selection/dropping-point
func (c *Controller) SetDroppingPoint(ctx *gin.Context) {
	var req StopRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	state, err := c.service.SetDroppingPoint(ctx.Request.Context(), middleware.UserID(ctx), req.StopID)
	if err != nil {
		c.respondError(ctx, "Failed to set dropping point", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Dropping point updated successfully", state, nil)
}

// Reset handles DELETE /api/v1/selection
func (c *Controller) Reset(ctx *gin.Context) {
	if err := c.service.Reset(ctx.Request.Context(), middleware.UserID(ctx)); err != nil {
		c.respondError(ctx, "Failed to reset selection", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Selection reset successfully", NewState(), nil)
}

// GetGrid handles GET /api/v1/selection/seats
func (c *Controller) GetGrid(ctx *gin.Context) {
	grid, err := c.service.Grid(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to get seats", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Seats retrieved successfully", grid, nil)
}

func (c *Controller) respondError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrInvalidDate), errors.Is(err, ErrUnknownStop):
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, message, nil, err.Error())
		return
	case errors.Is(err, ErrNoVehicle), errors.Is(err, ErrNoDate):
		response.RespondJSON(ctx, response.StatusError, http.StatusConflict, message, nil, err.Error())
		return
	case errors.Is(err, vehicles.ErrVehicleNotFound):
		response.RespondJSON(ctx, response.StatusError, http.StatusNotFound, "Vehicle not found", nil, nil)
		return
	case errors.Is(err, vehicles.ErrInvalidVehicle):
		response.RespondJSON(ctx, response.StatusError, http.StatusBadGateway, "Vehicle layout is unavailable", nil, err.Error())
		return
	}

	if status, upstream, ok := backend.StatusFor(err); ok {
		response.RespondJSON(ctx, response.StatusError, status, upstream, nil, nil)
		return
	}
	response.RespondJSON(ctx, response.StatusError, http.StatusInternalServerError, message, nil, err.Error())
}
