package bookings

import (
	"errors"
	"net/http"

	"busline/internal/backend"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

type Controller struct {
	service   Service
	validator *validator.Validate
}

func NewController(service Service) *Controller {
	return &Controller{
		service:   service,
		validator: validator.New(),
	}
}

// GetHistory handles GET /api/v1/bookings
func (c *Controller) GetHistory(ctx *gin.Context) {
	var query HistoryQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	history, err := c.service.History(ctx.Request.Context(), query)
	if err != nil {
		c.respondError(ctx, "Failed to get bookings", err)
		return
	}

	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Bookings retrieved successfully", history, nil)
}

// UpdateStatus handles PATCH /api/v1/admin/bookings/:id
func (c *Controller) UpdateStatus(ctx *gin.Context) {
	id := ctx.Param("id")

	var req UpdateStatusRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	if err := c.validator.Struct(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Validation failed", nil, err.Error())
		return
	}

	booking, err := c.service.UpdateStatus(ctx.Request.Context(), id, req)
	if err != nil {
		c.respondError(ctx, "Failed to update booking status", err)
		return
	}

	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Booking status updated successfully", booking, nil)
}

func (c *Controller) respondError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrInvalidStatus):
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, message, nil, err.Error())
		return
	case errors.Is(err, ErrInvalidTransition):
		response.RespondJSON(ctx, response.StatusError, http.StatusConflict, message, nil, err.Error())
		return
	}

	if status, upstream, ok := backend.StatusFor(err); ok {
		response.RespondJSON(ctx, response.StatusError, status, upstream, nil, nil)
		return
	}
	response.RespondJSON(ctx, response.StatusError, http.StatusInternalServerError, message, nil, err.Error())
}
