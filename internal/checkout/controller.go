package checkout

import (
	"errors"
	"net/http"

	"busline/internal/backend"
	"busline/internal/seats"
	"busline/internal/shared/middleware"
	"busline/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Enter handles GET /api/v1/checkout
func (c *Controller) Enter(ctx *gin.Context) {
	view, err := c.service.Enter(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to open checkout", err)
		return
	}
	if view.Notice != "" {
		response.RespondWithWarning(ctx, http.StatusOK, "Checkout ready", view, view.Notice)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Checkout ready", view, nil)
}

// ChooseMethod handles PUT /api/v1/checkout/method
func (c *Controller) ChooseMethod(ctx *gin.Context) {
	var req ChooseMethodRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	view, err := c.service.ChooseMethod(ctx.Request.Context(), middleware.UserID(ctx), req.Method)
	if err != nil {
		c.respondError(ctx, "Failed to choose payment method", err)
		return
	}

	if view.Notice != "" {
		response.RespondWithWarning(ctx, http.StatusOK, "Card payment is unavailable, switched to cash", view, view.Notice)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Payment method updated", view, nil)
}

// SubmitCash handles POST /api/v1/checkout/cash
func (c *Controller) SubmitCash(ctx *gin.Context) {
	result, err := c.service.SubmitCash(ctx.Request.Context(), middleware.UserID(ctx))
	if err != nil {
		c.respondError(ctx, "Failed to create booking", err)
		return
	}
	response.RespondRedirect(ctx, http.StatusCreated, "Booking created successfully", result, result.Redirect)
}

// CompleteCard handles POST /api/v1/checkout/card/complete
func (c *Controller) CompleteCard(ctx *gin.Context) {
	var req CompleteCardRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.CompleteCard(ctx.Request.Context(), middleware.UserID(ctx), req.PaymentIntentID)
	if err != nil {
		c.respondError(ctx, "Failed to complete card payment", err)
		return
	}
	response.RespondRedirect(ctx, http.StatusOK, "Payment completed", result, result.Redirect)
}

// GetConfig handles GET /api/v1/checkout/config
func (c *Controller) GetConfig(ctx *gin.Context) {
	settings, err := c.service.Config(ctx.Request.Context())
	if err != nil {
		c.respondError(ctx, "Failed to get payment configuration", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Payment configuration retrieved successfully", settings, nil)
}

// GetAttempts handles GET /api/v1/checkout/attempts
func (c *Controller) GetAttempts(ctx *gin.Context) {
	var query AttemptsQuery
	if err := ctx.ShouldBindQuery(&query); err != nil {
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, "Invalid query parameters", nil, err.Error())
		return
	}

	attempts, err := c.service.Attempts(ctx.Request.Context(), middleware.UserID(ctx), query.Limit)
	if err != nil {
		c.respondError(ctx, "Failed to get checkout attempts", err)
		return
	}
	response.RespondJSON(ctx, response.StatusSuccess, http.StatusOK, "Checkout attempts retrieved successfully", attempts, nil)
}

func (c *Controller) respondError(ctx *gin.Context, message string, err error) {
	switch {
	case errors.Is(err, ErrPreconditionFailed):
		response.RespondRedirect(ctx, http.StatusPreconditionFailed, err.Error(), nil, RedirectHome)
		return
	case errors.Is(err, ErrInvalidMethod):
		response.RespondJSON(ctx, response.StatusError, http.StatusBadRequest, message, nil, err.Error())
		return
	case errors.Is(err, seats.ErrSeatHeld):
		response.RespondJSON(ctx, response.StatusError, http.StatusConflict, "One of your seats was just taken by another booking", nil, err.Error())
		return
	case errors.Is(err, ErrSubmissionInFlight), errors.Is(err, ErrWrongMethod), errors.Is(err, ErrIntentMismatch),
		errors.Is(err, ErrStaleIntent):
		response.RespondJSON(ctx, response.StatusError, http.StatusConflict, message, nil, err.Error())
		return
	}

	if status, upstream, ok := backend.StatusFor(err); ok {
		response.RespondJSON(ctx, response.StatusError, status, upstream, nil, nil)
		return
	}
	response.RespondJSON(ctx, response.StatusError, http.StatusInternalServerError, message, nil, err.Error())
}
