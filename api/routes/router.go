// api/routes/router.go
package routes

import (
	"context"
	"net/http"
	"time"

	"busline/internal/backend"
	"busline/internal/bookings"
	"busline/internal/checkout"
	"busline/internal/notifications"
	"busline/internal/seats"
	"busline/internal/selection"
	"busline/internal/shared/config"
	"busline/internal/shared/database"
	"busline/internal/shared/middleware"
	"busline/internal/vehicles"
	"busline/pkg/cache"

	"github.com/gin-gonic/gin"
)

// Router holds all route dependencies
type Router struct {
	config    *config.Config
	db        *database.DB
	publisher notifications.Publisher

	backend *backend.Client
	cache   cache.Service
	holds   *seats.HoldStore

	// shared between route groups
	vehicleService   vehicles.Service
	bookingService   bookings.Service
	selectionService selection.Service
}

// NewRouter creates a new router instance
func NewRouter(cfg *config.Config, db *database.DB, publisher notifications.Publisher) *Router {
	return &Router{
		config:    cfg,
		db:        db,
		publisher: publisher,
		backend:   backend.NewClient(cfg.Backend, nil),
		cache:     cache.NewService(db.Redis),
		holds:     seats.NewHoldStore(db.Redis),
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes(engine *gin.Engine) {
	r.setupHealthRoutes(engine)

	auth := middleware.JWTAuth(r.config)

	api := engine.Group(r.config.GetAPIBasePath())
	{
		// order matters: selection needs vehicles and bookings, checkout
		// needs selection
		r.setupVehicleRoutes(api, auth)
		r.setupBookingRoutes(api, auth)
		r.setupSelectionRoutes(api, auth)
		r.setupCheckoutRoutes(api, auth)
	}
}

// setupHealthRoutes sets up health check and system status routes
func (r *Router) setupHealthRoutes(engine *gin.Engine) {
	engine.GET("/health", func(c *gin.Context) {
		if err := r.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":    "unhealthy",
				"error":     err.Error(),
				"timestamp": time.Now(),
				"service":   "busline-gateway",
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now(),
			"service":   "busline-gateway",
			"backend":   r.backend.State().String(),
		})
	})

	engine.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"version": r.config.APIVersion,
		})
	})

	engine.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":      "operational",
			"api_version": r.config.APIVersion,
			"timestamp":   time.Now(),
		})
	})
}

func (r *Router) setupVehicleRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	vehicleRepo := vehicles.NewRepository(r.backend)
	r.vehicleService = vehicles.NewService(vehicleRepo, r.cache, r.config.PublicAssetURL, r.config.Redis.CacheTTL)
	vehicleController := vehicles.NewController(r.vehicleService)

	vehicles.SetupVehicleRoutes(rg, vehicleController, auth)
}

func (r *Router) setupBookingRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	bookingRepo := bookings.NewRepository(r.backend)
	r.bookingService = bookings.NewService(bookingRepo, r.config.BookingLocation())
	bookingController := bookings.NewController(r.bookingService)

	bookings.SetupBookingRoutes(rg, bookingController, auth)
}

func (r *Router) setupSelectionRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	store := selection.NewStore(r.cache, r.config.Redis.SessionTTL)
	r.selectionService = selection.NewService(store, r.vehicleService, r.bookingService, r.holds, r.config.BookingLocation())

	// a reset gives back every seat the owner was holding
	r.selectionService.OnReset(func(ctx context.Context, ownerID string) error {
		_, err := r.holds.ReleaseOwner(ctx, ownerID)
		return err
	})

	selectionController := selection.NewController(r.selectionService)
	selection.SetupSelectionRoutes(rg, selectionController, auth)
}

func (r *Router) setupCheckoutRoutes(rg *gin.RouterGroup, auth gin.HandlerFunc) {
	states := checkout.NewStateStore(r.cache, r.config.Redis.SessionTTL, r.config.Redis.InFlightLockTTL)
	ledger := checkout.NewRepository(r.db.PostgreSQL)
	payments := checkout.NewPaymentGateway(r.backend)

	checkoutService := checkout.NewService(
		states,
		ledger,
		r.selectionService,
		r.bookingService,
		payments,
		r.holds,
		r.publisher,
		r.cache,
		checkout.Options{
			Currency: r.config.Payment.Currency,
			HoldTTL:  r.config.Redis.SeatHoldTTL,
		},
	)
	r.selectionService.OnReset(checkoutService.Clear)

	checkoutController := checkout.NewController(checkoutService)
	checkout.SetupCheckoutRoutes(rg, checkoutController, auth)
}
