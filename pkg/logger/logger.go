package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

// Logger wraps slog.Logger with booking-flow helpers
type Logger struct {
	*slog.Logger
}

// New creates a logger writing to stdout
func New() *Logger {
	return NewWithWriter(os.Stdout, os.Getenv("LOG_LEVEL"))
}

// NewWithWriter creates a logger writing to w at the given level
func NewWithWriter(w io.Writer, levelStr string) *Logger {
	level := getLogLevel(levelStr)

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: level == slog.LevelDebug,
	}

	// Text output is easier to read while developing
	var handler slog.Handler
	if gin.Mode() == gin.DebugMode {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return &Logger{
		Logger: slog.New(handler),
	}
}

func getLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// WithOwner adds the session owner to logger context
func (l *Logger) WithOwner(ownerID string) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("owner_id", ownerID)),
	}
}

// WithError adds error to logger context
func (l *Logger) WithError(err error) *Logger {
	return &Logger{
		Logger: l.Logger.With(slog.String("error", err.Error())),
	}
}

// HTTP logging methods

// LogHTTPRequest logs a finished HTTP request
func (l *Logger) LogHTTPRequest(c *gin.Context, duration time.Duration) {
	l.Logger.InfoContext(c.Request.Context(),
		"HTTP Request",
		slog.String("method", c.Request.Method),
		slog.String("path", c.Request.URL.Path),
		slog.String("query", c.Request.URL.RawQuery),
		slog.Int("status", c.Writer.Status()),
		slog.Duration("duration", duration),
		slog.String("ip", c.ClientIP()),
		slog.String("user_agent", c.Request.UserAgent()),
		slog.Int("size", c.Writer.Size()),
	)
}

// LogUpstreamCall logs a call to the booking backend
func (l *Logger) LogUpstreamCall(ctx context.Context, method, path string, status int, duration time.Duration, err error) {
	if err != nil {
		l.Logger.WarnContext(ctx,
			"Upstream Call Failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
			slog.String("error", err.Error()),
		)
		return
	}
	l.Logger.DebugContext(ctx,
		"Upstream Call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.Duration("duration", duration),
	)
}

// Booking flow logging methods

// LogSeatToggled logs a seat selection change
func (l *Logger) LogSeatToggled(ctx context.Context, ownerID, seatKey string, selected bool, total float64) {
	l.Logger.DebugContext(ctx,
		"Seat Toggled",
		slog.String("owner_id", ownerID),
		slog.String("seat_key", seatKey),
		slog.Bool("selected", selected),
		slog.Float64("total_amount", total),
	)
}

// LogHoldConflict logs a seat that another session already holds
func (l *Logger) LogHoldConflict(ctx context.Context, ownerID, vehicleID, seatKey string) {
	l.Logger.WarnContext(ctx,
		"Seat Hold Conflict",
		slog.String("owner_id", ownerID),
		slog.String("vehicle_id", vehicleID),
		slog.String("seat_key", seatKey),
	)
}

// LogBookingPlaced logs a booking submitted to the backend
func (l *Logger) LogBookingPlaced(ctx context.Context, ownerID, bookingID, method string, amount float64) {
	l.Logger.InfoContext(ctx,
		"Booking Placed",
		slog.String("owner_id", ownerID),
		slog.String("booking_id", bookingID),
		slog.String("payment_method", method),
		slog.Float64("final_amount", amount),
	)
}

// LogIntentCreated logs a fresh card payment intent
func (l *Logger) LogIntentCreated(ctx context.Context, ownerID, intentID string, amount float64) {
	l.Logger.InfoContext(ctx,
		"Payment Intent Created",
		slog.String("owner_id", ownerID),
		slog.String("payment_intent_id", intentID),
		slog.Float64("amount", amount),
	)
}

// LogRateLimitExceeded logs rate limit exceeded
func (l *Logger) LogRateLimitExceeded(ctx context.Context, ip, endpoint string) {
	l.Logger.WarnContext(ctx,
		"Rate Limit Exceeded",
		slog.String("ip", ip),
		slog.String("endpoint", endpoint),
	)
}

// ErrorWithContext logs an error message with context
func (l *Logger) ErrorWithContext(ctx context.Context, msg string, err error, fields map[string]interface{}) {
	args := make([]interface{}, 0, len(fields)*2+2)
	args = append(args, slog.String("error", err.Error()))
	for k, v := range fields {
		args = append(args, slog.Any(k, v))
	}
	l.Logger.ErrorContext(ctx, msg, args...)
}

var defaultLogger = New()

// GetDefault returns the default logger instance
func GetDefault() *Logger {
	return defaultLogger
}

// SetDefault sets the default logger instance
func SetDefault(logger *Logger) {
	defaultLogger = logger
}
