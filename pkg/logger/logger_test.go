package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newJSONLogger(t *testing.T, level string) (*Logger, *bytes.Buffer) {
	t.Helper()
	gin.SetMode(gin.ReleaseMode)
	t.Cleanup(func() { gin.SetMode(gin.TestMode) })

	var buf bytes.Buffer
	return NewWithWriter(&buf, level), &buf
}

func lastEntry(t *testing.T, buf *bytes.Buffer) map[string]interface{} {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestLogBookingPlaced(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.WithOwner("owner-1").LogBookingPlaced(context.Background(), "owner-1", "bk-9", "CASH", 500)

	entry := lastEntry(t, buf)
	assert.Equal(t, "Booking Placed", entry["msg"])
	assert.Equal(t, "bk-9", entry["booking_id"])
	assert.Equal(t, "CASH", entry["payment_method"])
	assert.Equal(t, float64(500), entry["final_amount"])
}

func TestLevelFiltersDebug(t *testing.T) {
	l, buf := newJSONLogger(t, "warn")

	l.LogSeatToggled(context.Background(), "owner-1", "lower-0-0", true, 250)
	assert.Zero(t, buf.Len())

	l.ErrorWithContext(context.Background(), "Seat hold failed", errors.New("boom"), map[string]interface{}{
		"vehicle_id": "bus-1",
	})
	entry := lastEntry(t, buf)
	assert.Equal(t, "ERROR", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "bus-1", entry["vehicle_id"])
}

func TestWithErrorCarriesOwnerAndError(t *testing.T) {
	l, buf := newJSONLogger(t, "info")

	l.WithOwner("owner-1").WithError(errors.New("hold store down")).ErrorContext(context.Background(), "Selection reset hook failed")

	entry := lastEntry(t, buf)
	assert.Equal(t, "owner-1", entry["owner_id"])
	assert.Equal(t, "hold store down", entry["error"])
}
