package bookings

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeSnapshot(t *testing.T, raw string) Snapshot {
	t.Helper()
	var s Snapshot
	require.NoError(t, json.Unmarshal([]byte(raw), &s))
	return s
}

func TestIsBooked_CalendarDay(t *testing.T) {
	snapshot := decodeSnapshot(t, `[{"bookingDate": "2024-06-01T00:00:00.000Z", "seatNumbers": [{"key": "lower-0-0"}]}]`)

	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	june2 := time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC)

	assert.True(t, snapshot.IsBooked("lower-0-0", june1, time.UTC))
	assert.False(t, snapshot.IsBooked("lower-0-0", june2, time.UTC))
	assert.False(t, snapshot.IsBooked("lower-0-1", june1, time.UTC))

	// same calendar day, different instant
	assert.True(t, snapshot.IsBooked("lower-0-0", june1.Add(20*time.Hour), time.UTC))
}

func TestIsBooked_ComparesDaysInLocation(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	require.NoError(t, err)

	// 20:00 UTC on May 31 is already June 1 in Kolkata
	snapshot := decodeSnapshot(t, `[{"bookingDate": "2024-05-31T20:00:00Z", "seatNumbers": [{"key": "lower-0-0"}]}]`)
	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, kolkata)

	assert.True(t, snapshot.IsBooked("lower-0-0", june1, kolkata))
	assert.False(t, snapshot.IsBooked("lower-0-0", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC))
}

func TestIsBooked_DateOnlyIsSameDayEverywhere(t *testing.T) {
	newYork, err := time.LoadLocation("America/New_York")
	require.NoError(t, err)

	snapshot := decodeSnapshot(t, `[{"bookingDate": "2024-06-01", "seatNumbers": ["upper-1-0"]}]`)
	june1 := time.Date(2024, 6, 1, 0, 0, 0, 0, newYork)

	assert.True(t, snapshot.IsBooked("upper-1-0", june1, newYork))
}

func TestIsBooked_MalformedEntriesNeverMatch(t *testing.T) {
	snapshot := decodeSnapshot(t, `[
		{"seatNumbers": [{"key": "lower-0-0"}]},
		{"bookingDate": null, "seatNumbers": [{"key": "lower-0-0"}]},
		{"bookingDate": "next tuesday", "seatNumbers": [{"key": "lower-0-0"}]},
		{"bookingDate": 1717200000, "seatNumbers": [{"key": "lower-0-0"}]}
	]`)

	require.Len(t, snapshot, 4)
	assert.False(t, snapshot.IsBooked("lower-0-0", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC))
	assert.False(t, snapshot.IsBooked("lower-0-0", time.Time{}, time.UTC))
}

func TestIsBooked_CancelledBookingsFreeSeats(t *testing.T) {
	snapshot := decodeSnapshot(t, `[{"bookingDate": "2024-06-01", "status": "CANCELLED", "seatNumbers": [{"key": "lower-0-0"}]}]`)

	assert.False(t, snapshot.IsBooked("lower-0-0", time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC))
}

func TestBookedKeys(t *testing.T) {
	snapshot := decodeSnapshot(t, `[
		{"bookingDate": "2024-06-01", "seatNumbers": [{"key": "lower-0-0"}, {"key": "lower-0-1"}]},
		{"bookingDate": "2024-06-02", "seatNumbers": [{"key": "lower-1-0"}]}
	]`)

	booked := snapshot.BookedKeys(time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), time.UTC)
	assert.Len(t, booked, 2)
	assert.True(t, booked["lower-0-0"])
	assert.False(t, booked["lower-1-0"])
}

func TestBookingDate_Marshal(t *testing.T) {
	raw, err := json.Marshal(struct {
		D BookingDate `json:"d"`
		Z BookingDate `json:"z"`
	}{D: NewDay(2024, 6, 1)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"d":"2024-06-01T00:00:00Z","z":null}`, string(raw))
	assert.Equal(t, "2024-06-01", NewDay(2024, 6, 1).String())
}

func TestStatus_Transitions(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusPending, StatusConfirmed},
		{StatusConfirmed, StatusCompleted},
		{StatusPending, StatusCancelled},
		{StatusConfirmed, StatusCancelled},
	}
	for _, tr := range allowed {
		assert.Truef(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}

	denied := []struct{ from, to Status }{
		{StatusPending, StatusCompleted},
		{StatusCompleted, StatusCancelled},
		{StatusCancelled, StatusConfirmed},
		{StatusConfirmed, StatusPending},
	}
	for _, tr := range denied {
		assert.Falsef(t, tr.from.CanTransitionTo(tr.to), "%s -> %s", tr.from, tr.to)
	}

	assert.False(t, Status("ARCHIVED").IsValid())
}
