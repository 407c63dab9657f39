package main

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"busline/internal/seatmap"
	"busline/internal/vehicles"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validLayout = `{
	"rows": {"LOWER": [["SEAT", null, "SLEEPER"]]},
	"seats": {
		"lower-0-0": {"type": "SEAT", "number": "L01", "deck": "LOWER"},
		"lower-0-2": {"type": "SLEEPER", "number": "L02", "deck": "LOWER"}
	}
}`

type fakeVehicles struct {
	vehicle *vehicles.Vehicle
	err     error
}

func (f *fakeVehicles) GetVehicleByID(ctx context.Context, id string) (*vehicles.Vehicle, error) {
	return f.vehicle, f.err
}

func TestLint_BareSeatMap(t *testing.T) {
	report, err := (&Linter{}).Lint("layout.json", strings.NewReader(validLayout))
	require.NoError(t, err)

	assert.True(t, report.OK())
	assert.Equal(t, 2, report.Seats)
	assert.Empty(t, report.Unpriced)
}

func TestLint_VehicleEnvelopeChecksPricing(t *testing.T) {
	body := `{"success": true, "data": {"id": "bus-1", "seatMap": ` + validLayout + `, "pricing": {"SEAT": 250}}}`

	report, err := (&Linter{}).Lint("bus-1.json", strings.NewReader(body))
	require.NoError(t, err)

	assert.Empty(t, report.Violations)
	assert.Equal(t, []seatmap.SeatType{seatmap.SeatTypeSleeper}, report.Unpriced)
	assert.False(t, report.OK())
}

func TestLint_ReportsViolations(t *testing.T) {
	broken := `{
		"rows": [["SEAT", "SEAT"]],
		"seats": {
			"lower-0-0": {"type": "SLEEPER", "number": "L01", "deck": "LOWER"},
			"lower-0-5": {"type": "SEAT", "number": "L09", "deck": "LOWER"}
		}
	}`

	report, err := (&Linter{}).Lint("broken.json", strings.NewReader(broken))
	require.NoError(t, err)

	require.NotEmpty(t, report.Violations)
	for _, v := range report.Violations {
		assert.ErrorIs(t, v, seatmap.ErrInvalidLayout)
	}

	var out bytes.Buffer
	printReport(&out, report)
	assert.Contains(t, out.String(), "broken.json")
	assert.Contains(t, out.String(), "lower-0-1 has no seat entry")
}

func TestLint_MalformedJSON(t *testing.T) {
	_, err := (&Linter{}).Lint("bad.json", strings.NewReader(`{"rows":`))
	assert.Error(t, err)
}

func TestLintVehicle(t *testing.T) {
	var m seatmap.SeatMap
	require.NoError(t, m.UnmarshalJSON([]byte(validLayout)))

	linter := &Linter{vehicles: &fakeVehicles{vehicle: &vehicles.Vehicle{
		ID:      "bus-1",
		SeatMap: m,
		Pricing: map[seatmap.SeatType]float64{seatmap.SeatTypeSeat: 250, seatmap.SeatTypeSleeper: 400},
	}}}

	report, err := linter.LintVehicle(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.True(t, report.OK())
	assert.Equal(t, "vehicle bus-1", report.Source)

	linter.vehicles = &fakeVehicles{err: errors.New("backend down")}
	_, err = linter.LintVehicle(context.Background(), "bus-1")
	assert.Error(t, err)
}
