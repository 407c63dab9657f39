package vehicles

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"busline/internal/backend"
	"busline/internal/seatmap"
	"busline/internal/shared/config"
	"busline/internal/shared/constants"
	"busline/pkg/cache"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const vehicleJSON = `{"success": true, "data": {
	"id": "bus-1", "vendorId": "ven-1", "routeId": "route-1", "name": "Night Rider",
	"images": ["/uploads/bus-1.jpg", "https://cdn.example.com/x.jpg"],
	"seatMap": {
		"rows": {"LOWER": [["SEAT", null, "SEAT"]], "UPPER": [["SLEEPER"]]},
		"seats": {
			"lower-0-0": {"type": "SEAT", "number": "L01", "deck": "LOWER"},
			"lower-0-2": {"type": "SEAT", "number": "L02", "deck": "LOWER"},
			"upper-0-0": {"type": "SLEEPER", "number": "U01", "deck": "UPPER"}
		}
	},
	"pricing": {"SEAT": 250, "SLEEPER": 400},
	"route": {
		"origin": "Pune", "destination": "Goa",
		"boardingPoints": [{"id": "bp-1", "name": "Swargate", "arrivalTime": "21:00"}],
		"droppingPoints": [{"id": "dp-1", "name": "Panaji", "arrivalTime": "07:00"}]
	}
}}`

func newTestService(t *testing.T, handler http.HandlerFunc) Service {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })

	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	return NewService(NewRepository(client), cache.NewService(rdb), "http://assets.local/", 0)
}

func TestGetVehicle(t *testing.T) {
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		assert.Equal(t, "/vehicles/bus-1", r.URL.Path)
		w.Write([]byte(vehicleJSON))
	})

	for i := 0; i < 2; i++ {
		vehicle, err := svc.GetVehicle(context.Background(), "bus-1")
		require.NoError(t, err)

		assert.Equal(t, "ven-1", vehicle.VendorID)
		assert.Equal(t, []string{"http://assets.local/uploads/bus-1.jpg", "https://cdn.example.com/x.jpg"}, vehicle.Images)
		assert.Equal(t, 400.0, vehicle.PriceFor(seatmap.SeatTypeSleeper))
		assert.Len(t, vehicle.SeatMap.Keys(), 3)

		stop, ok := vehicle.BoardingPoint("bp-1")
		require.True(t, ok)
		assert.Equal(t, "Swargate", stop.Name)
		_, ok = vehicle.DroppingPoint("bp-1")
		assert.False(t, ok)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&calls), "second read comes from cache")
}

func TestGetVehicle_CacheTTL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(vehicleJSON))
	}))
	t.Cleanup(srv.Close)

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { rdb.Close() })
	client := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)

	svc := NewService(NewRepository(client), cache.NewService(rdb), "", 90*time.Minute)
	_, err := svc.GetVehicle(context.Background(), "bus-1")
	require.NoError(t, err)
	assert.Equal(t, 90*time.Minute, mr.TTL(constants.BuildVehicleDetailKey("bus-1")))

	svc = NewService(NewRepository(client), cache.NewService(rdb), "", 0)
	_, err = svc.GetVehicle(context.Background(), "bus-2")
	require.NoError(t, err)
	assert.Equal(t, constants.TTL_VEHICLE_DETAIL, mr.TTL(constants.BuildVehicleDetailKey("bus-2")))
}

func TestGetVehicle_NotFound(t *testing.T) {
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"message":"Vehicle not found"}`))
	})

	_, err := svc.GetVehicle(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrVehicleNotFound)
}

func TestGetVehicle_InvalidLayoutIsNotCached(t *testing.T) {
	var calls int32
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Write([]byte(`{"data": {"id": "bus-2", "seatMap": {"rows": [["SEAT"]], "seats": {}}}}`))
	})

	for i := 0; i < 2; i++ {
		_, err := svc.GetVehicle(context.Background(), "bus-2")
		assert.ErrorIs(t, err, ErrInvalidVehicle)
	}
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestController_GetVehicle(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router := gin.New()
	router.GET("/vehicles/:id", NewController(svc).GetVehicle)

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/vehicles/ghost", nil))
	assert.Equal(t, http.StatusNotFound, recorder.Code)
}
