package constants

import (
	"time"
)

// Redis key layout for the gateway.
// Pattern: busline:{module}:{kind}:{identifier}

// ================== CACHE TTL DURATIONS ==================

const (
	TTL_STATIC_LONG   = 24 * time.Hour // payment settings
	TTL_STATIC_MEDIUM = 6 * time.Hour  // vehicle layouts, unless REDIS_CACHE_TTL is set
)

const (
	CACHE_PREFIX = "busline"
)

// ================== VEHICLES MODULE ==================

const (
	CACHE_KEY_VEHICLE_DETAIL = CACHE_PREFIX + ":vehicles:detail:" // + vehicle-id
)

const (
	TTL_VEHICLE_DETAIL = TTL_STATIC_MEDIUM
)

// ================== CHECKOUT MODULE ==================

const (
	CACHE_KEY_PAYMENT_SETTINGS = CACHE_PREFIX + ":checkout:payment_settings"
	KEY_CHECKOUT_STATE         = CACHE_PREFIX + ":checkout:state:"    // + owner-id
	KEY_CHECKOUT_INFLIGHT      = CACHE_PREFIX + ":checkout:inflight:" // + owner-id
)

const (
	TTL_PAYMENT_SETTINGS = TTL_STATIC_LONG
)

// ================== SELECTION MODULE ==================

const (
	KEY_SELECTION_STATE = CACHE_PREFIX + ":selection:state:" // + owner-id
)

// ================== SEATS MODULE ==================

const (
	KEY_SEAT_HOLD   = CACHE_PREFIX + ":seats:hold:"  // + vehicle-id:date:seat-key
	KEY_OWNER_HOLDS = CACHE_PREFIX + ":seats:owner:" // + owner-id
)

// ================== RATE LIMIT ==================

const (
	KEY_RATE_LIMIT = CACHE_PREFIX + ":ratelimit:" // + ip:type
)

// ================== HELPER FUNCTIONS ==================

func BuildVehicleDetailKey(vehicleID string) string {
	return CACHE_KEY_VEHICLE_DETAIL + vehicleID
}

func BuildSelectionStateKey(ownerID string) string {
	return KEY_SELECTION_STATE + ownerID
}

func BuildCheckoutStateKey(ownerID string) string {
	return KEY_CHECKOUT_STATE + ownerID
}

func BuildCheckoutInFlightKey(ownerID string) string {
	return KEY_CHECKOUT_INFLIGHT + ownerID
}

// BuildSeatHoldKey keys a hold by the tuple bookings are serialised on
func BuildSeatHoldKey(vehicleID, date, seatKey string) string {
	return KEY_SEAT_HOLD + vehicleID + ":" + date + ":" + seatKey
}

func BuildOwnerHoldsKey(ownerID string) string {
	return KEY_OWNER_HOLDS + ownerID
}

func BuildRateLimitKey(ip, limitType string) string {
	return KEY_RATE_LIMIT + ip + ":" + limitType
}
