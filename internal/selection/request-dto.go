package selection

// OpenRequest starts a selection on a vehicle for a day
type OpenRequest struct {
	VehicleID   string `json:"vehicleId" binding:"required"`
	BookingDate string `json:"bookingDate" binding:"required,datetime=2006-01-02"`
}

type DateRequest struct {
	BookingDate string `json:"bookingDate" binding:"required,datetime=2006-01-02"`
}

type StopRequest struct {
	StopID string `json:"stopId" binding:"required"`
}
