package bookings

// CreateBookingRequest is the body of POST /bookings
type CreateBookingRequest struct {
	VehicleID       string        `json:"vehicleId"`
	VendorID        string        `json:"vendorId"`
	RouteID         string        `json:"routeId"`
	BoardingPointID string        `json:"boardingPointId"`
	DroppingPointID string        `json:"droppingPointId,omitempty"`
	BookingDate     BookingDate   `json:"bookingDate"`
	SeatNumbers     []SeatRef     `json:"seatNumbers"`
	TotalAmount     float64       `json:"totalAmount"`
	DiscountAmount  float64       `json:"discountAmount"`
	FinalAmount     float64       `json:"finalAmount"`
	PaymentMethod   PaymentMethod `json:"paymentMethod"`
}

// UpdateStatusRequest is the body of PATCH /admin/bookings/:id
type UpdateStatusRequest struct {
	Status             Status `json:"status" binding:"required" validate:"oneof=PENDING CONFIRMED COMPLETED CANCELLED"`
	CancellationReason string `json:"cancellationReason,omitempty" binding:"max=500"`
}

type HistoryQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1,max=100"`
}
