package vehicles

import (
	"busline/internal/seatmap"
)

// Stop is a boarding or dropping point on a route
type Stop struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	ArrivalTime string `json:"arrivalTime,omitempty"`
}

type Route struct {
	ID             string `json:"id,omitempty"`
	Origin         string `json:"origin"`
	Destination    string `json:"destination"`
	BoardingPoints []Stop `json:"boardingPoints"`
	DroppingPoints []Stop `json:"droppingPoints"`
}

// Vehicle is the backend's vehicle record with the parts the booking
// flow needs
type Vehicle struct {
	ID                 string                       `json:"id"`
	VendorID           string                       `json:"vendorId"`
	RouteID            string                       `json:"routeId"`
	Name               string                       `json:"name"`
	RegistrationNumber string                       `json:"registrationNumber,omitempty"`
	Images             []string                     `json:"images,omitempty"`
	SeatMap            seatmap.SeatMap              `json:"seatMap"`
	Pricing            map[seatmap.SeatType]float64 `json:"pricing"`
	Route              Route                        `json:"route"`
}

// PriceFor returns the fare of a seat type, zero when unpriced
func (v *Vehicle) PriceFor(t seatmap.SeatType) float64 {
	return v.Pricing[t]
}

func (v *Vehicle) BoardingPoint(id string) (Stop, bool) {
	return findStop(v.Route.BoardingPoints, id)
}

func (v *Vehicle) DroppingPoint(id string) (Stop, bool) {
	return findStop(v.Route.DroppingPoints, id)
}

func findStop(stops []Stop, id string) (Stop, bool) {
	for _, s := range stops {
		if s.ID == id {
			return s, true
		}
	}
	return Stop{}, false
}
