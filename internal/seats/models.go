package seats

import (
	"time"

	"busline/internal/bookings"
	"busline/internal/seatmap"
)

// Status is what a seat cell shows and whether it can be clicked
type Status string

const (
	StatusEmpty     Status = "empty"
	StatusAvailable Status = "available"
	StatusSelected  Status = "selected"
	StatusBooked    Status = "booked"
)

// Selectable reports whether a click may add the seat to a selection
func (s Status) Selectable() bool {
	return s == StatusAvailable || s == StatusSelected
}

// Input is everything the resolver looks at
type Input struct {
	Map      *seatmap.SeatMap
	Snapshot bookings.Snapshot
	Date     time.Time
	Location *time.Location

	Selected     map[seatmap.SeatKey]bool
	HeldByOthers map[seatmap.SeatKey]bool

	// Pricing fills Cell.Price in ResolveGrid
	Pricing map[seatmap.SeatType]float64
}

type Cell struct {
	Key    seatmap.SeatKey  `json:"key"`
	Status Status           `json:"status"`
	Number string           `json:"number,omitempty"`
	Type   seatmap.SeatType `json:"type,omitempty"`
	Price  float64          `json:"price,omitempty"`
}

type DeckGrid struct {
	Deck seatmap.Deck `json:"deck"`
	Rows [][]Cell     `json:"rows"`
}

type Grid struct {
	Decks     []DeckGrid `json:"decks"`
	Available int        `json:"available"`
	Booked    int        `json:"booked"`
	Selected  int        `json:"selected"`
}
