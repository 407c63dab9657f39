package seatmap

import "errors"

type Deck string

const (
	DeckLower Deck = "LOWER"
	DeckUpper Deck = "UPPER"
)

// deckOrder is the order decks are rendered and iterated in
var deckOrder = []Deck{DeckLower, DeckUpper}

func (d Deck) IsValid() bool {
	return d == DeckLower || d == DeckUpper
}

type SeatType string

const (
	SeatTypeSeat    SeatType = "SEAT"
	SeatTypeSleeper SeatType = "SLEEPER"
)

func (t SeatType) IsValid() bool {
	return t == SeatTypeSeat || t == SeatTypeSleeper
}

// SeatKey locates a cell: "<deck>-<row>-<col>" with a lower-case deck,
// e.g. "lower-0-2".
type SeatKey string

type SeatInfo struct {
	Type   SeatType `json:"type"`
	Number string   `json:"number"`
	Deck   Deck     `json:"deck"`
}

// SeatMap is a vehicle's physical layout. A nil cell is an empty position
// (aisle, stairs, driver).
type SeatMap struct {
	Rows  map[Deck][][]*SeatType `json:"rows"`
	Seats map[SeatKey]SeatInfo   `json:"seats"`
}

var (
	ErrInvalidLayout = errors.New("invalid seat layout")
	ErrInvalidKey    = errors.New("invalid seat key")
)
