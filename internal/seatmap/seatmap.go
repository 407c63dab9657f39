package seatmap

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

func NewKey(deck Deck, row, col int) SeatKey {
	return SeatKey(fmt.Sprintf("%s-%d-%d", strings.ToLower(string(deck)), row, col))
}

// ParseKey splits a seat key into its deck and grid position
func ParseKey(s string) (Deck, int, int, error) {
	parts := strings.Split(s, "-")
	if len(parts) != 3 {
		return "", 0, 0, fmt.Errorf("%w: %q", ErrInvalidKey, s)
	}

	deck := Deck(strings.ToUpper(parts[0]))
	if !deck.IsValid() {
		return "", 0, 0, fmt.Errorf("%w: unknown deck in %q", ErrInvalidKey, s)
	}

	row, err := strconv.Atoi(parts[1])
	if err != nil || row < 0 {
		return "", 0, 0, fmt.Errorf("%w: bad row in %q", ErrInvalidKey, s)
	}
	col, err := strconv.Atoi(parts[2])
	if err != nil || col < 0 {
		return "", 0, 0, fmt.Errorf("%w: bad column in %q", ErrInvalidKey, s)
	}

	return deck, row, col, nil
}

// UnmarshalJSON accepts rows either keyed by deck or, for single-deck
// vehicles, as a bare grid which is taken to be the lower deck.
func (m *SeatMap) UnmarshalJSON(data []byte) error {
	var raw struct {
		Rows  json.RawMessage      `json:"rows"`
		Seats map[SeatKey]SeatInfo `json:"seats"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	m.Seats = raw.Seats
	m.Rows = nil

	rows := bytes.TrimSpace(raw.Rows)
	if len(rows) == 0 || bytes.Equal(rows, []byte("null")) {
		return nil
	}

	if rows[0] == '[' {
		var grid [][]*SeatType
		if err := json.Unmarshal(rows, &grid); err != nil {
			return err
		}
		m.Rows = map[Deck][][]*SeatType{DeckLower: grid}
		return nil
	}

	return json.Unmarshal(rows, &m.Rows)
}

// Decks returns the decks present in the layout, lower first
func (m *SeatMap) Decks() []Deck {
	var decks []Deck
	for _, d := range deckOrder {
		if _, ok := m.Rows[d]; ok {
			decks = append(decks, d)
		}
	}
	return decks
}

// Lookup returns the seat at key. Empty positions and positions outside
// the grid report false.
func (m *SeatMap) Lookup(key SeatKey) (SeatInfo, bool) {
	info, ok := m.Seats[key]
	if !ok {
		return SeatInfo{}, false
	}
	if m.cell(key) == nil {
		return SeatInfo{}, false
	}
	return info, true
}

func (m *SeatMap) cell(key SeatKey) *SeatType {
	deck, row, col, err := ParseKey(string(key))
	if err != nil {
		return nil
	}
	grid := m.Rows[deck]
	if row >= len(grid) || col >= len(grid[row]) {
		return nil
	}
	return grid[row][col]
}

// Keys lists every seat, lower deck first, row-major
func (m *SeatMap) Keys() []SeatKey {
	var keys []SeatKey
	for _, deck := range m.Decks() {
		for r, row := range m.Rows[deck] {
			for c, cell := range row {
				if cell == nil {
					continue
				}
				key := NewKey(deck, r, c)
				if _, ok := m.Seats[key]; ok {
					keys = append(keys, key)
				}
			}
		}
	}
	return keys
}

// Validate returns every violation of the layout's consistency rules,
// joined. Each violation wraps ErrInvalidLayout.
func (m *SeatMap) Validate() error {
	return errors.Join(m.Violations()...)
}

// Violations checks that grid cells and seat entries describe the same set
// of positions with matching decks and types.
func (m *SeatMap) Violations() []error {
	var errs []error
	fail := func(format string, args ...interface{}) {
		errs = append(errs, fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidLayout}, args...)...))
	}

	if len(m.Rows) == 0 {
		fail("no rows")
	}

	for deck := range m.Rows {
		if !deck.IsValid() {
			fail("unknown deck %q", deck)
		}
	}

	for _, deck := range m.Decks() {
		for r, row := range m.Rows[deck] {
			for c, cell := range row {
				if cell == nil {
					continue
				}
				key := NewKey(deck, r, c)
				if !cell.IsValid() {
					fail("cell %s has unknown seat type %q", key, *cell)
					continue
				}
				info, ok := m.Seats[key]
				if !ok {
					fail("cell %s has no seat entry", key)
					continue
				}
				if info.Type != *cell {
					fail("seat %s is %s in the grid but %s in its entry", key, *cell, info.Type)
				}
			}
		}
	}

	for key, info := range m.Seats {
		deck, _, _, err := ParseKey(string(key))
		if err != nil {
			fail("seat entry %q: %v", key, err)
			continue
		}
		if info.Deck != deck {
			fail("seat %s is on deck %s but its key says %s", key, info.Deck, deck)
		}
		if m.cell(key) == nil {
			fail("seat %s references an empty or missing cell", key)
		}
	}

	return errs
}
