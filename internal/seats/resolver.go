package seats

import (
	"busline/internal/seatmap"
)

// Resolve decides the status of one seat. First match wins: no seat at
// the position, booked on the selected day, held by another session,
// in the selection, otherwise available.
func Resolve(key seatmap.SeatKey, in Input) Status {
	if in.Map == nil {
		return StatusEmpty
	}
	if _, ok := in.Map.Lookup(key); !ok {
		return StatusEmpty
	}
	if in.Snapshot.IsBooked(key, in.Date, in.Location) {
		return StatusBooked
	}
	if in.HeldByOthers[key] {
		return StatusBooked
	}
	if in.Selected[key] {
		return StatusSelected
	}
	return StatusAvailable
}

// ResolveGrid renders every deck of the layout as rows of resolved cells
func ResolveGrid(in Input) Grid {
	var grid Grid
	if in.Map == nil {
		return grid
	}

	for _, deck := range in.Map.Decks() {
		rows := in.Map.Rows[deck]
		dg := DeckGrid{Deck: deck, Rows: make([][]Cell, len(rows))}

		for r, row := range rows {
			cells := make([]Cell, len(row))
			for c := range row {
				key := seatmap.NewKey(deck, r, c)
				cell := Cell{Key: key, Status: Resolve(key, in)}

				if info, ok := in.Map.Lookup(key); ok {
					cell.Number = info.Number
					cell.Type = info.Type
					cell.Price = in.Pricing[info.Type]
				}

				switch cell.Status {
				case StatusAvailable:
					grid.Available++
				case StatusBooked:
					grid.Booked++
				case StatusSelected:
					grid.Selected++
				}
				cells[c] = cell
			}
			dg.Rows[r] = cells
		}
		grid.Decks = append(grid.Decks, dg)
	}
	return grid
}
