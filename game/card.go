package game

import "math/rand"

// Column layout of a standard 75-ball card. Cells are indexed 0-24
// row-major over a 5x5 grid, so column = index % 5.
var Columns = [5]string{"B", "I", "N", "G", "O"}

// Per-column value ranges: B 1-15, I 16-30, N 31-45, G 46-60, O 61-75.
func columnRange(col int) (lo, hi int) {
	lo = col*15 + 1
	return lo, lo + 14
}

// FreeIndex is the center cell, always marked.
const FreeIndex = 12

type Cell struct {
	Index  int    `json:"index"`
	Column string `json:"column"`
	Value  int    `json:"value"` // 0 for the free cell
	Free   bool   `json:"free"`
}

// Card is an ordered grid of 25 cells. Immutable once generated.
type Card struct {
	Cells [25]Cell `json:"cells"`
}

// Cell returns the cell at index, or nil if out of range.
func (c *Card) Cell(index int) *Cell {
	if index < 0 || index >= len(c.Cells) {
		return nil
	}
	return &c.Cells[index]
}

// NewCard draws 5 distinct values per column from that column's range
// and places the free cell at the grid center.
func NewCard(rng *rand.Rand) Card {
	var card Card
	for col := 0; col < 5; col++ {
		lo, hi := columnRange(col)
		seen := make(map[int]bool, 5)
		for row := 0; row < 5; row++ {
			idx := row*5 + col
			if idx == FreeIndex {
				card.Cells[idx] = Cell{Index: idx, Column: Columns[col], Free: true}
				continue
			}
			v := lo + rng.Intn(hi-lo+1)
			for seen[v] {
				v = lo + rng.Intn(hi-lo+1)
			}
			seen[v] = true
			card.Cells[idx] = Cell{Index: idx, Column: Columns[col], Value: v}
		}
	}
	return card
}

// NewCardPool generates size independent cards. No uniqueness is
// guaranteed across cards.
func NewCardPool(rng *rand.Rand, size int) []Card {
	pool := make([]Card, size)
	for i := range pool {
		pool[i] = NewCard(rng)
	}
	return pool
}

// Preview returns, per column, the first k non-free values in row
// order. Used for the pool browse list sent to joining players.
func Preview(card Card, k int) map[string][]int {
	out := make(map[string][]int, 5)
	for col := 0; col < 5; col++ {
		values := make([]int, 0, k)
		for row := 0; row < 5 && len(values) < k; row++ {
			cell := card.Cells[row*5+col]
			if cell.Free {
				continue
			}
			values = append(values, cell.Value)
		}
		out[Columns[col]] = values
	}
	return out
}
