package game

import "fmt"

// MatchedPattern names a completed winning shape and the cells that
// form it, so the verifying side can display it.
type MatchedPattern struct {
	Name  string `json:"name"`
	Cells []int  `json:"cells"`
}

// WinResult is the outcome of evaluating a marked-cell set.
type WinResult struct {
	Won      bool             `json:"won"`
	Patterns []MatchedPattern `json:"patterns"`
}

var (
	mainDiagonal = []int{0, 6, 12, 18, 24}
	antiDiagonal = []int{4, 8, 16, 20, 12}
	corners      = []int{0, 4, 20, 24}
)

// Evaluate checks a marked-cell set against every winning pattern and
// returns all matches. The free center cell counts as marked whether
// or not it is in the set. Pure: same input, same output.
func Evaluate(marked map[int]bool) WinResult {
	isMarked := func(idx int) bool {
		return idx == FreeIndex || marked[idx]
	}
	allMarked := func(cells []int) bool {
		for _, idx := range cells {
			if !isMarked(idx) {
				return false
			}
		}
		return true
	}

	var res WinResult

	for row := 0; row < 5; row++ {
		cells := []int{row * 5, row*5 + 1, row*5 + 2, row*5 + 3, row*5 + 4}
		if allMarked(cells) {
			res.Patterns = append(res.Patterns, MatchedPattern{
				Name:  fmt.Sprintf("row %d", row),
				Cells: cells,
			})
		}
	}

	for col := 0; col < 5; col++ {
		cells := []int{col, col + 5, col + 10, col + 15, col + 20}
		if allMarked(cells) {
			res.Patterns = append(res.Patterns, MatchedPattern{
				Name:  fmt.Sprintf("column %s", Columns[col]),
				Cells: cells,
			})
		}
	}

	// Both diagonals are required together, not either one alone.
	if allMarked(mainDiagonal) && allMarked(antiDiagonal) {
		cells := []int{0, 4, 6, 8, 12, 16, 18, 20, 24}
		res.Patterns = append(res.Patterns, MatchedPattern{
			Name:  "double diagonal",
			Cells: cells,
		})
	}

	if allMarked(corners) {
		res.Patterns = append(res.Patterns, MatchedPattern{
			Name:  "four corners",
			Cells: append([]int(nil), corners...),
		})
	}

	res.Won = len(res.Patterns) > 0
	return res
}
