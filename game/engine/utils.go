package engine

// MaxTile returns the highest tile value on the board
func MaxTile(b Board) int {
	highest := 0
	for _, row := range b {
		for _, v := range row {
			if v > highest {
				highest = v
			}
		}
	}
	return highest
}

// TileCount counts the non-empty cells
func TileCount(b Board) int {
	count := 0
	for _, row := range b {
		for _, v := range row {
			if v != 0 {
				count++
			}
		}
	}
	return count
}

// CountValue counts the cells holding value
func CountValue(b Board, value int) int {
	count := 0
	for _, row := range b {
		for _, v := range row {
			if v == value {
				count++
			}
		}
	}
	return count
}

// IsPowerOfTwo reports whether v is a positive power of two
func IsPowerOfTwo(v int) bool {
	return v > 0 && v&(v-1) == 0
}

// EmptyCells returns the coordinates of all empty cells in row-major order
func EmptyCells(b Board) []Position {
	return b.emptyCells()
}

// SlideBoard returns the board after a move in direction d without spawning a
// tile, the points the move earns and whether anything moved.
func SlideBoard(b Board, d Direction) (Board, int, bool) {
	probe := GameState{Board: b}
	moved := probe.slide(d)
	return probe.Board, probe.Score, moved
}
