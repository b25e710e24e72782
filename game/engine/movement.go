package engine

// slideRow compacts a row to the left and merges equal neighbours once.
// It returns the new row and the points earned by the merges.
func slideRow(row [BoardSize]int) ([BoardSize]int, int) {
	var result [BoardSize]int
	score := 0

	// Compact non-zero values
	tiles := make([]int, 0, BoardSize)
	for _, v := range row {
		if v != 0 {
			tiles = append(tiles, v)
		}
	}

	// Single left-to-right pass; a merged tile is not merged again
	n := 0
	for i := 0; i < len(tiles); i++ {
		if i+1 < len(tiles) && tiles[i] == tiles[i+1] {
			merged := tiles[i] * 2
			result[n] = merged
			score += merged
			i++
		} else {
			result[n] = tiles[i]
		}
		n++
	}

	// Remaining cells stay zero
	return result, score
}

// moveLeft slides every row left, adds merge points to the score and
// reports whether any row changed
func (gs *GameState) moveLeft() bool {
	moved := false
	for i := range gs.Board {
		row, gained := slideRow(gs.Board[i])
		gs.Score += gained
		if row != gs.Board[i] {
			moved = true
		}
		gs.Board[i] = row
	}
	return moved
}

// rotateBoard turns the board a quarter clockwise: reverse the rows, then transpose
func (gs *GameState) rotateBoard() {
	gs.Board = rotate(gs.Board)
}

func rotate(b Board) Board {
	var out Board
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			out[i][j] = b[BoardSize-1-j][i]
		}
	}
	return out
}

// slide applies a move in any direction by rotating it into a left move and back.
// It does not spawn tiles or record history.
func (gs *GameState) slide(d Direction) bool {
	turns := quarterTurns[d]
	for i := 0; i < turns; i++ {
		gs.rotateBoard()
	}

	moved := gs.moveLeft()

	// A left move needs no restoring turns
	for i := 0; i < (BoardSize-turns)%BoardSize; i++ {
		gs.rotateBoard()
	}
	return moved
}

// emptyCells returns the coordinates of all empty cells in row-major order
func (b *Board) emptyCells() []Position {
	var cells []Position
	for i := range b {
		for j := range b[i] {
			if b[i][j] == 0 {
				cells = append(cells, Position{Row: i, Col: j})
			}
		}
	}
	return cells
}

// hasAdjacentPair reports whether two horizontally or vertically adjacent cells are equal
func (b *Board) hasAdjacentPair() bool {
	for i := 0; i < BoardSize; i++ {
		for j := 0; j < BoardSize; j++ {
			if j < BoardSize-1 && b[i][j] == b[i][j+1] {
				return true
			}
			if i < BoardSize-1 && b[i][j] == b[i+1][j] {
				return true
			}
		}
	}
	return false
}

// IsGameOver reports a full board with no possible merge
func (b *Board) IsGameOver() bool {
	return len(b.emptyCells()) == 0 && !b.hasAdjacentPair()
}

// pushSnapshot appends a copy of board, score and move count to the history, evicting the
// oldest entries beyond limit
func (gs *GameState) pushSnapshot(limit int) {
	gs.History = append(gs.History, Snapshot{Board: gs.Board, Score: gs.Score, Moves: gs.Moves})
	if over := len(gs.History) - limit; over > 0 {
		gs.History = append([]Snapshot(nil), gs.History[over:]...)
	}
}
