package main

import (
	"math"
	"sort"

	"github.com/wricardo/power-2048/game/engine"
)

// positionWeights rewards keeping large tiles in a snake anchored at the
// top-left corner
var positionWeights = [engine.BoardSize][engine.BoardSize]float64{
	{16, 15, 14, 13},
	{9, 10, 11, 12},
	{8, 7, 6, 5},
	{1, 2, 3, 4},
}

const (
	emptyWeight = 2.0
	mergeWeight = 1.0
	deadPenalty = -1e9
)

// Strategy picks moves by looking one spawn ahead and picks power-ups when
// the board is stuck.
type Strategy struct {
	fourProbability float64
}

func NewStrategy(fourProbability float64) *Strategy {
	if fourProbability < 0 || fourProbability > 1 {
		fourProbability = engine.DefaultFourProbability
	}
	return &Strategy{fourProbability: fourProbability}
}

// Evaluate scores a board; higher is better
func Evaluate(b engine.Board) float64 {
	var positional, merges float64
	for r := 0; r < engine.BoardSize; r++ {
		for c := 0; c < engine.BoardSize; c++ {
			v := b[r][c]
			if v == 0 {
				continue
			}
			positional += float64(v) * positionWeights[r][c]
			if c+1 < engine.BoardSize && b[r][c+1] == v {
				merges += float64(v)
			}
			if r+1 < engine.BoardSize && b[r+1][c] == v {
				merges += float64(v)
			}
		}
	}

	empty := float64(len(engine.EmptyCells(b)))
	top := float64(engine.MaxTile(b))
	return positional + mergeWeight*merges + emptyWeight*empty*top
}

// bestSlide returns the best immediate value over all moves, or deadPenalty
// when nothing moves
func bestSlide(b engine.Board) float64 {
	best := deadPenalty
	for _, d := range engine.Directions {
		next, gained, moved := engine.SlideBoard(b, d)
		if !moved {
			continue
		}
		if v := float64(gained) + Evaluate(next); v > best {
			best = v
		}
	}
	return best
}

// expectation averages bestSlide over every tile the server could spawn
func (s *Strategy) expectation(b engine.Board) float64 {
	empty := engine.EmptyCells(b)
	if len(empty) == 0 {
		return bestSlide(b)
	}

	var total float64
	for _, p := range empty {
		two, four := b, b
		two[p.Row][p.Col] = 2
		four[p.Row][p.Col] = 4
		total += (1-s.fourProbability)*bestSlide(two) + s.fourProbability*bestSlide(four)
	}
	return total / float64(len(empty))
}

// BestMove returns the direction with the highest expected value. ok is false
// when no direction changes the board.
func (s *Strategy) BestMove(b engine.Board) (d engine.Direction, ok bool) {
	best := math.Inf(-1)
	for _, dir := range engine.Directions {
		next, gained, moved := engine.SlideBoard(b, dir)
		if !moved {
			continue
		}
		v := float64(gained) + s.expectation(next)
		if !ok || v > best {
			best, d, ok = v, dir, true
		}
	}
	return d, ok
}

type ActionKind string

const (
	ActionDelete ActionKind = "delete"
	ActionSwap   ActionKind = "swap"
	ActionUndo   ActionKind = "undo"
)

// Action is a power-up to try on a stuck board
type Action struct {
	Kind  ActionKind
	Value int
	Pos1  engine.Position
	Pos2  engine.Position
}

// RescuePlan lists the power-ups worth trying on a stuck board, best first:
// delete the smallest tile, then the swap that leaves the best board, then undo.
func (s *Strategy) RescuePlan(b engine.Board, left engine.PowerUps) []Action {
	var plan []Action

	if left.Delete > 0 {
		if v, ok := smallestTile(b); ok {
			plan = append(plan, Action{Kind: ActionDelete, Value: v})
		}
	}

	if left.Swap > 0 {
		if a, c, ok := bestSwap(b); ok {
			plan = append(plan, Action{Kind: ActionSwap, Pos1: a, Pos2: c})
		}
	}

	if left.Undo > 0 {
		plan = append(plan, Action{Kind: ActionUndo})
	}

	return plan
}

func smallestTile(b engine.Board) (int, bool) {
	var values []int
	for _, row := range b {
		for _, v := range row {
			if v != 0 {
				values = append(values, v)
			}
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	sort.Ints(values)
	return values[0], true
}

// bestSwap tries every pair of differing tiles and keeps the one whose board
// allows the best next move
func bestSwap(b engine.Board) (engine.Position, engine.Position, bool) {
	var cells []engine.Position
	for r := 0; r < engine.BoardSize; r++ {
		for c := 0; c < engine.BoardSize; c++ {
			cells = append(cells, engine.Position{Row: r, Col: c})
		}
	}

	var bestA, bestB engine.Position
	best := deadPenalty
	found := false
	for i := 0; i < len(cells); i++ {
		for j := i + 1; j < len(cells); j++ {
			a, c := cells[i], cells[j]
			if b[a.Row][a.Col] == b[c.Row][c.Col] {
				continue
			}
			swapped := b
			swapped[a.Row][a.Col], swapped[c.Row][c.Col] = swapped[c.Row][c.Col], swapped[a.Row][a.Col]
			if v := bestSlide(swapped); v > best {
				best, bestA, bestB, found = v, a, c, true
			}
		}
	}
	return bestA, bestB, found
}
