package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wricardo/power-2048/game/engine"
)

var stuckBoard = engine.Board{
	{2, 4, 2, 4},
	{4, 2, 4, 2},
	{2, 4, 2, 4},
	{4, 2, 4, 8},
}

func TestEvaluatePrefersCornerAndSpace(t *testing.T) {
	corner := engine.Board{{64, 0, 0, 0}}
	middle := engine.Board{{0, 0, 0, 0}, {0, 0, 64, 0}}
	assert.Greater(t, Evaluate(corner), Evaluate(middle))

	pair := engine.Board{{8, 8, 0, 0}}
	split := engine.Board{{8, 0, 8, 0}}
	assert.Greater(t, Evaluate(pair), Evaluate(split))
}

func TestBestMoveStuck(t *testing.T) {
	s := NewStrategy(0.1)
	_, ok := s.BestMove(stuckBoard)
	assert.False(t, ok)
}

func TestBestMoveOnlyOption(t *testing.T) {
	// Only moving down changes this board
	board := engine.Board{
		{2, 4, 8, 16},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
		{0, 0, 0, 0},
	}
	s := NewStrategy(0.1)

	d, ok := s.BestMove(board)
	assert.True(t, ok)
	assert.Equal(t, engine.Down, d)
}

func TestBestMoveTakesMerge(t *testing.T) {
	board := engine.Board{{256, 256, 0, 0}}
	s := NewStrategy(0.1)

	d, ok := s.BestMove(board)
	assert.True(t, ok)
	assert.Equal(t, engine.Left, d)
}

func TestNewStrategyClampsProbability(t *testing.T) {
	assert.Equal(t, engine.DefaultFourProbability, NewStrategy(2).fourProbability)
	assert.Equal(t, 0.25, NewStrategy(0.25).fourProbability)
}

func TestRescuePlan(t *testing.T) {
	s := NewStrategy(0.1)

	plan := s.RescuePlan(stuckBoard, engine.PowerUps{Undo: 1, Swap: 1, Delete: 1})
	if assert.Len(t, plan, 3) {
		assert.Equal(t, Action{Kind: ActionDelete, Value: 2}, plan[0])
		assert.Equal(t, ActionSwap, plan[1].Kind)
		assert.Equal(t, ActionUndo, plan[2].Kind)
	}

	assert.Empty(t, s.RescuePlan(stuckBoard, engine.PowerUps{}))

	plan = s.RescuePlan(stuckBoard, engine.PowerUps{Undo: 2})
	assert.Equal(t, []Action{{Kind: ActionUndo}}, plan)
}

func TestBestSwapUnsticksBoard(t *testing.T) {
	a, b, ok := bestSwap(stuckBoard)
	assert.True(t, ok)

	swapped := stuckBoard
	swapped[a.Row][a.Col], swapped[b.Row][b.Col] = swapped[b.Row][b.Col], swapped[a.Row][a.Col]
	assert.False(t, swapped.IsGameOver())
}

func TestBestSwapNoDifferingTiles(t *testing.T) {
	_, _, ok := bestSwap(engine.Board{})
	assert.False(t, ok)
}

func TestSmallestTile(t *testing.T) {
	v, ok := smallestTile(engine.Board{{8, 0, 4}, {0, 16}})
	assert.True(t, ok)
	assert.Equal(t, 4, v)

	_, ok = smallestTile(engine.Board{})
	assert.False(t, ok)
}
