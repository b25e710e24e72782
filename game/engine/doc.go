// Package engine provides the core game logic for the 2048 power-up game.
//
// The engine package implements the game mechanics including:
//   - The 4x4 board and random tile spawning
//   - Sliding and merging tiles in four directions
//   - Scoring
//   - Undo, swap and delete power-ups with limited uses
//   - A bounded snapshot history backing undo
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. GameState holds the board, score, power-up
// counters and history, and Rules configures a game variant.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.DefaultRules())
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	moved := gameEngine.Move("left")
//	msg, err := gameEngine.Undo()
//	view := gameEngine.View()
//
// Moves:
//
// Every direction is reduced to a left move. The board is turned clockwise a
// number of quarter-turns (left 0, down 1, right 2, up 3), every row is
// compacted and merged left in a single pass, and the board is turned back.
// A move that changes the board spawns a new tile and records a snapshot.
//
// Power-ups:
//
// Rejected operations return an *Error whose Kind says why, and leave the
// state untouched. Use errors.Is with the package sentinels to test for a kind.
package engine
