// Package tui plays 2048 in the terminal with Bubble Tea.
//
// The game engine runs in-process, so no server is needed:
//
//	if err := tui.Run(rules); err != nil {
//		log.Fatal(err)
//	}
//
// Arrow keys or WASD slide the board. Power-ups:
//   - u undoes the last move
//   - e starts a swap; pick two cells with the arrows and enter
//   - x starts a delete; pick a tile and every tile of that value is removed
//
// esc cancels a pending pick, n starts a new game, ? toggles the full help
// and q quits.
package tui
