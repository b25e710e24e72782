// Package service provides the business logic layer for the 2048 server.
//
// The service package implements:
//   - Multi-session game management
//   - Rule set lookup
//   - Move and power-up processing
//
// Core Interfaces:
//
// GameService is the main service interface used by every transport.
// SessionManager stores sessions and persists them after mutations.
// RulesManager resolves rule sets by name.
//
// Each Session owns one engine and a mutex. The service holds that mutex for
// the whole of an operation, so concurrent requests for the same game are
// applied one at a time while different games proceed in parallel.
//
// Usage:
//
//	sessionMgr := session.NewManager(logger)
//	rulesMgr := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, rulesMgr)
//
//	view, err := gameService.NewGame(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.Move(ctx, view.GameID, "left")
//
// Power-up rejections (no charges left, nothing to undo, bad positions,
// missing values) are reported through PowerUpResult.Success and ErrorKind,
// not as Go errors. Errors are reserved for unknown games and rule sets.
package service
