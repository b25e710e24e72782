// Package config provides the rule set catalogue for the 2048 server.
//
// Rule sets are JSON files in the rules directory, one per file, named
// <id>.json:
//
//	{
//	  "name": "classic",
//	  "description": "Classic 4x4 game",
//	  "power_ups": {"undo": 3, "swap": 3, "delete": 3},
//	  "history_limit": 10,
//	  "four_probability": 0.1
//	}
//
// Files are validated with engine.ValidateRules and cached after the first
// load. The "classic" id always resolves: when no classic.json exists the
// built-in engine.DefaultRules are served.
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	rules, err := manager.LoadRules("relaxed")
//	all, err := manager.ListRules()
package config
