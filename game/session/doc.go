// Package session provides session storage for the 2048 server.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - UUID session IDs with a collision check
//   - Idle session expiry
//   - Pluggable persistence (JSON files or SQLite)
//
// Core Types:
//
// Manager implements service.SessionManager. It keeps live sessions in
// memory and, when a SessionPersistence is configured, writes each session
// after creation and after every successful mutation. Sessions missing from
// memory are loaded lazily from persistence on Get.
//
// FilePersistence stores <dir>/<id>.json. SQLitePersistence stores one row
// per session in a "sessions" table using the pure-Go modernc.org/sqlite
// driver. Both store the rules with the state, so a restored game keeps its
// power-up counts and history limit.
//
// Concurrency:
//
// The manager's lock only guards the session map. Game state is guarded by
// the per-session lock, which callers take before the manager's lock, never
// after it.
//
// Usage:
//
//	persistence, err := session.NewFilePersistence("sessions")
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(persistence, logger)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create(engine.DefaultRules())
package session
