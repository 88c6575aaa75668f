// Package session provides session management for the memory match game.
//
// The session package implements:
//   - Thread-safe in-memory session storage and retrieval
//   - Short random session ID generation
//   - Session lifecycle management, including expiry cleanup
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns its own engine, so games in different sessions are
// independent. Deleting or expiring a session stops its pending resolution
// timer.
//
// Session Identifiers:
//
// Sessions use 4-character hex IDs for easy reference. IDs are matched
// case-insensitively.
//
// Usage:
//
//	manager := session.NewManager()
//
//	sess, err := manager.Create("", config)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err = manager.Get(sessionID)
//	removed := manager.CleanupExpiredSessions(24 * time.Hour)
//
// Sessions are not persisted; a restart starts with an empty manager.
package session
