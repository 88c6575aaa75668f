// Package service provides the business logic layer for the memory match game.
//
// The service package implements:
//   - Multi-session game management
//   - Preset selection with per-request symbol type and size overrides
//   - Reveal and hide processing
//   - Paginated event history
//   - Forwarding of engine events to a Notifier
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages preset loading and validation.
// Notifier receives every event an engine produces, including the delayed
// match and mismatch resolutions that happen after the request returned.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns an independent engine.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr, service.WithNotifier(hub))
//
//	info, err := gameService.CreateSession(ctx, service.GameOptions{ConfigID: "classic"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.RevealCard(ctx, info.ID, 0)
//
// Errors:
//
// Invalid board parameters wrap engine.ErrInvalidSize or engine.ErrInvalidType.
// Unknown sessions and presets wrap the session and config packages' sentinel
// errors. Reveal and hide never fail for bad indices; they report Changed=false.
package service
