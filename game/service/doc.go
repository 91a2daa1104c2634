// Package service provides the business logic layer for Mean Bean.
//
// The service package implements:
//   - Multi-session game management
//   - Rule set loading and listing
//   - Player commands (move, rotate, drop, pause, resume)
//   - Fault isolation for sessions whose engine panicked
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and lifecycle.
// ConfigManager manages rule set loading and validation.
//
// Architecture:
//
// The service layer sits between the transports (HTTP, WebSocket, MCP) and
// the arenas. Each Session owns one arena behind a mutex; commands and the
// real-time runner both go through Session.Do or Session.Run, so an arena
// is only ever touched by one goroutine at a time.
//
// Usage:
//
//	sessionMgr := session.NewManagerWithOptions(session.Options{Realtime: true})
//	configMgr, _ := config.NewManager("configs")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, "classic")
//	if err != nil {
//		log.Fatal(err)
//	}
//	result, err := gameService.Rotate(ctx, info.ID, "cw")
//
// Every method opens an OpenTelemetry span; with no tracer provider
// registered these are no-ops.
package service
