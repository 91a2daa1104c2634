// Package session hosts Mean Bean arenas behind 4-character ids.
//
// Each Session (defined in the service package) owns one arena and a
// lock. Commands go through Session.Do; with Options.Realtime the
// manager also starts a runner goroutine that advances the arena clock
// by wall time under the same lock.
//
// A panic raised inside an arena (an engine invariant violation) is
// recovered only to mark that session faulted. A faulted session is
// never advanced again and refuses every command with
// service.ErrSessionFaulted.
//
// Usage:
//
//	manager := session.NewManagerWithOptions(session.Options{Realtime: true})
//	defer manager.Close()
//
//	sess, err := manager.Create("", "classic", rules)
//	if err != nil {
//		log.Fatal(err)
//	}
//	sess.Do(func(a *arena.Arena) { a.Start() })
//
// Sessions idle longer than a cutoff can be dropped with
// CleanupExpiredSessions or a background StartJanitor.
package session
