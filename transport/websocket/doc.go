// Package websocket pushes live boards to WebSocket clients.
//
// A central Hub owns every connection. Clients subscribe to one session
// with ?session=<id>; the session manager calls BroadcastToSession from
// the arena clock whenever the board changes, and the hub fans the
// snapshot out as a board_update message (game_over once the game ends).
//
// Broadcasting never blocks: when the queue is full the message is
// dropped and logged, and a client too slow to drain its own buffer is
// disconnected.
//
// Message Protocol:
//
//	{"session_id": "ab12", "event": "board_update", "board": {...}}
//
// Watch is the matching client used by the watch command.
package websocket
