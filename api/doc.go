// Package api provides the HTTP REST API for hosted Mean Bean sessions.
//
// Endpoints:
//
// Session Management:
//   - POST /api/sessions - Create and start a session ({"config_id": "fast"})
//   - GET /api/sessions - List sessions (?sort=created|accessed&order=asc|desc&limit=N)
//   - GET /api/sessions/{id} - Get one session with its board
//   - DELETE /api/sessions/{id} - Delete a session and stop its clock
//
// Player Commands:
//   - GET /api/sessions/{id}/board - Current board (?format=text for a dump)
//   - POST /api/sessions/{id}/move - {"direction": "left|right|down"}
//   - POST /api/sessions/{id}/rotate - {"spin": "cw|ccw"}
//   - POST /api/sessions/{id}/drop - Drop the falling pair
//   - POST /api/sessions/{id}/pause
//   - POST /api/sessions/{id}/resume
//
// Configuration:
//   - GET /api/configs - List rule sets
//   - GET /api/configs/{name} - Get one rule set
//   - POST /api/configs - Save a rule set
//
// Other:
//   - GET /health
//   - GET /ws?session={id} - WebSocket stream of board_update and game_over events
//
// Commands always answer 200 with a CommandResult; a refused command has
// success=false and a message saying why. Unknown sessions answer 404,
// faulted sessions 409, and malformed directions or spins 400.
package api
