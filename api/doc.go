// Package api provides the HTTP REST API of the 2048 game server.
//
// Endpoints:
//
// Sessions:
//   - POST   /api/sessions               create a session ({"config_id": "quick"}, body optional)
//   - GET    /api/sessions               list sessions (?sort=accessed|created|score&order=asc|desc&limit=N)
//   - GET    /api/sessions/{id}          session details
//   - DELETE /api/sessions/{id}          delete a session
//
// Game:
//   - GET  /api/sessions/{id}/state      current board, score and flags
//   - POST /api/sessions/{id}/move       {"direction": "left", "reset": false}
//   - POST /api/sessions/{id}/bulk-move  {"moves": ["left", "up"], "reset": false}
//   - POST /api/sessions/{id}/reset      start over with the same preset
//
// Planner:
//   - GET  /api/sessions/{id}/suggest    best direction plus the per-direction search results
//   - POST /api/sessions/{id}/autoplay   {"max_moves": 100}; 0 or no body plays to the limit
//
// Configuration:
//   - GET  /api/configs                  list presets
//   - GET  /api/configs/{name}           one preset
//   - POST /api/configs[?id=name]        save a preset; the id defaults to a slug of its name
//
// Other:
//   - GET /api/health
//   - GET /ws?session={id}               WebSocket state updates
//
// Errors are JSON objects with the HTTP status repeated in the body:
//
//	{"error": "session not found", "code": 404}
//
// Unknown sessions and presets give 404; bad directions, bad presets and
// malformed bodies give 400.
//
// Every request passes through chi's RequestID, RealIP and Recoverer
// middleware and is logged at debug level with zerolog.
package api
