// Package websocket pushes live 2048 board updates to browsers and bots.
//
// A single Hub goroutine owns the map of clients per session. Clients
// connect to /ws?session=<id> and never send anything except pings; after
// every state change the API broadcasts a state_update message:
//
//	{"session_id":"a1b2","event":"state_update","game_state":{...}}
//
// Auto play runs additionally send a game_events message whose data is the
// list of events the run produced.
//
// Broadcasting never blocks the caller. When the queue is full the update
// is dropped, and a client whose send buffer is full is disconnected.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	hub.BroadcastToSession(sessionID, state)
package websocket
