// Package websocket pushes game state to browsers and other watchers.
//
// A central Hub owns every connection. Clients subscribe to one game with
// GET /ws?game_id=<id>; after each successful move or power-up the API calls
// BroadcastState and every subscriber receives:
//
//	{"game_id": "...", "event": "state_update", "state": {...}}
//
// where state has the same shape as GET /api/game/{id}. Deleting a game sends
// a "game_deleted" event. Clients never send commands over the socket; the
// read side only services pings and close frames.
//
// Usage:
//
//	hub := websocket.NewHub(logger)
//	go hub.Run(ctx)
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("game_id"))
//	})
//
// Slow clients whose send buffer fills up are disconnected rather than
// blocking the broadcast for everyone else.
package websocket
