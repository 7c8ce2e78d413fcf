// Package net wires the room engine to HTTP: the websocket session
// endpoint plus the health and diagnostics surfaces.
package net

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	game "github.com/nastosinka/oops-trap-sub000"
	"github.com/nastosinka/oops-trap-sub000/logging"
)

// HandlerConfig carries the optional collaborators for the HTTP surface.
type HandlerConfig struct {
	Publisher logging.Publisher
	// CheckOrigin overrides the upgrader origin policy; nil allows all,
	// matching same-host deployments behind a proxy.
	CheckOrigin func(r *http.Request) bool
}

// NewHandler builds the router. Only paths matching
// /session/game/<integer-id> reach the upgrader; everything else is 404.
func NewHandler(hub *game.Hub, cfg HandlerConfig) http.Handler {
	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     cfg.CheckOrigin,
	}
	if upgrader.CheckOrigin == nil {
		upgrader.CheckOrigin = func(*http.Request) bool { return true }
	}

	r := chi.NewRouter()

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Write([]byte("ok"))
	})

	r.Get("/diagnostics", func(w http.ResponseWriter, _ *http.Request) {
		payload := struct {
			Status     string                 `json:"status"`
			ServerTime int64                  `json:"serverTime"`
			Rooms      []game.RoomDiagnostics `json:"rooms"`
		}{
			Status:     "ok",
			ServerTime: time.Now().UnixMilli(),
			Rooms:      hub.DiagnosticsSnapshot(),
		}
		data, err := json.Marshal(payload)
		if err != nil {
			http.Error(w, "failed to encode", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(data)
	})

	r.Get("/session/game/{id:[0-9]+}", func(w http.ResponseWriter, req *http.Request) {
		sessionID, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
		if err != nil {
			// The route pattern already constrains the id; overflow is
			// the only way here.
			http.NotFound(w, req)
			return
		}
		conn, err := upgrader.Upgrade(w, req, nil)
		if err != nil {
			log.Printf("upgrade failed for session %d: %v", sessionID, err)
			return
		}
		serveSession(hub, sessionID, conn)
	})

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		http.NotFound(w, req)
	})

	return r
}

// serveSession is the per-connection read loop: decode, dispatch, and on
// close run the disconnect path for whichever player bound via init.
func serveSession(hub *game.Hub, sessionID int64, conn *websocket.Conn) {
	sub := game.NewSubscriber(conn)
	boundPlayer := ""

	defer func() {
		if boundPlayer != "" {
			hub.Disconnect(sessionID, boundPlayer, sub)
		}
		conn.Close()
	}()

	for {
		_, payload, err := conn.ReadMessage()
		if err != nil {
			return
		}
		env, err := game.DecodeEnvelope(payload)
		if err != nil {
			log.Printf("discarding malformed frame on session %d: %v", sessionID, err)
			continue
		}
		if env.Type == "init" && env.PlayerID != "" {
			boundPlayer = env.PlayerID
		}
		hub.Dispatch(sessionID, env, sub)
	}
}
