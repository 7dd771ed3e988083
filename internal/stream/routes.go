package stream

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/strefethen/yamaha-hub-go/internal/api"
	"github.com/strefethen/yamaha-hub-go/internal/apperrors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// The hub runs on a trusted LAN; auth happens before the upgrade.
		return true
	},
}

// RegisterRoutes wires the status stream endpoint to the router.
func RegisterRoutes(router chi.Router, hub *Hub) {
	router.Method(http.MethodGet, "/v1/stream", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			// Upgrade already wrote the HTTP error response.
			return nil
		}
		hub.Register(conn)
		return nil
	}))

	router.Method(http.MethodGet, "/v1/stream/status", api.Handler(func(w http.ResponseWriter, r *http.Request) error {
		if hub == nil {
			return apperrors.NewInternalError("Stream hub unavailable")
		}
		return api.WriteJSON(w, http.StatusOK, map[string]any{
			"clients": hub.ClientCount(),
		})
	}))
}
