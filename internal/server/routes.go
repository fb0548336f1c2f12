// Package server wires HTTP handlers into a chi router for the RoomChat
// application.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// SetupRoutes configures and returns the application router: health check,
// WebSocket endpoint, chat page, relay stats and Prometheus metrics.
func SetupRoutes(hub *Hub) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/", HealthHandler)
	r.HandleFunc("/ws", WebSocketHandler(hub))
	r.Get("/test", TestPageHandler(hub))
	r.Get("/stats", StatsHandler(hub))
	r.Method(http.MethodGet, "/metrics", hub.Metrics().Handler())
	return r
}
