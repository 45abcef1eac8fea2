package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/mhollis/bounce/internal/api/middleware"
	"github.com/mhollis/bounce/internal/directory"
	"github.com/mhollis/bounce/internal/model"
)

// RouterConfig holds the dependencies of the HTTP router
type RouterConfig struct {
	Logger    *slog.Logger
	Directory directory.Directory
	// WebSocket handles upgrade requests at /ws
	WebSocket http.Handler
	// StaticDir holds the static index page; empty disables the route
	StaticDir string
}

// NewRouter builds the HTTP surface: the websocket endpoint, the room
// directory API, a health check, and the static index route.
func NewRouter(cfg RouterConfig) http.Handler {
	r := mux.NewRouter()

	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Logging(cfg.Logger))

	r.Handle("/ws", cfg.WebSocket)
	r.HandleFunc("/healthz", handleHealth).Methods(http.MethodGet)
	r.HandleFunc("/api/rooms", handleRooms(cfg.Directory, cfg.Logger)).Methods(http.MethodGet)

	if cfg.StaticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(cfg.StaticDir)))
	}

	return r
}

func handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// roomsResponse mirrors the room_list event payload
type roomsResponse struct {
	Rooms []model.RoomInfo `json:"rooms"`
}

func handleRooms(dir directory.Directory, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms, err := dir.List(r.Context())
		if err != nil {
			logger.Error("directory list failed", slog.Any("error", err))
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "directory unavailable"})
			return
		}
		writeJSON(w, http.StatusOK, roomsResponse{Rooms: rooms})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
