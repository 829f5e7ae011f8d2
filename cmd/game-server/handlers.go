package main

import (
	"encoding/json"
	"net/http"
	"sort"

	"wormhole-arena/internal/arena"
)

func healthHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// roomsHandler is the discovery endpoint: every live room with its player
// count and locked flag, so a lobby can be rendered without joining anything.
func roomsHandler(registry *arena.Registry) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rooms := registry.Summaries()
		sort.Slice(rooms, func(i, j int) bool { return rooms[i].ID < rooms[j].ID })
		writeJSON(w, http.StatusOK, map[string]any{"rooms": rooms})
	}
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
