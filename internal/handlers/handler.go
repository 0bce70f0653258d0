package handlers

import (
	"encoding/json"
	"net/http"
	"strings"
	"unicode"

	"github.com/parley-protocol/parley/internal/bot"
	"github.com/parley-protocol/parley/internal/hub"
	"github.com/parley-protocol/parley/internal/keyring"
	"github.com/parley-protocol/parley/internal/store"
	"github.com/parley-protocol/parley/internal/verify"
)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db        store.DataStore
	redis     *store.RedisStore
	verifier  *verify.Service
	keys      keyring.Provider
	hub       *hub.Hub
	responder *bot.Responder
}

// NewHandler creates a new Handler with the given dependencies.
func NewHandler(db store.DataStore, redis *store.RedisStore, verifier *verify.Service, keys keyring.Provider, h *hub.Hub, responder *bot.Responder) *Handler {
	return &Handler{
		db:        db,
		redis:     redis,
		verifier:  verifier,
		keys:      keys,
		hub:       h,
		responder: responder,
	}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// sanitizeName trims and limits name to 100 characters, removing control characters.
func sanitizeName(name string) string {
	name = strings.TrimSpace(name)

	// Remove control characters
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, name)

	// Limit to 100 characters
	if len(name) > 100 {
		name = name[:100]
	}

	return name
}
