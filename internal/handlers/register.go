package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/parley-protocol/parley/internal/crypto"
	"github.com/parley-protocol/parley/internal/metrics"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	PublicKey string `json:"public_key"`
	Name      string `json:"name"`
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	ID         string `json:"id"`
	ProfileURL string `json:"profile_url"`
}

// Register handles participant registration.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	// Validate public key is present
	if req.PublicKey == "" {
		h.Error(w, http.StatusBadRequest, "public_key is required")
		return
	}

	// Validate public key format and size
	pub, err := crypto.DecodePublicKeyPEM([]byte(req.PublicKey))
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid public_key: must be a PEM-encoded RSA public key")
		return
	}
	if pub.Size() != crypto.KeyBits/8 {
		h.Error(w, http.StatusBadRequest, fmt.Sprintf("invalid public_key: modulus must be %d bits", crypto.KeyBits))
		return
	}

	name := sanitizeName(req.Name)

	// Check if public key already registered
	existing, err := h.db.GetParticipantByPublicKey(r.Context(), req.PublicKey)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if existing != nil {
		// Return existing participant ID (idempotent registration)
		h.JSON(w, http.StatusOK, RegisterResponse{
			ID:         existing.ID.String(),
			ProfileURL: fmt.Sprintf("/who/%s", existing.ID.String()),
		})
		return
	}

	// Create new participant
	participant, err := h.db.CreateParticipant(r.Context(), req.PublicKey, name)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create participant")
		return
	}

	metrics.ParticipantsRegistered.Inc()

	h.JSON(w, http.StatusCreated, RegisterResponse{
		ID:         participant.ID.String(),
		ProfileURL: fmt.Sprintf("/who/%s", participant.ID.String()),
	})
}
