package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// WhoResponse represents the participant profile response.
type WhoResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name,omitempty"`
	PublicKey string `json:"public_key"`
	JoinedAt  string `json:"joined_at"`
}

// Who handles participant profile lookup.
func (h *Handler) Who(w http.ResponseWriter, r *http.Request) {
	idStr := chi.URLParam(r, "id")

	// Validate UUID format
	id, err := uuid.Parse(idStr)
	if err != nil {
		h.Error(w, http.StatusBadRequest, "invalid participant ID format")
		return
	}

	// Lookup participant
	participant, err := h.db.GetParticipantByID(r.Context(), id)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}

	if participant == nil {
		h.Error(w, http.StatusNotFound, "participant not found")
		return
	}

	h.JSON(w, http.StatusOK, WhoResponse{
		ID:        participant.ID.String(),
		Name:      participant.Name,
		PublicKey: participant.PublicKey,
		JoinedAt:  participant.CreatedAt.Format("2006-01-02T15:04:05Z"),
	})
}
