package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/parley-protocol/parley/internal/metrics"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/verify"
)

// VerifyRequest represents the verification request body: the message
// fields, the base64 signature, and the claimed key reference.
type VerifyRequest struct {
	Sender    string `json:"sender"`
	Body      string `json:"body"`
	Kind      string `json:"kind,omitempty"`
	Timestamp int64  `json:"ts"`
	Signature string `json:"sig"`
	KeyID     string `json:"key_id"`
}

// VerifyMessage handles the verification endpoint. Malformed input maps to a
// client error; valid and invalid are normal responses with the verdict
// embedded.
func (h *Handler) VerifyMessage(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	msg := models.Message{
		Sender:    req.Sender,
		Body:      req.Body,
		Kind:      req.Kind,
		Timestamp: req.Timestamp,
	}

	result := h.verifier.Verify(r.Context(), msg, req.Signature, req.KeyID)
	metrics.Verifications.WithLabelValues(string(result.Verdict)).Inc()

	status := http.StatusOK
	if result.Verdict == verify.VerdictMalformed {
		status = http.StatusBadRequest
	}

	h.JSON(w, status, result)
}
