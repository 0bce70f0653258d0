package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/parley-protocol/parley/internal/envelope"
	"github.com/parley-protocol/parley/internal/metrics"
	"github.com/parley-protocol/parley/internal/models"
	"github.com/parley-protocol/parley/internal/verify"
)

// BotSender is the display identity of the responder.
const BotSender = "parley-bot"

// PostMessageResponse represents the accepted-message response. Reply is
// the responder's sealed envelope, when one was produced.
type PostMessageResponse struct {
	ID        string           `json:"id"`
	Timestamp int64            `json:"ts"`
	Reply     *models.Envelope `json:"reply,omitempty"`
}

// HistoryEntry is a stored envelope plus its verdict, re-checked at read
// time. History is verified on the way in, but readers still get an explicit
// verdict rather than an implicit promise.
type HistoryEntry struct {
	models.Envelope
	Verdict verify.Verdict `json:"verdict"`
}

// MessagesResponse represents the message history response.
type MessagesResponse struct {
	Messages []HistoryEntry `json:"messages"`
	HasMore  bool           `json:"has_more"`
}

// PostMessage accepts a sealed envelope, verifies it, stores it, and fans it
// out. Envelopes that fail verification are never relayed.
func (h *Handler) PostMessage(w http.ResponseWriter, r *http.Request) {
	var env models.Envelope
	if err := json.NewDecoder(r.Body).Decode(&env); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	result := h.verifier.VerifyEnvelope(r.Context(), &env)
	metrics.Verifications.WithLabelValues(string(result.Verdict)).Inc()

	switch result.Verdict {
	case verify.VerdictMalformed:
		h.Error(w, http.StatusBadRequest, "malformed envelope: "+result.Reason)
		return
	case verify.VerdictInvalid:
		h.Error(w, http.StatusUnauthorized, "signature verification failed")
		return
	}

	// Ingest metadata is outside the signed fields.
	env.ID = ""
	if env.Scope == "" {
		env.Scope = models.ScopeBroadcast
	}

	if err := h.redis.AddEnvelope(r.Context(), &env); err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to store message")
		return
	}

	kind := env.Kind
	if kind == "" {
		kind = models.KindUser
	}
	metrics.MessagesSealed.WithLabelValues(kind).Inc()

	h.hub.Deliver(&env, env.KeyID)

	var reply *models.Envelope
	if kind == models.KindUser {
		reply = h.respond(r.Context(), &env)
	}

	h.JSON(w, http.StatusCreated, PostMessageResponse{
		ID:        env.ID,
		Timestamp: env.Timestamp,
		Reply:     reply,
	})
}

// respond runs the responder over a verified user message and seals its
// reply with the server identity. The reply is scoped to the sender's
// session, matching the original request/response chat flow.
func (h *Handler) respond(ctx context.Context, in *models.Envelope) *models.Envelope {
	text := h.responder.Reply(ctx, in.KeyID, in.Body)

	keyID, priv, err := h.keys.Identity()
	if err != nil {
		log.Error().Err(err).Msg("responder has no signing identity")
		return nil
	}

	msg := models.Message{
		Sender:    BotSender,
		Body:      text,
		Kind:      models.KindBot,
		Timestamp: time.Now().UnixMilli(),
	}

	reply, err := envelope.Seal(msg, keyID, priv)
	if err != nil {
		log.Error().Err(err).Msg("failed to seal responder reply")
		return nil
	}
	reply.Scope = models.ScopeSender

	if err := h.redis.AddEnvelope(ctx, reply); err != nil {
		log.Error().Err(err).Msg("failed to store responder reply")
	}

	metrics.MessagesSealed.WithLabelValues(models.KindBot).Inc()
	metrics.BotReplies.Inc()

	h.hub.Deliver(reply, in.KeyID)

	return reply
}

// GetMessages retrieves recent message history.
func (h *Handler) GetMessages(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if l := r.URL.Query().Get("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil && parsed > 0 && parsed <= 100 {
			limit = parsed
		}
	}

	var before int64
	if b := r.URL.Query().Get("before"); b != "" {
		if parsed, err := strconv.ParseInt(b, 10, 64); err == nil {
			before = parsed
		}
	}

	envelopes, err := h.redis.RecentEnvelopes(r.Context(), limit, before)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to load messages")
		return
	}

	entries := make([]HistoryEntry, 0, len(envelopes))
	for i := range envelopes {
		result := h.verifier.VerifyEnvelope(r.Context(), &envelopes[i])
		entries = append(entries, HistoryEntry{
			Envelope: envelopes[i],
			Verdict:  result.Verdict,
		})
	}

	h.JSON(w, http.StatusOK, MessagesResponse{
		Messages: entries,
		HasMore:  len(entries) == limit,
	})
}
