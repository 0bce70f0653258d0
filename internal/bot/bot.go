// Package bot implements the automated responder. It signs its replies with
// its own keypair through the same sealing path as human participants.
package bot

import (
	"context"
	"math/rand"
	"strings"
)

// DefaultName is used for sessions that never introduced themselves.
const DefaultName = "stranger"

const usageText = "Available commands: /hello, /help, /name [your name], /myname."

// StateStore keeps per-session responder state (display names).
type StateStore interface {
	SessionName(ctx context.Context, session string) (string, error)
	SetSessionName(ctx context.Context, session, name string) error
	TouchSession(ctx context.Context, session string) error
}

// Responder turns an incoming message into a reply.
type Responder struct {
	state StateStore
}

// NewResponder creates a responder backed by the given state store.
func NewResponder(state StateStore) *Responder {
	return &Responder{state: state}
}

type commandFunc func(r *Responder, ctx context.Context, session, text string) string

var commands = map[string]commandFunc{
	"/help":   (*Responder).handleHelp,
	"/hello":  (*Responder).handleGreeting,
	"/name":   (*Responder).handleSetName,
	"/myname": (*Responder).handleGetName,
}

// Reply produces the responder's answer to text from the given session.
func (r *Responder) Reply(ctx context.Context, session, text string) string {
	lower := strings.ToLower(strings.TrimSpace(text))

	if strings.HasPrefix(lower, "/") {
		cmd := strings.Fields(lower)[0]
		if handler, ok := commands[cmd]; ok {
			reply := handler(r, ctx, session, text)
			_ = r.state.TouchSession(ctx, session)
			return reply
		}
		return "Unknown command. Type /help for help."
	}

	switch {
	case strings.Contains(lower, "hello"), strings.Contains(lower, "hi "):
		return r.handleGreeting(ctx, session, text)
	case strings.Contains(lower, "how are you"):
		return "I'm a computer program, so I'm always doing great! How about you?"
	case strings.Contains(lower, "thanks"), strings.Contains(lower, "thank you"):
		return "You're welcome! Happy to help."
	}

	return usageText
}

func (r *Responder) handleHelp(_ context.Context, _, _ string) string {
	return usageText
}

func (r *Responder) handleGreeting(ctx context.Context, session, _ string) string {
	name := r.sessionName(ctx, session)
	greetings := []string{
		"Hello, " + name + "! How can I help?",
		"Hi, " + name + "! Nice to talk to you.",
		"Hey, " + name + "! How's it going?",
	}
	return greetings[rand.Intn(len(greetings))]
}

func (r *Responder) handleSetName(ctx context.Context, session, text string) string {
	parts := strings.SplitN(strings.TrimSpace(text), " ", 2)
	if len(parts) > 1 && strings.TrimSpace(parts[1]) != "" {
		name := strings.TrimSpace(parts[1])
		if err := r.state.SetSessionName(ctx, session, name); err != nil {
			return "Sorry, I couldn't remember that right now."
		}
		return "Got it! I'll call you " + name + " from now on."
	}
	return "You haven't told me your name yet. Use /name [your name] to set it."
}

func (r *Responder) handleGetName(ctx context.Context, session, _ string) string {
	name := r.sessionName(ctx, session)
	if name == DefaultName {
		return "You haven't told me your name yet. Use /name [your name] to set it."
	}
	return "Your name is: " + name
}

func (r *Responder) sessionName(ctx context.Context, session string) string {
	name, err := r.state.SessionName(ctx, session)
	if err != nil || name == "" {
		return DefaultName
	}
	return name
}
