package bot

import (
	"context"
	"strings"
	"testing"
)

type memoryState struct {
	names map[string]string
}

func newMemoryState() *memoryState {
	return &memoryState{names: make(map[string]string)}
}

func (m *memoryState) SessionName(_ context.Context, session string) (string, error) {
	return m.names[session], nil
}

func (m *memoryState) SetSessionName(_ context.Context, session, name string) error {
	m.names[session] = name
	return nil
}

func (m *memoryState) TouchSession(_ context.Context, _ string) error {
	return nil
}

func TestHelpCommand(t *testing.T) {
	r := NewResponder(newMemoryState())

	reply := r.Reply(context.Background(), "s1", "/help")
	if reply != usageText {
		t.Fatalf("unexpected help reply: %q", reply)
	}
}

func TestUnknownCommand(t *testing.T) {
	r := NewResponder(newMemoryState())

	reply := r.Reply(context.Background(), "s1", "/frobnicate")
	if !strings.Contains(reply, "/help") {
		t.Fatalf("unknown command reply should point at /help, got %q", reply)
	}
}

func TestSetAndGetName(t *testing.T) {
	r := NewResponder(newMemoryState())
	ctx := context.Background()

	reply := r.Reply(ctx, "s1", "/name Alice")
	if !strings.Contains(reply, "Alice") {
		t.Fatalf("set-name reply should echo the name, got %q", reply)
	}

	reply = r.Reply(ctx, "s1", "/myname")
	if reply != "Your name is: Alice" {
		t.Fatalf("unexpected /myname reply: %q", reply)
	}

	// A different session has its own name state.
	reply = r.Reply(ctx, "s2", "/myname")
	if !strings.Contains(reply, "haven't told me") {
		t.Fatalf("fresh session should have no name, got %q", reply)
	}
}

func TestSetNameWithoutArgument(t *testing.T) {
	r := NewResponder(newMemoryState())

	reply := r.Reply(context.Background(), "s1", "/name")
	if !strings.Contains(reply, "/name [your name]") {
		t.Fatalf("expected usage hint, got %q", reply)
	}
}

func TestGreetingUsesStoredName(t *testing.T) {
	r := NewResponder(newMemoryState())
	ctx := context.Background()

	r.Reply(ctx, "s1", "/name Bob")

	reply := r.Reply(ctx, "s1", "/hello")
	if !strings.Contains(reply, "Bob") {
		t.Fatalf("greeting should use the stored name, got %q", reply)
	}
}

func TestKeywordReplies(t *testing.T) {
	r := NewResponder(newMemoryState())
	ctx := context.Background()

	if reply := r.Reply(ctx, "s1", "hello there"); !strings.Contains(reply, DefaultName) {
		t.Fatalf("greeting for anonymous session should use default name, got %q", reply)
	}
	if reply := r.Reply(ctx, "s1", "how are you today?"); !strings.Contains(reply, "doing great") {
		t.Fatalf("unexpected reply: %q", reply)
	}
	if reply := r.Reply(ctx, "s1", "thanks a lot"); !strings.Contains(reply, "welcome") {
		t.Fatalf("unexpected reply: %q", reply)
	}
}

func TestFallbackIsUsage(t *testing.T) {
	r := NewResponder(newMemoryState())

	if reply := r.Reply(context.Background(), "s1", "what is the weather"); reply != usageText {
		t.Fatalf("expected usage fallback, got %q", reply)
	}
}
