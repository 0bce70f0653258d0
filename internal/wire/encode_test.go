package wire

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/parley-protocol/parley/internal/models"
)

func TestDeterministic(t *testing.T) {
	msg := models.Message{Sender: "alice", Body: "hi", Kind: "user", Timestamp: 1000}

	a, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	b, err := Encode(msg)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(a, b) {
		t.Fatal("repeated encodings differ")
	}
}

func TestDistinctMessagesDistinctBytes(t *testing.T) {
	base := models.Message{Sender: "alice", Body: "hi", Kind: "user", Timestamp: 1000}

	variants := []models.Message{
		{Sender: "alicx", Body: "hi", Kind: "user", Timestamp: 1000},
		{Sender: "alice", Body: "hi!", Kind: "user", Timestamp: 1000},
		{Sender: "alice", Body: "hi", Kind: "bot", Timestamp: 1000},
		{Sender: "alice", Body: "hi", Kind: "user", Timestamp: 1001},
	}

	baseBytes, err := Encode(base)
	if err != nil {
		t.Fatal(err)
	}

	for _, v := range variants {
		got, err := Encode(v)
		if err != nil {
			t.Fatal(err)
		}
		if bytes.Equal(baseBytes, got) {
			t.Fatalf("distinct message %+v encoded identically", v)
		}
	}
}

func TestFieldBoundariesUnambiguous(t *testing.T) {
	// Without length prefixes these two would concatenate to the same bytes.
	a := models.Message{Sender: "ab", Body: "c", Timestamp: 1}
	b := models.Message{Sender: "a", Body: "bc", Timestamp: 1}

	ea, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	eb, err := Encode(b)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ea, eb) {
		t.Fatal("field boundary shift produced identical encodings")
	}
}

func TestVersionByteFirst(t *testing.T) {
	enc, err := Encode(models.Message{Sender: "a", Body: "b", Timestamp: 1})
	if err != nil {
		t.Fatal(err)
	}
	if enc[0] != Version {
		t.Fatalf("expected version byte %#x, got %#x", Version, enc[0])
	}
}

func TestRejectsInvalidUTF8(t *testing.T) {
	msg := models.Message{Sender: "alice", Body: string([]byte{0xff, 0xfe}), Timestamp: 1}
	_, err := Encode(msg)
	if !errors.Is(err, ErrInvalidUTF8) {
		t.Fatalf("expected ErrInvalidUTF8, got %v", err)
	}
}

func TestRejectsOversizedField(t *testing.T) {
	msg := models.Message{Sender: "alice", Body: strings.Repeat("x", MaxFieldLen+1), Timestamp: 1}
	_, err := Encode(msg)
	if !errors.Is(err, ErrFieldTooLong) {
		t.Fatalf("expected ErrFieldTooLong, got %v", err)
	}
}

func TestRejectsNegativeTimestamp(t *testing.T) {
	msg := models.Message{Sender: "alice", Body: "hi", Timestamp: -1}
	_, err := Encode(msg)
	if !errors.Is(err, ErrNegativeTimestamp) {
		t.Fatalf("expected ErrNegativeTimestamp, got %v", err)
	}
}

func TestEmptyFieldsAllowed(t *testing.T) {
	// Kind is optional; an empty kind must still encode distinctly from a
	// message whose body ends with the would-be kind bytes.
	a := models.Message{Sender: "alice", Body: "hiuser", Kind: "", Timestamp: 1}
	b := models.Message{Sender: "alice", Body: "hi", Kind: "user", Timestamp: 1}

	ea, err := Encode(a)
	if err != nil {
		t.Fatal(err)
	}
	eb, err := Encode(b)
	if err != nil {
		t.Fatal(err)
	}
	if bytes.Equal(ea, eb) {
		t.Fatal("empty kind collided with body suffix")
	}
}
