// Package wire defines the canonical byte encoding of a chat message.
// Signer and verifier must agree on these bytes exactly; the format is
// length-prefixed so no two distinct messages share an encoding.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/parley-protocol/parley/internal/models"
)

// Version is the encoding format version, the first byte of every encoding.
// Bumping it is a protocol break: existing signatures stop verifying.
const Version = 0x01

// MaxFieldLen caps each string field. Anything larger is rejected before
// signing rather than truncated.
const MaxFieldLen = 64 * 1024

var (
	ErrFieldTooLong      = errors.New("message field exceeds maximum length")
	ErrInvalidUTF8       = errors.New("message field is not valid UTF-8")
	ErrNegativeTimestamp = errors.New("message timestamp must not be negative")
)

// Encode returns the canonical bytes of msg: the version byte, then each
// string field (sender, body, kind) as a 4-byte big-endian length prefix
// followed by its UTF-8 bytes, then the timestamp as 8 big-endian bytes.
// Pure and deterministic: identical messages always yield identical bytes.
func Encode(msg models.Message) ([]byte, error) {
	fields := []struct {
		name  string
		value string
	}{
		{"sender", msg.Sender},
		{"body", msg.Body},
		{"kind", msg.Kind},
	}

	size := 1 + 8
	for _, f := range fields {
		size += 4 + len(f.value)
	}

	buf := make([]byte, 0, size)
	buf = append(buf, Version)

	for _, f := range fields {
		if len(f.value) > MaxFieldLen {
			return nil, fmt.Errorf("%w: %s is %d bytes", ErrFieldTooLong, f.name, len(f.value))
		}
		if !utf8.ValidString(f.value) {
			return nil, fmt.Errorf("%w: %s", ErrInvalidUTF8, f.name)
		}
		buf = binary.BigEndian.AppendUint32(buf, uint32(len(f.value)))
		buf = append(buf, f.value...)
	}

	if msg.Timestamp < 0 {
		return nil, ErrNegativeTimestamp
	}
	buf = binary.BigEndian.AppendUint64(buf, uint64(msg.Timestamp))

	return buf, nil
}
