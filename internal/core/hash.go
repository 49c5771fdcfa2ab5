package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// DomainEvent is the domain prefix for content-addressed event identity.
// The version suffix enables future algorithm migration.
const DomainEvent = "gambit/event/v1"

// hashWithDomain computes SHA-256 with domain separation.
// Format: SHA256(domain + 0x00 + data). The null separator prevents
// domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// EventID computes the content-addressed id for an event. Given the same
// source, kind, payload and sequence number the id is identical across
// processes and replays, which is what makes resolution output
// byte-comparable.
func EventID(source string, kind Kind, payload map[string]any, seq int64) (string, error) {
	obj := map[string]any{
		"source":  source,
		"kind":    kind.String(),
		"payload": payload,
		"seq":     seq,
	}
	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("EventID: failed to marshal: %w", err)
	}
	return hashWithDomain(DomainEvent, canonical), nil
}

// MustEventID is like EventID but panics on error. Payloads built by
// Payload() never fail to marshal.
func MustEventID(source string, kind Kind, payload map[string]any, seq int64) string {
	id, err := EventID(source, kind, payload, seq)
	if err != nil {
		panic(err)
	}
	return id
}
