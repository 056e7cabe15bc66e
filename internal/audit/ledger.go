// Package audit keeps a tamper-evident trail of space lifecycle and write
// events. Entries form a hash chain per space:
//
//	this_hash = SHA256(prev_hash_bytes || canonical payload)
//
// so removing or editing any entry breaks verification of everything after it.
package audit

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
)

// Event types recorded by the HTTP facade.
const (
	EventSpaceCreated    = "space.created"
	EventResourceWritten = "resource.written"
)

// Entry is one link in a space's chain.
type Entry struct {
	Seq       int64  `db:"seq" json:"seq"`
	SpaceID   string `db:"space_id" json:"space_id"`
	Actor     string `db:"actor" json:"actor"`
	EventType string `db:"event_type" json:"event_type"`
	Payload   []byte `db:"payload" json:"payload"`
	PrevHash  string `db:"prev_hash" json:"prev_hash"`
	ThisHash  string `db:"this_hash" json:"this_hash"`
}

// Ledger appends and verifies per-space hash chains. Append failures are
// reported but callers treat the trail as best-effort: a write never fails
// because its audit entry could not be recorded.
type Ledger interface {
	Append(ctx context.Context, spaceID uuid.UUID, actor, eventType string, payload any) error
	Verify(ctx context.Context, spaceID uuid.UUID, limit int) (brokenSeq int64, err error)
}

func chainHash(prev string, payload []byte) string {
	h := sha256.New()
	if prev != "" {
		if pb, err := hex.DecodeString(prev); err == nil {
			h.Write(pb)
		}
	}
	h.Write(payload)
	return hex.EncodeToString(h.Sum(nil))
}

// verifyChain walks entries in sequence order and returns the first seq whose
// hash does not match, or 0 when the chain is intact.
func verifyChain(entries []Entry) (int64, error) {
	var last string
	for _, e := range entries {
		if chainHash(last, e.Payload) != e.ThisHash {
			return e.Seq, fmt.Errorf("hash mismatch at seq %d", e.Seq)
		}
		last = e.ThisHash
	}
	return 0, nil
}

func marshalPayload(payload any) ([]byte, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("audit payload: %w", err)
	}
	return b, nil
}
