package audit

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// MemoryLedger is an in-process Ledger for tests and prototypes.
type MemoryLedger struct {
	mu     sync.Mutex
	chains map[uuid.UUID][]Entry
}

func NewMemoryLedger() *MemoryLedger {
	return &MemoryLedger{chains: map[uuid.UUID][]Entry{}}
}

func (l *MemoryLedger) Append(ctx context.Context, spaceID uuid.UUID, actor, eventType string, payload any) error {
	b, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	chain := l.chains[spaceID]
	var prev string
	if n := len(chain); n > 0 {
		prev = chain[n-1].ThisHash
	}
	l.chains[spaceID] = append(chain, Entry{
		Seq:       int64(len(chain) + 1),
		SpaceID:   spaceID.String(),
		Actor:     actor,
		EventType: eventType,
		Payload:   b,
		PrevHash:  prev,
		ThisHash:  chainHash(prev, b),
	})
	return nil
}

func (l *MemoryLedger) Verify(ctx context.Context, spaceID uuid.UUID, limit int) (int64, error) {
	l.mu.Lock()
	chain := append([]Entry(nil), l.chains[spaceID]...)
	l.mu.Unlock()
	if limit > 0 && limit < len(chain) {
		chain = chain[:limit]
	}
	return verifyChain(chain)
}

// Entries returns a copy of the chain for a space. Test helper.
func (l *MemoryLedger) Entries(spaceID uuid.UUID) []Entry {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]Entry(nil), l.chains[spaceID]...)
}

// Tamper replaces the payload at seq without rehashing. Test helper.
func (l *MemoryLedger) Tamper(spaceID uuid.UUID, seq int64, payload []byte) {
	l.mu.Lock()
	defer l.mu.Unlock()
	chain := l.chains[spaceID]
	for i := range chain {
		if chain[i].Seq == seq {
			chain[i].Payload = payload
		}
	}
}
