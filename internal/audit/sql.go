package audit

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLLedger persists the chain in the audit_ledger table.
type SQLLedger struct {
	db *sqlx.DB
}

func NewSQLLedger(db *sqlx.DB) *SQLLedger {
	return &SQLLedger{db: db}
}

func (l *SQLLedger) Append(ctx context.Context, spaceID uuid.UUID, actor, eventType string, payload any) error {
	b, err := marshalPayload(payload)
	if err != nil {
		return err
	}
	var prev string
	_ = l.db.GetContext(ctx, &prev,
		`SELECT this_hash FROM audit_ledger WHERE space_id=$1 ORDER BY seq DESC LIMIT 1`, spaceID)
	_, err = l.db.ExecContext(ctx,
		`INSERT INTO audit_ledger (space_id, actor, event_type, payload, prev_hash, this_hash)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		spaceID, actor, eventType, b, prev, chainHash(prev, b))
	if err != nil {
		return fmt.Errorf("audit append %s: %w", spaceID, err)
	}
	return nil
}

func (l *SQLLedger) Verify(ctx context.Context, spaceID uuid.UUID, limit int) (int64, error) {
	if limit <= 0 || limit > 10000 {
		limit = 10000
	}
	var entries []Entry
	err := l.db.SelectContext(ctx, &entries,
		`SELECT seq, space_id, actor, event_type, payload, prev_hash, this_hash
		 FROM audit_ledger WHERE space_id=$1 ORDER BY seq ASC LIMIT $2`, spaceID, limit)
	if err != nil {
		return 0, fmt.Errorf("audit verify %s: %w", spaceID, err)
	}
	return verifyChain(entries)
}
