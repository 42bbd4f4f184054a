package store

import (
	"context"
	"fmt"

	"github.com/roach88/dasha/internal/ir"
)

// PutSystem records the canonical form of a system definition and returns
// its content hash. Re-putting an id replaces the record.
func (s *Store) PutSystem(ctx context.Context, rec ir.SystemRecord) (string, error) {
	hash, err := rec.Hash()
	if err != nil {
		return "", fmt.Errorf("put system: %w", err)
	}
	data, err := ir.MarshalCanonical(rec.Value())
	if err != nil {
		return "", fmt.Errorf("put system: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO systems (id, record_hash, record)
		VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET record_hash = excluded.record_hash, record = excluded.record
	`, rec.ID, hash, string(data))
	if err != nil {
		return "", fmt.Errorf("put system: %w", err)
	}
	return hash, nil
}

// PutTimeline caches a flattened timeline built from the system whose
// record hashes to systemHash. Any previous entry for the same key is
// replaced. Returns the key hash.
func (s *Store) PutTimeline(ctx context.Context, tl ir.Timeline, systemHash string) (string, error) {
	keyHash, err := tl.Key.Hash()
	if err != nil {
		return "", fmt.Errorf("put timeline: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("put timeline: begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM timelines WHERE key_hash = ?`, keyHash); err != nil {
		return "", fmt.Errorf("put timeline: replace: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO timelines
		(key_hash, system_id, system_hash, reference, epoch, horizon_years, depth,
		 balance_ruler, balance_num, balance_den, period_count, record_version, engine_version)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		keyHash,
		tl.Key.System,
		systemHash,
		tl.Key.Reference,
		tl.Key.Epoch,
		tl.Key.HorizonYears,
		tl.Key.Depth,
		tl.Balance.Ruler,
		tl.Balance.Num,
		tl.Balance.Den,
		len(tl.Periods),
		ir.RecordVersion,
		ir.EngineVersion,
	)
	if err != nil {
		return "", fmt.Errorf("put timeline: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO periods (key_hash, seq, ruler, depth, start, end_value, from_time, to_time)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return "", fmt.Errorf("put timeline: prepare: %w", err)
	}
	defer stmt.Close()

	for seq, p := range tl.Periods {
		if _, err := stmt.ExecContext(ctx, keyHash, seq, p.Ruler, p.Depth, p.Start, p.End, p.From, p.To); err != nil {
			return "", fmt.Errorf("put timeline: period %d: %w", seq, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("put timeline: commit: %w", err)
	}
	return keyHash, nil
}

// PurgeSystem drops every cached timeline of a system. Returns the number
// of timelines removed.
func (s *Store) PurgeSystem(ctx context.Context, systemID string) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM timelines WHERE system_id = ?`, systemID)
	if err != nil {
		return 0, fmt.Errorf("purge system: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("purge system: %w", err)
	}
	return n, nil
}
