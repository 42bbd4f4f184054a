package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/roach88/dasha/internal/ir"
)

// GetSystem returns the stored record for id and its hash.
func (s *Store) GetSystem(ctx context.Context, id string) (ir.SystemRecord, string, bool, error) {
	var hash, data string
	err := s.db.QueryRowContext(ctx, `
		SELECT record_hash, record FROM systems WHERE id = ?
	`, id).Scan(&hash, &data)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.SystemRecord{}, "", false, nil
	}
	if err != nil {
		return ir.SystemRecord{}, "", false, fmt.Errorf("get system: %w", err)
	}

	var rec ir.SystemRecord
	if err := json.Unmarshal([]byte(data), &rec); err != nil {
		return ir.SystemRecord{}, "", false, fmt.Errorf("get system: decode: %w", err)
	}
	return rec, hash, true, nil
}

// GetTimeline returns the cached timeline for key. Entries built from a
// different system definition or record version are misses.
func (s *Store) GetTimeline(ctx context.Context, key ir.TimelineKey, systemHash string) (ir.Timeline, bool, error) {
	keyHash, err := key.Hash()
	if err != nil {
		return ir.Timeline{}, false, fmt.Errorf("get timeline: %w", err)
	}

	tl := ir.Timeline{Key: key}
	var count int
	err = s.db.QueryRowContext(ctx, `
		SELECT balance_ruler, balance_num, balance_den, period_count
		FROM timelines
		WHERE key_hash = ? AND system_hash = ? AND record_version = ?
	`, keyHash, systemHash, ir.RecordVersion).Scan(&tl.Balance.Ruler, &tl.Balance.Num, &tl.Balance.Den, &count)
	if errors.Is(err, sql.ErrNoRows) {
		return ir.Timeline{}, false, nil
	}
	if err != nil {
		return ir.Timeline{}, false, fmt.Errorf("get timeline: %w", err)
	}

	periods, err := s.readPeriods(ctx, keyHash)
	if err != nil {
		return ir.Timeline{}, false, err
	}
	if len(periods) != count {
		return ir.Timeline{}, false, fmt.Errorf("get timeline: %s has %d periods, expected %d", keyHash, len(periods), count)
	}
	tl.Periods = periods
	return tl, true, nil
}

func (s *Store) readPeriods(ctx context.Context, keyHash string) ([]ir.Period, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT ruler, depth, start, end_value, from_time, to_time
		FROM periods
		WHERE key_hash = ?
		ORDER BY seq ASC
	`, keyHash)
	if err != nil {
		return nil, fmt.Errorf("query periods: %w", err)
	}
	defer rows.Close()

	periods := []ir.Period{}
	for rows.Next() {
		var p ir.Period
		if err := rows.Scan(&p.Ruler, &p.Depth, &p.Start, &p.End, &p.From, &p.To); err != nil {
			return nil, fmt.Errorf("scan period: %w", err)
		}
		periods = append(periods, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate periods: %w", err)
	}
	return periods, nil
}

// Entry summarizes one cached timeline.
type Entry struct {
	KeyHash     string `json:"key_hash" yaml:"key_hash" toml:"key_hash"`
	System      string `json:"system" yaml:"system" toml:"system"`
	Depth       int64  `json:"depth" yaml:"depth" toml:"depth"`
	PeriodCount int64  `json:"period_count" yaml:"period_count" toml:"period_count"`
}

// ListTimelines returns a summary of every cached timeline ordered by
// system then key hash.
func (s *Store) ListTimelines(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT key_hash, system_id, depth, period_count
		FROM timelines
		ORDER BY system_id ASC, key_hash COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("list timelines: %w", err)
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.KeyHash, &e.System, &e.Depth, &e.PeriodCount); err != nil {
			return nil, fmt.Errorf("scan timeline: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate timelines: %w", err)
	}
	return entries, nil
}
