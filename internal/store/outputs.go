package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ballotqa/internal/logging"
	"ballotqa/internal/tally"
	"ballotqa/internal/votes"

	"github.com/google/uuid"
)

// ScanMeta identifies which fixture and sheet a scan came from.
type ScanMeta struct {
	BallotStyleID string
	SheetNumber   int
	FixtureID     string
}

// ScanRecord is a stored scan result.
type ScanRecord struct {
	ID string
	ScanMeta
	Result     tally.ScanResult
	RecordedAt time.Time
}

// =============================================================================
// SCAN RESULTS
// =============================================================================

// RecordScanResult stores one scan and returns its id.
func (s *Store) RecordScanResult(ctx context.Context, sr tally.ScanResult, meta ScanMeta) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	votesJSON, err := json.Marshal(sr.Votes)
	if err != nil {
		return "", fmt.Errorf("failed to encode votes: %w", err)
	}
	id := uuid.NewString()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO scan_results (id, accepted, mark_pattern, votes_json, recorded_at,
			ballot_style_id, sheet_number, fixture_id)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, id, sr.Accepted, string(sr.MarkPattern), string(votesJSON), time.Now().UnixNano(),
		meta.BallotStyleID, meta.SheetNumber, meta.FixtureID)
	if err != nil {
		return "", fmt.Errorf("failed to record scan result: %w", err)
	}
	logging.StoreDebug("Recorded scan result %s (style=%s sheet=%d accepted=%v)",
		id, meta.BallotStyleID, meta.SheetNumber, sr.Accepted)
	return id, nil
}

// ScanResults returns every stored scan in recording order.
func (s *Store) ScanResults(ctx context.Context) ([]ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, accepted, mark_pattern, votes_json, recorded_at,
			ballot_style_id, sheet_number, fixture_id
		FROM scan_results ORDER BY recorded_at, rowid
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan results: %w", err)
	}
	defer rows.Close()

	var out []ScanRecord
	for rows.Next() {
		var (
			rec       ScanRecord
			pattern   string
			votesJSON string
			nanos     int64
		)
		if err := rows.Scan(&rec.ID, &rec.Result.Accepted, &pattern, &votesJSON, &nanos,
			&rec.BallotStyleID, &rec.SheetNumber, &rec.FixtureID); err != nil {
			return nil, err
		}
		rec.Result.MarkPattern = votes.Pattern(pattern)
		if err := json.Unmarshal([]byte(votesJSON), &rec.Result.Votes); err != nil {
			return nil, fmt.Errorf("scan result %s: %w", rec.ID, err)
		}
		rec.RecordedAt = time.Unix(0, nanos)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// MANUAL TALLIES
// =============================================================================

// RecordManualTally stores hand-entered counts and returns the record id.
func (s *Store) RecordManualTally(ctx context.Context, mt tally.ManualTally, note string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	talliesJSON, err := json.Marshal(mt.Tallies)
	if err != nil {
		return "", fmt.Errorf("failed to encode tallies: %w", err)
	}
	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO manual_tallies (id, tallies_json, recorded_at, note) VALUES (?, ?, ?, ?)`,
		id, string(talliesJSON), time.Now().UnixNano(), note); err != nil {
		return "", fmt.Errorf("failed to record manual tally: %w", err)
	}
	logging.StoreDebug("Recorded manual tally %s", id)
	return id, nil
}

// ManualTallies returns every stored manual tally in recording order.
func (s *Store) ManualTallies(ctx context.Context) ([]tally.ManualTally, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT id, tallies_json FROM manual_tallies ORDER BY recorded_at, rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query manual tallies: %w", err)
	}
	defer rows.Close()

	var out []tally.ManualTally
	for rows.Next() {
		var id, talliesJSON string
		if err := rows.Scan(&id, &talliesJSON); err != nil {
			return nil, err
		}
		var mt tally.ManualTally
		if err := json.Unmarshal([]byte(talliesJSON), &mt.Tallies); err != nil {
			return nil, fmt.Errorf("manual tally %s: %w", id, err)
		}
		out = append(out, mt)
	}
	return out, rows.Err()
}

// =============================================================================
// TALLY EXPORTS
// =============================================================================

// RecordTallyCSV stores a tally export. The most recent export wins.
func (s *Store) RecordTallyCSV(ctx context.Context, content, source string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.NewString()
	if _, err := s.db.ExecContext(ctx,
		`INSERT INTO tally_exports (id, source, content, recorded_at) VALUES (?, ?, ?, ?)`,
		id, source, content, time.Now().UnixNano()); err != nil {
		return "", fmt.Errorf("failed to record tally export: %w", err)
	}
	logging.Store("Recorded tally export %s from %s (%d bytes)", id, source, len(content))
	return id, nil
}

// LatestTallyCSV returns the most recent export, or nil if none was recorded.
func (s *Store) LatestTallyCSV(ctx context.Context) (*string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var content string
	err := s.db.QueryRowContext(ctx,
		`SELECT content FROM tally_exports ORDER BY recorded_at DESC, rowid DESC LIMIT 1`).Scan(&content)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load tally export: %w", err)
	}
	return &content, nil
}

// Outputs gathers everything reconciliation needs.
func (s *Store) Outputs(ctx context.Context) (tally.Outputs, error) {
	scans, err := s.ScanResults(ctx)
	if err != nil {
		return tally.Outputs{}, err
	}
	manual, err := s.ManualTallies(ctx)
	if err != nil {
		return tally.Outputs{}, err
	}
	csv, err := s.LatestTallyCSV(ctx)
	if err != nil {
		return tally.Outputs{}, err
	}

	out := tally.Outputs{ManualTallies: manual, TallyCSV: csv}
	for _, rec := range scans {
		out.ScanResults = append(out.ScanResults, rec.Result)
	}
	return out, nil
}
