package audit

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/danielpatrickdp/txpredict/internal/ledger"
	"github.com/danielpatrickdp/txpredict/internal/update"
)

// #region ledger-sink
// RecordPrediction writes a newly recorded ledger entry.
func (s *Store) RecordPrediction(e ledger.Entry) error {
	runID, err := s.activeRun()
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO predictions (entry_id, run_id, target_session, predicted, confidence, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, runID, e.TargetSession, string(e.Predicted), e.Confidence,
		e.CreatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert prediction: %w", err)
	}
	return nil
}

// RecordResolution writes the outcome of a resolved ledger entry.
func (s *Store) RecordResolution(e ledger.Entry) error {
	runID, err := s.activeRun()
	if err != nil {
		return err
	}
	if e.Actual == nil {
		return fmt.Errorf("resolution for %d has no actual outcome", e.TargetSession)
	}
	hit := 0
	if e.Hit() {
		hit = 1
	}
	_, err = s.db.Exec(
		`INSERT INTO resolutions (entry_id, run_id, target_session, actual, hit, resolved_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, runID, e.TargetSession, string(*e.Actual), hit,
		e.ResolvedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert resolution: %w", err)
	}
	return nil
}

// #endregion ledger-sink

// #region weight-log
// RecordWeights writes the weight table after the update triggered by session.
func (s *Store) RecordWeights(session int64, weights update.Weights, d update.Decision) error {
	runID, err := s.activeRun()
	if err != nil {
		return err
	}
	weightsJSON, err := json.Marshal(weights)
	if err != nil {
		return fmt.Errorf("marshal weights: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO weight_snapshots (run_id, session, weights_json, decision, reason, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		runID, session, string(weightsJSON), d.Action, nullIfEmpty(d.Reason),
		time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("log weights: %w", err)
	}
	return nil
}

// LatestWeights returns the newest weight snapshot of runID.
func (s *Store) LatestWeights(runID string) (WeightSnapshot, error) {
	var snap WeightSnapshot
	var weightsJSON, createdStr string
	var reason sql.NullString

	err := s.db.QueryRow(
		`SELECT session, weights_json, decision, reason, created_at
		 FROM weight_snapshots WHERE run_id = ? ORDER BY id DESC LIMIT 1`, runID,
	).Scan(&snap.Session, &weightsJSON, &snap.Decision, &reason, &createdStr)
	if err != nil {
		return WeightSnapshot{}, fmt.Errorf("latest weights %s: %w", runID, err)
	}
	if err := json.Unmarshal([]byte(weightsJSON), &snap.Weights); err != nil {
		return WeightSnapshot{}, fmt.Errorf("unmarshal weights: %w", err)
	}
	snap.Reason = reason.String
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return snap, nil
}

// #endregion weight-log

// #region queries
// RecentPredictions returns the newest predictions of runID, newest first.
func (s *Store) RecentPredictions(runID string, limit int) ([]PredictionRow, error) {
	rows, err := s.db.Query(
		`SELECT p.entry_id, p.target_session, p.predicted, p.confidence, p.created_at, r.actual, r.hit
		 FROM predictions p LEFT JOIN resolutions r ON r.entry_id = p.entry_id
		 WHERE p.run_id = ?
		 ORDER BY p.target_session DESC, p.created_at DESC LIMIT ?`, runID, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recent predictions: %w", err)
	}
	defer rows.Close()

	var out []PredictionRow
	for rows.Next() {
		var row PredictionRow
		var createdStr string
		var actual sql.NullString
		var hit sql.NullInt64
		if err := rows.Scan(&row.EntryID, &row.TargetSession, &row.Predicted, &row.Confidence, &createdStr, &actual, &hit); err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		row.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		row.Actual = actual.String
		row.Hit = hit.Valid && hit.Int64 == 1
		out = append(out, row)
	}
	return out, rows.Err()
}

// Summarize aggregates runID. LatestWeights is nil when the run never
// updated its weights.
func (s *Store) Summarize(runID string) (Summary, error) {
	var sum Summary
	var startedStr string
	var meta sql.NullString
	err := s.db.QueryRow(
		`SELECT run_id, started_at, meta FROM runs WHERE run_id = ?`, runID,
	).Scan(&sum.Run.RunID, &startedStr, &meta)
	if err != nil {
		return Summary{}, fmt.Errorf("get run %s: %w", runID, err)
	}
	sum.Run.StartedAt, _ = time.Parse(time.RFC3339Nano, startedStr)
	sum.Run.Meta = meta.String

	if err := s.db.QueryRow(
		`SELECT COUNT(*) FROM predictions WHERE run_id = ?`, runID,
	).Scan(&sum.Predictions); err != nil {
		return Summary{}, fmt.Errorf("count predictions: %w", err)
	}
	if err := s.db.QueryRow(
		`SELECT COUNT(*), COALESCE(SUM(hit), 0) FROM resolutions WHERE run_id = ?`, runID,
	).Scan(&sum.Resolved, &sum.Wins); err != nil {
		return Summary{}, fmt.Errorf("count resolutions: %w", err)
	}

	snap, err := s.LatestWeights(runID)
	switch {
	case err == nil:
		sum.LatestWeights = &snap
	case !errors.Is(err, sql.ErrNoRows):
		return Summary{}, err
	}
	return sum, nil
}

// #endregion queries
