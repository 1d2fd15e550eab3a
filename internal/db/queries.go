package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
)

// SaveBatch persists a batch and its results in one transaction and returns
// the new batch id.
func (db *DB) SaveBatch(ctx context.Context, batch *models.UsageBatch) (int64, error) {
	fetchedAt := batch.FetchedAt
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	result, err := tx.ExecContext(ctx, `
		INSERT INTO batches (account_id, fetched_at, submitted, result_count)
		VALUES (?, ?, ?, ?)
	`,
		batch.AccountID,
		fetchedAt.UTC().Format(timeLayout),
		batch.Submitted,
		batch.Len(),
	)
	if err != nil {
		return 0, fmt.Errorf("failed to insert batch: %w", err)
	}

	batchID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read batch id: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO batch_results (batch_id, position, query_id, status, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare result insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for i, r := range batch.Results {
		payload, err := json.Marshal(r)
		if err != nil {
			return 0, fmt.Errorf("failed to encode result %s: %w", r.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, batchID, i, r.ID, string(r.Status), string(payload)); err != nil {
			return 0, fmt.Errorf("failed to insert result %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit batch: %w", err)
	}

	return batchID, nil
}

// ListBatches returns the most recent batches of an account, newest first.
func (db *DB) ListBatches(ctx context.Context, accountID string, limit int) ([]models.UsageBatch, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}

	rows, err := db.QueryContext(ctx, `
		SELECT id, account_id, fetched_at, submitted
		FROM batches
		WHERE account_id = ?
		ORDER BY fetched_at DESC, id DESC
		LIMIT ?
	`, accountID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query batches: %w", err)
	}

	var (
		ids     []int64
		batches []models.UsageBatch
	)
	for rows.Next() {
		var (
			id        int64
			fetchedAt string
			batch     models.UsageBatch
		)
		if err := rows.Scan(&id, &batch.AccountID, &fetchedAt, &batch.Submitted); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan batch: %w", err)
		}

		batch.FetchedAt, err = time.Parse(timeLayout, fetchedAt)
		if err != nil {
			logger.Warn("unparseable batch timestamp", "batch", id, "value", fetchedAt)
		}
		ids = append(ids, id)
		batches = append(batches, batch)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, err
	}
	_ = rows.Close()

	for i, id := range ids {
		results, err := db.batchResults(ctx, id)
		if err != nil {
			return nil, err
		}
		batches[i].Results = results
	}

	return batches, nil
}

func (db *DB) batchResults(ctx context.Context, batchID int64) ([]models.QueryResult, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT payload
		FROM batch_results
		WHERE batch_id = ?
		ORDER BY position
	`, batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to query batch results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	results := []models.QueryResult{}
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan batch result: %w", err)
		}

		var r models.QueryResult
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, fmt.Errorf("failed to decode batch result: %w", err)
		}
		results = append(results, r)
	}

	return results, rows.Err()
}

// DeleteBatchesBefore removes batches fetched before cutoff, with their
// results, and returns how many batches were removed.
func (db *DB) DeleteBatchesBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(timeLayout)

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, `
		DELETE FROM batch_results
		WHERE batch_id IN (SELECT id FROM batches WHERE fetched_at < ?)
	`, ts); err != nil {
		return 0, fmt.Errorf("failed to delete batch results: %w", err)
	}

	result, err := tx.ExecContext(ctx, "DELETE FROM batches WHERE fetched_at < ?", ts)
	if err != nil {
		return 0, fmt.Errorf("failed to delete batches: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit delete: %w", err)
	}
	return n, nil
}
