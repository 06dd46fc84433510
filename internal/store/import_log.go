package store

import (
	"context"
	"fmt"

	"boqdesk/internal/model"
)

// RecordAttempt 写入一次导入尝试（预览或确认）
func (s *Store) RecordAttempt(ctx context.Context, a model.ImportAttempt) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO import_attempts (
			id, event_id, phase, status, filename, file_size, file_hash,
			total_rows, valid_rows, warning_rows, error_rows, tasks_created, message
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, a.ID, a.EventID, a.Phase, a.Status, a.Filename, a.FileSize, a.FileHash,
		a.TotalRows, a.ValidRows, a.WarningRows, a.ErrorRows, a.TasksCreated, a.Message)
	if err != nil {
		return fmt.Errorf("failed to record import attempt: %w", err)
	}
	return nil
}

// ListAttempts 活动的导入尝试，最新的在前；limit <= 0 时不限
func (s *Store) ListAttempts(ctx context.Context, eventID string, limit int) ([]model.ImportAttempt, error) {
	query := `
		SELECT id, event_id, phase, status, filename, file_size, file_hash,
			total_rows, valid_rows, warning_rows, error_rows, tasks_created, message, created_at
		FROM import_attempts
		WHERE event_id = ?
		ORDER BY created_at DESC, rowid DESC
	`
	args := []interface{}{eventID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list import attempts: %w", err)
	}
	defer rows.Close()

	var out []model.ImportAttempt
	for rows.Next() {
		var a model.ImportAttempt
		if err := rows.Scan(&a.ID, &a.EventID, &a.Phase, &a.Status, &a.Filename, &a.FileSize, &a.FileHash,
			&a.TotalRows, &a.ValidRows, &a.WarningRows, &a.ErrorRows, &a.TasksCreated, &a.Message,
			&a.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import attempt: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
