package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"boqdesk/internal/model"
)

// GetEvent 获取活动，不存在时返回 model.ErrNotFound
func (s *Store) GetEvent(ctx context.Context, id string) (*model.Event, error) {
	var (
		e         model.Event
		eventDate sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, description, event_date, created_at FROM events WHERE id = ?
	`, id).Scan(&e.ID, &e.Name, &e.Description, &eventDate, &e.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get event: %w", err)
	}
	if eventDate.Valid {
		e.EventDate = eventDate.Time
	}
	return &e, nil
}

// CreateEvent 新增活动（本地初始化数据用）
func (s *Store) CreateEvent(ctx context.Context, e model.Event) error {
	var eventDate interface{}
	if !e.EventDate.IsZero() {
		eventDate = e.EventDate.UTC()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO events (id, name, description, event_date) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			event_date = excluded.event_date
	`, e.ID, e.Name, e.Description, eventDate)
	if err != nil {
		return fmt.Errorf("failed to create event: %w", err)
	}
	return nil
}
