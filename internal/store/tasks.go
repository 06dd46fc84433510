package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"boqdesk/internal/model"
)

// CreateTasks 在单个事务中写入一批任务，全部成功或全部回滚
//
// NewTask.Position 为批内顺序，落库时接在该活动已有任务之后。
func (s *Store) CreateTasks(ctx context.Context, eventID string, tasks []model.NewTask) (int, error) {
	if len(tasks) == 0 {
		return 0, nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var offset int
	if err := tx.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(position), 0) FROM tasks WHERE event_id = ?", eventID,
	).Scan(&offset); err != nil {
		return 0, fmt.Errorf("failed to read task position: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO tasks (
			id, event_id, s_no, task_name, description, department_name, remark, position
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	for _, t := range tasks {
		_, err := stmt.ExecContext(ctx,
			t.ID, eventID, nullInt(t.SNo), t.TaskName, t.Description, t.DepartmentName,
			nullString(t.Remark), offset+t.Position,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to insert task %s: %w", t.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return len(tasks), nil
}

const taskColumns = `id, event_id, s_no, task_name, description, department_name, remark, position, created_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTask(r rowScanner) (*model.Task, error) {
	var (
		t      model.Task
		sNo    sql.NullInt64
		remark sql.NullString
	)
	if err := r.Scan(&t.ID, &t.EventID, &sNo, &t.TaskName, &t.Description, &t.DepartmentName,
		&remark, &t.Position, &t.CreatedAt); err != nil {
		return nil, err
	}
	t.SNo = intPtr(sNo)
	t.Remark = stringPtr(remark)
	return &t, nil
}

// ListTasksByEvent 活动下的任务，按导入顺序
func (s *Store) ListTasksByEvent(ctx context.Context, eventID string) ([]*model.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+taskColumns+" FROM tasks WHERE event_id = ? ORDER BY position, created_at", eventID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachAssignments(ctx, eventID, out); err != nil {
		return nil, err
	}
	return out, nil
}

// GetTask 获取单个任务（含分派记录）
func (s *Store) GetTask(ctx context.Context, id string) (*model.Task, error) {
	t, err := scanTask(s.db.QueryRowContext(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = ?", id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, model.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	assignments, err := s.listAssignments(ctx, "WHERE a.task_id = ?", id)
	if err != nil {
		return nil, err
	}
	t.Assignments = assignments[id]
	return t, nil
}

// SuggestAssignment 记录导入时的分派建议
func (s *Store) SuggestAssignment(ctx context.Context, taskID string, target model.AssignmentTarget) error {
	if (target.UserID == nil) == (target.DepartmentID == nil) {
		return fmt.Errorf("assignment for task %s needs exactly one of user or department", taskID)
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO task_assignments (id, task_id, user_id, department_id) VALUES (?, ?, ?, ?)
	`, uuid.NewString(), taskID, nullString(target.UserID), nullString(target.DepartmentID))
	if err != nil {
		return fmt.Errorf("failed to create assignment: %w", err)
	}
	return nil
}

func (s *Store) attachAssignments(ctx context.Context, eventID string, tasks []*model.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	byTask, err := s.listAssignments(ctx, "JOIN tasks t ON t.id = a.task_id WHERE t.event_id = ?", eventID)
	if err != nil {
		return err
	}
	for _, t := range tasks {
		t.Assignments = byTask[t.ID]
	}
	return nil
}

func (s *Store) listAssignments(ctx context.Context, where string, args ...interface{}) (map[string][]model.Assignment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT a.id, a.task_id, a.user_id, a.department_id, a.assigned_at
		FROM task_assignments a `+where+`
		ORDER BY a.assigned_at, a.id
	`, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]model.Assignment)
	for rows.Next() {
		var (
			a          model.Assignment
			user, dept sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.TaskID, &user, &dept, &a.AssignedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assignment: %w", err)
		}
		a.UserID = stringPtr(user)
		a.DepartmentID = stringPtr(dept)
		out[a.TaskID] = append(out[a.TaskID], a)
	}
	return out, rows.Err()
}
