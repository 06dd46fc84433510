package importer

import (
	"context"
	"errors"
	"sync"

	"boqdesk/internal/model"
)

// memBackend 内存实现的外部协作方
type memBackend struct {
	mu sync.Mutex

	depts  []model.Department
	users  []model.User
	events map[string]model.Event

	tasks       map[string][]model.NewTask
	attempts    []model.ImportAttempt
	suggestions map[string]AssignmentTarget

	createErr   error
	suggestErr  error
	afterCreate func()
	listCalls   int
}

func newMemBackend() *memBackend {
	return &memBackend{
		depts: []model.Department{
			{ID: "dept-elec", Name: "Electrical"},
			{ID: "dept-civil", Name: "Civil"},
		},
		users: []model.User{
			{ID: "user-sara", Name: "Sara Khan", DepartmentID: "dept-elec"},
			{ID: "user-omar", Name: "Omar", DepartmentID: "dept-civil"},
		},
		events:      map[string]model.Event{"evt-1": {ID: "evt-1", Name: "Annual Gala"}},
		tasks:       map[string][]model.NewTask{},
		suggestions: map[string]AssignmentTarget{},
	}
}

func (m *memBackend) ListDepartments(context.Context) ([]model.Department, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listCalls++
	return append([]model.Department(nil), m.depts...), nil
}

func (m *memBackend) ListUsers(_ context.Context, departmentID string) ([]model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.User
	for _, u := range m.users {
		if departmentID == "" || u.DepartmentID == departmentID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *memBackend) GetEvent(_ context.Context, id string) (*model.Event, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.events[id]
	if !ok {
		return nil, model.ErrNotFound
	}
	return &e, nil
}

func (m *memBackend) CreateTasks(_ context.Context, eventID string, tasks []model.NewTask) (int, error) {
	m.mu.Lock()
	if m.createErr != nil {
		m.mu.Unlock()
		return 0, m.createErr
	}
	m.tasks[eventID] = append(m.tasks[eventID], tasks...)
	hook := m.afterCreate
	m.mu.Unlock()

	if hook != nil {
		hook()
	}
	return len(tasks), nil
}

// RecordAttempt 与 SQLite 一致：已取消的 ctx 写入失败
func (m *memBackend) RecordAttempt(ctx context.Context, a model.ImportAttempt) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, a)
	return nil
}

func (m *memBackend) SuggestAssignment(_ context.Context, taskID string, target AssignmentTarget) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.suggestErr != nil {
		return m.suggestErr
	}
	m.suggestions[taskID] = target
	return nil
}

func (m *memBackend) taskCount(eventID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks[eventID])
}

func (m *memBackend) lastAttempt() model.ImportAttempt {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.attempts[len(m.attempts)-1]
}

func (m *memBackend) deps() Dependencies {
	return Dependencies{
		References: m,
		Events:     m,
		Tasks:      m,
		Attempts:   m,
		Notifier:   m,
	}
}

var errStoreDown = errors.New("store unavailable")

func ptr[T any](v T) *T { return &v }
