// Package seed 从 TOML 文件初始化本地引用数据（部门、用户、活动）
package seed

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"boqdesk/internal/model"
)

// File seed.toml 结构
type File struct {
	Departments []Department `toml:"departments"`
	Users       []User       `toml:"users"`
	Events      []Event      `toml:"events"`
}

type Department struct {
	ID   string `toml:"id"`
	Name string `toml:"name"`
}

type User struct {
	ID           string `toml:"id"`
	Name         string `toml:"name"`
	Email        string `toml:"email"`
	Role         string `toml:"role"`
	DepartmentID string `toml:"department_id"`
}

type Event struct {
	ID          string `toml:"id"`
	Name        string `toml:"name"`
	Description string `toml:"description"`
	Date        string `toml:"date"` // YYYY-MM-DD
}

// Target 写入目标
type Target interface {
	CreateDepartment(ctx context.Context, d model.Department) error
	CreateUser(ctx context.Context, u model.User) error
	CreateEvent(ctx context.Context, e model.Event) error
}

// Counts 写入数量
type Counts struct {
	Departments int
	Users       int
	Events      int
}

// Load 读取并校验 seed 文件
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read seed file: %w", err)
	}
	var f File
	if err := toml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse seed file: %w", err)
	}
	if err := f.validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

func (f *File) validate() error {
	depts := make(map[string]bool, len(f.Departments))
	for i, d := range f.Departments {
		if strings.TrimSpace(d.ID) == "" || strings.TrimSpace(d.Name) == "" {
			return fmt.Errorf("departments[%d]: id and name are required", i)
		}
		depts[d.ID] = true
	}
	for i, u := range f.Users {
		if strings.TrimSpace(u.ID) == "" || strings.TrimSpace(u.Name) == "" {
			return fmt.Errorf("users[%d]: id and name are required", i)
		}
		if u.DepartmentID != "" && !depts[u.DepartmentID] {
			return fmt.Errorf("users[%d]: unknown department_id %q", i, u.DepartmentID)
		}
		if u.Role != "" && u.Role != model.RoleAdmin && u.Role != model.RoleDepartmentUser {
			return fmt.Errorf("users[%d]: role must be %s or %s", i, model.RoleAdmin, model.RoleDepartmentUser)
		}
	}
	for i, e := range f.Events {
		if strings.TrimSpace(e.ID) == "" || strings.TrimSpace(e.Name) == "" {
			return fmt.Errorf("events[%d]: id and name are required", i)
		}
		if _, err := e.date(); err != nil {
			return fmt.Errorf("events[%d]: %w", i, err)
		}
	}
	return nil
}

func (e Event) date() (time.Time, error) {
	if e.Date == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(time.DateOnly, e.Date)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", e.Date)
	}
	return t, nil
}

// Apply 写入全部记录；已存在的 ID 会被更新
func (f *File) Apply(ctx context.Context, t Target) (Counts, error) {
	var c Counts
	for _, d := range f.Departments {
		if err := t.CreateDepartment(ctx, model.Department{ID: d.ID, Name: strings.TrimSpace(d.Name)}); err != nil {
			return c, err
		}
		c.Departments++
	}
	for _, u := range f.Users {
		if err := t.CreateUser(ctx, model.User{
			ID:           u.ID,
			Name:         strings.TrimSpace(u.Name),
			Email:        u.Email,
			Role:         u.Role,
			DepartmentID: u.DepartmentID,
		}); err != nil {
			return c, err
		}
		c.Users++
	}
	for _, e := range f.Events {
		date, _ := e.date()
		if err := t.CreateEvent(ctx, model.Event{
			ID:          e.ID,
			Name:        strings.TrimSpace(e.Name),
			Description: e.Description,
			EventDate:   date,
		}); err != nil {
			return c, err
		}
		c.Events++
	}
	return c, nil
}
