package reference

import (
	"context"
	"fmt"
	"strings"

	"boqdesk/internal/model"
)

// Provider 部门与用户引用数据来源（只读）
type Provider interface {
	ListDepartments(ctx context.Context) ([]model.Department, error)
	// ListUsers departmentID 为空时返回全部用户
	ListUsers(ctx context.Context, departmentID string) ([]model.User, error)
}

// Snapshot 一次请求内使用的引用数据只读快照
//
// 构建后不再修改，可被多个 goroutine 并发读取。
type Snapshot struct {
	deptByName  map[string]model.Department
	usersByDept map[string]map[string][]model.User
}

// Load 每次请求调用一次，拉取全部部门与用户
func Load(ctx context.Context, p Provider) (*Snapshot, error) {
	depts, err := p.ListDepartments(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	users, err := p.ListUsers(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return NewSnapshot(depts, users), nil
}

// NewSnapshot 由给定集合构建快照
// 同名（忽略大小写）的部门保留列表中的第一个
func NewSnapshot(departments []model.Department, users []model.User) *Snapshot {
	s := &Snapshot{
		deptByName:  make(map[string]model.Department, len(departments)),
		usersByDept: make(map[string]map[string][]model.User),
	}

	for _, d := range departments {
		key := foldName(d.Name)
		if key == "" {
			continue
		}
		if _, exists := s.deptByName[key]; !exists {
			s.deptByName[key] = d
		}
	}

	for _, u := range users {
		key := foldName(u.Name)
		if key == "" || u.DepartmentID == "" {
			continue
		}
		byName, ok := s.usersByDept[u.DepartmentID]
		if !ok {
			byName = make(map[string][]model.User)
			s.usersByDept[u.DepartmentID] = byName
		}
		byName[key] = append(byName[key], u)
	}
	return s
}

// Department 按名称（忽略大小写）精确匹配部门
func (s *Snapshot) Department(name string) (model.Department, bool) {
	d, ok := s.deptByName[foldName(name)]
	return d, ok
}

// UserInDepartment 在指定部门内按名称（忽略大小写）精确匹配用户
// 同部门重名视为无法确定，返回 false
func (s *Snapshot) UserInDepartment(departmentID, name string) (model.User, bool) {
	matches := s.usersByDept[departmentID][foldName(name)]
	if len(matches) != 1 {
		return model.User{}, false
	}
	return matches[0], true
}

func foldName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
