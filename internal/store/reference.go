package store

import (
	"context"
	"fmt"

	"boqdesk/internal/model"
)

// ListDepartments 全部部门，按名称排序
func (s *Store) ListDepartments(ctx context.Context) ([]model.Department, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, name FROM departments ORDER BY name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list departments: %w", err)
	}
	defer rows.Close()

	var out []model.Department
	for rows.Next() {
		var d model.Department
		if err := rows.Scan(&d.ID, &d.Name); err != nil {
			return nil, fmt.Errorf("failed to scan department: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListUsers 列出用户；departmentID 为空时返回全部
func (s *Store) ListUsers(ctx context.Context, departmentID string) ([]model.User, error) {
	query := "SELECT id, name, email, role, COALESCE(department_id, '') FROM users"
	var args []interface{}
	if departmentID != "" {
		query += " WHERE department_id = ?"
		args = append(args, departmentID)
	}
	query += " ORDER BY name, id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.Role, &u.DepartmentID); err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// CreateDepartment 新增部门（本地初始化数据用）
func (s *Store) CreateDepartment(ctx context.Context, d model.Department) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO departments (id, name) VALUES (?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name
	`, d.ID, d.Name)
	if err != nil {
		return fmt.Errorf("failed to create department: %w", err)
	}
	return nil
}

// CreateUser 新增用户（本地初始化数据用）
func (s *Store) CreateUser(ctx context.Context, u model.User) error {
	role := u.Role
	if role == "" {
		role = model.RoleDepartmentUser
	}
	var dept interface{}
	if u.DepartmentID != "" {
		dept = u.DepartmentID
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, name, email, role, department_id) VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			role = excluded.role,
			department_id = excluded.department_id
	`, u.ID, u.Name, u.Email, role, dept)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}
