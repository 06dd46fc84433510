package model

import "time"

// Department 部门（引用数据，只读）
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// User 部门用户（引用数据，只读）
type User struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Email        string `json:"email,omitempty"`
	Role         string `json:"role,omitempty"`
	DepartmentID string `json:"departmentId,omitempty"`
}

// Event 活动
type Event struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	EventDate   time.Time `json:"eventDate"`
	CreatedAt   time.Time `json:"createdAt"`
}

// Task 导入确认后持久化的任务，创建后不再由导入流水线修改
type Task struct {
	ID             string    `json:"id"`
	EventID        string    `json:"eventId"`
	SNo            *int      `json:"sNo"`
	TaskName       string    `json:"taskName"`
	Description    string    `json:"description"`
	DepartmentName string    `json:"departmentName"`
	Remark         *string   `json:"remark,omitempty"`
	Position       int       `json:"position"`
	CreatedAt      time.Time `json:"createdAt"`

	Assignments []Assignment `json:"assignments,omitempty"`
}

// NewTask 待写入的任务（ID 由调用方生成）
type NewTask struct {
	ID             string
	SNo            *int
	TaskName       string
	Description    string
	DepartmentName string
	Remark         *string
	Position       int
}

// Assignment 任务分派（用户或部门二选一）
type Assignment struct {
	ID           string    `json:"id"`
	TaskID       string    `json:"taskId"`
	UserID       *string   `json:"userId,omitempty"`
	DepartmentID *string   `json:"departmentId,omitempty"`
	AssignedAt   time.Time `json:"assignedAt"`
}

// Role 用户角色
const (
	RoleAdmin          = "ADMIN"
	RoleDepartmentUser = "DEPARTMENT_USER"
)

// AssignmentTarget 分派建议，UserID 与 DepartmentID 二选一
type AssignmentTarget struct {
	UserID       *string
	DepartmentID *string
}
