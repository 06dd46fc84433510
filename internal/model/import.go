package model

import "time"

// CandidateRow 导入流水线的处理单元：一行 BOQ 数据经规范化、引用解析、校验后的结果
//
// Errors/Warnings 只能通过 AddError/AddWarning 追加，IsValid 随之重算。
type CandidateRow struct {
	// 源文件行号；确认阶段为客户端回传值，仅用于展示
	Line           int     `json:"line,omitempty"`
	SequenceNumber *int    `json:"sNo"`
	TaskName       string  `json:"taskName"`
	Description    string  `json:"description"`
	DepartmentName string  `json:"departmentName"`
	Remark         *string `json:"remark,omitempty"`
	AssigneeName   *string `json:"userName,omitempty"`

	ResolvedDepartmentID *string `json:"resolvedDepartmentId,omitempty"`
	ResolvedUserID       *string `json:"resolvedUserId,omitempty"`

	IsValid  bool     `json:"isValid"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
}

// AddError 追加阻断性错误
func (r *CandidateRow) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.IsValid = len(r.Errors) == 0
}

// AddWarning 追加非阻断性警告
func (r *CandidateRow) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// ResetOutcome 清空解析与校验结果，用于对客户端回传行重新计算
func (r *CandidateRow) ResetOutcome() {
	r.ResolvedDepartmentID = nil
	r.ResolvedUserID = nil
	r.Errors = []string{}
	r.Warnings = []string{}
	r.IsValid = true
}

// Severity 行级状态：ready / warning / error
func (r *CandidateRow) Severity() RowSeverity {
	switch {
	case len(r.Errors) > 0:
		return SeverityError
	case len(r.Warnings) > 0:
		return SeverityWarning
	default:
		return SeverityReady
	}
}

// RowSeverity 预览行状态
type RowSeverity string

const (
	SeverityReady   RowSeverity = "ready"
	SeverityWarning RowSeverity = "warning"
	SeverityError   RowSeverity = "error"
)

// PreviewStats 预览统计，始终由 rows 推导
type PreviewStats struct {
	Total    int `json:"total"`
	Valid    int `json:"valid"`
	Warnings int `json:"warnings"`
	Errors   int `json:"errors"`
}

// ComputeStats 从行集合计算统计
func ComputeStats(rows []CandidateRow) PreviewStats {
	stats := PreviewStats{Total: len(rows)}
	for i := range rows {
		if len(rows[i].Errors) == 0 {
			stats.Valid++
		} else {
			stats.Errors++
		}
		if len(rows[i].Warnings) > 0 {
			stats.Warnings++
		}
	}
	return stats
}

// PreviewResult 预览阶段产物
type PreviewResult struct {
	AttemptID string         `json:"attemptId"`
	Rows      []CandidateRow `json:"preview"`
	Stats     PreviewStats   `json:"stats"`
}

// CommitResult 确认导入结果
type CommitResult struct {
	AttemptID    string `json:"attemptId"`
	TasksCreated int    `json:"tasksCreated"`
}

// ImportAttempt 导入尝试记录（预览与确认各记一条）
type ImportAttempt struct {
	ID           string    `json:"id"`
	EventID      string    `json:"eventId"`
	Phase        string    `json:"phase"`  // preview / commit
	Status       string    `json:"status"` // previewed / confirmed / rejected / failed
	Filename     string    `json:"filename"`
	FileSize     int64     `json:"fileSize"`
	FileHash     string    `json:"fileHash"`
	TotalRows    int       `json:"totalRows"`
	ValidRows    int       `json:"validRows"`
	WarningRows  int       `json:"warningRows"`
	ErrorRows    int       `json:"errorRows"`
	TasksCreated int       `json:"tasksCreated"`
	Message      string    `json:"message,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

const (
	AttemptPhasePreview = "preview"
	AttemptPhaseCommit  = "commit"

	AttemptStatusPreviewed = "previewed"
	AttemptStatusConfirmed = "confirmed"
	AttemptStatusRejected  = "rejected"
	AttemptStatusFailed    = "failed"
)
