package importer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"boqdesk/internal/metrics"
	"boqdesk/internal/model"
	"boqdesk/internal/parser"
	"boqdesk/internal/reference"
)

// TaskStore 任务存储：单次调用全部成功或全部失败
type TaskStore interface {
	CreateTasks(ctx context.Context, eventID string, tasks []model.NewTask) (int, error)
}

// EventLookup 活动查询
type EventLookup interface {
	GetEvent(ctx context.Context, id string) (*model.Event, error)
}

// AttemptLog 导入尝试日志（写入失败只记录日志）
type AttemptLog interface {
	RecordAttempt(ctx context.Context, attempt model.ImportAttempt) error
}

// AssignmentTarget 分派建议
type AssignmentTarget = model.AssignmentTarget

// AssignmentNotifier 分派协作方，尽力而为
type AssignmentNotifier interface {
	SuggestAssignment(ctx context.Context, taskID string, target AssignmentTarget) error
}

// Options 导入选项
type Options struct {
	MaxRows                  int  // 单次导入最大行数，0 表示不限
	ParallelThreshold        int  // 超过该行数时并行校验
	Workers                  int  // 并行校验的 goroutine 上限
	AssignDepartmentFallback bool // 未匹配到用户时是否按部门建议分派
}

// DefaultOptions 默认导入选项
func DefaultOptions() Options {
	return Options{
		MaxRows:                  5000,
		ParallelThreshold:        500,
		Workers:                  4,
		AssignDepartmentFallback: true,
	}
}

// Dependencies 协调器依赖的外部协作方
type Dependencies struct {
	References reference.Provider
	Events     EventLookup
	Tasks      TaskStore
	Attempts   AttemptLog         // 可选
	Notifier   AssignmentNotifier // 可选
}

// Coordinator 导入协调器：预览（只读）与确认（全有或全无）两阶段
type Coordinator struct {
	deps  Dependencies
	opts  Options
	log   logrus.FieldLogger
	locks *keyedMutex
}

// NewCoordinator 创建导入协调器
func NewCoordinator(deps Dependencies, opts Options, log logrus.FieldLogger) *Coordinator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Coordinator{
		deps:  deps,
		opts:  opts,
		log:   log,
		locks: newKeyedMutex(),
	}
}

// PreviewInput 预览请求
type PreviewInput struct {
	EventID  string
	Filename string
	Data     []byte
}

// Preview 解析上传文件并逐行校验，不写入任何任务
func (c *Coordinator) Preview(ctx context.Context, in PreviewInput) (*model.PreviewResult, error) {
	if err := c.ensureEvent(ctx, in.EventID); err != nil {
		return nil, err
	}

	attempt := model.ImportAttempt{
		ID:       uuid.NewString(),
		EventID:  in.EventID,
		Phase:    model.AttemptPhasePreview,
		Filename: in.Filename,
		FileSize: int64(len(in.Data)),
		FileHash: hashBytes(in.Data),
	}
	log := c.log.WithFields(logrus.Fields{
		"event_id":   in.EventID,
		"attempt_id": attempt.ID,
		"file":       in.Filename,
	})

	table, err := parser.Parse(in.Filename, in.Data)
	if err != nil {
		metrics.ObservePreview(metrics.ResultFileInvalid, nil)
		log.WithError(err).Info("import file rejected")
		return nil, err
	}
	if c.opts.MaxRows > 0 && len(table.Rows) > c.opts.MaxRows {
		metrics.ObservePreview(metrics.ResultFileInvalid, nil)
		return nil, &FileFormatError{
			Message: parser.ValidationFailedMessage,
			Errors:  []string{fmt.Sprintf("File has %d data rows; the limit is %d", len(table.Rows), c.opts.MaxRows)},
		}
	}

	snap, err := reference.Load(ctx, c.deps.References)
	if err != nil {
		metrics.ObservePreview(metrics.ResultError, nil)
		return nil, err
	}

	rows := make([]model.CandidateRow, len(table.Rows))
	for i, raw := range table.Rows {
		rows[i] = Normalize(raw)
	}
	if err := evaluate(ctx, rows, snap, c.opts); err != nil {
		metrics.ObservePreview(metrics.ResultError, nil)
		return nil, err
	}

	stats := model.ComputeStats(rows)
	attempt.Status = model.AttemptStatusPreviewed
	setAttemptStats(&attempt, stats)
	c.recordAttempt(ctx, log, attempt)

	metrics.ObservePreview(metrics.ResultOK, rows)
	log.WithFields(logrus.Fields{
		"rows":     stats.Total,
		"valid":    stats.Valid,
		"warnings": stats.Warnings,
		"errors":   stats.Errors,
	}).Info("import preview built")

	return &model.PreviewResult{
		AttemptID: attempt.ID,
		Rows:      rows,
		Stats:     stats,
	}, nil
}

// CommitInput 确认导入请求；Rows 来自客户端，视为不可信输入
type CommitInput struct {
	EventID   string
	AttemptID string // 可选，回显预览的 attemptId
	Rows      []model.CandidateRow
}

// Commit 以当前引用数据重新解析并校验所有行；全部通过才一次性写入
func (c *Coordinator) Commit(ctx context.Context, in CommitInput) (*model.CommitResult, error) {
	if err := c.ensureEvent(ctx, in.EventID); err != nil {
		return nil, err
	}

	attempt := model.ImportAttempt{
		ID:      uuid.NewString(),
		EventID: in.EventID,
		Phase:   model.AttemptPhaseCommit,
	}
	log := c.log.WithFields(logrus.Fields{
		"event_id":        in.EventID,
		"attempt_id":      attempt.ID,
		"preview_attempt": in.AttemptID,
		"rows":            len(in.Rows),
	})

	if len(in.Rows) == 0 {
		metrics.ObserveCommit(metrics.ResultRejected)
		return nil, &CommitRejectedError{Message: "No rows submitted"}
	}
	if c.opts.MaxRows > 0 && len(in.Rows) > c.opts.MaxRows {
		metrics.ObserveCommit(metrics.ResultRejected)
		return nil, &CommitRejectedError{Message: fmt.Sprintf("Too many rows submitted; the limit is %d", c.opts.MaxRows)}
	}

	unlock := c.locks.Lock(in.EventID)
	defer unlock()

	snap, err := reference.Load(ctx, c.deps.References)
	if err != nil {
		metrics.ObserveCommit(metrics.ResultError)
		return nil, err
	}

	rows := make([]model.CandidateRow, len(in.Rows))
	for i := range in.Rows {
		rows[i] = Renormalize(in.Rows[i])
	}
	if err := evaluate(ctx, rows, snap, c.opts); err != nil {
		metrics.ObserveCommit(metrics.ResultError)
		return nil, err
	}

	stats := model.ComputeStats(rows)
	setAttemptStats(&attempt, stats)

	if rejected := rejectedRows(rows); len(rejected) > 0 {
		attempt.Status = model.AttemptStatusRejected
		attempt.Message = fmt.Sprintf("%d rows failed validation", len(rejected))
		c.recordAttempt(ctx, log, attempt)
		metrics.ObserveCommit(metrics.ResultRejected)
		log.WithField("rejected", len(rejected)).Info("import commit rejected")
		return nil, &CommitRejectedError{Message: "Import rejected: some rows failed validation", Rows: rejected}
	}

	tasks := make([]model.NewTask, len(rows))
	for i := range rows {
		tasks[i] = model.NewTask{
			ID:             uuid.NewString(),
			SNo:            rows[i].SequenceNumber,
			TaskName:       rows[i].TaskName,
			Description:    rows[i].Description,
			DepartmentName: rows[i].DepartmentName,
			Remark:         rows[i].Remark,
			Position:       i + 1,
		}
	}

	created, err := c.deps.Tasks.CreateTasks(ctx, in.EventID, tasks)
	if err != nil {
		attempt.Status = model.AttemptStatusFailed
		attempt.Message = err.Error()
		c.recordAttempt(ctx, log, attempt)
		metrics.ObserveCommit(metrics.ResultError)
		log.WithError(err).Error("import commit failed")
		return nil, &PersistenceError{Err: err}
	}

	c.suggestAssignments(ctx, log, rows, tasks)

	attempt.Status = model.AttemptStatusConfirmed
	attempt.TasksCreated = created
	c.recordAttempt(ctx, log, attempt)
	metrics.ObserveCommit(metrics.ResultOK)
	log.WithField("tasks_created", created).Info("import committed")

	return &model.CommitResult{AttemptID: attempt.ID, TasksCreated: created}, nil
}

// suggestAssignments 将分派建议交给协作方；失败不回滚任务
func (c *Coordinator) suggestAssignments(ctx context.Context, log logrus.FieldLogger, rows []model.CandidateRow, tasks []model.NewTask) {
	if c.deps.Notifier == nil {
		return
	}
	for i := range rows {
		target, ok := c.assignmentHint(&rows[i])
		if !ok {
			continue
		}
		if err := c.deps.Notifier.SuggestAssignment(ctx, tasks[i].ID, target); err != nil {
			log.WithError(err).WithField("task_id", tasks[i].ID).Warn("assignment suggestion failed")
		}
	}
}

func (c *Coordinator) assignmentHint(row *model.CandidateRow) (AssignmentTarget, bool) {
	if row.ResolvedUserID != nil {
		return AssignmentTarget{UserID: row.ResolvedUserID}, true
	}
	if c.opts.AssignDepartmentFallback && row.ResolvedDepartmentID != nil {
		return AssignmentTarget{DepartmentID: row.ResolvedDepartmentID}, true
	}
	return AssignmentTarget{}, false
}

func (c *Coordinator) ensureEvent(ctx context.Context, eventID string) error {
	if eventID == "" {
		return ErrEventNotFound
	}
	if _, err := c.deps.Events.GetEvent(ctx, eventID); err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return ErrEventNotFound
		}
		return fmt.Errorf("failed to load event: %w", err)
	}
	return nil
}

// recordAttempt 记录导入尝试；请求取消后仍写入，保证已提交的导入有据可查
func (c *Coordinator) recordAttempt(ctx context.Context, log logrus.FieldLogger, attempt model.ImportAttempt) {
	if c.deps.Attempts == nil {
		return
	}
	if err := c.deps.Attempts.RecordAttempt(context.WithoutCancel(ctx), attempt); err != nil {
		log.WithError(err).Warn("failed to record import attempt")
	}
}

func rejectedRows(rows []model.CandidateRow) []RejectedRow {
	var out []RejectedRow
	for i := range rows {
		if len(rows[i].Errors) == 0 {
			continue
		}
		out = append(out, RejectedRow{
			Row:      i + 1,
			Line:     rows[i].Line,
			SNo:      rows[i].SequenceNumber,
			TaskName: rows[i].TaskName,
			Errors:   rows[i].Errors,
		})
	}
	return out
}

func setAttemptStats(a *model.ImportAttempt, s model.PreviewStats) {
	a.TotalRows = s.Total
	a.ValidRows = s.Valid
	a.WarningRows = s.Warnings
	a.ErrorRows = s.Errors
}

func hashBytes(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
