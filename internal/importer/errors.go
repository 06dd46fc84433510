package importer

import (
	"errors"
	"fmt"

	"boqdesk/internal/model"
	"boqdesk/internal/parser"
)

// FileFormatError 文件级错误，整请求失败
type FileFormatError = parser.FileFormatError

// ErrEventNotFound 目标活动不存在
var ErrEventNotFound = fmt.Errorf("event %w", model.ErrNotFound)

// RejectedRow 确认导入时仍未通过校验的行
// Row 从 1 开始，对应提交顺序；Line 为预览时的源文件行号（客户端未回传则为 0）
type RejectedRow struct {
	Row      int      `json:"row"`
	Line     int      `json:"line,omitempty"`
	SNo      *int     `json:"sNo"`
	TaskName string   `json:"taskName"`
	Errors   []string `json:"errors"`
}

// CommitRejectedError 重新校验后仍存在错误行，本次确认零写入
type CommitRejectedError struct {
	Message string
	Rows    []RejectedRow
}

func (e *CommitRejectedError) Error() string {
	return fmt.Sprintf("%s (%d rows)", e.Message, len(e.Rows))
}

// PersistenceError 写入任务存储失败，本次确认零写入，可整体重试
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string {
	return "failed to persist tasks: " + e.Err.Error()
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// IsFileFormatError 判断是否为文件级错误
func IsFileFormatError(err error) bool {
	var ffe *FileFormatError
	return errors.As(err, &ffe)
}
