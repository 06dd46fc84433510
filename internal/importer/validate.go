package importer

import (
	"fmt"

	"boqdesk/internal/model"
)

// 行级提示语，原样展示给最终用户
const (
	MsgTaskNameRequired   = "Task name is required."
	MsgDepartmentRequired = "Department is required."
	MsgMissingSequence    = "Missing sequence number."
)

func msgUnknownDepartment(name string) string {
	return fmt.Sprintf("Unknown department: %s", name)
}

func msgUnmatchedUser(name string) string {
	return fmt.Sprintf("Could not match user '%s' in department.", name)
}

func msgDuplicateSequence(n int) string {
	return fmt.Sprintf("Duplicate S.No %d in file", n)
}

// Validate 单行规则，按固定顺序全部执行，不短路
func Validate(row *model.CandidateRow) {
	if row.TaskName == "" {
		row.AddError(MsgTaskNameRequired)
	}
	if row.DepartmentName == "" {
		row.AddError(MsgDepartmentRequired)
	} else if row.ResolvedDepartmentID == nil {
		row.AddError(msgUnknownDepartment(row.DepartmentName))
	}
	if row.SequenceNumber == nil {
		row.AddWarning(MsgMissingSequence)
	}
	if row.AssigneeName != nil && row.ResolvedUserID == nil {
		row.AddWarning(msgUnmatchedUser(*row.AssigneeName))
	}
}

// markDuplicateSequences 批次规则：重复序号的每一行都追加警告
// 依赖 rows 保持源文件顺序
func markDuplicateSequences(rows []model.CandidateRow) {
	counts := make(map[int]int)
	for i := range rows {
		if rows[i].SequenceNumber != nil {
			counts[*rows[i].SequenceNumber]++
		}
	}
	for i := range rows {
		if n := rows[i].SequenceNumber; n != nil && counts[*n] > 1 {
			rows[i].AddWarning(msgDuplicateSequence(*n))
		}
	}
}
