package importer

import (
	"strings"

	"boqdesk/internal/model"
	"boqdesk/internal/parser"
)

// Normalize 将原始行转换为候选行
// 不会失败：格式问题留给校验阶段以行级错误体现
func Normalize(raw parser.RawRow) model.CandidateRow {
	row := model.CandidateRow{
		Line:           raw.Line,
		TaskName:       cell(raw, parser.FieldTaskName),
		Description:    cell(raw, parser.FieldDescription),
		DepartmentName: cell(raw, parser.FieldDepartment),
		Remark:         optionalCell(raw, parser.FieldRemark),
		AssigneeName:   optionalCell(raw, parser.FieldAssignee),
	}
	if v, ok := raw.Cell(parser.FieldSequenceNumber); ok {
		if n, ok := parser.ParseSequenceNumber(v); ok {
			row.SequenceNumber = &n
		}
	}
	row.ResetOutcome()
	return row
}

// Renormalize 对客户端回传的行重新规范化，丢弃其中的解析与校验结果
func Renormalize(submitted model.CandidateRow) model.CandidateRow {
	row := model.CandidateRow{
		Line:           submitted.Line,
		TaskName:       strings.TrimSpace(submitted.TaskName),
		Description:    strings.TrimSpace(submitted.Description),
		DepartmentName: strings.TrimSpace(submitted.DepartmentName),
		Remark:         trimOptional(submitted.Remark),
		AssigneeName:   trimOptional(submitted.AssigneeName),
	}
	if submitted.SequenceNumber != nil {
		n := *submitted.SequenceNumber
		row.SequenceNumber = &n
	}
	row.ResetOutcome()
	return row
}

func cell(raw parser.RawRow, f parser.Field) string {
	v, _ := raw.Cell(f)
	return strings.TrimSpace(v)
}

func optionalCell(raw parser.RawRow, f parser.Field) *string {
	v, ok := raw.Cell(f)
	if !ok {
		return nil
	}
	return trimOptional(&v)
}

func trimOptional(v *string) *string {
	if v == nil {
		return nil
	}
	s := strings.TrimSpace(*v)
	if s == "" {
		return nil
	}
	return &s
}
