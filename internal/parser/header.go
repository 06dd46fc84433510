package parser

import "fmt"

// 表头最多向下搜索的行数（允许表头上方存在标题行）
const headerSearchLimit = 10

// fieldAliases 各字段可接受的列名（规范化后）
var fieldAliases = map[Field][]string{
	FieldSequenceNumber: {"sno", "srno", "serialno", "serialnumber", "slno", "no", "#", "sequence"},
	FieldTaskName:       {"task", "taskname", "tasks", "item", "activity", "workitem"},
	FieldDescription:    {"description", "desc", "details", "taskdescription"},
	FieldDepartment:     {"department", "dept", "departmentname", "deptname"},
	FieldRemark:         {"remark", "remarks", "note", "notes", "comment", "comments"},
	FieldAssignee:       {"name", "user", "username", "assignee", "assignedto", "owner"},
}

// fieldOrder 识别时的优先顺序，也用于缺失列提示
var fieldOrder = []Field{
	FieldSequenceNumber,
	FieldTaskName,
	FieldDescription,
	FieldDepartment,
	FieldRemark,
	FieldAssignee,
}

// fieldLabels 对用户展示的列名
var fieldLabels = map[Field]string{
	FieldSequenceNumber: "S.No",
	FieldTaskName:       "Task",
	FieldDescription:    "Description",
	FieldDepartment:     "Department",
	FieldRemark:         "Remark",
	FieldAssignee:       "Name",
}

var aliasIndex = func() map[string]Field {
	idx := make(map[string]Field)
	for _, f := range fieldOrder {
		for _, a := range fieldAliases[f] {
			idx[a] = f
		}
	}
	return idx
}()

// HeaderRecognition 表头识别结果
type HeaderRecognition struct {
	Columns map[Field]int
	Missing []Field
}

// RecognizeHeader 识别单行表头；同一字段出现多列时取第一列
func RecognizeHeader(cells []string) HeaderRecognition {
	columns := make(map[Field]int)
	for i, cell := range cells {
		f, ok := aliasIndex[NormalizeColumnName(cell)]
		if !ok {
			continue
		}
		if _, seen := columns[f]; !seen {
			columns[f] = i
		}
	}

	var missing []Field
	for _, f := range RequiredFields {
		if _, ok := columns[f]; !ok {
			missing = append(missing, f)
		}
	}
	return HeaderRecognition{Columns: columns, Missing: missing}
}

// locateHeader 在前若干行中找到表头行，返回其下标
func locateHeader(rows [][]string) (int, HeaderRecognition, error) {
	best := -1
	var bestRec HeaderRecognition

	limit := len(rows)
	if limit > headerSearchLimit {
		limit = headerSearchLimit
	}
	for i := 0; i < limit; i++ {
		if isBlankRow(rows[i]) {
			continue
		}
		rec := RecognizeHeader(rows[i])
		if len(rec.Missing) == 0 {
			return i, rec, nil
		}
		if best < 0 || len(rec.Columns) > len(bestRec.Columns) {
			best, bestRec = i, rec
		}
	}

	if best < 0 {
		return 0, HeaderRecognition{}, formatError("file has no header row")
	}

	errs := make([]string, 0, len(bestRec.Missing))
	for _, f := range bestRec.Missing {
		errs = append(errs, fmt.Sprintf("Missing required column: %s", fieldLabels[f]))
	}
	return 0, HeaderRecognition{}, formatError(errs...)
}
