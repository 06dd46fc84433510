package parser

import "strings"

// Format 上传文件格式
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
)

// Field BOQ 表格中可识别的列
type Field string

const (
	FieldSequenceNumber Field = "sNo"
	FieldTaskName       Field = "taskName"
	FieldDescription    Field = "description"
	FieldDepartment     Field = "departmentName"
	FieldRemark         Field = "remark"
	FieldAssignee       Field = "userName"
)

// RequiredFields 缺失即整文件失败的列
var RequiredFields = []Field{FieldTaskName, FieldDepartment}

// RawRow 一行原始单元格，未做任何类型转换
//
// Cells 中缺少某个 Field 表示文件没有这一列；存在但为空字符串表示单元格为空。
type RawRow struct {
	// 源文件中的行号（从 1 开始，含表头）
	Line  int
	Cells map[Field]string
}

// Cell 读取单元格值与列是否存在
func (r RawRow) Cell(f Field) (string, bool) {
	v, ok := r.Cells[f]
	return v, ok
}

// Table 解析后的表格
type Table struct {
	Format     Format        `json:"format"`
	SheetName  string        `json:"sheetName,omitempty"`
	HeaderLine int           `json:"headerLine"`
	Columns    map[Field]int `json:"columns"`
	Rows       []RawRow      `json:"-"`
}

// FileFormatError 整个文件无法处理（无法读取、格式不符、缺少必需列、无数据行）
//
// 不会产生任何行级结果。
type FileFormatError struct {
	Message string
	Errors  []string
}

func (e *FileFormatError) Error() string {
	if len(e.Errors) == 0 {
		return e.Message
	}
	return e.Message + ": " + strings.Join(e.Errors, "; ")
}

// ValidationFailedMessage 文件级错误对外统一的提示语
const ValidationFailedMessage = "CSV validation failed"

func formatError(errs ...string) *FileFormatError {
	return &FileFormatError{Message: ValidationFailedMessage, Errors: errs}
}
