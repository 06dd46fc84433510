package parser

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// AcceptedExtensions 允许上传的扩展名
var AcceptedExtensions = []string{".csv", ".xlsx", ".xls"}

// Parse 将上传文件解析为表格
// 文件级问题统一返回 *FileFormatError，不产生部分结果
func Parse(filename string, data []byte) (*Table, error) {
	format, err := DetectFormat(filename, data)
	if err != nil {
		return nil, err
	}

	var (
		grid      [][]string
		lines     []int
		sheetName string
	)
	switch format {
	case FormatCSV:
		grid, lines, err = readCSV(data)
	case FormatXLSX:
		grid, sheetName, err = readXLSX(data)
	case FormatXLS:
		grid, sheetName, err = readXLS(data)
	}
	if err != nil {
		return nil, err
	}

	headerIdx, rec, err := locateHeader(grid)
	if err != nil {
		return nil, err
	}

	table := &Table{
		Format:     format,
		SheetName:  sheetName,
		HeaderLine: sourceLine(lines, headerIdx),
		Columns:    rec.Columns,
		Rows:       make([]RawRow, 0, len(grid)-headerIdx-1),
	}

	for i := headerIdx + 1; i < len(grid); i++ {
		cells := grid[i]
		if isBlankRow(cells) {
			continue
		}
		row := RawRow{Line: sourceLine(lines, i), Cells: make(map[Field]string, len(rec.Columns))}
		for f, col := range rec.Columns {
			if col < len(cells) {
				row.Cells[f] = cells[col]
			} else {
				row.Cells[f] = ""
			}
		}
		table.Rows = append(table.Rows, row)
	}

	if len(table.Rows) == 0 {
		return nil, formatError("File contains no data rows")
	}
	return table, nil
}

// sourceLine 第 i 条记录的源文件行号；工作簿中记录与行一一对应
func sourceLine(lines []int, i int) int {
	if i < len(lines) {
		return lines[i]
	}
	return i + 1
}

// DetectFormat 根据扩展名确定格式，并用内容嗅探复核
func DetectFormat(filename string, data []byte) (Format, error) {
	ext := strings.ToLower(filepath.Ext(filename))

	var format Format
	switch ext {
	case ".csv":
		format = FormatCSV
	case ".xlsx":
		format = FormatXLSX
	case ".xls":
		format = FormatXLS
	default:
		return "", formatError(fmt.Sprintf("Unsupported file type %q: expected one of %s", ext, strings.Join(AcceptedExtensions, ", ")))
	}

	if len(data) == 0 {
		return "", formatError("File is empty")
	}

	mt := mimetype.Detect(data)
	switch format {
	case FormatCSV:
		if !inTree(mt, "text/plain") {
			return "", formatError(fmt.Sprintf("File content (%s) is not CSV text", mt.String()))
		}
	case FormatXLSX:
		if !inTree(mt, "application/zip") {
			return "", formatError(fmt.Sprintf("File content (%s) is not an .xlsx workbook", mt.String()))
		}
	case FormatXLS:
		if !inTree(mt, "application/x-ole-storage") {
			return "", formatError(fmt.Sprintf("File content (%s) is not an .xls workbook", mt.String()))
		}
	}
	return format, nil
}

// inTree mimetype 检测结果或其任一父类型等于 expected
func inTree(mt *mimetype.MIME, expected string) bool {
	for m := mt; m != nil; m = m.Parent() {
		if m.Is(expected) {
			return true
		}
	}
	return false
}
