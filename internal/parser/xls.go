package parser

import (
	"bytes"
	"fmt"

	"github.com/extrame/xls"
)

// readXLS 读取旧版 .xls 工作簿第一个 Sheet
func readXLS(data []byte) (grid [][]string, sheetName string, err error) {
	// xls 库遇到损坏文件会 panic
	defer func() {
		if r := recover(); r != nil {
			grid, sheetName = nil, ""
			err = formatError(fmt.Sprintf("Failed to read workbook: %v", r))
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, "", formatError(fmt.Sprintf("Failed to open workbook: %v", err))
	}
	if wb.NumSheets() == 0 {
		return nil, "", formatError("Workbook has no sheets")
	}

	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, "", formatError("Workbook has no sheets")
	}

	for i := 0; i <= int(sheet.MaxRow); i++ {
		row := sheet.Row(i)
		if row == nil {
			grid = append(grid, nil)
			continue
		}
		cells := make([]string, row.LastCol())
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			cells[j] = row.Col(j)
		}
		grid = append(grid, cells)
	}
	return grid, sheet.Name, nil
}
