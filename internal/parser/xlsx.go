package parser

import (
	"bytes"
	"fmt"

	"github.com/xuri/excelize/v2"
)

// readXLSX 读取工作簿第一个 Sheet
func readXLSX(data []byte) ([][]string, string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, "", formatError(fmt.Sprintf("Failed to open workbook: %v", err))
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, "", formatError("Workbook has no sheets")
	}

	sheet := sheets[0]
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, "", formatError(fmt.Sprintf("Failed to read sheet %q: %v", sheet, err))
	}
	return rows, sheet, nil
}
