package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// readCSV 读取 CSV，允许各行列数不一致；引号未闭合视为整文件错误
// lines 为每条记录在源文件中的起始行号
func readCSV(data []byte) (grid [][]string, lines []int, err error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, nil, formatError("File is not valid UTF-8 text")
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1

	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, nil, formatError(fmt.Sprintf("Line %d: %v", pe.Line, pe.Err))
			}
			return nil, nil, formatError(err.Error())
		}
		line, _ := r.FieldPos(0)
		grid = append(grid, record)
		lines = append(lines, line)
	}
	return grid, lines, nil
}
