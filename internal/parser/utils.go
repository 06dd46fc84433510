package parser

import (
	"math"
	"strconv"
	"strings"
	"unicode"
)

// NormalizeColumnName 规范化列名：小写，去除空白与标点
// "S. No." / "s.no" / "SNo" 都得到 "sno"
func NormalizeColumnName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '#':
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ParseSequenceNumber 将序号单元格转换为整数
// 支持 "3"、"3.0"（Excel 数值格式）、"3." 等写法；非整数或空值返回 false
func ParseSequenceNumber(cell string) (int, bool) {
	s := strings.TrimSpace(cell)
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return 0, false
	}
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	if f != math.Trunc(f) || f > math.MaxInt32 || f < math.MinInt32 {
		return 0, false
	}
	return int(f), true
}

// isBlankRow 判断整行是否全部为空
func isBlankRow(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
