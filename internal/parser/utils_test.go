package parser

import "testing"

func TestNormalizeColumnName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		" S. No. ":     "sno",
		"s.no":         "sno",
		"Task Name":    "taskname",
		"Assigned  To": "assignedto",
		"Dept_Name":    "deptname",
		"#":            "#",
		"\tRemarks\n":  "remarks",
	}
	for in, want := range cases {
		if got := NormalizeColumnName(in); got != want {
			t.Fatalf("NormalizeColumnName(%q) want=%q got=%q", in, want, got)
		}
	}
}

func TestParseSequenceNumber(t *testing.T) {
	t.Parallel()

	ok := map[string]int{
		"1":    1,
		" 12 ": 12,
		"3.0":  3,
		"4.":   4,
		"-2":   -2,
	}
	for in, want := range ok {
		got, found := ParseSequenceNumber(in)
		if !found || got != want {
			t.Fatalf("ParseSequenceNumber(%q) want=%d got=%d found=%v", in, want, got, found)
		}
	}

	for _, in := range []string{"", "   ", "abc", "1.5", "NaN", "1e40", "S1"} {
		if got, found := ParseSequenceNumber(in); found {
			t.Fatalf("ParseSequenceNumber(%q) expected absent, got %d", in, got)
		}
	}
}
