package errs

import (
	"strings"
	"testing"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

func TestMessageString(t *testing.T) {
	m := &Message{File: "a.s", Line: 3, Column: 5, Text: "boom"}
	check(t, m.String(), "Error in a.s line 3 column 5: boom")

	m = &Message{File: "a.s", Line: 7, Text: "odd", Warning: true, Macro: "in macro inc expanded at line 9"}
	check(t, m.String(), "Warning in a.s line 7 (in macro inc expanded at line 9): odd")
}

func TestErrorLimit(t *testing.T) {
	l := NewList(2)
	l.Errorf("a.s", 1, 0, "one")
	l.Errorf("a.s", 2, 0, "two")
	check(t, l.ErrorLimitExceeded(), false)
	l.Errorf("a.s", 3, 0, "three")
	check(t, l.ErrorLimitExceeded(), true)
	l.Errorf("a.s", 4, 0, "four")
	l.Warnf("a.s", 5, 0, "late warning")

	msgs := l.Messages()
	check(t, len(msgs), 3)
	check(t, msgs[2].Text, "Error Limit of 2 exceeded.")
	check(t, l.WarningCount(), 0)
}

func TestWarningsDoNotCountTowardsLimit(t *testing.T) {
	l := NewList(1)
	for i := 0; i < 5; i++ {
		l.Warnf("a.s", i+1, 0, "w")
	}
	check(t, l.WarningCount(), 5)
	check(t, l.ErrorsOccurred(), false)
	check(t, l.WarningsOccurred(), true)
	l.Errorf("a.s", 9, 0, "e")
	check(t, l.ErrorLimitExceeded(), false)
	check(t, l.ErrorCount(), 1)
}

func TestDefaultLimit(t *testing.T) {
	check(t, NewList(0).Limit(), DefaultLimit)
	check(t, NewList(-3).Limit(), DefaultLimit)
}

func TestReportOrder(t *testing.T) {
	l := NewList(10)
	l.Errorf("a.s", 2, 0, "bad operand")
	l.Warnf("a.s", 1, 0, "truncated")

	check(t, l.ErrorReport(), "Error in a.s line 2: bad operand\n")
	check(t, l.WarningReport(), "Warning in a.s line 1: truncated\n")

	r := l.Report()
	if w, e := strings.Index(r, "truncated"), strings.Index(r, "bad operand"); w < 0 || e < 0 || w > e {
		t.Errorf("warnings should precede errors:\n%s", r)
	}
	if !strings.HasSuffix(r, "1 error(s), 1 warning(s)\n") {
		t.Errorf("missing summary line:\n%s", r)
	}
}

func TestMerge(t *testing.T) {
	a, b := NewList(10), NewList(10)
	a.Errorf("a.s", 1, 0, "x")
	b.Warnf("b.s", 1, 0, "y")
	b.Errorf("b.s", 2, 0, "z")
	a.Merge(b)
	check(t, a.ErrorCount(), 2)
	check(t, a.WarningCount(), 1)
	check(t, len(a.Messages()), 3)
}
