package token

import (
	"strconv"
	"strings"
	"testing"

	"rvasm/internal/errs"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

type testVocab struct{}

func (testVocab) IsOperator(name string) bool {
	switch name {
	case "add", "addi", "li", "lw", "nop", "b":
		return true
	}
	return false
}

func (testVocab) IsRegisterName(name string) bool {
	switch name {
	case "zero", "t0", "t1", "t2", "sp":
		return true
	}
	return false
}

func (testVocab) IsRegisterNumber(name string) bool {
	if !strings.HasPrefix(name, "x") {
		return false
	}
	n, err := strconv.Atoi(name[1:])
	return err == nil && n >= 0 && n < 32
}

func (testVocab) IsDirective(name string) bool {
	switch name {
	case ".word", ".eqv", ".text", ".data", ".macro", ".end_macro":
		return true
	}
	return false
}

func tokenize(t *testing.T, text string) List {
	t.Helper()
	toks, msgs := NewLexer(testVocab{}).Tokenize(SourceLine{Text: text, File: "t.s", Line: 1})
	for _, m := range msgs {
		t.Errorf("%q: unexpected message %s", text, m)
	}
	return toks
}

func checkKinds(t *testing.T, text string, want ...Kind) {
	t.Helper()
	got := tokenize(t, text).Kinds()
	if len(got) != len(want) {
		t.Errorf("%q: got kinds %v, want %v", text, got, want)
		return
	}
	for i := range got {
		if got[i] != want[i] {
			t.Errorf("%q: token %d is %v, want %v", text, i, got[i], want[i])
		}
	}
}

func TestLexerKinds(t *testing.T) {
	checkKinds(t, "loop: addi t0, t0, -1 # dec",
		Identifier, Colon, Operator, RegisterName, RegisterName, Integer12, Comment)
	checkKinds(t, "lw t1, -100(t2)",
		Operator, RegisterName, Integer12, LeftParen, RegisterName, RightParen)
	checkKinds(t, "add x5, x6, x7", Operator, RegisterNumber, RegisterNumber, RegisterNumber)
	checkKinds(t, ".word 1, 2", Directive, Integer5, Integer5)
	checkKinds(t, ".foo 1", Identifier, Integer5)
	checkKinds(t, "addi %reg, %reg, 1", Operator, MacroParameter, MacroParameter, Integer5)
	checkKinds(t, "inc(t0)", Identifier, LeftParen, RegisterName, RightParen)
	checkKinds(t, `.word "a\"b"`, Directive, QuotedString)
	checkKinds(t, "b: nop", Operator, Colon, Operator)
	checkKinds(t, "# only a comment", Comment)
	checkKinds(t, "")
}

func TestLexerSigns(t *testing.T) {
	checkKinds(t, "label-4", Identifier, Minus, Integer5)
	checkKinds(t, "label - 4", Identifier, Minus, Integer5)
	checkKinds(t, "li t0, +7", Operator, RegisterName, Integer5)
	checkKinds(t, ".word - Inf", Directive, Minus, Identifier)

	toks := tokenize(t, "li t0, -5")
	check(t, toks.Tokens[2].Value, int64(-5))
	check(t, toks.Tokens[2].Text, "-5")
}

func TestLexerIntegers(t *testing.T) {
	tests := []struct {
		text  string
		kind  Kind
		value int64
	}{
		{"0", Integer5, 0},
		{"31", Integer5, 31},
		{"32", Integer6, 32},
		{"64", Integer12, 64},
		{"-2048", Integer12, -2048},
		{"2048", Integer20, 2048},
		{"0xFFFFF", Integer20, 0xFFFFF},
		{"0x100000", Integer32, 0x100000},
		{"-2049", Integer32, -2049},
		{"0xFFFFFFFF", Integer32, 0xFFFFFFFF},
		{"0x100000000", Integer64, 0x100000000},
		{"0b101", Integer5, 5},
		{"0o17", Integer5, 15},
		{"'a'", Integer12, 97},
		{`'\n'`, Integer5, 10},
	}
	for _, tt := range tests {
		toks := tokenize(t, tt.text)
		if toks.Len() != 1 {
			t.Errorf("%q: got %d tokens", tt.text, toks.Len())
			continue
		}
		check(t, toks.Tokens[0].Kind, tt.kind)
		check(t, toks.Tokens[0].Value, tt.value)
	}
}

func TestLexerReals(t *testing.T) {
	toks := tokenize(t, "1.5 2e3 -0.25")
	check(t, toks.Len(), 3)
	for i, want := range []float64{1.5, 2000, -0.25} {
		check(t, toks.Tokens[i].Kind, RealNumber)
		check(t, toks.Tokens[i].Real, want)
	}
}

func TestLexerPositions(t *testing.T) {
	toks := tokenize(t, "  add t0, t1, t2")
	tok := toks.Tokens[0]
	check(t, tok.Col, 3)
	check(t, tok.Offset, 2)
	check(t, tok.End(), 5)
	check(t, tok.File, "t.s")
	check(t, tok.Line, 1)
	check(t, toks.Tokens[1].Col, 7)
}

func TestLexerErrors(t *testing.T) {
	lx := NewLexer(testVocab{})
	for _, text := range []string{`.word "open`, "add t0 @", "%", "'ab'", "12abc"} {
		toks, msgs := lx.Tokenize(SourceLine{Text: text, File: "t.s", Line: 4})
		if len(msgs) != 1 {
			t.Errorf("%q: got %d messages, want 1", text, len(msgs))
			continue
		}
		check(t, msgs[0].Line, 4)
		found := false
		for _, tok := range toks.Tokens {
			found = found || tok.Kind == Error
		}
		if !found {
			t.Errorf("%q: no error token in %v", text, toks.Kinds())
		}
	}
}

func TestListHelpers(t *testing.T) {
	toks := tokenize(t, "x: lw t1, 4(t2) # c")
	check(t, toks.WithoutComment().Len(), 8)
	check(t, toks.Slice(2, 4).Len(), 2)
	check(t, toks.WithoutComment().String(), "x: lw t1 4 (t2)")
	check(t, Kind(Integer12).String(), "INTEGER_12")
	check(t, Kind(999).String(), "?")
}

func TestParseInteger(t *testing.T) {
	tests := []struct {
		text string
		want int64
		ok   bool
	}{
		{"42", 42, true},
		{"-0x10", -16, true},
		{"0XfF", 255, true},
		{"0b1111", 15, true},
		{"017", 15, true},
		{"-010", -8, true},
		{"0o17", 15, true},
		{"0", 0, true},
		{"08", 0, false},
		{"0xFFFFFFFFFFFFFFFF", -1, true},
		{"-9223372036854775808", -9223372036854775808, true},
		{"9223372036854775808", 0, false},
		{"", 0, false},
		{"0x", 0, false},
		{"12z", 0, false},
	}
	for _, tt := range tests {
		got, err := ParseInteger(tt.text)
		if (err == nil) != tt.ok {
			t.Errorf("ParseInteger(%q) error = %v", tt.text, err)
			continue
		}
		if tt.ok {
			check(t, got, tt.want)
		}
	}
}

func TestUnescape(t *testing.T) {
	tests := []struct {
		in   string
		want string
		ok   bool
	}{
		{`plain`, "plain", true},
		{`a\nb\tc`, "a\nb\tc", true},
		{`\"q\'\\`, `"q'\`, true},
		{`\101\102`, "AB", true},
		{`end\0`, "end\x00", true},
		{`A!`, "A!", true},
		{`\u00`, `\u00`, false},
		{`x\qy`, `x\qy`, false},
		{`\u004Gz`, `\u004Gz`, false},
		{`\9`, `\9`, false},
	}
	for _, tt := range tests {
		got, err := Unescape(tt.in)
		if (err == nil) != tt.ok {
			t.Errorf("Unescape(%q) error = %v", tt.in, err)
		}
		check(t, got, tt.want)
	}
}

func tokenizeFile(texts ...string) ([]List, *errs.List) {
	lines := make([]SourceLine, len(texts))
	for i, s := range texts {
		lines[i] = SourceLine{Text: s, File: "eqv.s", Line: i + 1}
	}
	list := errs.NewList(0)
	return NewLexer(testVocab{}).TokenizeFile(lines, list), list
}

func TestEqvSubstitution(t *testing.T) {
	out, list := tokenizeFile(
		"li t0, LIMIT",
		".eqv LIMIT 10",
		"li t0, LIMIT # limit",
		"LIMIT: nop",
		"here: .eqv REG t1",
		"add REG, REG, t2",
	)
	check(t, list.ErrorCount(), 0)
	check(t, len(out), 6)

	// before the definition nothing changes
	check(t, out[0].Tokens[2].Kind, Identifier)

	check(t, out[2].Text, "li t0, 10 # limit")
	check(t, out[2].Tokens[2].Kind, Integer5)
	check(t, out[2].Tokens[2].Value, int64(10))
	check(t, out[2].Line.Line, 3)

	// a label definition keeps its name
	check(t, out[3].Tokens[0].Text, "LIMIT")

	check(t, out[5].Text, "add t1, t1, t2")
	check(t, out[5].Tokens[1].Kind, RegisterName)
}

func TestEqvErrors(t *testing.T) {
	tests := []struct {
		lines []string
		want  string
	}{
		{[]string{".eqv N"}, "too few operands"},
		{[]string{".eqv 5 6"}, "not a valid symbol"},
		{[]string{".eqv A A+1"}, "cannot substitute A for itself"},
		{[]string{".eqv N 4", ".eqv N 4"}, "duplicate .eqv definition of N"},
		{[]string{".eqv N 4", ".eqv N 5"}, "N already defined"},
	}
	for _, tt := range tests {
		_, list := tokenizeFile(tt.lines...)
		if list.ErrorCount() != 1 {
			t.Errorf("%q: got %d errors, want 1:\n%s", tt.lines, list.ErrorCount(), list.Report())
			continue
		}
		if msg := list.Messages()[0].Text; !strings.Contains(msg, tt.want) {
			t.Errorf("%q: message %q does not mention %q", tt.lines, msg, tt.want)
		}
	}
}
