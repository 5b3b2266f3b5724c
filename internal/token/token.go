package token

import (
	"math"
	"strings"
)

type Kind int

const (
	Error Kind = iota
	Comment
	Directive
	Operator
	RegisterName
	RegisterNumber
	Identifier
	LeftParen
	RightParen
	Colon
	Plus
	Minus
	QuotedString
	Integer5
	Integer6
	Integer12
	Integer20
	Integer32
	Integer64
	RealNumber
	MacroParameter
)

var kindNames = map[Kind]string{
	Error:          "ERROR",
	Comment:        "COMMENT",
	Directive:      "DIRECTIVE",
	Operator:       "OPERATOR",
	RegisterName:   "REGISTER_NAME",
	RegisterNumber: "REGISTER_NUMBER",
	Identifier:     "IDENTIFIER",
	LeftParen:      "(",
	RightParen:     ")",
	Colon:          ":",
	Plus:           "+",
	Minus:          "-",
	QuotedString:   "QUOTED_STRING",
	Integer5:       "INTEGER_5",
	Integer6:       "INTEGER_6",
	Integer12:      "INTEGER_12",
	Integer20:      "INTEGER_20",
	Integer32:      "INTEGER_32",
	Integer64:      "INTEGER_64",
	RealNumber:     "REAL_NUMBER",
	MacroParameter: "MACRO_PARAMETER",
}

func (k Kind) String() string {
	if v, ok := kindNames[k]; ok {
		return v
	}
	return "?"
}

func (k Kind) IsInteger() bool {
	return k >= Integer5 && k <= Integer64
}

func (k Kind) IsRegister() bool {
	return k == RegisterName || k == RegisterNumber
}

// Classify returns the narrowest integer kind that holds v.
func Classify(v int64) Kind {
	switch {
	case v >= 0 && v <= 31:
		return Integer5
	case v >= 0 && v <= 63:
		return Integer6
	case v >= -2048 && v <= 2047:
		return Integer12
	case v >= 0 && v <= 0xFFFFF:
		return Integer20
	case v >= math.MinInt32 && v <= math.MaxUint32:
		return Integer32
	}
	return Integer64
}

// SourceLine is one line of flattened source with its origin.
type SourceLine struct {
	Text string
	File string
	Line int
}

type Token struct {
	Kind Kind
	Text string
	File string
	Line int
	// Col is the 1-based rune column, Offset the byte offset into the
	// tokenized text.
	Col    int
	Offset int
	// Value holds the parsed value of integer tokens.
	Value int64
	// Real holds the parsed value of RealNumber tokens.
	Real float64
}

func (t Token) End() int { return t.Offset + len(t.Text) }

// List is the token sequence of one source line.
type List struct {
	Tokens []Token
	// Text is the line text that was tokenized, after .eqv substitution.
	Text string
	Line SourceLine
}

func (l List) Len() int { return len(l.Tokens) }

func (l List) Empty() bool { return len(l.Tokens) == 0 }

// Slice returns a list sharing provenance but holding tokens[from:to].
func (l List) Slice(from, to int) List {
	return List{Tokens: l.Tokens[from:to], Text: l.Text, Line: l.Line}
}

// WithoutComment drops a trailing comment token.
func (l List) WithoutComment() List {
	if n := len(l.Tokens); n > 0 && l.Tokens[n-1].Kind == Comment {
		return l.Slice(0, n-1)
	}
	return l
}

func (l List) String() string {
	var sb strings.Builder
	for i, t := range l.Tokens {
		if i > 0 && t.Kind != RightParen && t.Kind != Colon && l.Tokens[i-1].Kind != LeftParen {
			sb.WriteByte(' ')
		}
		sb.WriteString(t.Text)
	}
	return sb.String()
}

// Kinds returns the kind of every token, in order.
func (l List) Kinds() []Kind {
	out := make([]Kind, len(l.Tokens))
	for i, t := range l.Tokens {
		out[i] = t.Kind
	}
	return out
}
