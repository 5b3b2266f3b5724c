package token

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"rvasm/internal/errs"
)

// Vocabulary supplies the reserved words the lexer classifies.
type Vocabulary interface {
	IsOperator(name string) bool
	IsRegisterName(name string) bool
	IsRegisterNumber(name string) bool
	IsDirective(name string) bool
}

type Lexer struct {
	vocab Vocabulary
}

func NewLexer(vocab Vocabulary) *Lexer {
	return &Lexer{vocab: vocab}
}

type scanner struct {
	src  string
	pos  int
	col  int
	line SourceLine
	out  []Token
	errs []*errs.Message
}

func (sc *scanner) peek() (rune, int) {
	if sc.pos >= len(sc.src) {
		return 0, 0
	}
	return utf8.DecodeRuneInString(sc.src[sc.pos:])
}

func (sc *scanner) read() rune {
	r, n := sc.peek()
	sc.pos += n
	sc.col++
	return r
}

func (sc *scanner) emit(kind Kind, start, col int) *Token {
	sc.out = append(sc.out, Token{
		Kind:   kind,
		Text:   sc.src[start:sc.pos],
		File:   sc.line.File,
		Line:   sc.line.Line,
		Col:    col,
		Offset: start,
	})
	return &sc.out[len(sc.out)-1]
}

func (sc *scanner) fail(col int, format string, args ...any) {
	sc.errs = append(sc.errs, &errs.Message{
		File:   sc.line.File,
		Line:   sc.line.Line,
		Column: col,
		Text:   fmt.Sprintf(format, args...),
	})
}

// valueBefore reports whether the token ending right at the current start
// position is a value, which makes a following sign a binary operator.
func (sc *scanner) valueBefore(start int) bool {
	if len(sc.out) == 0 {
		return false
	}
	last := sc.out[len(sc.out)-1]
	if last.End() != start {
		return false
	}
	switch last.Kind {
	case Identifier, RegisterName, RegisterNumber, RightParen, RealNumber, QuotedString:
		return true
	}
	return last.Kind.IsInteger()
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_' || r == '.' || r == '$'
}

func isIdentPart(r rune) bool {
	return isIdentStart(r) || unicode.IsDigit(r)
}

// Tokenize splits one source line into tokens. Lexical problems are
// returned as messages and leave an Error token in the list.
func (lx *Lexer) Tokenize(line SourceLine) (List, []*errs.Message) {
	return lx.tokenizeText(line.Text, line)
}

func (lx *Lexer) tokenizeText(text string, line SourceLine) (List, []*errs.Message) {
	sc := &scanner{src: text, line: line}
	for sc.pos < len(sc.src) {
		start, col := sc.pos, sc.col+1
		r := sc.read()

		switch {
		case r == ' ' || r == '\t' || r == '\r' || r == ',':
			continue

		case r == '#':
			sc.pos = len(sc.src)
			sc.emit(Comment, start, col)

		case r == '"':
			lx.quoted(sc, start, col)

		case r == '\'':
			lx.char(sc, start, col)

		case r == '%':
			for r2, _ := sc.peek(); isIdentPart(r2); r2, _ = sc.peek() {
				sc.read()
			}
			if sc.pos == start+1 {
				sc.emit(Error, start, col)
				sc.fail(col, "'%%' must be followed by a parameter name")
				continue
			}
			sc.emit(MacroParameter, start, col)

		case unicode.IsDigit(r):
			lx.number(sc, start, col)

		case (r == '-' || r == '+') && !sc.valueBefore(start):
			if r2, _ := sc.peek(); unicode.IsDigit(r2) {
				sc.read()
				lx.number(sc, start, col)
				continue
			}
			lx.sign(sc, r, start, col)

		case r == '-' || r == '+':
			lx.sign(sc, r, start, col)

		case isIdentStart(r):
			for r2, _ := sc.peek(); isIdentPart(r2); r2, _ = sc.peek() {
				sc.read()
			}
			word := sc.src[start:sc.pos]
			sc.emit(lx.classifyWord(word), start, col)

		case r == '(':
			sc.emit(LeftParen, start, col)
		case r == ')':
			sc.emit(RightParen, start, col)
		case r == ':':
			sc.emit(Colon, start, col)

		default:
			sc.emit(Error, start, col)
			sc.fail(col, "unrecognized character '%c'", r)
		}
	}
	return List{Tokens: sc.out, Text: text, Line: line}, sc.errs
}

func (lx *Lexer) sign(sc *scanner, r rune, start, col int) {
	if r == '-' {
		sc.emit(Minus, start, col)
	} else {
		sc.emit(Plus, start, col)
	}
}

func (lx *Lexer) classifyWord(word string) Kind {
	lower := strings.ToLower(word)
	switch {
	case word[0] == '.' && lx.vocab.IsDirective(lower):
		return Directive
	case lx.vocab.IsRegisterName(word):
		return RegisterName
	case lx.vocab.IsRegisterNumber(word):
		return RegisterNumber
	case lx.vocab.IsOperator(lower):
		return Operator
	}
	return Identifier
}

func (lx *Lexer) number(sc *scanner, start, col int) {
	for {
		r, _ := sc.peek()
		if unicode.IsDigit(r) || unicode.IsLetter(r) || r == '.' || r == '_' {
			sc.read()
			continue
		}
		// exponent sign
		if (r == '-' || r == '+') && sc.pos > start {
			prev := sc.src[sc.pos-1]
			lit := sc.src[start:sc.pos]
			if (prev == 'e' || prev == 'E') && !strings.Contains(lit, "0x") && !strings.Contains(lit, "0X") {
				sc.read()
				continue
			}
		}
		break
	}
	lit := sc.src[start:sc.pos]
	if looksReal(lit) {
		v, err := ParseReal(lit)
		if err != nil {
			sc.emit(Error, start, col)
			sc.fail(col, "invalid number %q", lit)
			return
		}
		sc.emit(RealNumber, start, col).Real = v
		return
	}
	v, err := ParseInteger(lit)
	if err != nil {
		sc.emit(Error, start, col)
		sc.fail(col, "invalid number %q", lit)
		return
	}
	t := sc.emit(Classify(v), start, col)
	t.Value = v
}

func (lx *Lexer) quoted(sc *scanner, start, col int) {
	for sc.pos < len(sc.src) {
		r := sc.read()
		if r == '\\' && sc.pos < len(sc.src) {
			sc.read()
			continue
		}
		if r == '"' {
			sc.emit(QuotedString, start, col)
			return
		}
	}
	sc.emit(Error, start, col)
	sc.fail(col, "unterminated string")
}

func (lx *Lexer) char(sc *scanner, start, col int) {
	for sc.pos < len(sc.src) {
		r := sc.read()
		if r == '\\' && sc.pos < len(sc.src) {
			sc.read()
			continue
		}
		if r == '\'' {
			body := sc.src[start+1 : sc.pos-1]
			v, err := ParseChar(body)
			if err != nil {
				sc.emit(Error, start, col)
				sc.fail(col, "%v", err)
				return
			}
			t := sc.emit(Classify(v), start, col)
			t.Value = v
			return
		}
	}
	sc.emit(Error, start, col)
	sc.fail(col, "unterminated character literal")
}
