// Package macro keeps the .macro definitions of one source file and
// produces the substituted body lines of a macro call.
package macro

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"rvasm/internal/token"
)

var (
	ErrNested       = errors.New("nested macro definitions are not allowed")
	ErrNoBegin      = errors.New(".end_macro without a matching .macro")
	ErrTrailing     = errors.New("invalid text after .end_macro")
	ErrUnterminated = errors.New("macro definition has no .end_macro")
	ErrLoop         = errors.New("detected a macro expansion loop (recursive reference)")
)

// Macro is one captured .macro body. The body is not stored: lines
// (From, To) of the owning file are re-read at every expansion.
type Macro struct {
	Name   string
	Args   []string
	Labels []string
	// From and To index the .macro and .end_macro lines in the owning
	// file's line table; OrigFrom and OrigTo are their source line numbers.
	From, To         int
	OrigFrom, OrigTo int
	File             string
}

func (m *Macro) hasLabel(name string) bool {
	i := sort.SearchStrings(m.Labels, name)
	return i < len(m.Labels) && m.Labels[i] == name
}

func (m *Macro) argIndex(param string) int {
	for i, a := range m.Args {
		if a == param {
			return i
		}
	}
	return -1
}

// Pool holds every macro of one file plus its expansion state.
type Pool struct {
	file      string
	lines     []token.List
	macros    []*Macro
	current   *Macro
	labels    map[string]bool
	callStack []int
	counter   int
}

// NewPool creates the pool of a file whose tokenized lines are lines.
func NewPool(file string, lines []token.List) *Pool {
	return &Pool{file: file, lines: lines}
}

func (p *Pool) Macros() []*Macro { return p.macros }

// Defining reports whether a .macro body is being captured.
func (p *Pool) Defining() bool { return p.current != nil }

// Current is the macro under definition, or nil.
func (p *Pool) Current() *Macro { return p.current }

// Begin starts capturing a macro at line index idx. toks holds the
// directive's operands: the name followed by parameter placeholders.
func (p *Pool) Begin(toks []token.Token, idx int) error {
	if p.current != nil {
		return ErrNested
	}
	if len(toks) == 0 {
		return errors.New("macro name missing")
	}
	name := toks[0]
	if name.Kind != token.Identifier && name.Kind != token.Operator {
		return fmt.Errorf("invalid macro name %q", name.Text)
	}
	m := &Macro{Name: name.Text, From: idx, OrigFrom: name.Line, File: p.file}
	args := toks[1:]
	// SPIM style: .macro name(%a, %b)
	if len(args) >= 2 && args[0].Kind == token.LeftParen && args[len(args)-1].Kind == token.RightParen {
		args = args[1 : len(args)-1]
	}
	for _, a := range args {
		if a.Kind != token.MacroParameter {
			return fmt.Errorf("invalid macro parameter %q", a.Text)
		}
		m.Args = append(m.Args, a.Text)
	}
	p.current = m
	p.labels = map[string]bool{}
	return nil
}

// AddLabel records a label defined inside the body being captured.
func (p *Pool) AddLabel(name string) {
	if p.current != nil {
		p.labels[name] = true
	}
}

// Commit ends the definition at line index idx. trailing holds any
// tokens after .end_macro.
func (p *Pool) Commit(idx, line int, trailing []token.Token) error {
	if p.current == nil {
		return ErrNoBegin
	}
	if len(trailing) > 0 {
		return ErrTrailing
	}
	m := p.current
	m.To, m.OrigTo = idx, line
	for l := range p.labels {
		m.Labels = append(m.Labels, l)
	}
	sort.Strings(m.Labels)
	p.macros = append(p.macros, m)
	p.current, p.labels = nil, nil
	return nil
}

// Abandon drops an unterminated definition, reporting it.
func (p *Pool) Abandon() *Macro {
	m := p.current
	p.current, p.labels = nil, nil
	return m
}

// Matching returns the macro called by toks, the name followed by one
// token per argument. Among equal name and arity the latest definition
// wins.
func (p *Pool) Matching(toks []token.Token) *Macro {
	if len(toks) == 0 {
		return nil
	}
	var best *Macro
	for _, m := range p.macros {
		if m.Name != toks[0].Text || len(m.Args)+1 != len(toks) {
			continue
		}
		if best == nil || m.From > best.From {
			best = m
		}
	}
	return best
}

// HasName reports whether any macro, of any arity, is called name.
func (p *Pool) HasName(name string) bool {
	for _, m := range p.macros {
		if m.Name == name {
			return true
		}
	}
	return false
}

// NextCounter returns a fresh expansion id. Ids are pool-wide and never
// reused.
func (p *Pool) NextCounter() int {
	p.counter++
	return p.counter
}

// Push records that the call at source line is being expanded. It fails
// with ErrLoop if that line is already expanding.
func (p *Pool) Push(line int) error {
	for _, l := range p.callStack {
		if l == line {
			return ErrLoop
		}
	}
	p.callStack = append(p.callStack, line)
	return nil
}

func (p *Pool) Pop() {
	if n := len(p.callStack); n > 0 {
		p.callStack = p.callStack[:n-1]
	}
}

func (p *Pool) Depth() int { return len(p.callStack) }

// Substitute returns the text of body line idx of m with call-site
// arguments (call[0] is the macro name) put in place of parameters, and
// internal labels suffixed with _M<counter>.
func (p *Pool) Substitute(m *Macro, idx int, call []token.Token, counter int) (string, error) {
	if idx <= m.From || idx >= m.To {
		return "", fmt.Errorf("line %d is outside macro %s", idx, m.Name)
	}
	line := p.lines[idx]
	var sb strings.Builder
	last := 0
	for _, t := range line.Tokens {
		var repl string
		switch {
		case t.Kind == token.MacroParameter:
			i := m.argIndex(t.Text)
			if i < 0 {
				return "", fmt.Errorf("unknown macro parameter %s", t.Text)
			}
			repl = call[i+1].Text
		case (t.Kind == token.Identifier || t.Kind == token.Operator) && m.hasLabel(t.Text):
			repl = fmt.Sprintf("%s_M%d", t.Text, counter)
		default:
			continue
		}
		sb.WriteString(line.Text[last:t.Offset])
		sb.WriteString(repl)
		last = t.End()
	}
	sb.WriteString(line.Text[last:])
	return sb.String(), nil
}
