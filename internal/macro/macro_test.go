package macro

import (
	"errors"
	"strings"
	"testing"

	"rvasm/internal/arch"
	"rvasm/internal/arch/riscv"
	"rvasm/internal/token"
)

func check(t *testing.T, got any, want any) {
	t.Helper()
	if got != want {
		t.Errorf("%[1]v (a %[1]T) != %[2]v (a %[2]T)", got, want)
	}
}

type vocab struct {
	*arch.Registry
}

func (vocab) IsDirective(name string) bool { return name == ".macro" || name == ".end_macro" }

var lx = token.NewLexer(vocab{riscv.NewRegistry()})

func lines(t *testing.T, src string) []token.List {
	t.Helper()
	var out []token.List
	for i, l := range strings.Split(src, "\n") {
		toks, msgs := lx.Tokenize(token.SourceLine{Text: l, File: "m.s", Line: i + 1})
		for _, m := range msgs {
			t.Fatalf("line %d: %s", i+1, m)
		}
		out = append(out, toks)
	}
	return out
}

// define runs Begin and Commit over every .macro block of ls the way the
// first pass does.
func define(t *testing.T, p *Pool, ls []token.List) {
	t.Helper()
	for i, l := range ls {
		if len(l.Tokens) == 0 {
			continue
		}
		switch l.Tokens[0].Text {
		case ".macro":
			if err := p.Begin(l.Tokens[1:], i); err != nil {
				t.Fatal(err)
			}
		case ".end_macro":
			if err := p.Commit(i, i+1, l.Tokens[1:]); err != nil {
				t.Fatal(err)
			}
		default:
			if len(l.Tokens) > 1 && l.Tokens[1].Kind == token.Colon {
				p.AddLabel(l.Tokens[0].Text)
			}
		}
	}
}

const source = `.macro inc(%r)
loop: addi %r, %r, 1
  bne %r, zero, loop
.end_macro
.macro inc %r, %s
add %r, %r, %s
.end_macro
.macro inc(%r)
addi %r, %r, 2
.end_macro`

func call(t *testing.T, text string) []token.Token {
	t.Helper()
	return lines(t, text)[0].Tokens
}

func TestDefinitions(t *testing.T) {
	ls := lines(t, source)
	p := NewPool("m.s", ls)
	define(t, p, ls)

	check(t, p.Defining(), false)
	check(t, len(p.Macros()), 3)

	m := p.Macros()[0]
	check(t, m.Name, "inc")
	check(t, len(m.Args), 1)
	check(t, m.Args[0], "%r")
	check(t, len(m.Labels), 1)
	check(t, m.Labels[0], "loop")
	check(t, m.From, 0)
	check(t, m.To, 3)
	check(t, m.OrigFrom, 1)
	check(t, m.OrigTo, 4)
	check(t, m.File, "m.s")

	check(t, len(p.Macros()[1].Args), 2)
	check(t, len(p.Macros()[1].Labels), 0)
}

func TestMatching(t *testing.T) {
	ls := lines(t, source)
	p := NewPool("m.s", ls)
	define(t, p, ls)

	check(t, p.Matching(call(t, "inc t0")), p.Macros()[2])
	check(t, p.Matching(call(t, "inc t0, t1")), p.Macros()[1])
	check(t, p.Matching(call(t, "inc")) == nil, true)
	check(t, p.Matching(call(t, "dec t0")) == nil, true)
	check(t, p.Matching(nil) == nil, true)

	check(t, p.HasName("inc"), true)
	check(t, p.HasName("dec"), false)
}

func TestSubstitute(t *testing.T) {
	ls := lines(t, source)
	p := NewPool("m.s", ls)
	define(t, p, ls)
	m := p.Macros()[0]
	c := call(t, "inc t0")

	got, err := p.Substitute(m, 1, c, 7)
	check(t, err, nil)
	check(t, got, "loop_M7: addi t0, t0, 1")

	got, err = p.Substitute(m, 2, c, 7)
	check(t, err, nil)
	check(t, got, "  bne t0, zero, loop_M7")

	got, _ = p.Substitute(p.Macros()[1], 5, call(t, "inc a0, a1"), 8)
	check(t, got, "add a0, a0, a1")

	_, err = p.Substitute(m, 0, c, 7)
	check(t, err != nil, true)
	_, err = p.Substitute(m, 3, c, 7)
	check(t, err != nil, true)
}

func TestUnknownParameter(t *testing.T) {
	ls := lines(t, ".macro bad(%a)\nli %b, 1\n.end_macro")
	p := NewPool("m.s", ls)
	define(t, p, ls)

	_, err := p.Substitute(p.Macros()[0], 1, call(t, "bad t0"), 1)
	if err == nil || !strings.Contains(err.Error(), "%b") {
		t.Errorf("got %v, want an unknown parameter error", err)
	}
}

func TestDefinitionErrors(t *testing.T) {
	ls := lines(t, ".macro one\n.macro two\n.end_macro x\n.macro bad(x)")
	p := NewPool("m.s", ls)

	check(t, p.Begin(ls[0].Tokens[1:], 0), nil)
	check(t, p.Defining(), true)
	check(t, p.Current().Name, "one")
	check(t, errors.Is(p.Begin(ls[1].Tokens[1:], 1), ErrNested), true)
	check(t, errors.Is(p.Commit(2, 3, ls[2].Tokens[1:]), ErrTrailing), true)

	m := p.Abandon()
	check(t, m.Name, "one")
	check(t, p.Defining(), false)
	check(t, p.Abandon() == nil, true)

	check(t, errors.Is(p.Commit(2, 3, nil), ErrNoBegin), true)
	check(t, p.Begin(ls[3].Tokens[1:], 3) != nil, true)
	check(t, p.Begin(nil, 3) != nil, true)
	check(t, len(p.Macros()), 0)
}

func TestCallStack(t *testing.T) {
	p := NewPool("m.s", nil)
	check(t, p.Push(5), nil)
	check(t, p.Push(6), nil)
	check(t, errors.Is(p.Push(5), ErrLoop), true)
	check(t, p.Depth(), 2)

	p.Pop()
	p.Pop()
	p.Pop()
	check(t, p.Depth(), 0)
	check(t, p.Push(5), nil)
}

func TestCounter(t *testing.T) {
	p := NewPool("m.s", nil)
	check(t, p.NextCounter(), 1)
	check(t, p.NextCounter(), 2)
	check(t, p.NextCounter(), 3)
}
