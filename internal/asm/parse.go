package asm

import (
	"fmt"
	"strings"

	"github.com/golang/glog"

	"rvasm/internal/arch"
	"rvasm/internal/ast"
	"rvasm/internal/token"
)

func isLabelName(t token.Token) bool {
	return t.Kind == token.Identifier || t.Kind == token.Operator
}

func hasErrorToken(toks token.List) bool {
	for _, t := range toks.Tokens {
		if t.Kind == token.Error {
			return true
		}
	}
	return false
}

// parseLine runs the first pass over one tokenized line of u, which is
// line idx of the file or a substituted macro body line. It returns the
// instruction statements the line produced.
func (a *Assembler) parseLine(u *unit, idx int, original token.List) []*ast.Statement {
	toks := original.WithoutComment()
	if toks.Empty() || hasErrorToken(toks) {
		return nil
	}

	for toks.Len() >= 2 && isLabelName(toks.Tokens[0]) && toks.Tokens[1].Kind == token.Colon {
		a.defineLabel(u, toks.Tokens[0])
		toks = toks.Slice(2, toks.Len())
	}
	if toks.Empty() {
		return nil
	}

	first := toks.Tokens[0]
	if first.Kind == token.Directive {
		a.executeDirective(u, idx, toks)
		return nil
	}
	if u.pool.Defining() {
		return nil
	}

	if stmts, ok := a.expandMacroCall(u, toks); ok {
		return stmts
	}

	if first.Kind == token.Identifier && strings.HasPrefix(first.Text, ".") {
		a.warnAt(first, "directive %q is not recognized and has been ignored", first.Text)
		return nil
	}

	if a.ctx.InDataSegment {
		if isDataContinuation(first) {
			if a.ctx.DataDirective == ast.DirNone {
				a.errorAt(first, "data values without a preceding data directive")
				return nil
			}
			a.storeData(u, a.ctx.DataDirective, toks.Tokens)
			return nil
		}
		if first.Kind == token.Operator {
			a.errorAt(first, "instruction %q cannot appear in the data segment", first.Text)
			return nil
		}
	}

	return a.parseInstruction(u, original, toks)
}

func (a *Assembler) defineLabel(u *unit, t token.Token) {
	if u.pool.Defining() {
		u.pool.AddLabel(t.Text)
		return
	}
	addr := a.ctx.Here()
	if err := u.local.Add(t.Text, addr, a.ctx.InDataSegment); err != nil {
		a.errorAt(t, "%v", err)
		return
	}
	glog.V(2).Infof("%s:%d: label %s at 0x%08x", t.File, t.Line, t.Text, addr)
}

func isDataContinuation(t token.Token) bool {
	switch t.Kind {
	case token.Plus, token.Minus, token.QuotedString, token.Identifier, token.RealNumber:
		return true
	}
	return t.Kind.IsInteger()
}

// callTokens strips SPIM style parentheses: name(a, b) becomes name a b.
func callTokens(toks []token.Token) []token.Token {
	n := len(toks)
	if n >= 3 && toks[1].Kind == token.LeftParen && toks[n-1].Kind == token.RightParen {
		out := make([]token.Token, 0, n-2)
		out = append(out, toks[0])
		return append(out, toks[2:n-1]...)
	}
	return toks
}

// expandMacroCall parses every body line of the macro toks calls. ok is
// false when toks is not a macro call.
func (a *Assembler) expandMacroCall(u *unit, toks token.List) (stmts []*ast.Statement, ok bool) {
	if !isLabelName(toks.Tokens[0]) {
		return nil, false
	}
	call := callTokens(toks.Tokens)
	m := u.pool.Matching(call)
	if m == nil {
		call = toks.Tokens
		if m = u.pool.Matching(call); m == nil {
			return nil, false
		}
	}

	site := toks.Line
	if err := u.pool.Push(site.Line); err != nil {
		a.errorAt(call[0], "%v", err)
		return nil, true
	}
	defer u.pool.Pop()

	counter := u.pool.NextCounter()
	a.expansions = append(a.expansions, fmt.Sprintf("in macro %s expanded at line %d", m.Name, site.Line))
	defer func() { a.expansions = a.expansions[:len(a.expansions)-1] }()
	glog.V(2).Infof("%s:%d: expanding macro %s (#%d)", site.File, site.Line, m.Name, counter)

	for i := m.From + 1; i < m.To; i++ {
		if a.errs.ErrorLimitExceeded() {
			break
		}
		body := u.tokens[i].Line
		text, err := u.pool.Substitute(m, i, call, counter)
		if err != nil {
			a.errs.Errorf(body.File, body.Line, 0, "%v", err)
			continue
		}
		sub, msgs := a.lx.Tokenize(token.SourceLine{Text: text, File: body.File, Line: body.Line})
		for _, msg := range msgs {
			msg.Macro = a.macroNote()
			a.errs.Add(msg)
		}
		stmts = append(stmts, a.parseLine(u, i, sub)...)
	}
	return stmts, true
}

// parseInstruction matches an operator line against the instruction set
// and reserves its text addresses.
func (a *Assembler) parseInstruction(u *unit, original, toks token.List) []*ast.Statement {
	op := toks.Tokens[0]
	if op.Kind != token.Operator {
		if u.pool.HasName(op.Text) {
			a.errorAt(op, "forward reference or invalid parameters for macro %q", op.Text)
		} else {
			a.errorAt(op, "%q is not a recognized operator", op.Text)
		}
		return nil
	}
	ops := toks.Tokens[1:]
	in := arch.BestMatch(a.isa.Lookup(op.Text), ops)
	if in == nil {
		a.errorAt(op, "%q is not a recognized operator", op.Text)
		return nil
	}
	if in.Extended() && !a.cfg.ExtendedInstructions {
		a.errorAt(op, "extended (pseudo) instruction or format not permitted: %s", in.Example())
		return nil
	}
	if err := arch.CheckOperands(in, op, ops); err != nil {
		a.operandError(err, op)
		return nil
	}

	cursor := a.ctx.textCursor()
	line := toks.Line
	s := &ast.Statement{
		Source:      &line,
		Unit:        u.index,
		Original:    original,
		Tokens:      toks,
		Address:     *cursor,
		Instruction: in,
		Macro:       a.macroNote(),
	}
	*cursor += uint32(in.Length())
	return []*ast.Statement{s}
}

func (a *Assembler) operandError(err error, fallback token.Token) {
	if oe, ok := err.(*arch.OperandError); ok {
		a.errorAt(oe.Token, "%s", oe.Text)
		return
	}
	a.errorAt(fallback, "%v", err)
}
