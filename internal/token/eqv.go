package token

import (
	"strings"

	"rvasm/internal/errs"
)

type equivalence struct {
	value string
	line  int
}

// TokenizeFile tokenizes every line of one source file. It runs the .eqv
// pre-pass as it goes: a line holding ".eqv NAME expr" defines NAME, and
// every later standalone identifier NAME is replaced by expr before the
// line is tokenized. The result is index-aligned with lines.
func (lx *Lexer) TokenizeFile(lines []SourceLine, list *errs.List) []List {
	out := make([]List, len(lines))
	eqvs := map[string]equivalence{}

	for i, line := range lines {
		toks, msgs := lx.Tokenize(line)
		if len(eqvs) > 0 {
			if text, changed := substituteEquivalences(toks, eqvs); changed {
				toks, msgs = lx.tokenizeText(text, line)
			}
		}
		for _, m := range msgs {
			list.Add(m)
		}
		lx.defineEquivalence(toks, eqvs, list)
		out[i] = toks
	}
	return out
}

func eqvIndex(toks List) int {
	for i, t := range toks.Tokens {
		switch {
		case t.Kind == Directive && strings.EqualFold(t.Text, ".eqv"):
			return i
		case t.Kind == Colon:
			continue
		case i == 0 && (t.Kind == Identifier || t.Kind == Operator):
			continue
		default:
			return -1
		}
	}
	return -1
}

func (lx *Lexer) defineEquivalence(toks List, eqvs map[string]equivalence, list *errs.List) {
	toks = toks.WithoutComment()
	at := eqvIndex(toks)
	if at < 0 {
		return
	}
	dir := toks.Tokens[at]
	if at+2 >= toks.Len() {
		list.Errorf(dir.File, dir.Line, dir.Col, "too few operands for %s directive", dir.Text)
		return
	}
	sym := toks.Tokens[at+1]
	if sym.Kind != Identifier {
		list.Errorf(sym.File, sym.Line, sym.Col, "malformed %s directive: %q is not a valid symbol", dir.Text, sym.Text)
		return
	}
	valueToks := toks.Tokens[at+2:]
	value := strings.TrimSpace(toks.Text[valueToks[0].Offset:valueToks[len(valueToks)-1].End()])
	for _, t := range valueToks {
		if t.Kind == Identifier && t.Text == sym.Text {
			list.Errorf(t.File, t.Line, t.Col, "cannot substitute %s for itself", sym.Text)
			return
		}
	}
	if prev, ok := eqvs[sym.Text]; ok {
		if prev.value == value {
			list.Errorf(sym.File, sym.Line, sym.Col, "duplicate .eqv definition of %s (first defined on line %d)", sym.Text, prev.line)
		} else {
			list.Errorf(sym.File, sym.Line, sym.Col, "%s already defined as %q on line %d", sym.Text, prev.value, prev.line)
		}
		return
	}
	eqvs[sym.Text] = equivalence{value: value, line: sym.Line}
}

// substituteEquivalences rewrites identifier tokens naming an equivalence.
// The symbol being defined by an .eqv line is left alone.
func substituteEquivalences(toks List, eqvs map[string]equivalence) (string, bool) {
	skip := -1
	if at := eqvIndex(toks); at >= 0 && at+1 < toks.Len() {
		skip = at + 1
	}
	var sb strings.Builder
	last := 0
	changed := false
	for i, t := range toks.Tokens {
		if t.Kind != Identifier || i == skip {
			continue
		}
		// label definitions keep their name
		if i+1 < toks.Len() && toks.Tokens[i+1].Kind == Colon && i == 0 {
			continue
		}
		eq, ok := eqvs[t.Text]
		if !ok {
			continue
		}
		sb.WriteString(toks.Text[last:t.Offset])
		sb.WriteString(eq.value)
		last = t.End()
		changed = true
	}
	if !changed {
		return toks.Text, false
	}
	sb.WriteString(toks.Text[last:])
	return sb.String(), true
}
