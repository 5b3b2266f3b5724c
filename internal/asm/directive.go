package asm

import (
	"strings"

	"github.com/golang/glog"

	"rvasm/internal/ast"
	"rvasm/internal/token"
)

// maxAlign caps the .align exponent at a 2 GiB boundary.
const maxAlign = 31

// executeDirective runs the directive line toks, line idx of u.
func (a *Assembler) executeDirective(u *unit, idx int, toks token.List) {
	first := toks.Tokens[0]
	ops := toks.Tokens[1:]
	d, ok := ast.LookupDirective(first.Text)
	if !ok {
		a.errorAt(first, "unrecognized directive %q", first.Text)
		return
	}

	if u.pool.Defining() {
		switch d {
		case ast.DirMacro:
			a.beginMacro(u, idx, first, ops)
		case ast.DirEndMacro:
			a.endMacro(u, idx, first, ops)
		}
		return
	}
	glog.V(2).Infof("%s:%d: directive %s", first.File, first.Line, d)

	switch d {
	case ast.DirData, ast.DirKData:
		a.selectSegment(first, ops, true, d == ast.DirKData)
	case ast.DirText, ast.DirKText:
		a.selectSegment(first, ops, false, d == ast.DirKText)
	case ast.DirSection:
		a.section(first, ops)

	case ast.DirWord, ast.DirHalf, ast.DirByte, ast.DirDword, ast.DirFloat, ast.DirDouble,
		ast.DirASCII, ast.DirASCIZ, ast.DirString:
		a.ctx.DataDirective = d
		if !a.ctx.InDataSegment {
			a.errorAt(first, "%s directive cannot appear in text segment", d)
			return
		}
		a.storeData(u, d, ops)

	case ast.DirAlign:
		a.align(u, first, ops)
	case ast.DirSpace:
		a.space(first, ops)
	case ast.DirExtern:
		a.extern(first, ops)

	case ast.DirGlobl, ast.DirGlobal:
		if len(ops) == 0 {
			a.errorAt(first, "%s requires at least one label operand", d)
			return
		}
		for _, t := range ops {
			if !isLabelName(t) {
				a.errorAt(t, "%q is not a valid label for %s", t.Text, d)
				continue
			}
			u.globals = append(u.globals, t)
		}

	case ast.DirEqv:
		// substituted while tokenizing

	case ast.DirMacro:
		a.beginMacro(u, idx, first, ops)
	case ast.DirEndMacro:
		a.endMacro(u, idx, first, ops)

	case ast.DirInclude:
		a.errorAt(first, ".include must be resolved when the source is loaded")

	default:
		a.errorAt(first, "directive %s is not supported", d)
	}
}

func (a *Assembler) beginMacro(u *unit, idx int, at token.Token, ops []token.Token) {
	if err := u.pool.Begin(ops, idx); err != nil {
		a.errorAt(at, "%v", err)
	}
}

func (a *Assembler) endMacro(u *unit, idx int, at token.Token, ops []token.Token) {
	if err := u.pool.Commit(idx, at.Line, ops); err != nil {
		a.errorAt(at, "%v", err)
	}
}

// selectSegment switches to the data or text segment of user or kernel
// space. An optional address operand moves that segment's cursor.
func (a *Assembler) selectSegment(at token.Token, ops []token.Token, data, kernel bool) {
	a.ctx.InDataSegment = data
	a.ctx.InKernel = kernel
	a.ctx.AutoAlign = true
	if len(ops) == 0 {
		return
	}
	if len(ops) > 1 || !ops[0].Kind.IsInteger() {
		a.errorAt(ops[0], "%s takes at most one integer address operand", at.Text)
		return
	}
	addr := uint32(ops[0].Value)
	if data {
		*a.ctx.dataCursor() = addr
	} else {
		*a.ctx.textCursor() = addr
	}
}

func (a *Assembler) section(at token.Token, ops []token.Token) {
	if len(ops) != 1 {
		a.errorAt(at, ".section requires a section name")
		return
	}
	name := strings.Trim(ops[0].Text, `"`)
	switch {
	case strings.HasPrefix(name, ".data"), strings.HasPrefix(name, ".rodata"), strings.HasPrefix(name, ".sdata"):
		a.selectSegment(at, nil, true, false)
	case strings.HasPrefix(name, ".text"):
		a.selectSegment(at, nil, false, false)
	default:
		a.warnAt(ops[0], "section %q is not recognized and has been ignored", name)
	}
}

func (a *Assembler) align(u *unit, at token.Token, ops []token.Token) {
	if len(ops) != 1 || !ops[0].Kind.IsInteger() || ops[0].Value < 0 {
		a.errorAt(at, ".align requires one non-negative integer operand")
		return
	}
	n := ops[0].Value
	if n > maxAlign {
		a.errorAt(ops[0], ".align %d is out of range (0 to %d)", n, maxAlign)
		return
	}
	if !a.ctx.InDataSegment {
		if n < 2 {
			a.warnAt(ops[0], ".align %d in the text segment rounded up to a word boundary", n)
			n = 2
		}
		alignCursor(u, a.ctx.textCursor(), 1<<n)
		return
	}
	if n == 0 {
		a.ctx.AutoAlign = false
		return
	}
	a.alignData(u, 1<<n)
}

func (a *Assembler) space(at token.Token, ops []token.Token) {
	if !a.ctx.InDataSegment {
		a.errorAt(at, ".space directive cannot appear in text segment")
		return
	}
	if len(ops) != 1 || !ops[0].Kind.IsInteger() || ops[0].Value < 0 {
		a.errorAt(at, ".space requires one non-negative integer operand")
		return
	}
	*a.ctx.dataCursor() += uint32(ops[0].Value)
}

// extern reserves size bytes at the extern cursor for a global label. The
// first declaration wins.
func (a *Assembler) extern(at token.Token, ops []token.Token) {
	if len(ops) != 2 || !isLabelName(ops[0]) || !ops[1].Kind.IsInteger() || ops[1].Value < 0 {
		a.errorAt(at, ".extern requires a label and a non-negative size")
		return
	}
	name := ops[0].Text
	if _, ok := a.global.Lookup(name); ok {
		return
	}
	if err := a.global.Add(name, a.ctx.ExternAddress, true); err != nil {
		a.errorAt(ops[0], "%v", err)
		return
	}
	a.ctx.ExternAddress += uint32(ops[1].Value)
}
