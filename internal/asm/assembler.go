package asm

import (
	"fmt"

	"github.com/golang/glog"

	"rvasm/internal/arch"
	"rvasm/internal/ast"
	"rvasm/internal/errs"
	"rvasm/internal/macro"
	"rvasm/internal/memory"
	"rvasm/internal/symbol"
	"rvasm/internal/token"
)

// Error aborts an assembly run. It carries every diagnostic recorded.
type Error struct {
	List *errs.List
}

func (e *Error) Error() string { return e.List.Report() }

// Result is a successful assembly: the machine statements ordered by
// address, the symbol tables and the memory image.
type Result struct {
	Statements []*ast.Statement
	Global     *symbol.Table
	Locals     []*symbol.Table
	Memory     *memory.Memory
	Errors     *errs.List
	// Entry is the address of the global main label, or the text base.
	Entry uint32
}

// unit is the per-file state of one run.
type unit struct {
	index   int
	file    SourceFile
	tokens  []token.List
	local   *symbol.Table
	pool    *macro.Pool
	globals []token.Token
	forward []forwardRef
	parsed  []*ast.Statement
}

type vocabulary struct {
	*arch.Registry
}

func (vocabulary) IsDirective(name string) bool { return ast.IsDirective(name) }

type Assembler struct {
	cfg    Config
	isa    *arch.Registry
	lx     *token.Lexer
	mem    *memory.Memory
	global *symbol.Table
	errs   *errs.List
	ctx    Context

	units   []*unit
	forward []forwardRef
	// expansions names the macro calls being expanded, innermost last.
	expansions []string
}

func NewAssembler(cfg Config, isa *arch.Registry) *Assembler {
	return &Assembler{
		cfg:    cfg,
		isa:    isa,
		lx:     token.NewLexer(vocabulary{isa}),
		mem:    memory.New(cfg.Layout),
		global: symbol.NewGlobal(),
		errs:   errs.NewList(cfg.ErrorLimit),
	}
}

func (a *Assembler) reset() {
	a.global.Clear()
	a.mem.Reset()
	a.errs = errs.NewList(a.cfg.ErrorLimit)
	a.ctx = newContext(a.cfg.Layout)
	a.units = nil
	a.forward = nil
	a.expansions = nil
}

// Assemble runs both passes over files. On failure the returned error is
// an *Error holding every message; warnings alone do not fail the run
// unless the configuration says so.
func (a *Assembler) Assemble(files ...SourceFile) (*Result, error) {
	a.reset()

	for i, f := range files {
		u := &unit{index: i, file: f}
		for _, m := range f.Messages {
			a.errs.Add(m)
		}
		u.tokens = a.lx.TokenizeFile(f.Lines, a.errs)
		u.local = symbol.NewLocal(f.Name, a.global)
		u.pool = macro.NewPool(f.Name, u.tokens)
		a.units = append(a.units, u)
	}

	for _, u := range a.units {
		if a.errs.ErrorLimitExceeded() {
			break
		}
		a.firstPass(u)
	}
	a.resolveForwardReferences()

	if a.errs.ErrorsOccurred() {
		glog.V(1).Infof("first pass failed with %d error(s)", a.errs.ErrorCount())
		return nil, &Error{List: a.errs}
	}

	var machine []*ast.Statement
	for _, u := range a.units {
		glog.V(1).Infof("second pass over %s: %d statement(s)", u.file.Name, len(u.parsed))
		for _, s := range u.parsed {
			if a.errs.ErrorLimitExceeded() {
				break
			}
			machine = append(machine, a.resolve(u, s)...)
		}
	}

	sorted := a.generate(machine)

	if a.errs.ErrorsOccurred() || (a.cfg.WarningsAreErrors && a.errs.WarningsOccurred()) {
		return nil, &Error{List: a.errs}
	}

	res := &Result{
		Statements: sorted,
		Global:     a.global,
		Memory:     a.mem,
		Errors:     a.errs,
		Entry:      a.cfg.Layout.TextBase,
	}
	for _, u := range a.units {
		res.Locals = append(res.Locals, u.local)
	}
	if addr, err := a.global.Address(symbol.MainSymbol); err == nil {
		res.Entry = addr
	}
	return res, nil
}

// firstPass collects labels, stores data and reserves text addresses for
// one file.
func (a *Assembler) firstPass(u *unit) {
	glog.V(1).Infof("first pass over %s (%d lines)", u.file.Name, len(u.tokens))
	a.ctx.startFile()

	for i, toks := range u.tokens {
		if a.errs.ErrorLimitExceeded() {
			return
		}
		u.parsed = append(u.parsed, a.parseLine(u, i, toks)...)
	}

	if m := u.pool.Abandon(); m != nil {
		a.errs.Add(&errs.Message{File: u.file.Name, Line: m.OrigFrom, Text: fmt.Sprintf("%v: %s", macro.ErrUnterminated, m.Name)})
	}
	a.transferGlobals(u)
	a.forward = append(a.forward, a.patchLocal(u.forward)...)
	u.forward = nil
}

// transferGlobals moves the labels named by .globl from the file's table
// into the global table.
func (a *Assembler) transferGlobals(u *unit) {
	done := map[string]bool{}
	for _, t := range u.globals {
		if done[t.Text] {
			continue
		}
		sym, ok := u.local.Lookup(t.Text)
		if !ok {
			a.errorAt(t, "%s declared global label but not defined", t.Text)
			continue
		}
		if _, exists := a.global.Lookup(t.Text); exists {
			a.errorAt(t, "%s already defined as global in a different file", t.Text)
			continue
		}
		u.local.Remove(t.Text)
		if err := a.global.Add(sym.Name, sym.Address, sym.IsData); err != nil {
			a.errorAt(t, "%v", err)
			continue
		}
		done[t.Text] = true
		glog.V(2).Infof("%s: %s promoted to global at 0x%08x", u.file.Name, sym.Name, sym.Address)
	}
	u.globals = nil
}

func (a *Assembler) macroNote() string {
	if n := len(a.expansions); n > 0 {
		return a.expansions[n-1]
	}
	return ""
}

func (a *Assembler) report(t token.Token, note string, warning bool, format string, args ...any) {
	a.errs.Add(&errs.Message{
		File:    t.File,
		Line:    t.Line,
		Column:  t.Col,
		Text:    fmt.Sprintf(format, args...),
		Warning: warning,
		Macro:   note,
	})
}

func (a *Assembler) errorAt(t token.Token, format string, args ...any) {
	a.report(t, a.macroNote(), false, format, args...)
}

func (a *Assembler) warnAt(t token.Token, format string, args ...any) {
	a.report(t, a.macroNote(), true, format, args...)
}
