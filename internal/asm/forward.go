package asm

import (
	"github.com/golang/glog"

	"rvasm/internal/symbol"
	"rvasm/internal/token"
)

// forwardRef is a data word written as zero because its label was not yet
// defined.
type forwardRef struct {
	patch uint32
	width int
	tok   token.Token
	// table is the local table of the referencing file; lookups fall back
	// to the global table.
	table *symbol.Table
}

// patchWrite is a resolved forwardRef.
type patchWrite struct {
	ref   forwardRef
	value uint32
}

// resolveForwardRefs looks every pending reference up in its table. It
// does not touch memory.
func resolveForwardRefs(pending []forwardRef) (still []forwardRef, writes []patchWrite) {
	for _, ref := range pending {
		sym, ok := ref.table.LookupLocalOrGlobal(ref.tok.Text)
		if !ok {
			still = append(still, ref)
			continue
		}
		writes = append(writes, patchWrite{ref: ref, value: sym.Address})
	}
	return still, writes
}

func (a *Assembler) applyWrites(writes []patchWrite) {
	for _, w := range writes {
		glog.V(2).Infof("%s:%d: patching %s at 0x%08x with 0x%08x", w.ref.tok.File, w.ref.tok.Line, w.ref.tok.Text, w.ref.patch, w.value)
		if err := a.mem.Set(w.ref.patch, int64(w.value), w.ref.width); err != nil {
			a.errorAt(w.ref.tok, "%v", err)
		}
	}
}

// patchLocal resolves what it can of one file's references against that
// file's labels, returning the rest.
func (a *Assembler) patchLocal(pending []forwardRef) []forwardRef {
	still, writes := resolveForwardRefs(pending)
	a.applyWrites(writes)
	return still
}

// resolveForwardReferences patches every remaining reference once all
// files have been read. Labels still missing are errors.
func (a *Assembler) resolveForwardReferences() {
	still, writes := resolveForwardRefs(a.forward)
	a.applyWrites(writes)
	for _, ref := range still {
		a.report(ref.tok, "", false, "symbol %q not found in symbol table", ref.tok.Text)
	}
	a.forward = nil
}
