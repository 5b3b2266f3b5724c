package asm

import (
	"rvasm/internal/ast"
	"rvasm/internal/memory"
)

// Context is the cursor state of one assembly run. Address cursors carry
// over from one file to the next; segment selection and auto-alignment
// are reset at the start of every file.
type Context struct {
	TextAddress   uint32
	DataAddress   uint32
	KTextAddress  uint32
	KDataAddress  uint32
	ExternAddress uint32

	InDataSegment bool
	InKernel      bool
	AutoAlign     bool
	// DataDirective is the most recent data directive, used to store
	// continuation lines.
	DataDirective ast.Directive
}

func newContext(l memory.Layout) Context {
	return Context{
		TextAddress:   l.TextBase,
		DataAddress:   l.DataBase,
		KTextAddress:  l.KernelTextBase,
		KDataAddress:  l.KernelDataBase,
		ExternAddress: l.ExternBase,
		AutoAlign:     true,
	}
}

func (c *Context) startFile() {
	c.InDataSegment = false
	c.InKernel = false
	c.AutoAlign = true
}

func (c *Context) textCursor() *uint32 {
	if c.InKernel {
		return &c.KTextAddress
	}
	return &c.TextAddress
}

func (c *Context) dataCursor() *uint32 {
	if c.InKernel {
		return &c.KDataAddress
	}
	return &c.DataAddress
}

// Here is the cursor of the current segment.
func (c *Context) Here() uint32 {
	if c.InDataSegment {
		return *c.dataCursor()
	}
	return *c.textCursor()
}

func alignUp(addr, to uint32) uint32 {
	if to <= 1 {
		return addr
	}
	if r := addr % to; r != 0 {
		return addr + to - r
	}
	return addr
}
