package ast

import "strings"

// Directive is the closed set of assembler directives.
type Directive int

const (
	DirNone Directive = iota
	DirData
	DirText
	DirKText
	DirKData
	DirSection
	DirWord
	DirHalf
	DirByte
	DirDword
	DirFloat
	DirDouble
	DirASCII
	DirASCIZ
	DirString
	DirAlign
	DirSpace
	DirExtern
	DirGlobl
	DirGlobal
	DirEqv
	DirMacro
	DirEndMacro
	DirInclude
)

var directiveNames = map[Directive]string{
	DirData:     ".data",
	DirText:     ".text",
	DirKText:    ".ktext",
	DirKData:    ".kdata",
	DirSection:  ".section",
	DirWord:     ".word",
	DirHalf:     ".half",
	DirByte:     ".byte",
	DirDword:    ".dword",
	DirFloat:    ".float",
	DirDouble:   ".double",
	DirASCII:    ".ascii",
	DirASCIZ:    ".asciz",
	DirString:   ".string",
	DirAlign:    ".align",
	DirSpace:    ".space",
	DirExtern:   ".extern",
	DirGlobl:    ".globl",
	DirGlobal:   ".global",
	DirEqv:      ".eqv",
	DirMacro:    ".macro",
	DirEndMacro: ".end_macro",
	DirInclude:  ".include",
}

var directivesByName = func() map[string]Directive {
	m := make(map[string]Directive, len(directiveNames))
	for d, n := range directiveNames {
		m[n] = d
	}
	return m
}()

func (d Directive) String() string {
	if n, ok := directiveNames[d]; ok {
		return n
	}
	return "(none)"
}

// LookupDirective matches name case-insensitively.
func LookupDirective(name string) (Directive, bool) {
	d, ok := directivesByName[strings.ToLower(name)]
	return d, ok
}

func IsDirective(name string) bool {
	_, ok := LookupDirective(name)
	return ok
}

// Width is the storage size in bytes of one data item.
func (d Directive) Width() int {
	switch d {
	case DirByte:
		return 1
	case DirHalf:
		return 2
	case DirWord, DirFloat:
		return 4
	case DirDword, DirDouble:
		return 8
	}
	return 0
}

func (d Directive) IsInteger() bool {
	return d == DirByte || d == DirHalf || d == DirWord || d == DirDword
}

func (d Directive) IsReal() bool {
	return d == DirFloat || d == DirDouble
}

func (d Directive) IsNumeric() bool { return d.IsInteger() || d.IsReal() }

func (d Directive) IsString() bool {
	return d == DirASCII || d == DirASCIZ || d == DirString
}

// IsSegment reports the directives that select a segment.
func (d Directive) IsSegment() bool {
	return d == DirData || d == DirText || d == DirKText || d == DirKData || d == DirSection
}
