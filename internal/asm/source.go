package asm

import (
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strings"

	"rvasm/internal/errs"
	"rvasm/internal/token"
)

// SourceFile is one top-level file with its .include files already
// flattened into Lines.
type SourceFile struct {
	Name  string
	Lines []token.SourceLine
	// Messages holds problems met while loading, reported by Assemble.
	Messages []*errs.Message
}

func splitLines(name, text string) []token.SourceLine {
	raw := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	if n := len(raw); n > 0 && raw[n-1] == "" {
		raw = raw[:n-1]
	}
	lines := make([]token.SourceLine, len(raw))
	for i, l := range raw {
		lines[i] = token.SourceLine{Text: l, File: name, Line: i + 1}
	}
	return lines
}

// NewSource builds a file from text. .include lines are not followed.
func NewSource(name, text string) SourceFile {
	return SourceFile{Name: name, Lines: splitLines(name, text)}
}

var includeLine = regexp.MustCompile(`(?i)^\s*\.include\s+"([^"]+)"\s*(#.*)?$`)

// LoadSource reads name from fsys, replacing every .include line by the
// lines of the named file, relative to the including one. Missing and
// recursive includes are reported in the returned file's Messages; only a
// missing top-level file is an error.
func LoadSource(fsys fs.FS, name string) (SourceFile, error) {
	data, err := fs.ReadFile(fsys, name)
	if err != nil {
		return SourceFile{}, err
	}
	f := SourceFile{Name: name}
	f.Lines = f.flatten(fsys, name, string(data), []string{name})
	return f, nil
}

func (f *SourceFile) flatten(fsys fs.FS, name, text string, stack []string) []token.SourceLine {
	var out []token.SourceLine
	for _, l := range splitLines(name, text) {
		m := includeLine.FindStringSubmatch(l.Text)
		if m == nil {
			out = append(out, l)
			continue
		}
		inc := path.Join(path.Dir(name), m[1])
		if slices.Contains(stack, inc) {
			f.fail(l, "recursive include of %s", inc)
			continue
		}
		data, err := fs.ReadFile(fsys, inc)
		if err != nil {
			f.fail(l, "cannot open include file %s: %v", inc, err)
			continue
		}
		out = append(out, f.flatten(fsys, inc, string(data), append(stack, inc))...)
	}
	return out
}

func (f *SourceFile) fail(l token.SourceLine, format string, args ...any) {
	f.Messages = append(f.Messages, &errs.Message{File: l.File, Line: l.Line, Text: fmt.Sprintf(format, args...)})
}
