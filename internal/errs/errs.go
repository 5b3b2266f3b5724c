package errs

import (
	"fmt"
	"strings"
)

const DefaultLimit = 200

// Message is one diagnostic produced while assembling.
type Message struct {
	File    string
	Line    int
	Column  int
	Text    string
	Warning bool
	// Macro is set when the message was produced inside a macro expansion
	// and names the call site.
	Macro string
}

func (m *Message) String() string {
	kind := "Error"
	if m.Warning {
		kind = "Warning"
	}
	var sb strings.Builder
	sb.WriteString(kind)
	if m.File != "" {
		fmt.Fprintf(&sb, " in %s", m.File)
	}
	if m.Line > 0 {
		fmt.Fprintf(&sb, " line %d", m.Line)
		if m.Column > 0 {
			fmt.Fprintf(&sb, " column %d", m.Column)
		}
	}
	if m.Macro != "" {
		fmt.Fprintf(&sb, " (%s)", m.Macro)
	}
	sb.WriteString(": ")
	sb.WriteString(m.Text)
	return sb.String()
}

// List accumulates diagnostics for one assembly run. Once the number of
// errors reaches the limit a single "Error Limit" message is recorded and
// everything after it is dropped.
type List struct {
	messages []*Message
	errors   int
	warnings int
	limit    int
	exceeded bool
}

func NewList(limit int) *List {
	if limit <= 0 {
		limit = DefaultLimit
	}
	return &List{limit: limit}
}

func (l *List) Add(m *Message) {
	if l.exceeded {
		return
	}
	if !m.Warning && l.errors >= l.limit {
		l.exceeded = true
		l.messages = append(l.messages, &Message{Text: fmt.Sprintf("Error Limit of %d exceeded.", l.limit)})
		l.errors++
		return
	}
	l.messages = append(l.messages, m)
	if m.Warning {
		l.warnings++
	} else {
		l.errors++
	}
}

func (l *List) Errorf(file string, line, col int, format string, args ...any) {
	l.Add(&Message{File: file, Line: line, Column: col, Text: fmt.Sprintf(format, args...)})
}

func (l *List) Warnf(file string, line, col int, format string, args ...any) {
	l.Add(&Message{File: file, Line: line, Column: col, Text: fmt.Sprintf(format, args...), Warning: true})
}

// Merge appends every message of other, subject to this list's limit.
func (l *List) Merge(other *List) {
	for _, m := range other.messages {
		l.Add(m)
	}
}

func (l *List) Messages() []*Message     { return l.messages }
func (l *List) ErrorCount() int          { return l.errors }
func (l *List) WarningCount() int        { return l.warnings }
func (l *List) ErrorsOccurred() bool     { return l.errors > 0 }
func (l *List) WarningsOccurred() bool   { return l.warnings > 0 }
func (l *List) ErrorLimitExceeded() bool { return l.exceeded }
func (l *List) Limit() int               { return l.limit }

func (l *List) report(warnings bool) string {
	var sb strings.Builder
	for _, m := range l.messages {
		if m.Warning == warnings {
			sb.WriteString(m.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func (l *List) ErrorReport() string   { return l.report(false) }
func (l *List) WarningReport() string { return l.report(true) }

// Report lists warnings first, then errors, then a summary line.
func (l *List) Report() string {
	var sb strings.Builder
	sb.WriteString(l.WarningReport())
	sb.WriteString(l.ErrorReport())
	fmt.Fprintf(&sb, "%d error(s), %d warning(s)\n", l.errors, l.warnings)
	return sb.String()
}
