// Package symbol implements label tables: one global table per assembly
// run and one local table per source file, the latter falling back to the
// global table on lookup.
package symbol

import (
	"errors"
	"fmt"
	"sort"
)

// MainSymbol is the global label the runtime starts execution at.
const MainSymbol = "main"

var ErrNotFound = errors.New("symbol not found")

type Symbol struct {
	Name    string
	Address uint32
	IsData  bool
}

// DuplicateError reports an attempt to add a name a table already holds.
type DuplicateError struct {
	Name     string
	Existing Symbol
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("label %q already defined at 0x%08x", e.Name, e.Existing.Address)
}

type Table struct {
	name    string
	symbols map[string]*Symbol
	global  *Table
}

func NewGlobal() *Table {
	return &Table{name: "(global)", symbols: map[string]*Symbol{}}
}

// NewLocal creates the table of one file. global may be nil.
func NewLocal(file string, global *Table) *Table {
	return &Table{name: file, symbols: map[string]*Symbol{}, global: global}
}

func (t *Table) Name() string { return t.name }

func (t *Table) Global() *Table { return t.global }

func (t *Table) Add(name string, address uint32, isData bool) error {
	if s, ok := t.symbols[name]; ok {
		return &DuplicateError{Name: name, Existing: *s}
	}
	t.symbols[name] = &Symbol{Name: name, Address: address, IsData: isData}
	return nil
}

func (t *Table) Lookup(name string) (Symbol, bool) {
	s, ok := t.symbols[name]
	if !ok {
		return Symbol{}, false
	}
	return *s, true
}

func (t *Table) Address(name string) (uint32, error) {
	if s, ok := t.symbols[name]; ok {
		return s.Address, nil
	}
	return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
}

// AddressLocalOrGlobal looks name up here, then in the linked global table.
func (t *Table) AddressLocalOrGlobal(name string) (uint32, error) {
	if s, ok := t.symbols[name]; ok {
		return s.Address, nil
	}
	if t.global != nil {
		return t.global.Address(name)
	}
	return 0, fmt.Errorf("%w: %s", ErrNotFound, name)
}

func (t *Table) LookupLocalOrGlobal(name string) (Symbol, bool) {
	if s, ok := t.Lookup(name); ok {
		return s, true
	}
	if t.global != nil {
		return t.global.Lookup(name)
	}
	return Symbol{}, false
}

func (t *Table) Remove(name string) {
	delete(t.symbols, name)
}

// FixAddress moves every symbol at oldAddress to newAddress.
func (t *Table) FixAddress(oldAddress, newAddress uint32) {
	for _, s := range t.symbols {
		if s.Address == oldAddress {
			s.Address = newAddress
		}
	}
}

func (t *Table) Clear() {
	t.symbols = map[string]*Symbol{}
}

func (t *Table) Len() int { return len(t.symbols) }

// Symbols returns every entry ordered by address, then name.
func (t *Table) Symbols() []Symbol {
	out := make([]Symbol, 0, len(t.symbols))
	for _, s := range t.symbols {
		out = append(out, *s)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Address != out[j].Address {
			return out[i].Address < out[j].Address
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// DataSymbols returns the entries marked as data labels.
func (t *Table) DataSymbols() []Symbol {
	var out []Symbol
	for _, s := range t.Symbols() {
		if s.IsData {
			out = append(out, s)
		}
	}
	return out
}

// TextSymbols returns the entries marked as text labels.
func (t *Table) TextSymbols() []Symbol {
	var out []Symbol
	for _, s := range t.Symbols() {
		if !s.IsData {
			out = append(out, s)
		}
	}
	return out
}
