package arch

import (
	"fmt"
	"strings"

	"rvasm/internal/token"
)

// Registry holds the instruction set, keyed by mnemonic. Overloads keep
// their registration order.
type Registry struct {
	regs   *RegisterFile
	byName map[string][]Instruction
	all    []Instruction
	lx     *token.Lexer
}

func NewRegistry(regs *RegisterFile) *Registry {
	r := &Registry{regs: regs, byName: map[string][]Instruction{}}
	r.lx = token.NewLexer(r)
	return r
}

func (r *Registry) Registers() *RegisterFile { return r.regs }

func (r *Registry) IsOperator(name string) bool {
	_, ok := r.byName[strings.ToLower(name)]
	return ok
}

func (r *Registry) IsRegisterName(name string) bool   { return r.regs.IsRegisterName(name) }
func (r *Registry) IsRegisterNumber(name string) bool { return r.regs.IsRegisterNumber(name) }
func (r *Registry) IsDirective(string) bool           { return false }

// Lookup returns every overload of mnemonic in registration order.
func (r *Registry) Lookup(mnemonic string) []Instruction {
	return r.byName[strings.ToLower(mnemonic)]
}

func (r *Registry) All() []Instruction { return r.all }

func (r *Registry) parseExample(example string) (string, []token.Kind) {
	name := strings.ToLower(strings.Fields(example)[0])
	// The mnemonic must be known before its example is tokenized.
	if _, ok := r.byName[name]; !ok {
		r.byName[name] = nil
	}
	toks, msgs := r.lx.Tokenize(token.SourceLine{Text: example})
	if len(msgs) > 0 {
		panic(fmt.Sprintf("bad instruction example %q: %s", example, msgs[0].Text))
	}
	return name, toks.Kinds()[1:]
}

func (r *Registry) add(name string, in Instruction) {
	r.byName[name] = append(r.byName[name], in)
	r.all = append(r.all, in)
}

func (r *Registry) AddBasic(example, desc string, branch bool, enc EncodeFunc) *Basic {
	name, format := r.parseExample(example)
	b := &Basic{spec: spec{name: name, example: example, desc: desc, format: format}, Branch: branch, encode: enc}
	r.add(name, b)
	return b
}

func (r *Registry) AddExtended(example, desc string, templates ...string) *Extended {
	name, format := r.parseExample(example)
	e := &Extended{spec: spec{name: name, example: example, desc: desc, format: format}, Templates: templates}
	r.add(name, e)
	return e
}
