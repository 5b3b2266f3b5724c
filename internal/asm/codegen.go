package asm

import (
	"sort"

	"github.com/golang/glog"

	"rvasm/internal/ast"
)

// generate writes every machine statement into memory and returns them
// ordered by address. Two statements at one address are an error.
func (a *Assembler) generate(machine []*ast.Statement) []*ast.Statement {
	for _, s := range machine {
		if err := a.mem.SetStatement(s.Address, s); err != nil {
			a.errorIn(s, s.Operator(), "%v", err)
		}
	}

	sorted := make([]*ast.Statement, len(machine))
	copy(sorted, machine)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Address < sorted[j].Address })

	for i := 1; i < len(sorted); i++ {
		prev, cur := sorted[i-1], sorted[i]
		if prev.Address == cur.Address {
			a.errorIn(cur, cur.Operator(), "duplicate text segment address 0x%08x: already used by %s", cur.Address, prev.Location())
		}
	}
	glog.V(1).Infof("generated %d machine statement(s)", len(sorted))
	return sorted
}
