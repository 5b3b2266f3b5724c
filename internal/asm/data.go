package asm

import (
	"math"
	"strings"

	"rvasm/internal/ast"
	"rvasm/internal/token"
)

// storeData writes the operands of data directive d at the data cursor.
func (a *Assembler) storeData(u *unit, d ast.Directive, ops []token.Token) {
	if d.IsString() {
		a.storeStrings(d, ops)
		return
	}
	a.storeNumeric(u, d, ops)
}

// alignData moves the data cursor up to a multiple of to.
func (a *Assembler) alignData(u *unit, to uint32) {
	alignCursor(u, a.ctx.dataCursor(), to)
}

// alignCursor moves cursor up to a multiple of to. A label just placed at
// the old address moves with it.
func alignCursor(u *unit, cursor *uint32, to uint32) {
	old := *cursor
	*cursor = alignUp(old, to)
	if *cursor != old {
		u.local.FixAddress(old, *cursor)
	}
}

// storeNumeric handles plain operand lists and the value:count form.
func (a *Assembler) storeNumeric(u *unit, d ast.Directive, ops []token.Token) {
	if a.ctx.AutoAlign {
		a.alignData(u, uint32(d.Width()))
	}
	for i := 0; i < len(ops); i++ {
		tok := ops[i]
		negate := false
		if tok.Kind == token.Minus || tok.Kind == token.Plus {
			if i+1 == len(ops) {
				a.errorAt(tok, "sign %q without a value", tok.Text)
				return
			}
			negate = tok.Kind == token.Minus
			i++
			tok = ops[i]
		}

		reps := int64(1)
		if i+2 < len(ops) && ops[i+1].Kind == token.Colon {
			r := ops[i+2]
			if !r.Kind.IsInteger() || r.Value <= 0 {
				a.errorAt(r, "repetition count %q must be a positive integer", r.Text)
				return
			}
			reps = r.Value
			i += 2
		}

		if d.IsInteger() {
			a.storeInteger(u, d, tok, negate, reps)
		} else {
			a.storeReal(d, tok, negate, reps)
		}
	}
}

func fitsWidth(v int64, width int) bool {
	switch width {
	case 1:
		return v >= math.MinInt8 && v <= math.MaxUint8
	case 2:
		return v >= math.MinInt16 && v <= math.MaxUint16
	case 4:
		return v >= math.MinInt32 && v <= math.MaxUint32
	}
	return true
}

func truncate(v int64, width int) int64 {
	if width >= 8 {
		return v
	}
	return v & (1<<(8*width) - 1)
}

// storeInteger stores an integer literal or a label address reps times.
// Literals wider than the directive are truncated with a warning; labels
// not yet defined are stored as zero and patched later.
func (a *Assembler) storeInteger(u *unit, d ast.Directive, tok token.Token, negate bool, reps int64) {
	width := d.Width()
	cursor := a.ctx.dataCursor()

	switch {
	case tok.Kind.IsInteger():
		v := tok.Value
		if negate {
			v = -v
		}
		if !fitsWidth(v, width) {
			t := truncate(v, width)
			a.warnAt(tok, "value 0x%x is out-of-range and truncated to 0x%x", uint64(v), uint64(t))
			v = t
		}
		for r := int64(0); r < reps; r++ {
			a.writeData(tok, *cursor, v, width)
			*cursor += uint32(width)
		}

	case isLabelName(tok) && !negate:
		sym, defined := u.local.LookupLocalOrGlobal(tok.Text)
		for r := int64(0); r < reps; r++ {
			if defined {
				a.writeData(tok, *cursor, int64(sym.Address), width)
			} else {
				a.writeData(tok, *cursor, 0, width)
				u.forward = append(u.forward, forwardRef{patch: *cursor, width: min(width, 4), tok: tok, table: u.local})
			}
			*cursor += uint32(width)
		}

	default:
		a.errorAt(tok, "%q is not a valid integer value for %s", tok.Text, d)
	}
}

// writeData stores v at addr, splitting doublewords into two little
// endian words.
func (a *Assembler) writeData(tok token.Token, addr uint32, v int64, width int) {
	var err error
	if width == 8 {
		if err = a.mem.Set(addr, int64(uint32(v)), 4); err == nil {
			err = a.mem.Set(addr+4, int64(uint32(uint64(v)>>32)), 4)
		}
	} else {
		err = a.mem.Set(addr, v, width)
	}
	if err != nil {
		a.errorAt(tok, "%v", err)
	}
}

func realValue(tok token.Token) (float64, bool) {
	switch {
	case tok.Kind == token.RealNumber:
		return tok.Real, true
	case tok.Kind.IsInteger():
		return float64(tok.Value), true
	case tok.Kind == token.Identifier:
		switch strings.ToLower(tok.Text) {
		case "inf", "infinity":
			return math.Inf(1), true
		}
	}
	return 0, false
}

// storeReal stores a .float or .double value reps times. Unlike integers,
// out-of-range values are rejected.
func (a *Assembler) storeReal(d ast.Directive, tok token.Token, negate bool, reps int64) {
	v, ok := realValue(tok)
	if !ok {
		a.errorAt(tok, "%q is not a valid floating point value for %s", tok.Text, d)
		return
	}
	if negate {
		v = -v
	}
	if d == ast.DirFloat && !math.IsInf(v, 0) && math.Abs(v) > math.MaxFloat32 {
		a.errorAt(tok, "value %q is out-of-range for %s", tok.Text, d)
		return
	}

	cursor := a.ctx.dataCursor()
	for r := int64(0); r < reps; r++ {
		var err error
		if d == ast.DirFloat {
			err = a.mem.Set(*cursor, int64(math.Float32bits(float32(v))), 4)
		} else {
			err = a.mem.SetDouble(*cursor, v)
		}
		if err != nil {
			a.errorAt(tok, "%v", err)
		}
		*cursor += uint32(d.Width())
	}
}

// storeStrings writes each quoted string byte by byte. .asciz and .string
// append a zero byte.
func (a *Assembler) storeStrings(d ast.Directive, ops []token.Token) {
	cursor := a.ctx.dataCursor()
	for _, tok := range ops {
		if tok.Kind != token.QuotedString {
			a.errorAt(tok, "%q is not a valid string for %s", tok.Text, d)
			continue
		}
		body := tok.Text
		if len(body) >= 2 {
			body = body[1 : len(body)-1]
		}
		s, err := token.Unescape(body)
		if err != nil {
			a.errorAt(tok, "%v", err)
		}
		if d != ast.DirASCII {
			s += "\x00"
		}
		for i := 0; i < len(s); i++ {
			if err := a.mem.Set(*cursor, int64(s[i]), 1); err != nil {
				a.errorAt(tok, "%v", err)
				return
			}
			*cursor++
		}
	}
}
