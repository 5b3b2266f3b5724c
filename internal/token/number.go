package token

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseInteger parses a signed decimal, 0x hex, 0b binary, or octal literal
// (0o prefix or a leading zero). Hex, binary and octal literals may spell
// any 64-bit pattern.
func ParseInteger(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty")
	}

	neg := false
	if s[0] == '+' || s[0] == '-' {
		if s[0] == '-' {
			neg = true
		}
		s = s[1:]
	}

	base := 10
	if len(s) > 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			base = 16
		case 'b', 'B':
			base = 2
		case 'o', 'O':
			base = 8
		}
		if base != 10 {
			s = s[2:]
		}
	}
	if base == 10 && len(s) > 1 && s[0] == '0' {
		base = 8
		s = s[1:]
	}

	n, err := strconv.ParseUint(s, base, 64)
	if err != nil {
		return 0, err
	}
	if base == 10 && (n > 1<<63 || (n == 1<<63 && !neg)) {
		return 0, fmt.Errorf("%s out of range", s)
	}
	v := int64(n)
	if neg {
		v = -v
	}
	return v, nil
}

// ParseReal parses a decimal floating point literal.
func ParseReal(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

func looksReal(s string) bool {
	s = strings.TrimLeft(s, "+-")
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return false
	}
	return strings.ContainsAny(s, ".eE")
}

// ParseChar decodes the body of a single-quoted character literal.
func ParseChar(body string) (int64, error) {
	r, err := Unescape(body)
	if err != nil {
		return 0, err
	}
	runes := []rune(r)
	if len(runes) != 1 {
		return 0, fmt.Errorf("character literal '%s' must hold one character", body)
	}
	return int64(runes[0]), nil
}

// Unescape decodes backslash escapes: \n \t \r \\ \" \' \b \f \0, three
// octal digits, and \u followed by four hex digits. A malformed escape is
// copied through verbatim and reported; decoding carries on after it.
func Unescape(s string) (string, error) {
	if !strings.Contains(s, `\`) {
		return s, nil
	}
	var sb strings.Builder
	var first error
	fail := func(err error) {
		if first == nil {
			first = err
		}
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(s) {
			sb.WriteByte('\\')
			fail(fmt.Errorf("dangling escape at end of %q", s))
			break
		}
		switch c = s[i]; c {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case 'b':
			sb.WriteByte('\b')
		case 'f':
			sb.WriteByte('\f')
		case '\\', '"', '\'':
			sb.WriteByte(c)
		case '0', '1', '2', '3', '4', '5', '6', '7':
			if i+2 < len(s) && isOctal(s[i+1]) && isOctal(s[i+2]) {
				v, err := strconv.ParseUint(s[i:i+3], 8, 8)
				if err != nil {
					fail(fmt.Errorf("octal escape \\%s out of range", s[i:i+3]))
					sb.WriteString(s[i-1 : i+3])
				} else {
					sb.WriteByte(byte(v))
				}
				i += 2
			} else if c == '0' {
				sb.WriteByte(0)
			} else {
				fail(fmt.Errorf("invalid octal escape \\%c", c))
				sb.WriteByte('\\')
				sb.WriteByte(c)
			}
		case 'u':
			if i+5 > len(s) {
				fail(fmt.Errorf("incomplete unicode escape \\%s", s[i:]))
				sb.WriteString(s[i-1:])
				i = len(s)
				break
			}
			v, err := strconv.ParseUint(s[i+1:i+5], 16, 32)
			if err != nil {
				fail(fmt.Errorf("invalid unicode escape \\u%s", s[i+1:i+5]))
				sb.WriteString(s[i-1 : i+5])
			} else {
				sb.WriteRune(rune(v))
			}
			i += 4
		default:
			fail(fmt.Errorf("unknown escape \\%c", c))
			sb.WriteByte('\\')
			sb.WriteByte(c)
		}
	}
	return sb.String(), first
}

func isOctal(c byte) bool { return c >= '0' && c <= '7' }
