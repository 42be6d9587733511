// Package query parses named-parameter SQL templates into driver-ready
// positional statements and binds named arguments in placeholder order.
package query

import (
	"strconv"
	"strings"

	"github.com/qwikbyte/datacore/internal/typemap"
)

// Placeholder selects the positional placeholder style of the target driver.
type Placeholder int

const (
	// Question renders every placeholder as "?" (MySQL, SQLite).
	Question Placeholder = iota
	// Dollar renders placeholders as "$1".."$n" (PostgreSQL).
	Dollar
)

// Template is one parsed named-parameter statement. Immutable after Parse;
// safe for concurrent use.
type Template struct {
	// Raw is the template text as written, with :name placeholders.
	Raw string
	// Statement is the executable text with positional placeholders.
	Statement string
	// Names holds one entry per placeholder occurrence, in source order.
	// A name referenced twice appears twice and produces two binds.
	Names []string
}

// Parse scans raw left to right and replaces every :identifier token with
// the positional placeholder of the requested style. Identifiers are runs of
// ASCII letters, digits and underscores. Text inside single- or
// double-quoted strings, backtick identifiers, line (--) and block comments
// is copied verbatim, as are "::" type casts and literal colons not followed
// by an identifier. Parsing is total: it never fails, and a template with no
// placeholders comes back unchanged.
func Parse(raw string, ph Placeholder) *Template {
	var (
		out   strings.Builder
		names []string
	)
	out.Grow(len(raw) + 8)

	for i := 0; i < len(raw); {
		c := raw[i]
		switch c {
		case '\'', '"', '`':
			j := skipQuoted(raw, i)
			out.WriteString(raw[i:j])
			i = j
		case '-':
			if i+1 < len(raw) && raw[i+1] == '-' {
				j := skipLineComment(raw, i)
				out.WriteString(raw[i:j])
				i = j
				continue
			}
			out.WriteByte(c)
			i++
		case '/':
			if i+1 < len(raw) && raw[i+1] == '*' {
				j := skipBlockComment(raw, i)
				out.WriteString(raw[i:j])
				i = j
				continue
			}
			out.WriteByte(c)
			i++
		case ':':
			if i+1 < len(raw) && raw[i+1] == ':' {
				// Type cast, not a parameter.
				out.WriteString("::")
				i += 2
				continue
			}
			j := i + 1
			for j < len(raw) && isIdentChar(raw[j]) {
				j++
			}
			if j == i+1 {
				out.WriteByte(c)
				i++
				continue
			}
			names = append(names, raw[i+1:j])
			writePlaceholder(&out, ph, len(names))
			i = j
		default:
			out.WriteByte(c)
			i++
		}
	}

	return &Template{Raw: raw, Statement: out.String(), Names: names}
}

// BindArgs resolves names against args in occurrence order and converts each
// value through the type mapper. A name absent from args binds SQL NULL;
// only a value that fails to serialize makes BindArgs fail.
func BindArgs(names []string, args map[string]any) ([]any, error) {
	out := make([]any, len(names))
	for i, name := range names {
		v, ok := args[name]
		if !ok {
			out[i] = nil
			continue
		}
		sv, err := typemap.ToStorage(v)
		if err != nil {
			return nil, err
		}
		out[i] = sv
	}
	return out, nil
}

// Unbound returns the template names that are not covered by the declared
// parameter list. Those placeholders always bind NULL at call time.
func (t *Template) Unbound(params []string) []string {
	declared := make(map[string]struct{}, len(params))
	for _, p := range params {
		declared[p] = struct{}{}
	}
	var missing []string
	seen := make(map[string]struct{})
	for _, n := range t.Names {
		if _, ok := declared[n]; ok {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		missing = append(missing, n)
	}
	return missing
}

func writePlaceholder(out *strings.Builder, ph Placeholder, n int) {
	switch ph {
	case Dollar:
		out.WriteByte('$')
		out.WriteString(strconv.Itoa(n))
	default:
		out.WriteByte('?')
	}
}

func isIdentChar(c byte) bool {
	return c == '_' ||
		(c >= 'a' && c <= 'z') ||
		(c >= 'A' && c <= 'Z') ||
		(c >= '0' && c <= '9')
}

// skipQuoted returns the index just past the quoted section opening at
// raw[start]. An unterminated quote runs to the end of the template.
func skipQuoted(raw string, start int) int {
	q := raw[start]
	for i := start + 1; i < len(raw); i++ {
		if raw[i] == q {
			return i + 1
		}
	}
	return len(raw)
}

func skipLineComment(raw string, start int) int {
	for i := start + 2; i < len(raw); i++ {
		if raw[i] == '\n' {
			return i + 1
		}
	}
	return len(raw)
}

func skipBlockComment(raw string, start int) int {
	for i := start + 2; i+1 < len(raw); i++ {
		if raw[i] == '*' && raw[i+1] == '/' {
			return i + 2
		}
	}
	return len(raw)
}
