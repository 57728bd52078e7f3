// Package lex implements the spec's lexical utilities (component A):
// identifier validation, literal escaping, identifier double-quoting and
// dialect function-call shaping. It mirrors the small helper methods
// graphjin's core/internal/psql/util.go hangs off compilerContext
// (quoted, squoted, colWithTable) but as free functions, since this module
// keeps the writer context one layer up in internal/expr and internal/plan.
package lex

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/lib/pq"
)

// ValidateIdentifier enforces invariant 2: a table or field name begins
// with a lowercase ASCII letter, followed by lowercase letters, digits, or
// underscore.
func ValidateIdentifier(s string) error {
	if s == "" {
		return fmt.Errorf("identifier %q is empty", s)
	}
	if s[0] < 'a' || s[0] > 'z' {
		return fmt.Errorf("identifier %q must start with a lowercase letter", s)
	}
	for i := 1; i < len(s); i++ {
		c := s[i]
		switch {
		case c >= 'a' && c <= 'z':
		case c >= '0' && c <= '9':
		case c == '_':
		default:
			return fmt.Errorf("identifier %q contains a disallowed character %q", s, string(c))
		}
	}
	return nil
}

// EscapeString single-quote-escapes a string literal per invariant 5:
// every `'` becomes `''`. This is written by hand rather than through
// pq.QuoteLiteral because that helper switches to Postgres's `E'...'`
// escape-string syntax whenever the input contains a backslash, which
// would break the corpus's "contiguous '...'-token" invariant (§8.1) for
// values containing backslashes; doubling is all the spec requires or
// tests for. See DESIGN.md for the full reasoning and where pq IS used
// (identifier quoting, directly below).
func EscapeString(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for i := 0; i < len(s); i++ {
		if s[i] == '\'' {
			b.WriteString("''")
		} else {
			b.WriteByte(s[i])
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// EscapeNumber rejects non-finite values and renders the rest with Go's
// shortest round-tripping float format.
func EscapeNumber(n float64) (string, error) {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return "", fmt.Errorf("number %v is not finite", n)
	}
	return strconv.FormatFloat(n, 'g', -1, 64), nil
}

// EscapeBool renders TRUE/FALSE.
func EscapeBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// EscapeNull renders the SQL NULL keyword.
func EscapeNull() string { return "NULL" }

// DoubleQuote wraps identifier for use as a projection alias (invariant 4),
// using lib/pq's identifier quoting so embedded double quotes are doubled
// the same way a Postgres client library already has to get right.
func DoubleQuote(identifier string) string {
	return pq.QuoteIdentifier(identifier)
}

// ApplyFunction renders NAME(arg1, arg2, …).
func ApplyFunction(name string, args []string) string {
	return name + "(" + strings.Join(args, ", ") + ")"
}
