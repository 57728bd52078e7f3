// Package types implements the spec's type lattice (component B): the
// ExpressionType enum tracked for every compiled expression node, the
// unification rule (used for the result type of $cond) and the NeedsCast
// predicate. The condition compiler's field-side casts are decided by
// castField in internal/expr, not by this package. The lattice itself carries no dialect knowledge —
// emitting the actual cast syntax (`::TEXT` vs `CAST(x AS TEXT)`) is the
// internal/dialect package's job, since that's where graphjin keeps all
// per-database rendering (dialect.Dialect.RenderCast/RenderTryCast).
package types

// ExpressionType is the closed lattice named in spec §3. ANY is the top
// element and unifies with anything; NUMBER and BOOLEAN never unify
// silently with TEXT.
type ExpressionType int

const (
	ANY ExpressionType = iota
	UUID
	DATE
	TIMESTAMP
	TEXT
	NUMBER
	BOOLEAN
	JSON
)

func (t ExpressionType) String() string {
	switch t {
	case UUID:
		return "UUID"
	case DATE:
		return "DATE"
	case TIMESTAMP:
		return "TIMESTAMP"
	case TEXT:
		return "TEXT"
	case NUMBER:
		return "NUMBER"
	case BOOLEAN:
		return "BOOLEAN"
	case JSON:
		return "JSON"
	default:
		return "ANY"
	}
}

// Unify returns the more specific of t1/t2 per §4.B: ANY unifies with
// anything, equal types unify with themselves, anything else unifies to
// ANY (the compiler falls back to no cast rather than guessing wrong).
func Unify(t1, t2 ExpressionType) ExpressionType {
	switch {
	case t1 == t2:
		return t1
	case t1 == ANY:
		return t2
	case t2 == ANY:
		return t1
	default:
		return ANY
	}
}

// NeedsCast reports whether comparing a value of type `have` against a
// counter-side of type `want` requires an explicit cast on the `have`
// side, per §4.B: NUMBER and BOOLEAN never unify silently with TEXT, so a
// TEXT-typed field compared against a NUMBER/BOOLEAN literal (or vice
// versa) needs the field side cast to the counter-side's type.
func NeedsCast(have, want ExpressionType) bool {
	if have == want || have == ANY || want == ANY {
		return false
	}
	switch want {
	case NUMBER, BOOLEAN, TEXT:
		return true
	default:
		return false
	}
}
