package mutate

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strings"
)

// environment holds the per-compile substitution state the partial
// evaluator consults for every NEW_ROW.field reference (spec §4.H step 3):
// values carries the bound expression for fields that are part of this
// mutation (insert newRow/defaults, or update's updates map); updated
// marks which of those are eligible for full constant folding. A field
// with no entry in values is read back as a reference to its pre-existing
// stored value, table.field.
type environment struct {
	table     string
	values    map[string]any
	updated   map[string]bool
	variables map[string]any
}

func (e *environment) sub(field string) any {
	if v, ok := e.values[field]; ok {
		return v
	}
	return map[string]any{"$field": e.table + "." + field}
}

func splitFieldKey(key string) (table, field string, ok bool) {
	t, f, found := strings.Cut(key, ".")
	if !found || t == "" || f == "" || strings.Contains(f, "->") {
		return "", "", false
	}
	return t, f, true
}

var fieldOpsSet = map[string]bool{
	"$eq": true, "$ne": true, "$lt": true, "$le": true, "$gt": true, "$ge": true,
	"$in": true, "$nin": true, "$like": true, "$regex": true,
}

func isOperatorMap(m map[string]any) bool {
	if len(m) == 0 {
		return false
	}
	for k := range m {
		if !fieldOpsSet[k] {
			return false
		}
	}
	return true
}

func sortedAnyKeys(m map[string]any) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// partialEvalCond implements spec §4.H step 4: substitute and constant-fold
// everywhere a sub-condition references an updated NEW_ROW field, and
// rewrite NEW_ROW.f to table.f elsewhere. Returns either a Go bool (fully
// resolved) or the residual condition tree (still in the compiler's
// map[string]any/[]any/scalar shape, ready for expr.Compiler.CompileCond).
func partialEvalCond(node any, env *environment) any {
	switch v := node.(type) {
	case bool:
		return v
	case map[string]any:
		if len(v) == 1 {
			for k, val := range v {
				switch k {
				case "$and":
					items, _ := val.([]any)
					return foldAndOr(items, env, true)
				case "$or":
					items, _ := val.([]any)
					return foldAndOr(items, env, false)
				case "$not":
					inner := partialEvalCond(val, env)
					if b, ok := inner.(bool); ok {
						return !b
					}
					return map[string]any{"$not": inner}
				case "$exists":
					m, ok := val.(map[string]any)
					if !ok {
						return node
					}
					out := make(map[string]any, len(m))
					for k2, v2 := range m {
						out[k2] = v2
					}
					out["condition"] = partialEvalCond(m["condition"], env)
					return map[string]any{"$exists": out}
				}
			}
		}
		keys := sortedAnyKeys(v)
		residual := make([]any, 0, len(keys))
		for _, k := range keys {
			val := v[k]
			var r any
			switch k {
			case "$and", "$or", "$not", "$exists":
				r = partialEvalCond(map[string]any{k: val}, env)
			default:
				r = partialEvalFieldPredicate(k, val, env)
			}
			if b, ok := r.(bool); ok {
				if !b {
					return false
				}
				continue
			}
			residual = append(residual, r)
		}
		if len(residual) == 0 {
			return true
		}
		if len(residual) == 1 {
			return residual[0]
		}
		allMaps := true
		for _, r := range residual {
			if _, ok := r.(map[string]any); !ok {
				allMaps = false
				break
			}
		}
		if allMaps {
			merged := map[string]any{}
			for _, r := range residual {
				for k2, v2 := range r.(map[string]any) {
					merged[k2] = v2
				}
			}
			return merged
		}
		return map[string]any{"$and": residual}
	default:
		return node
	}
}

func foldAndOr(items []any, env *environment, isAnd bool) any {
	residual := make([]any, 0, len(items))
	for _, it := range items {
		r := partialEvalCond(it, env)
		if b, ok := r.(bool); ok {
			if isAnd && !b {
				return false
			}
			if !isAnd && b {
				return true
			}
			continue
		}
		residual = append(residual, r)
	}
	if len(residual) == 0 {
		return isAnd
	}
	if len(residual) == 1 {
		return residual[0]
	}
	key := "$and"
	if !isAnd {
		key = "$or"
	}
	return map[string]any{key: residual}
}

func partialEvalFieldPredicate(key string, val any, env *environment) any {
	ft, fn, ok := splitFieldKey(key)
	if !ok || ft != "NEW_ROW" {
		return map[string]any{key: substituteExpr(val, env)}
	}
	if env.updated[fn] {
		if litVal, resolved := evalExprConst(env.sub(fn), env); resolved {
			if b, ok2 := evalPredicateConst(litVal, val, env); ok2 {
				return b
			}
		}
	}
	return map[string]any{env.table + "." + fn: substituteExpr(val, env)}
}

// substituteExpr rewrites NEW_ROW field references inside an expression
// tree without attempting to fold it to a constant; used for the operand
// side of predicates and function arguments that remain in the residual.
func substituteExpr(node any, env *environment) any {
	switch v := node.(type) {
	case map[string]any:
		if len(v) == 1 {
			for k, val := range v {
				switch k {
				case "$field":
					path, _ := val.(string)
					ft, fn, ok := splitFieldKey(path)
					if ok && ft == "NEW_ROW" {
						if env.updated[fn] {
							return env.sub(fn)
						}
						return map[string]any{"$field": env.table + "." + fn}
					}
					return node
				case "$cond":
					m, _ := val.(map[string]any)
					return map[string]any{"$cond": map[string]any{
						"if":   partialEvalCond(m["if"], env),
						"then": substituteExpr(m["then"], env),
						"else": substituteExpr(m["else"], env),
					}}
				case "$func":
					m, _ := val.(map[string]any)
					out := map[string]any{}
					for fname, rawArgs := range m {
						args, _ := rawArgs.([]any)
						newArgs := make([]any, len(args))
						for i, a := range args {
							newArgs[i] = substituteExpr(a, env)
						}
						out[fname] = newArgs
					}
					return map[string]any{"$func": out}
				default:
					return map[string]any{k: substituteExpr(val, env)}
				}
			}
		}
		out := make(map[string]any, len(v))
		for k, val := range v {
			out[k] = substituteExpr(val, env)
		}
		return out
	case []any:
		out := make([]any, len(v))
		for i, it := range v {
			out[i] = substituteExpr(it, env)
		}
		return out
	default:
		return node
	}
}

// evalExprConst attempts to reduce an expression-shaped node to a literal
// Go value without emitting SQL. It only succeeds for updated NEW_ROW
// fields, variables, literals, and functions/conditionals over values that
// themselves reduce — references to unchanged NEW_ROW fields or any other
// table's columns are never resolvable here, since the evaluator has no
// access to stored row data.
func evalExprConst(node any, env *environment) (any, bool) {
	switch v := node.(type) {
	case map[string]any:
		if len(v) != 1 {
			return nil, false
		}
		for k, val := range v {
			switch k {
			case "$field":
				path, _ := val.(string)
				ft, fn, ok := splitFieldKey(path)
				if !ok {
					return nil, false
				}
				if ft == "NEW_ROW" && env.updated[fn] {
					return evalExprConst(env.sub(fn), env)
				}
				return nil, false
			case "$var":
				name, _ := val.(string)
				if v, ok := env.lookupVar(name); ok {
					return v, true
				}
				return nil, false
			case "$uuid", "$date", "$timestamp":
				s, ok := val.(string)
				return s, ok
			case "$jsonb":
				return val, true
			case "$cond":
				m, _ := val.(map[string]any)
				ifRes := partialEvalCond(m["if"], env)
				b, ok := ifRes.(bool)
				if !ok {
					return nil, false
				}
				if b {
					return evalExprConst(m["then"], env)
				}
				return evalExprConst(m["else"], env)
			case "$func":
				m, _ := val.(map[string]any)
				if len(m) != 1 {
					return nil, false
				}
				for fname, rawArgs := range m {
					args, ok := rawArgs.([]any)
					if !ok {
						return nil, false
					}
					resolved := make([]any, len(args))
					for i, a := range args {
						rv, ok := evalExprConst(a, env)
						if !ok {
							return nil, false
						}
						resolved[i] = rv
					}
					return computeFunc(fname, resolved)
				}
			}
		}
		return nil, false
	case []any:
		return nil, false
	default:
		return v, true
	}
}

func (e *environment) lookupVar(name string) (any, bool) {
	if e.variables == nil {
		return nil, false
	}
	v, ok := e.variables[name]
	return v, ok
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

func computeFunc(name string, args []any) (any, bool) {
	switch name {
	case "UPPER", "LOWER", "LENGTH":
		if len(args) != 1 {
			return nil, false
		}
		s, ok := args[0].(string)
		if !ok {
			return nil, false
		}
		switch name {
		case "UPPER":
			return strings.ToUpper(s), true
		case "LOWER":
			return strings.ToLower(s), true
		default:
			return float64(len(s)), true
		}
	case "ADD", "SUBTRACT", "MULTIPLY", "DIVIDE", "MOD", "POW":
		if len(args) != 2 {
			return nil, false
		}
		a, ok1 := toFloat(args[0])
		b, ok2 := toFloat(args[1])
		if !ok1 || !ok2 {
			return nil, false
		}
		switch name {
		case "ADD":
			return a + b, true
		case "SUBTRACT":
			return a - b, true
		case "MULTIPLY":
			return a * b, true
		case "DIVIDE":
			if b == 0 {
				return nil, false
			}
			return a / b, true
		case "MOD":
			if b == 0 {
				return nil, false
			}
			return math.Mod(a, b), true
		default:
			return math.Pow(a, b), true
		}
	case "CONCAT":
		var b strings.Builder
		for _, a := range args {
			s, ok := a.(string)
			if !ok {
				return nil, false
			}
			b.WriteString(s)
		}
		return b.String(), true
	case "COALESCE_STRING", "COALESCE_NUMBER":
		for _, a := range args {
			if a != nil {
				return a, true
			}
		}
		return nil, true
	case "SUBSTR":
		if len(args) != 3 {
			return nil, false
		}
		s, ok := args[0].(string)
		start, ok2 := toFloat(args[1])
		length, ok3 := toFloat(args[2])
		if !ok || !ok2 || !ok3 {
			return nil, false
		}
		i := int(start) - 1
		l := int(length)
		if i < 0 {
			i = 0
		}
		if i > len(s) {
			i = len(s)
		}
		end := i + l
		if end > len(s) {
			end = len(s)
		}
		if end < i {
			end = i
		}
		return s[i:end], true
	case "GREATEST_NUMBER":
		if len(args) == 0 {
			return nil, false
		}
		best, ok := toFloat(args[0])
		if !ok {
			return nil, false
		}
		for _, a := range args[1:] {
			f, ok := toFloat(a)
			if !ok {
				return nil, false
			}
			if f > best {
				best = f
			}
		}
		return best, true
	default:
		return nil, false
	}
}

func normalizeOps(predNode any) []struct {
	op  string
	rhs any
} {
	if m, ok := predNode.(map[string]any); ok && isOperatorMap(m) {
		keys := sortedAnyKeys(m)
		out := make([]struct {
			op  string
			rhs any
		}, len(keys))
		for i, k := range keys {
			out[i] = struct {
				op  string
				rhs any
			}{k, m[k]}
		}
		return out
	}
	return []struct {
		op  string
		rhs any
	}{{"$eq", predNode}}
}

// evalPredicateConst evaluates a resolved field value against a predicate
// (spec §4.H step 4's "interpreter mode") returning the boolean result when
// every operand reduces to a literal.
func evalPredicateConst(lhs any, predNode any, env *environment) (bool, bool) {
	ops := normalizeOps(predNode)
	result := true
	for _, o := range ops {
		rhs, resolved := evalExprConst(o.rhs, env)
		if !resolved {
			return false, false
		}
		ok, applied := applyOp(o.op, lhs, rhs)
		if !applied {
			return false, false
		}
		if !ok {
			result = false
		}
	}
	return result, true
}

func applyOp(op string, lhs, rhs any) (result bool, applied bool) {
	switch op {
	case "$eq":
		return valuesEqual(lhs, rhs), true
	case "$ne":
		return !valuesEqual(lhs, rhs), true
	case "$lt", "$le", "$gt", "$ge":
		return compareOrdered(op, lhs, rhs)
	case "$in", "$nin":
		items, ok := rhs.([]any)
		if !ok {
			return false, false
		}
		found := false
		for _, it := range items {
			if valuesEqual(lhs, it) {
				found = true
				break
			}
		}
		if op == "$in" {
			return found, true
		}
		return !found, true
	case "$like":
		ls, ok1 := lhs.(string)
		rs, ok2 := rhs.(string)
		if !ok1 || !ok2 {
			return false, false
		}
		return matchLike(ls, rs), true
	case "$regex":
		ls, ok1 := lhs.(string)
		rs, ok2 := rhs.(string)
		if !ok1 || !ok2 {
			return false, false
		}
		re, err := regexp.Compile(rs)
		if err != nil {
			return false, false
		}
		return re.MatchString(ls), true
	default:
		return false, false
	}
}

func valuesEqual(a, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, ok2 := toFloat(b); ok2 {
			return af == bf
		}
	}
	return fmt.Sprint(a) == fmt.Sprint(b) && sameKind(a, b)
}

func sameKind(a, b any) bool {
	_, aStr := a.(string)
	_, bStr := b.(string)
	_, aBool := a.(bool)
	_, bBool := b.(bool)
	if aStr != bStr || aBool != bBool {
		return false
	}
	return true
}

func compareOrdered(op string, a, b any) (bool, bool) {
	if af, ok := toFloat(a); ok {
		if bf, ok2 := toFloat(b); ok2 {
			return orderResult(op, af < bf, af == bf), true
		}
	}
	as, ok1 := a.(string)
	bs, ok2 := b.(string)
	if ok1 && ok2 {
		return orderResult(op, as < bs, as == bs), true
	}
	return false, false
}

func orderResult(op string, less, eq bool) bool {
	switch op {
	case "$lt":
		return less
	case "$le":
		return less || eq
	case "$gt":
		return !less && !eq
	case "$ge":
		return !less
	default:
		return false
	}
}

func matchLike(s, pattern string) bool {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteString(".")
		default:
			b.WriteString(regexp.QuoteMeta(string(r)))
		}
	}
	b.WriteByte('$')
	re, err := regexp.Compile(b.String())
	if err != nil {
		return false
	}
	return re.MatchString(s)
}
