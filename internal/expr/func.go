package expr

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/types"
)

// marshalJSON serializes a $jsonb payload using the standard library, the
// same way graphjin's core/api.go and core/internal/qcode/exp.go reach for
// encoding/json directly rather than a third-party codec — there is no
// domain-specific concern here (no schema, no streaming, no struct tags)
// for a third-party JSON library to add value over; see DESIGN.md.
func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// compileFunc dispatches {$func: {NAME: [args...]}} through the function
// registry described in spec §4.D. Each case enforces the arity the spec
// names for its category (unary/binary/variadic/n-ary) before emitting.
func (c *Compiler) compileFunc(val any) (string, types.ExpressionType, error) {
	m, ok := val.(map[string]any)
	if !ok || len(m) != 1 {
		return "", types.ANY, fmt.Errorf("$expr must contain exactly one function")
	}
	var name string
	var rawArgs any
	for k, v := range m {
		name, rawArgs = k, v
	}
	args, ok := rawArgs.([]any)
	if !ok {
		return "", types.ANY, fmt.Errorf("function '%s' requires an argument array", name)
	}

	switch name {
	case "UPPER", "LOWER", "LENGTH":
		return c.unaryFunc(name, args)
	case "ADD", "SUBTRACT", "MULTIPLY", "DIVIDE", "MOD", "POW":
		return c.binaryFunc(name, args)
	case "CONCAT":
		return c.concatFunc(args)
	case "COALESCE_STRING":
		return c.coalesceFunc(args, types.TEXT)
	case "COALESCE_NUMBER":
		return c.coalesceFunc(args, types.NUMBER)
	case "SUBSTR":
		return c.substrFunc(args)
	case "GREATEST_NUMBER":
		return c.greatestFunc(args)
	case "EXTRACT_EPOCH":
		return c.extractEpochFunc(args)
	case "SUBSTRING":
		// Open question resolved (spec §9): SUBSTR is the canonical name,
		// SUBSTRING is rejected rather than accepted as an alias.
		return "", types.ANY, fmt.Errorf("Unknown function or operator")
	default:
		return "", types.ANY, fmt.Errorf("Unknown function or operator")
	}
}

func (c *Compiler) unaryFunc(name string, args []any) (string, types.ExpressionType, error) {
	if len(args) != 1 {
		return "", types.ANY, fmt.Errorf("Unary operator '%s' requires exactly 1 argument", name)
	}
	argSQL, _, err := c.Compile(args[0])
	if err != nil {
		return "", types.ANY, err
	}
	if name == "LENGTH" {
		return "LENGTH(" + argSQL + ")", types.NUMBER, nil
	}
	return name + "(" + argSQL + ")", types.TEXT, nil
}

var binaryOps = map[string]string{
	"ADD":      "+",
	"SUBTRACT": "-",
	"MULTIPLY": "*",
	"DIVIDE":   "/",
	"MOD":      "%",
	"POW":      "^",
}

func isLiteralZero(v any) bool {
	switch n := v.(type) {
	case float64:
		return n == 0
	case int:
		return n == 0
	default:
		return false
	}
}

func (c *Compiler) binaryFunc(name string, args []any) (string, types.ExpressionType, error) {
	if len(args) != 2 {
		return "", types.ANY, fmt.Errorf("Binary operator '%s' requires exactly 2 arguments", name)
	}
	if name == "DIVIDE" && isLiteralZero(args[1]) {
		return "", types.ANY, fmt.Errorf("Division by zero is not allowed")
	}
	lSQL, _, err := c.Compile(args[0])
	if err != nil {
		return "", types.ANY, err
	}
	rSQL, _, err := c.Compile(args[1])
	if err != nil {
		return "", types.ANY, err
	}
	op := binaryOps[name]
	return "(" + lSQL + " " + op + " " + rSQL + ")", types.NUMBER, nil
}

func (c *Compiler) compileArgList(args []any) ([]string, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		sql, _, err := c.Compile(a)
		if err != nil {
			return nil, err
		}
		parts[i] = sql
	}
	return parts, nil
}

func (c *Compiler) concatFunc(args []any) (string, types.ExpressionType, error) {
	if len(args) < 1 {
		return "", types.ANY, fmt.Errorf("Variable operator 'CONCAT' requires at least 1 argument")
	}
	parts, err := c.compileArgList(args)
	if err != nil {
		return "", types.ANY, err
	}
	return "(" + strings.Join(parts, " || ") + ")", types.TEXT, nil
}

func (c *Compiler) coalesceFunc(args []any, result types.ExpressionType) (string, types.ExpressionType, error) {
	fname := "COALESCE_STRING"
	if result == types.NUMBER {
		fname = "COALESCE_NUMBER"
	}
	if len(args) < 1 {
		return "", types.ANY, fmt.Errorf("Variable operator '%s' requires at least 1 argument", fname)
	}
	parts, err := c.compileArgList(args)
	if err != nil {
		return "", types.ANY, err
	}
	return "COALESCE(" + strings.Join(parts, ", ") + ")", result, nil
}

func (c *Compiler) substrFunc(args []any) (string, types.ExpressionType, error) {
	if len(args) != 3 {
		return "", types.ANY, fmt.Errorf("N-ary operator 'SUBSTR' requires exactly 3 arguments")
	}
	parts, err := c.compileArgList(args)
	if err != nil {
		return "", types.ANY, err
	}
	return "SUBSTR(" + strings.Join(parts, ", ") + ")", types.TEXT, nil
}

func (c *Compiler) greatestFunc(args []any) (string, types.ExpressionType, error) {
	if len(args) < 1 {
		return "", types.ANY, fmt.Errorf("Variable operator 'GREATEST_NUMBER' requires at least 1 argument")
	}
	parts, err := c.compileArgList(args)
	if err != nil {
		return "", types.ANY, err
	}
	return "GREATEST(" + strings.Join(parts, ", ") + ")", types.NUMBER, nil
}

func (c *Compiler) extractEpochFunc(args []any) (string, types.ExpressionType, error) {
	if len(args) != 1 {
		return "", types.ANY, fmt.Errorf("N-ary operator 'EXTRACT_EPOCH' requires exactly 1 argument")
	}
	argSQL, _, err := c.Compile(args[0])
	if err != nil {
		return "", types.ANY, err
	}
	return c.Dialect.EpochExtract(argSQL), types.NUMBER, nil
}
