// Package fieldpath implements the spec's field-path resolver (component
// C): parsing "T.F", "T.F->seg->seg" and "T.F->'seg'" against the schema
// and classifying JSON access. It is grounded on the column-resolution
// half of graphjin's core/internal/qcode (processColumn in exp.go), which
// walks a dotted/arrow path against a registered table in the same way,
// generalized here to work over any schema.TableLookup (including the
// NEW_ROW overlay the mutation evaluator installs).
package fieldpath

import (
	"fmt"
	"strings"

	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/lex"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// FieldPath is a resolved reference from "table.field[->json…]" to its
// schema record (spec §3).
type FieldPath struct {
	Table           string
	Field           string
	JSONAccess      []string
	JSONExtractText bool
	FieldConfig     schema.Field
}

// Parse implements the §4.C algorithm.
func Parse(path string, lookup schema.TableLookup) (*FieldPath, error) {
	tableName, tail, ok := strings.Cut(path, ".")
	if !ok {
		return nil, fmt.Errorf("field path %q must be of the form table.field", path)
	}
	if tableName == "" || tail == "" {
		return nil, fmt.Errorf("field path %q has an empty table or field part", path)
	}
	if tableName != "NEW_ROW" {
		if err := lex.ValidateIdentifier(tableName); err != nil {
			return nil, err
		}
	}

	table, ok := lookup.LookupTable(tableName)
	if !ok {
		return nil, fmt.Errorf("Table '%s' is not allowed or does not exist", tableName)
	}

	segments := strings.Split(tail, "->")
	fieldName := segments[0]
	if err := lex.ValidateIdentifier(fieldName); err != nil {
		return nil, err
	}

	field, ok := table.Field(fieldName)
	if !ok {
		return nil, fmt.Errorf("Field '%s' is not allowed or does not exist in '%s'", fieldName, tableName)
	}

	jsonAccess := make([]string, 0, len(segments)-1)
	for _, raw := range segments[1:] {
		seg := unwrapQuotes(raw)
		if seg == "" {
			return nil, fmt.Errorf("JSON path segment in %q is empty", path)
		}
		jsonAccess = append(jsonAccess, seg)
	}

	if len(jsonAccess) > 0 && field.Type != schema.TypeObject {
		return nil, fmt.Errorf("JSON path access '%s' is only allowed on JSON fields", jsonAccess[0])
	}

	return &FieldPath{
		Table:           tableName,
		Field:           fieldName,
		JSONAccess:      jsonAccess,
		JSONExtractText: len(jsonAccess) > 0,
		FieldConfig:     field,
	}, nil
}

func unwrapQuotes(seg string) string {
	if len(seg) >= 2 && seg[0] == '\'' && seg[len(seg)-1] == '\'' {
		return seg[1 : len(seg)-1]
	}
	return seg
}

// WriteValueSite emits the path as used at a value site (comparison RHS or
// function argument): "T.F" for scalar fields, or
// "T.F->'seg1'->…->'segk-1'->>'segk'" for JSON access (§4.C Emission).
func (fp *FieldPath) WriteValueSite(w *strings.Builder) {
	w.WriteString(fp.Table)
	w.WriteByte('.')
	w.WriteString(fp.Field)
	last := len(fp.JSONAccess) - 1
	for i, seg := range fp.JSONAccess {
		if i == last {
			w.WriteString("->>'")
		} else {
			w.WriteString("->'")
		}
		w.WriteString(seg)
		w.WriteByte('\'')
	}
}

// Render returns the rendered form of WriteValueSite as a string.
func (fp *FieldPath) Render() string {
	var b strings.Builder
	fp.WriteValueSite(&b)
	return b.String()
}

// ProjectionAlias is the alias used in a SELECT projection: the original
// dotted-plus-arrow path as given, unmodified (§4.C: "produce the same
// expression and alias as the dotted-plus-arrow original").
func (fp *FieldPath) ProjectionAlias(original string) string {
	return original
}

// IsScalarJSON reports whether this path resolves to JSON-extracted text
// (used by the condition compiler's cast rules, §4.E).
func (fp *FieldPath) IsScalarJSON() bool {
	return len(fp.JSONAccess) > 0
}
