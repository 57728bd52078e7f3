// Package schema holds the closed-world description of tables, fields,
// relationships and variables that every compile in this module is checked
// against. Nothing under this package talks to a database: it is the static
// configuration the compiler consults, analogous to graphjin's
// core/internal/sdata.DBSchema but shaped for this module's own query forms.
package schema

import "fmt"

// FieldType enumerates the declared storage type of a table column.
type FieldType int

const (
	TypeUUID FieldType = iota
	TypeString
	TypeNumber
	TypeBoolean
	TypeDateTime
	TypeDate
	TypeObject
)

func (t FieldType) String() string {
	switch t {
	case TypeUUID:
		return "uuid"
	case TypeString:
		return "string"
	case TypeNumber:
		return "number"
	case TypeBoolean:
		return "boolean"
	case TypeDateTime:
		return "datetime"
	case TypeDate:
		return "date"
	case TypeObject:
		return "object"
	default:
		return "unknown"
	}
}

// Field is a single column declaration.
type Field struct {
	Name     string
	Type     FieldType
	Nullable bool
	// Default, when set, is rendered in place of a missing value during
	// INSERT partial evaluation (see internal/mutate).
	Default Expr
}

// Expr holds an expression value in the same dynamically-typed shape the
// expression compiler (internal/expr) accepts: a literal or a single-key
// {$tag: ...} map. It is an empty interface so the schema package never
// imports the expression compiler (it sits below expr in the dependency
// order); the mutate package passes field defaults to the compiler as-is.
type Expr interface{}

// TableSchema is an ordered set of fields. Field names are unique within a
// table; Fields preserves declaration order.
type TableSchema struct {
	Name   string
	Fields []Field
}

// Field looks up a column by name.
func (t TableSchema) Field(name string) (Field, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return Field{}, false
}

// Relationship links table.field to toTable.toField. The planner treats
// relationships symmetrically: a relationship declared from posts.user_id
// to users.id can be traversed starting from either table.
type Relationship struct {
	Table   string
	Field   string
	ToTable string
	ToField string
}

// Reverse returns the relationship as seen from ToTable looking back at
// Table, used by the join-discovery algorithm in internal/plan.
func (r Relationship) Reverse() Relationship {
	return Relationship{Table: r.ToTable, Field: r.ToField, ToTable: r.Table, ToField: r.Field}
}

// DataTableConfig switches the compiler into the data-table rewrite mode
// (component I): a single physical table stores many logical tables as
// JSON documents, distinguished by a discriminator column.
type DataTableConfig struct {
	Table           string
	DataField       string
	TableField      string
	WhereConditions []string // raw SQL fragments, always ANDed into WHERE
}

// Dialect selects the target SQL emission rules.
type Dialect int

const (
	PostgreSQL Dialect = iota
	SQLiteExtensions
)

func (d Dialect) String() string {
	switch d {
	case PostgreSQL:
		return "postgresql"
	case SQLiteExtensions:
		return "sqlite-extensions"
	default:
		return "unknown"
	}
}

// ParseDialect maps the config option string (spec §6) to a Dialect value.
func ParseDialect(s string) (Dialect, error) {
	switch s {
	case "postgresql":
		return PostgreSQL, nil
	case "sqlite-extensions":
		return SQLiteExtensions, nil
	default:
		return 0, fmt.Errorf("unknown dialect %q", s)
	}
}

// Config is the immutable (for the duration of a compile) schema and
// variable binding the compiler is checked against.
type Config struct {
	Dialect       Dialect
	Tables        map[string]TableSchema
	Variables     map[string]any
	Relationships []Relationship
	DataTable     *DataTableConfig
}

// TableLookup is the interface the field-path resolver and every compiler
// layer consult instead of reaching into Config directly. Config implements
// it trivially; the mutation partial evaluator implements it again as a
// per-compile overlay that shadows the reserved NEW_ROW table without
// mutating the caller's Config (see internal/mutate.RowOverlay and
// DESIGN.md, "Global mutable NEW_ROW slot").
type TableLookup interface {
	LookupTable(name string) (TableSchema, bool)
	LookupVariable(name string) (any, bool)
	DialectOf() Dialect
	DataTableOf() *DataTableConfig
	RelationshipList() []Relationship
}

func (c *Config) LookupTable(name string) (TableSchema, bool) {
	t, ok := c.Tables[name]
	return t, ok
}

func (c *Config) LookupVariable(name string) (any, bool) {
	v, ok := c.Variables[name]
	return v, ok
}

func (c *Config) DialectOf() Dialect                { return c.Dialect }
func (c *Config) DataTableOf() *DataTableConfig     { return c.DataTable }
func (c *Config) RelationshipList() []Relationship { return c.Relationships }
