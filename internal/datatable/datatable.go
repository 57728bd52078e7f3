// Package datatable implements the spec's data-table rewriter (component
// I): when config.DataTable is set, every logical table is stored as a
// JSON document inside one physical table, and every reference is
// rewritten to a JSON path plus a tenant/table discriminator in WHERE
// (§4.I). There is no direct analogue of this in graphjin (it talks to
// ordinary relational schemas), so this package is grounded on the one
// dialect in the pack that already does JSON-path-plus-discriminator
// rewriting against a document store — graphjin's
// core/internal/dialect/mongodb.go, which likewise turns a plain column
// reference into a nested document-field lookup rather than a bare SQL
// identifier.
//
// The rewrite keeps the logical table name as the SQL alias bound to the
// physical table at every FROM/JOIN site of a select or aggregate query
// and of an $exists subquery (this is what invariant 7 means by "no
// logical table name outside string literals or aliases" — the alias slot
// is exactly where it is allowed to appear), so everything above this
// package keeps using logical table names exactly as it would without
// data-table rewriting; only field-path rendering and the FROM/JOIN table
// reference text change. The INSERT/UPDATE/DELETE statements built by
// internal/mutate are not rewritten this way: they name the logical table
// directly and their WHERE carries no discriminator or WhereConditions
// predicates; only the field references inside their conditions are
// rewritten.
package datatable

import (
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/fieldpath"
	"github.com/iv-stpn/json-to-sql-parser-sub001/internal/lex"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// ResolveField parses path against lookup and, when lookup carries a
// DataTableConfig, rewrites the result onto the document column (§4.I).
// Every compiler layer that turns a "table.field" path into SQL text goes
// through this instead of calling fieldpath.Parse directly, so the
// data-table mode reaches every field reference the same way.
func ResolveField(path string, lookup schema.TableLookup) (*fieldpath.FieldPath, error) {
	fp, err := fieldpath.Parse(path, lookup)
	if err != nil {
		return nil, err
	}
	if dt := lookup.DataTableOf(); dt != nil {
		return Rewrite(fp, dt), nil
	}
	return fp, nil
}

// Rewrite maps a resolved logical FieldPath onto the JSON access spec
// §4.I describes: dataTable.table.dataField->'field'[->…], with the
// logical table kept as the alias.
func Rewrite(fp *fieldpath.FieldPath, dt *schema.DataTableConfig) *fieldpath.FieldPath {
	access := make([]string, 0, len(fp.JSONAccess)+1)
	access = append(access, fp.Field)
	access = append(access, fp.JSONAccess...)
	return &fieldpath.FieldPath{
		Table:           fp.Table,
		Field:           dt.DataField,
		JSONAccess:      access,
		JSONExtractText: true,
		FieldConfig:     fp.FieldConfig,
	}
}

// PhysicalFrom renders the FROM/JOIN table reference for a logical table
// under data-table rewriting: the physical table aliased to the logical
// name, e.g. "documents AS users".
func PhysicalFrom(dt *schema.DataTableConfig, logicalTable string) string {
	return dt.Table + " AS " + logicalTable
}

// Discriminator renders the base discriminator predicate for one aliased
// reference to the physical table (§4.I): "<alias>.<tableField> =
// '<logical>'".
func Discriminator(dt *schema.DataTableConfig, alias string) string {
	return alias + "." + dt.TableField + " = " + lex.EscapeString(alias)
}

// ExtraPredicates renders dt.WhereConditions for one aliased reference to
// the physical table, each fragment qualified by the alias — the alias is
// what identifies that physical-table instance in the emitted SQL, which
// is this module's reading of "prefixed with the physical table name".
func ExtraPredicates(dt *schema.DataTableConfig, alias string) []string {
	out := make([]string, 0, len(dt.WhereConditions))
	for _, frag := range dt.WhereConditions {
		out = append(out, alias+"."+frag)
	}
	return out
}
