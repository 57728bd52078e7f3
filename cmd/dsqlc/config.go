package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

// rawConfig mirrors the JSON shape spec §6 describes for the recognized
// configuration options: { dialect, tables, variables, relationships,
// dataTable? }. Loading and normalizing this file is a CLI-only concern;
// the core compiler never parses configuration JSON itself.
type rawConfig struct {
	Dialect   string                    `json:"dialect"`
	Tables    map[string]rawTable       `json:"tables"`
	Variables map[string]any            `json:"variables"`
	Relations []rawRelationship         `json:"relationships"`
	DataTable *rawDataTable             `json:"dataTable"`
}

type rawTable struct {
	Fields []rawField `json:"fields"`
}

type rawField struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Nullable bool   `json:"nullable"`
	Default  any    `json:"default"`
}

type rawRelationship struct {
	Table   string `json:"table"`
	Field   string `json:"field"`
	ToTable string `json:"toTable"`
	ToField string `json:"toField"`
}

type rawDataTable struct {
	Table           string   `json:"table"`
	DataField       string   `json:"dataField"`
	TableField      string   `json:"tableField"`
	WhereConditions []string `json:"whereConditions"`
}

func parseFieldType(s string) (schema.FieldType, error) {
	switch s {
	case "uuid":
		return schema.TypeUUID, nil
	case "string":
		return schema.TypeString, nil
	case "number":
		return schema.TypeNumber, nil
	case "boolean":
		return schema.TypeBoolean, nil
	case "datetime":
		return schema.TypeDateTime, nil
	case "date":
		return schema.TypeDate, nil
	case "object":
		return schema.TypeObject, nil
	default:
		return 0, fmt.Errorf("unknown field type %q", s)
	}
}

func loadConfig(path string) (*schema.Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw rawConfig
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}

	dialect, err := schema.ParseDialect(raw.Dialect)
	if err != nil {
		return nil, err
	}

	tables := make(map[string]schema.TableSchema, len(raw.Tables))
	for name, rt := range raw.Tables {
		fields := make([]schema.Field, len(rt.Fields))
		for i, rf := range rt.Fields {
			ft, err := parseFieldType(rf.Type)
			if err != nil {
				return nil, fmt.Errorf("table %q field %q: %w", name, rf.Name, err)
			}
			fields[i] = schema.Field{Name: rf.Name, Type: ft, Nullable: rf.Nullable, Default: rf.Default}
		}
		tables[name] = schema.TableSchema{Name: name, Fields: fields}
	}

	rels := make([]schema.Relationship, len(raw.Relations))
	for i, rr := range raw.Relations {
		rels[i] = schema.Relationship{Table: rr.Table, Field: rr.Field, ToTable: rr.ToTable, ToField: rr.ToField}
	}

	var dt *schema.DataTableConfig
	if raw.DataTable != nil {
		dt = &schema.DataTableConfig{
			Table:           raw.DataTable.Table,
			DataField:       raw.DataTable.DataField,
			TableField:      raw.DataTable.TableField,
			WhereConditions: raw.DataTable.WhereConditions,
		}
	}

	return &schema.Config{
		Dialect:       dialect,
		Tables:        tables,
		Variables:     raw.Variables,
		Relationships: rels,
		DataTable:     dt,
	}, nil
}
