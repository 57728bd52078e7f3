package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iv-stpn/json-to-sql-parser-sub001/dsqlc"
	"github.com/iv-stpn/json-to-sql-parser-sub001/schema"
)

type rawPagination struct {
	Limit  *int `json:"limit"`
	Offset *int `json:"offset"`
}

type rawOrderField struct {
	Field     string `json:"field"`
	Direction string `json:"direction"`
}

type rawAggField struct {
	Function string `json:"function"`
	Field    string `json:"field"`
}

// rawQuery covers all five query shapes (spec §6); the --kind flag
// selects which subset of fields is read.
type rawQuery struct {
	RootTable        string                    `json:"rootTable"`
	Table            string                    `json:"table"`
	Selection        map[string]any            `json:"selection"`
	Condition        any                       `json:"condition"`
	OrderBy          []rawOrderField           `json:"orderBy"`
	Pagination       *rawPagination            `json:"pagination"`
	GroupBy          []string                  `json:"groupBy"`
	AggregatedFields map[string]rawAggField    `json:"aggregatedFields"`
	NewRow           map[string]any            `json:"newRow"`
	Updates          map[string]any            `json:"updates"`
}

func compileCmd() *cobra.Command {
	var configPath, queryPath, kind string

	cmd := &cobra.Command{
		Use:   "compile",
		Short: "Compile a query JSON file against a config JSON file into SQL",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(configPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			b, err := os.ReadFile(queryPath)
			if err != nil {
				return fmt.Errorf("reading query: %w", err)
			}
			var q rawQuery
			if err := json.Unmarshal(b, &q); err != nil {
				return fmt.Errorf("parsing query: %w", err)
			}

			sql, err := compileQuery(cfg, kind, q)
			if err != nil {
				return err
			}
			fmt.Println(sql)
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "path to config JSON file")
	cmd.Flags().StringVar(&queryPath, "query", "", "path to query JSON file")
	cmd.Flags().StringVar(&kind, "kind", "select", "query kind: select|aggregate|insert|update|delete")
	cmd.MarkFlagRequired("config")
	cmd.MarkFlagRequired("query")

	return cmd
}

func compileQuery(cfg *schema.Config, kind string, q rawQuery) (string, error) {
	switch kind {
	case "select":
		orderBy := make([]dsqlc.OrderField, len(q.OrderBy))
		for i, o := range q.OrderBy {
			orderBy[i] = dsqlc.OrderField{Field: o.Field, Direction: o.Direction}
		}
		var page *dsqlc.Pagination
		if q.Pagination != nil {
			page = &dsqlc.Pagination{Limit: q.Pagination.Limit, Offset: q.Pagination.Offset}
		}
		return dsqlc.BuildSelectQuery(cfg, dsqlc.SelectQuery{
			RootTable:  q.RootTable,
			Selection:  q.Selection,
			Condition:  q.Condition,
			OrderBy:    orderBy,
			Pagination: page,
		})
	case "aggregate":
		aggFields := make(map[string]dsqlc.AggregatedField, len(q.AggregatedFields))
		for alias, f := range q.AggregatedFields {
			aggFields[alias] = dsqlc.AggregatedField{Function: f.Function, Field: f.Field}
		}
		return dsqlc.BuildAggregationQuery(cfg, dsqlc.AggregationQuery{
			Table:            q.Table,
			GroupBy:          q.GroupBy,
			AggregatedFields: aggFields,
		})
	case "insert":
		return dsqlc.BuildInsertQuery(cfg, dsqlc.InsertQuery{
			Table:     q.Table,
			NewRow:    q.NewRow,
			Condition: q.Condition,
		})
	case "update":
		return dsqlc.BuildUpdateQuery(cfg, dsqlc.UpdateQuery{
			Table:     q.Table,
			Updates:   q.Updates,
			Condition: q.Condition,
		})
	case "delete":
		return dsqlc.BuildDeleteQuery(cfg, dsqlc.DeleteQuery{
			Table:     q.Table,
			Condition: q.Condition,
		})
	default:
		return "", fmt.Errorf("unknown query kind %q", kind)
	}
}
