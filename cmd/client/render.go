package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/tuannm99/novakv/internal/sql/executor"
)

func renderResult(w io.Writer, res *executor.Result, format string) error {
	if format == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}

	if res.Message != "" {
		_, _ = fmt.Fprintln(w, res.Message)
		return nil
	}
	if len(res.Columns) == 0 {
		_, _ = fmt.Fprintf(w, "OK (%d affected)\n", res.AffectedRows)
		return nil
	}
	if len(res.Rows) == 0 {
		_, _ = fmt.Fprintln(w, "(0 rows)")
		return nil
	}

	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(res.Columns))
	for i, c := range res.Columns {
		header[i] = c
	}
	t.AppendHeader(header)

	for _, row := range res.Rows {
		r := make(table.Row, len(res.Columns))
		for i := range res.Columns {
			r[i] = "NULL"
			if i < len(row) && row[i] != nil {
				r[i] = formatValue(row[i])
			}
		}
		t.AppendRow(r)
	}

	t.Render()
	_, _ = fmt.Fprintf(w, "(%d rows)\n", len(res.Rows))
	return nil
}

// formatValue prints whole JSON numbers without an exponent.
func formatValue(v any) string {
	if f, ok := v.(float64); ok && f == float64(int64(f)) {
		return fmt.Sprintf("%d", int64(f))
	}
	return fmt.Sprintf("%v", v)
}
