package google

import (
	"fmt"
	"strings"

	"finboard/internal/core"
)

// parseRows maps sheet rows to records. A leading header row and rows with
// an empty ID cell are skipped.
func parseRows(values [][]any, columns []string) []core.Record {
	out := make([]core.Record, 0, len(values))
	for i, row := range values {
		if i == 0 && isHeader(row) {
			continue
		}
		rec := rowRecord(row, columns)
		if rec.ID == "" {
			continue
		}
		out = append(out, rec)
	}
	return out
}

func isHeader(row []any) bool {
	return len(row) > 0 && strings.EqualFold(strings.TrimSpace(cell(row, 0)), "id")
}

func rowRecord(row []any, columns []string) core.Record {
	rec := core.Record{ID: strings.TrimSpace(cell(row, 0)), Fields: make(map[string]any, len(columns)-1)}
	for i := 1; i < len(columns); i++ {
		if i < len(row) {
			rec.Fields[columns[i]] = row[i]
		}
	}
	return rec
}

func toRow(rec core.Record, columns []string) []any {
	row := make([]any, len(columns))
	row[0] = rec.ID
	for i := 1; i < len(columns); i++ {
		v, ok := rec.Fields[columns[i]]
		if !ok || v == nil {
			row[i] = ""
			continue
		}
		row[i] = v
	}
	return row
}

// findRow returns the zero-based index of the row with the given id, or -1.
func findRow(values [][]any, id string) int {
	for i, row := range values {
		if strings.TrimSpace(cell(row, 0)) == id {
			return i
		}
	}
	return -1
}

func cell(row []any, idx int) string {
	if idx >= len(row) || row[idx] == nil {
		return ""
	}
	return fmt.Sprint(row[idx])
}
