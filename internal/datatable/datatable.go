// Package datatable expands a script template against a CSV data table so
// one script can drive many test cases. The first CSV row names the columns;
// each following row produces one copy of the script with every
// "<column>" placeholder replaced by that row's value.
package datatable

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"
)

// Row is one record of the table, keyed by column name.
type Row map[string]string

// Load reads a CSV file into rows. The header row is required.
func Load(path string) ([]Row, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("could not open data table: %w", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("could not parse data table %s: %w", path, err)
	}
	if len(records) < 2 {
		return nil, fmt.Errorf("data table %s needs a header row and at least one data row", path)
	}

	header := records[0]
	rows := make([]Row, 0, len(records)-1)
	for _, record := range records[1:] {
		row := make(Row, len(header))
		for i, col := range header {
			row[strings.TrimSpace(col)] = record[i]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// Preprocess expands the script once per row, substituting placeholders, and
// concatenates the runs in row order.
func Preprocess(src string, rows []Row) string {
	var b strings.Builder
	for i, row := range rows {
		expanded := src
		for col, val := range row {
			expanded = strings.ReplaceAll(expanded, "<"+col+">", val)
		}
		b.WriteString(expanded)
		if i < len(rows)-1 && !strings.HasSuffix(expanded, "\n") {
			b.WriteString("\n")
		}
	}
	return b.String()
}
