package sheet

import (
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
)

// openCSV reads a comma-separated script. CSV has no cell types, so a field
// that parses as a number is numeric and anything else non-empty is text.
func openCSV(path string) (*Grid, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	grid := &Grid{Name: path, Rows: make([][]Cell, len(records))}
	for r, record := range records {
		cells := make([]Cell, len(record))
		for c, field := range record {
			cells[c] = inferCell(field)
		}
		grid.Rows[r] = cells
	}
	return grid, nil
}

func inferCell(field string) Cell {
	trimmed := strings.TrimSpace(field)
	if trimmed == "" {
		return Cell{}
	}
	if n, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return Cell{Type: Number, Number: n, Text: trimmed}
	}
	return TextCell(field)
}
