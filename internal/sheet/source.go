// Package sheet reads the tabular script source: one row per action, row 0 is the header.
package sheet

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// CellType classifies a cell the way the script grammar cares about
type CellType int

const (
	Empty CellType = iota
	Text
	Number
	Bool
)

// String returns a human-readable representation of the CellType
func (t CellType) String() string {
	switch t {
	case Empty:
		return "empty"
	case Text:
		return "text"
	case Number:
		return "number"
	case Bool:
		return "bool"
	default:
		return "unknown"
	}
}

// Cell is a typed cell value. Text holds the raw text for every non-empty cell.
type Cell struct {
	Type   CellType
	Text   string
	Number float64
}

// TextCell builds a text cell
func TextCell(s string) Cell {
	if s == "" {
		return Cell{}
	}
	return Cell{Type: Text, Text: s}
}

// NumberCell builds a numeric cell
func NumberCell(n float64) Cell {
	return Cell{Type: Number, Number: n, Text: strconv.FormatFloat(n, 'f', -1, 64)}
}

// IsBlank reports whether the cell is empty or only whitespace
func (c Cell) IsBlank() bool {
	return c.Type == Empty || strings.TrimSpace(c.Text) == ""
}

// Source is read-only row/column access. Out-of-range cells are Empty.
type Source interface {
	RowCount() int
	Cell(row, col int) Cell
}

// Grid is an in-memory Source
type Grid struct {
	Name string
	Rows [][]Cell
}

// RowCount implements Source
func (g *Grid) RowCount() int {
	return len(g.Rows)
}

// Cell implements Source
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) || col < 0 || col >= len(g.Rows[row]) {
		return Cell{}
	}
	return g.Rows[row][col]
}

// NewGrid builds a Grid from loosely typed values: string, int, float64, bool or nil
func NewGrid(rows ...[]any) *Grid {
	g := &Grid{Rows: make([][]Cell, len(rows))}
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = cellOf(v)
		}
		g.Rows[i] = cells
	}
	return g
}

func cellOf(v any) Cell {
	switch x := v.(type) {
	case nil:
		return Cell{}
	case string:
		return TextCell(x)
	case int:
		return NumberCell(float64(x))
	case float64:
		return NumberCell(x)
	case bool:
		return Cell{Type: Bool, Text: strconv.FormatBool(x)}
	default:
		return TextCell(fmt.Sprint(x))
	}
}

// Open loads a script source, choosing the reader by file extension
func Open(path string) (Source, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm", ".xltx", ".xltm":
		return openWorkbook(path)
	case ".csv":
		return openCSV(path)
	case ".xls":
		return nil, fmt.Errorf("legacy .xls workbooks are not supported, save %s as .xlsx", filepath.Base(path))
	default:
		return nil, fmt.Errorf("unsupported script format %q (use .xlsx or .csv)", filepath.Ext(path))
	}
}
