package sheet

import (
	"fmt"
	"strconv"

	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/xuri/excelize/v2"
)

// openWorkbook reads the first worksheet of an OOXML workbook into a Grid
func openWorkbook(path string) (*Grid, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			logging.Debug("Closing workbook failed", "path", path, "error", cerr)
		}
	}()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("workbook %s has no worksheets", path)
	}
	name := sheets[0]

	raw, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read worksheet %q: %w", name, err)
	}

	grid := &Grid{Name: name, Rows: make([][]Cell, len(raw))}
	for r, values := range raw {
		cells := make([]Cell, len(values))
		for c, value := range values {
			if value == "" {
				continue
			}
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return nil, err
			}
			kind, err := f.GetCellType(name, axis)
			if err != nil {
				return nil, fmt.Errorf("cell %s: %w", axis, err)
			}
			cells[c] = classify(kind, value)
		}
		grid.Rows[r] = cells
	}

	logging.Debug("Loaded workbook", "path", path, "sheet", name, "rows", len(grid.Rows))
	return grid, nil
}

// classify maps an excelize cell type and raw value onto the script's cell types.
// Plain numeric cells carry no type attribute, so CellTypeUnset falls back to parsing.
func classify(kind excelize.CellType, value string) Cell {
	switch kind {
	case excelize.CellTypeBool:
		return Cell{Type: Bool, Text: value}
	case excelize.CellTypeSharedString, excelize.CellTypeInlineString, excelize.CellTypeError:
		return TextCell(value)
	default:
		if n, err := strconv.ParseFloat(value, 64); err == nil {
			return Cell{Type: Number, Number: n, Text: value}
		}
		return TextCell(value)
	}
}

// SampleRows is the example script written by WriteSample
var SampleRows = [][]any{
	{"Kind", "Value", "Retry", "Note"},
	{1, "button.png", 1, "left click button.png, kept next to this workbook"},
	{5, 2, 0, "wait 2 seconds"},
	{4, "Hello World", 0, "paste text"},
	{6, -100, 0, "scroll down"},
	{1, "login.png", 3, "left click login.png, three repeats"},
	{7, "500;300", 1, "click screen coordinate 500;300, see `rpa cursor`"},
}

// WriteSample writes an example script workbook with a bold header row
func WriteSample(path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const name = "script"
	if err := f.SetSheetName("Sheet1", name); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	for r, row := range SampleRows {
		for c, value := range row {
			axis, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(name, axis, value); err != nil {
				return fmt.Errorf("write %s: %w", axis, err)
			}
		}
	}

	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(name, "A1", "D1", bold); err != nil {
		return fmt.Errorf("style header: %w", err)
	}
	if err := f.SetColWidth(name, "D", "D", 60); err != nil {
		return fmt.Errorf("size note column: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save workbook: %w", err)
	}
	return nil
}
