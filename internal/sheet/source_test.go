package sheet

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestGridOutOfRange(t *testing.T) {
	g := NewGrid(
		[]any{"Kind", "Value"},
		[]any{1, "btn.png"},
	)
	assert.Equal(t, 2, g.RowCount())
	assert.Equal(t, Number, g.Cell(1, 0).Type)
	assert.Equal(t, float64(1), g.Cell(1, 0).Number)
	assert.Equal(t, Empty, g.Cell(1, 5).Type)
	assert.Equal(t, Empty, g.Cell(9, 0).Type)
	assert.Equal(t, Empty, g.Cell(-1, 0).Type)
}

func TestCellIsBlank(t *testing.T) {
	assert.True(t, Cell{}.IsBlank())
	assert.True(t, TextCell("   ").IsBlank())
	assert.False(t, TextCell("hi").IsBlank())
	assert.False(t, NumberCell(0).IsBlank())
}

func TestOpenCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "script.csv")
	content := "Kind,Value,Retry,Note\n1,btn.png,3,click\n5,2.5,,wait\n7,\"100;200\",,point\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	src, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, 4, src.RowCount())

	assert.Equal(t, Number, src.Cell(1, 0).Type)
	assert.Equal(t, Text, src.Cell(1, 1).Type)
	assert.Equal(t, "btn.png", src.Cell(1, 1).Text)
	assert.Equal(t, float64(3), src.Cell(1, 2).Number)
	assert.Equal(t, 2.5, src.Cell(2, 1).Number)
	assert.Equal(t, Empty, src.Cell(2, 2).Type)
	assert.Equal(t, Text, src.Cell(3, 1).Type)
	assert.Equal(t, "100;200", src.Cell(3, 1).Text)
}

func TestOpenWorkbookRoundTripsSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.xlsx")
	require.NoError(t, WriteSample(path))

	src, err := Open(path)
	require.NoError(t, err)
	require.Equal(t, len(SampleRows), src.RowCount())

	header := src.Cell(0, 0)
	assert.Equal(t, Text, header.Type)
	assert.Equal(t, "Kind", header.Text)

	assert.Equal(t, Number, src.Cell(1, 0).Type)
	assert.Equal(t, float64(1), src.Cell(1, 0).Number)
	assert.Equal(t, "button.png", src.Cell(1, 1).Text)

	assert.Equal(t, Number, src.Cell(4, 1).Type)
	assert.Equal(t, float64(-100), src.Cell(4, 1).Number)

	assert.Equal(t, Text, src.Cell(6, 1).Type)
	assert.Equal(t, "500;300", src.Cell(6, 1).Text)
}

func TestOpenWorkbookKeepsNumericTextAsText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "typed.xlsx")
	f := excelize.NewFile()
	require.NoError(t, f.SetCellValue("Sheet1", "A1", "Kind"))
	require.NoError(t, f.SetCellStr("Sheet1", "A2", "1"))
	require.NoError(t, f.SetCellValue("Sheet1", "B2", true))
	require.NoError(t, f.SaveAs(path))
	require.NoError(t, f.Close())

	src, err := Open(path)
	require.NoError(t, err)
	assert.Equal(t, Text, src.Cell(1, 0).Type, "a number stored as text stays text")
	assert.Equal(t, Bool, src.Cell(1, 1).Type)
}

func TestOpenRejectsUnknownFormats(t *testing.T) {
	_, err := Open("legacy.xls")
	require.Error(t, err)
	assert.Contains(t, err.Error(), ".xlsx")

	_, err = Open("script.txt")
	require.Error(t, err)
}
