package script

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/screen"
	"github.com/jeeftor/rpa-runner/internal/sheet"
	"github.com/jeeftor/rpa-runner/internal/utils"
)

// Column positions, 0-based
const (
	colKind = iota
	colValue
	colRetry
	colNote
)

// ValidationError is a malformed script row. Row and Column are 1-based.
type ValidationError struct {
	Row    int
	Column int
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Row == 0 {
		return e.Reason
	}
	if e.Reason == "" {
		return fmt.Sprintf("row %d column %d invalid", e.Row, e.Column)
	}
	return fmt.Sprintf("row %d column %d invalid: %s", e.Row, e.Column, e.Reason)
}

// ExitCode implements utils.Coded
func (e *ValidationError) ExitCode() utils.ErrorExitCode {
	return utils.ExitCodeValidation
}

// ErrNoData is returned for a source without any rows below the header
var ErrNoData = &ValidationError{Reason: "no data"}

// ErrCoordinate is wrapped by every coordinate parse failure
var ErrCoordinate = errors.New(`coordinate must be "x;y" with two integers`)

// Validate checks every data row and stops at the first invalid one
func Validate(src sheet.Source) ([]Row, error) {
	if src.RowCount() < 2 {
		return nil, ErrNoData
	}

	rows := make([]Row, 0, src.RowCount()-1)
	for r := 1; r < src.RowCount(); r++ {
		row, err := parseRow(src, r)
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// ValidateAll checks every data row and reports all invalid ones in a utils.MultiError
func ValidateAll(src sheet.Source) ([]Row, error) {
	if src.RowCount() < 2 {
		return nil, ErrNoData
	}

	errs := utils.NewMultiError("script validation")
	rows := make([]Row, 0, src.RowCount()-1)
	for r := 1; r < src.RowCount(); r++ {
		row, err := parseRow(src, r)
		if err != nil {
			errs.Add(err)
			continue
		}
		rows = append(rows, row)
	}
	if err := errs.ErrorOrNil(); err != nil {
		return nil, err
	}
	return rows, nil
}

func parseRow(src sheet.Source, r int) (Row, error) {
	number := r + 1
	invalid := func(col int, reason string) error {
		return &ValidationError{Row: number, Column: col + 1, Reason: reason}
	}

	kindCell := src.Cell(r, colKind)
	if kindCell.Type != sheet.Number || kindCell.Number != math.Trunc(kindCell.Number) {
		return Row{}, invalid(colKind, "kind must be a number from 1 to 7")
	}
	kind := Kind(kindCell.Number)
	if !kind.Valid() {
		return Row{}, invalid(colKind, fmt.Sprintf("unknown kind %d", int(kindCell.Number)))
	}

	value := src.Cell(r, colValue)
	row := Row{
		Number: number,
		Kind:   kind,
		Retry:  RetryDefault,
		Note:   strings.TrimSpace(src.Cell(r, colNote).Text),
	}

	switch kind {
	case Click, DoubleClick, RightClick:
		if value.Type != sheet.Text || value.IsBlank() {
			return Row{}, invalid(colValue, "image file name required")
		}
		action := ImageClick{Image: strings.TrimSpace(value.Text), Button: screen.ButtonLeft, Clicks: 1}
		switch kind {
		case DoubleClick:
			action.Clicks = 2
		case RightClick:
			action.Button = screen.ButtonRight
		}
		row.Action = action

	case Paste:
		if value.IsBlank() {
			return Row{}, invalid(colValue, "text to paste required")
		}
		row.Action = PasteText{Text: pasteText(value)}

	case Wait:
		if value.Type != sheet.Number {
			return Row{}, invalid(colValue, "seconds must be a number")
		}
		row.Action = Pause{Seconds: value.Number}

	case Scroll:
		if value.Type != sheet.Number {
			return Row{}, invalid(colValue, "scroll amount must be a number")
		}
		row.Action = ScrollBy{Delta: int(value.Number)}

	case CoordinateClick:
		if value.Type != sheet.Text {
			return Row{}, invalid(colValue, ErrCoordinate.Error())
		}
		pos, err := ParseCoordinate(value.Text)
		if err != nil {
			return Row{}, invalid(colValue, err.Error())
		}
		row.Action = PointClick{At: pos}
	}

	if kind.UsesRetry() {
		row.Retry = retryCount(src.Cell(r, colRetry), number)
	}
	return row, nil
}

// retryCount normalizes the retry column. Absent, non-numeric and 0 mean 1.
func retryCount(c sheet.Cell, number int) int {
	if c.Type != sheet.Number || c.Number == 0 {
		return RetryDefault
	}
	n := int(c.Number)
	if n < RetryForever || n == 0 {
		logging.Warn("Unsupported retry count, using 1", "row", number, "retry", c.Text)
		return RetryDefault
	}
	return n
}

// pasteText renders a cell for pasting. Integral numbers drop the ".0".
func pasteText(c sheet.Cell) string {
	if c.Type == sheet.Number {
		if c.Number == math.Trunc(c.Number) && math.Abs(c.Number) < 1e15 {
			return strconv.FormatInt(int64(c.Number), 10)
		}
		return strconv.FormatFloat(c.Number, 'f', -1, 64)
	}
	return c.Text
}

// ParseCoordinate parses "x;y" into a position. Spaces around either number are allowed.
func ParseCoordinate(s string) (screen.Position, error) {
	parts := strings.Split(strings.TrimSpace(s), ";")
	if len(parts) != 2 {
		return screen.Position{}, fmt.Errorf("%w: %q", ErrCoordinate, s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return screen.Position{}, fmt.Errorf("%w: %q", ErrCoordinate, s)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return screen.Position{}, fmt.Errorf("%w: %q", ErrCoordinate, s)
	}
	return screen.Position{X: x, Y: y}, nil
}
