// Package script is the typed, validated view of a tabular automation script.
//
// Row 1 of the sheet is the header. Every following row is
// [kind, value, retry (optional), note (optional)].
package script

import (
	"fmt"
	"strconv"

	"github.com/jeeftor/rpa-runner/internal/screen"
)

// Kind selects which action a row performs
type Kind int

const (
	Click           Kind = 1
	DoubleClick     Kind = 2
	RightClick      Kind = 3
	Paste           Kind = 4
	Wait            Kind = 5
	Scroll          Kind = 6
	CoordinateClick Kind = 7
)

// String returns a human-readable representation of the Kind
func (k Kind) String() string {
	switch k {
	case Click:
		return "click"
	case DoubleClick:
		return "double_click"
	case RightClick:
		return "right_click"
	case Paste:
		return "paste"
	case Wait:
		return "wait"
	case Scroll:
		return "scroll"
	case CoordinateClick:
		return "coordinate_click"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the seven known kinds
func (k Kind) Valid() bool {
	return k >= Click && k <= CoordinateClick
}

// UsesRetry reports whether the retry column applies to this kind
func (k Kind) UsesRetry() bool {
	switch k {
	case Click, DoubleClick, RightClick, CoordinateClick:
		return true
	default:
		return false
	}
}

// Action is the payload of a row. The set of implementations is closed.
type Action interface {
	fmt.Stringer
	action()
}

// ImageClick clicks the center of an on-screen match of Image
type ImageClick struct {
	Image  string
	Button screen.Button
	Clicks int
}

// PasteText pastes Text at the current input focus
type PasteText struct {
	Text string
}

// Pause sleeps for Seconds
type Pause struct {
	Seconds float64
}

// ScrollBy scrolls the wheel by Delta notches, positive is up
type ScrollBy struct {
	Delta int
}

// PointClick clicks a literal screen coordinate
type PointClick struct {
	At screen.Position
}

func (ImageClick) action() {}
func (PasteText) action()  {}
func (Pause) action()      {}
func (ScrollBy) action()   {}
func (PointClick) action() {}

func (a ImageClick) String() string {
	return fmt.Sprintf("%s x%d %s", a.Button, a.Clicks, a.Image)
}

func (a PasteText) String() string {
	return fmt.Sprintf("paste %q", a.Text)
}

func (a Pause) String() string {
	return fmt.Sprintf("wait %ss", strconv.FormatFloat(a.Seconds, 'f', -1, 64))
}

func (a ScrollBy) String() string {
	return fmt.Sprintf("scroll %d", a.Delta)
}

func (a PointClick) String() string {
	return fmt.Sprintf("click %s", a.At)
}

// Row is one validated script row. Number is the 1-based sheet row (the header is row 1).
type Row struct {
	Number int
	Kind   Kind
	Action Action
	Retry  int
	Note   string
}

// String renders the row for log lines
func (r Row) String() string {
	return fmt.Sprintf("row %d %s", r.Number, r.Action)
}

// Retry column values
const (
	RetryDefault = 1
	RetryForever = -1
)
