// Package screen defines the screen-automation provider the run engine drives.
package screen

import (
	"errors"
	"fmt"
)

// Position is an integer screen coordinate
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// String renders the position the way scripts write it: "x;y"
func (p Position) String() string {
	return fmt.Sprintf("%d;%d", p.X, p.Y)
}

// Button is a mouse button
type Button int

const (
	ButtonLeft Button = iota
	ButtonRight
)

// String returns the provider-facing button name
func (b Button) String() string {
	switch b {
	case ButtonLeft:
		return "left"
	case ButtonRight:
		return "right"
	default:
		return "unknown"
	}
}

// ErrUnavailable is returned by providers that cannot reach a display
var ErrUnavailable = errors.New("screen automation provider unavailable")

// ErrImageMissing is wrapped when a template image file does not exist
var ErrImageMissing = errors.New("image file not found")

// Automation is the screen-automation capability: template location, pointer and keyboard injection.
//
// Locate reports found=false (and a nil error) when the image is simply not on screen.
type Automation interface {
	Locate(imagePath string, confidence float64) (pos Position, found bool, err error)
	Click(pos Position, button Button, count int) error
	Paste(text string) error
	Scroll(delta int) error
	CursorPosition() (Position, error)
}

// Checker is implemented by providers that can tell up front whether a display is reachable
type Checker interface {
	Available() error
}
