// Package robot is the desktop screen.Automation provider: kbinani/screenshot
// captures the displays, vision finds templates, robotgo drives the pointer
// and keyboard, and the clipboard carries pasted text.
package robot

import (
	"fmt"
	"image"
	"os"
	"runtime"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/go-vgo/robotgo"
	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/screen"
	"github.com/jeeftor/rpa-runner/internal/vision"
	"github.com/kbinani/screenshot"
)

type cachedTemplate struct {
	img     image.Image
	modTime time.Time
}

// Provider drives the local desktop
type Provider struct {
	mu        sync.Mutex
	templates map[string]cachedTemplate

	// MoveDelay is how long the pointer rests on the target before clicking
	MoveDelay time.Duration
	// ClickGap separates the clicks of a multi-click
	ClickGap time.Duration
}

// New returns a provider for the local desktop
func New() *Provider {
	return &Provider{
		templates: make(map[string]cachedTemplate),
		MoveDelay: constants.ClickMoveDuration,
		ClickGap:  constants.ClickInterval,
	}
}

// Available implements screen.Checker
func (p *Provider) Available() error {
	if screenshot.NumActiveDisplays() == 0 {
		return screen.ErrUnavailable
	}
	return nil
}

// desktop is the union of every active display's bounds
func desktop() (image.Rectangle, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return image.Rectangle{}, screen.ErrUnavailable
	}
	var all image.Rectangle
	for i := 0; i < n; i++ {
		all = all.Union(screenshot.GetDisplayBounds(i))
	}
	return all, nil
}

// Capture grabs every display as one image in global screen coordinates
func (p *Provider) Capture() (image.Image, error) {
	bounds, err := desktop()
	if err != nil {
		return nil, err
	}
	img, err := screenshot.CaptureRect(bounds)
	if err != nil {
		return nil, fmt.Errorf("capture screen: %w", err)
	}
	// CaptureRect returns a zero-origin image; shift it so matches land in screen space
	if img.Rect.Min != bounds.Min {
		img.Rect = img.Rect.Add(bounds.Min.Sub(img.Rect.Min))
	}
	return img, nil
}

func (p *Provider) template(path string) (image.Image, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", screen.ErrImageMissing, path)
		}
		return nil, err
	}

	p.mu.Lock()
	cached, ok := p.templates[path]
	p.mu.Unlock()
	if ok && cached.modTime.Equal(info.ModTime()) {
		return cached.img, nil
	}

	img, err := vision.Load(path)
	if err != nil {
		return nil, err
	}
	p.mu.Lock()
	p.templates[path] = cachedTemplate{img: img, modTime: info.ModTime()}
	p.mu.Unlock()
	logging.Debug("Loaded template", "path", path, "size", img.Bounds().Size())
	return img, nil
}

// Locate implements screen.Automation
func (p *Provider) Locate(imagePath string, confidence float64) (screen.Position, bool, error) {
	tpl, err := p.template(imagePath)
	if err != nil {
		return screen.Position{}, false, err
	}
	shot, err := p.Capture()
	if err != nil {
		return screen.Position{}, false, err
	}

	start := time.Now()
	res, ok := vision.Match(shot, tpl, confidence)
	logging.Trace("Template search", "path", imagePath, "found", ok, "score", res.Score, "elapsed", time.Since(start))
	if !ok {
		return screen.Position{}, false, nil
	}
	return screen.Position{X: res.Center.X, Y: res.Center.Y}, true, nil
}

// Click implements screen.Automation
func (p *Provider) Click(pos screen.Position, button screen.Button, count int) error {
	if count < 1 {
		count = 1
	}
	robotgo.Move(pos.X, pos.Y)
	if p.MoveDelay > 0 {
		time.Sleep(p.MoveDelay)
	}

	for i := 0; i < count; i++ {
		if i > 0 && p.ClickGap > 0 {
			time.Sleep(p.ClickGap)
		}
		robotgo.Click(button.String())
	}
	return nil
}

// Paste implements screen.Automation by way of the clipboard and the paste shortcut
func (p *Provider) Paste(text string) error {
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	if err := robotgo.KeyTap("v", pasteModifier()); err != nil {
		return fmt.Errorf("send paste shortcut: %w", err)
	}
	return nil
}

func pasteModifier() string {
	if runtime.GOOS == "darwin" {
		return "cmd"
	}
	return "ctrl"
}

// Scroll implements screen.Automation. Positive delta scrolls up.
func (p *Provider) Scroll(delta int) error {
	robotgo.Scroll(0, delta)
	return nil
}

// CursorPosition implements screen.Automation
func (p *Provider) CursorPosition() (screen.Position, error) {
	x, y := robotgo.Location()
	return screen.Position{X: x, Y: y}, nil
}

// CopyPosition writes pos to the clipboard in script form ("x;y")
func CopyPosition(pos screen.Position) error {
	return clipboard.WriteAll(pos.String())
}

var (
	_ screen.Automation = (*Provider)(nil)
	_ screen.Checker    = (*Provider)(nil)
)
