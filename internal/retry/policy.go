// Package retry implements the image-match and coordinate click policies.
//
// Both policies take the row's retry count: 1 tries a bounded default,
// N > 1 repeats N times, -1 repeats until the run flag is cleared.
package retry

import (
	"fmt"
	"time"

	"github.com/jeeftor/rpa-runner/internal/constants"
	"github.com/jeeftor/rpa-runner/internal/logging"
	"github.com/jeeftor/rpa-runner/internal/runflag"
	"github.com/jeeftor/rpa-runner/internal/screen"
)

// Mode is the policy selected by a retry count
type Mode int

const (
	Default Mode = iota
	Repeat
	Forever
)

// String returns a human-readable representation of the Mode
func (m Mode) String() string {
	switch m {
	case Default:
		return "default"
	case Repeat:
		return "repeat"
	case Forever:
		return "forever"
	default:
		return "unknown"
	}
}

// ModeOf maps a normalized retry count onto a Mode
func ModeOf(count int) Mode {
	switch {
	case count == -1:
		return Forever
	case count > 1:
		return Repeat
	default:
		return Default
	}
}

// Outcome reports what a policy did
type Outcome struct {
	Mode      Mode
	Attempts  int
	Hits      int
	Cancelled bool
}

// Succeeded reports whether the action took effect. Forever always succeeds;
// the other modes need at least one hit.
func (o Outcome) Succeeded() bool {
	if o.Mode == Forever {
		return true
	}
	return o.Hits > 0
}

// String renders the outcome for log lines
func (o Outcome) String() string {
	s := fmt.Sprintf("%s: %d/%d hits", o.Mode, o.Hits, o.Attempts)
	if o.Cancelled {
		s += ", cancelled"
	}
	return s
}

// ImageTarget is an image click with its path already resolved
type ImageTarget struct {
	Path   string
	Button screen.Button
	Clicks int
}

// ImagePolicy locates an image and clicks its center
type ImagePolicy struct {
	Provider   screen.Automation
	Signal     runflag.Signal
	Interval   time.Duration
	Confidence float64
	Ceiling    int
	Log        *logging.ContextualLogger
}

// NewImagePolicy returns a policy using the fixed confidence and attempt ceiling
func NewImagePolicy(provider screen.Automation, signal runflag.Signal, interval time.Duration, log *logging.ContextualLogger) *ImagePolicy {
	return &ImagePolicy{
		Provider:   provider,
		Signal:     signal,
		Interval:   interval,
		Confidence: constants.MatchConfidence,
		Ceiling:    constants.DefaultAttemptCeiling,
		Log:        log,
	}
}

// Attempt runs the policy selected by count. A provider error ends it immediately.
func (p *ImagePolicy) Attempt(target ImageTarget, count int) (Outcome, error) {
	out := Outcome{Mode: ModeOf(count)}

	limit := 0
	switch out.Mode {
	case Default:
		limit = p.Ceiling
	case Repeat:
		limit = count
	}

	for limit == 0 || out.Attempts < limit {
		if !p.Signal.IsSet() {
			out.Cancelled = true
			return out, nil
		}

		out.Attempts++
		hit, err := p.once(target)
		if err != nil {
			return out, err
		}
		if hit {
			out.Hits++
			if out.Mode == Default {
				return out, nil
			}
		} else {
			p.Log.Info(logging.NotFoundTemplate.Formatf("%s (attempt %s)", target.Path, p.progress(out.Attempts, limit)))
		}

		if limit != 0 && out.Attempts >= limit {
			break
		}
		if !p.Signal.Sleep(p.Interval) {
			out.Cancelled = true
			return out, nil
		}
	}
	return out, nil
}

func (p *ImagePolicy) once(target ImageTarget) (bool, error) {
	p.Log.Debug(logging.SearchTemplate.Format(target.Path), "confidence", p.Confidence)
	pos, found, err := p.Provider.Locate(target.Path, p.Confidence)
	if err != nil {
		return false, fmt.Errorf("locate %s: %w", target.Path, err)
	}
	if !found {
		return false, nil
	}

	p.Log.Debug(logging.FoundTemplate.Formatf("%s at %s", target.Path, pos))
	if err := p.Provider.Click(pos, target.Button, target.Clicks); err != nil {
		return false, fmt.Errorf("click %s: %w", pos, err)
	}
	return true, nil
}

func (p *ImagePolicy) progress(n, limit int) string {
	if limit == 0 {
		return fmt.Sprintf("%d", n)
	}
	return fmt.Sprintf("%d/%d", n, limit)
}

// CoordinatePolicy clicks a literal screen position
type CoordinatePolicy struct {
	Provider screen.Automation
	Signal   runflag.Signal
	Interval time.Duration
	Log      *logging.ContextualLogger
}

// NewCoordinatePolicy returns a coordinate click policy
func NewCoordinatePolicy(provider screen.Automation, signal runflag.Signal, interval time.Duration, log *logging.ContextualLogger) *CoordinatePolicy {
	return &CoordinatePolicy{Provider: provider, Signal: signal, Interval: interval, Log: log}
}

// Attempt clicks once for the default count, exactly count times for a
// bounded repeat, and until the flag clears for -1.
func (p *CoordinatePolicy) Attempt(pos screen.Position, count int) (Outcome, error) {
	out := Outcome{Mode: ModeOf(count)}

	limit := 0
	switch out.Mode {
	case Default:
		limit = 1
	case Repeat:
		limit = count
	}

	for limit == 0 || out.Attempts < limit {
		if !p.Signal.IsSet() {
			out.Cancelled = true
			return out, nil
		}

		out.Attempts++
		if err := p.Provider.Click(pos, screen.ButtonLeft, 1); err != nil {
			return out, fmt.Errorf("click %s: %w", pos, err)
		}
		out.Hits++
		p.Log.Debug(logging.PointTemplate.Format(pos.String()), "attempt", out.Attempts)

		if limit != 0 && out.Attempts >= limit {
			break
		}
		if !p.Signal.Sleep(p.Interval) {
			out.Cancelled = true
			return out, nil
		}
	}
	return out, nil
}
