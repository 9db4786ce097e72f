package market

import (
	"fmt"
	"strings"
	"time"
)

// Phase is the current trading-session segment.
type Phase string

const (
	PhasePre     Phase = "PRE"
	PhaseRegular Phase = "REGULAR"
	PhaseAfter   Phase = "AFTER"
	PhaseNight   Phase = "NIGHT"
)

// Clock maps wall-clock time onto trading-session phases using three
// configured time-of-day windows in a fixed timezone. REGULAR wins when
// windows overlap; anything outside all three is NIGHT.
type Clock struct {
	zone *time.Location
	pre  window
	reg  window
	aft  window

	now func() time.Time
}

type window struct {
	start int // minutes since midnight, inclusive
	end   int // inclusive
}

func (w window) contains(m int) bool {
	return m >= w.start && m <= w.end
}

// NewClock parses the timezone and the three "HH:MM-HH:MM" windows. Any
// malformed value is a construction error; Phase itself cannot fail.
func NewClock(tz, premarket, regular, after string) (*Clock, error) {
	zone, err := time.LoadLocation(tz)
	if err != nil {
		return nil, fmt.Errorf("market timezone: %w", err)
	}
	pre, err := parseWindow(premarket)
	if err != nil {
		return nil, fmt.Errorf("premarket window: %w", err)
	}
	reg, err := parseWindow(regular)
	if err != nil {
		return nil, fmt.Errorf("regular window: %w", err)
	}
	aft, err := parseWindow(after)
	if err != nil {
		return nil, fmt.Errorf("after-hours window: %w", err)
	}
	return &Clock{zone: zone, pre: pre, reg: reg, aft: aft, now: time.Now}, nil
}

// Phase returns the session phase for the current local time.
func (c *Clock) Phase() Phase {
	t := c.now().In(c.zone)
	m := t.Hour()*60 + t.Minute()
	switch {
	case c.reg.contains(m):
		return PhaseRegular
	case c.pre.contains(m):
		return PhasePre
	case c.aft.contains(m):
		return PhaseAfter
	default:
		return PhaseNight
	}
}

// Timezone returns the configured zone name.
func (c *Clock) Timezone() string {
	return c.zone.String()
}

func parseWindow(spec string) (window, error) {
	parts := strings.Split(spec, "-")
	if len(parts) != 2 {
		return window{}, fmt.Errorf("invalid window %q, want HH:MM-HH:MM", spec)
	}
	start, err := parseMinutes(parts[0])
	if err != nil {
		return window{}, err
	}
	end, err := parseMinutes(parts[1])
	if err != nil {
		return window{}, err
	}
	if end < start {
		return window{}, fmt.Errorf("invalid window %q: end before start", spec)
	}
	return window{start: start, end: end}, nil
}

func parseMinutes(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return t.Hour()*60 + t.Minute(), nil
}
