package model

import (
	"errors"
	"fmt"
	"time"
)

// Color is the presentation tag attached to an event. It carries no
// scheduling meaning; only the enumerated values below are valid.
type Color string

const (
	ColorGreen Color = "green"
	ColorRed   Color = "red"

	DefaultColor = ColorGreen
)

var ErrInvalidColor = errors.New("invalid color")

// ParseColor maps a raw string onto the Color enumeration.
func ParseColor(s string) (Color, error) {
	switch Color(s) {
	case ColorGreen, ColorRed:
		return Color(s), nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
}

func (c Color) Valid() bool {
	return c == ColorGreen || c == ColorRed
}

func (c Color) String() string { return string(c) }

// MarshalText also serves JSON and YAML encoding.
func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidColor, string(c))
	}
	return []byte(c), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	parsed, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// Fields holds everything an event carries except its identity. The host's
// input layer is responsible for handing only validated Fields to the store.
type Fields struct {
	Title string

	// Date is matched by calendar day only; any time-of-day is ignored.
	Date time.Time

	// StartTime / EndTime are 24-hour "HH:MM" wall-clock strings.
	StartTime string
	EndTime   string

	Color       Color
	Description string
}

// Event is a scheduled item as held by the event store.
type Event struct {
	ID string
	Fields
}

// StartHour returns the hour component of StartTime. ok is false when
// StartTime is malformed.
func (e Event) StartHour() (hour int, ok bool) {
	h, _, err := ParseClock(e.StartTime)
	if err != nil {
		return 0, false
	}
	return h, true
}
