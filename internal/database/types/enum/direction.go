package enum

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidDirection is returned when a vote direction is neither up nor down.
var ErrInvalidDirection = errors.New("invalid vote direction")

// Direction represents the polarity of a vote.
type Direction int16

const (
	DirectionDown Direction = -1
	DirectionUp   Direction = 1
)

// IsValid reports whether the direction is one of the two allowed values.
func (d Direction) IsValid() bool {
	return d == DirectionUp || d == DirectionDown
}

// String returns the lowercase name of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionUp:
		return "up"
	case DirectionDown:
		return "down"
	default:
		return fmt.Sprintf("Direction(%d)", int16(d))
	}
}

// ParseDirection accepts either the numeric form ("1", "-1") or the name ("up", "down").
func ParseDirection(s string) (Direction, error) {
	s = strings.TrimSpace(strings.ToLower(s))

	switch s {
	case "up", "+1":
		return DirectionUp, nil
	case "down":
		return DirectionDown, nil
	}

	n, err := strconv.ParseInt(s, 10, 16)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
	}

	d := Direction(n)
	if !d.IsValid() {
		return 0, fmt.Errorf("%w: %d", ErrInvalidDirection, n)
	}

	return d, nil
}
