package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidDirection is returned when a direction name cannot be parsed
var ErrInvalidDirection = errors.New("invalid direction")

var directionNames = [4]string{
	Left:  "left",
	Right: "right",
	Up:    "up",
	Down:  "down",
}

// String returns the lowercase direction name
func (d Direction) String() string {
	if d < Left || d > Down {
		return fmt.Sprintf("direction(%d)", int(d))
	}
	return directionNames[d]
}

// MarshalText encodes the direction by name
func (d Direction) MarshalText() ([]byte, error) {
	if d < Left || d > Down {
		return nil, fmt.Errorf("%w: %d", ErrInvalidDirection, int(d))
	}
	return []byte(directionNames[d]), nil
}

// UnmarshalText decodes a direction name or alias
func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ParseDirection accepts full names, single letters and WASD keys
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "left", "l", "a":
		return Left, nil
	case "right", "r", "d":
		return Right, nil
	case "up", "u", "w":
		return Up, nil
	case "down", "s":
		return Down, nil
	}
	return Left, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// DirectionNames returns the names of dirs in order
func DirectionNames(dirs []Direction) []string {
	names := make([]string, 0, len(dirs))
	for _, d := range dirs {
		names = append(names, d.String())
	}
	return names
}
