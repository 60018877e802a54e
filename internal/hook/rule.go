// Package hook runs external commands when a hand's finger vector changes to
// a configured pattern.
package hook

import (
	"errors"
	"fmt"

	"github.com/ayusman/mudra/internal/gesture"
)

// ErrEmptyCommand is returned by Validate for a rule without a command.
var ErrEmptyCommand = errors.New("command is empty")

// Any in a pattern matches a finger in either state.
const Any = 'x'

// Rule runs Command when a hand's finger vector changes to one matching Fingers.
type Rule struct {
	Name    string   `yaml:"name"`
	Fingers string   `yaml:"fingers"` // one of '0', '1' or 'x' per finger, thumb first
	Command []string `yaml:"command"`
}

// Validate checks the pattern and the command.
func (r Rule) Validate() error {
	if len(r.Fingers) != gesture.NumFingers {
		return fmt.Errorf("hook %q: fingers pattern must have %d characters, got %q", r.Name, gesture.NumFingers, r.Fingers)
	}
	for i := 0; i < len(r.Fingers); i++ {
		switch r.Fingers[i] {
		case '0', '1', Any:
		default:
			return fmt.Errorf("hook %q: invalid character %q in fingers pattern", r.Name, r.Fingers[i])
		}
	}
	if len(r.Command) == 0 || r.Command[0] == "" {
		return fmt.Errorf("hook %q: %w", r.Name, ErrEmptyCommand)
	}
	return nil
}

// Matches reports whether v satisfies the pattern. An empty vector never matches.
func (r Rule) Matches(v gesture.Vector) bool {
	if len(v) != len(r.Fingers) {
		return false
	}
	for i, f := range v {
		switch r.Fingers[i] {
		case Any:
		case '1':
			if f != 1 {
				return false
			}
		default:
			if f != 0 {
				return false
			}
		}
	}
	return true
}
