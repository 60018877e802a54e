// Package gesture derives raised-finger signals from hand landmarks.
package gesture

import (
	"strconv"
	"strings"

	"github.com/ayusman/mudra/internal/detector"
)

// Finger positions within a Vector.
const (
	Thumb = iota
	Index
	Middle
	Ring
	Pinky
	NumFingers
)

// Vector holds one entry per finger, thumb first: 1 when raised, 0 when folded.
// An empty Vector means no hand was available, which is not the same as all fingers down.
type Vector []int

// Count returns the number of raised fingers.
func (v Vector) Count() int {
	n := 0
	for _, f := range v {
		n += f
	}
	return n
}

// Equal reports whether two vectors hold the same values.
func (v Vector) Equal(o Vector) bool {
	if len(v) != len(o) {
		return false
	}
	for i := range v {
		if v[i] != o[i] {
			return false
		}
	}
	return true
}

// String renders the vector as digits, e.g. "01100". An empty vector renders as "".
func (v Vector) String() string {
	var b strings.Builder
	for _, f := range v {
		b.WriteString(strconv.Itoa(f))
	}
	return b.String()
}

// ParseVector is the inverse of Vector.String.
func ParseVector(s string) (Vector, error) {
	if s == "" {
		return Vector{}, nil
	}
	v := make(Vector, len(s))
	for i, c := range s {
		switch c {
		case '0':
			v[i] = 0
		case '1':
			v[i] = 1
		default:
			return nil, &ParseError{Input: s, Pos: i}
		}
	}
	return v, nil
}

// ParseError reports an invalid character in a vector string.
type ParseError struct {
	Input string
	Pos   int
}

func (e *ParseError) Error() string {
	return "gesture: invalid finger vector " + strconv.Quote(e.Input) + " at " + strconv.Itoa(e.Pos)
}

// Classify reports which fingers of hand are raised in a frame of the given size.
//
// The thumb extends sideways, so its tip must be left of the IP joint (smaller x).
// The other fingertips must be above their PIP joint (smaller y, image y grows downward).
func Classify(hand detector.Hand, width, height int) Vector {
	pos := detector.PixelPositions(hand, width, height)
	fingers := make(Vector, NumFingers)

	thumb := detector.TipIDs[Thumb]
	if pos[thumb].X < pos[thumb-1].X {
		fingers[Thumb] = 1
	}

	for f := Index; f < NumFingers; f++ {
		tip := detector.TipIDs[f]
		if pos[tip].Y < pos[tip-2].Y {
			fingers[f] = 1
		}
	}

	return fingers
}
