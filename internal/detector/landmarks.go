// Package detector provides hand landmark detection interfaces and types.
package detector

import "math"

// Hand landmark indices following MediaPipe convention.
// See: https://developers.google.com/mediapipe/solutions/vision/hand_landmarker
const (
	Wrist        = 0
	ThumbCMC     = 1
	ThumbMCP     = 2
	ThumbIP      = 3
	ThumbTip     = 4
	IndexMCP     = 5
	IndexPIP     = 6
	IndexDIP     = 7
	IndexTip     = 8
	MiddleMCP    = 9
	MiddlePIP    = 10
	MiddleDIP    = 11
	MiddleTip    = 12
	RingMCP      = 13
	RingPIP      = 14
	RingDIP      = 15
	RingTip      = 16
	PinkyMCP     = 17
	PinkyPIP     = 18
	PinkyDIP     = 19
	PinkyTip     = 20
	NumLandmarks = 21
)

// TipIDs are the fingertip landmark indices, thumb first.
var TipIDs = [5]int{ThumbTip, IndexTip, MiddleTip, RingTip, PinkyTip}

// Connection is a pair of landmark indices joined by a bone in the hand skeleton.
type Connection struct {
	From int
	To   int
}

// HandConnections is the MediaPipe hand skeleton.
var HandConnections = []Connection{
	// palm
	{Wrist, ThumbCMC}, {Wrist, IndexMCP}, {IndexMCP, MiddleMCP},
	{MiddleMCP, RingMCP}, {RingMCP, PinkyMCP}, {Wrist, PinkyMCP},
	// thumb
	{ThumbCMC, ThumbMCP}, {ThumbMCP, ThumbIP}, {ThumbIP, ThumbTip},
	// index
	{IndexMCP, IndexPIP}, {IndexPIP, IndexDIP}, {IndexDIP, IndexTip},
	// middle
	{MiddleMCP, MiddlePIP}, {MiddlePIP, MiddleDIP}, {MiddleDIP, MiddleTip},
	// ring
	{RingMCP, RingPIP}, {RingPIP, RingDIP}, {RingDIP, RingTip},
	// pinky
	{PinkyMCP, PinkyPIP}, {PinkyPIP, PinkyDIP}, {PinkyDIP, PinkyTip},
}

// Landmark is a position normalized to the image size. X and Y are in [0,1];
// Z is relative depth with the wrist as origin.
type Landmark struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Hand is one detected hand: exactly NumLandmarks landmarks in index order.
type Hand struct {
	Landmarks  [NumLandmarks]Landmark `json:"landmarks"`
	Handedness string                 `json:"handedness"` // "Left" or "Right", as reported by the model
	Score      float64                `json:"score"`
}

// Result is the outcome of one detection. The zero value means no hands were found.
type Result struct {
	hands []Hand
}

// NewResult builds a Result holding the given hands.
func NewResult(hands ...Hand) Result {
	if len(hands) == 0 {
		return Result{}
	}
	return Result{hands: append([]Hand(nil), hands...)}
}

// Empty reports whether no hand was detected.
func (r Result) Empty() bool {
	return len(r.hands) == 0
}

// Len returns the number of detected hands.
func (r Result) Len() int {
	return len(r.hands)
}

// Hand returns the hand at index i. The second value is false when
// fewer than i+1 hands were detected.
func (r Result) Hand(i int) (Hand, bool) {
	if i < 0 || i >= len(r.hands) {
		return Hand{}, false
	}
	return r.hands[i], true
}

// Hands returns a copy of all detected hands.
func (r Result) Hands() []Hand {
	if len(r.hands) == 0 {
		return nil
	}
	return append([]Hand(nil), r.hands...)
}

// Position is a landmark in pixel space.
type Position struct {
	ID int `json:"id"`
	X  int `json:"x"`
	Y  int `json:"y"`
}

// ToPixel converts a normalized landmark to pixel coordinates for an image
// of the given size.
func ToPixel(l Landmark, width, height int) (int, int) {
	return int(math.Round(l.X * float64(width))), int(math.Round(l.Y * float64(height)))
}

// PixelPositions converts all landmarks of a hand to pixel coordinates.
// The caller must pass the dimensions of the frame the hand was detected in.
func PixelPositions(hand Hand, width, height int) []Position {
	positions := make([]Position, NumLandmarks)
	for i, lm := range hand.Landmarks {
		x, y := ToPixel(lm, width, height)
		positions[i] = Position{ID: i, X: x, Y: y}
	}
	return positions
}
