// Package overlay draws hand landmarks and metrics onto video frames.
package overlay

import (
	"image"
	"image/color"
	"strconv"

	"gocv.io/x/gocv"

	"github.com/ayusman/mudra/internal/detector"
)

// Colors used by the default styles.
var (
	Magenta   = color.RGBA{R: 255, G: 0, B: 255, A: 0}
	Red       = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	LightGray = color.RGBA{R: 224, G: 224, B: 224, A: 0}
)

// Filled is the thickness value that makes gocv fill a shape.
const Filled = -1

// Style controls how landmarks and connections are drawn.
type Style struct {
	LandmarkColor     color.RGBA
	LandmarkRadius    int
	LandmarkThickness int
	ConnectionColor   color.RGBA
	ConnectionWidth   int
}

// DefaultStyle matches the MediaPipe drawing utilities defaults.
func DefaultStyle() Style {
	return Style{
		LandmarkColor:     Red,
		LandmarkRadius:    2,
		LandmarkThickness: 2,
		ConnectionColor:   LightGray,
		ConnectionWidth:   2,
	}
}

// FPS text placement and font.
var (
	FPSOrigin    = image.Point{X: 10, Y: 70}
	FPSFont      = gocv.FontHersheyPlain
	FPSScale     = 3.0
	FPSColor     = Magenta
	FPSThickness = 3
)

// Renderer draws onto frames in place.
type Renderer struct {
	style Style
}

// NewRenderer creates a Renderer with the given style.
func NewRenderer(style Style) *Renderer {
	return &Renderer{style: style}
}

// DrawHands draws the skeleton and a marker per landmark for every hand in result.
// It does nothing when result holds no hands.
func (r *Renderer) DrawHands(frame *gocv.Mat, result detector.Result) {
	if frame == nil || frame.Empty() || result.Empty() {
		return
	}

	width, height := frame.Cols(), frame.Rows()
	for _, hand := range result.Hands() {
		positions := detector.PixelPositions(hand, width, height)

		for _, c := range detector.HandConnections {
			from := image.Pt(positions[c.From].X, positions[c.From].Y)
			to := image.Pt(positions[c.To].X, positions[c.To].Y)
			gocv.Line(frame, from, to, r.style.ConnectionColor, r.style.ConnectionWidth)
		}

		for _, p := range positions {
			gocv.Circle(frame, image.Pt(p.X, p.Y), r.style.LandmarkRadius, r.style.LandmarkColor, r.style.LandmarkThickness)
		}
	}
}

// DrawMarkers draws a filled circle of the given radius at each position.
func (r *Renderer) DrawMarkers(frame *gocv.Mat, positions []detector.Position, radius int, c color.RGBA) {
	if frame == nil || frame.Empty() {
		return
	}
	for _, p := range positions {
		gocv.Circle(frame, image.Pt(p.X, p.Y), radius, c, Filled)
	}
}

// DrawFPS writes the frame rate in the top-left corner.
func (r *Renderer) DrawFPS(frame *gocv.Mat, fps int) {
	if frame == nil || frame.Empty() {
		return
	}
	gocv.PutText(frame, strconv.Itoa(fps), FPSOrigin, FPSFont, FPSScale, FPSColor, FPSThickness)
}
