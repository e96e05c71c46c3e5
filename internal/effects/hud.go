package effects

import (
	"image"
	"image/color"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/detector"
)

// HUDLine is one line of instruction text.
type HUDLine struct {
	Text      string
	Scale     float64
	Color     color.RGBA
	Thickness int
}

// DefaultHUD is the instruction overlay, bottom line last.
var DefaultHUD = []HUDLine{
	{Text: "SUPER SAIYAN MODE: Palms Together to charge", Scale: 0.6, Color: color.RGBA{R: 255, G: 200, B: 0, A: 255}, Thickness: 2},
	{Text: "Push TOWARD Camera to BURST", Scale: 0.5, Color: color.RGBA{R: 255, G: 255, B: 0, A: 255}, Thickness: 1},
}

// hudLineHeight is the vertical spacing of HUD lines in pixels.
const hudLineHeight = 25

// DrawHUD writes lines at the bottom-left of frame.
func DrawHUD(frame *gocv.Mat, lines []HUDLine) {
	if frame.Empty() {
		return
	}
	y := frame.Rows() - 15 - (len(lines)-1)*hudLineHeight
	for _, line := range lines {
		gocv.PutText(frame, line.Text, image.Pt(10, y), gocv.FontHersheySimplex, line.Scale, line.Color, line.Thickness)
		y += hudLineHeight
	}
}

// handBones are the landmark pairs joined when drawing a hand skeleton.
var handBones = [][2]int{
	{detector.Wrist, detector.ThumbCMC}, {detector.ThumbCMC, detector.ThumbMCP}, {detector.ThumbMCP, detector.ThumbIP}, {detector.ThumbIP, detector.ThumbTip},
	{detector.Wrist, detector.IndexMCP}, {detector.IndexMCP, detector.IndexPIP}, {detector.IndexPIP, detector.IndexDIP}, {detector.IndexDIP, detector.IndexTip},
	{detector.IndexMCP, detector.MiddleMCP}, {detector.MiddleMCP, detector.MiddlePIP}, {detector.MiddlePIP, detector.MiddleDIP}, {detector.MiddleDIP, detector.MiddleTip},
	{detector.MiddleMCP, detector.RingMCP}, {detector.RingMCP, detector.RingPIP}, {detector.RingPIP, detector.RingDIP}, {detector.RingDIP, detector.RingTip},
	{detector.RingMCP, detector.PinkyMCP}, {detector.Wrist, detector.PinkyMCP}, {detector.PinkyMCP, detector.PinkyPIP}, {detector.PinkyPIP, detector.PinkyDIP}, {detector.PinkyDIP, detector.PinkyTip},
}

var (
	boneColor  = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	jointColor = color.RGBA{R: 255, G: 0, B: 0, A: 255}
)

// DrawLandmarks draws the skeleton and joints of each hand onto frame.
func DrawLandmarks(frame *gocv.Mat, hands []detector.HandLandmarks) {
	if frame.Empty() {
		return
	}
	w, h := float64(frame.Cols()), float64(frame.Rows())
	px := func(p detector.Point3D) image.Point {
		return image.Pt(int(p.X*w), int(p.Y*h))
	}

	for i := range hands {
		hand := &hands[i]
		for _, bone := range handBones {
			gocv.Line(frame, px(hand.Points[bone[0]]), px(hand.Points[bone[1]]), boneColor, 2)
		}
		for _, p := range hand.Points {
			gocv.Circle(frame, px(p), 3, jointColor, -1)
		}
	}
}
