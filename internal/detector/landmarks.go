// Package detector provides landmark detection interfaces and types for the
// hand and face keypoints that drive gesture classification.
package detector

import "github.com/ayusman/saiyan/internal/geometry"

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

// NoseTip is the face mesh index of the nose tip.
const NoseTip = 1

// Point3D represents a 3D point in space with x, y, z coordinates.
// X and Y are normalized to the frame, Z is relative depth.
type Point3D struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// XY drops the depth component.
func (p Point3D) XY() geometry.Point {
	return geometry.Point{X: p.X, Y: p.Y}
}

// HandLandmarks represents the 21 hand landmarks detected by MediaPipe.
type HandLandmarks struct {
	Points     [NumLandmarks]Point3D `json:"points"`
	Handedness string                `json:"handedness"` // "Left" or "Right"
	Score      float64               `json:"score"`
}

// Keypoints returns the hand's landmarks as normalized 2-D points.
func (h *HandLandmarks) Keypoints() []geometry.Point {
	points := make([]geometry.Point, NumLandmarks)
	for i, p := range h.Points {
		points[i] = p.XY()
	}
	return points
}

// Openness returns how open the hand is, from 0 (fist) to 1 (open palm),
// measured from the wrist to the middle fingertip.
func (h *HandLandmarks) Openness() float64 {
	return geometry.Openness(h.Points[Wrist].XY(), h.Points[MiddleTip].XY())
}

// FaceLandmarks represents one detected face mesh.
type FaceLandmarks struct {
	Points []Point3D `json:"points"`
}

// Nose returns the nose tip in normalized coordinates.
// ok is false when the mesh is too short to contain it.
func (f *FaceLandmarks) Nose() (geometry.Point, bool) {
	if f == nil || len(f.Points) <= NoseTip {
		return geometry.Point{}, false
	}
	return f.Points[NoseTip].XY(), true
}

// Landmarks is everything detected in a single frame: up to two hands and
// at most one face.
type Landmarks struct {
	Hands []HandLandmarks `json:"hands"`
	Face  *FaceLandmarks  `json:"face,omitempty"`
}
