// Package geometry turns raw keypoint sets into the scalars the gesture
// classifier works with: centroids, distances, velocities, bounding areas
// and hand openness.
package geometry

import "math"

// Point is a 2-D point. Depending on the caller it holds either normalized
// [0,1] image coordinates or pixel coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Openness calibration in normalized image units: a fist measures about
// 0.1 from wrist to fingertip, an open palm 0.3 or more.
const (
	OpennessClosed = 0.1
	OpennessOpen   = 0.3
)

// Add returns p+q.
func (p Point) Add(q Point) Point {
	return Point{X: p.X + q.X, Y: p.Y + q.Y}
}

// Scale returns p scaled by k.
func (p Point) Scale(k float64) Point {
	return Point{X: p.X * k, Y: p.Y * k}
}

// Centroid returns the mean of all points converted to pixel coordinates
// for a frame of the given size. An empty set yields the origin.
func Centroid(points []Point, width, height int) Point {
	if len(points) == 0 {
		return Point{}
	}

	var sumX, sumY float64
	for _, p := range points {
		sumX += p.X
		sumY += p.Y
	}

	n := float64(len(points))
	return Point{
		X: sumX / n * float64(width),
		Y: sumY / n * float64(height),
	}
}

// Midpoint returns the point halfway between a and b.
func Midpoint(a, b Point) Point {
	return Point{X: (a.X + b.X) / 2, Y: (a.Y + b.Y) / 2}
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Point) float64 {
	return math.Hypot(b.X-a.X, b.Y-a.Y)
}

// Velocity returns the distance travelled from a to b divided by dt.
// A non-positive dt yields zero.
func Velocity(a, b Point, dt float64) float64 {
	if dt <= 0 {
		return 0
	}
	return Distance(a, b) / dt
}

// BoundingArea returns the area of the axis-aligned bounding box of the
// points, in the units of the points.
func BoundingArea(points []Point) float64 {
	if len(points) == 0 {
		return 0
	}

	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points[1:] {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	return (maxX - minX) * (maxY - minY)
}

// Openness maps the wrist-to-fingertip distance onto [0,1], where 0 is a
// closed fist and 1 an open palm.
func Openness(wrist, tip Point) float64 {
	raw := Distance(wrist, tip)
	return Clamp((raw-OpennessClosed)/(OpennessOpen-OpennessClosed), 0, 1)
}

// Clamp limits v to [lo, hi].
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Between reports whether x lies strictly between a and b, in either order.
func Between(a, x, b float64) bool {
	return (a < x && x < b) || (b < x && x < a)
}
