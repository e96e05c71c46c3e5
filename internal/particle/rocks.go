package particle

import (
	"image"
	"image/color"
	"math"
	"math/rand"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/geometry"
)

// Rock tunables.
const (
	RockRadiusThreshold = 80.0
	RockSpawnChance     = 0.3
	RockSpread          = 200.0
	RockOpacity         = 0.7
	RockMinSize         = 4.0
	RockMaxSize         = 12.0
)

// RockColor is the flat colour of debris.
var RockColor = color.RGBA{R: 45, G: 40, B: 35, A: 255}

// Rock is one piece of debris.
type Rock struct {
	Pos      geometry.Point
	Vel      geometry.Point
	Size     float64
	Angle    float64
	Rotation float64
}

// Rocks is the debris population lifted from the bottom edge while the
// charge is large enough.
type Rocks struct {
	Threshold float64

	rocks []Rock
	rng   *rand.Rand
}

// NewRocks creates an empty population.
func NewRocks(rng *rand.Rand) *Rocks {
	return &Rocks{
		Threshold: RockRadiusThreshold,
		rng:       rng,
	}
}

// Spawn may add a rock at the bottom edge of a frame of the given height,
// near center.X, when radius exceeds the threshold.
func (r *Rocks) Spawn(center geometry.Point, radius float64, height int) {
	if radius <= r.Threshold || r.rng.Float64() >= RockSpawnChance {
		return
	}
	r.rocks = append(r.rocks, Rock{
		Pos: geometry.Point{
			X: center.X + (r.rng.Float64()-0.5)*RockSpread,
			Y: float64(height),
		},
		Vel: geometry.Point{
			X: (r.rng.Float64() - 0.5) * 2,
			Y: -(3 + r.rng.Float64()*5),
		},
		Size:     RockMinSize + r.rng.Float64()*(RockMaxSize-RockMinSize),
		Angle:    r.rng.Float64() * 2 * math.Pi,
		Rotation: (r.rng.Float64() - 0.5) * 0.3,
	})
}

// Advance moves and spins every rock one tick.
func (r *Rocks) Advance() {
	for i := range r.rocks {
		rock := &r.rocks[i]
		rock.Pos = rock.Pos.Add(rock.Vel)
		rock.Angle += rock.Rotation
	}
}

// Cull removes rocks that left through the top edge.
func (r *Rocks) Cull() {
	kept := r.rocks[:0]
	for _, rock := range r.rocks {
		if rock.Pos.Y+rock.Size >= 0 {
			kept = append(kept, rock)
		}
	}
	r.rocks = kept
}

// Render draws the rocks as rotated quads blended onto frame.
func (r *Rocks) Render(frame *gocv.Mat) {
	if len(r.rocks) == 0 || frame.Empty() {
		return
	}

	overlay := frame.Clone()
	defer overlay.Close()

	polys := make([][]image.Point, 0, len(r.rocks))
	for _, rock := range r.rocks {
		polys = append(polys, rock.Quad())
	}
	pv := gocv.NewPointsVectorFromPoints(polys)
	defer pv.Close()

	gocv.FillPoly(&overlay, pv, RockColor)
	gocv.AddWeighted(overlay, RockOpacity, *frame, 1-RockOpacity, 0, frame)
}

// Quad returns the four corners of the rock in pixel coordinates.
func (rock Rock) Quad() []image.Point {
	corners := make([]image.Point, 4)
	for i := range corners {
		a := rock.Angle + float64(i)*math.Pi/2
		corners[i] = toImage(geometry.Point{
			X: rock.Pos.X + math.Cos(a)*rock.Size,
			Y: rock.Pos.Y + math.Sin(a)*rock.Size,
		})
	}
	return corners
}

// Len returns the number of live rocks.
func (r *Rocks) Len() int {
	return len(r.rocks)
}

// Clear drops every rock.
func (r *Rocks) Clear() {
	r.rocks = r.rocks[:0]
}

// All returns a copy of the live rocks.
func (r *Rocks) All() []Rock {
	out := make([]Rock, len(r.rocks))
	copy(out, r.rocks)
	return out
}

func toImage(p geometry.Point) image.Point {
	return image.Pt(int(math.Round(p.X)), int(math.Round(p.Y)))
}
