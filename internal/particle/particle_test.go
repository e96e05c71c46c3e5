package particle

import (
	"math/rand"
	"testing"

	"gocv.io/x/gocv"

	"github.com/ayusman/saiyan/internal/geometry"
)

func TestEnergy_LifeMonotonic(t *testing.T) {
	e := NewEnergy(rand.New(rand.NewSource(1)))
	center := geometry.Point{X: 640, Y: 360}
	for i := 0; i < 20; i++ {
		e.Add(center)
	}

	prev := e.Fragments()
	for tick := 0; tick < 60; tick++ {
		e.Advance()
		e.Cull()

		cur := e.Fragments()
		if len(cur) > len(prev) {
			t.Fatalf("tick %d: population grew from %d to %d without spawning", tick, len(prev), len(cur))
		}
		for _, f := range cur {
			if f.Life <= 0 {
				t.Fatalf("tick %d: spent fragment survived cull (life %f)", tick, f.Life)
			}
		}

		// Survivors keep their order, so match them against the previous
		// tick by decay rate.
		j := 0
		for _, f := range cur {
			for j < len(prev) && prev[j].Decay != f.Decay {
				j++
			}
			if j == len(prev) {
				t.Fatalf("tick %d: fragment not found in previous tick", tick)
			}
			if f.Life > prev[j].Life {
				t.Fatalf("tick %d: life increased from %f to %f", tick, prev[j].Life, f.Life)
			}
			j++
		}
		prev = cur
	}

	// Slowest decay is 0.02 per tick, so 60 ticks exhaust every fragment.
	if e.Len() != 0 {
		t.Errorf("Len() = %d after 60 ticks, want 0", e.Len())
	}
}

func TestEnergy_AddRanges(t *testing.T) {
	e := NewEnergy(rand.New(rand.NewSource(2)))
	center := geometry.Point{X: 100, Y: 100}
	for i := 0; i < 200; i++ {
		e.Add(center)
	}

	for _, f := range e.Fragments() {
		if f.Life != 1.0 {
			t.Errorf("initial life = %f, want 1.0", f.Life)
		}
		if f.Decay < FragmentMinDecay || f.Decay > FragmentMaxDecay {
			t.Errorf("decay = %f, want within [%f, %f]", f.Decay, FragmentMinDecay, FragmentMaxDecay)
		}
		speed := geometry.Distance(geometry.Point{}, f.Vel)
		if speed < FragmentMinSpeed-1e-9 || speed > FragmentMaxSpeed+1e-9 {
			t.Errorf("speed = %f, want within [%f, %f]", speed, FragmentMinSpeed, FragmentMaxSpeed)
		}
		if f.Pos != center {
			t.Errorf("spawned at %+v, want %+v", f.Pos, center)
		}
	}
}

func TestEnergy_SpawnChance(t *testing.T) {
	e := NewEnergy(rand.New(rand.NewSource(3)))

	e.SpawnChance = 0
	for i := 0; i < 100; i++ {
		e.Spawn(geometry.Point{})
	}
	if e.Len() != 0 {
		t.Errorf("Len() = %d with zero spawn chance, want 0", e.Len())
	}

	e.SpawnChance = 1
	for i := 0; i < 10; i++ {
		e.Spawn(geometry.Point{})
	}
	if e.Len() != 10 {
		t.Errorf("Len() = %d with certain spawn, want 10", e.Len())
	}

	e.Clear()
	e.SpawnChance = FragmentSpawnChance
	for i := 0; i < 1000; i++ {
		e.Spawn(geometry.Point{})
	}
	if e.Len() < 300 || e.Len() > 500 {
		t.Errorf("Len() = %d after 1000 spawns at p=0.4, want about 400", e.Len())
	}
}

func TestWrap(t *testing.T) {
	tests := []struct {
		v, size, want float64
	}{
		{-1, 100, 99},
		{100, 100, 0},
		{150, 100, 50},
		{-250, 100, 50},
		{42, 100, 42},
	}

	for _, tt := range tests {
		if got := wrap(tt.v, tt.size); got != tt.want {
			t.Errorf("wrap(%f, %f) = %f, want %f", tt.v, tt.size, got, tt.want)
		}
	}
}

func TestDust_StaysInFrame(t *testing.T) {
	d := NewDust(0, rand.New(rand.NewSource(4)))
	const w, h = 320, 240

	for tick := 0; tick < 500; tick++ {
		d.Advance(w, h)
		for i, m := range d.Motes() {
			if m.Pos.X < 0 || m.Pos.X >= w || m.Pos.Y < 0 || m.Pos.Y >= h {
				t.Fatalf("tick %d: mote %d at %+v left the frame", tick, i, m.Pos)
			}
		}
	}

	if got := len(d.Motes()); got != DustCount {
		t.Errorf("pool size = %d, want %d", got, DustCount)
	}
}

func TestDust_LazyInit(t *testing.T) {
	d := NewDust(5, rand.New(rand.NewSource(5)))
	if len(d.Motes()) != 0 {
		t.Fatal("pool should be empty before the first Advance")
	}

	d.Advance(0, 0)
	if len(d.Motes()) != 0 {
		t.Error("zero-size frame should not populate the pool")
	}

	d.Advance(100, 100)
	if len(d.Motes()) != 5 {
		t.Errorf("pool size = %d, want 5", len(d.Motes()))
	}
}

func TestDust_DriftsLeft(t *testing.T) {
	d := NewDust(1, rand.New(rand.NewSource(6)))
	d.Advance(10000, 100)
	before := d.Motes()[0]

	d.Advance(10000, 100)
	after := d.Motes()[0]

	if after.Pos.X >= before.Pos.X && before.Pos.X > 10 {
		t.Errorf("mote moved from x=%f to x=%f, want leftward", before.Pos.X, after.Pos.X)
	}
}

func TestRocks_SpawnThreshold(t *testing.T) {
	r := NewRocks(rand.New(rand.NewSource(7)))
	center := geometry.Point{X: 640, Y: 360}

	for i := 0; i < 100; i++ {
		r.Spawn(center, RockRadiusThreshold, 720)
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d at the threshold radius, want 0", r.Len())
	}

	for i := 0; i < 100; i++ {
		r.Spawn(center, RockRadiusThreshold+20, 720)
	}
	if r.Len() == 0 {
		t.Fatal("expected rocks above the threshold radius")
	}

	for _, rock := range r.All() {
		if rock.Pos.Y != 720 {
			t.Errorf("rock spawned at y=%f, want bottom edge", rock.Pos.Y)
		}
		if rock.Vel.Y >= 0 {
			t.Errorf("rock velocity %+v, want upward", rock.Vel)
		}
	}
}

func TestRocks_RemovedAboveTop(t *testing.T) {
	r := NewRocks(rand.New(rand.NewSource(8)))
	for i := 0; i < 200 && r.Len() < 5; i++ {
		r.Spawn(geometry.Point{X: 640, Y: 360}, 200, 720)
	}
	if r.Len() == 0 {
		t.Fatal("expected rocks to spawn")
	}

	// Slowest rise is 3 px per tick: 720 + size clears the top well within
	// 300 ticks.
	for tick := 0; tick < 300; tick++ {
		r.Advance()
		r.Cull()
	}
	if r.Len() != 0 {
		t.Errorf("Len() = %d, want 0 once every rock left the frame", r.Len())
	}
}

func TestRock_Quad(t *testing.T) {
	rock := Rock{Pos: geometry.Point{X: 50, Y: 50}, Size: 10}
	quad := rock.Quad()

	if len(quad) != 4 {
		t.Fatalf("Quad() has %d corners, want 4", len(quad))
	}
	if quad[0].X != 60 || quad[0].Y != 50 {
		t.Errorf("first corner = %v, want (60,50)", quad[0])
	}
	if quad[2].X != 40 || quad[2].Y != 50 {
		t.Errorf("third corner = %v, want (40,50)", quad[2])
	}
}

func TestRender(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping gocv rendering test in short mode")
	}

	frame := gocv.NewMatWithSizeFromScalar(gocv.NewScalar(0, 0, 0, 0), 240, 320, gocv.MatTypeCV8UC3)
	defer frame.Close()

	rng := rand.New(rand.NewSource(9))

	e := NewEnergy(rng)
	e.Add(geometry.Point{X: 160, Y: 120})
	e.Render(&frame)

	d := NewDust(0, rng)
	d.Advance(320, 240)
	d.Render(&frame)

	r := NewRocks(rng)
	r.rocks = append(r.rocks, Rock{Pos: geometry.Point{X: 100, Y: 100}, Size: 10})
	r.Render(&frame)

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(frame, &gray, gocv.ColorBGRToGray)

	if gocv.CountNonZero(gray) == 0 {
		t.Error("expected particles to draw something")
	}
	if frame.Rows() != 240 || frame.Cols() != 320 {
		t.Errorf("frame resized to %dx%d", frame.Cols(), frame.Rows())
	}
}
