package detector

import (
	"testing"
)

func TestScriptedDetector_Loops(t *testing.T) {
	script := []Landmarks{
		{Hands: []HandLandmarks{SyntheticHand(0.1, 0.1, 0.1)}},
		{},
	}
	d := NewScriptedDetector(script)
	defer d.Close()

	wantHands := []int{1, 0, 1, 0, 1}
	for i, want := range wantHands {
		got, err := d.Detect(nil)
		if err != nil {
			t.Fatalf("Detect() error = %v", err)
		}
		if len(got.Hands) != want {
			t.Errorf("call %d: %d hands, want %d", i, len(got.Hands), want)
		}
	}
}

func TestScriptedDetector_Empty(t *testing.T) {
	d := NewScriptedDetector(nil)

	got, err := d.Detect(nil)
	if err != nil {
		t.Fatalf("Detect() error = %v", err)
	}
	if len(got.Hands) != 0 || got.Face != nil {
		t.Errorf("empty script returned %+v", got)
	}
}

func TestDemoScript(t *testing.T) {
	script := DemoScript()
	d := NewScriptedDetector(script)
	if d.Len() != len(script) || len(script) == 0 {
		t.Fatalf("Len() = %d, script has %d entries", d.Len(), len(script))
	}

	var pairs, singles, burstPose int
	for _, entry := range script {
		if entry.Face == nil {
			t.Fatal("every demo entry should carry a face")
		}
		switch len(entry.Hands) {
		case 2:
			pairs++
			if entry.Hands[0].Openness() >= 0.4 {
				burstPose++
			}
		case 1:
			singles++
		}
	}

	if pairs == 0 || singles == 0 {
		t.Errorf("pairs = %d, singles = %d; want both", pairs, singles)
	}
	if burstPose != 30 {
		t.Errorf("burst pose entries = %d, want 30", burstPose)
	}
}

func TestLerp(t *testing.T) {
	tests := []struct {
		a, b float64
		i, n int
		want float64
	}{
		{0, 1, 0, 5, 0},
		{0, 1, 4, 5, 1},
		{0, 1, 2, 5, 0.5},
		{3, 7, 0, 1, 7},
	}

	for _, tt := range tests {
		if got := lerp(tt.a, tt.b, tt.i, tt.n); got != tt.want {
			t.Errorf("lerp(%v, %v, %d, %d) = %v, want %v", tt.a, tt.b, tt.i, tt.n, got, tt.want)
		}
	}
}
