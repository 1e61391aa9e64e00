package hitboxview

import (
	"bytes"
	"image/png"
	"testing"

	"ringside/internal/combat"
)

func testSnapshot() *combat.MatchSnapshot {
	return &combat.MatchSnapshot{
		Tick: 42,
		Fighters: []combat.FighterSnapshot{
			{ID: "ryu", X: 250, Facing: 1, Health: 640, MaxHealth: 1000, Meter: 30, MaxMeter: 100, State: "attacking"},
			{ID: "ken", X: 550, Facing: -1, Health: 180, MaxHealth: 1000, State: "hitstun"},
		},
		Hitboxes: []combat.BoxSnapshot{
			{Owner: "ryu", X: 305, Y: 40, HalfW: 25, HalfH: 12, Attack: "jab"},
		},
		Hurtboxes: []combat.BoxSnapshot{
			{Owner: "ryu", X: 250, Y: 50, HalfW: 20, HalfH: 50},
			{Owner: "ken", X: 550, Y: 50, HalfW: 20, HalfH: 50},
		},
	}
}

func TestRenderPNGProducesDecodableImage(t *testing.T) {
	r := NewRenderer(800, 480, 800, "")

	var buf bytes.Buffer
	if err := r.RenderPNG(testSnapshot(), &buf); err != nil {
		t.Fatalf("render: %v", err)
	}

	img, err := png.Decode(&buf)
	if err != nil {
		t.Fatalf("output is not decodable PNG: %v", err)
	}
	bounds := img.Bounds()
	if bounds.Dx() != 800 || bounds.Dy() != 480 {
		t.Fatalf("image is %dx%d, want 800x480", bounds.Dx(), bounds.Dy())
	}
}

func TestRenderPNGEmptyMatch(t *testing.T) {
	r := NewRenderer(320, 200, 800, "")

	var buf bytes.Buffer
	err := r.RenderPNG(&combat.MatchSnapshot{Tick: 1, RoundOver: true}, &buf)
	if err != nil {
		t.Fatalf("render with no fighters: %v", err)
	}
	if buf.Len() == 0 {
		t.Fatal("no bytes written")
	}
}
