// Package hitboxview renders combat snapshots into debug frames: stage,
// fighters, health/meter bars and every live hit and hurtbox. Used by the
// /api/hitboxes.png endpoint for frame-data inspection.
package hitboxview

import (
	"image/color"
	"io"

	"github.com/fogleman/gg"

	"ringside/internal/combat"
)

// Renderer draws match snapshots onto a reusable drawing context.
// Not safe for concurrent use; the HTTP layer serializes calls.
type Renderer struct {
	width  int
	height int

	stageWidth float64
	groundY    float64 // Screen-space y of the stage floor
	fontPath   string

	dc *gg.Context
}

// NewRenderer creates a renderer for the given output size and stage width.
// fontPath may be empty; text overlays are skipped when no font loads.
func NewRenderer(width, height int, stageWidth float64, fontPath string) *Renderer {
	return &Renderer{
		width:      width,
		height:     height,
		stageWidth: stageWidth,
		groundY:    float64(height) - 40,
		fontPath:   fontPath,
		dc:         gg.NewContext(width, height),
	}
}

// toScreen maps world coordinates (x along the stage, y up from the floor)
// into screen space.
func (r *Renderer) toScreen(x, y float64) (float64, float64) {
	sx := x / r.stageWidth * float64(r.width)
	sy := r.groundY - y
	return sx, sy
}

// RenderPNG draws the snapshot and encodes it as PNG.
func (r *Renderer) RenderPNG(snap *combat.MatchSnapshot, w io.Writer) error {
	dc := r.dc

	r.drawBackground(dc)

	for _, f := range snap.Fighters {
		r.drawFighter(dc, f)
	}
	for _, box := range snap.Hurtboxes {
		r.drawBox(dc, box, color.RGBA{83, 255, 69, 60}, color.RGBA{83, 255, 69, 255})
	}
	for _, box := range snap.Hitboxes {
		r.drawBox(dc, box, color.RGBA{255, 62, 62, 80}, color.RGBA{255, 62, 62, 255})
	}

	r.drawOverlay(dc, snap)

	return dc.EncodePNG(w)
}

func (r *Renderer) drawBackground(dc *gg.Context) {
	dc.SetColor(color.RGBA{12, 12, 28, 255})
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()

	// Floor line
	dc.SetColor(color.RGBA{60, 60, 85, 255})
	dc.SetLineWidth(2)
	dc.DrawLine(0, r.groundY, float64(r.width), r.groundY)
	dc.Stroke()

	// Range grid every 100 world units
	dc.SetColor(color.RGBA{30, 30, 45, 255})
	dc.SetLineWidth(1)
	for x := 0.0; x <= r.stageWidth; x += 100 {
		sx, _ := r.toScreen(x, 0)
		dc.DrawLine(sx, 0, sx, r.groundY)
		dc.Stroke()
	}
}

func (r *Renderer) drawFighter(dc *gg.Context, f combat.FighterSnapshot) {
	sx, sy := r.toScreen(f.X, 0)

	// Facing marker at the feet
	dc.SetColor(color.RGBA{200, 200, 220, 255})
	dc.DrawLine(sx, sy, sx+float64(f.Facing)*14, sy)
	dc.SetLineWidth(3)
	dc.Stroke()

	// Health bar above the body
	barW, barH := 80.0, 8.0
	barY := sy - 200
	pct := float64(f.Health) / float64(f.MaxHealth)

	dc.SetColor(color.RGBA{51, 51, 51, 255})
	dc.DrawRectangle(sx-barW/2, barY, barW, barH)
	dc.Fill()

	switch {
	case pct > 0.5:
		dc.SetColor(color.RGBA{83, 255, 69, 255})
	case pct > 0.25:
		dc.SetColor(color.RGBA{255, 149, 0, 255})
	default:
		dc.SetColor(color.RGBA{255, 62, 62, 255})
	}
	dc.DrawRectangle(sx-barW/2, barY, barW*pct, barH)
	dc.Fill()

	// Meter bar underneath
	meterPct := float64(f.Meter) / float64(f.MaxMeter)
	dc.SetColor(color.RGBA{51, 51, 51, 255})
	dc.DrawRectangle(sx-barW/2, barY+barH+2, barW, 4)
	dc.Fill()
	dc.SetColor(color.RGBA{80, 160, 255, 255})
	dc.DrawRectangle(sx-barW/2, barY+barH+2, barW*meterPct, 4)
	dc.Fill()

	if err := dc.LoadFontFace(r.fontPath, 14); err == nil {
		dc.SetColor(color.White)
		dc.DrawStringAnchored(f.ID, sx, barY-14, 0.5, 0.5)
		dc.DrawStringAnchored(f.State, sx, sy+16, 0.5, 0.5)
	}
}

func (r *Renderer) drawBox(dc *gg.Context, box combat.BoxSnapshot, fill, stroke color.RGBA) {
	sx, sy := r.toScreen(box.X-box.HalfW, box.Y+box.HalfH)
	w := box.HalfW * 2 / r.stageWidth * float64(r.width)
	h := box.HalfH * 2

	dc.SetColor(fill)
	dc.DrawRectangle(sx, sy, w, h)
	dc.Fill()

	dc.SetColor(stroke)
	dc.SetLineWidth(2)
	dc.DrawRectangle(sx, sy, w, h)
	dc.Stroke()
}

func (r *Renderer) drawOverlay(dc *gg.Context, snap *combat.MatchSnapshot) {
	if err := dc.LoadFontFace(r.fontPath, 16); err != nil {
		return
	}
	dc.SetColor(color.RGBA{200, 200, 220, 255})
	dc.DrawString(tickLabel(snap), 10, 24)
	if snap.RoundOver {
		dc.SetColor(color.RGBA{255, 62, 62, 255})
		dc.DrawStringAnchored("ROUND OVER", float64(r.width)/2, 40, 0.5, 0.5)
	}
}

func tickLabel(snap *combat.MatchSnapshot) string {
	return "tick " + formatUint(snap.Tick)
}

// formatUint avoids fmt on the render path.
func formatUint(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
