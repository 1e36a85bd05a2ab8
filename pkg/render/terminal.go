package render

import (
	"bufio"
	"io"
	"math"
	"strings"

	"github.com/opd-ai/go-trainsim/pkg/arena"
	"github.com/opd-ai/go-trainsim/pkg/engine"
	"github.com/opd-ai/go-trainsim/pkg/physics"
)

const (
	glyphObstacle   = '#'
	glyphVehicle    = 'T'
	glyphLaser      = '*'
	glyphPoint      = 'o'
	glyphCenter     = '+'
	glyphProjectile = '.'
)

// TerminalRenderer draws an ASCII view of the arena
type TerminalRenderer struct {
	out       io.Writer
	width     int
	height    int
	buffer    [][]rune
	scale     float64
	centerPos physics.Vector2D
	// ClearScreen emits an ANSI clear before each frame.
	ClearScreen bool
}

// NewTerminalRenderer creates a renderer of width×height cells, each cell
// covering scale world units.
func NewTerminalRenderer(out io.Writer, width, height int, scale float64) *TerminalRenderer {
	buffer := make([][]rune, height)
	for i := range buffer {
		buffer[i] = make([]rune, width)
	}
	r := &TerminalRenderer{
		out:    out,
		width:  width,
		height: height,
		buffer: buffer,
		scale:  scale,
	}
	r.Clear()
	return r
}

// FitArena centres the view on a and picks a scale that shows all of it.
func (r *TerminalRenderer) FitArena(a *arena.Arena) {
	r.centerPos = physics.Vector2D{X: a.Width / 2, Y: a.Height / 2}
	r.scale = math.Max(a.Width/float64(r.width), a.Height/float64(r.height))
}

// SetCenter sets the center position of the view
func (r *TerminalRenderer) SetCenter(pos physics.Vector2D) {
	r.centerPos = pos
}

// worldToScreen converts world coordinates to a cell; screen rows grow
// downward so y is flipped.
func (r *TerminalRenderer) worldToScreen(pos physics.Vector2D) (int, int) {
	screenX := int(math.Floor((pos.X-r.centerPos.X)/r.scale + float64(r.width)/2))
	screenY := int(math.Floor(float64(r.height)/2 - (pos.Y-r.centerPos.Y)/r.scale))
	return screenX, screenY
}

func (r *TerminalRenderer) plot(pos physics.Vector2D, glyph rune) {
	x, y := r.worldToScreen(pos)
	if x >= 0 && x < r.width && y >= 0 && y < r.height {
		r.buffer[y][x] = glyph
	}
}

func (r *TerminalRenderer) line(a, b physics.Vector2D, glyph rune) {
	steps := int(math.Ceil(a.Distance(b)/r.scale)) + 1
	seg := physics.Segment{A: a, B: b}
	for i := 0; i <= steps; i++ {
		r.plot(seg.At(float64(i)/float64(steps)), glyph)
	}
}

// Clear implements Renderer
func (r *TerminalRenderer) Clear() {
	for y := range r.buffer {
		for x := range r.buffer[y] {
			r.buffer[y][x] = ' '
		}
	}
}

// RenderArena implements Renderer
func (r *TerminalRenderer) RenderArena(a *arena.Arena) {
	for _, o := range a.Obstacles {
		switch o.Kind {
		case arena.KindSegment:
			r.line(o.A, o.B, glyphObstacle)
		case arena.KindBox:
			for _, e := range (physics.Rect{Center: o.Center, Width: o.Width, Height: o.Height}).Edges() {
				r.line(e.A, e.B, glyphObstacle)
			}
		case arena.KindCircle:
			steps := int(math.Max(8, 2*math.Pi*o.Radius/r.scale))
			for i := 0; i < steps; i++ {
				angle := 2 * math.Pi * float64(i) / float64(steps)
				r.plot(o.Center.Add(physics.FromAngle(angle, o.Radius)), glyphObstacle)
			}
		}
	}
}

// RenderCluster implements Renderer
func (r *TerminalRenderer) RenderCluster(c engine.ClusterState) {
	for _, p := range c.Points {
		r.plot(p, glyphPoint)
	}
	r.plot(c.Center, glyphCenter)
}

// RenderVehicle implements Renderer
func (r *TerminalRenderer) RenderVehicle(v engine.VehicleState) {
	if v.LaserHit {
		r.plot(v.LaserPoint, glyphLaser)
	}
	r.plot(v.Pose.Position(), glyphVehicle)
}

// RenderProjectile implements Renderer
func (r *TerminalRenderer) RenderProjectile(p engine.ProjectileState) {
	r.plot(p.Position, glyphProjectile)
}

// Present implements Renderer
func (r *TerminalRenderer) Present() error {
	w := bufio.NewWriter(r.out)
	if r.ClearScreen {
		w.WriteString("\033[H\033[2J")
	}
	border := "+" + strings.Repeat("-", r.width) + "+\n"
	w.WriteString(border)
	for y := range r.buffer {
		w.WriteString("|")
		w.WriteString(string(r.buffer[y]))
		w.WriteString("|\n")
	}
	w.WriteString(border)
	return w.Flush()
}
