package tui

import (
	"math"
	"strings"

	"github.com/san-kum/beadsim/internal/pbd"
)

const (
	canvasWidth  = 49
	canvasHeight = 23
	wireSamples  = 180
)

// canvas is a character grid centred on the wire. Cells are roughly twice as
// tall as they are wide, so x is stretched by two.
type canvas struct {
	cells [][]rune
	wire  pbd.Wire
	scale float64
}

func newCanvas(wire pbd.Wire) *canvas {
	cells := make([][]rune, canvasHeight)
	for i := range cells {
		cells[i] = make([]rune, canvasWidth)
	}
	r := float64(wire.Radius)
	if r <= 0 {
		r = 1
	}
	return &canvas{
		cells: cells,
		wire:  wire,
		scale: float64(canvasHeight/2-1) / r,
	}
}

func (c *canvas) clear() {
	for y := range c.cells {
		for x := range c.cells[y] {
			c.cells[y][x] = ' '
		}
	}
}

func (c *canvas) set(x, y int, ch rune) {
	if x >= 0 && x < canvasWidth && y >= 0 && y < canvasHeight {
		c.cells[y][x] = ch
	}
}

// cell maps a world position to grid coordinates, y up.
func (c *canvas) cell(p pbd.Vec2) (int, int) {
	dx := float64(p.X-c.wire.Center.X) * c.scale
	dy := float64(p.Y-c.wire.Center.Y) * c.scale
	x := canvasWidth/2 + int(math.Round(2*dx))
	y := canvasHeight/2 - int(math.Round(dy))
	return x, y
}

func (c *canvas) drawWire() {
	r := float64(c.wire.Radius)
	for i := 0; i < wireSamples; i++ {
		theta := 2 * math.Pi * float64(i) / wireSamples
		p := pbd.Vec2{
			X: c.wire.Center.X + float32(r*math.Cos(theta)),
			Y: c.wire.Center.Y + float32(r*math.Sin(theta)),
		}
		x, y := c.cell(p)
		c.set(x, y, '.')
	}
	x, y := c.cell(c.wire.Center)
	c.set(x, y, '+')
}

func (c *canvas) drawBeads(beads []pbd.Bead) {
	for _, b := range beads {
		ch := 'o'
		if b.Radius >= 0.1 {
			ch = 'O'
		}
		x, y := c.cell(b.Pos)
		c.set(x, y, ch)
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for _, row := range c.cells {
		b.WriteString("   ")
		b.WriteString(strings.TrimRight(string(row), " "))
		b.WriteString("\n")
	}
	return b.String()
}

// renderGroup draws one group on its wire.
func renderGroup(wire pbd.Wire, beads []pbd.Bead) string {
	c := newCanvas(wire)
	c.clear()
	c.drawWire()
	c.drawBeads(beads)
	return c.String()
}
