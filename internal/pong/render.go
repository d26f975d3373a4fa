package pong

import (
	"math"
	"strings"
)

// Palette colors, matching the terminal theme.
const (
	ColorBackground = "#1e1e2e"
	ColorForeground = "#cdd6f4"
	ColorLine       = "#45475a"
	ColorBall       = "#89b4fa"
)

// Surface is anything a court can be drawn onto.
type Surface interface {
	Fill(color string)
	FillRect(x, y, w, h float64, color string)
	DashedLine(x, y0, y1, dash, gap float64, color string)
	FillCircle(cx, cy, r float64, color string)
}

// Render draws a full frame of s onto dst. It never touches game state.
func Render(s Snapshot, dst Surface) {
	dst.Fill(ColorBackground)
	dst.DashedLine(Width/2, 8, Height-8, 6, 10, ColorLine)
	dst.FillRect(PaddleInset, s.PlayerY, PaddleWidth, PaddleHeight, ColorForeground)
	dst.FillRect(Width-PaddleInset-PaddleWidth, s.CPUY, PaddleWidth, PaddleHeight, ColorForeground)
	dst.FillCircle(s.BallX, s.BallY, BallRadius, ColorBall)
}

// Op is one recorded drawing instruction.
type Op struct {
	Kind  string    `json:"op"`
	Args  []float64 `json:"args,omitempty"`
	Color string    `json:"color"`
}

// DrawList records drawing instructions so a browser canvas can replay them.
type DrawList struct {
	Ops []Op `json:"ops"`
}

func (d *DrawList) Fill(color string) {
	d.Ops = append(d.Ops, Op{Kind: "fill", Args: []float64{0, 0, Width, Height}, Color: color})
}

func (d *DrawList) FillRect(x, y, w, h float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: "rect", Args: []float64{x, y, w, h}, Color: color})
}

func (d *DrawList) DashedLine(x, y0, y1, dash, gap float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: "dash", Args: []float64{x, y0, y1, dash, gap}, Color: color})
}

func (d *DrawList) FillCircle(cx, cy, r float64, color string) {
	d.Ops = append(d.Ops, Op{Kind: "circle", Args: []float64{cx, cy, r}, Color: color})
}

// Grid rasterizes the court into a fixed character matrix for terminals.
// Colors are ignored; glyphs distinguish the shapes.
type Grid struct {
	cols, rows int
	cells      [][]rune
}

// NewGrid returns a blank grid of the given size in characters.
func NewGrid(cols, rows int) *Grid {
	g := &Grid{cols: max(cols, 1), rows: max(rows, 1)}
	g.cells = make([][]rune, g.rows)
	for i := range g.cells {
		g.cells[i] = make([]rune, g.cols)
	}
	return g
}

func (g *Grid) Fill(string) {
	for _, row := range g.cells {
		for i := range row {
			row[i] = ' '
		}
	}
}

func (g *Grid) FillRect(x, y, w, h float64, _ string) {
	c0, r0 := g.cell(x, y)
	c1, r1 := g.cell(x+w-0.01, y+h-0.01)
	for r := r0; r <= r1; r++ {
		for c := c0; c <= c1; c++ {
			g.set(c, r, '█')
		}
	}
}

func (g *Grid) DashedLine(x, y0, y1, dash, gap float64, _ string) {
	for y := y0; y < y1; y += dash + gap {
		c, r := g.cell(x, y)
		g.set(c, r, '┊')
	}
}

func (g *Grid) FillCircle(cx, cy, _ float64, _ string) {
	c, r := g.cell(cx, cy)
	g.set(c, r, '●')
}

// String returns the grid as newline separated rows.
func (g *Grid) String() string {
	var b strings.Builder
	for i, row := range g.cells {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(string(row))
	}
	return b.String()
}

func (g *Grid) cell(x, y float64) (int, int) {
	c := int(math.Floor(x / Width * float64(g.cols)))
	r := int(math.Floor(y / Height * float64(g.rows)))
	return min(max(c, 0), g.cols-1), min(max(r, 0), g.rows-1)
}

func (g *Grid) set(c, r int, ch rune) {
	g.cells[r][c] = ch
}
