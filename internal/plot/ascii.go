package plot

import (
	"math"
	"strings"
)

// Plot symbols.
const (
	symAssumed   = '+'
	symIntercept = 'o'
	symFix       = 'X'
)

// lineSymbols label the lines in sight order.
const lineSymbols = "123456789abcdefghijklmnopqrstuvwxyz"

// LineSymbol returns the character that marks the i-th line.
func LineSymbol(i int) rune {
	return rune(lineSymbols[i%len(lineSymbols)])
}

// RenderASCII draws the lines of position in a width x height character
// grid, north up. Terminal cells are about twice as tall as wide, so the
// horizontal scale is doubled.
func (p Plot) RenderASCII(width, height int) string {
	if width < 10 {
		width = 10
	}
	if height < 5 {
		height = 5
	}
	if len(p.Lines) == 0 {
		return "No active sights to plot"
	}

	origin := p.Lines[0].LOP.Intercept
	if p.Assumed != nil {
		origin = *p.Assumed
	}
	proj := newProjection(origin)

	type pt struct{ x, y float64 }
	var all []pt
	add := func(x, y float64) pt {
		q := pt{x, y}
		all = append(all, q)
		return q
	}

	type seg struct{ a, ip, b pt }
	segs := make([]seg, len(p.Lines))
	for i, l := range p.Lines {
		segs[i] = seg{
			a:  add(proj.toPlane(l.LOP.Left)),
			ip: add(proj.toPlane(l.LOP.Intercept)),
			b:  add(proj.toPlane(l.LOP.Right)),
		}
	}
	var assumed, fix *pt
	if p.Assumed != nil {
		q := add(proj.toPlane(*p.Assumed))
		assumed = &q
	}
	if p.Fix != nil {
		q := add(proj.toPlane(*p.Fix))
		fix = &q
	}

	minX, maxX, minY, maxY := math.Inf(1), math.Inf(-1), math.Inf(1), math.Inf(-1)
	for _, q := range all {
		minX, maxX = math.Min(minX, q.x), math.Max(maxX, q.x)
		minY, maxY = math.Min(minY, q.y), math.Max(maxY, q.y)
	}

	// One scale for both axes, in nautical miles per row.
	spanX := (maxX - minX) / 2
	spanY := maxY - minY
	scale := math.Max(spanX/float64(width-1), spanY/float64(height-1))
	if scale == 0 {
		scale = 1
	}
	cx, cy := (minX+maxX)/2, (minY+maxY)/2

	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}
	cell := func(q pt) (int, int) {
		col := int(math.Round(float64(width-1)/2 + (q.x-cx)/(2*scale)))
		row := int(math.Round(float64(height-1)/2 - (q.y-cy)/scale))
		return col, row
	}
	set := func(col, row int, r rune) {
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = r
		}
	}

	for i, s := range segs {
		sym := LineSymbol(i)
		c0, r0 := cell(s.a)
		c1, r1 := cell(s.b)
		drawLine(c0, r0, c1, r1, func(c, r int) { set(c, r, sym) })
	}
	for _, s := range segs {
		c, r := cell(s.ip)
		set(c, r, symIntercept)
	}
	if assumed != nil {
		c, r := cell(*assumed)
		set(c, r, symAssumed)
	}
	if fix != nil {
		c, r := cell(*fix)
		set(c, r, symFix)
	}

	lines := make([]string, height)
	for r, row := range grid {
		lines[r] = strings.TrimRight(string(row), " ")
	}
	return strings.Join(lines, "\n")
}

// drawLine walks the cells between two points (Bresenham).
func drawLine(c0, r0, c1, r1 int, plot func(c, r int)) {
	dc := abs(c1 - c0)
	dr := -abs(r1 - r0)
	sc, sr := 1, 1
	if c0 > c1 {
		sc = -1
	}
	if r0 > r1 {
		sr = -1
	}
	e := dc + dr
	for {
		plot(c0, r0)
		if c0 == c1 && r0 == r1 {
			return
		}
		e2 := 2 * e
		if e2 >= dr {
			e += dr
			c0 += sc
		}
		if e2 <= dc {
			e += dc
			r0 += sr
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
