package analysis

import (
	"strings"

	"github.com/san-kum/pursuitsim/internal/pursuit"
)

type Point struct{ X, Y float64 }

// Portrait is a scatter of two observation components over time.
type Portrait struct {
	XIndex, YIndex int
	Points         []Point
}

// NewPortrait returns nil when either index is outside the observation.
func NewPortrait(obs []pursuit.Observation, xIdx, yIdx int) *Portrait {
	if xIdx < 0 || yIdx < 0 || xIdx >= pursuit.ObsSize || yIdx >= pursuit.ObsSize {
		return nil
	}
	p := &Portrait{XIndex: xIdx, YIndex: yIdx, Points: make([]Point, len(obs))}
	for i, o := range obs {
		p.Points[i] = Point{X: float64(o[xIdx]), Y: float64(o[yIdx])}
	}
	return p
}

// Bounds returns the unpadded extent of the points.
func (p *Portrait) Bounds() (minX, maxX, minY, maxY float64) {
	minX, maxX = p.Points[0].X, p.Points[0].X
	minY, maxY = p.Points[0].Y, p.Points[0].Y
	for _, pt := range p.Points {
		minX = min(minX, pt.X)
		maxX = max(maxX, pt.X)
		minY = min(minY, pt.Y)
		maxY = max(maxY, pt.Y)
	}
	return
}

// ASCII draws the portrait on a width x height canvas. Early points are '.',
// middle 'o' and late '•'. Axes are drawn where they cross the view.
func (p *Portrait) ASCII(width, height int) string {
	if p == nil || len(p.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	minX, maxX, minY, maxY := p.Bounds()
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	canvas := make([][]rune, height)
	for i := range canvas {
		canvas[i] = []rune(strings.Repeat(" ", width))
	}

	if minX <= 0 && maxX >= 0 {
		col := int(-minX / rangeX * float64(width-1))
		for row := range canvas {
			canvas[row][col] = '│'
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int(-minY/rangeY*float64(height-1))
		for col := range canvas[row] {
			if canvas[row][col] == '│' {
				canvas[row][col] = '┼'
			} else {
				canvas[row][col] = '─'
			}
		}
	}

	n := len(p.Points)
	for i, pt := range p.Points {
		col := int((pt.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((pt.Y-minY)/rangeY*float64(height-1))
		switch {
		case i < n/3:
			canvas[row][col] = '.'
		case i < 2*n/3:
			canvas[row][col] = 'o'
		default:
			canvas[row][col] = '•'
		}
	}

	var sb strings.Builder
	for _, row := range canvas {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
