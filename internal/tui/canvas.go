package tui

import (
	"fmt"
	"image"
	"image/color"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/diagramview/pkg/viewport"
)

const halfBlock = "▀"

// canvasSize is the drawable area in viewport units: one unit per column
// horizontally and two per row vertically (half-block cells).
func canvasSize(cols, rows int) viewport.Size {
	return viewport.Size{W: float64(cols), H: float64(rows * 2)}
}

// paintImage samples img under t into cols x rows half-block cells.
// Pixels outside the image take the background color.
func paintImage(img image.Image, cols, rows int, t viewport.Transform, bg color.Color) string {
	if cols <= 0 || rows <= 0 {
		return ""
	}
	b := img.Bounds()
	content := viewport.Size{W: float64(b.Dx()), H: float64(b.Dy())}
	m := viewport.Project(canvasSize(cols, rows), content, t)

	sample := func(x, y int) string {
		cx, cy := m.ToContent(float64(x)+0.5, float64(y)+0.5)
		ix, iy := int(math.Floor(cx))+b.Min.X, int(math.Floor(cy))+b.Min.Y
		if !(image.Point{X: ix, Y: iy}).In(b) {
			return hexColor(bg, bg)
		}
		return hexColor(img.At(ix, iy), bg)
	}

	var out strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		var runFg, runBg string
		runLen := 0
		flush := func() {
			if runLen == 0 {
				return
			}
			style := lipgloss.NewStyle().Foreground(lipgloss.Color(runFg)).Background(lipgloss.Color(runBg))
			out.WriteString(style.Render(strings.Repeat(halfBlock, runLen)))
			runLen = 0
		}
		for col := 0; col < cols; col++ {
			fg, bgc := sample(col, row*2), sample(col, row*2+1)
			if runLen > 0 && (fg != runFg || bgc != runBg) {
				flush()
			}
			runFg, runBg = fg, bgc
			runLen++
		}
		flush()
	}
	return out.String()
}

// hexColor blends c over bg and formats it as #rrggbb.
func hexColor(c, bg color.Color) string {
	r, g, b, a := c.RGBA()
	if a < 0xffff {
		br, bgg, bb, _ := bg.RGBA()
		inv := 0xffff - a
		r = r + br*inv/0xffff
		g = g + bgg*inv/0xffff
		b = b + bb*inv/0xffff
	}
	return fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8)
}

// paintText shows text lines panned by t, for artifacts without a raster
// preview. Zoom has no effect on text.
func paintText(text string, cols, rows int, t viewport.Transform) string {
	lines := strings.Split(text, "\n")
	dx, dy := int(math.Round(t.X)), int(math.Round(t.Y/2))

	var out strings.Builder
	for row := 0; row < rows; row++ {
		if row > 0 {
			out.WriteByte('\n')
		}
		i := row - dy
		if i < 0 || i >= len(lines) {
			continue
		}
		line := []rune(lines[i])
		start := -dx
		if start < 0 {
			out.WriteString(strings.Repeat(" ", min(-start, cols)))
			line = line[:max(0, min(len(line), cols+start))]
		} else if start < len(line) {
			line = line[start:min(len(line), start+cols)]
		} else {
			line = nil
		}
		out.WriteString(styleDim.Render(string(line)))
	}
	return out.String()
}
