package report

import (
	"fmt"
	"os"
	"strings"
)

// WriteSVG renders the comparison plot as a standalone SVG: raw samples
// as dots, initial and fitted curves as paths, scaled into a padded
// viewport.
func WriteSVG(path string, c Curves, width, height int) error {
	ts := c.Data.Times()
	ys := c.Data.Shifts()

	initTs, initYs := c.curveSamples(c.Initial, 4*len(c.Data))
	fitTs, fitYs := c.curveSamples(c.Fitted, 4*len(c.Data))

	minX, maxX := bounds(ts)
	minY, maxY := bounds(append(append(append([]float64{}, ys...), initYs...), fitYs...))

	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.05
	maxX += rangeX * 0.05
	minY -= rangeY * 0.05
	maxY += rangeY * 0.05
	rangeX = maxX - minX
	rangeY = maxY - minY

	px := func(x float64) float64 { return (x - minX) / rangeX * float64(width) }
	py := func(y float64) float64 { return float64(height) - (y-minY)/rangeY*float64(height) }

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="#ffffff"/>
<text x="8" y="16" font-family="monospace" font-size="12">%s</text>
`, width, height, width, height, c.title()))

	sb.WriteString(`<g fill="#4488ff">` + "\n")
	for i := range ts {
		sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="1.5"/>`+"\n", px(ts[i]), py(ys[i])))
	}
	sb.WriteString("</g>\n")

	writePath := func(xs, ys []float64, stroke string) {
		sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke))
		for i := range xs {
			if i == 0 {
				sb.WriteString(fmt.Sprintf("%.1f,%.1f", px(xs[i]), py(ys[i])))
			} else {
				sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", px(xs[i]), py(ys[i])))
			}
		}
		sb.WriteString("\"/>\n")
	}
	writePath(initTs, initYs, "#bbbbbb")
	writePath(fitTs, fitYs, "#ff4444")

	sb.WriteString("</svg>\n")

	if err := os.WriteFile(path, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

func bounds(vals []float64) (min, max float64) {
	if len(vals) == 0 {
		return 0, 0
	}
	min, max = vals[0], vals[0]
	for _, v := range vals {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	return min, max
}
