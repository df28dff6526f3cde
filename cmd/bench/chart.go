package main

import (
	"github.com/cockroachdb/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// plotSeries is one structure's (cacheFrames, latencyNs) series across the
// cache-size sweep, for the "Footprint_SteadyState" insert-latency phase.
type plotSeries struct {
	name   string
	points plotter.XYs
}

// renderLatencyChart draws insert latency vs. cache frame count for every
// series onto a single PNG, so the CSV's headline tradeoff is visible at a
// glance without opening a spreadsheet.
func renderLatencyChart(path string, series []plotSeries) error {
	p := plot.New()
	p.Title.Text = "Insert latency vs. cache size"
	p.X.Label.Text = "cache frames"
	p.Y.Label.Text = "ns/insert"

	for i, s := range series {
		line, points, err := plotter.NewLinePoints(s.points)
		if err != nil {
			return errors.Wrapf(err, "chart: series %s", s.name)
		}
		color := plotColor(i)
		line.Color = color
		points.Color = color
		p.Add(line, points)
		p.Legend.Add(s.name, line, points)
	}

	if err := p.Save(8*vg.Inch, 5*vg.Inch, path); err != nil {
		return errors.Wrapf(err, "chart: save %s", path)
	}
	return nil
}

func plotColor(i int) plotColorT {
	palette := []plotColorT{
		{R: 0xd6, G: 0x2d, B: 0x20, A: 0xff},
		{R: 0x1a, G: 0x73, B: 0xe8, A: 0xff},
		{R: 0x18, G: 0x8, B: 0x00, A: 0xff},
	}
	return palette[i%len(palette)]
}

// plotColorT implements color.Color so palette entries can be assigned
// directly to plotter line/point styles without importing image/color here.
type plotColorT struct{ R, G, B, A uint8 }

func (c plotColorT) RGBA() (r, g, b, a uint32) {
	r = uint32(c.R)
	r |= r << 8
	g = uint32(c.G)
	g |= g << 8
	b = uint32(c.B)
	b |= b << 8
	a = uint32(c.A)
	a |= a << 8
	return
}
