package report

import (
	"fmt"
	"image/color"

	"github.com/chenBenjamin97/football-analyzer/pkg/possession"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

//PlotPossession draws both teams' cumulative ball control share over the frames of a timeline and saves it to path (format from the extension)
func PlotPossession(tl *possession.Timeline, path string) error {
	if tl.Len() == 0 {
		return fmt.Errorf("PlotPossession: empty timeline")
	}

	team1 := make(plotter.XYs, tl.Len())
	team2 := make(plotter.XYs, tl.Len())
	for i := 0; i < tl.Len(); i++ {
		s1, s2, err := tl.Shares(i)
		if err != nil {
			return err
		}
		team1[i] = plotter.XY{X: float64(i), Y: s1 * 100}
		team2[i] = plotter.XY{X: float64(i), Y: s2 * 100}
	}

	p := plot.New()
	p.Title.Text = "Ball Control"
	p.X.Label.Text = "Frame"
	p.Y.Label.Text = "Share (%)"
	p.Y.Min = 0
	p.Y.Max = 100
	p.Add(plotter.NewGrid())

	line1, err := plotter.NewLine(team1)
	if err != nil {
		return err
	}
	line1.Color = color.RGBA{R: 220, G: 40, B: 40, A: 255}
	line1.Width = vg.Points(1.5)

	line2, err := plotter.NewLine(team2)
	if err != nil {
		return err
	}
	line2.Color = color.RGBA{R: 40, G: 80, B: 220, A: 255}
	line2.Width = vg.Points(1.5)

	p.Add(line1, line2)
	p.Legend.Add("Team 1", line1)
	p.Legend.Add("Team 2", line2)
	p.Legend.Top = true

	return p.Save(8*vg.Inch, 4*vg.Inch, path)
}
