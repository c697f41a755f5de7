package report

import (
	"fmt"
	"image/color"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/banshee-data/trackstitch/internal/replay"
	"github.com/banshee-data/trackstitch/internal/stitch"
)

var (
	trackedColor   = color.RGBA{R: 31, G: 119, B: 180, A: 255}
	thresholdColor = color.RGBA{R: 214, G: 39, B: 40, A: 255}
	stitchColor    = color.RGBA{R: 44, G: 160, B: 44, A: 255}
)

// SavePNG writes a static continuity plot to path. The image format
// follows the file extension.
func SavePNG(path string, sum *replay.Summary, p stitch.Params) error {
	pl := plot.New()
	pl.Title.Text = "Percentage tracked: " + sum.Name
	pl.X.Label.Text = "frame"
	pl.Y.Label.Text = "tracked"
	pl.Y.Min = 0
	pl.Y.Max = 1

	trackedPts := make(plotter.XYs, 0, len(sum.Continuity))
	for _, tr := range sum.Continuity {
		trackedPts = append(trackedPts, plotter.XY{X: float64(tr.Frame), Y: tr.Percentage})
	}

	if len(trackedPts) > 0 {
		trackedLine, err := plotter.NewLine(trackedPts)
		if err != nil {
			return err
		}
		trackedLine.Color = trackedColor
		trackedLine.Width = vg.Points(1.5)
		pl.Add(trackedLine)
		pl.Legend.Add("percentage tracked", trackedLine)

		first, last := trackedPts[0].X, trackedPts[len(trackedPts)-1].X
		thresholdLine, err := plotter.NewLine(plotter.XYs{
			{X: first, Y: p.PercentMatchReq},
			{X: last, Y: p.PercentMatchReq},
		})
		if err != nil {
			return err
		}
		thresholdLine.Color = thresholdColor
		thresholdLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		pl.Add(thresholdLine)
		pl.Legend.Add("threshold", thresholdLine)
	}

	if len(sum.Stitches) > 0 {
		stitchPts := make(plotter.XYs, 0, len(sum.Stitches))
		for _, st := range sum.Stitches {
			stitchPts = append(stitchPts, plotter.XY{X: float64(st.ShotStart), Y: p.PercentMatchReq})
		}
		marks, err := plotter.NewScatter(stitchPts)
		if err != nil {
			return err
		}
		marks.GlyphStyle.Color = stitchColor
		marks.GlyphStyle.Radius = vg.Points(4)
		pl.Add(marks)
		pl.Legend.Add("stitched shot start", marks)
	}

	pl.Legend.Top = true
	pl.Legend.Left = false
	pl.Legend.XOffs = -10
	pl.Legend.YOffs = -10

	if err := pl.Save(10*vg.Inch, 4*vg.Inch, path); err != nil {
		return fmt.Errorf("save continuity plot: %w", err)
	}
	return nil
}
