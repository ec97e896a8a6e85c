// Package report renders observed and simulated series side by side.
package report

import (
	"fmt"
	"path/filepath"
	"regexp"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"ts-objective/internal/objective"
)

var unsafeName = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// PlotObjective writes one PNG per matched geometry of o into dir and
// returns the file paths. X is days since the first paired sample.
func PlotObjective(o *objective.Objective, dir string) ([]string, error) {
	var paths []string
	for _, r := range o.Output.Results() {
		if !r.Matched {
			continue
		}
		s := o.Output.Samples(r.GeometryIndex)
		if s.Len() == 0 {
			continue
		}

		p := plot.New()
		p.Title.Text = fmt.Sprintf("%s geometry %d (%s = %.4g)", o.Name, r.GeometryIndex, o.Algorithm, r.Value)
		p.X.Label.Text = "Days"
		p.Y.Label.Text = "Value"

		origin := s.Times[0]
		obs := make(plotter.XYs, s.Len())
		sim := make(plotter.XYs, s.Len())
		for i := range s.Times {
			x := s.Times[i] - origin
			obs[i] = plotter.XY{X: x, Y: s.Observed[i]}
			sim[i] = plotter.XY{X: x, Y: s.Simulated[i]}
		}

		if err := plotutil.AddLinePoints(p, "observed", obs, "simulated", sim); err != nil {
			return paths, fmt.Errorf("objective %s geometry %d: %w", o.Name, r.GeometryIndex, err)
		}
		p.Legend.Top = true

		file := filepath.Join(dir, fmt.Sprintf("%s_%d.png", unsafeName.ReplaceAllString(o.Name, "_"), r.GeometryIndex))
		if err := p.Save(10*vg.Inch, 4*vg.Inch, file); err != nil {
			return paths, fmt.Errorf("save plot: %w", err)
		}
		paths = append(paths, file)
	}
	return paths, nil
}

// PlotAll plots every objective.
func PlotAll(objs []*objective.Objective, dir string) ([]string, error) {
	var all []string
	for _, o := range objs {
		paths, err := PlotObjective(o, dir)
		all = append(all, paths...)
		if err != nil {
			return all, err
		}
	}
	return all, nil
}
