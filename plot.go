package anydqn

import (
	"errors"
	"io"
	"strconv"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/unixpickle/essentials"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
)

// SmoothingWindow is the moving-average window used for
// the smoothed series in reward plots.
const SmoothingWindow = 10

var errEmptyHistory = errors.New("reward history is empty")

// PlotHTML writes an interactive line chart of the reward
// history as an HTML page.
func PlotHTML(w io.Writer, title string, r RewardHistory) (err error) {
	defer essentials.AddCtxTo("plot rewards (html)", &err)
	if len(r) == 0 {
		return errEmptyHistory
	}

	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: title}),
		charts.WithInitializationOpts(opts.Initialization{Theme: "shine"}),
		charts.WithXAxisOpts(opts.XAxis{Name: "Episode"}),
		charts.WithYAxisOpts(opts.YAxis{Name: "Reward"}),
	)

	episodes := make([]string, len(r))
	raw := make([]opts.LineData, len(r))
	smooth := make([]opts.LineData, len(r))
	for i, x := range r.MovingAverage(SmoothingWindow) {
		episodes[i] = strconv.Itoa(i)
		raw[i] = opts.LineData{Value: r[i]}
		smooth[i] = opts.LineData{Value: x}
	}
	line.SetXAxis(episodes).
		AddSeries("Episode reward", raw).
		AddSeries("Moving average", smooth)

	page := components.NewPage()
	page.AddCharts(line)
	return page.Render(w)
}

// PlotPNG saves a static line chart of the reward history
// to a PNG file.
func PlotPNG(path, title string, r RewardHistory) (err error) {
	defer essentials.AddCtxTo("plot rewards (png)", &err)
	if len(r) == 0 {
		return errEmptyHistory
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Episode"
	p.Y.Label.Text = "Reward"

	raw := make(plotter.XYs, len(r))
	smooth := make(plotter.XYs, len(r))
	for i, x := range r.MovingAverage(SmoothingWindow) {
		raw[i].X, raw[i].Y = float64(i), r[i]
		smooth[i].X, smooth[i].Y = float64(i), x
	}

	rawLine, err := plotter.NewLine(raw)
	if err != nil {
		return err
	}
	smoothLine, err := plotter.NewLine(smooth)
	if err != nil {
		return err
	}
	smoothLine.Width = vg.Points(2)
	smoothLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}

	p.Add(rawLine, smoothLine)
	p.Legend.Add("Episode reward", rawLine)
	p.Legend.Add("Moving average", smoothLine)

	return p.Save(8*vg.Inch, 5*vg.Inch, path)
}
