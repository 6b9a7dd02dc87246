package exporter

import (
	"image/color"
	"io"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"

	"focuslog/internal/models"
	"focuslog/pkg/utils"
)

// ChartOptions controls the rendered chart. Sizes are in inches.
type ChartOptions struct {
	Width    float64
	Height   float64
	MaxLabel int
}

// DefaultChartOptions matches a 10x5 inch figure
func DefaultChartOptions() ChartOptions {
	return ChartOptions{Width: 10, Height: 5, MaxLabel: 32}
}

var barColor = color.RGBA{R: 52, G: 152, B: 219, A: 255}

// WriteChart renders summary as a PNG bar chart, one bar per row in order
func WriteChart(w io.Writer, summary []models.SummaryRow, opts ChartOptions) error {
	if len(summary) == 0 {
		return ErrEmptyReport
	}

	wt, err := renderChart(summary, opts)
	if err != nil {
		return err
	}

	_, err = wt.WriteTo(w)
	return err
}

// WriteChartFile renders the chart to path, replacing any existing file.
// Nothing is created for an empty summary.
func WriteChartFile(path string, summary []models.SummaryRow, opts ChartOptions) error {
	if len(summary) == 0 {
		return ErrEmptyReport
	}

	wt, err := renderChart(summary, opts)
	if err != nil {
		return &ExportError{Op: "chart", Path: path, Err: err}
	}

	return writeFileAtomic("chart", path, func(w io.Writer) error {
		_, err := wt.WriteTo(w)
		return err
	})
}

func renderChart(summary []models.SummaryRow, opts ChartOptions) (io.WriterTo, error) {
	defaults := DefaultChartOptions()
	if opts.Width <= 0 {
		opts.Width = defaults.Width
	}
	if opts.Height <= 0 {
		opts.Height = defaults.Height
	}
	if opts.MaxLabel <= 0 {
		opts.MaxLabel = defaults.MaxLabel
	}

	values := make(plotter.Values, len(summary))
	labels := make([]string, len(summary))
	for i, row := range summary {
		values[i] = row.TotalSeconds
		labels[i] = utils.Truncate(row.WindowTitle, opts.MaxLabel)
	}

	p := plot.New()
	p.Title.Text = "Time Usage Report"
	p.X.Label.Text = "Applications/Websites"
	p.Y.Label.Text = "Time Spent (seconds)"
	p.Y.Min = 0

	bars, err := plotter.NewBarChart(values, barWidth(len(summary), opts.Width))
	if err != nil {
		return nil, errors.Wrap(err, "failed to build bar chart")
	}
	bars.Color = barColor
	bars.LineStyle.Width = 0
	p.Add(bars)

	p.NominalX(labels...)
	p.X.Tick.Label.Rotation = math.Pi / 4
	p.X.Tick.Label.XAlign = text.XRight
	p.X.Tick.Label.YAlign = text.YCenter

	wt, err := p.WriterTo(vg.Length(opts.Width)*vg.Inch, vg.Length(opts.Height)*vg.Inch, "png")
	if err != nil {
		return nil, errors.Wrap(err, "failed to render chart")
	}
	return wt, nil
}

// barWidth spreads bars over roughly two thirds of the plot width
func barWidth(n int, widthInches float64) vg.Length {
	w := vg.Length(widthInches) * vg.Inch * 2 / 3 / vg.Length(n)
	if hi := vg.Points(60); w > hi {
		return hi
	}
	if lo := vg.Points(4); w < lo {
		return lo
	}
	return w
}
