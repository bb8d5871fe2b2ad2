package report

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"saldo/internal/core"
)

// ErrEmptySeries is returned when there is nothing to draw.
var ErrEmptySeries = errors.New("chart series has no positive values")

// ChartRenderer turns a series into an image.
type ChartRenderer interface {
	Render(ctx context.Context, series []core.SeriesPoint, title string) ([]byte, error)
}

var piePalette = []string{
	"FF6384", "36A2EB", "FFCE56", "4BC0C0", "9966FF",
	"FF9F40", "C9CBCF", "E7E9ED", "8DD17E", "F7786B", "B3B3CC",
}

// PieRenderer draws PNG pie charts with percentage labels.
type PieRenderer struct {
	Width  int
	Height int
}

func NewPieRenderer() *PieRenderer {
	return &PieRenderer{Width: 800, Height: 600}
}

// Render never panics: failures inside the chart library come back as errors.
func (p *PieRenderer) Render(ctx context.Context, series []core.SeriesPoint, title string) (png []byte, err error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var total float64
	for _, pt := range series {
		if pt.Value > 0 {
			total += pt.Value
		}
	}
	if total == 0 {
		return nil, ErrEmptySeries
	}

	values := make([]chart.Value, 0, len(series))
	for _, pt := range series {
		if pt.Value <= 0 {
			continue
		}
		color := drawing.ColorFromHex(piePalette[len(values)%len(piePalette)])
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s %.1f%%", pt.Label, pt.Value/total*100),
			Value: pt.Value,
			Style: chart.Style{
				FillColor:   color,
				StrokeColor: drawing.ColorWhite,
				StrokeWidth: 2,
			},
		})
	}

	defer func() {
		if r := recover(); r != nil {
			png, err = nil, fmt.Errorf("render chart: panic: %v", r)
		}
	}()

	pie := chart.PieChart{
		Title:  title,
		Width:  p.Width,
		Height: p.Height,
		Background: chart.Style{
			FillColor: drawing.ColorWhite,
			Padding:   chart.Box{Top: 60, Left: 20, Right: 20, Bottom: 20},
		},
		TitleStyle: chart.Style{FontSize: 18},
		Values:     values,
	}

	var buf bytes.Buffer
	if err := pie.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("render chart: %w", err)
	}
	return buf.Bytes(), nil
}
