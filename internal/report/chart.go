package report

import (
	"bytes"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wcharczuk/go-chart/v2"

	"sakubijak/internal/model"
)

// ChartRenderer draws dashboard charts as PNG images.
type ChartRenderer struct {
	Width  int
	Height int
}

// NewChartRenderer returns a renderer producing 800x800 images.
func NewChartRenderer() *ChartRenderer {
	return &ChartRenderer{Width: 800, Height: 800}
}

// CategoryPie renders per-category totals for the month containing asOf.
// It returns nil when there is nothing to draw.
func (r *ChartRenderer) CategoryPie(totals []model.CategoryTotal, asOf time.Time) ([]byte, error) {
	total := decimal.Zero
	for _, t := range totals {
		total = total.Add(t.Total)
	}
	if !total.IsPositive() {
		return nil, nil
	}

	values := make([]chart.Value, 0, len(totals))
	for _, t := range totals {
		if !t.Total.IsPositive() {
			continue
		}
		share := t.Total.Div(total).Mul(decimal.NewFromInt(100))
		values = append(values, chart.Value{
			Label: fmt.Sprintf("%s: %s (%s%%)", t.Name, t.Total.StringFixed(2), share.StringFixed(1)),
			Value: t.Total.InexactFloat64(),
			Style: chart.Style{
				FontSize:  12,
				FontColor: chart.ColorBlack,
			},
		})
	}

	pie := chart.PieChart{
		Title:  "Expenses per category, " + asOf.Format("January 2006"),
		Width:  r.Width,
		Height: r.Height,
		Values: values,
		Background: chart.Style{
			Padding: chart.Box{
				Top:    50,
				Left:   50,
				Right:  50,
				Bottom: 50,
			},
			FillColor: chart.ColorWhite,
		},
	}

	buffer := bytes.NewBuffer([]byte{})
	if err := pie.Render(chart.PNG, buffer); err != nil {
		return nil, fmt.Errorf("render category pie chart: %w", err)
	}
	return buffer.Bytes(), nil
}
