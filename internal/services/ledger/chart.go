package ledger

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"

	"github.com/bobmcallan/folio/internal/models"
)

// RenderCostHistoryChart renders a PNG line chart of one holding's cost
// history. Two series: Average Cost (blue solid) and Cost Basis (gray
// dashed). Returns raw PNG bytes.
func (s *Service) RenderCostHistoryChart(ctx context.Context, symbol string) ([]byte, error) {
	history, err := s.GetCostHistory(ctx, symbol)
	if err != nil {
		return nil, err
	}
	if len(history.Points) < 2 {
		return nil, fmt.Errorf("need at least 2 data points, got %d", len(history.Points))
	}

	xValues := make([]time.Time, len(history.Points))
	avgY := make([]float64, len(history.Points))
	basisY := make([]float64, len(history.Points))

	for i, p := range history.Points {
		xValues[i] = p.Date
		avgY[i] = p.AverageCost
		basisY[i] = p.Shares * p.AverageCost
	}

	avgSeries := chart.TimeSeries{
		Name: "Average Cost",
		Style: chart.Style{
			StrokeColor: drawing.ColorFromHex("2563eb"), // blue-600
			StrokeWidth: 2.5,
		},
		XValues: xValues,
		YValues: avgY,
	}

	basisSeries := chart.TimeSeries{
		Name: "Cost Basis",
		Style: chart.Style{
			StrokeColor:     drawing.ColorFromHex("9ca3af"), // gray-400
			StrokeWidth:     1.5,
			StrokeDashArray: []float64{5.0, 3.0},
		},
		XValues: xValues,
		YValues: basisY,
		YAxis:   chart.YAxisSecondary,
	}

	graph := chart.Chart{
		Title:  fmt.Sprintf("%s Cost History", models.NormalizeSymbol(symbol)),
		Width:  900,
		Height: 400,
		Background: chart.Style{
			Padding: chart.Box{Top: 40, Left: 10, Right: 20, Bottom: 10},
		},
		XAxis: chart.XAxis{
			TickPosition: chart.TickPositionBetweenTicks,
			ValueFormatter: func(v interface{}) string {
				if t, ok := v.(float64); ok {
					return chart.TimeFromFloat64(t).Format("Jan 06")
				}
				return ""
			},
		},
		YAxis: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.2f", f)
				}
				return ""
			},
		},
		YAxisSecondary: chart.YAxis{
			ValueFormatter: func(v interface{}) string {
				if f, ok := v.(float64); ok {
					return fmt.Sprintf("$%.0f", f)
				}
				return ""
			},
		},
		Series: []chart.Series{
			avgSeries,
			basisSeries,
		},
	}

	graph.Elements = []chart.Renderable{
		chart.LegendLeft(&graph),
	}

	var buf bytes.Buffer
	if err := graph.Render(chart.PNG, &buf); err != nil {
		return nil, fmt.Errorf("chart render failed: %w", err)
	}

	return buf.Bytes(), nil
}
