package attempt

import (
	"context"

	"github.com/brcurves/svenfit/internal/curve"
)

// CurveResponse carries a sampled fitted curve for charting, together with
// which parameter side produced it.
type CurveResponse struct {
	AttemptID string                `json:"attemptId"`
	Date      string                `json:"date"`
	Source    string                `json:"source"` // "final" or "initial"
	Params    curve.ParameterVector `json:"params"`
	Points    []curve.CurvePoint    `json:"points"`
}

// curveGrid returns the sampling tenors in calendar days: daily through the
// first year, weekly to year ten, then every 21 days to year thirty. Dense
// sampling up front keeps the short end smooth where the curve bends most.
func curveGrid() []int {
	grid := make([]int, 0, 1024)
	for d := 1; d <= 365; d++ {
		grid = append(grid, d)
	}
	for d := 365 + 7; d <= 3650; d += 7 {
		grid = append(grid, d)
	}
	for d := 3650 + 21; d <= 10950; d += 21 {
		grid = append(grid, d)
	}
	return grid
}

// Curve samples the attempt's best-known parameters over the standard tenor
// grid. Final parameters win over initial when an improve has committed.
func (m *Manager) Curve(ctx context.Context, id string) (*CurveResponse, error) {
	record, err := m.attempts.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	params := record.Initial
	source := "initial"
	if record.Final != nil {
		params = *record.Final
		source = "final"
	}

	dayCount := m.cfg.Optimizer.DayCount
	if dayCount <= 0 {
		dayCount = curve.DefaultDayCount
	}

	grid := curveGrid()
	points := make([]curve.CurvePoint, 0, len(grid))
	for _, d := range grid {
		tau := float64(d) / dayCount
		rate, err := curve.SpotRate(params, tau)
		if err != nil {
			return nil, err
		}
		points = append(points, curve.CurvePoint{TenorYears: tau, Rate: rate})
	}

	return &CurveResponse{
		AttemptID: record.ID,
		Date:      record.Date,
		Source:    source,
		Params:    params,
		Points:    points,
	}, nil
}
