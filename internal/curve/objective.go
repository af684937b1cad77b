package curve

import "math"

// businessDaysPerYear is the DI x Pre annualization basis.
const businessDaysPerYear = 252.0

// Objective computes the scalar loss minimized by the optimizers: the
// inverse-calendar-time weighted squared error in discount-factor space.
// Errors are differenced on a price scale rather than a rate scale so that
// long tenors are weighted the way they matter economically.
//
// Observations with zero calendar days carry no defined weight and are
// excluded from the sum. The result is always >= 0.
func Objective(p ParameterVector, obs ObservationSet, dayCount float64) (float64, error) {
	if err := obs.Validate(); err != nil {
		return 0, err
	}

	var sum float64
	for _, o := range obs {
		if o.CalendarDays == 0 {
			continue
		}
		tau := float64(o.CalendarDays) / dayCount
		model, err := SpotRate(p, tau)
		if err != nil {
			return 0, err
		}

		// Both sides discounted on the same 252 business-day convention so a
		// perfect rate fit yields exactly zero price error.
		t := float64(o.BusinessDays) / businessDaysPerYear
		dfMarket := math.Pow(1+o.Rate, -t)
		dfModel := math.Pow(1+model, -t)
		priceErr := dfMarket - dfModel

		sum += priceErr * priceErr / float64(o.CalendarDays)
	}
	return sum, nil
}

// Metrics computes the full metric block for one (params, observations) pair.
// RMSE, MAE and R2 are rate-scale reporting metrics; only Objective is used
// by the optimizers. R2 is nil when the observed series is constant.
func Metrics(p ParameterVector, obs ObservationSet, dayCount float64) (FitMetrics, error) {
	objective, err := Objective(p, obs, dayCount)
	if err != nil {
		return FitMetrics{}, err
	}

	n := float64(len(obs))
	var meanObserved float64
	for _, o := range obs {
		meanObserved += o.Rate
	}
	meanObserved /= n

	var ssRes, ssTot, sumSq, sumAbs float64
	for _, o := range obs {
		tau := float64(o.CalendarDays) / dayCount
		model, err := SpotRate(p, tau)
		if err != nil {
			return FitMetrics{}, err
		}
		diff := o.Rate - model
		sumSq += diff * diff
		sumAbs += math.Abs(diff)
		ssRes += diff * diff
		dev := o.Rate - meanObserved
		ssTot += dev * dev
	}

	m := FitMetrics{
		RMSE:      math.Sqrt(sumSq / n),
		MAE:       sumAbs / n,
		Objective: objective,
	}
	if ssTot > 0 {
		r2 := 1 - ssRes/ssTot
		m.R2 = &r2
	}
	return m, nil
}
