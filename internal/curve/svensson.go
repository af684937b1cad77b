package curve

import "math"

// DefaultDayCount converts calendar days to tenor years. Kept configurable
// because the upstream day-count convention is not fully pinned down; it must
// match whatever produced the observations.
const DefaultDayCount = 365.0

// nearZeroTenor is the tenor below which the loading ratios are replaced by
// their analytic limit to avoid 0/0.
const nearZeroTenor = 1e-8

// SpotRate evaluates the Svensson spot rate at tauYears:
//
//	y(tau) = b0 + b1*phi1(tau/l1) + b2*phi2(tau/l1) + b3*phi2(tau/l2)
//
// with phi1(x) = (1-exp(-x))/x and phi2(x) = phi1(x) - exp(-x).
// As tau -> 0 the rate converges to b0 + b1.
// Returns InvalidParameterError when a lambda is non-positive.
func SpotRate(p ParameterVector, tauYears float64) (float64, error) {
	if p.Lambda1 <= 0 {
		return 0, &InvalidParameterError{Name: "lambda1", Value: p.Lambda1}
	}
	if p.Lambda2 <= 0 {
		return 0, &InvalidParameterError{Name: "lambda2", Value: p.Lambda2}
	}

	if tauYears < nearZeroTenor {
		// phi1 -> 1 and phi2 -> 0 in the limit.
		return p.Beta0 + p.Beta1, nil
	}

	x1 := tauYears / p.Lambda1
	x2 := tauYears / p.Lambda2

	phi1 := (1 - math.Exp(-x1)) / x1
	phi2 := phi1 - math.Exp(-x1)
	phi3 := (1-math.Exp(-x2))/x2 - math.Exp(-x2)

	return p.Beta0 + p.Beta1*phi1 + p.Beta2*phi2 + p.Beta3*phi3, nil
}

// CurvePoint is one sample of the fitted curve.
type CurvePoint struct {
	TenorYears float64 `json:"tenorYears"`
	Rate       float64 `json:"rate"`
}

// FittedCurve evaluates the model at each observation's tenor, one output per
// input in the same order. dayCount converts calendar days to years; pass
// DefaultDayCount unless the observation supplier uses another basis.
func FittedCurve(p ParameterVector, obs ObservationSet, dayCount float64) ([]CurvePoint, error) {
	out := make([]CurvePoint, len(obs))
	for i, o := range obs {
		tau := float64(o.CalendarDays) / dayCount
		rate, err := SpotRate(p, tau)
		if err != nil {
			return nil, err
		}
		out[i] = CurvePoint{TenorYears: tau, Rate: rate}
	}
	return out, nil
}
