package curve

// ParameterVector holds the six Svensson model parameters.
// Lambda1 and Lambda2 must be strictly positive whenever the vector is
// evaluated; optimizers clamp candidates before evaluation.
type ParameterVector struct {
	Beta0   float64 `json:"beta0"`
	Beta1   float64 `json:"beta1"`
	Beta2   float64 `json:"beta2"`
	Beta3   float64 `json:"beta3"`
	Lambda1 float64 `json:"lambda1"`
	Lambda2 float64 `json:"lambda2"`
}

// Valid reports whether the vector can be evaluated (both lambdas positive).
func (p ParameterVector) Valid() bool {
	return p.Lambda1 > 0 && p.Lambda2 > 0
}

// Slice returns the parameters in fixed coordinate order
// (beta0, beta1, beta2, beta3, lambda1, lambda2).
func (p ParameterVector) Slice() []float64 {
	return []float64{p.Beta0, p.Beta1, p.Beta2, p.Beta3, p.Lambda1, p.Lambda2}
}

// FromSlice builds a ParameterVector from the fixed coordinate order.
// The slice must have exactly six elements.
func FromSlice(v []float64) ParameterVector {
	return ParameterVector{
		Beta0:   v[0],
		Beta1:   v[1],
		Beta2:   v[2],
		Beta3:   v[3],
		Lambda1: v[4],
		Lambda2: v[5],
	}
}

// NumParams is the dimensionality of the Svensson parameter space.
const NumParams = 6

// ObservationPoint is a single observed market rate for one trade date.
// Rate is the DI x Pre 252-business-day annualized rate in fraction form
// (0.105 means 10.5%).
type ObservationPoint struct {
	CalendarDays int     `json:"calendarDays"`
	BusinessDays int     `json:"businessDays"`
	Rate         float64 `json:"rate"`
}

// ObservationSet is an ordered, read-only sequence of observations
// belonging to exactly one trade date.
type ObservationSet []ObservationPoint

// Validate checks the structural contract of the observation supplier:
// non-empty, non-negative day counts, businessDays <= calendarDays, and at
// least one point with positive calendar days (needed for weighting).
func (obs ObservationSet) Validate() error {
	if len(obs) == 0 {
		return &InvalidObservationSetError{Reason: "empty observation set"}
	}
	hasWeighted := false
	for i, p := range obs {
		if p.CalendarDays < 0 || p.BusinessDays < 0 {
			return &InvalidObservationSetError{
				Reason: "negative day count", Index: i,
			}
		}
		if p.BusinessDays > p.CalendarDays {
			return &InvalidObservationSetError{
				Reason: "business days exceed calendar days", Index: i,
			}
		}
		if p.CalendarDays > 0 {
			hasWeighted = true
		}
	}
	if !hasWeighted {
		return &InvalidObservationSetError{
			Reason: "no observation with positive calendar days",
		}
	}
	return nil
}

// FitMetrics are derived from one (ParameterVector, ObservationSet) pair and
// always recomputed together. R2 is nil when the observed series has zero
// variance (undefined rather than zero).
type FitMetrics struct {
	RMSE      float64  `json:"rmse"`
	MAE       float64  `json:"mae"`
	R2        *float64 `json:"r2"`
	Objective float64  `json:"objective"`
}
