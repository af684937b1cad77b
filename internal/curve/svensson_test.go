package curve

import (
	"errors"
	"math"
	"testing"
)

func TestSpotRateFlatCurve(t *testing.T) {
	p := ParameterVector{Beta0: 0.1, Lambda1: 1, Lambda2: 5}

	for _, tau := range []float64{0.01, 0.5, 1, 5, 30} {
		rate, err := SpotRate(p, tau)
		if err != nil {
			t.Fatalf("SpotRate(%g) failed: %v", tau, err)
		}
		if rate != 0.1 {
			t.Errorf("flat curve at tau=%g: got %g, want exactly 0.1", tau, rate)
		}
	}
}

func TestSpotRateNearZeroTenorLimit(t *testing.T) {
	p := ParameterVector{Beta0: 0.11, Beta1: -0.03, Beta2: 0.02, Beta3: 0.01, Lambda1: 1.5, Lambda2: 4}

	limit, err := SpotRate(p, 0)
	if err != nil {
		t.Fatalf("SpotRate(0) failed: %v", err)
	}
	if limit != p.Beta0+p.Beta1 {
		t.Errorf("zero-tenor rate = %g, want beta0+beta1 = %g", limit, p.Beta0+p.Beta1)
	}

	// Approaching from above should converge to the same value.
	near, err := SpotRate(p, 1e-7)
	if err != nil {
		t.Fatalf("SpotRate(1e-7) failed: %v", err)
	}
	if math.Abs(near-limit) > 1e-6 {
		t.Errorf("near-zero rate %g diverges from limit %g", near, limit)
	}
}

func TestSpotRateFiniteForValidInputs(t *testing.T) {
	p := ParameterVector{Beta0: 0.12, Beta1: -0.08, Beta2: 0.03, Beta3: 0.02, Lambda1: 1.2, Lambda2: 4.5}

	for tau := 0.001; tau <= 30; tau *= 1.7 {
		rate, err := SpotRate(p, tau)
		if err != nil {
			t.Fatalf("SpotRate(%g) failed: %v", tau, err)
		}
		if math.IsNaN(rate) || math.IsInf(rate, 0) {
			t.Errorf("SpotRate(%g) = %g, want finite", tau, rate)
		}
	}
}

func TestSpotRateRejectsNonPositiveLambda(t *testing.T) {
	cases := []struct {
		name string
		p    ParameterVector
	}{
		{"lambda1 zero", ParameterVector{Beta0: 0.1, Lambda1: 0, Lambda2: 5}},
		{"lambda2 negative", ParameterVector{Beta0: 0.1, Lambda1: 1, Lambda2: -2}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := SpotRate(tc.p, 1.0)
			if err == nil {
				t.Fatal("expected invalid-parameter error, got nil")
			}
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected InvalidParameterError, got %v", err)
			}
		})
	}
}

func TestFittedCurveMatchesObservationOrder(t *testing.T) {
	p := ParameterVector{Beta0: 0.1, Beta1: 0.01, Lambda1: 1, Lambda2: 5}
	obs := ObservationSet{
		{CalendarDays: 30, BusinessDays: 21, Rate: 0.12},
		{CalendarDays: 360, BusinessDays: 252, Rate: 0.115},
		{CalendarDays: 720, BusinessDays: 504, Rate: 0.11},
	}

	points, err := FittedCurve(p, obs, DefaultDayCount)
	if err != nil {
		t.Fatalf("FittedCurve failed: %v", err)
	}
	if len(points) != len(obs) {
		t.Fatalf("got %d points, want %d", len(points), len(obs))
	}
	for i, pt := range points {
		wantTau := float64(obs[i].CalendarDays) / DefaultDayCount
		if pt.TenorYears != wantTau {
			t.Errorf("point %d: tenor %g, want %g", i, pt.TenorYears, wantTau)
		}
	}
}

func TestObservationSetValidate(t *testing.T) {
	cases := []struct {
		name    string
		obs     ObservationSet
		wantErr bool
	}{
		{"valid", ObservationSet{{CalendarDays: 30, BusinessDays: 21, Rate: 0.12}}, false},
		{"empty", ObservationSet{}, true},
		{"only zero calendar days", ObservationSet{{CalendarDays: 0, BusinessDays: 0, Rate: 0.1}}, true},
		{"business exceeds calendar", ObservationSet{{CalendarDays: 10, BusinessDays: 11, Rate: 0.1}}, true},
		{"negative days", ObservationSet{{CalendarDays: -1, BusinessDays: 0, Rate: 0.1}}, true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.obs.Validate()
			if tc.wantErr && err == nil {
				t.Error("expected error, got nil")
			}
			if !tc.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
			if tc.wantErr && err != nil && !errors.Is(err, ErrInvalidObservationSet) {
				t.Errorf("expected InvalidObservationSetError, got %v", err)
			}
		})
	}
}
