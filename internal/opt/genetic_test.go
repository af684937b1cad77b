package opt

import (
	"math/rand"
	"testing"

	"github.com/brcurves/svenfit/internal/curve"
)

func smallGAConfig() Config {
	cfg := DefaultConfig()
	cfg.PopulationSize = 20
	cfg.Generations = 15
	return cfg
}

func TestGeneticBestNeverWorseThanSeed(t *testing.T) {
	cfg := smallGAConfig()
	rng := rand.New(rand.NewSource(42))

	seedObj, err := curve.Objective(testSeed, testObservations, cfg.DayCount)
	if err != nil {
		t.Fatalf("Objective failed: %v", err)
	}

	for _, mode := range []PopulationMode{ModeExploratory, ModeWarm} {
		result, err := Genetic(testObservations, testSeed, mode, cfg, rng)
		if err != nil {
			t.Fatalf("Genetic(%s) failed: %v", mode, err)
		}
		if result.BestMetrics.Objective > seedObj {
			t.Errorf("%s: best objective %g worse than seed %g", mode, result.BestMetrics.Objective, seedObj)
		}
		if !result.BestParams.Valid() {
			t.Errorf("%s: returned invalid lambdas %+v", mode, result.BestParams)
		}
	}
}

func TestGeneticElitismMonotone(t *testing.T) {
	cfg := smallGAConfig()

	var history []float64
	cfg.Progress = func(_ int, best float64) {
		history = append(history, best)
	}

	_, err := Genetic(testObservations, testSeed, ModeExploratory, cfg, rand.New(rand.NewSource(7)))
	if err != nil {
		t.Fatalf("Genetic failed: %v", err)
	}

	if len(history) != cfg.Generations {
		t.Fatalf("expected %d progress reports, got %d", cfg.Generations, len(history))
	}
	for i := 1; i < len(history); i++ {
		if history[i] > history[i-1] {
			t.Errorf("best-seen objective regressed at generation %d: %g > %g", i, history[i], history[i-1])
		}
	}
}

func TestGeneticReproducibleWithSameSeed(t *testing.T) {
	cfg := smallGAConfig()

	a, err := Genetic(testObservations, testSeed, ModeWarm, cfg, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("Genetic failed: %v", err)
	}
	b, err := Genetic(testObservations, testSeed, ModeWarm, cfg, rand.New(rand.NewSource(99)))
	if err != nil {
		t.Fatalf("Genetic failed: %v", err)
	}

	if a.BestParams != b.BestParams {
		t.Errorf("same rng seed should reproduce the run: %+v vs %+v", a.BestParams, b.BestParams)
	}
}

func TestGeneticWarmKeepsPerfectSeed(t *testing.T) {
	// Observations generated from the seed itself: the seed is the global
	// optimum (objective zero) and the search must not return anything worse.
	optimum := curve.ParameterVector{Beta0: 0.115, Beta1: -0.01, Beta2: 0.02, Beta3: 0.01, Lambda1: 1.3, Lambda2: 4.2}
	obs := make(curve.ObservationSet, 0, 4)
	for _, cd := range []int{30, 180, 720, 1800} {
		rate, err := curve.SpotRate(optimum, float64(cd)/curve.DefaultDayCount)
		if err != nil {
			t.Fatalf("SpotRate failed: %v", err)
		}
		obs = append(obs, curve.ObservationPoint{
			CalendarDays: cd,
			BusinessDays: cd * 252 / 365,
			Rate:         rate,
		})
	}

	result, err := Genetic(obs, optimum, ModeWarm, smallGAConfig(), rand.New(rand.NewSource(3)))
	if err != nil {
		t.Fatalf("Genetic failed: %v", err)
	}
	if result.BestMetrics.Objective > 1e-24 {
		t.Errorf("seeded at the optimum, best objective should stay ~0, got %g", result.BestMetrics.Objective)
	}
}

func TestGeneticRejectsBadObservations(t *testing.T) {
	_, err := Genetic(curve.ObservationSet{}, testSeed, ModeExploratory, smallGAConfig(), rand.New(rand.NewSource(1)))
	if err == nil {
		t.Fatal("expected error for empty observation set")
	}
}
