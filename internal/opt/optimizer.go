package opt

import (
	"github.com/brcurves/svenfit/internal/curve"
)

// Result holds the output of an optimizer run.
type Result struct {
	BestParams  curve.ParameterVector
	BestMetrics curve.FitMetrics
	// Iterations counts objective evaluations for local search and
	// generations for the genetic engine; hybrid strategies sum both.
	Iterations int
	// Improved reports whether the final objective is strictly lower than
	// the baseline the run was measured against.
	Improved bool
}

// ProgressFunc receives periodic updates during a run. iterations follows the
// same counting convention as Result.Iterations.
type ProgressFunc func(iterations int, bestObjective float64)

// Config carries the tunables shared by the optimization strategies.
type Config struct {
	// DayCount converts calendar days to tenor years.
	DayCount float64

	// Local search: decreasing relative step ratios and the pass cap applied
	// to each ratio.
	StepSchedule     []float64
	MaxPassesPerStep int

	// Genetic search.
	PopulationSize int
	Generations    int
	MutationProb   float64
	// RandomFraction of each warm-mode generation is drawn fully at random
	// to preserve escape capability.
	RandomFraction float64

	// Progress, when set, is invoked during the run. Optional.
	Progress ProgressFunc
}

// DefaultConfig returns the tuning used when the caller does not override.
func DefaultConfig() Config {
	return Config{
		DayCount:         curve.DefaultDayCount,
		StepSchedule:     []float64{0.05, 0.02, 0.01},
		MaxPassesPerStep: 50,
		PopulationSize:   40,
		Generations:      60,
		MutationProb:     0.1,
		RandomFraction:   0.1,
	}
}

// lambdaFloor keeps lambda candidates strictly positive during search.
const lambdaFloor = 1e-6

// lambdaIndex reports whether coordinate idx is one of the two lambdas.
func lambdaIndex(idx int) bool {
	return idx == 4 || idx == 5
}
