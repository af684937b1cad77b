package opt

import (
	"log/slog"
	"math"

	"github.com/brcurves/svenfit/internal/curve"
)

// LocalSearch runs deterministic coordinate descent from start.
//
// For each step ratio in the schedule it sweeps the six coordinates in fixed
// order (beta0..beta3, lambda1, lambda2), trying +step then -step and greedily
// accepting the first candidate that strictly lowers the objective. Steps are
// relative to the coordinate's magnitude so betas and lambdas converge at
// comparable relative rates. A full sweep with no accepted move ends the
// current ratio's phase.
func LocalSearch(obs curve.ObservationSet, start curve.ParameterVector, cfg Config) (*Result, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}

	initialObj, err := curve.Objective(start, obs, cfg.DayCount)
	if err != nil {
		return nil, err
	}

	best := start.Slice()
	bestObj := initialObj
	iterations := 1

	for _, step := range cfg.StepSchedule {
		for pass := 0; pass < cfg.MaxPassesPerStep; pass++ {
			acceptedInPass := false

			for idx := 0; idx < curve.NumParams; idx++ {
				// Relative step; essentially-zero coordinates fall back to a
				// unit base so they can still move.
				base := math.Abs(best[idx])
				if base < 1e-6 {
					base = 1.0
				}
				delta := step * base

				for _, dir := range []float64{1, -1} {
					candidate := append([]float64(nil), best...)
					candidate[idx] += dir * delta
					if lambdaIndex(idx) && candidate[idx] < lambdaFloor {
						candidate[idx] = lambdaFloor
					}

					obj, err := curve.Objective(curve.FromSlice(candidate), obs, cfg.DayCount)
					if err != nil {
						return nil, err
					}
					iterations++

					if obj < bestObj {
						best = candidate
						bestObj = obj
						acceptedInPass = true
						break
					}
				}
			}

			if !acceptedInPass {
				break
			}
		}
	}

	params := curve.FromSlice(best)
	metrics, err := curve.Metrics(params, obs, cfg.DayCount)
	if err != nil {
		return nil, err
	}

	slog.Debug("local search finished",
		"initial_objective", initialObj,
		"best_objective", bestObj,
		"evaluations", iterations,
	)

	if cfg.Progress != nil {
		cfg.Progress(iterations, bestObj)
	}

	return &Result{
		BestParams:  params,
		BestMetrics: metrics,
		Iterations:  iterations,
		Improved:    bestObj < initialObj,
	}, nil
}
