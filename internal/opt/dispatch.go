package opt

import (
	"fmt"
	"math/rand"

	"github.com/brcurves/svenfit/internal/curve"
)

// Strategy names an optimization strategy. The set is closed: adding a
// strategy means adding a constant and a case in Run.
type Strategy string

const (
	// StrategyLocalSearch runs coordinate descent from the current best.
	StrategyLocalSearch Strategy = "local_search"
	// StrategyHybrid runs an exploratory genetic search, then a local polish.
	StrategyHybrid Strategy = "hybrid_search"
	// StrategyHybridWarm is the same composition as StrategyHybrid with a
	// warm-start population, for refining an already-reasonable fit.
	StrategyHybridWarm Strategy = "hybrid_search_from_current_result"
)

// Strategies lists every registered strategy.
func Strategies() []Strategy {
	return []Strategy{StrategyLocalSearch, StrategyHybrid, StrategyHybridWarm}
}

// ErrUnknownStrategy is the target for errors.Is checks on strategy parsing.
var ErrUnknownStrategy = &UnknownStrategyError{}

// UnknownStrategyError is returned for strategy names outside the closed set.
type UnknownStrategyError struct {
	Name string
}

func (e *UnknownStrategyError) Error() string {
	return fmt.Sprintf("unknown strategy: %q", e.Name)
}

func (e *UnknownStrategyError) Is(target error) bool {
	_, ok := target.(*UnknownStrategyError)
	return ok
}

// ParseStrategy validates a strategy name received at the boundary.
func ParseStrategy(name string) (Strategy, error) {
	s := Strategy(name)
	switch s {
	case StrategyLocalSearch, StrategyHybrid, StrategyHybridWarm:
		return s, nil
	}
	return "", &UnknownStrategyError{Name: name}
}

// Run executes the named strategy from start and measures improvement against
// baselineObjective, the attempt's current-best objective at invocation time.
// rng is only consumed by the population-based strategies.
func Run(strategy Strategy, obs curve.ObservationSet, start curve.ParameterVector, baselineObjective float64, cfg Config, rng *rand.Rand) (*Result, error) {
	var result *Result
	var err error

	switch strategy {
	case StrategyLocalSearch:
		result, err = LocalSearch(obs, start, cfg)
	case StrategyHybrid:
		result, err = hybrid(obs, start, ModeExploratory, cfg, rng)
	case StrategyHybridWarm:
		result, err = hybrid(obs, start, ModeWarm, cfg, rng)
	default:
		return nil, &UnknownStrategyError{Name: string(strategy)}
	}
	if err != nil {
		return nil, err
	}

	result.Improved = result.BestMetrics.Objective < baselineObjective
	return result, nil
}

// hybrid composes a genetic global search with a local polish seeded from the
// genetic result. Iterations is the sum of generations and local evaluations.
func hybrid(obs curve.ObservationSet, start curve.ParameterVector, mode PopulationMode, cfg Config, rng *rand.Rand) (*Result, error) {
	global, err := Genetic(obs, start, mode, cfg, rng)
	if err != nil {
		return nil, err
	}

	// Offset the polish progress so reported iterations keep increasing.
	localCfg := cfg
	if cfg.Progress != nil {
		localCfg.Progress = func(iterations int, best float64) {
			cfg.Progress(global.Iterations+iterations, best)
		}
	}

	polish, err := LocalSearch(obs, global.BestParams, localCfg)
	if err != nil {
		return nil, err
	}

	best := polish
	if global.BestMetrics.Objective < polish.BestMetrics.Objective {
		// The polish never worsens its own seed, but keep the guard so a tie
		// is resolved toward the genetic result deterministically.
		best = global
	}

	return &Result{
		BestParams:  best.BestParams,
		BestMetrics: best.BestMetrics,
		Iterations:  global.Iterations + polish.Iterations,
	}, nil
}
