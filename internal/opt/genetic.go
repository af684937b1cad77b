package opt

import (
	"log/slog"
	"math"
	"math/rand"
	"sort"

	"github.com/brcurves/svenfit/internal/curve"
)

// PopulationMode selects how the genetic search initializes its population.
type PopulationMode string

const (
	// ModeExploratory draws the population uniformly from wide fixed bounds.
	ModeExploratory PopulationMode = "exploratory"
	// ModeWarm jitters the seed vector, with a small random-injection
	// fraction each generation.
	ModeWarm PopulationMode = "warm"
)

// searchBounds are the wide fixed bounds used for exploratory initialization
// and random injection: beta0 in [0, 0.5], beta1..beta3 in [-0.5, 0.5],
// lambda1 in [0.05, 10], lambda2 in [0.05, 15].
var searchBounds = [curve.NumParams][2]float64{
	{0, 0.5},
	{-0.5, 0.5},
	{-0.5, 0.5},
	{-0.5, 0.5},
	{0.05, 10},
	{0.05, 15},
}

// jitterScale controls warm-start perturbation; mutationScale controls
// per-coordinate mutation. Both are relative to parameter magnitude.
const (
	jitterScale   = 0.10
	mutationScale = 0.05
)

// Genetic runs a population-based global search seeded from seed.
//
// Each generation evaluates every individual, keeps the lower-objective half
// as parents, refills by uniform per-coordinate inheritance from randomly
// paired parents and mutates coordinates with probability cfg.MutationProb.
// The best individual ever seen is preserved across generations. The random
// source is explicit so runs are reproducible under test.
func Genetic(obs curve.ObservationSet, seed curve.ParameterVector, mode PopulationMode, cfg Config, rng *rand.Rand) (*Result, error) {
	if err := obs.Validate(); err != nil {
		return nil, err
	}
	seedObj, err := curve.Objective(clampLambdas(seed), obs, cfg.DayCount)
	if err != nil {
		return nil, err
	}

	popSize := cfg.PopulationSize
	if popSize < 4 {
		popSize = 4
	}

	pop := initPopulation(seed, mode, popSize, cfg, rng)

	bestEver := clampLambdas(seed).Slice()
	bestObj := seedObj

	evaluate := func(ind []float64) float64 {
		obj, err := curve.Objective(curve.FromSlice(ind), obs, cfg.DayCount)
		if err != nil {
			// Lambdas are clamped before evaluation, so this only fires on a
			// pathological candidate; treat it as unusable.
			return math.Inf(1)
		}
		return obj
	}

	for gen := 0; gen < cfg.Generations; gen++ {
		type scored struct {
			params    []float64
			objective float64
		}
		ranked := make([]scored, len(pop))
		for i, ind := range pop {
			ranked[i] = scored{params: ind, objective: evaluate(ind)}
		}
		sort.Slice(ranked, func(i, j int) bool {
			return ranked[i].objective < ranked[j].objective
		})

		if ranked[0].objective < bestObj {
			bestObj = ranked[0].objective
			bestEver = append([]float64(nil), ranked[0].params...)
		}

		// Top half become parents; offspring refill the rest.
		parents := ranked[:len(ranked)/2]
		next := make([][]float64, 0, popSize)
		for _, p := range parents {
			next = append(next, p.params)
		}

		randomBudget := 0
		if mode == ModeWarm {
			randomBudget = int(cfg.RandomFraction * float64(popSize))
		}

		for len(next) < popSize {
			if randomBudget > 0 {
				next = append(next, randomIndividual(rng))
				randomBudget--
				continue
			}
			a := parents[rng.Intn(len(parents))].params
			b := parents[rng.Intn(len(parents))].params
			next = append(next, offspring(a, b, cfg.MutationProb, rng))
		}

		// Elitism: the best-ever individual is never discarded.
		next[0] = append([]float64(nil), bestEver...)
		pop = next

		if cfg.Progress != nil {
			cfg.Progress(gen+1, bestObj)
		}
	}

	params := curve.FromSlice(bestEver)
	metrics, err := curve.Metrics(params, obs, cfg.DayCount)
	if err != nil {
		return nil, err
	}

	slog.Debug("genetic search finished",
		"mode", string(mode),
		"generations", cfg.Generations,
		"population", popSize,
		"seed_objective", seedObj,
		"best_objective", bestObj,
	)

	return &Result{
		BestParams:  params,
		BestMetrics: metrics,
		Iterations:  cfg.Generations,
		Improved:    bestObj < seedObj,
	}, nil
}

func initPopulation(seed curve.ParameterVector, mode PopulationMode, popSize int, cfg Config, rng *rand.Rand) [][]float64 {
	pop := make([][]float64, 0, popSize)

	// The seed itself always participates so the search can never start from
	// a worse footing than the caller's current best.
	pop = append(pop, clampLambdas(seed).Slice())

	randomCount := popSize - 1
	if mode == ModeWarm {
		randomCount = int(cfg.RandomFraction * float64(popSize))
	}

	for len(pop) < popSize-randomCount {
		pop = append(pop, jitter(seed.Slice(), rng))
	}
	for len(pop) < popSize {
		pop = append(pop, randomIndividual(rng))
	}
	return pop
}

// jitter perturbs a vector: additive noise scaled to magnitude for betas,
// multiplicative noise for lambdas, then clamped positive.
func jitter(v []float64, rng *rand.Rand) []float64 {
	out := make([]float64, len(v))
	for i, x := range v {
		if lambdaIndex(i) {
			out[i] = x * math.Exp(jitterScale*rng.NormFloat64())
			if out[i] < lambdaFloor {
				out[i] = lambdaFloor
			}
			continue
		}
		scale := math.Abs(x)
		if scale < 0.01 {
			scale = 0.01
		}
		out[i] = x + jitterScale*scale*rng.NormFloat64()
	}
	return out
}

func randomIndividual(rng *rand.Rand) []float64 {
	out := make([]float64, curve.NumParams)
	for i, b := range searchBounds {
		out[i] = b[0] + rng.Float64()*(b[1]-b[0])
	}
	return out
}

// offspring builds a child by choosing each coordinate from one parent or the
// other, then mutating coordinates independently.
func offspring(a, b []float64, mutationProb float64, rng *rand.Rand) []float64 {
	child := make([]float64, len(a))
	for i := range child {
		if rng.Float64() < 0.5 {
			child[i] = a[i]
		} else {
			child[i] = b[i]
		}
		if rng.Float64() < mutationProb {
			child[i] = mutate(child[i], i, rng)
		}
		if lambdaIndex(i) && child[i] < lambdaFloor {
			child[i] = lambdaFloor
		}
	}
	return child
}

func mutate(x float64, idx int, rng *rand.Rand) float64 {
	if lambdaIndex(idx) {
		return x * math.Exp(mutationScale*rng.NormFloat64())
	}
	scale := math.Abs(x)
	if scale < 0.01 {
		scale = 0.01
	}
	return x + mutationScale*scale*rng.NormFloat64()
}

func clampLambdas(p curve.ParameterVector) curve.ParameterVector {
	if p.Lambda1 < lambdaFloor {
		p.Lambda1 = lambdaFloor
	}
	if p.Lambda2 < lambdaFloor {
		p.Lambda2 = lambdaFloor
	}
	return p
}
