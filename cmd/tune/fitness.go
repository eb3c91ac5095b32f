package main

import (
	"context"
	"math"
	"math/rand"
	"sync"

	"github.com/pthm-cable/homeostat/backend"
	"github.com/pthm-cable/homeostat/config"
	"github.com/pthm-cable/homeostat/controller"
	"github.com/pthm-cable/homeostat/telemetry"
)

// integrityWeight converts lost integrity into ticks of survival.
const integrityWeight = 200.0

// FitnessEvaluator runs arena simulations and scores a parameter vector.
type FitnessEvaluator struct {
	params     *ParamVector
	maxTicks   int
	obstacles  int
	seeds      []int64
	baseConfig *config.Config

	mu          sync.Mutex
	lastQuality float64
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, maxTicks, obstacles int, seeds []int64, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:     params,
		maxTicks:   maxTicks,
		obstacles:  obstacles,
		seeds:      seeds,
		baseConfig: baseCfg,
	}
}

// LastQuality returns the mean worst integrity of the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// runResult holds the results from a single arena run.
type runResult struct {
	ticks        int
	integrity    float64
	integrityMin float64
}

// Evaluate scores a parameter vector (lower = better): negative survival
// ticks plus a penalty for lost integrity, averaged over all seeds.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]runResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func(idx int, s int64) {
			defer wg.Done()
			results[idx] = fe.runSimulation(x, s)
		}(i, seed)
	}
	wg.Wait()

	var total, quality float64
	for _, r := range results {
		total += fitness(r)
		quality += r.integrityMin
	}
	n := float64(len(results))

	fe.mu.Lock()
	fe.lastQuality = quality / n
	fe.mu.Unlock()

	return total / n
}

func fitness(r runResult) float64 {
	return -float64(r.ticks) + integrityWeight*(1-r.integrity)
}

// runSimulation runs the controller in a fresh arena until it stops.
func (fe *FitnessEvaluator) runSimulation(x []float64, seed int64) runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Indicator.Enabled = false
	cfg.Telemetry.PrintEvery = 0

	rng := rand.New(rand.NewSource(seed))
	arena := backend.NewArena(cfg, rng)
	arena.Scatter(rng, fe.obstacles)

	res := runResult{integrityMin: 1}
	ctrl, err := controller.New(cfg, controller.Backends{Sensors: arena, Actuator: arena}, controller.Options{
		MaxTicks: fe.maxTicks,
		StatsCallback: func(s telemetry.WindowStats) {
			res.integrityMin = math.Min(res.integrityMin, s.IntegrityMin)
		},
	})
	if err != nil {
		return runResult{}
	}
	defer ctrl.Close()

	summary, _ := ctrl.Run(context.Background())
	res.ticks = summary.Ticks
	res.integrity = summary.Levels[2]
	return res
}

// copyConfig returns a deep copy of the base config.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	cfg.Behavior.AvoidWeights.Left = append([]float64(nil), fe.baseConfig.Behavior.AvoidWeights.Left...)
	cfg.Behavior.AvoidWeights.Right = append([]float64(nil), fe.baseConfig.Behavior.AvoidWeights.Right...)
	return &cfg
}
