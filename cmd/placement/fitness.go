package main

import (
	"math"
	"sync"

	"gonum.org/v1/gonum/stat"

	"github.com/kestrelops/sightline/config"
	"github.com/kestrelops/sightline/telemetry"
	"github.com/kestrelops/sightline/viewer"
)

// Scoring weights. Quality splits into an acquire share and a
// steadiness term; together they can raise a candidate's score by at
// most qualityBonus.
const (
	qualityWeightAcquire = 0.55
	qualityWeightSteady  = 0.45

	qualityBonus         = 0.2
	qualityWarmupWindows = 1 // windows skipped while the scene settles

	// A window counts as acquired when its P50 clears the same
	// threshold the event detector uses.
	acquireThreshold = telemetry.DefaultAcquireThreshold
)

// FitnessEvaluator scores placement candidates by running the full
// headless pipeline and pooling the flushed coverage windows.
type FitnessEvaluator struct {
	params     *ParamVector
	maxFrames  int
	seeds      []int64
	configPath string

	mu          sync.Mutex
	bestFitness float64
	bestWindows []telemetry.CoverageStats
	lastVisible float64 // pooled visible fraction of the latest Evaluate
	lastQuality float64 // quality of the latest Evaluate
}

// NewFitnessEvaluator creates an evaluator. maxFrames of zero means one
// full clock span per run.
func NewFitnessEvaluator(params *ParamVector, maxFrames int, seeds []int64, configPath string) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		maxFrames:   maxFrames,
		seeds:       seeds,
		configPath:  configPath,
		bestFitness: math.Inf(1),
	}
}

// BestWindows returns the coverage windows from the best evaluation.
func (fe *FitnessEvaluator) BestWindows() []telemetry.CoverageStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestWindows
}

// LastVisible returns the pooled visible fraction from the most recent
// evaluation.
func (fe *FitnessEvaluator) LastVisible() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastVisible
}

// LastQuality returns the quality score from the most recent evaluation.
func (fe *FitnessEvaluator) LastQuality() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastQuality
}

// seedResult holds the scores from one terrain seed.
type seedResult struct {
	visible float64
	quality float64
	windows []telemetry.CoverageStats
}

// Evaluate computes fitness for a parameter vector, lower is better.
// The score pools coverage across terrain seeds so a placement must
// work on more than one landscape; fitness is the negated score.
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	cfg, err := fe.loadConfig(x)
	if err != nil {
		// A config the viewer rejects scores like zero coverage.
		return 0
	}

	results := make([]seedResult, len(fe.seeds))
	var wg sync.WaitGroup
	for i, seed := range fe.seeds {
		wg.Add(1)
		go func() {
			defer wg.Done()
			windows, err := fe.runSimulation(cfg, seed)
			if err != nil {
				return
			}
			results[i] = seedResult{
				visible: coverageScore(windows),
				quality: windowQuality(windows),
				windows: windows,
			}
		}()
	}
	wg.Wait()

	var totalScore, totalVisible, totalQuality float64
	bestSeedScore := math.Inf(-1)
	var bestSeedWindows []telemetry.CoverageStats
	for _, r := range results {
		score := r.visible * (1.0 + qualityBonus*r.quality)
		totalScore += score
		totalVisible += r.visible
		totalQuality += r.quality
		if score > bestSeedScore {
			bestSeedScore = score
			bestSeedWindows = r.windows
		}
	}

	n := float64(len(fe.seeds))
	fitness := -(totalScore / n)

	fe.mu.Lock()
	if fitness < fe.bestFitness {
		fe.bestFitness = fitness
		fe.bestWindows = bestSeedWindows
	}
	fe.lastVisible = totalVisible / n
	fe.lastQuality = totalQuality / n
	fe.mu.Unlock()

	return fitness
}

// loadConfig builds a fresh config with the candidate applied. Seeds of
// one evaluation share it read-only.
func (fe *FitnessEvaluator) loadConfig(x []float64) (*config.Config, error) {
	cfg, err := config.Load(fe.configPath)
	if err != nil {
		return nil, err
	}
	fe.params.ApplyToConfig(cfg, x)

	// Search runs stay quiet: coverage flows through the stats
	// callback, not through CSV files.
	cfg.Telemetry.Enabled = false
	if cfg.Telemetry.CoverageEvery <= 0 {
		cfg.Telemetry.CoverageEvery = 30
	}
	return cfg, nil
}

// runSimulation executes one headless run and collects its coverage
// windows. Each seed reshuffles the terrain; everything else is shared.
func (fe *FitnessEvaluator) runSimulation(cfg *config.Config, seed int64) ([]telemetry.CoverageStats, error) {
	run := *cfg
	run.Scenario.Terrain.Seed = seed

	frames := fe.maxFrames
	if frames == 0 {
		frames = run.Derived.FrameCount
	}

	var windows []telemetry.CoverageStats
	v, err := viewer.New(viewer.Options{
		Seed:      seed,
		Headless:  true,
		MaxFrames: frames,
		Config:    &run,
		StatsCallback: func(stats telemetry.CoverageStats) {
			windows = append(windows, stats)
		},
	})
	if err != nil {
		return nil, err
	}
	defer v.Close()

	for !v.Done() {
		v.UpdateHeadless()
	}
	return windows, nil
}

// coverageScore is visible pixels over every pixel the sensor cone
// touched, pooled across windows so long windows weigh more. Unlike the
// per-frame visible fraction, out-of-range pixels count against the
// score: an orbit that stands off too far must not look perfect.
func coverageScore(windows []telemetry.CoverageStats) float64 {
	var visible, touched int64
	for _, w := range windows {
		visible += w.Visible
		touched += w.Visible + w.NearPlane + w.Shadowed + w.OutOfRange
	}
	if touched == 0 {
		return 0
	}
	return float64(visible) / float64(touched)
}

// windowQuality scores how usable the coverage is, in [0, 1]. The
// acquire share rewards windows that clear the detector threshold; the
// steadiness term punishes coverage that flickers between windows.
func windowQuality(windows []telemetry.CoverageStats) float64 {
	if len(windows) <= qualityWarmupWindows {
		return 0
	}

	var acquired int
	var fracs []float64
	for _, w := range windows[qualityWarmupWindows:] {
		if w.Frames == 0 {
			continue
		}
		fracs = append(fracs, w.VisibleFracMean)
		if w.VisibleFracP50 >= acquireThreshold {
			acquired++
		}
	}
	if len(fracs) == 0 {
		return 0
	}

	acquireScore := float64(acquired) / float64(len(fracs))
	q := qualityWeightAcquire*acquireScore + qualityWeightSteady*steadiness(fracs)
	return min(max(q, 0), 1)
}

// steadiness is exp(-cv^2), where cv is the coefficient of variation
// of the per-window mean visible fraction. Constant coverage scores 1;
// coverage that swings between windows decays toward 0.
func steadiness(fracs []float64) float64 {
	if len(fracs) < 2 {
		return 0
	}
	mean := stat.Mean(fracs, nil)
	if mean == 0 {
		return 0
	}
	cv := stat.StdDev(fracs, nil) / mean
	return math.Exp(-cv * cv)
}
