// Package main provides CMA-ES search for the observer placement that
// keeps the most of the sensor footprint visible on the target area.
package main

import (
	"encoding/csv"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gonum.org/v1/gonum/optimize"

	"github.com/kestrelops/sightline/config"
	"github.com/kestrelops/sightline/telemetry"
)

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	maxFrames := flag.Int("max-frames", 0, "Frames per run (0 = one clock span)")
	seeds := flag.Int("seeds", 3, "Number of terrain seeds per evaluation")
	maxEvals := flag.Int("max-evals", 120, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}
	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("creating output directory: %v", err)
	}

	if err := config.Init(*configPath); err != nil {
		log.Fatalf("loading config: %v", err)
	}
	baseCfg := config.Cfg()
	if *maxFrames == 0 && baseCfg.Derived.FrameCount == 0 {
		log.Fatal("clock span is unbounded; set --max-frames or a finite clock")
	}

	params := NewParamVector()
	dim := params.Dim()

	// A fixed seed list keeps every candidate on the same terrain, so
	// fitness differences come from placement alone.
	evalSeeds := make([]int64, *seeds)
	for i := range evalSeeds {
		evalSeeds[i] = int64(i*1000 + 42)
	}
	evaluator := NewFitnessEvaluator(params, *maxFrames, evalSeeds, *configPath)

	elog, err := newEvalLog(filepath.Join(*outputDir, "placement_log.csv"), params.Specs)
	if err != nil {
		log.Fatalf("creating eval log: %v", err)
	}
	defer elog.close()

	// The search starts from the base config's own placement rather
	// than the box center, so a hand-tuned scenario is the baseline.
	initX := params.Normalize(params.Clamp(params.ExtractFromConfig(baseCfg)))

	popSize := *population
	if popSize == 0 {
		popSize = 4 + int(3.0*math.Log(float64(dim)))
	}
	method := &optimize.CmaEsChol{
		InitStepSize: 0.3,
		Population:   popSize,
	}
	settings := &optimize.Settings{
		FuncEvaluations: *maxEvals,
		Concurrent:      0, // each evaluation already runs its seeds in parallel
	}

	evalCount := 0
	bestFitness := math.Inf(1)
	var bestParams []float64
	started := time.Now()

	problem := optimize.Problem{
		// Sequential evaluation (Concurrent is 0) keeps the closure
		// variables race-free.
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++

			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = append([]float64(nil), clamped...)
			}
			if err := elog.record(evalCount, fitness, clamped); err != nil {
				log.Printf("eval log: %v", err)
			}

			elapsed := time.Since(started)
			eta := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("eval %d/%d  visible %.1f%%  quality %.2f  best %.4f  [%s elapsed, %s left]\n",
				evalCount, *maxEvals, evaluator.LastVisible()*100, evaluator.LastQuality(),
				bestFitness, fmtDur(elapsed), fmtDur(eta))
			return fitness
		},
	}

	fmt.Printf("placement search: %d parameters, population %d, up to %d evaluations\n",
		dim, popSize, *maxEvals)
	fmt.Printf("each candidate runs %d terrain seeds\n", *seeds)

	result, err := optimize.Minimize(problem, initX, settings, method)
	if err != nil {
		log.Printf("search stopped: %v", err)
	}
	// The minimizer reports its final point, which is not always the
	// best one seen; prefer the running best.
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\ndone after %d evaluations in %s, best fitness %.4f\n",
		evalCount, fmtDur(time.Since(started)), bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-16s %.6f\n", spec.Name, bestParams[i])
	}

	cfgOut := filepath.Join(*outputDir, "best_config.yaml")
	if err := saveBestConfig(cfgOut, *configPath, params, bestParams); err != nil {
		log.Printf("saving best config: %v", err)
	} else {
		fmt.Printf("best config: %s\n", cfgOut)
	}

	if windows := evaluator.BestWindows(); len(windows) > 0 {
		winOut := filepath.Join(*outputDir, "coverage_windows.json")
		if err := saveWindows(winOut, windows); err != nil {
			log.Printf("saving coverage windows: %v", err)
		} else {
			fmt.Printf("coverage windows: %s\n", winOut)
		}
	}
}

// evalLog appends one CSV row per evaluation so a search can be
// inspected while it runs.
type evalLog struct {
	file *os.File
	w    *csv.Writer
}

func newEvalLog(path string, specs []ParamSpec) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}
	header := []string{"eval", "fitness"}
	for _, spec := range specs {
		header = append(header, spec.Name)
	}
	w := csv.NewWriter(f)
	if err := w.Write(header); err != nil {
		f.Close()
		return nil, err
	}
	w.Flush()
	return &evalLog{file: f, w: w}, nil
}

// record writes the clamped values, which are the ones the run used.
func (el *evalLog) record(eval int, fitness float64, values []float64) error {
	row := []string{strconv.Itoa(eval), strconv.FormatFloat(fitness, 'f', 6, 64)}
	for _, v := range values {
		row = append(row, strconv.FormatFloat(v, 'f', 6, 64))
	}
	if err := el.w.Write(row); err != nil {
		return err
	}
	el.w.Flush()
	return el.w.Error()
}

func (el *evalLog) close() error {
	el.w.Flush()
	return el.file.Close()
}

// saveBestConfig reloads the base config, applies the winning
// placement, and writes the result as a ready-to-run scenario.
func saveBestConfig(path, configPath string, params *ParamVector, best []float64) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(cfg, best)
	return cfg.WriteYAML(path)
}

// saveWindows dumps the best run's coverage windows for plotting.
func saveWindows(path string, windows []telemetry.CoverageStats) error {
	data, err := json.MarshalIndent(windows, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// fmtDur renders a duration compactly for progress lines.
func fmtDur(d time.Duration) string {
	d = d.Round(time.Second)
	switch {
	case d >= time.Hour:
		return fmt.Sprintf("%dh%02dm", int(d.Hours()), int(d.Minutes())%60)
	case d >= time.Minute:
		return fmt.Sprintf("%dm%02ds", int(d.Minutes()), int(d.Seconds())%60)
	default:
		return fmt.Sprintf("%ds", int(d.Seconds()))
	}
}
