package cmd

import (
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/gwpop/gwpop/pop"
	"github.com/gwpop/gwpop/pop/backend"
	"github.com/gwpop/gwpop/pop/conversions"
	"github.com/gwpop/gwpop/pop/hyperpe"
	_ "github.com/gwpop/gwpop/pop/models" // register named models
	"github.com/gwpop/gwpop/pop/sampler"
	"github.com/gwpop/gwpop/pop/vt"
)

var (
	configPath string // Path to the YAML analysis spec
	logLevel   string // Log verbosity level
	seed       int64  // Master seed; overrides the config when set
	outputDir  string // Directory for chain CSV and summaries
	steps      int    // Sampler steps; overrides the config when set

	atPoint   string // "k=v,..." hyper-parameter point for evaluate
	scanRange string // "name=min:max:n" scan axis for evaluate
)

// rootCmd is the base command for the CLI.
var rootCmd = &cobra.Command{
	Use:   "gwpop",
	Short: "Hierarchical population inference for gravitational-wave catalogs",
}

// runCmd samples the hyper-posterior for a configured analysis.
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Sample the hyper-posterior for an analysis spec",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := loadConfig()
		if seed != 0 {
			cfg.Seed = seed
		}
		if steps != 0 {
			cfg.Sampler.Steps = steps
		}

		likelihood, _ := buildLikelihood(cfg)
		priors := buildPriors(cfg)

		logrus.Infof("starting analysis: %d events, %d models, seed=%d, steps=%d",
			len(cfg.Events), len(cfg.Models), cfg.Seed, cfg.Sampler.Steps)
		startTime := time.Now()

		rng := pop.NewPartitionedRNG(pop.NewRunKey(cfg.Seed)).ForSubsystem(pop.SubsystemSampler)
		chain, err := sampler.Run(likelihood.LogLikelihood, priors, sampler.Config{
			Steps:    cfg.Sampler.Steps,
			Burnin:   cfg.Sampler.Burnin,
			LogEvery: cfg.Sampler.LogEvery,
		}, rng)
		if err != nil {
			logrus.Fatalf("sampling failed: %v", err)
		}

		if err := os.MkdirAll(outputDir, 0o755); err != nil {
			logrus.Fatalf("creating output directory %s: %v", outputDir, err)
		}
		chainPath := filepath.Join(outputDir, "chain.csv")
		if err := chain.WriteCSV(chainPath); err != nil {
			logrus.Fatalf("writing chain: %v", err)
		}
		chain.LogSummaries()
		logrus.Infof("chain written to %s (%.1fs elapsed)", chainPath, time.Since(startTime).Seconds())
	},
}

// evaluateCmd evaluates the likelihood at a point or along a 1-D scan.
var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate the population likelihood at a hyper-parameter point or scan",
	Run: func(cmd *cobra.Command, args []string) {
		setupLogging()
		cfg := loadConfig()
		likelihood, base := buildLikelihood(cfg)

		params, err := parsePoint(atPoint)
		if err != nil {
			logrus.Fatalf("invalid --at point: %v", err)
		}

		if scanRange == "" {
			lnl, variance, err := evaluateWithVariance(likelihood, base, params)
			if err != nil {
				logrus.Fatalf("likelihood evaluation failed: %v", err)
			}
			fmt.Printf("log_likelihood=%.6f mc_variance=%.6g\n", lnl, variance)
			return
		}

		name, axis, err := parseScan(scanRange)
		if err != nil {
			logrus.Fatalf("invalid --scan range: %v", err)
		}
		lnls := make([]float64, len(axis))
		for i, v := range axis {
			params[name] = v
			lnl, err := likelihood.LogLikelihood(params)
			if err != nil {
				logrus.Fatalf("likelihood evaluation failed at %s=%g: %v", name, v, err)
			}
			lnls[i] = lnl
			fmt.Printf("%s=%.6f log_likelihood=%.6f\n", name, v, lnl)
		}
		// Log-mean over the scan, a flat-prior marginal over this axis.
		logMean := backend.LogSumExp(lnls) - math.Log(float64(len(lnls)))
		fmt.Printf("log_mean_likelihood=%.6f\n", logMean)
	},
}

// likelihooder is the evaluation surface shared by the plain and
// rate-resolved likelihoods.
type likelihooder interface {
	LogLikelihood(params map[string]float64) (float64, error)
	NEvents() int
}

func setupLogging() {
	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		logrus.Fatalf("Invalid log level: %s", logLevel)
	}
	logrus.SetLevel(level)
}

func loadConfig() *AnalysisConfig {
	if configPath == "" {
		logrus.Fatalf("analysis config not provided (--config). Exiting.")
	}
	cfg, err := LoadAnalysisConfig(configPath)
	if err != nil {
		logrus.Fatalf("unable to read analysis config: %v", err)
	}
	return cfg
}

// buildLikelihood assembles the model stack, event catalog, and selection
// estimator. The base Likelihood is returned alongside for variance
// reporting; it is nil when rate inference wraps it.
func buildLikelihood(cfg *AnalysisConfig) (likelihooder, *hyperpe.Likelihood) {
	parts := make([]pop.Model, 0, len(cfg.Models))
	for _, spec := range cfg.Models {
		m, err := pop.NewModel(spec)
		if err != nil {
			logrus.Fatalf("building model: %v", err)
		}
		parts = append(parts, m)
	}
	model, err := pop.NewProduct(parts...)
	if err != nil {
		logrus.Fatalf("building model: %v", err)
	}

	posteriors := make([]*pop.Dataset, 0, len(cfg.Events))
	for _, ev := range cfg.Events {
		d, err := pop.LoadCSV(ev.Path)
		if err != nil {
			logrus.Fatalf("loading event %s: %v", ev.Name, err)
		}
		if !d.Has("prior") {
			logrus.Fatalf("event %s has no \"prior\" column", ev.Name)
		}
		logrus.Debugf("loaded event %s: %d samples, columns %v", ev.Name, d.Len(), d.Columns())
		posteriors = append(posteriors, d)
	}

	var selection vt.Estimator
	if cfg.Selection != nil {
		injections, err := vt.LoadInjections(cfg.Selection.Injections)
		if err != nil {
			logrus.Fatalf("loading injections: %v", err)
		}
		est, err := vt.NewInjection(model, injections, cfg.Selection.Total)
		if err != nil {
			logrus.Fatalf("building selection estimator: %v", err)
		}
		logrus.Infof("selection: %d found of %g total injections", est.Found(), cfg.Selection.Total)
		selection = est
	}

	var conversion hyperpe.Conversion
	if cfg.ConvertSpinMoments {
		conversion = conversions.ToBetaParams
	}

	likeCfg := hyperpe.Config{
		Posteriors: posteriors,
		Model:      model,
		Selection:  selection,
		Conversion: conversion,
		MaxSamples: cfg.MaxSamples,
		Workers:    cfg.Workers,
	}
	if cfg.Rate {
		rl, err := hyperpe.NewRate(likeCfg)
		if err != nil {
			logrus.Fatalf("building rate likelihood: %v", err)
		}
		return rl, nil
	}
	l, err := hyperpe.New(likeCfg)
	if err != nil {
		logrus.Fatalf("building likelihood: %v", err)
	}
	return l, l
}

func buildPriors(cfg *AnalysisConfig) map[string]sampler.Prior {
	priors := make(map[string]sampler.Prior, len(cfg.Priors))
	for name, spec := range cfg.Priors {
		p, err := sampler.NewPrior(spec)
		if err != nil {
			logrus.Fatalf("prior %q: %v", name, err)
		}
		priors[name] = p
	}
	return priors
}

func evaluateWithVariance(l likelihooder, base *hyperpe.Likelihood, params map[string]float64) (float64, float64, error) {
	if base != nil {
		return base.LogLikelihoodAndVariance(params)
	}
	lnl, err := l.LogLikelihood(params)
	return lnl, math.NaN(), err
}

// parsePoint parses "k=v,k=v" into a params map.
func parsePoint(s string) (map[string]float64, error) {
	params := map[string]float64{}
	if s == "" {
		return params, nil
	}
	for _, pair := range strings.Split(s, ",") {
		key, val, found := strings.Cut(pair, "=")
		if !found {
			return nil, fmt.Errorf("expected k=v, got %q", pair)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("value for %q: %w", key, err)
		}
		params[strings.TrimSpace(key)] = v
	}
	return params, nil
}

// parseScan parses "name=min:max:n" into an axis.
func parseScan(s string) (string, []float64, error) {
	name, rangeSpec, found := strings.Cut(s, "=")
	if !found {
		return "", nil, fmt.Errorf("expected name=min:max:n, got %q", s)
	}
	fields := strings.Split(rangeSpec, ":")
	if len(fields) != 3 {
		return "", nil, fmt.Errorf("expected min:max:n, got %q", rangeSpec)
	}
	min, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("scan minimum: %w", err)
	}
	max, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("scan maximum: %w", err)
	}
	n, err := strconv.Atoi(fields[2])
	if err != nil {
		return "", nil, fmt.Errorf("scan point count: %w", err)
	}
	if n < 2 || max <= min {
		return "", nil, fmt.Errorf("scan requires min < max and n >= 2")
	}
	return strings.TrimSpace(name), backend.Linspace(min, max, n), nil
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		logrus.Fatal(err)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to the YAML analysis spec")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	runCmd.Flags().Int64Var(&seed, "seed", 0, "Master seed (overrides config when non-zero)")
	runCmd.Flags().IntVar(&steps, "steps", 0, "Sampler steps (overrides config when non-zero)")
	runCmd.Flags().StringVar(&outputDir, "output", "results", "Output directory for chain and summaries")

	evaluateCmd.Flags().StringVar(&atPoint, "at", "", "Hyper-parameter point as k=v,k=v")
	evaluateCmd.Flags().StringVar(&scanRange, "scan", "", "Scan one hyper-parameter as name=min:max:n")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(evaluateCmd)
}
