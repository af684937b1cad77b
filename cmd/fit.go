package main

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brcurves/svenfit/internal/curve"
	"github.com/brcurves/svenfit/internal/marketdata"
	"github.com/brcurves/svenfit/internal/opt"
)

var (
	fitCSVPath      string
	fitDate         string
	fitStrategy     string
	fitHolidaysPath string
	fitSeed         int64
	fitInitial      []float64
)

var fitCmd = &cobra.Command{
	Use:   "fit",
	Short: "Fit a curve to a rate table in one shot",
	Long: `Fit reads a B3 DI x Pre referential rate CSV, runs the chosen
strategy from the supplied initial parameters, and prints the result as
JSON. Nothing is persisted.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		strategy, err := opt.ParseStrategy(fitStrategy)
		if err != nil {
			return err
		}

		tradeDate, err := time.Parse("2006-01-02", fitDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", fitDate, err)
		}

		var holidays []time.Time
		if fitHolidaysPath != "" {
			holidays, err = marketdata.LoadHolidays(fitHolidaysPath)
			if err != nil {
				return err
			}
		}

		f, err := os.Open(fitCSVPath)
		if err != nil {
			return fmt.Errorf("open rates: %w", err)
		}
		defer f.Close()

		obs, err := marketdata.ParseReferenceRates(f, tradeDate, marketdata.NewCalendar(holidays))
		if err != nil {
			return err
		}

		if len(fitInitial) != curve.NumParams {
			return fmt.Errorf("expected %d initial parameters, got %d", curve.NumParams, len(fitInitial))
		}
		start := curve.FromSlice(fitInitial)

		optCfg := cfg.OptimizerSettings()
		baseline, err := curve.Objective(start, obs, optCfg.DayCount)
		if err != nil {
			return err
		}

		seed := fitSeed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}

		result, err := opt.Run(strategy, obs, start, baseline, optCfg, rand.New(rand.NewSource(seed)))
		if err != nil {
			return err
		}

		out := map[string]any{
			"date":             fitDate,
			"strategy":         strategy,
			"observations":     len(obs),
			"initialObjective": baseline,
			"improved":         result.Improved,
			"iterations":       result.Iterations,
			"bestParams":       result.BestParams,
			"bestMetrics":      result.BestMetrics,
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	fitCmd.Flags().StringVar(&fitCSVPath, "csv", "", "Path to the rate table CSV (required)")
	fitCmd.Flags().StringVar(&fitDate, "date", "", "Trade date, YYYY-MM-DD (required)")
	fitCmd.Flags().StringVar(&fitStrategy, "strategy", string(opt.StrategyHybrid), "Search strategy")
	fitCmd.Flags().StringVar(&fitHolidaysPath, "holidays", "", "Path to holiday list file")
	fitCmd.Flags().Int64Var(&fitSeed, "seed", 0, "Random seed (0 = time-based)")
	fitCmd.Flags().Float64SliceVar(&fitInitial, "initial",
		[]float64{0.1, 0.01, 0.01, 0.01, 1, 5},
		"Initial parameters: beta0,beta1,beta2,beta3,lambda1,lambda2")
	fitCmd.MarkFlagRequired("csv")
	fitCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(fitCmd)
}
