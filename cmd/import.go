package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/brcurves/svenfit/internal/marketdata"
)

var (
	importCSVPath      string
	importDate         string
	importHolidaysPath string
)

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import a rate table CSV into the observation store",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		tradeDate, err := time.Parse("2006-01-02", importDate)
		if err != nil {
			return fmt.Errorf("invalid date %q: %w", importDate, err)
		}

		var holidays []time.Time
		if importHolidaysPath != "" {
			holidays, err = marketdata.LoadHolidays(importHolidaysPath)
			if err != nil {
				return err
			}
		}

		f, err := os.Open(importCSVPath)
		if err != nil {
			return fmt.Errorf("open rates: %w", err)
		}
		defer f.Close()

		obs, err := marketdata.ParseReferenceRates(f, tradeDate, marketdata.NewCalendar(holidays))
		if err != nil {
			return err
		}

		_, observations, closeStores, err := openStores(ctx, cfg)
		if err != nil {
			return err
		}
		defer closeStores()

		if err := observations.SaveObservations(ctx, importDate, obs); err != nil {
			return err
		}

		fmt.Printf("Imported %d observations for %s\n", len(obs), importDate)
		return nil
	},
}

func init() {
	importCmd.Flags().StringVar(&importCSVPath, "csv", "", "Path to the rate table CSV (required)")
	importCmd.Flags().StringVar(&importDate, "date", "", "Trade date, YYYY-MM-DD (required)")
	importCmd.Flags().StringVar(&importHolidaysPath, "holidays", "", "Path to holiday list file")
	importCmd.MarkFlagRequired("csv")
	importCmd.MarkFlagRequired("date")
	rootCmd.AddCommand(importCmd)
}
