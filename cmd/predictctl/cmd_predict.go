package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"stockpredict-api/internal/models"
	"stockpredict-api/internal/prediction"
	"stockpredict-api/internal/presenter"
)

type predictOptions struct {
	period     string
	balance    float64
	futureDays int
	asJSON     bool
}

func newPredictCmd(root *rootOptions) *cobra.Command {
	opts := &predictOptions{}

	cmd := &cobra.Command{
		Use:   "predict TICKER",
		Short: "Run one prediction and trading simulation",
		Example: `  predictctl predict AAPL
  predictctl predict MSFT --period 5y --balance 25000 --future-days 30 --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req := models.PredictRequest{
				Ticker:         args[0],
				Period:         opts.period,
				InitialBalance: opts.balance,
			}
			if cmd.Flags().Changed("future-days") {
				days := opts.futureDays
				req.FutureDays = &days
			}
			return runPredict(cmd, root, opts, req)
		},
	}

	cmd.Flags().StringVarP(&opts.period, "period", "p", string(prediction.DefaultPeriod),
		"historical window ("+strings.Join(periodNames(), ", ")+")")
	cmd.Flags().Float64VarP(&opts.balance, "balance", "b", 10000, "initial balance of the trading simulation")
	cmd.Flags().IntVar(&opts.futureDays, "future-days", 0, "days to forecast past the last trading day (0-365)")
	cmd.Flags().BoolVar(&opts.asJSON, "json", false, "print the reconciled result and chart as JSON")
	return cmd
}

func runPredict(cmd *cobra.Command, root *rootOptions, opts *predictOptions, req models.PredictRequest) error {
	orchestrator, _, err := root.orchestrator(cmd)
	if err != nil {
		return err
	}
	defer orchestrator.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	out, err := orchestrator.Predict(ctx, req)
	if err != nil {
		return err
	}

	if opts.asJSON {
		return writeJSON(cmd.OutOrStdout(), out.Result)
	}
	return presenter.Render(cmd.OutOrStdout(), out.Result)
}

type jsonResult struct {
	*prediction.Result
	Chart presenter.ChartData `json:"chart"`
}

func writeJSON(w io.Writer, r *prediction.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(jsonResult{Result: r, Chart: presenter.Chart(r)}); err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	return nil
}

func periodNames() []string {
	periods := prediction.Periods()
	names := make([]string, len(periods))
	for i, p := range periods {
		names[i] = string(p)
	}
	return names
}

func newPeriodsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "periods",
		Short: "List the historical windows the prediction service accepts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w := cmd.OutOrStdout()
			for _, p := range prediction.Periods() {
				marker := ""
				if p == prediction.DefaultPeriod {
					marker = " (default)"
				}
				if _, err := fmt.Fprintf(w, "%s%s\n", p, marker); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
