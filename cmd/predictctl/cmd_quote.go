package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/prediction"
	"stockpredict-api/internal/presenter"
	"stockpredict-api/internal/services"
)

func newQuoteCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "quote TICKER...",
		Short: "Show the latest market quote of one or more tickers",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			// Quotes do not need the prediction service.
			cfg, err := root.load()
			if errors.Is(err, config.ErrMissingServiceURL) {
				cfg, err = config.Defaults(), nil
			}
			if err != nil {
				return err
			}

			symbols := make([]string, len(args))
			for i, arg := range args {
				if symbols[i], err = prediction.NormalizeTicker(arg); err != nil {
					return fmt.Errorf("%s: %w", arg, err)
				}
			}

			quotes := services.NewQuoteService(cfg, root.logger(cmd))
			defer quotes.Close()

			found, err := quotes.QuoteBatch(cmd.Context(), symbols)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			for _, symbol := range symbols {
				q, ok := found[symbol]
				if !ok {
					fmt.Fprintf(w, "%-10s unavailable\n", symbol)
					continue
				}
				fmt.Fprintf(w, "%-10s %12s %8s %s\n", q.Symbol, presenter.Currency(q.Price), presenter.Percent(q.ChangePercent), q.Currency)
			}
			return nil
		},
	}
}
