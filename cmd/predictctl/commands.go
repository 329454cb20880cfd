package main

import (
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"stockpredict-api/internal/config"
	"stockpredict-api/internal/logging"
	"stockpredict-api/internal/services"
)

type rootOptions struct {
	serviceURL string
	timeout    time.Duration
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "predictctl",
		Short:         "Run stock price predictions and trading simulations from the terminal",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.serviceURL, "service-url", "", "prediction service base URL (overrides PREDICTION_SERVICE_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "per-request timeout (overrides PREDICTION_TIMEOUT)")
	flags.StringVar(&opts.logLevel, "log-level", "warn", "log level written to stderr")

	rootCmd.AddCommand(
		newPredictCmd(opts),
		newWatchCmd(opts),
		newPeriodsCmd(),
		newQuoteCmd(opts),
	)
	return rootCmd
}

// load reads the gateway configuration with the command line overrides.
// The CLI keeps no cache between runs.
func (o *rootOptions) load() (*config.Config, error) {
	return config.LoadWith(func(c *config.Config) {
		if o.serviceURL != "" {
			c.PredictionServiceURL = o.serviceURL
		}
		if o.timeout > 0 {
			c.PredictionTimeout = o.timeout
		}
		c.CacheTTL = 0
	})
}

func (o *rootOptions) logger(cmd *cobra.Command) *slog.Logger {
	return logging.NewWithWriter(cmd.ErrOrStderr(), o.logLevel, true)
}

func (o *rootOptions) orchestrator(cmd *cobra.Command) (*services.PredictionOrchestrator, *config.Config, error) {
	cfg, err := o.load()
	if err != nil {
		return nil, nil, err
	}
	client := services.NewPredictionClient(cfg)
	return services.NewPredictionOrchestrator(client, cfg.CacheTTL, o.logger(cmd)), cfg, nil
}
