package main

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"stockpredict-api/internal/models"
	"stockpredict-api/internal/presenter"
	"stockpredict-api/internal/services"
)

func newWatchCmd(root *rootOptions) *cobra.Command {
	var balance float64

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Read submissions from stdin, one per line; a new line supersedes the one in flight",
		Long: `Each input line is "TICKER [PERIOD] [BALANCE] [FUTURE_DAYS]". Only the
latest submission is shown: entering a new line cancels the previous
request, and a late answer to it is discarded.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			orchestrator, _, err := root.orchestrator(cmd)
			if err != nil {
				return err
			}
			defer orchestrator.Close()

			return runWatch(cmd, services.NewSession(orchestrator), balance)
		},
	}

	cmd.Flags().Float64VarP(&balance, "balance", "b", 10000, "initial balance when a line does not give one")
	return cmd
}

func runWatch(cmd *cobra.Command, session *services.Session, balance float64) error {
	var (
		wg  sync.WaitGroup
		out sync.Mutex
	)
	w := cmd.OutOrStdout()
	printf := func(format string, a ...any) {
		out.Lock()
		defer out.Unlock()
		fmt.Fprintf(w, format, a...)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		req, err := parseWatchLine(line, balance)
		if err != nil {
			printf("error: %v\n", err)
			continue
		}

		pending, err := session.Start(cmd.Context(), req)
		if err != nil {
			printf("%s: %v\n", strings.ToUpper(req.Ticker), err)
			continue
		}

		wg.Add(1)
		go func(req models.PredictRequest) {
			defer wg.Done()

			sub, err := pending.Wait()
			switch {
			case errors.Is(err, services.ErrSuperseded):
				printf("%s: superseded\n", strings.ToUpper(req.Ticker))
			case err != nil:
				printf("%s: error: %v\n", strings.ToUpper(req.Ticker), err)
			default:
				out.Lock()
				defer out.Unlock()
				presenter.Render(w, sub.Outcome.Result)
			}
		}(req)
	}

	wg.Wait()
	return scanner.Err()
}

// parseWatchLine reads "TICKER [PERIOD] [BALANCE] [FUTURE_DAYS]".
func parseWatchLine(line string, defaultBalance float64) (models.PredictRequest, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || len(fields) > 4 {
		return models.PredictRequest{}, fmt.Errorf("expected TICKER [PERIOD] [BALANCE] [FUTURE_DAYS], got %q", line)
	}

	req := models.PredictRequest{Ticker: fields[0], InitialBalance: defaultBalance}
	if len(fields) > 1 {
		req.Period = fields[1]
	}
	if len(fields) > 2 {
		b, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return models.PredictRequest{}, fmt.Errorf("balance %q: %w", fields[2], err)
		}
		req.InitialBalance = b
	}
	if len(fields) > 3 {
		days, err := strconv.Atoi(fields[3])
		if err != nil {
			return models.PredictRequest{}, fmt.Errorf("future days %q: %w", fields[3], err)
		}
		req.FutureDays = &days
	}
	return req, nil
}
