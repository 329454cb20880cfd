package prediction

// Result is everything a presenter needs to render one response. It is
// rebuilt from scratch for each response.
type Result struct {
	Ticker         string                   `json:"ticker"`
	Period         Period                   `json:"period"`
	InitialBalance float64                  `json:"initial_balance"`
	ProfitLoss     *float64                 `json:"profit_loss,omitempty"`
	Models         []string                 `json:"models"`
	Series         AlignedSeries            `json:"series"`
	Overlay        TradeOverlay             `json:"overlay"`
	Metrics        map[string]ModelMetrics  `json:"metrics"`
	Warnings       []DataConsistencyWarning `json:"warnings"`
	TradeLogs      map[string][]TradeEvent  `json:"trade_logs"`
}

// Reconcile aligns the series, builds the trade overlay and derives the
// metrics of resp. Warnings do not fail reconciliation.
func Reconcile(req Request, resp Response) (*Result, error) {
	series, err := Align(resp.Models)
	if err != nil {
		return nil, err
	}

	overlay, warnings := BuildOverlay(resp.Models, series.Dates)

	metrics, err := DeriveMetrics(resp)
	if err != nil {
		return nil, err
	}

	if warnings == nil {
		warnings = []DataConsistencyWarning{}
	}

	names := resp.ModelNames()
	logs := make(map[string][]TradeEvent, len(names))
	for _, name := range names {
		logs[name] = append([]TradeEvent{}, resp.Models[name].TradeLog...)
	}

	res := &Result{
		Ticker:         req.Ticker,
		Period:         req.Period,
		InitialBalance: resp.InitialBalance,
		Models:         names,
		Series:         series,
		Overlay:        overlay,
		Metrics:        metrics,
		Warnings:       warnings,
		TradeLogs:      logs,
	}
	if resp.ProfitLoss != nil {
		res.ProfitLoss = Float(*resp.ProfitLoss)
	}
	return res, nil
}
