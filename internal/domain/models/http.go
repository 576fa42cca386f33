package models

// HTTP request DTOs. Binding, defaulting and validation run through
// pkg/http.ReadAndValidateRequest.

// ThresholdRequest sets or replaces a per-symbol price threshold.
type ThresholdRequest struct {
	Symbol    string  `json:"symbol" validate:"required,alphanum"`
	Target    float64 `json:"target" validate:"required,gt=0"`
	Direction string  `json:"direction" default:"above" validate:"oneof=above below"`
}

// TradeRequest executes a portfolio or paper-trading trade.
type TradeRequest struct {
	Action string  `json:"action" validate:"required,oneof=buy sell"`
	Symbol string  `json:"symbol" validate:"required"`
	Amount float64 `json:"amount" validate:"required,gt=0"`
	Price  float64 `json:"price" validate:"required,gt=0"`

	// Exchange labels portfolio trades only; paper trades ignore it.
	Exchange string `json:"exchange" default:"Binance"`
}

// PricesRequest asks for aggregated quotes.
type PricesRequest struct {
	Symbols string `query:"symbols"` // comma separated, defaults to the top coins
}

// HistoryRequest bounds list endpoints.
type HistoryRequest struct {
	Limit int `query:"limit" default:"50" validate:"gte=1,lte=500"`
}

// AlertsRequest bounds and filters the alert history listing. Severity
// accepts the lowercase names or the legacy HIGH/MEDIUM/LOW vocabulary.
type AlertsRequest struct {
	Limit    int    `query:"limit" default:"50" validate:"gte=1,lte=500"`
	Severity string `query:"severity" validate:"omitempty,oneof=critical warning normal HIGH MEDIUM LOW"`
}

// SeriesRequest bounds a price-history query. From and To accept RFC3339 or
// unix seconds; both default to the trailing 24h window.
type SeriesRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	From   string `query:"from"`
	To     string `query:"to"`
	Limit  int    `query:"limit" default:"500" validate:"gte=1,lte=5000"`
}

// AnalysisRequest asks for a technical-analysis report.
type AnalysisRequest struct {
	Symbol string `query:"symbol" validate:"required"`
	Points int    `query:"points" default:"48" validate:"gte=2,lte=1000"`
}

// PredictionRequest asks for a trend prediction summary.
type PredictionRequest struct {
	Symbol  string `query:"symbol" validate:"required"`
	Points  int    `query:"points" default:"48" validate:"gte=2,lte=1000"`
	Horizon int    `query:"horizon" default:"24" validate:"gte=1,lte=168"`
}
