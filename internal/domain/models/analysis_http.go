package models

// Requests for the analysis HTTP endpoints. Defined in domain for consistency and reuse.

type AnalyzeRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Limit    int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=1000"`
}

type PredictRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Interval string `query:"interval" json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
}

type TrainRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Interval string `json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Limit    int    `json:"limit" default:"500" validate:"gte=1,lte=1000"`
}

type BacktestRequest struct {
	Symbol   string `json:"symbol" validate:"required"`
	Interval string `json:"interval" default:"1h" validate:"oneof=1m 5m 15m 1h 4h 1d"`
	Limit    int    `json:"limit" default:"300" validate:"gte=1,lte=1000"`
}

type SymbolsRequest struct {
	Query string `query:"query" json:"query"`
}

type TokenRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}
