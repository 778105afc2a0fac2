package dto

import (
	"encoding/json"

	"golang-stock-insight/internal/insight/panel"
)

// PanelStateResponse is the HTTP representation of a panel.
type PanelStateResponse struct {
	StockCode string           `json:"stock_code"`
	State     string           `json:"state"`
	Running   bool             `json:"running"`
	Logs      []panel.LogEntry `json:"logs"`
	Result    *panel.Result    `json:"result,omitempty"`
}

// AnalyzeResponse reports whether a run was started.
type AnalyzeResponse struct {
	StockCode string `json:"stock_code"`
	Started   bool   `json:"started"`
	State     string `json:"state"`
}

// StreamDataAnalysisRequest is the payload enqueued on the analysis stream.
type StreamDataAnalysisRequest struct {
	StockCode string `json:"stock_code"`
}

// CreateStockRequest adds a ticker to the watchlist.
type CreateStockRequest struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// SignalResponse is a stored signal row rendered over HTTP.
type SignalResponse struct {
	ID            int64           `json:"id"`
	StockCode     string          `json:"stock_code"`
	Signal        string          `json:"signal"`
	BuyPercentage int             `json:"buy_percentage"`
	Confidence    float64         `json:"confidence"`
	EODMovement   *float64        `json:"eod_movement,omitempty"`
	Reasoning     string          `json:"reasoning"`
	Data          json.RawMessage `json:"data,omitempty"`
}

// ErrorResponse represents a generic error response body.
type ErrorResponse struct {
	Error string `json:"error"`
}
