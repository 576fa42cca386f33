package models

import "time"

// Holding is one portfolio position, carried at average cost.
type Holding struct {
	Symbol   string    `json:"symbol"`
	Amount   float64   `json:"amount"`
	AvgPrice float64   `json:"avg_price"`
	Exchange string    `json:"exchange,omitempty"`
	AddedAt  time.Time `json:"added_at"`
}

// Transaction is one ledger entry (portfolio or paper account).
type Transaction struct {
	Type      TradeAction `json:"type"`
	Symbol    string      `json:"symbol"`
	Amount    float64     `json:"amount"`
	Price     float64     `json:"price"`
	Total     float64     `json:"total"`
	Exchange  string      `json:"exchange,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Portfolio is the persisted simulated-portfolio ledger.
type Portfolio struct {
	Holdings     []Holding     `json:"holdings"`
	Transactions []Transaction `json:"transactions"`
}

// HoldingValue is a holding priced against current market data.
type HoldingValue struct {
	Holding
	CurrentPrice  float64 `json:"current_price"`
	Value         float64 `json:"value"`
	Profit        float64 `json:"profit"`
	ProfitPercent float64 `json:"profit_percent"`
}

// PortfolioValuation is the whole portfolio priced against current data.
type PortfolioValuation struct {
	Holdings           []HoldingValue `json:"holdings"`
	TotalValue         float64        `json:"total_value"`
	TotalCost          float64        `json:"total_cost"`
	TotalProfit        float64        `json:"total_profit"`
	TotalProfitPercent float64        `json:"total_profit_percent"`
}

// Position is one open paper-trading position.
type Position struct {
	Symbol   string  `json:"symbol"`
	Amount   float64 `json:"amount"`
	AvgPrice float64 `json:"avg_price"`
	Side     string  `json:"side"`
}

// PaperStats summarizes a paper-trading account.
type PaperStats struct {
	TotalTrades   int     `json:"total_trades"`
	WinningTrades int     `json:"winning_trades"`
	TotalProfit   float64 `json:"total_profit"`
	WinRate       float64 `json:"win_rate"`
}

// PaperAccount is the persisted paper-trading state.
type PaperAccount struct {
	Balance   float64       `json:"balance"`
	Positions []Position    `json:"positions"`
	Trades    []Transaction `json:"trades"`
	Stats     PaperStats    `json:"stats"`
	StartTime time.Time     `json:"start_time"`
}
