package models

import "github.com/shopspring/decimal"

// Ticker is one normalized, deduplicated US listing.
// Price, MarketCap and Volume are nil when the screener value was missing or unparsable.
type Ticker struct {
	Symbol    string
	Name      string
	Price     *decimal.Decimal
	MarketCap *decimal.Decimal
	Volume    *int64
	Industry  string
}

// ScreenerRowDTO is a raw row as returned by the screener API. All values are loosely formatted strings.
type ScreenerRowDTO struct {
	Symbol    string `json:"symbol"`
	Name      string `json:"name"`
	LastSale  string `json:"lastsale"`
	NetChange string `json:"netchange"`
	PctChange string `json:"pctchange"`
	MarketCap string `json:"marketCap"`
	Country   string `json:"country"`
	IPOYear   string `json:"ipoyear"`
	Volume    string `json:"volume"`
	Sector    string `json:"sector"`
	Industry  string `json:"industry"`
	URL       string `json:"url"`
}

type ScreenerResponseDTO struct {
	Data *struct {
		Rows []ScreenerRowDTO `json:"rows"`
	} `json:"data"`
}
