package feed

// Market is a single tradable perpetual market as reported by the backend.
// Field names follow the wire format of the funding-arbitrage endpoint.
type Market struct {
	Symbol         string  `json:"symbol"`
	MarkPrice      float64 `json:"mark_price"`
	FundingRate    float64 `json:"funding_rate"`
	OpenInterest   float64 `json:"open_interest"`
	Premium        float64 `json:"premium"`
	DayVolume      float64 `json:"day_volume"`
	PriceChange24h float64 `json:"price_change_24h"`
}

// Snapshot is the funding-arbitrage response envelope. Markets arrive already
// sorted by descending funding rate; index 0 is the best opportunity.
type Snapshot struct {
	Success            bool     `json:"success"`
	Error              string   `json:"error,omitempty"`
	Markets            []Market `json:"markets"`
	TotalMarkets       int      `json:"total_markets"`
	FilteredMarkets    int      `json:"filtered_markets"`
	HighestFundingRate *Market  `json:"highest_funding_rate,omitempty"`
}
