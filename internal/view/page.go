package view

import (
	"strconv"

	"fundingboard/internal/state"
)

// Screen selects which of the three layouts the dashboard shows.
type Screen string

const (
	// ScreenLoading is shown only while the first fetch is in flight and no
	// data has ever arrived.
	ScreenLoading Screen = "loading"
	// ScreenError is shown whenever an error is set. It wins over stale
	// data; the last good snapshot stays in the store but is not rendered.
	ScreenError Screen = "error"
	// ScreenDashboard is the main table view.
	ScreenDashboard Screen = "dashboard"
)

// Row is one pre-formatted market line of the dashboard table.
type Row struct {
	Symbol           string `json:"symbol"`
	Best             bool   `json:"best"`
	MarkPrice        string `json:"mark_price"`
	FundingRate      string `json:"funding_rate"`
	FundingBadge     Badge  `json:"funding_badge"`
	OpenInterest     string `json:"open_interest"`
	DayVolume        string `json:"day_volume"`
	PriceChange      string `json:"price_change"`
	PriceChangeBadge Badge  `json:"price_change_badge"`
	Premium          string `json:"premium"`
}

// Page is the fully formatted render model for the dashboard screen. It is a
// pure function of the view state; the template below it holds no logic
// beyond iteration.
type Page struct {
	Screen      Screen `json:"screen"`
	Error       string `json:"error,omitempty"`
	Loading     bool   `json:"loading"`
	AutoRefresh bool   `json:"auto_refresh"`
	LastUpdated string `json:"last_updated,omitempty"`

	TotalMarkets     string `json:"total_markets"`
	QualifiedMarkets string `json:"qualified_markets"`
	HighestSymbol    string `json:"highest_symbol"`
	HighestRate      string `json:"highest_rate"`

	Rows []Row `json:"rows"`
}

const (
	sentinelNoSymbol = "N/A"
	sentinelNoData   = "No data"
)

// BuildPage maps the current view state to a render model. Precedence: the
// error screen wins even when stale data is available, then the loading
// screen while no data has ever arrived, then the dashboard.
func BuildPage(v state.View) Page {
	page := Page{
		Loading:     v.Loading,
		AutoRefresh: v.AutoRefresh,
	}

	if !v.LastUpdated.IsZero() {
		page.LastUpdated = v.LastUpdated.Format("15:04:05")
	}

	if v.Error != "" {
		page.Screen = ScreenError
		page.Error = v.Error
		return page
	}

	if v.Data == nil {
		page.Screen = ScreenLoading
		return page
	}

	page.Screen = ScreenDashboard
	page.TotalMarkets = strconv.Itoa(v.Data.TotalMarkets)
	page.QualifiedMarkets = strconv.Itoa(v.Data.FilteredMarkets)

	if highest := v.Data.HighestFundingRate; highest != nil {
		page.HighestSymbol = highest.Symbol
		page.HighestRate = FormatPercent(highest.FundingRate, 4)
	} else {
		page.HighestSymbol = sentinelNoSymbol
		page.HighestRate = sentinelNoData
	}

	page.Rows = make([]Row, 0, len(v.Data.Markets))
	for i, market := range v.Data.Markets {
		page.Rows = append(page.Rows, Row{
			Symbol:           market.Symbol,
			Best:             i == 0,
			MarkPrice:        "$" + FormatNumber(market.MarkPrice, 2),
			FundingRate:      FormatPercent(market.FundingRate, 4),
			FundingBadge:     FundingBadge(market.FundingRate),
			OpenInterest:     "$" + FormatNumber(market.OpenInterest, 2),
			DayVolume:        "$" + FormatNumber(market.DayVolume, 2),
			PriceChange:      FormatChange(market.PriceChange24h),
			PriceChangeBadge: PriceChangeBadge(market.PriceChange24h),
			Premium:          FormatPercent(market.Premium, 4),
		})
	}

	return page
}
