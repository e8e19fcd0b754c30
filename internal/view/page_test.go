package view

import (
	"testing"
	"time"

	"fundingboard/internal/feed"
	"fundingboard/internal/state"
)

func dashboardView() state.View {
	return state.View{
		Data: &feed.Snapshot{
			Success:         true,
			TotalMarkets:    180,
			FilteredMarkets: 2,
			HighestFundingRate: &feed.Market{
				Symbol:      "BTC",
				FundingRate: 0.0007,
			},
			Markets: []feed.Market{
				{Symbol: "BTC", MarkPrice: 64250.5, FundingRate: 0.0007, OpenInterest: 1.2e9, DayVolume: 3.5e9, PriceChange24h: 2.4, Premium: 0.0003},
				{Symbol: "ETH", MarkPrice: 3120.25, FundingRate: 0.0002, OpenInterest: 8e8, DayVolume: 1.5e9, PriceChange24h: -1.1, Premium: -0.0001},
			},
		},
		LastUpdated: time.Date(2024, 5, 1, 14, 30, 5, 0, time.UTC),
		AutoRefresh: true,
	}
}

func TestBuildPageLoadingScreen(t *testing.T) {
	page := BuildPage(state.View{Loading: true, AutoRefresh: true})
	if page.Screen != ScreenLoading {
		t.Fatalf("expected loading screen, got %s", page.Screen)
	}
}

func TestBuildPageErrorWinsOverStaleData(t *testing.T) {
	v := dashboardView()
	v.Error = "backend down"

	page := BuildPage(v)
	if page.Screen != ScreenError {
		t.Fatalf("error screen must take precedence, got %s", page.Screen)
	}
	if page.Error != "backend down" {
		t.Errorf("unexpected error message: %q", page.Error)
	}
}

func TestBuildPageDashboard(t *testing.T) {
	page := BuildPage(dashboardView())

	if page.Screen != ScreenDashboard {
		t.Fatalf("expected dashboard screen, got %s", page.Screen)
	}
	if page.TotalMarkets != "180" || page.QualifiedMarkets != "2" {
		t.Errorf("unexpected summary counts: %s/%s", page.TotalMarkets, page.QualifiedMarkets)
	}
	if page.HighestSymbol != "BTC" || page.HighestRate != "0.0700%" {
		t.Errorf("unexpected highest funding card: %s %s", page.HighestSymbol, page.HighestRate)
	}
	if page.LastUpdated != "14:30:05" {
		t.Errorf("unexpected last updated stamp: %q", page.LastUpdated)
	}

	if len(page.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(page.Rows))
	}

	best := page.Rows[0]
	if !best.Best {
		t.Errorf("row 0 must be tagged best")
	}
	if page.Rows[1].Best {
		t.Errorf("only row 0 may be tagged best")
	}
	if best.MarkPrice != "$64.25K" {
		t.Errorf("unexpected mark price: %q", best.MarkPrice)
	}
	if best.FundingRate != "0.0700%" || best.FundingBadge != BadgeSuccess {
		t.Errorf("unexpected funding cell: %s/%s", best.FundingRate, best.FundingBadge)
	}
	if best.OpenInterest != "$1.20B" || best.DayVolume != "$3.50B" {
		t.Errorf("unexpected notional cells: %s/%s", best.OpenInterest, best.DayVolume)
	}
	if best.PriceChange != "+2.40%" || best.PriceChangeBadge != BadgeWarning {
		t.Errorf("unexpected change cell: %s/%s", best.PriceChange, best.PriceChangeBadge)
	}

	second := page.Rows[1]
	if second.PriceChange != "-1.10%" || second.PriceChangeBadge != BadgeSecondary {
		t.Errorf("unexpected second change cell: %s/%s", second.PriceChange, second.PriceChangeBadge)
	}
}

func TestBuildPageEmptyMarketsIsNotAnError(t *testing.T) {
	v := dashboardView()
	v.Data = &feed.Snapshot{Success: true}

	page := BuildPage(v)
	if page.Screen != ScreenDashboard {
		t.Fatalf("empty markets should still render the dashboard, got %s", page.Screen)
	}
	if len(page.Rows) != 0 {
		t.Errorf("expected no rows, got %d", len(page.Rows))
	}
}

func TestBuildPageMissingHighestUsesSentinels(t *testing.T) {
	v := dashboardView()
	v.Data.HighestFundingRate = nil

	page := BuildPage(v)
	if page.HighestSymbol != "N/A" || page.HighestRate != "No data" {
		t.Errorf("expected sentinels, got %s/%s", page.HighestSymbol, page.HighestRate)
	}
}
