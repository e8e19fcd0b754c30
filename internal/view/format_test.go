package view

import "testing"

func TestFormatNumberSuffixes(t *testing.T) {
	cases := []struct {
		in       float64
		decimals int
		want     string
	}{
		{2_500_000_000, 2, "2.50B"},
		{1_000_000_000, 2, "1.00B"},
		{1_000_000, 2, "1.00M"},
		{999_999_999, 2, "1000.00M"},
		{64_250.5, 2, "64.25K"},
		{1_000, 2, "1.00K"},
		{999.99, 2, "999.99"},
		{0, 2, "0.00"},
		{42.4242, 4, "42.4242"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in, c.decimals); got != c.want {
			t.Errorf("FormatNumber(%v, %d) = %q, want %q", c.in, c.decimals, got, c.want)
		}
	}
}

func TestFormatPercent(t *testing.T) {
	cases := []struct {
		in       float64
		decimals int
		want     string
	}{
		{0.0005, 4, "0.0500%"},
		{-0.0001, 2, "-0.01%"},
		{0, 4, "0.0000%"},
		{0.01, 2, "1.00%"},
	}
	for _, c := range cases {
		if got := FormatPercent(c.in, c.decimals); got != c.want {
			t.Errorf("FormatPercent(%v, %d) = %q, want %q", c.in, c.decimals, got, c.want)
		}
	}
}

func TestFormatChange(t *testing.T) {
	cases := map[float64]string{
		5.0:  "+5.00%",
		0:    "+0.00%",
		-1.1: "-1.10%",
	}
	for in, want := range cases {
		if got := FormatChange(in); got != want {
			t.Errorf("FormatChange(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestFundingBadgeLadder(t *testing.T) {
	cases := map[float64]Badge{
		0.0006:  BadgeSuccess,
		0.0005:  BadgeWarning, // boundary: strictly greater required for success
		0.0002:  BadgeWarning,
		0.0001:  BadgeSecondary, // boundary: strictly greater required for warning
		0:       BadgeSecondary,
		-0.0001: BadgeSecondary, // boundary: strictly less required for destructive
		-0.0002: BadgeDestructive,
	}
	for rate, want := range cases {
		if got := FundingBadge(rate); got != want {
			t.Errorf("FundingBadge(%v) = %q, want %q", rate, got, want)
		}
	}
}

func TestPriceChangeBadgeLadder(t *testing.T) {
	cases := map[float64]Badge{
		6:  BadgeSuccess,
		5:  BadgeWarning, // boundary: strictly greater required for success
		1:  BadgeWarning,
		0:  BadgeSecondary,
		-5: BadgeSecondary, // boundary: strictly less required for destructive
		-6: BadgeDestructive,
	}
	for pct, want := range cases {
		if got := PriceChangeBadge(pct); got != want {
			t.Errorf("PriceChangeBadge(%v) = %q, want %q", pct, got, want)
		}
	}
}
