package view

import (
	"fmt"
	"strconv"
)

// Badge is the visual severity applied to a table cell.
type Badge string

const (
	BadgeSuccess     Badge = "success"
	BadgeWarning     Badge = "warning"
	BadgeDestructive Badge = "destructive"
	BadgeSecondary   Badge = "secondary"
)

// FormatNumber renders a value scaled by powers of 1000 with a B/M/K suffix.
// Thresholds are inclusive, so exactly 1e6 renders as "1.00M". A negative
// decimals argument falls back to 2.
func FormatNumber(n float64, decimals int) string {
	if decimals < 0 {
		decimals = 2
	}
	switch {
	case n >= 1e9:
		return strconv.FormatFloat(n/1e9, 'f', decimals, 64) + "B"
	case n >= 1e6:
		return strconv.FormatFloat(n/1e6, 'f', decimals, 64) + "M"
	case n >= 1e3:
		return strconv.FormatFloat(n/1e3, 'f', decimals, 64) + "K"
	default:
		return strconv.FormatFloat(n, 'f', decimals, 64)
	}
}

// FormatPercent renders a fractional rate as a percentage, so 0.0005 becomes
// "0.0500%" at four decimals.
func FormatPercent(n float64, decimals int) string {
	if decimals < 0 {
		decimals = 4
	}
	return strconv.FormatFloat(n*100, 'f', decimals, 64) + "%"
}

// FormatChange renders an already-percent value with an explicit sign, so
// 5.0 becomes "+5.00%".
func FormatChange(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FundingBadge maps a funding rate to a severity. The ladder is ordered and
// first match wins; rates in (-0.0001, 0.0005] that clear 0.0001 are only a
// warning, and the band (-0.0001, 0.0001] falls through to secondary.
func FundingBadge(rate float64) Badge {
	switch {
	case rate > 0.0005:
		return BadgeSuccess
	case rate > 0.0001:
		return BadgeWarning
	case rate < -0.0001:
		return BadgeDestructive
	default:
		return BadgeSecondary
	}
}

// PriceChangeBadge maps a 24h percentage move to a severity.
func PriceChangeBadge(pct float64) Badge {
	switch {
	case pct > 5:
		return BadgeSuccess
	case pct > 0:
		return BadgeWarning
	case pct < -5:
		return BadgeDestructive
	default:
		return BadgeSecondary
	}
}
