// Package format renders numbers the way reports quote them: rupee amounts in
// crores, market totals in trillions, percentages to one or two decimals.
package format

import (
	"fmt"
	"math"
	"strconv"

	"SectorPulse/internal/model"

	"github.com/dustin/go-humanize"
)

// CroresPerTrillion is 10^12 rupees expressed in crores (10^7 rupees).
const CroresPerTrillion = 100_000

// NA is printed for absent values.
const NA = "N/A"

// amountLayout groups thousands and keeps two decimals.
const amountLayout = "#,###.##"

// Crores formats a market-cap figure that is already in crores.
func Crores(v float64) string {
	return "₹" + humanize.FormatFloat(amountLayout, v) + " Cr"
}

// Trillions scales a crore figure to trillions of rupees.
func Trillions(crores float64) string {
	return fmt.Sprintf("₹%.2fT", crores/CroresPerTrillion)
}

// Rupees formats a price.
func Rupees(v float64) string {
	return "₹" + humanize.FormatFloat(amountLayout, v)
}

// Pct formats a value that is already a percentage.
func Pct(v float64, decimals int) string {
	return strconv.FormatFloat(v, 'f', decimals, 64) + "%"
}

// SignedPct formats a percentage change with an explicit sign.
func SignedPct(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}

// Ratio formats a fraction in [0,1] as a percentage with one decimal.
func Ratio(v float64) string {
	return Pct(v*100, 1)
}

// Num formats an optional value with the given renderer, or NA.
func Num(n model.Num, render func(float64) string) string {
	if !n.Valid {
		return NA
	}
	return render(n.Float64)
}

// Fixed renders with a fixed number of decimals.
func Fixed(decimals int) func(float64) string {
	return func(v float64) string { return strconv.FormatFloat(v, 'f', decimals, 64) }
}

// Volume renders share volumes compactly (K, M, B).
func Volume(v float64) string {
	abs := math.Abs(v)
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.2fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.2fM", v/1e6)
	case abs >= 1e3:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.0f", v)
	}
}
