package model

// Signal is the discrete trading signal derived from the moving averages.
type Signal string

const (
	SignalBuy     Signal = "Buy"
	SignalSell    Signal = "Sell"
	SignalUnknown Signal = "Unknown"
)

// UnknownSector is assigned to records whose source did not report a sector.
const UnknownSector = "Unknown"
