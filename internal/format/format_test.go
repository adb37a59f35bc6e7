package format

import (
	"testing"

	"SectorPulse/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "₹1,725,000.50 Cr", Crores(1725000.5))
	assert.Equal(t, "₹17.25T", Trillions(1725000))
	assert.Equal(t, "₹2,950.10", Rupees(2950.1))
	assert.Equal(t, "₹1,234.57", Rupees(1234.567))
	assert.Equal(t, "₹999.00", Rupees(999))
	assert.Equal(t, "₹-1,234,567.00 Cr", Crores(-1234567))
}

func TestPercentages(t *testing.T) {
	assert.Equal(t, "1.2%", Pct(1.234, 1))
	assert.Equal(t, "+1.23%", SignedPct(1.234))
	assert.Equal(t, "-0.50%", SignedPct(-0.5))
	assert.Equal(t, "60.0%", Ratio(0.6))
}

func TestNumAndVolume(t *testing.T) {
	assert.Equal(t, NA, Num(model.None(), Fixed(2)))
	assert.Equal(t, "21.50", Num(model.Some(21.5), Fixed(2)))
	assert.Equal(t, "1.50M", Volume(1_500_000))
	assert.Equal(t, "2.5K", Volume(2500))
	assert.Equal(t, "12", Volume(12))
}
