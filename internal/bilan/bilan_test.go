package bilan

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func n(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestCompute(t *testing.T) {
	in := Input{
		Production: []ProductionEntry{
			{District: "Kipé", Small: 120, Large: 50, Biscuits: 200, MarginPerUnit: n(1000), LossSmall: 10, LossLarge: 2, LossBiscuits: 5},
			{District: "Ratoma", Small: 30, Large: 0, Biscuits: 0, MarginPerUnit: n(500), LossSmall: 3},
		},
		Payroll: []PayrollEntry{
			{Name: "Bangaly", Amount: n(1400000)},
			{Name: "Véhicule", Amount: n(500000)},
		},
	}

	stats := Compute(in)

	// (110 + 48 + 195) * 1000 + 27 * 500
	assert.True(t, stats.TotalMargin.Equal(n(366500)), "total margin %s", stats.TotalMargin)
	assert.True(t, stats.LossSmall.Equal(n(11500)), "loss small %s", stats.LossSmall)
	assert.True(t, stats.LossLarge.Equal(n(2000)))
	assert.True(t, stats.LossBiscuits.Equal(n(5000)))
	assert.True(t, stats.TotalPayroll.Equal(n(1900000)))
	assert.True(t, stats.NetMargin.Equal(n(-1533500)), "net margin %s", stats.NetMargin)
}

func TestCompute_Empty(t *testing.T) {
	stats := Compute(Input{})

	assert.True(t, stats.TotalMargin.IsZero())
	assert.True(t, stats.NetMargin.IsZero())
}
