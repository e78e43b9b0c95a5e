// Package bilan computes the daily balance: margin on delivered products,
// the margin lost on unsold units, and the net result after payroll and
// other draws.
package bilan

import (
	"github.com/shopspring/decimal"
)

// ProductionEntry is one delivery line.
type ProductionEntry struct {
	DeliveryDate  string          `json:"delivery_date" yaml:"delivery_date"`
	District      string          `json:"district" yaml:"district"`
	Small         int             `json:"small" yaml:"small"`
	Large         int             `json:"large" yaml:"large"`
	Biscuits      int             `json:"biscuits" yaml:"biscuits"`
	MarginPerUnit decimal.Decimal `json:"margin_per_unit" yaml:"margin_per_unit"`
	LossSmall     int             `json:"loss_small" yaml:"loss_small"`
	LossLarge     int             `json:"loss_large" yaml:"loss_large"`
	LossBiscuits  int             `json:"loss_biscuits" yaml:"loss_biscuits"`
}

// Margin is the margin earned on the units that were not lost.
func (e ProductionEntry) Margin() decimal.Decimal {
	sold := (e.Small - e.LossSmall) + (e.Large - e.LossLarge) + (e.Biscuits - e.LossBiscuits)
	return decimal.NewFromInt(int64(sold)).Mul(e.MarginPerUnit)
}

// PayrollEntry is a salary or a material draw (vehicle, shareholder).
type PayrollEntry struct {
	Name   string          `json:"name" yaml:"name"`
	Amount decimal.Decimal `json:"amount" yaml:"amount"`
}

// Input groups everything needed to compute a balance.
type Input struct {
	Production []ProductionEntry `json:"production" yaml:"production"`
	Payroll    []PayrollEntry    `json:"payroll" yaml:"payroll"`
}

// Stats are the aggregate figures of a balance.
type Stats struct {
	TotalMargin  decimal.Decimal `json:"total_margin"`
	LossSmall    decimal.Decimal `json:"loss_small"`
	LossLarge    decimal.Decimal `json:"loss_large"`
	LossBiscuits decimal.Decimal `json:"loss_biscuits"`
	TotalPayroll decimal.Decimal `json:"total_payroll"`
	NetMargin    decimal.Decimal `json:"net_margin"`
}

func lossValue(units int, margin decimal.Decimal) decimal.Decimal {
	return decimal.NewFromInt(int64(units)).Mul(margin)
}

// Compute aggregates production lines and payroll. Nothing is clamped: losses
// larger than deliveries produce a negative margin.
func Compute(in Input) Stats {
	stats := Stats{
		TotalMargin:  decimal.Zero,
		LossSmall:    decimal.Zero,
		LossLarge:    decimal.Zero,
		LossBiscuits: decimal.Zero,
		TotalPayroll: decimal.Zero,
	}

	for _, e := range in.Production {
		stats.TotalMargin = stats.TotalMargin.Add(e.Margin())
		stats.LossSmall = stats.LossSmall.Add(lossValue(e.LossSmall, e.MarginPerUnit))
		stats.LossLarge = stats.LossLarge.Add(lossValue(e.LossLarge, e.MarginPerUnit))
		stats.LossBiscuits = stats.LossBiscuits.Add(lossValue(e.LossBiscuits, e.MarginPerUnit))
	}
	for _, p := range in.Payroll {
		stats.TotalPayroll = stats.TotalPayroll.Add(p.Amount)
	}

	stats.NetMargin = stats.TotalMargin.Sub(stats.TotalPayroll)
	return stats
}
