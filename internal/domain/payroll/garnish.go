package payroll

import (
	"fmt"
	"math"
	"sort"
	"time"
)

// ActiveOrders filters to orders in force on asOf, in deterministic
// application sequence: type priority, then effective date, then id.
func ActiveOrders(orders []GarnishmentOrder, asOf time.Time) []GarnishmentOrder {
	var active []GarnishmentOrder
	for _, order := range orders {
		if order.InWindow(asOf) {
			active = append(active, order)
		}
	}
	sort.SliceStable(active, func(i, j int) bool {
		pi, pj := garnishPriority(active[i].Type), garnishPriority(active[j].Type)
		if pi != pj {
			return pi < pj
		}
		if !active[i].EffectiveDate.Equal(active[j].EffectiveDate) {
			return active[i].EffectiveDate.Before(active[j].EffectiveDate)
		}
		return active[i].ID < active[j].ID
	})
	return active
}

// ApplyGarnishments withholds the given orders against disposable earnings
// (gross minus mandatory deductions) in priority order, under both per-order
// caps and the aggregate CCPA-style ceiling. Orders must already be sorted
// by ActiveOrders. Excess an order cannot take this period is forfeited, not
// carried forward.
func ApplyGarnishments(grossPay, mandatoryDeductions float64, orders []GarnishmentOrder, capPercent, childSupportCapPercent float64) (GarnishmentResult, error) {
	if grossPay < 0 || mandatoryDeductions < 0 {
		return GarnishmentResult{}, fmt.Errorf("%w: negative pay amounts", ErrInvalidInput)
	}

	disposable := grossPay - mandatoryDeductions
	if Cents(disposable) < 0 {
		return GarnishmentResult{}, fmt.Errorf("%w: mandatory deductions %.2f exceed gross pay %.2f",
			ErrNegativeNetPay, mandatoryDeductions, grossPay)
	}

	// The statutory ceiling rises when a child support order is present.
	ceilingPercent := capPercent
	for _, order := range orders {
		if order.Type == GarnishChildSupport {
			ceilingPercent = childSupportCapPercent
			break
		}
	}
	// Quantized down to a whole cent: cent-rounded takes must never sum
	// past the statutory percentage of disposable earnings.
	ceiling := math.Floor(disposable*ceilingPercent/100*100) / 100

	remaining := disposable
	allowance := ceiling
	var total float64
	perOrder := make([]GarnishmentApplied, 0, len(orders))

	for _, order := range orders {
		want := orderDemand(order, disposable)
		take := want
		if take > remaining {
			take = remaining
		}
		if take > allowance {
			take = allowance
		}
		if take < 0 {
			take = 0
		}
		take = Round2(take)

		remaining -= take
		allowance -= take
		total += take

		perOrder = append(perOrder, GarnishmentApplied{
			GarnishmentID: order.ID,
			Type:          order.Type,
			Creditor:      order.Creditor,
			AmountApplied: take,
		})
	}

	net := Round2(grossPay - mandatoryDeductions - total)
	if Cents(net) < 0 {
		return GarnishmentResult{}, fmt.Errorf("%w: computed net %.2f", ErrNegativeNetPay, net)
	}

	return GarnishmentResult{
		PerOrder:          perOrder,
		TotalGarnishments: Round2(total),
		NetPay:            net,
	}, nil
}

func orderDemand(order GarnishmentOrder, disposable float64) float64 {
	if order.CapType == CapPercent {
		return disposable * order.Percent / 100
	}
	return order.Amount
}
