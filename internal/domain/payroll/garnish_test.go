package payroll

import (
	"errors"
	"testing"
	"time"
)

func orderOn(id, orderType string, amount float64, effective time.Time) GarnishmentOrder {
	return GarnishmentOrder{
		ID:            id,
		WorkerID:      "w-1",
		Type:          orderType,
		Creditor:      "creditor for " + id,
		CapType:       CapFlat,
		Amount:        amount,
		EffectiveDate: effective,
		Active:        true,
	}
}

var garnishAsOf = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)

func TestActiveOrdersPriorityAndTieBreak(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	feb := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)

	expired := orderOn("g-expired", GarnishTaxLevy, 100, jan)
	expiry := time.Date(2025, 2, 15, 0, 0, 0, 0, time.UTC)
	expired.ExpiryDate = &expiry
	inactive := orderOn("g-inactive", GarnishChildSupport, 100, jan)
	inactive.Active = false

	orders := ActiveOrders([]GarnishmentOrder{
		orderOn("g-creditor", GarnishCreditor, 100, jan),
		orderOn("g-loan", GarnishStudentLoan, 100, jan),
		orderOn("g-cs-feb", GarnishChildSupport, 100, feb),
		orderOn("g-cs-jan", GarnishChildSupport, 100, jan),
		orderOn("g-levy", GarnishTaxLevy, 100, jan),
		expired,
		inactive,
	}, garnishAsOf)

	want := []string{"g-cs-jan", "g-cs-feb", "g-levy", "g-loan", "g-creditor"}
	if len(orders) != len(want) {
		t.Fatalf("expected %d active orders, got %d", len(want), len(orders))
	}
	for i, id := range want {
		if orders[i].ID != id {
			t.Fatalf("position %d: expected %s, got %s", i, id, orders[i].ID)
		}
	}
}

func TestChildSupportSatisfiedBeforeCreditor(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := ActiveOrders([]GarnishmentOrder{
		orderOn("g-creditor", GarnishCreditor, 400, jan),
		orderOn("g-cs", GarnishChildSupport, 300, jan),
	}, garnishAsOf)

	// Disposable 1000; together the orders exceed the 50% child-support
	// ceiling only after child support is fully met.
	result, err := ApplyGarnishments(1200, 200, orders, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.PerOrder[0].GarnishmentID != "g-cs" || result.PerOrder[0].AmountApplied != 300 {
		t.Fatalf("expected child support fully satisfied first, got %+v", result.PerOrder[0])
	}
	if result.PerOrder[1].AmountApplied != 200 {
		t.Fatalf("expected creditor limited to remaining ceiling 200, got %v", result.PerOrder[1].AmountApplied)
	}
	if result.TotalGarnishments != 500 {
		t.Fatalf("expected total 500 at the ceiling, got %v", result.TotalGarnishments)
	}
	if result.NetPay != 500 {
		t.Fatalf("expected net 500, got %v", result.NetPay)
	}
}

func TestAggregateCeilingWithoutChildSupport(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := ActiveOrders([]GarnishmentOrder{
		orderOn("g-levy", GarnishTaxLevy, 200, jan),
		orderOn("g-creditor", GarnishCreditor, 400, jan),
	}, garnishAsOf)

	// Disposable 1000, 25% ceiling: 250 total even though order caps
	// would allow 600. The levy takes 200, the creditor the last 50.
	result, err := ApplyGarnishments(1100, 100, orders, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalGarnishments != 250 {
		t.Fatalf("expected ceiling 250 enforced, got %v", result.TotalGarnishments)
	}
	if result.PerOrder[0].AmountApplied != 200 || result.PerOrder[1].AmountApplied != 50 {
		t.Fatalf("expected 200/50 split, got %v/%v",
			result.PerOrder[0].AmountApplied, result.PerOrder[1].AmountApplied)
	}
}

func TestPercentOrderComputedOnDisposable(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	loan := orderOn("g-loan", GarnishStudentLoan, 0, jan)
	loan.CapType = CapPercent
	loan.Percent = 15

	result, err := ApplyGarnishments(1000, 200, []GarnishmentOrder{loan}, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 15% of the 800 disposable.
	if result.PerOrder[0].AmountApplied != 120 {
		t.Fatalf("expected 120, got %v", result.PerOrder[0].AmountApplied)
	}
	if result.NetPay != 680 {
		t.Fatalf("expected net 680, got %v", result.NetPay)
	}
}

func TestGarnishmentsPreserveIdentity(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	orders := ActiveOrders([]GarnishmentOrder{
		orderOn("g-cs", GarnishChildSupport, 320.33, jan),
		orderOn("g-levy", GarnishTaxLevy, 75.10, jan),
		orderOn("g-creditor", GarnishCreditor, 999, jan),
	}, garnishAsOf)

	gross, mandatory := 1543.27, 322.51
	result, err := ApplyGarnishments(gross, mandatory, orders, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var sum int64
	for _, applied := range result.PerOrder {
		sum += Cents(applied.AmountApplied)
	}
	if sum != Cents(result.TotalGarnishments) {
		t.Fatalf("itemized cents %d != total cents %d", sum, Cents(result.TotalGarnishments))
	}
	if Cents(result.NetPay) != Cents(gross)-Cents(mandatory)-Cents(result.TotalGarnishments) {
		t.Fatal("net pay identity violated")
	}

	disposable := gross - mandatory
	if Cents(result.TotalGarnishments) > Cents(Round2(disposable*50/100)) {
		t.Fatal("total garnishments exceed the ceiling")
	}
}

func TestNegativeNetPayRejected(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	creditor := orderOn("g-creditor", GarnishCreditor, 500, jan)

	// $10/hr x 40h gross with withholding misconfigured past gross: the
	// engine refuses to clamp.
	_, err := ApplyGarnishments(400, 410, []GarnishmentOrder{creditor}, 25, 50)
	if !errors.Is(err, ErrNegativeNetPay) {
		t.Fatalf("expected ErrNegativeNetPay, got %v", err)
	}
}

func TestZeroDisposableTakesNothing(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	creditor := orderOn("g-creditor", GarnishCreditor, 500, jan)

	result, err := ApplyGarnishments(400, 400, []GarnishmentOrder{creditor}, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.TotalGarnishments != 0 || result.NetPay != 0 {
		t.Fatalf("expected nothing withheld at zero disposable, got %+v", result)
	}
}

func TestCeilingQuantizedToWholeCents(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	creditor := orderOn("g-creditor", GarnishCreditor, 30, jan)

	// Disposable 100.02 puts the raw 25% ceiling at a half cent (25.005);
	// rounding the take half away from zero would withhold 25.01 past it.
	// The ceiling quantizes down, so the take stops at 25.00.
	result, err := ApplyGarnishments(100.02, 0, []GarnishmentOrder{creditor}, 25, 50)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if Cents(result.TotalGarnishments) != 2500 {
		t.Fatalf("expected 25.00 withheld, got %.2f", result.TotalGarnishments)
	}
	if Cents(result.NetPay) != Cents(100.02)-2500 {
		t.Fatalf("net pay identity violated: %.2f", result.NetPay)
	}
}
