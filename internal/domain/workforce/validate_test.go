package workforce

import (
	"errors"
	"testing"
	"time"

	"orbit/internal/domain/payroll"
	"orbit/internal/domain/tax"
)

func weekTimesheet(regular, overtime float64) Timesheet {
	return Timesheet{
		WorkerID:      "w-1",
		PeriodStart:   time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC),
		PeriodEnd:     time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC),
		RegularHours:  regular,
		OvertimeHours: overtime,
	}
}

func TestValidateTimesheet(t *testing.T) {
	if err := ValidateTimesheet(weekTimesheet(40, 5)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// 7 days x 24h is the ceiling for a one-week sheet.
	if err := ValidateTimesheet(weekTimesheet(168, 0)); err != nil {
		t.Fatalf("unexpected error at ceiling: %v", err)
	}
	if err := ValidateTimesheet(weekTimesheet(168, 1)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput over ceiling, got %v", err)
	}

	if err := ValidateTimesheet(weekTimesheet(-1, 0)); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for negative hours, got %v", err)
	}

	inverted := weekTimesheet(40, 0)
	inverted.PeriodStart, inverted.PeriodEnd = inverted.PeriodEnd, inverted.PeriodStart
	if err := ValidateTimesheet(inverted); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for inverted period, got %v", err)
	}
}

func TestValidateRateProfile(t *testing.T) {
	profile := RateProfile{
		WorkerID:     "w-1",
		HourlyRate:   20,
		WorkState:    "TN",
		FilingStatus: tax.FilingSingle,
	}
	if err := ValidateRateProfile(profile); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	cases := map[string]func(*RateProfile){
		"zero rate":      func(p *RateProfile) { p.HourlyRate = 0 },
		"negative rate":  func(p *RateProfile) { p.HourlyRate = -5 },
		"missing state":  func(p *RateProfile) { p.WorkState = "" },
		"bad filing":     func(p *RateProfile) { p.FilingStatus = "widowed" },
		"missing worker": func(p *RateProfile) { p.WorkerID = "" },
	}
	for name, mutate := range cases {
		bad := profile
		mutate(&bad)
		if err := ValidateRateProfile(bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}

func TestValidateOrder(t *testing.T) {
	effective := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	order := GarnishmentOrder{
		WorkerID:      "w-1",
		Type:          payroll.GarnishChildSupport,
		Creditor:      "State Disbursement Unit",
		CapType:       payroll.CapFlat,
		Amount:        150,
		EffectiveDate: effective,
	}
	if err := ValidateOrder(order); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	percent := order
	percent.CapType = payroll.CapPercent
	percent.Amount = 0
	percent.Percent = 15
	if err := ValidateOrder(percent); err != nil {
		t.Fatalf("unexpected error for percent order: %v", err)
	}

	cases := map[string]func(*GarnishmentOrder){
		"unknown type":     func(o *GarnishmentOrder) { o.Type = "parking_ticket" },
		"zero flat amount": func(o *GarnishmentOrder) { o.Amount = 0 },
		"no creditor":      func(o *GarnishmentOrder) { o.Creditor = " " },
		"bad cap type":     func(o *GarnishmentOrder) { o.CapType = "sliding" },
		"expiry inversion": func(o *GarnishmentOrder) {
			before := effective.AddDate(0, -1, 0)
			o.ExpiryDate = &before
		},
	}
	for name, mutate := range cases {
		bad := order
		mutate(&bad)
		if err := ValidateOrder(bad); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", name, err)
		}
	}
}
