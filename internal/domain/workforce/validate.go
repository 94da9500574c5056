package workforce

import (
	"fmt"
	"strings"

	"orbit/internal/domain/payroll"
	"orbit/internal/domain/tax"
)

// ValidateTimesheet applies arithmetic sanity before a sheet can be
// approved: non-negative hours, a real period window, and a per-day ceiling
// on total hours.
func ValidateTimesheet(sheet Timesheet) error {
	if sheet.WorkerID == "" {
		return fmt.Errorf("%w: workerId is required", ErrInvalidInput)
	}
	if sheet.PeriodStart.IsZero() || sheet.PeriodEnd.IsZero() {
		return fmt.Errorf("%w: period dates are required", ErrInvalidInput)
	}
	if sheet.PeriodEnd.Before(sheet.PeriodStart) {
		return fmt.Errorf("%w: period end before start", ErrInvalidInput)
	}
	if sheet.RegularHours < 0 || sheet.OvertimeHours < 0 {
		return fmt.Errorf("%w: hours cannot be negative", ErrInvalidInput)
	}

	days := sheet.PeriodEnd.Sub(sheet.PeriodStart).Hours()/24 + 1
	if total := sheet.RegularHours + sheet.OvertimeHours; total > days*MaxHoursPerDay {
		return fmt.Errorf("%w: %.2f hours exceeds %.0f days", ErrInvalidInput, total, days)
	}
	return nil
}

func ValidateRateProfile(profile RateProfile) error {
	if profile.WorkerID == "" {
		return fmt.Errorf("%w: workerId is required", ErrInvalidInput)
	}
	if profile.HourlyRate <= 0 {
		return fmt.Errorf("%w: hourlyRate must be positive", ErrInvalidInput)
	}
	if strings.TrimSpace(profile.WorkState) == "" {
		return fmt.Errorf("%w: workState is required", ErrInvalidInput)
	}
	switch profile.FilingStatus {
	case tax.FilingSingle, tax.FilingMarriedJoint, tax.FilingMarriedSeparate, tax.FilingHeadOfHousehold:
	default:
		return fmt.Errorf("%w: unknown filing status %q", ErrInvalidInput, profile.FilingStatus)
	}
	return nil
}

func ValidateOrder(order GarnishmentOrder) error {
	if order.WorkerID == "" {
		return fmt.Errorf("%w: workerId is required", ErrInvalidInput)
	}
	if strings.TrimSpace(order.Creditor) == "" {
		return fmt.Errorf("%w: creditor is required", ErrInvalidInput)
	}

	known := false
	for _, orderType := range payroll.GarnishmentTypes {
		if order.Type == orderType {
			known = true
			break
		}
	}
	if !known {
		return fmt.Errorf("%w: unknown garnishment type %q", ErrInvalidInput, order.Type)
	}

	switch order.CapType {
	case payroll.CapFlat:
		if order.Amount <= 0 {
			return fmt.Errorf("%w: flat orders need a positive amount", ErrInvalidInput)
		}
	case payroll.CapPercent:
		if order.Percent <= 0 || order.Percent > 100 {
			return fmt.Errorf("%w: percent orders need a percent in (0,100]", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: unknown cap type %q", ErrInvalidInput, order.CapType)
	}

	if order.EffectiveDate.IsZero() {
		return fmt.Errorf("%w: effectiveDate is required", ErrInvalidInput)
	}
	if order.ExpiryDate != nil && order.ExpiryDate.Before(order.EffectiveDate) {
		return fmt.Errorf("%w: expiry before effective date", ErrInvalidInput)
	}
	return nil
}
