package payroll

import (
	"fmt"
	"math"
)

// ResolveWages computes regular, overtime, and gross pay for one timesheet.
// Pure; overtime is paid at the fixed 1.5x multiplier. Gross is rounded once
// from the unrounded components.
func ResolveWages(sheet TimesheetPeriod, rate PayRateProfile) (WageBreakdown, error) {
	if sheet.RegularHours < 0 || sheet.OvertimeHours < 0 {
		return WageBreakdown{}, fmt.Errorf("%w: hours must not be negative", ErrInvalidInput)
	}
	if rate.HourlyRate <= 0 {
		return WageBreakdown{}, fmt.Errorf("%w: hourly rate must be positive", ErrInvalidInput)
	}
	if max := maxPeriodHours(sheet); max > 0 && sheet.RegularHours+sheet.OvertimeHours > max {
		return WageBreakdown{}, fmt.Errorf("%w: %.2f hours exceeds %.0f for the period",
			ErrInvalidInput, sheet.RegularHours+sheet.OvertimeHours, max)
	}

	regularPay := sheet.RegularHours * rate.HourlyRate
	overtimePay := sheet.OvertimeHours * rate.HourlyRate * OvertimeMultiplier

	// Gross is rounded once from the unrounded components; overtime is then
	// the remainder, so the printed lines always sum to the gross line.
	grossPay := Round2(regularPay + overtimePay)
	regularRounded := Round2(regularPay)

	return WageBreakdown{
		RegularHours:  sheet.RegularHours,
		OvertimeHours: sheet.OvertimeHours,
		RegularPay:    regularRounded,
		OvertimePay:   Round2(grossPay - regularRounded),
		GrossPay:      grossPay,
	}, nil
}

// DeriveOvertime splits reported per-week hours into regular and overtime
// totals. Everything beyond 40 in a calendar week is overtime, including
// fractional excess.
func DeriveOvertime(weeklyHours []float64) (regular, overtime float64) {
	for _, hours := range weeklyHours {
		if hours <= WeeklyOvertimeThreshold {
			regular += hours
			continue
		}
		regular += WeeklyOvertimeThreshold
		overtime += hours - WeeklyOvertimeThreshold
	}
	return regular, overtime
}

// maxPeriodHours is the sanity ceiling of 24 hours per day in the period.
func maxPeriodHours(sheet TimesheetPeriod) float64 {
	if sheet.PeriodStart.IsZero() || sheet.PeriodEnd.IsZero() {
		return 0
	}
	days := math.Floor(sheet.PeriodEnd.Sub(sheet.PeriodStart).Hours()/24) + 1
	if days <= 0 {
		return 0
	}
	return days * 24
}
