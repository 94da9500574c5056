package payroll

const (
	RecordStatusDraft  = "draft"
	RecordStatusIssued = "issued"

	PeriodStatusOpen     = "open"
	PeriodStatusComputed = "computed"
	PeriodStatusIssued   = "issued"

	GarnishChildSupport = "child_support"
	GarnishTaxLevy      = "tax_levy"
	GarnishStudentLoan  = "student_loan"
	GarnishCreditor     = "creditor"

	CapFlat    = "flat"
	CapPercent = "percent"

	FrequencyWeekly      = "weekly"
	FrequencyBiweekly    = "biweekly"
	FrequencySemimonthly = "semimonthly"
	FrequencyMonthly     = "monthly"

	OvertimeMultiplier      = 1.5
	WeeklyOvertimeThreshold = 40.0
)

var GarnishmentTypes = []string{
	GarnishChildSupport,
	GarnishTaxLevy,
	GarnishStudentLoan,
	GarnishCreditor,
}

// Federal rule: child support first, then tax levies, then student loans,
// then ordinary creditors.
func garnishPriority(orderType string) int {
	switch orderType {
	case GarnishChildSupport:
		return 0
	case GarnishTaxLevy:
		return 1
	case GarnishStudentLoan:
		return 2
	default:
		return 3
	}
}

// PeriodsPerYear maps a pay frequency to its annualization factor. Unknown
// frequencies return 0 so callers must validate.
func PeriodsPerYear(frequency string) int {
	switch frequency {
	case FrequencyWeekly:
		return 52
	case FrequencyBiweekly:
		return 26
	case FrequencySemimonthly:
		return 24
	case FrequencyMonthly:
		return 12
	default:
		return 0
	}
}
