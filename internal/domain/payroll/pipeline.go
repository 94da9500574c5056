package payroll

import (
	"errors"
	"fmt"

	"orbit/internal/domain/tax"
)

// Inputs is everything one payroll computation needs. Approval state is the
// caller's concern; the pipeline validates arithmetic sanity only.
type Inputs struct {
	Timesheet      TimesheetPeriod
	Rate           PayRateProfile
	Orders         []GarnishmentOrder
	PriorYTDWages  float64
	PeriodsPerYear int

	// ZeroUnknownJurisdiction opts in to treating an unsupported work
	// state as zero state/local tax instead of rejecting the run.
	ZeroUnknownJurisdiction bool
}

// Compute runs the full pipeline — wages, withholding, garnishments — and
// returns a draft record with every input snapshotted. The caller assigns
// identity (id, tenant, hallmark) before persisting. Any stage error aborts
// the run; no partial record is produced.
func Compute(tables *tax.Tables, in Inputs) (PayrollRecord, error) {
	if in.Timesheet.WorkerID == "" {
		return PayrollRecord{}, fmt.Errorf("%w: timesheet has no worker", ErrInvalidInput)
	}
	if in.Rate.WorkerID != "" && in.Rate.WorkerID != in.Timesheet.WorkerID {
		return PayrollRecord{}, fmt.Errorf("%w: rate profile belongs to a different worker", ErrInvalidInput)
	}

	wages, err := ResolveWages(in.Timesheet, in.Rate)
	if err != nil {
		return PayrollRecord{}, err
	}

	withheld, err := ComputeWithholding(tables, wages.GrossPay, in.Rate.FilingStatus,
		in.Rate.WorkState, in.Rate.WorkCity, in.PriorYTDWages, in.PeriodsPerYear)
	if err != nil && in.ZeroUnknownJurisdiction && errors.Is(err, ErrUnsupportedJurisdiction) {
		withheld, err = ComputeWithholdingZeroJurisdiction(tables, wages.GrossPay,
			in.Rate.FilingStatus, in.PriorYTDWages, in.PeriodsPerYear)
	}
	if err != nil {
		return PayrollRecord{}, err
	}
	mandatory := withheld.Total()

	orders := ActiveOrders(in.Orders, in.Timesheet.PeriodEnd)
	garnished, err := ApplyGarnishments(wages.GrossPay, mandatory, orders,
		tables.GarnishCapPercent, tables.GarnishCapChildSupportPercent)
	if err != nil {
		return PayrollRecord{}, err
	}

	return PayrollRecord{
		WorkerID:    in.Timesheet.WorkerID,
		WorkerName:  in.Timesheet.WorkerName,
		PeriodStart: in.Timesheet.PeriodStart,
		PeriodEnd:   in.Timesheet.PeriodEnd,

		HourlyRate:   in.Rate.HourlyRate,
		WorkState:    in.Rate.WorkState,
		WorkCity:     in.Rate.WorkCity,
		FilingStatus: in.Rate.FilingStatus,

		RegularHours:  wages.RegularHours,
		OvertimeHours: wages.OvertimeHours,
		RegularPay:    wages.RegularPay,
		OvertimePay:   wages.OvertimePay,
		GrossPay:      wages.GrossPay,

		FederalIncomeTax:         withheld.FederalIncomeTax,
		SocialSecurityTax:        withheld.SocialSecurityTax,
		MedicareTax:              withheld.MedicareTax,
		AdditionalMedicareTax:    withheld.AdditionalMedicareTax,
		StateTax:                 withheld.StateTax,
		LocalTax:                 withheld.LocalTax,
		TotalMandatoryDeductions: mandatory,

		Garnishments:      garnished.PerOrder,
		TotalGarnishments: garnished.TotalGarnishments,
		NetPay:            garnished.NetPay,

		YTDWagesBefore: Round2(in.PriorYTDWages),
		YTDWagesAfter:  Round2(in.PriorYTDWages + wages.GrossPay),

		Status: RecordStatusDraft,
	}, nil
}

// YTDAccumulator threads cumulative gross wages through a worker's ordered
// periods within a calendar year. The fold replaces implicit ordering
// assumptions: construct one per worker, feed records oldest first.
type YTDAccumulator struct {
	Year  int
	Wages float64
}

func (a *YTDAccumulator) Add(record PayrollRecord) {
	if year := record.PeriodEnd.Year(); year != a.Year {
		a.Year = year
		a.Wages = 0
	}
	a.Wages = Round2(a.Wages + record.GrossPay)
}
