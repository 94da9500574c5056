package payroll

import (
	"fmt"

	"orbit/internal/domain/tax"
)

// ComputeWithholding calculates all mandatory deductions for one period's
// gross pay. Stateless and pure: year-to-date wages prior to this period are
// supplied by the caller, which must process a worker's periods in order.
// An unknown work state fails with ErrUnsupportedJurisdiction; the explicit
// zero-tax fallback lives in ComputeWithholdingZeroJurisdiction so the
// policy choice is never implicit.
func ComputeWithholding(tables *tax.Tables, grossPay float64, filingStatus, workState, workCity string, priorYTDWages float64, periodsPerYear int) (Withholding, error) {
	stateRate, ok := tables.StateRate(workState)
	if !ok {
		return Withholding{}, fmt.Errorf("%w: state %q", ErrUnsupportedJurisdiction, workState)
	}
	return computeWithholding(tables, grossPay, filingStatus, stateRate,
		tables.CityRate(workState, workCity), priorYTDWages, periodsPerYear)
}

// ComputeWithholdingZeroJurisdiction is the opt-in policy of treating an
// unknown jurisdiction as levying no state or local tax. Federal, Social
// Security, and Medicare still apply.
func ComputeWithholdingZeroJurisdiction(tables *tax.Tables, grossPay float64, filingStatus string, priorYTDWages float64, periodsPerYear int) (Withholding, error) {
	return computeWithholding(tables, grossPay, filingStatus, 0, 0, priorYTDWages, periodsPerYear)
}

func computeWithholding(tables *tax.Tables, grossPay float64, filingStatus string, stateRate, cityRate float64, priorYTDWages float64, periodsPerYear int) (Withholding, error) {
	if grossPay < 0 {
		return Withholding{}, fmt.Errorf("%w: gross pay must not be negative", ErrInvalidInput)
	}
	if priorYTDWages < 0 {
		return Withholding{}, fmt.Errorf("%w: year-to-date wages must not be negative", ErrInvalidInput)
	}
	if periodsPerYear <= 0 {
		return Withholding{}, fmt.Errorf("%w: pay periods per year must be positive", ErrInvalidInput)
	}
	if _, ok := tables.FederalFor(filingStatus); !ok {
		return Withholding{}, fmt.Errorf("%w: unknown filing status %q", ErrInvalidInput, filingStatus)
	}

	// Federal: annualize, run the brackets, de-annualize back to the period.
	annualWages := grossPay * float64(periodsPerYear)
	annualTax, err := tables.AnnualFederalTax(filingStatus, annualWages)
	if err != nil {
		return Withholding{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	federal := annualTax / float64(periodsPerYear)

	// Social Security applies only to the slice of this period's wages that
	// still fits under the annual wage base.
	ssTaxable := tables.SocialSecurityWageBase - priorYTDWages
	if ssTaxable < 0 {
		ssTaxable = 0
	}
	if ssTaxable > grossPay {
		ssTaxable = grossPay
	}
	socialSecurity := ssTaxable * tables.SocialSecurityRate

	medicare := grossPay * tables.MedicareRate

	// The 0.9% surtax hits only the portion of wages above the threshold
	// that falls inside this period, never retroactively.
	surtaxable := priorYTDWages + grossPay - tables.AdditionalMedicareThreshold
	if surtaxable < 0 {
		surtaxable = 0
	}
	if surtaxable > grossPay {
		surtaxable = grossPay
	}
	additionalMedicare := surtaxable * tables.AdditionalMedicareRate

	return Withholding{
		FederalIncomeTax:      Round2(federal),
		SocialSecurityTax:     Round2(socialSecurity),
		MedicareTax:           Round2(medicare),
		AdditionalMedicareTax: Round2(additionalMedicare),
		StateTax:              Round2(grossPay * stateRate),
		LocalTax:              Round2(grossPay * cityRate),
	}, nil
}
