package tax

import (
	"fmt"
	"strings"
)

const (
	FilingSingle          = "single"
	FilingMarriedJoint    = "married_joint"
	FilingMarriedSeparate = "married_separate"
	FilingHeadOfHousehold = "head_of_household"
)

var FilingStatuses = []string{
	FilingSingle,
	FilingMarriedJoint,
	FilingMarriedSeparate,
	FilingHeadOfHousehold,
}

// Bracket covers annual taxable wages up to UpTo at Rate. UpTo of 0 marks the
// top bracket.
type Bracket struct {
	UpTo float64 `json:"upTo"`
	Rate float64 `json:"rate"`
}

type FederalTable struct {
	StandardDeduction float64   `json:"standardDeduction"`
	Brackets          []Bracket `json:"brackets"`
}

// Tables is the read-only withholding reference data for one tax year. It is
// loaded once at startup and shared across concurrent payroll runs; nothing
// in the pipeline mutates it.
type Tables struct {
	Year int `json:"year"`

	Federal map[string]FederalTable `json:"federal"`

	SocialSecurityRate     float64 `json:"socialSecurityRate"`
	SocialSecurityWageBase float64 `json:"socialSecurityWageBase"`

	MedicareRate                float64 `json:"medicareRate"`
	AdditionalMedicareRate      float64 `json:"additionalMedicareRate"`
	AdditionalMedicareThreshold float64 `json:"additionalMedicareThreshold"`

	// StateRates maps a two-letter state code to a flat withholding rate.
	// A present zero entry means the state levies no income tax; an absent
	// state is an unsupported jurisdiction.
	StateRates map[string]float64 `json:"stateRates"`

	// CityRates maps state code -> lowercased city name -> occupational rate.
	CityRates map[string]map[string]float64 `json:"cityRates"`

	GarnishCapPercent             float64 `json:"garnishCapPercent"`
	GarnishCapChildSupportPercent float64 `json:"garnishCapChildSupportPercent"`
}

func (t *Tables) FederalFor(filingStatus string) (FederalTable, bool) {
	table, ok := t.Federal[strings.ToLower(strings.TrimSpace(filingStatus))]
	return table, ok
}

func (t *Tables) StateRate(state string) (float64, bool) {
	rate, ok := t.StateRates[normalizeState(state)]
	return rate, ok
}

func (t *Tables) CityRate(state, city string) float64 {
	cities, ok := t.CityRates[normalizeState(state)]
	if !ok {
		return 0
	}
	return cities[strings.ToLower(strings.TrimSpace(city))]
}

// AnnualFederalTax applies the progressive bracket table for the filing
// status to annualized wages after the standard deduction.
func (t *Tables) AnnualFederalTax(filingStatus string, annualWages float64) (float64, error) {
	table, ok := t.FederalFor(filingStatus)
	if !ok {
		return 0, fmt.Errorf("no federal table for filing status %q", filingStatus)
	}

	taxable := annualWages - table.StandardDeduction
	if taxable <= 0 {
		return 0, nil
	}

	var tax float64
	lower := float64(0)
	for _, bracket := range table.Brackets {
		if bracket.UpTo == 0 || taxable <= bracket.UpTo {
			tax += (taxable - lower) * bracket.Rate
			return tax, nil
		}
		tax += (bracket.UpTo - lower) * bracket.Rate
		lower = bracket.UpTo
	}
	return tax, nil
}

func (t *Tables) Validate() error {
	if len(t.Federal) == 0 {
		return fmt.Errorf("federal bracket tables are empty")
	}
	for _, status := range FilingStatuses {
		table, ok := t.Federal[status]
		if !ok {
			return fmt.Errorf("missing federal table for filing status %q", status)
		}
		if len(table.Brackets) == 0 {
			return fmt.Errorf("federal table for %q has no brackets", status)
		}
		lower := float64(0)
		for i, bracket := range table.Brackets {
			if bracket.Rate < 0 || bracket.Rate > 1 {
				return fmt.Errorf("federal table for %q bracket %d rate out of range", status, i)
			}
			last := i == len(table.Brackets)-1
			if last {
				if bracket.UpTo != 0 {
					return fmt.Errorf("federal table for %q must end with an unbounded bracket", status)
				}
				continue
			}
			if bracket.UpTo <= lower {
				return fmt.Errorf("federal table for %q brackets not increasing at %d", status, i)
			}
			lower = bracket.UpTo
		}
	}
	if t.SocialSecurityRate < 0 || t.SocialSecurityRate > 1 {
		return fmt.Errorf("social security rate out of range")
	}
	if t.SocialSecurityWageBase <= 0 {
		return fmt.Errorf("social security wage base must be positive")
	}
	if t.MedicareRate < 0 || t.MedicareRate > 1 || t.AdditionalMedicareRate < 0 || t.AdditionalMedicareRate > 1 {
		return fmt.Errorf("medicare rate out of range")
	}
	if t.AdditionalMedicareThreshold <= 0 {
		return fmt.Errorf("additional medicare threshold must be positive")
	}
	for state, rate := range t.StateRates {
		if rate < 0 || rate > 1 {
			return fmt.Errorf("state rate for %s out of range", state)
		}
	}
	for state, cities := range t.CityRates {
		for city, rate := range cities {
			if rate < 0 || rate > 1 {
				return fmt.Errorf("city rate for %s/%s out of range", state, city)
			}
		}
	}
	if t.GarnishCapPercent <= 0 || t.GarnishCapPercent > 100 {
		return fmt.Errorf("garnishment cap percent out of range")
	}
	if t.GarnishCapChildSupportPercent < t.GarnishCapPercent || t.GarnishCapChildSupportPercent > 100 {
		return fmt.Errorf("child support garnishment cap percent out of range")
	}
	return nil
}

func normalizeState(state string) string {
	return strings.ToUpper(strings.TrimSpace(state))
}
