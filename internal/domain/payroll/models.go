package payroll

import "time"

// TimesheetPeriod is one worker's approved hours for one pay period.
// Immutable once a payroll run has been issued against it.
type TimesheetPeriod struct {
	ID            string    `json:"id"`
	WorkerID      string    `json:"workerId"`
	WorkerName    string    `json:"workerName,omitempty"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
	RegularHours  float64   `json:"regularHours"`
	OvertimeHours float64   `json:"overtimeHours"`
}

// PayRateProfile is the worker's compensation basis, referenced (not
// duplicated) by each run; the run snapshots its values into the record.
type PayRateProfile struct {
	WorkerID     string  `json:"workerId"`
	HourlyRate   float64 `json:"hourlyRate"`
	WorkState    string  `json:"workState"`
	WorkCity     string  `json:"workCity,omitempty"`
	FilingStatus string  `json:"filingStatus"`
}

// GarnishmentOrder is a court or agency order against a worker. CapType
// selects which cap field is meaningful: flat orders carry a per-period
// dollar amount, percent orders a share of disposable earnings.
type GarnishmentOrder struct {
	ID            string     `json:"id"`
	WorkerID      string     `json:"workerId"`
	Type          string     `json:"type"`
	Creditor      string     `json:"creditor"`
	CapType       string     `json:"capType"`
	Amount        float64    `json:"amount"`
	Percent       float64    `json:"percent,omitempty"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	Active        bool       `json:"active"`
}

// InWindow reports whether the order applies on the given date.
func (o GarnishmentOrder) InWindow(asOf time.Time) bool {
	if !o.Active {
		return false
	}
	if asOf.Before(o.EffectiveDate) {
		return false
	}
	if o.ExpiryDate != nil && asOf.After(*o.ExpiryDate) {
		return false
	}
	return true
}

type WageBreakdown struct {
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	RegularPay    float64 `json:"regularPay"`
	OvertimePay   float64 `json:"overtimePay"`
	GrossPay      float64 `json:"grossPay"`
}

type Withholding struct {
	FederalIncomeTax      float64 `json:"federalIncomeTax"`
	SocialSecurityTax     float64 `json:"socialSecurityTax"`
	MedicareTax           float64 `json:"medicareTax"`
	AdditionalMedicareTax float64 `json:"additionalMedicareTax"`
	StateTax              float64 `json:"stateTax"`
	LocalTax              float64 `json:"localTax"`
}

// Total is the sum of mandatory deductions, already cent-rounded per field.
func (w Withholding) Total() float64 {
	return Round2(w.FederalIncomeTax + w.SocialSecurityTax + w.MedicareTax +
		w.AdditionalMedicareTax + w.StateTax + w.LocalTax)
}

// GarnishmentApplied itemizes one order's withholding on a paystub.
type GarnishmentApplied struct {
	GarnishmentID string  `json:"garnishmentId"`
	Type          string  `json:"type"`
	Creditor      string  `json:"creditor"`
	AmountApplied float64 `json:"amountApplied"`
}

type GarnishmentResult struct {
	PerOrder          []GarnishmentApplied `json:"perOrder"`
	TotalGarnishments float64              `json:"totalGarnishments"`
	NetPay            float64              `json:"netPay"`
}

// PayrollRecord is the immutable output of one computation for one worker
// for one period. All inputs are snapshotted alongside the outputs so the
// record re-renders without consulting live profiles. Corrections create a
// new record; issued records are never edited.
type PayrollRecord struct {
	ID          string    `json:"id"`
	TenantID    string    `json:"tenantId"`
	WorkerID    string    `json:"workerId"`
	WorkerName  string    `json:"workerName"`
	PeriodID    string    `json:"periodId"`
	PeriodStart time.Time `json:"periodStart"`
	PeriodEnd   time.Time `json:"periodEnd"`

	HourlyRate   float64 `json:"hourlyRate"`
	WorkState    string  `json:"workState"`
	WorkCity     string  `json:"workCity,omitempty"`
	FilingStatus string  `json:"filingStatus"`

	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
	RegularPay    float64 `json:"regularPay"`
	OvertimePay   float64 `json:"overtimePay"`
	GrossPay      float64 `json:"grossPay"`

	FederalIncomeTax         float64 `json:"federalIncomeTax"`
	SocialSecurityTax        float64 `json:"socialSecurityTax"`
	MedicareTax              float64 `json:"medicareTax"`
	AdditionalMedicareTax    float64 `json:"additionalMedicareTax"`
	StateTax                 float64 `json:"stateTax"`
	LocalTax                 float64 `json:"localTax"`
	TotalMandatoryDeductions float64 `json:"totalMandatoryDeductions"`

	Garnishments      []GarnishmentApplied `json:"garnishments"`
	TotalGarnishments float64              `json:"totalGarnishments"`

	NetPay float64 `json:"netPay"`

	YTDWagesBefore float64 `json:"ytdWagesBefore"`
	YTDWagesAfter  float64 `json:"ytdWagesAfter"`

	HallmarkSerial string    `json:"hallmarkAssetNumber"`
	Status         string    `json:"status"`
	CreatedAt      time.Time `json:"createdAt"`
}

// Paystub is the stored document artifact derived 1:1 from an issued record.
type Paystub struct {
	ID              string    `json:"id"`
	RecordID        string    `json:"recordId"`
	TenantID        string    `json:"tenantId"`
	WorkerID        string    `json:"workerId"`
	FileName        string    `json:"fileName"`
	FileURL         string    `json:"fileUrl"`
	HallmarkSerial  string    `json:"hallmarkAssetNumber"`
	VerificationURL string    `json:"verificationUrl"`
	CreatedAt       time.Time `json:"createdAt"`
}

// Period groups one tenant's payroll run for a date range.
type Period struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	StartDate time.Time `json:"startDate"`
	EndDate   time.Time `json:"endDate"`
	Frequency string    `json:"frequency"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}
