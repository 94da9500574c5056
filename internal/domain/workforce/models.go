package workforce

import "time"

const (
	WorkerStatusActive   = "active"
	WorkerStatusInactive = "inactive"

	// A timesheet day can never exceed the wall clock.
	MaxHoursPerDay = 24.0
)

type Worker struct {
	ID        string    `json:"id"`
	TenantID  string    `json:"tenantId"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func (w Worker) FullName() string {
	return w.FirstName + " " + w.LastName
}

// RateProfile is one worker's current compensation basis. One row per
// worker; updates replace it, while issued payroll records keep their own
// snapshot of the values in force when they were computed.
type RateProfile struct {
	ID           string    `json:"id"`
	TenantID     string    `json:"tenantId"`
	WorkerID     string    `json:"workerId"`
	HourlyRate   float64   `json:"hourlyRate"`
	WorkState    string    `json:"workState"`
	WorkCity     string    `json:"workCity,omitempty"`
	FilingStatus string    `json:"filingStatus"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

type Timesheet struct {
	ID            string    `json:"id"`
	TenantID      string    `json:"tenantId"`
	WorkerID      string    `json:"workerId"`
	PeriodID      string    `json:"periodId"`
	PeriodStart   time.Time `json:"periodStart"`
	PeriodEnd     time.Time `json:"periodEnd"`
	RegularHours  float64   `json:"regularHours"`
	OvertimeHours float64   `json:"overtimeHours"`
	Approved      bool      `json:"approved"`
	CreatedAt     time.Time `json:"createdAt"`
}

type GarnishmentOrder struct {
	ID            string     `json:"id"`
	TenantID      string     `json:"tenantId"`
	WorkerID      string     `json:"workerId"`
	Type          string     `json:"type"`
	Creditor      string     `json:"creditor"`
	CapType       string     `json:"capType"`
	Amount        float64    `json:"amount"`
	Percent       float64    `json:"percent,omitempty"`
	EffectiveDate time.Time  `json:"effectiveDate"`
	ExpiryDate    *time.Time `json:"expiryDate,omitempty"`
	Active        bool       `json:"active"`
	CreatedAt     time.Time  `json:"createdAt"`
}
