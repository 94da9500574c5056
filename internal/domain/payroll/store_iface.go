package payroll

import (
	"context"
	"time"
)

// StoreAPI is the persistence surface the payroll service depends on.
// Implemented by Store (pgx); tests substitute an in-memory fake.
type StoreAPI interface {
	CreatePeriod(ctx context.Context, tenantID string, start, end time.Time, frequency string) (string, error)
	GetPeriod(ctx context.Context, tenantID, periodID string) (Period, error)
	ListPeriods(ctx context.Context, tenantID string, limit, offset int) ([]Period, error)
	UpdatePeriodStatus(ctx context.Context, tenantID, periodID, status string) error

	ApprovedTimesheets(ctx context.Context, tenantID, periodID string) ([]TimesheetPeriod, error)
	RateProfile(ctx context.Context, tenantID, workerID string) (PayRateProfile, error)
	OrdersForWorker(ctx context.Context, tenantID, workerID string) ([]GarnishmentOrder, error)

	PriorYTDWages(ctx context.Context, tenantID, workerID string, year int, before time.Time) (float64, error)
	HasRecordOnOrAfter(ctx context.Context, tenantID, workerID string, start time.Time) (bool, error)

	DeleteDraftRecords(ctx context.Context, tenantID, periodID string) error
	InsertRecord(ctx context.Context, record PayrollRecord) error
	GetRecord(ctx context.Context, tenantID, recordID string) (PayrollRecord, error)
	GetRecordBySerial(ctx context.Context, serial string) (PayrollRecord, error)
	ListRecordsForPeriod(ctx context.Context, tenantID, periodID string) ([]PayrollRecord, error)
	DraftRecords(ctx context.Context, tenantID, periodID string) ([]PayrollRecord, error)
	MarkRecordIssued(ctx context.Context, tenantID, recordID string) error

	UpsertPaystub(ctx context.Context, stub Paystub) error
	PaystubForRecord(ctx context.Context, tenantID, recordID string) (Paystub, error)
	ListPaystubsForWorker(ctx context.Context, tenantID, workerID string, limit, offset int) ([]Paystub, error)
}
