package payroll

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreatePeriod(ctx context.Context, tenantID string, start, end time.Time, frequency string) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO payroll_periods (tenant_id, start_date, end_date, frequency, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, tenantID, start, end, frequency, PeriodStatusOpen).Scan(&id)
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) GetPeriod(ctx context.Context, tenantID, periodID string) (Period, error) {
	var period Period
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, start_date, end_date, frequency, status, created_at
    FROM payroll_periods
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, periodID).Scan(&period.ID, &period.TenantID, &period.StartDate,
		&period.EndDate, &period.Frequency, &period.Status, &period.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Period{}, ErrPeriodNotFound
	}
	if err != nil {
		return Period{}, err
	}
	return period, nil
}

func (s *Store) ListPeriods(ctx context.Context, tenantID string, limit, offset int) ([]Period, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, start_date, end_date, frequency, status, created_at
    FROM payroll_periods
    WHERE tenant_id = $1
    ORDER BY start_date DESC
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var periods []Period
	for rows.Next() {
		var period Period
		if err := rows.Scan(&period.ID, &period.TenantID, &period.StartDate,
			&period.EndDate, &period.Frequency, &period.Status, &period.CreatedAt); err != nil {
			return nil, err
		}
		periods = append(periods, period)
	}
	return periods, rows.Err()
}

func (s *Store) UpdatePeriodStatus(ctx context.Context, tenantID, periodID, status string) error {
	_, err := s.DB.Exec(ctx, `
    UPDATE payroll_periods SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, periodID)
	return err
}

func (s *Store) ApprovedTimesheets(ctx context.Context, tenantID, periodID string) ([]TimesheetPeriod, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT t.id, t.worker_id, w.first_name || ' ' || w.last_name,
           p.start_date, p.end_date, t.regular_hours, t.overtime_hours
    FROM timesheets t
    JOIN workers w ON t.worker_id = w.id
    JOIN payroll_periods p ON t.period_id = p.id
    WHERE t.tenant_id = $1 AND t.period_id = $2 AND t.approved = true
    ORDER BY w.last_name, w.first_name
  `, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sheets []TimesheetPeriod
	for rows.Next() {
		var sheet TimesheetPeriod
		if err := rows.Scan(&sheet.ID, &sheet.WorkerID, &sheet.WorkerName,
			&sheet.PeriodStart, &sheet.PeriodEnd, &sheet.RegularHours, &sheet.OvertimeHours); err != nil {
			return nil, err
		}
		sheets = append(sheets, sheet)
	}
	return sheets, rows.Err()
}

func (s *Store) RateProfile(ctx context.Context, tenantID, workerID string) (PayRateProfile, error) {
	var profile PayRateProfile
	err := s.DB.QueryRow(ctx, `
    SELECT worker_id, hourly_rate, work_state, COALESCE(work_city, ''), filing_status
    FROM pay_rate_profiles
    WHERE tenant_id = $1 AND worker_id = $2
  `, tenantID, workerID).Scan(&profile.WorkerID, &profile.HourlyRate,
		&profile.WorkState, &profile.WorkCity, &profile.FilingStatus)
	if errors.Is(err, pgx.ErrNoRows) {
		return PayRateProfile{}, fmt.Errorf("%w: worker %s has no pay rate profile", ErrInvalidInput, workerID)
	}
	if err != nil {
		return PayRateProfile{}, err
	}
	return profile, nil
}

func (s *Store) OrdersForWorker(ctx context.Context, tenantID, workerID string) ([]GarnishmentOrder, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, worker_id, order_type, creditor, cap_type, amount, percent,
           effective_date, expiry_date, active
    FROM garnishment_orders
    WHERE tenant_id = $1 AND worker_id = $2
    ORDER BY effective_date, id
  `, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []GarnishmentOrder
	for rows.Next() {
		var order GarnishmentOrder
		if err := rows.Scan(&order.ID, &order.WorkerID, &order.Type, &order.Creditor,
			&order.CapType, &order.Amount, &order.Percent, &order.EffectiveDate,
			&order.ExpiryDate, &order.Active); err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, rows.Err()
}

// PriorYTDWages sums gross wages already computed for the worker in the
// given calendar year, before the period being run.
func (s *Store) PriorYTDWages(ctx context.Context, tenantID, workerID string, year int, before time.Time) (float64, error) {
	var total float64
	err := s.DB.QueryRow(ctx, `
    SELECT COALESCE(SUM(gross_pay), 0)
    FROM payroll_records
    WHERE tenant_id = $1 AND worker_id = $2
      AND date_part('year', period_end) = $3
      AND period_end < $4
  `, tenantID, workerID, year, before).Scan(&total)
	if err != nil {
		return 0, err
	}
	return total, nil
}

func (s *Store) HasRecordOnOrAfter(ctx context.Context, tenantID, workerID string, start time.Time) (bool, error) {
	var count int
	err := s.DB.QueryRow(ctx, `
    SELECT COUNT(1)
    FROM payroll_records
    WHERE tenant_id = $1 AND worker_id = $2 AND period_start >= $3
  `, tenantID, workerID, start).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (s *Store) DeleteDraftRecords(ctx context.Context, tenantID, periodID string) error {
	_, err := s.DB.Exec(ctx, `
    DELETE FROM payroll_records
    WHERE tenant_id = $1 AND period_id = $2 AND status = $3
  `, tenantID, periodID, RecordStatusDraft)
	return err
}

func (s *Store) InsertRecord(ctx context.Context, record PayrollRecord) error {
	breakdown, err := json.Marshal(record.Garnishments)
	if err != nil {
		return err
	}
	_, err = s.DB.Exec(ctx, `
    INSERT INTO payroll_records (
      id, tenant_id, period_id, worker_id, worker_name,
      period_start, period_end,
      hourly_rate, work_state, work_city, filing_status,
      regular_hours, overtime_hours, regular_pay, overtime_pay, gross_pay,
      federal_income_tax, social_security_tax, medicare_tax,
      additional_medicare_tax, state_tax, local_tax, total_mandatory_deductions,
      garnishments_json, total_garnishments, net_pay,
      ytd_wages_before, ytd_wages_after,
      hallmark_serial, status, created_at
    ) VALUES (
      $1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,
      $17,$18,$19,$20,$21,$22,$23,$24,$25,$26,$27,$28,$29,$30,$31
    )
  `, record.ID, record.TenantID, record.PeriodID, record.WorkerID, record.WorkerName,
		record.PeriodStart, record.PeriodEnd,
		record.HourlyRate, record.WorkState, nullIfEmpty(record.WorkCity), record.FilingStatus,
		record.RegularHours, record.OvertimeHours, record.RegularPay, record.OvertimePay, record.GrossPay,
		record.FederalIncomeTax, record.SocialSecurityTax, record.MedicareTax,
		record.AdditionalMedicareTax, record.StateTax, record.LocalTax, record.TotalMandatoryDeductions,
		breakdown, record.TotalGarnishments, record.NetPay,
		record.YTDWagesBefore, record.YTDWagesAfter,
		record.HallmarkSerial, record.Status, record.CreatedAt)
	if isUniqueViolation(err, "hallmark") {
		return fmt.Errorf("%w: %s", ErrHallmarkCollision, record.HallmarkSerial)
	}
	return err
}

const recordColumns = `
      id, tenant_id, period_id, worker_id, worker_name,
      period_start, period_end,
      hourly_rate, work_state, COALESCE(work_city, ''), filing_status,
      regular_hours, overtime_hours, regular_pay, overtime_pay, gross_pay,
      federal_income_tax, social_security_tax, medicare_tax,
      additional_medicare_tax, state_tax, local_tax, total_mandatory_deductions,
      garnishments_json, total_garnishments, net_pay,
      ytd_wages_before, ytd_wages_after,
      hallmark_serial, status, created_at`

func scanRecord(row pgx.Row) (PayrollRecord, error) {
	var record PayrollRecord
	var breakdown []byte
	err := row.Scan(&record.ID, &record.TenantID, &record.PeriodID, &record.WorkerID, &record.WorkerName,
		&record.PeriodStart, &record.PeriodEnd,
		&record.HourlyRate, &record.WorkState, &record.WorkCity, &record.FilingStatus,
		&record.RegularHours, &record.OvertimeHours, &record.RegularPay, &record.OvertimePay, &record.GrossPay,
		&record.FederalIncomeTax, &record.SocialSecurityTax, &record.MedicareTax,
		&record.AdditionalMedicareTax, &record.StateTax, &record.LocalTax, &record.TotalMandatoryDeductions,
		&breakdown, &record.TotalGarnishments, &record.NetPay,
		&record.YTDWagesBefore, &record.YTDWagesAfter,
		&record.HallmarkSerial, &record.Status, &record.CreatedAt)
	if err != nil {
		return PayrollRecord{}, err
	}
	if len(breakdown) > 0 {
		if err := json.Unmarshal(breakdown, &record.Garnishments); err != nil {
			return PayrollRecord{}, err
		}
	}
	return record, nil
}

func (s *Store) GetRecord(ctx context.Context, tenantID, recordID string) (PayrollRecord, error) {
	record, err := scanRecord(s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM payroll_records
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, recordID))
	if errors.Is(err, pgx.ErrNoRows) {
		return PayrollRecord{}, ErrRecordNotFound
	}
	return record, err
}

func (s *Store) GetRecordBySerial(ctx context.Context, serial string) (PayrollRecord, error) {
	record, err := scanRecord(s.DB.QueryRow(ctx, `
    SELECT `+recordColumns+`
    FROM payroll_records
    WHERE hallmark_serial = $1
  `, serial))
	if errors.Is(err, pgx.ErrNoRows) {
		return PayrollRecord{}, ErrRecordNotFound
	}
	return record, err
}

func (s *Store) listRecords(ctx context.Context, tenantID, periodID, status string) ([]PayrollRecord, error) {
	query := `
    SELECT ` + recordColumns + `
    FROM payroll_records
    WHERE tenant_id = $1 AND period_id = $2`
	args := []any{tenantID, periodID}
	if status != "" {
		query += " AND status = $3"
		args = append(args, status)
	}
	query += " ORDER BY worker_name, worker_id"

	rows, err := s.DB.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []PayrollRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *Store) ListRecordsForPeriod(ctx context.Context, tenantID, periodID string) ([]PayrollRecord, error) {
	return s.listRecords(ctx, tenantID, periodID, "")
}

func (s *Store) DraftRecords(ctx context.Context, tenantID, periodID string) ([]PayrollRecord, error) {
	return s.listRecords(ctx, tenantID, periodID, RecordStatusDraft)
}

func (s *Store) MarkRecordIssued(ctx context.Context, tenantID, recordID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE payroll_records SET status = $1
    WHERE tenant_id = $2 AND id = $3 AND status = $4
  `, RecordStatusIssued, tenantID, recordID, RecordStatusDraft)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrRecordNotFound
	}
	return nil
}

func (s *Store) UpsertPaystub(ctx context.Context, stub Paystub) error {
	_, err := s.DB.Exec(ctx, `
    INSERT INTO paystubs (id, tenant_id, record_id, worker_id, file_name, file_url, hallmark_serial, verification_url)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
    ON CONFLICT (record_id)
    DO UPDATE SET file_name = EXCLUDED.file_name, file_url = EXCLUDED.file_url
  `, stub.ID, stub.TenantID, stub.RecordID, stub.WorkerID, stub.FileName,
		stub.FileURL, stub.HallmarkSerial, stub.VerificationURL)
	return err
}

func (s *Store) PaystubForRecord(ctx context.Context, tenantID, recordID string) (Paystub, error) {
	var stub Paystub
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, record_id, worker_id, file_name, file_url, hallmark_serial, verification_url, created_at
    FROM paystubs
    WHERE tenant_id = $1 AND record_id = $2
  `, tenantID, recordID).Scan(&stub.ID, &stub.TenantID, &stub.RecordID, &stub.WorkerID,
		&stub.FileName, &stub.FileURL, &stub.HallmarkSerial, &stub.VerificationURL, &stub.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Paystub{}, ErrRecordNotFound
	}
	if err != nil {
		return Paystub{}, err
	}
	return stub, nil
}

func (s *Store) ListPaystubsForWorker(ctx context.Context, tenantID, workerID string, limit, offset int) ([]Paystub, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT p.id, p.tenant_id, p.record_id, p.worker_id, p.file_name, p.file_url,
           p.hallmark_serial, p.verification_url, p.created_at
    FROM paystubs p
    JOIN payroll_records r ON p.record_id = r.id
    WHERE p.tenant_id = $1 AND p.worker_id = $2 AND r.status = $3
    ORDER BY r.period_end DESC
    LIMIT $4 OFFSET $5
  `, tenantID, workerID, RecordStatusIssued, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stubs []Paystub
	for rows.Next() {
		var stub Paystub
		if err := rows.Scan(&stub.ID, &stub.TenantID, &stub.RecordID, &stub.WorkerID,
			&stub.FileName, &stub.FileURL, &stub.HallmarkSerial, &stub.VerificationURL, &stub.CreatedAt); err != nil {
			return nil, err
		}
		stubs = append(stubs, stub)
	}
	return stubs, rows.Err()
}

func isUniqueViolation(err error, constraintHint string) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	return pgErr.Code == "23505" && strings.Contains(pgErr.ConstraintName, constraintHint)
}

func nullIfEmpty(value string) any {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	return value
}
