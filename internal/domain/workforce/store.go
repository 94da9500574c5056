package workforce

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Store struct {
	DB *pgxpool.Pool
}

func NewStore(db *pgxpool.Pool) *Store {
	return &Store{DB: db}
}

func (s *Store) CreateWorker(ctx context.Context, worker Worker) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO workers (tenant_id, first_name, last_name, email, status)
    VALUES ($1,$2,$3,$4,$5)
    RETURNING id
  `, worker.TenantID, worker.FirstName, worker.LastName, worker.Email, worker.Status).Scan(&id)
	return id, err
}

func (s *Store) GetWorker(ctx context.Context, tenantID, workerID string) (Worker, error) {
	var out Worker
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, first_name, last_name, email, status, created_at
    FROM workers
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, workerID).Scan(&out.ID, &out.TenantID, &out.FirstName, &out.LastName, &out.Email, &out.Status, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Worker{}, ErrWorkerNotFound
	}
	return out, err
}

func (s *Store) ListWorkers(ctx context.Context, tenantID string, limit, offset int) ([]Worker, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, first_name, last_name, email, status, created_at
    FROM workers
    WHERE tenant_id = $1
    ORDER BY last_name, first_name
    LIMIT $2 OFFSET $3
  `, tenantID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Worker
	for rows.Next() {
		var w Worker
		if err := rows.Scan(&w.ID, &w.TenantID, &w.FirstName, &w.LastName, &w.Email, &w.Status, &w.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *Store) SetWorkerStatus(ctx context.Context, tenantID, workerID, status string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE workers SET status = $1 WHERE tenant_id = $2 AND id = $3
  `, status, tenantID, workerID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkerNotFound
	}
	return nil
}

func (s *Store) UpsertRateProfile(ctx context.Context, profile RateProfile) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO pay_rate_profiles (tenant_id, worker_id, hourly_rate, work_state, work_city, filing_status, updated_at)
    VALUES ($1,$2,$3,$4,$5,$6, now())
    ON CONFLICT (tenant_id, worker_id)
    DO UPDATE SET hourly_rate = EXCLUDED.hourly_rate,
                  work_state = EXCLUDED.work_state,
                  work_city = EXCLUDED.work_city,
                  filing_status = EXCLUDED.filing_status,
                  updated_at = now()
    RETURNING id
  `, profile.TenantID, profile.WorkerID, profile.HourlyRate, profile.WorkState, profile.WorkCity, profile.FilingStatus).Scan(&id)
	return id, err
}

func (s *Store) RateProfileForWorker(ctx context.Context, tenantID, workerID string) (RateProfile, error) {
	var out RateProfile
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, worker_id, hourly_rate, work_state, COALESCE(work_city, ''), filing_status, updated_at
    FROM pay_rate_profiles
    WHERE tenant_id = $1 AND worker_id = $2
  `, tenantID, workerID).Scan(&out.ID, &out.TenantID, &out.WorkerID, &out.HourlyRate, &out.WorkState, &out.WorkCity, &out.FilingStatus, &out.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return RateProfile{}, ErrWorkerNotFound
	}
	return out, err
}

func (s *Store) CreateTimesheet(ctx context.Context, sheet Timesheet) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO timesheets (tenant_id, worker_id, period_id, period_start, period_end, regular_hours, overtime_hours, approved)
    VALUES ($1,$2,$3,$4,$5,$6,$7,false)
    RETURNING id
  `, sheet.TenantID, sheet.WorkerID, sheet.PeriodID, sheet.PeriodStart, sheet.PeriodEnd, sheet.RegularHours, sheet.OvertimeHours).Scan(&id)
	return id, err
}

func (s *Store) GetTimesheet(ctx context.Context, tenantID, sheetID string) (Timesheet, error) {
	var out Timesheet
	err := s.DB.QueryRow(ctx, `
    SELECT id, tenant_id, worker_id, period_id, period_start, period_end, regular_hours, overtime_hours, approved, created_at
    FROM timesheets
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, sheetID).Scan(&out.ID, &out.TenantID, &out.WorkerID, &out.PeriodID, &out.PeriodStart,
		&out.PeriodEnd, &out.RegularHours, &out.OvertimeHours, &out.Approved, &out.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Timesheet{}, ErrWorkerNotFound
	}
	return out, err
}

func (s *Store) ListTimesheets(ctx context.Context, tenantID, periodID string) ([]Timesheet, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, worker_id, period_id, period_start, period_end, regular_hours, overtime_hours, approved, created_at
    FROM timesheets
    WHERE tenant_id = $1 AND period_id = $2
    ORDER BY created_at
  `, tenantID, periodID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Timesheet
	for rows.Next() {
		var t Timesheet
		if err := rows.Scan(&t.ID, &t.TenantID, &t.WorkerID, &t.PeriodID, &t.PeriodStart,
			&t.PeriodEnd, &t.RegularHours, &t.OvertimeHours, &t.Approved, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *Store) UpdateTimesheetHours(ctx context.Context, tenantID, sheetID string, regular, overtime float64) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timesheets SET regular_hours = $1, overtime_hours = $2
    WHERE tenant_id = $3 AND id = $4 AND approved = false
  `, regular, overtime, tenantID, sheetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrTimesheetLocked
	}
	return nil
}

func (s *Store) ApproveTimesheet(ctx context.Context, tenantID, sheetID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE timesheets SET approved = true
    WHERE tenant_id = $1 AND id = $2
  `, tenantID, sheetID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkerNotFound
	}
	return nil
}

func (s *Store) CreateOrder(ctx context.Context, order GarnishmentOrder) (string, error) {
	var id string
	err := s.DB.QueryRow(ctx, `
    INSERT INTO garnishment_orders (tenant_id, worker_id, order_type, creditor, cap_type, amount, percent, effective_date, expiry_date, active)
    VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,true)
    RETURNING id
  `, order.TenantID, order.WorkerID, order.Type, order.Creditor, order.CapType,
		order.Amount, order.Percent, order.EffectiveDate, order.ExpiryDate).Scan(&id)
	return id, err
}

func (s *Store) ListOrders(ctx context.Context, tenantID, workerID string) ([]GarnishmentOrder, error) {
	rows, err := s.DB.Query(ctx, `
    SELECT id, tenant_id, worker_id, order_type, creditor, cap_type, amount, COALESCE(percent, 0), effective_date, expiry_date, active, created_at
    FROM garnishment_orders
    WHERE tenant_id = $1 AND worker_id = $2
    ORDER BY effective_date, id
  `, tenantID, workerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []GarnishmentOrder
	for rows.Next() {
		var o GarnishmentOrder
		if err := rows.Scan(&o.ID, &o.TenantID, &o.WorkerID, &o.Type, &o.Creditor, &o.CapType,
			&o.Amount, &o.Percent, &o.EffectiveDate, &o.ExpiryDate, &o.Active, &o.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}

func (s *Store) CancelOrder(ctx context.Context, tenantID, orderID string) error {
	tag, err := s.DB.Exec(ctx, `
    UPDATE garnishment_orders SET active = false WHERE tenant_id = $1 AND id = $2
  `, tenantID, orderID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrOrderNotFound
	}
	return nil
}
