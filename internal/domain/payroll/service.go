package payroll

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"orbit/internal/domain/tax"
)

// ServiceOptions tune run behavior; zero values fall back to sane defaults.
type ServiceOptions struct {
	// RunParallelism bounds concurrent worker computations in one run.
	RunParallelism int
	// ZeroUnknownJurisdiction selects the explicit zero-state-tax policy
	// instead of rejecting runs for unknown work states.
	ZeroUnknownJurisdiction bool
	// PersistRetries and PersistBackoff bound document-write retries.
	// Only transient persistence failures are retried.
	PersistRetries int
	PersistBackoff time.Duration
	// OnDocumentRetry is invoked once per retried write, for counters.
	OnDocumentRetry func()
}

// Service runs the payroll pipeline against the store. Workers compute
// concurrently; one worker's periods are strictly sequential (per-worker
// lock plus an out-of-order guard) because the wage-base caps fold over
// year-to-date wages.
type Service struct {
	store   StoreAPI
	tables  *tax.Tables
	emitter *Emitter
	storage Storage
	opts    ServiceOptions

	locks sync.Map // tenantID+workerID -> *sync.Mutex
}

func NewService(store StoreAPI, tables *tax.Tables, emitter *Emitter, storage Storage, opts ServiceOptions) *Service {
	if opts.RunParallelism <= 0 {
		opts.RunParallelism = 4
	}
	if opts.PersistRetries <= 0 {
		opts.PersistRetries = 3
	}
	if opts.PersistBackoff <= 0 {
		opts.PersistBackoff = 200 * time.Millisecond
	}
	return &Service{store: store, tables: tables, emitter: emitter, storage: storage, opts: opts}
}

type WorkerFailure struct {
	WorkerID string `json:"workerId"`
	Reason   string `json:"reason"`
}

type RunSummary struct {
	PeriodID string          `json:"periodId"`
	Computed int             `json:"computed"`
	Failures []WorkerFailure `json:"failures,omitempty"`
}

type IssueSummary struct {
	PeriodID string          `json:"periodId"`
	Issued   int             `json:"issued"`
	Failures []WorkerFailure `json:"failures,omitempty"`
}

func (s *Service) workerLock(tenantID, workerID string) *sync.Mutex {
	lock, _ := s.locks.LoadOrStore(tenantID+"/"+workerID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// RunPeriod computes draft records for every approved timesheet in the
// period. A failed worker never produces a partial record; other workers
// proceed and the failure is reported in the summary.
func (s *Service) RunPeriod(ctx context.Context, tenantID, periodID string) (RunSummary, error) {
	period, err := s.store.GetPeriod(ctx, tenantID, periodID)
	if err != nil {
		return RunSummary{}, err
	}
	if period.Status == PeriodStatusIssued {
		return RunSummary{}, ErrPeriodIssued
	}
	periodsPerYear := PeriodsPerYear(period.Frequency)
	if periodsPerYear == 0 {
		return RunSummary{}, fmt.Errorf("%w: unknown pay frequency %q", ErrInvalidInput, period.Frequency)
	}

	sheets, err := s.store.ApprovedTimesheets(ctx, tenantID, periodID)
	if err != nil {
		return RunSummary{}, err
	}

	// Recomputing a period replaces its drafts; issued records are final.
	if err := s.store.DeleteDraftRecords(ctx, tenantID, periodID); err != nil {
		return RunSummary{}, err
	}

	summary := RunSummary{PeriodID: periodID}
	var mu sync.Mutex

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(s.opts.RunParallelism)

	for _, sheet := range sheets {
		sheet := sheet
		group.Go(func() error {
			err := s.runWorker(groupCtx, tenantID, period, sheet, periodsPerYear)

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// Hallmark collisions abort the whole run: they mean
				// broken serial derivation, not bad worker data.
				if errors.Is(err, ErrHallmarkCollision) {
					return err
				}
				summary.Failures = append(summary.Failures, WorkerFailure{
					WorkerID: sheet.WorkerID,
					Reason:   err.Error(),
				})
				return nil
			}
			summary.Computed++
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return RunSummary{}, err
	}
	sort.Slice(summary.Failures, func(i, j int) bool {
		return summary.Failures[i].WorkerID < summary.Failures[j].WorkerID
	})

	if err := s.store.UpdatePeriodStatus(ctx, tenantID, periodID, PeriodStatusComputed); err != nil {
		return RunSummary{}, err
	}
	return summary, nil
}

func (s *Service) runWorker(ctx context.Context, tenantID string, period Period, sheet TimesheetPeriod, periodsPerYear int) error {
	lock := s.workerLock(tenantID, sheet.WorkerID)
	lock.Lock()
	defer lock.Unlock()

	// YTD wages fold forward only; a record for a later period means this
	// one is arriving out of order.
	later, err := s.store.HasRecordOnOrAfter(ctx, tenantID, sheet.WorkerID, period.StartDate)
	if err != nil {
		return err
	}
	if later {
		return ErrOutOfOrderPeriod
	}

	priorYTD, err := s.store.PriorYTDWages(ctx, tenantID, sheet.WorkerID, period.EndDate.Year(), period.StartDate)
	if err != nil {
		return err
	}
	rate, err := s.store.RateProfile(ctx, tenantID, sheet.WorkerID)
	if err != nil {
		return err
	}
	orders, err := s.store.OrdersForWorker(ctx, tenantID, sheet.WorkerID)
	if err != nil {
		return err
	}

	record, err := Compute(s.tables, Inputs{
		Timesheet:               sheet,
		Rate:                    rate,
		Orders:                  orders,
		PriorYTDWages:           priorYTD,
		PeriodsPerYear:          periodsPerYear,
		ZeroUnknownJurisdiction: s.opts.ZeroUnknownJurisdiction,
	})
	if err != nil {
		return err
	}

	record.ID = uuid.NewString()
	record.TenantID = tenantID
	record.PeriodID = period.ID
	record.HallmarkSerial = HallmarkSerial(tenantID, record.ID)
	record.CreatedAt = time.Now().UTC().Truncate(time.Second)

	return s.store.InsertRecord(ctx, record)
}

// IssuePeriod emits paystub documents for the period's draft records.
// Document persistence is the commit point: a record flips draft -> issued
// only after its PDF write succeeds.
func (s *Service) IssuePeriod(ctx context.Context, tenantID, periodID string) (IssueSummary, error) {
	period, err := s.store.GetPeriod(ctx, tenantID, periodID)
	if err != nil {
		return IssueSummary{}, err
	}
	if period.Status == PeriodStatusOpen {
		return IssueSummary{}, fmt.Errorf("%w: period has not been computed", ErrInvalidInput)
	}

	drafts, err := s.store.DraftRecords(ctx, tenantID, periodID)
	if err != nil {
		return IssueSummary{}, err
	}

	summary := IssueSummary{PeriodID: periodID}
	for _, record := range drafts {
		if err := s.issueRecord(ctx, record); err != nil {
			summary.Failures = append(summary.Failures, WorkerFailure{
				WorkerID: record.WorkerID,
				Reason:   err.Error(),
			})
			continue
		}
		summary.Issued++
	}

	if len(summary.Failures) == 0 {
		if err := s.store.UpdatePeriodStatus(ctx, tenantID, periodID, PeriodStatusIssued); err != nil {
			return IssueSummary{}, err
		}
	}
	return summary, nil
}

func (s *Service) issueRecord(ctx context.Context, record PayrollRecord) error {
	document, err := s.emitter.Emit(record)
	if err != nil {
		return err
	}

	fileURL, err := s.writeWithRetry(ctx, record.TenantID, document)
	if err != nil {
		return err
	}

	stub := Paystub{
		ID:              uuid.NewString(),
		RecordID:        record.ID,
		TenantID:        record.TenantID,
		WorkerID:        record.WorkerID,
		FileName:        document.FileName,
		FileURL:         fileURL,
		HallmarkSerial:  document.HallmarkSerial,
		VerificationURL: document.VerificationURL,
	}
	if err := s.store.UpsertPaystub(ctx, stub); err != nil {
		return err
	}
	return s.store.MarkRecordIssued(ctx, record.TenantID, record.ID)
}

// ReissueDocument re-emits a record's paystub without recomputing figures.
// Safe to repeat: rendering is deterministic and keyed by record id.
func (s *Service) ReissueDocument(ctx context.Context, tenantID, recordID string) (Paystub, error) {
	record, err := s.store.GetRecord(ctx, tenantID, recordID)
	if err != nil {
		return Paystub{}, err
	}
	if err := s.issueRecord(ctx, record); err != nil && !errors.Is(err, ErrRecordNotFound) {
		// ErrRecordNotFound from MarkRecordIssued means the record was
		// already issued; re-emitting its document is still valid.
		return Paystub{}, err
	}
	return s.store.PaystubForRecord(ctx, tenantID, recordID)
}

func (s *Service) writeWithRetry(ctx context.Context, tenantID string, document Document) (string, error) {
	var lastErr error
	backoff := s.opts.PersistBackoff
	for attempt := 0; attempt < s.opts.PersistRetries; attempt++ {
		if attempt > 0 {
			slog.Warn("paystub write retry", "tenantId", tenantID, "file", document.FileName, "attempt", attempt)
			if s.opts.OnDocumentRetry != nil {
				s.opts.OnDocumentRetry()
			}
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("%w: %v", ErrPersistence, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		fileURL, err := s.storage.Write(ctx, tenantID, document.FileName, document.PDF)
		if err == nil {
			return fileURL, nil
		}
		if !errors.Is(err, ErrPersistence) {
			return "", err
		}
		lastErr = err
	}
	return "", lastErr
}

// VerifyBySerial resolves a hallmark serial to the issued figures a public
// verification page renders. Draft records are not visible.
func (s *Service) VerifyBySerial(ctx context.Context, serial string) (PayrollRecord, error) {
	record, err := s.store.GetRecordBySerial(ctx, serial)
	if err != nil {
		return PayrollRecord{}, err
	}
	if record.Status != RecordStatusIssued {
		return PayrollRecord{}, ErrRecordNotFound
	}
	return record, nil
}
