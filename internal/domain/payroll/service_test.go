package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"orbit/internal/domain/tax"
)

// fakeStore mirrors the pgx store's semantics in memory for service tests.
type fakeStore struct {
	mu       sync.Mutex
	periods  map[string]Period
	sheets   map[string][]TimesheetPeriod
	rates    map[string]PayRateProfile
	orders   map[string][]GarnishmentOrder
	records  map[string]PayrollRecord
	paystubs map[string]Paystub
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		periods:  make(map[string]Period),
		sheets:   make(map[string][]TimesheetPeriod),
		rates:    make(map[string]PayRateProfile),
		orders:   make(map[string][]GarnishmentOrder),
		records:  make(map[string]PayrollRecord),
		paystubs: make(map[string]Paystub),
	}
}

func (f *fakeStore) CreatePeriod(_ context.Context, tenantID string, start, end time.Time, frequency string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := fmt.Sprintf("period-%d", len(f.periods)+1)
	f.periods[id] = Period{
		ID: id, TenantID: tenantID, StartDate: start, EndDate: end,
		Frequency: frequency, Status: PeriodStatusOpen,
	}
	return id, nil
}

func (f *fakeStore) GetPeriod(_ context.Context, tenantID, periodID string) (Period, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	period, ok := f.periods[periodID]
	if !ok || period.TenantID != tenantID {
		return Period{}, ErrPeriodNotFound
	}
	return period, nil
}

func (f *fakeStore) ListPeriods(_ context.Context, tenantID string, _, _ int) ([]Period, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Period
	for _, period := range f.periods {
		if period.TenantID == tenantID {
			out = append(out, period)
		}
	}
	return out, nil
}

func (f *fakeStore) UpdatePeriodStatus(_ context.Context, tenantID, periodID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	period, ok := f.periods[periodID]
	if !ok || period.TenantID != tenantID {
		return ErrPeriodNotFound
	}
	period.Status = status
	f.periods[periodID] = period
	return nil
}

func (f *fakeStore) ApprovedTimesheets(_ context.Context, _, periodID string) ([]TimesheetPeriod, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]TimesheetPeriod(nil), f.sheets[periodID]...), nil
}

func (f *fakeStore) RateProfile(_ context.Context, _, workerID string) (PayRateProfile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	rate, ok := f.rates[workerID]
	if !ok {
		return PayRateProfile{}, fmt.Errorf("%w: no rate profile for %s", ErrInvalidInput, workerID)
	}
	return rate, nil
}

func (f *fakeStore) OrdersForWorker(_ context.Context, _, workerID string) ([]GarnishmentOrder, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]GarnishmentOrder(nil), f.orders[workerID]...), nil
}

func (f *fakeStore) PriorYTDWages(_ context.Context, tenantID, workerID string, year int, before time.Time) (float64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var total float64
	for _, record := range f.records {
		if record.TenantID == tenantID && record.WorkerID == workerID &&
			record.PeriodEnd.Year() == year && record.PeriodEnd.Before(before) {
			total += record.GrossPay
		}
	}
	return total, nil
}

func (f *fakeStore) HasRecordOnOrAfter(_ context.Context, tenantID, workerID string, start time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.TenantID == tenantID && record.WorkerID == workerID &&
			!record.PeriodStart.Before(start) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) DeleteDraftRecords(_ context.Context, tenantID, periodID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, record := range f.records {
		if record.TenantID == tenantID && record.PeriodID == periodID && record.Status == RecordStatusDraft {
			delete(f.records, id)
		}
	}
	return nil
}

func (f *fakeStore) InsertRecord(_ context.Context, record PayrollRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.records {
		if existing.HallmarkSerial == record.HallmarkSerial {
			return ErrHallmarkCollision
		}
	}
	f.records[record.ID] = record
	return nil
}

func (f *fakeStore) GetRecord(_ context.Context, tenantID, recordID string) (PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordID]
	if !ok || record.TenantID != tenantID {
		return PayrollRecord{}, ErrRecordNotFound
	}
	return record, nil
}

func (f *fakeStore) GetRecordBySerial(_ context.Context, serial string) (PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, record := range f.records {
		if record.HallmarkSerial == serial {
			return record, nil
		}
	}
	return PayrollRecord{}, ErrRecordNotFound
}

func (f *fakeStore) ListRecordsForPeriod(_ context.Context, tenantID, periodID string) ([]PayrollRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []PayrollRecord
	for _, record := range f.records {
		if record.TenantID == tenantID && record.PeriodID == periodID {
			out = append(out, record)
		}
	}
	return out, nil
}

func (f *fakeStore) DraftRecords(_ context.Context, tenantID, periodID string) ([]PayrollRecord, error) {
	records, _ := f.ListRecordsForPeriod(nil, tenantID, periodID)
	var drafts []PayrollRecord
	for _, record := range records {
		if record.Status == RecordStatusDraft {
			drafts = append(drafts, record)
		}
	}
	return drafts, nil
}

func (f *fakeStore) MarkRecordIssued(_ context.Context, tenantID, recordID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	record, ok := f.records[recordID]
	if !ok || record.TenantID != tenantID || record.Status != RecordStatusDraft {
		return ErrRecordNotFound
	}
	record.Status = RecordStatusIssued
	f.records[recordID] = record
	return nil
}

func (f *fakeStore) UpsertPaystub(_ context.Context, stub Paystub) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if existing, ok := f.paystubs[stub.RecordID]; ok {
		stub.ID = existing.ID
	}
	f.paystubs[stub.RecordID] = stub
	return nil
}

func (f *fakeStore) PaystubForRecord(_ context.Context, tenantID, recordID string) (Paystub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stub, ok := f.paystubs[recordID]
	if !ok || stub.TenantID != tenantID {
		return Paystub{}, ErrRecordNotFound
	}
	return stub, nil
}

func (f *fakeStore) ListPaystubsForWorker(_ context.Context, tenantID, workerID string, _, _ int) ([]Paystub, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []Paystub
	for _, stub := range f.paystubs {
		if stub.TenantID == tenantID && stub.WorkerID == workerID {
			out = append(out, stub)
		}
	}
	return out, nil
}

// flakyStorage fails the first n writes with a transient persistence error.
type flakyStorage struct {
	inner    Storage
	failures int
	writes   int
}

func (s *flakyStorage) Write(ctx context.Context, tenantID, fileName string, data []byte) (string, error) {
	s.writes++
	if s.writes <= s.failures {
		return "", fmt.Errorf("%w: simulated outage", ErrPersistence)
	}
	return s.inner.Write(ctx, tenantID, fileName, data)
}

func (s *flakyStorage) Read(ctx context.Context, tenantID, fileName string) ([]byte, error) {
	return s.inner.Read(ctx, tenantID, fileName)
}

const testTenant = "tenant-1"

func seedPeriod(t *testing.T, store *fakeStore, start, end time.Time, workers ...string) string {
	t.Helper()
	periodID, err := store.CreatePeriod(context.Background(), testTenant, start, end, FrequencyWeekly)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, workerID := range workers {
		store.sheets[periodID] = append(store.sheets[periodID], TimesheetPeriod{
			ID:           "ts-" + workerID + "-" + periodID,
			WorkerID:     workerID,
			WorkerName:   "Worker " + workerID,
			PeriodStart:  start,
			PeriodEnd:    end,
			RegularHours: 40,
		})
		if _, ok := store.rates[workerID]; !ok {
			store.rates[workerID] = PayRateProfile{
				WorkerID:     workerID,
				HourlyRate:   20,
				WorkState:    "TN",
				FilingStatus: tax.FilingSingle,
			}
		}
	}
	return periodID
}

func newTestService(t *testing.T, store *fakeStore, storage Storage) *Service {
	t.Helper()
	if storage == nil {
		storage = NewDiskStorage(t.TempDir(), nil)
	}
	return NewService(store, tax.Default(), NewEmitter("https://orbit.example.com"), storage, ServiceOptions{
		PersistBackoff: time.Millisecond,
	})
}

var (
	week1Start = time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC)
	week1End   = time.Date(2025, 3, 9, 0, 0, 0, 0, time.UTC)
	week2Start = time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)
	week2End   = time.Date(2025, 3, 16, 0, 0, 0, 0, time.UTC)
)

func TestRunPeriodComputesDrafts(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1", "w-2", "w-3")
	service := newTestService(t, store, nil)

	summary, err := service.RunPeriod(context.Background(), testTenant, periodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Computed != 3 || len(summary.Failures) != 0 {
		t.Fatalf("expected 3 computed, got %+v", summary)
	}

	drafts, _ := store.DraftRecords(nil, testTenant, periodID)
	if len(drafts) != 3 {
		t.Fatalf("expected 3 draft records, got %d", len(drafts))
	}
	for _, record := range drafts {
		if record.GrossPay != 800 || record.Status != RecordStatusDraft {
			t.Fatalf("unexpected record %+v", record)
		}
		if record.HallmarkSerial != HallmarkSerial(testTenant, record.ID) {
			t.Fatal("hallmark serial not derived from tenant and record id")
		}
	}

	period, _ := store.GetPeriod(nil, testTenant, periodID)
	if period.Status != PeriodStatusComputed {
		t.Fatalf("expected computed period, got %s", period.Status)
	}
}

func TestRunPeriodIsolatesWorkerFailures(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1", "w-2")
	bad := store.rates["w-2"]
	bad.HourlyRate = -5
	store.rates["w-2"] = bad
	service := newTestService(t, store, nil)

	summary, err := service.RunPeriod(context.Background(), testTenant, periodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Computed != 1 {
		t.Fatalf("expected 1 computed, got %d", summary.Computed)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].WorkerID != "w-2" {
		t.Fatalf("expected w-2 failure, got %+v", summary.Failures)
	}

	drafts, _ := store.DraftRecords(nil, testTenant, periodID)
	if len(drafts) != 1 || drafts[0].WorkerID != "w-1" {
		t.Fatal("failed worker must not leave a partial record")
	}
}

func TestRunPeriodReplacesDrafts(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, _ := store.DraftRecords(nil, testTenant, periodID)

	// Corrected hours, same period: the re-run replaces the draft.
	store.sheets[periodID][0].OvertimeHours = 5
	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := store.DraftRecords(nil, testTenant, periodID)

	if len(second) != 1 {
		t.Fatalf("expected 1 draft after re-run, got %d", len(second))
	}
	if second[0].ID == first[0].ID {
		t.Fatal("re-run must mint a new record")
	}
	if second[0].GrossPay != 950 {
		t.Fatalf("expected corrected gross 950, got %v", second[0].GrossPay)
	}
}

func TestRunPeriodYTDAcrossPeriods(t *testing.T) {
	store := newFakeStore()
	period1 := seedPeriod(t, store, week1Start, week1End, "w-1")
	period2 := seedPeriod(t, store, week2Start, week2End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, period1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.RunPeriod(ctx, testTenant, period2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	drafts, _ := store.DraftRecords(nil, testTenant, period2)
	if len(drafts) != 1 {
		t.Fatalf("expected 1 draft, got %d", len(drafts))
	}
	if drafts[0].YTDWagesBefore != 800 || drafts[0].YTDWagesAfter != 1600 {
		t.Fatalf("unexpected YTD fold: before=%v after=%v",
			drafts[0].YTDWagesBefore, drafts[0].YTDWagesAfter)
	}
}

func TestRunPeriodOutOfOrderRejected(t *testing.T) {
	store := newFakeStore()
	period1 := seedPeriod(t, store, week1Start, week1End, "w-1")
	period2 := seedPeriod(t, store, week2Start, week2End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, period2); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := service.RunPeriod(ctx, testTenant, period1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(summary.Failures) != 1 || summary.Failures[0].Reason != ErrOutOfOrderPeriod.Error() {
		t.Fatalf("expected out-of-order failure, got %+v", summary)
	}
}

func TestRunPeriodRefusesIssuedPeriod(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.IssuePeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.RunPeriod(ctx, testTenant, periodID); !errors.Is(err, ErrPeriodIssued) {
		t.Fatalf("expected ErrPeriodIssued, got %v", err)
	}
}

func TestIssuePeriodWritesDocumentsAndFlipsStatus(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1", "w-2")
	storage := NewDiskStorage(t.TempDir(), nil)
	service := newTestService(t, store, storage)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := service.IssuePeriod(ctx, testTenant, periodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Issued != 2 || len(summary.Failures) != 0 {
		t.Fatalf("expected 2 issued, got %+v", summary)
	}

	records, _ := store.ListRecordsForPeriod(nil, testTenant, periodID)
	for _, record := range records {
		if record.Status != RecordStatusIssued {
			t.Fatalf("record %s still %s", record.ID, record.Status)
		}
		stub, err := store.PaystubForRecord(nil, testTenant, record.ID)
		if err != nil {
			t.Fatalf("no paystub for %s: %v", record.ID, err)
		}
		data, err := storage.Read(ctx, testTenant, stub.FileName)
		if err != nil || len(data) == 0 {
			t.Fatalf("paystub document unreadable: %v", err)
		}
	}

	period, _ := store.GetPeriod(nil, testTenant, periodID)
	if period.Status != PeriodStatusIssued {
		t.Fatalf("expected issued period, got %s", period.Status)
	}
}

func TestIssuePeriodRetriesTransientWrites(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	storage := &flakyStorage{inner: NewDiskStorage(t.TempDir(), nil), failures: 2}

	var retries int
	service := NewService(store, tax.Default(), NewEmitter("https://orbit.example.com"), storage, ServiceOptions{
		PersistBackoff:  time.Millisecond,
		OnDocumentRetry: func() { retries++ },
	})
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := service.IssuePeriod(ctx, testTenant, periodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Issued != 1 {
		t.Fatalf("expected recovery after retries, got %+v", summary)
	}
	if storage.writes != 3 {
		t.Fatalf("expected 3 write attempts, got %d", storage.writes)
	}
	if retries != 2 {
		t.Fatalf("expected the retry hook to fire twice, got %d", retries)
	}
}

func TestIssuePeriodLeavesDraftOnPersistentFailure(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	storage := &flakyStorage{inner: NewDiskStorage(t.TempDir(), nil), failures: 10}
	service := newTestService(t, store, storage)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	summary, err := service.IssuePeriod(ctx, testTenant, periodID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if summary.Issued != 0 || len(summary.Failures) != 1 {
		t.Fatalf("expected a reported failure, got %+v", summary)
	}

	// No document write, no status flip.
	drafts, _ := store.DraftRecords(nil, testTenant, periodID)
	if len(drafts) != 1 {
		t.Fatal("record must stay draft when the document never persisted")
	}
	period, _ := store.GetPeriod(nil, testTenant, periodID)
	if period.Status != PeriodStatusComputed {
		t.Fatalf("period must not issue with failures, got %s", period.Status)
	}
}

func TestReissueDocumentIsIdempotent(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := service.IssuePeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	records, _ := store.ListRecordsForPeriod(nil, testTenant, periodID)
	recordID := records[0].ID
	original, _ := store.PaystubForRecord(nil, testTenant, recordID)

	stub, err := service.ReissueDocument(ctx, testTenant, recordID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if stub.HallmarkSerial != original.HallmarkSerial {
		t.Fatal("re-emission minted a different hallmark serial")
	}
	if stub.FileName != original.FileName {
		t.Fatal("re-emission changed the document file name")
	}
}

func TestVerifyBySerialIssuedOnly(t *testing.T) {
	store := newFakeStore()
	periodID := seedPeriod(t, store, week1Start, week1End, "w-1")
	service := newTestService(t, store, nil)
	ctx := context.Background()

	if _, err := service.RunPeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	drafts, _ := store.DraftRecords(nil, testTenant, periodID)
	serial := drafts[0].HallmarkSerial

	if _, err := service.VerifyBySerial(ctx, serial); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("draft record must not verify, got %v", err)
	}

	if _, err := service.IssuePeriod(ctx, testTenant, periodID); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	record, err := service.VerifyBySerial(ctx, serial)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if record.NetPay == 0 || record.Status != RecordStatusIssued {
		t.Fatalf("unexpected verified record %+v", record)
	}
	if _, err := service.VerifyBySerial(ctx, "ORB-NOPE-NOPE-NOPE-NOPE"); !errors.Is(err, ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}
