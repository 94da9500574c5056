package workforce

import (
	"context"
	"fmt"
	"strings"
)

type Service struct {
	Store *Store
}

func NewService(store *Store) *Service {
	return &Service{Store: store}
}

func (s *Service) CreateWorker(ctx context.Context, worker Worker) (string, error) {
	worker.FirstName = strings.TrimSpace(worker.FirstName)
	worker.LastName = strings.TrimSpace(worker.LastName)
	worker.Email = strings.ToLower(strings.TrimSpace(worker.Email))
	if worker.FirstName == "" || worker.LastName == "" {
		return "", fmt.Errorf("%w: worker name is required", ErrInvalidInput)
	}
	if !strings.Contains(worker.Email, "@") {
		return "", fmt.Errorf("%w: valid email is required", ErrInvalidInput)
	}
	if worker.Status == "" {
		worker.Status = WorkerStatusActive
	}
	return s.Store.CreateWorker(ctx, worker)
}

func (s *Service) UpsertRateProfile(ctx context.Context, profile RateProfile) (string, error) {
	profile.WorkState = strings.ToUpper(strings.TrimSpace(profile.WorkState))
	profile.WorkCity = strings.ToLower(strings.TrimSpace(profile.WorkCity))
	if err := ValidateRateProfile(profile); err != nil {
		return "", err
	}
	if _, err := s.Store.GetWorker(ctx, profile.TenantID, profile.WorkerID); err != nil {
		return "", err
	}
	return s.Store.UpsertRateProfile(ctx, profile)
}

func (s *Service) SubmitTimesheet(ctx context.Context, sheet Timesheet) (string, error) {
	if err := ValidateTimesheet(sheet); err != nil {
		return "", err
	}
	if _, err := s.Store.GetWorker(ctx, sheet.TenantID, sheet.WorkerID); err != nil {
		return "", err
	}
	return s.Store.CreateTimesheet(ctx, sheet)
}

// ApproveTimesheet re-validates at the approval gate: only sheets passing
// the sanity checks become payroll inputs.
func (s *Service) ApproveTimesheet(ctx context.Context, tenantID, sheetID string) error {
	sheet, err := s.Store.GetTimesheet(ctx, tenantID, sheetID)
	if err != nil {
		return err
	}
	if err := ValidateTimesheet(sheet); err != nil {
		return err
	}
	return s.Store.ApproveTimesheet(ctx, tenantID, sheetID)
}

func (s *Service) CreateOrder(ctx context.Context, order GarnishmentOrder) (string, error) {
	if err := ValidateOrder(order); err != nil {
		return "", err
	}
	if _, err := s.Store.GetWorker(ctx, order.TenantID, order.WorkerID); err != nil {
		return "", err
	}
	return s.Store.CreateOrder(ctx, order)
}

func (s *Service) CancelOrder(ctx context.Context, tenantID, orderID string) error {
	return s.Store.CancelOrder(ctx, tenantID, orderID)
}
