package payrollhandler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orbit/internal/domain/audit"
	"orbit/internal/domain/auth"
	"orbit/internal/domain/payroll"
	"orbit/internal/platform/jobs"
	"orbit/internal/platform/metrics"
	"orbit/internal/transport/http/api"
	"orbit/internal/transport/http/middleware"
	"orbit/internal/transport/http/shared"
)

type Handler struct {
	Service *payroll.Service
	Store   payroll.StoreAPI
	Storage payroll.Storage
	Jobs    *jobs.Service
	Metrics *metrics.Collector
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *payroll.Service, store payroll.StoreAPI, storage payroll.Storage,
	runner *jobs.Service, collector *metrics.Collector, auditor *audit.Service,
	perms middleware.PermissionStore) *Handler {
	return &Handler{
		Service: service,
		Store:   store,
		Storage: storage,
		Jobs:    runner,
		Metrics: collector,
		Audit:   auditor,
		Perms:   perms,
	}
}

func (h *Handler) require(permission string) func(http.Handler) http.Handler {
	return middleware.RequirePermission(permission, h.Perms)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.require(auth.PermPayrollRun)).Post("/payroll/periods", h.HandleCreatePeriod)
	r.With(h.require(auth.PermPayrollRead)).Get("/payroll/periods", h.HandleListPeriods)
	r.With(h.require(auth.PermPayrollRead)).Get("/payroll/periods/{periodID}", h.HandleGetPeriod)
	r.With(h.require(auth.PermPayrollRun)).Post("/payroll/periods/{periodID}/run", h.HandleRunPeriod)
	r.With(h.require(auth.PermPayrollIssue)).Post("/payroll/periods/{periodID}/issue", h.HandleIssuePeriod)
	r.With(h.require(auth.PermPayrollRead)).Get("/payroll/periods/{periodID}/records", h.HandleListRecords)
	r.With(h.require(auth.PermPayrollIssue)).Post("/payroll/records/{recordID}/reissue", h.HandleReissueDocument)

	r.With(h.require(auth.PermPaystubsRead)).Get("/payroll/workers/{workerID}/paystubs", h.HandleListPaystubs)
	r.With(h.require(auth.PermPaystubsRead)).Get("/payroll/paystubs/{recordID}/download", h.HandleDownloadPaystub)
}

type createPeriodRequest struct {
	StartDate string `json:"startDate"`
	EndDate   string `json:"endDate"`
	Frequency string `json:"frequency"`
}

func (h *Handler) HandleCreatePeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createPeriodRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	start, _ := v.Date("startDate", payload.StartDate)
	end, _ := v.Date("endDate", payload.EndDate)
	v.DateOrder("startDate", start, "endDate", end)
	if !validFrequency(payload.Frequency) {
		v.Add("frequency", "must be weekly, biweekly, semimonthly or monthly")
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Store.CreatePeriod(r.Context(), user.TenantID, start, end, payload.Frequency)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to create period", requestID)
		return
	}

	h.audit(r, user, "period.create", "payroll_period", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) HandleListPeriods(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	periods, err := h.Store.ListPeriods(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list periods", requestID)
		return
	}
	api.Success(w, periods, requestID)
}

func (h *Handler) HandleGetPeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	period, err := h.Store.GetPeriod(r.Context(), user.TenantID, chi.URLParam(r, "periodID"))
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}
	api.Success(w, period, requestID)
}

func (h *Handler) HandleRunPeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	periodID := chi.URLParam(r, "periodID")

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollRun, user.TenantID, func(ctx context.Context) (any, error) {
		return h.Service.RunPeriod(ctx, user.TenantID, periodID)
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	summary, _ := result.(payroll.RunSummary)
	h.Metrics.RunCompleted(summary.Computed, len(summary.Failures))
	h.audit(r, user, "payroll.run", "payroll_period", periodID, nil, summary)
	api.Success(w, summary, requestID)
}

func (h *Handler) HandleIssuePeriod(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	periodID := chi.URLParam(r, "periodID")

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobPayrollIssue, user.TenantID, func(ctx context.Context) (any, error) {
		return h.Service.IssuePeriod(ctx, user.TenantID, periodID)
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	summary, _ := result.(payroll.IssueSummary)
	for i := 0; i < summary.Issued; i++ {
		h.Metrics.DocumentIssued()
	}
	h.audit(r, user, "payroll.issue", "payroll_period", periodID, nil, summary)
	api.Success(w, summary, requestID)
}

func (h *Handler) HandleListRecords(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	records, err := h.Store.ListRecordsForPeriod(r.Context(), user.TenantID, chi.URLParam(r, "periodID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list records", requestID)
		return
	}
	api.Success(w, records, requestID)
}

func (h *Handler) HandleReissueDocument(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	result, err := h.Jobs.RunNow(r.Context(), jobs.JobPaystubReissue, user.TenantID, func(ctx context.Context) (any, error) {
		return h.Service.ReissueDocument(ctx, user.TenantID, recordID)
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	stub, _ := result.(payroll.Paystub)
	h.audit(r, user, "paystub.reissue", "payroll_record", recordID, nil, map[string]string{"fileName": stub.FileName})
	api.Success(w, stub, requestID)
}

func (h *Handler) HandleListPaystubs(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workerID := chi.URLParam(r, "workerID")
	page := shared.ParsePagination(r, 50, 200)

	// Workers only ever see their own stubs.
	if user.RoleName == auth.RoleWorker && workerID != user.WorkerID {
		api.Fail(w, http.StatusForbidden, "forbidden", "workers may only view their own paystubs", requestID)
		return
	}

	stubs, err := h.Store.ListPaystubsForWorker(r.Context(), user.TenantID, workerID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list paystubs", requestID)
		return
	}
	api.Success(w, stubs, requestID)
}

func (h *Handler) HandleDownloadPaystub(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	recordID := chi.URLParam(r, "recordID")

	stub, err := h.Store.PaystubForRecord(r.Context(), user.TenantID, recordID)
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}
	if user.RoleName == auth.RoleWorker && stub.WorkerID != user.WorkerID {
		api.Fail(w, http.StatusForbidden, "forbidden", "workers may only download their own paystubs", requestID)
		return
	}

	pdf, err := h.Storage.Read(r.Context(), user.TenantID, stub.FileName)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "storage_error", "paystub file unavailable", requestID)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", `attachment; filename="`+stub.FileName+`"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		slog.Warn("paystub download write failed", "recordId", recordID, "err", err)
	}
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, payroll.ErrPeriodNotFound), errors.Is(err, payroll.ErrRecordNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, payroll.ErrPeriodIssued):
		api.Fail(w, http.StatusConflict, "period_issued", err.Error(), requestID)
	case errors.Is(err, payroll.ErrHallmarkCollision):
		api.Fail(w, http.StatusConflict, "hallmark_collision", err.Error(), requestID)
	case errors.Is(err, payroll.ErrInvalidInput), errors.Is(err, payroll.ErrUnsupportedJurisdiction),
		errors.Is(err, payroll.ErrNegativeNetPay):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	case errors.Is(err, payroll.ErrPersistence):
		api.Fail(w, http.StatusBadGateway, "storage_error", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
}

func validFrequency(frequency string) bool {
	switch frequency {
	case payroll.FrequencyWeekly, payroll.FrequencyBiweekly, payroll.FrequencySemimonthly, payroll.FrequencyMonthly:
		return true
	}
	return false
}

func (h *Handler) audit(r *http.Request, user auth.UserContext, action, entityType, entityID string, before, after any) {
	if h.Audit == nil {
		return
	}
	requestID := middleware.GetRequestID(r.Context())
	if err := h.Audit.Record(r.Context(), user.TenantID, user.UserID, action, entityType, entityID, requestID, shared.ClientIP(r), before, after); err != nil {
		slog.Warn("audit record failed", "action", action, "err", err)
	}
}
