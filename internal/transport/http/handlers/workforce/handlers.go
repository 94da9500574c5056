package workforcehandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"orbit/internal/domain/audit"
	"orbit/internal/domain/auth"
	"orbit/internal/domain/workforce"
	"orbit/internal/transport/http/api"
	"orbit/internal/transport/http/middleware"
	"orbit/internal/transport/http/shared"
)

type Handler struct {
	Service *workforce.Service
	Store   *workforce.Store
	Audit   *audit.Service
	Perms   middleware.PermissionStore
}

func NewHandler(service *workforce.Service, store *workforce.Store, auditor *audit.Service, perms middleware.PermissionStore) *Handler {
	return &Handler{Service: service, Store: store, Audit: auditor, Perms: perms}
}

func (h *Handler) require(permission string) func(http.Handler) http.Handler {
	return middleware.RequirePermission(permission, h.Perms)
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.With(h.require(auth.PermWorkersWrite)).Post("/workers", h.HandleCreateWorker)
	r.With(h.require(auth.PermWorkersRead)).Get("/workers", h.HandleListWorkers)
	r.With(h.require(auth.PermWorkersRead)).Get("/workers/{workerID}", h.HandleGetWorker)
	r.With(h.require(auth.PermWorkersWrite)).Patch("/workers/{workerID}/status", h.HandleSetWorkerStatus)

	r.With(h.require(auth.PermRatesWrite)).Put("/workers/{workerID}/rate", h.HandleUpsertRateProfile)
	r.With(h.require(auth.PermRatesRead)).Get("/workers/{workerID}/rate", h.HandleGetRateProfile)

	r.With(h.require(auth.PermTimesheetsWrite)).Post("/timesheets", h.HandleSubmitTimesheet)
	r.With(h.require(auth.PermTimesheetsRead)).Get("/timesheets", h.HandleListTimesheets)
	r.With(h.require(auth.PermTimesheetsWrite)).Patch("/timesheets/{sheetID}/hours", h.HandleUpdateTimesheetHours)
	r.With(h.require(auth.PermTimesheetsApprove)).Post("/timesheets/{sheetID}/approve", h.HandleApproveTimesheet)

	r.With(h.require(auth.PermGarnishmentsWrite)).Post("/garnishments", h.HandleCreateOrder)
	r.With(h.require(auth.PermGarnishmentsRead)).Get("/workers/{workerID}/garnishments", h.HandleListOrders)
	r.With(h.require(auth.PermGarnishmentsWrite)).Delete("/garnishments/{orderID}", h.HandleCancelOrder)
}

type createWorkerRequest struct {
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
}

func (h *Handler) HandleCreateWorker(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload createWorkerRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("firstName", payload.FirstName, "is required")
	v.Required("lastName", payload.LastName, "is required")
	v.Required("email", payload.Email, "is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateWorker(r.Context(), workforce.Worker{
		TenantID:  user.TenantID,
		FirstName: payload.FirstName,
		LastName:  payload.LastName,
		Email:     payload.Email,
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "worker.create", "worker", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) HandleListWorkers(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	page := shared.ParsePagination(r, 50, 200)

	workers, err := h.Store.ListWorkers(r.Context(), user.TenantID, page.Limit, page.Offset)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list workers", requestID)
		return
	}
	api.Success(w, workers, requestID)
}

func (h *Handler) HandleGetWorker(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	worker, err := h.Store.GetWorker(r.Context(), user.TenantID, chi.URLParam(r, "workerID"))
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}
	api.Success(w, worker, requestID)
}

type workerStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) HandleSetWorkerStatus(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workerID := chi.URLParam(r, "workerID")

	var payload workerStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}
	if payload.Status != workforce.WorkerStatusActive && payload.Status != workforce.WorkerStatusInactive {
		api.Fail(w, http.StatusBadRequest, "invalid_status", "status must be active or inactive", requestID)
		return
	}

	if err := h.Store.SetWorkerStatus(r.Context(), user.TenantID, workerID, payload.Status); err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "worker.status", "worker", workerID, nil, payload)
	api.Success(w, map[string]string{"id": workerID, "status": payload.Status}, requestID)
}

type rateProfileRequest struct {
	HourlyRate   float64 `json:"hourlyRate"`
	WorkState    string  `json:"workState"`
	WorkCity     string  `json:"workCity"`
	FilingStatus string  `json:"filingStatus"`
}

func (h *Handler) HandleUpsertRateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	workerID := chi.URLParam(r, "workerID")

	var payload rateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Positive("hourlyRate", payload.HourlyRate, "must be greater than zero")
	v.Required("workState", payload.WorkState, "is required")
	v.Required("filingStatus", payload.FilingStatus, "is required")
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.UpsertRateProfile(r.Context(), workforce.RateProfile{
		TenantID:     user.TenantID,
		WorkerID:     workerID,
		HourlyRate:   payload.HourlyRate,
		WorkState:    payload.WorkState,
		WorkCity:     payload.WorkCity,
		FilingStatus: payload.FilingStatus,
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "rate.upsert", "rate_profile", id, nil, payload)
	api.Success(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) HandleGetRateProfile(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	profile, err := h.Store.RateProfileForWorker(r.Context(), user.TenantID, chi.URLParam(r, "workerID"))
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}
	api.Success(w, profile, requestID)
}

type timesheetRequest struct {
	WorkerID      string  `json:"workerId"`
	PeriodID      string  `json:"periodId"`
	PeriodStart   string  `json:"periodStart"`
	PeriodEnd     string  `json:"periodEnd"`
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
}

func (h *Handler) HandleSubmitTimesheet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload timesheetRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	// Workers may only file their own hours.
	if user.RoleName == auth.RoleWorker {
		if user.WorkerID == "" || payload.WorkerID != user.WorkerID {
			api.Fail(w, http.StatusForbidden, "forbidden", "workers may only submit their own timesheets", requestID)
			return
		}
	}

	v := shared.NewValidator()
	v.Required("workerId", payload.WorkerID, "is required")
	v.Required("periodId", payload.PeriodID, "is required")
	start, _ := v.Date("periodStart", payload.PeriodStart)
	end, _ := v.Date("periodEnd", payload.PeriodEnd)
	v.DateOrder("periodStart", start, "periodEnd", end)
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.SubmitTimesheet(r.Context(), workforce.Timesheet{
		TenantID:      user.TenantID,
		WorkerID:      payload.WorkerID,
		PeriodID:      payload.PeriodID,
		PeriodStart:   start,
		PeriodEnd:     end,
		RegularHours:  payload.RegularHours,
		OvertimeHours: payload.OvertimeHours,
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "timesheet.submit", "timesheet", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) HandleListTimesheets(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	periodID := r.URL.Query().Get("periodId")
	if periodID == "" {
		api.Fail(w, http.StatusBadRequest, "invalid_input", "periodId query parameter is required", requestID)
		return
	}

	sheets, err := h.Store.ListTimesheets(r.Context(), user.TenantID, periodID)
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list timesheets", requestID)
		return
	}

	if user.RoleName == auth.RoleWorker {
		own := make([]workforce.Timesheet, 0, len(sheets))
		for _, sheet := range sheets {
			if sheet.WorkerID == user.WorkerID {
				own = append(own, sheet)
			}
		}
		sheets = own
	}
	api.Success(w, sheets, requestID)
}

type timesheetHoursRequest struct {
	RegularHours  float64 `json:"regularHours"`
	OvertimeHours float64 `json:"overtimeHours"`
}

func (h *Handler) HandleUpdateTimesheetHours(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	sheetID := chi.URLParam(r, "sheetID")

	var payload timesheetHoursRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	sheet, err := h.Store.GetTimesheet(r.Context(), user.TenantID, sheetID)
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}
	if user.RoleName == auth.RoleWorker && sheet.WorkerID != user.WorkerID {
		api.Fail(w, http.StatusForbidden, "forbidden", "workers may only edit their own timesheets", requestID)
		return
	}

	sheet.RegularHours = payload.RegularHours
	sheet.OvertimeHours = payload.OvertimeHours
	if err := workforce.ValidateTimesheet(sheet); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_timesheet", err.Error(), requestID)
		return
	}

	if err := h.Store.UpdateTimesheetHours(r.Context(), user.TenantID, sheetID, payload.RegularHours, payload.OvertimeHours); err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "timesheet.update", "timesheet", sheetID, nil, payload)
	api.Success(w, map[string]string{"id": sheetID}, requestID)
}

func (h *Handler) HandleApproveTimesheet(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	sheetID := chi.URLParam(r, "sheetID")

	if err := h.Service.ApproveTimesheet(r.Context(), user.TenantID, sheetID); err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "timesheet.approve", "timesheet", sheetID, nil, nil)
	api.Success(w, map[string]string{"id": sheetID, "status": "approved"}, requestID)
}

type orderRequest struct {
	WorkerID      string  `json:"workerId"`
	Type          string  `json:"type"`
	Creditor      string  `json:"creditor"`
	CapType       string  `json:"capType"`
	Amount        float64 `json:"amount"`
	Percent       float64 `json:"percent"`
	EffectiveDate string  `json:"effectiveDate"`
	ExpiryDate    string  `json:"expiryDate"`
}

func (h *Handler) HandleCreateOrder(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	var payload orderRequest
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		api.Fail(w, http.StatusBadRequest, "invalid_payload", "invalid request payload", requestID)
		return
	}

	v := shared.NewValidator()
	v.Required("workerId", payload.WorkerID, "is required")
	v.Required("type", payload.Type, "is required")
	v.Required("creditor", payload.Creditor, "is required")
	effective, _ := v.Date("effectiveDate", payload.EffectiveDate)
	var expiry *time.Time
	if payload.ExpiryDate != "" {
		if parsed, ok := v.Date("expiryDate", payload.ExpiryDate); ok {
			expiry = &parsed
		}
	}
	if v.Reject(w, requestID) {
		return
	}

	id, err := h.Service.CreateOrder(r.Context(), workforce.GarnishmentOrder{
		TenantID:      user.TenantID,
		WorkerID:      payload.WorkerID,
		Type:          payload.Type,
		Creditor:      payload.Creditor,
		CapType:       payload.CapType,
		Amount:        payload.Amount,
		Percent:       payload.Percent,
		EffectiveDate: effective,
		ExpiryDate:    expiry,
	})
	if err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "garnishment.create", "garnishment_order", id, nil, payload)
	api.Created(w, map[string]string{"id": id}, requestID)
}

func (h *Handler) HandleListOrders(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())

	orders, err := h.Store.ListOrders(r.Context(), user.TenantID, chi.URLParam(r, "workerID"))
	if err != nil {
		api.Fail(w, http.StatusInternalServerError, "internal_error", "failed to list garnishment orders", requestID)
		return
	}
	api.Success(w, orders, requestID)
}

func (h *Handler) HandleCancelOrder(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	user, _ := middleware.GetUser(r.Context())
	orderID := chi.URLParam(r, "orderID")

	if err := h.Service.CancelOrder(r.Context(), user.TenantID, orderID); err != nil {
		h.writeDomainError(w, err, requestID)
		return
	}

	h.audit(r, user, "garnishment.cancel", "garnishment_order", orderID, nil, nil)
	api.Success(w, map[string]string{"id": orderID, "active": "false"}, requestID)
}

func (h *Handler) writeDomainError(w http.ResponseWriter, err error, requestID string) {
	switch {
	case errors.Is(err, workforce.ErrWorkerNotFound), errors.Is(err, workforce.ErrOrderNotFound):
		api.Fail(w, http.StatusNotFound, "not_found", err.Error(), requestID)
	case errors.Is(err, workforce.ErrTimesheetLocked):
		api.Fail(w, http.StatusConflict, "timesheet_locked", err.Error(), requestID)
	case errors.Is(err, workforce.ErrInvalidInput):
		api.Fail(w, http.StatusBadRequest, "invalid_input", err.Error(), requestID)
	default:
		api.Fail(w, http.StatusInternalServerError, "internal_error", "request failed", requestID)
	}
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
