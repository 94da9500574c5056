package verifyhandler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"orbit/internal/domain/payroll"
	"orbit/internal/platform/metrics"
	"orbit/internal/transport/http/api"
	"orbit/internal/transport/http/middleware"
)

// Handler serves the public hallmark verification endpoint. It is the one
// surface mounted outside the authenticated API tree: anyone scanning a
// paystub QR code lands here.
type Handler struct {
	Service *payroll.Service
	Metrics *metrics.Collector
}

func NewHandler(service *payroll.Service, collector *metrics.Collector) *Handler {
	return &Handler{Service: service, Metrics: collector}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/verify/{serial}", h.HandleVerify)
}

func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	requestID := middleware.GetRequestID(r.Context())
	serial := chi.URLParam(r, "serial")

	if h.Metrics != nil {
		h.Metrics.Verification()
	}

	record, err := h.Service.VerifyBySerial(r.Context(), serial)
	if err != nil {
		if errors.Is(err, payroll.ErrRecordNotFound) {
			api.Fail(w, http.StatusNotFound, "not_found", "no issued document matches this serial", requestID)
			return
		}
		api.Fail(w, http.StatusInternalServerError, "internal_error", "verification failed", requestID)
		return
	}

	// The public page confirms authenticity without exposing the full
	// record, only the figures printed on the stub itself.
	api.Success(w, map[string]any{
		"hallmarkAssetNumber": record.HallmarkSerial,
		"workerId":            record.WorkerID,
		"periodStart":         record.PeriodStart,
		"periodEnd":           record.PeriodEnd,
		"grossPay":            record.GrossPay,
		"netPay":              record.NetPay,
		"status":              record.Status,
		"issuedAt":            record.CreatedAt,
	}, requestID)
}
