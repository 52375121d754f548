package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ggyhrr/gift-code/internal/batch"
	"github.com/ggyhrr/gift-code/internal/listfile"
)

// Metrics
var (
	httpReqTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftcode_http_requests_total",
		Help: "Total HTTP requests",
	}, []string{"method", "endpoint", "status"})

	httpLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "giftcode_http_request_duration_seconds",
		Help:    "Request latency",
		Buckets: []float64{0.005, 0.05, 0.5, 5, 30, 120},
	}, []string{"method", "endpoint"})

	roundsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "giftcode_rounds_total",
		Help: "Validation and redemption rounds by outcome",
	}, []string{"kind", "outcome"})
)

// Handler exposes the roster and the batch operations over HTTP. Round
// endpoints are synchronous: the response is sent when the round finishes,
// and a concurrent round attempt gets 409.
type Handler struct {
	svc    *batch.Service
	alerts *AlertLog
}

// NewHandler creates the HTTP handler.
func NewHandler(svc *batch.Service, alerts *AlertLog) *Handler {
	return &Handler{svc: svc, alerts: alerts}
}

// Routes builds the router.
func (h *Handler) Routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/healthz", h.Health).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts", h.ListAccounts).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts", h.AddAccount).Methods(http.MethodPost)
	r.HandleFunc("/api/accounts/import", h.ImportAccounts).Methods(http.MethodPost)
	r.HandleFunc("/api/accounts/export", h.ExportAccounts).Methods(http.MethodGet)
	r.HandleFunc("/api/accounts/{id}", h.DeleteAccount).Methods(http.MethodDelete)
	r.HandleFunc("/api/validate", h.Validate).Methods(http.MethodPost)
	r.HandleFunc("/api/redeem", h.Redeem).Methods(http.MethodPost)
	r.HandleFunc("/api/status", h.Status).Methods(http.MethodGet)
	r.HandleFunc("/api/alerts", h.Alerts).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)
	return r
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]string{"status": "ok"}, "GET", "/healthz")
}

func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"accounts": h.svc.Accounts(),
		"stats":    h.svc.Stats(),
	}, "GET", "/api/accounts")
}

func (h *Handler) AddAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountNumber string `json:"account_number"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.AccountNumber == "" {
		h.respondError(w, http.StatusBadRequest, "account_number is required", "POST", "/api/accounts")
		return
	}
	if !listfile.ValidFormat(req.AccountNumber) {
		h.respondError(w, http.StatusUnprocessableEntity, "malformed account number", "POST", "/api/accounts")
		return
	}

	acc, err := h.svc.AddAccount(r.Context(), req.AccountNumber, false)
	if err != nil {
		if errors.Is(err, batch.ErrDuplicateAccount) {
			h.respondError(w, http.StatusConflict, "account already exists", "POST", "/api/accounts")
			return
		}
		h.respondError(w, http.StatusBadGateway, batch.LookupFailureMessage(err, "player lookup failed"), "POST", "/api/accounts")
		return
	}

	h.respondJSON(w, http.StatusCreated, acc, "POST", "/api/accounts")
}

func (h *Handler) DeleteAccount(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	h.svc.DeleteAccount(id)
	// Deletion is fire-and-forget; deleting an unknown id is not an error.
	h.respondJSON(w, http.StatusNoContent, nil, "DELETE", "/api/accounts/{id}")
}

func (h *Handler) ImportAccounts(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "failed to read body", "POST", "/api/accounts/import")
		return
	}

	valid, invalid, duplicates := listfile.Split(listfile.Parse(string(body)))
	added, skipped := h.svc.ImportAccounts(r.Context(), valid)

	h.respondJSON(w, http.StatusOK, map[string]any{
		"added":      added,
		"skipped":    skipped,
		"invalid":    invalid,
		"duplicates": duplicates,
	}, "POST", "/api/accounts/import")
}

func (h *Handler) ExportAccounts(w http.ResponseWriter, r *http.Request) {
	withStatus := r.URL.Query().Get("status") == "1"
	httpReqTotal.WithLabelValues("GET", "/api/accounts/export", "200").Inc()
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="accounts.txt"`)
	io.WriteString(w, listfile.Export(h.svc.Accounts(), withStatus))
}

func (h *Handler) Validate(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/api/validate"))
	defer timer.ObserveDuration()

	err := h.svc.ValidateAccounts(r.Context(), h.svc.Accounts())
	if err != nil {
		if errors.Is(err, batch.ErrRoundActive) {
			roundsTotal.WithLabelValues("validate", "rejected").Inc()
			h.respondError(w, http.StatusConflict, "another round is already running", "POST", "/api/validate")
			return
		}
		roundsTotal.WithLabelValues("validate", "cancelled").Inc()
		h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/api/validate")
		return
	}

	roundsTotal.WithLabelValues("validate", "completed").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"accounts": h.svc.Accounts(),
		"stats":    h.svc.Stats(),
	}, "POST", "/api/validate")
}

func (h *Handler) Redeem(w http.ResponseWriter, r *http.Request) {
	timer := prometheus.NewTimer(httpLatency.WithLabelValues("POST", "/api/redeem"))
	defer timer.ObserveDuration()

	var req struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Code == "" {
		h.respondError(w, http.StatusBadRequest, "code is required", "POST", "/api/redeem")
		return
	}

	err := h.svc.RedeemCode(r.Context(), req.Code)
	if err != nil {
		switch {
		case errors.Is(err, batch.ErrRoundActive):
			roundsTotal.WithLabelValues("redeem", "rejected").Inc()
			h.respondError(w, http.StatusConflict, "another round is already running", "POST", "/api/redeem")
		case errors.Is(err, batch.ErrNoAccounts), errors.Is(err, batch.ErrNoValidatedAccounts):
			roundsTotal.WithLabelValues("redeem", "rejected").Inc()
			h.respondError(w, http.StatusBadRequest, err.Error(), "POST", "/api/redeem")
		default:
			roundsTotal.WithLabelValues("redeem", "cancelled").Inc()
			h.respondError(w, http.StatusInternalServerError, err.Error(), "POST", "/api/redeem")
		}
		return
	}

	roundsTotal.WithLabelValues("redeem", "completed").Inc()
	h.respondJSON(w, http.StatusOK, map[string]any{
		"accounts": h.svc.Accounts(),
		"stats":    h.svc.Stats(),
	}, "POST", "/api/redeem")
}

func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, map[string]any{
		"processing": h.svc.Processing(),
		"remaining":  h.svc.Remaining(),
		"stats":      h.svc.Stats(),
	}, "GET", "/api/status")
}

func (h *Handler) Alerts(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, h.alerts.Recent(), "GET", "/api/alerts")
}

// Helpers
func (h *Handler) respondJSON(w http.ResponseWriter, code int, payload any, method, endpoint string) {
	httpReqTotal.WithLabelValues(method, endpoint, strconv.Itoa(code)).Inc()
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if payload != nil {
		json.NewEncoder(w).Encode(payload)
	}
}

func (h *Handler) respondError(w http.ResponseWriter, code int, msg, method, endpoint string) {
	h.respondJSON(w, code, map[string]string{"error": msg}, method, endpoint)
}
