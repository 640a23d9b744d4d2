// Package httpapi exposes the REST surface of the application services.
package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/mux"

	app "github.com/feinhq/fein/internal/app"
	"github.com/feinhq/fein/internal/app/auth"
	"github.com/feinhq/fein/internal/app/domain/transaction"
	"github.com/feinhq/fein/internal/app/services/transactions"
	"github.com/feinhq/fein/internal/app/storage"
	apperrors "github.com/feinhq/fein/internal/errors"
	"github.com/feinhq/fein/internal/logging"
	"github.com/feinhq/fein/internal/metrics"
	"github.com/feinhq/fein/internal/middleware"
)

// PublicPaths are served without a bearer token.
var PublicPaths = []string{"/", "/healthz", "/metrics", "/auth/register", "/auth/login"}

// handler bundles HTTP endpoints for the application services.
type handler struct {
	app   *app.Application
	log   *logging.Logger
	audit *auditLog
}

// NewHandler returns a router exposing the REST API. The metrics handler and
// audit log are optional.
func NewHandler(application *app.Application, log *logging.Logger, m *metrics.Metrics, audit *auditLog) http.Handler {
	if log == nil {
		log = logging.NewDefault("httpapi")
	}
	h := &handler{app: application, log: log, audit: audit}

	r := mux.NewRouter()
	if m != nil {
		r.Use(middleware.MetricsMiddleware("fein", m))
	}

	r.HandleFunc("/", h.root).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.healthz).Methods(http.MethodGet)
	if m != nil {
		r.Handle("/metrics", m.Handler()).Methods(http.MethodGet)
	}

	r.HandleFunc("/auth/register", h.register).Methods(http.MethodPost)
	r.HandleFunc("/auth/login", h.login).Methods(http.MethodPost)

	r.HandleFunc("/accounts", h.createAccount).Methods(http.MethodPost)
	r.HandleFunc("/accounts", h.listAccounts).Methods(http.MethodGet)

	r.HandleFunc("/transactions", h.createTransaction).Methods(http.MethodPost)
	r.HandleFunc("/transactions", h.listTransactions).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", h.getTransaction).Methods(http.MethodGet)
	r.HandleFunc("/transactions/{id}", h.updateTransaction).Methods(http.MethodPut)
	r.HandleFunc("/transactions/{id}", h.deleteTransaction).Methods(http.MethodDelete)
	r.HandleFunc("/transactions/{id}/breakdowns", h.listBreakdowns).Methods(http.MethodGet)

	r.HandleFunc("/reports", h.reports).Methods(http.MethodGet)

	r.HandleFunc("/tags", h.createTag).Methods(http.MethodPost)
	r.HandleFunc("/tags", h.listTags).Methods(http.MethodGet)
	r.HandleFunc("/tags/assign", h.assignTag).Methods(http.MethodPost)
	r.HandleFunc("/tags/transaction/{id}", h.listTagsForTransaction).Methods(http.MethodGet)

	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.RequireAdmin)
	admin.HandleFunc("/accounts", h.adminListAccounts).Methods(http.MethodGet)
	admin.HandleFunc("/reports", h.adminOverview).Methods(http.MethodGet)
	admin.HandleFunc("/audit", h.adminAudit).Methods(http.MethodGet)

	return normalizeTrailingSlash(r)
}

// normalizeTrailingSlash maps "/accounts/" onto "/accounts" before routing.
// A redirect would turn mutating requests into body-less GETs in
// redirect-following clients, so the path is rewritten in place instead.
func normalizeTrailingSlash(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if len(r.URL.Path) > 1 && strings.HasSuffix(r.URL.Path, "/") {
			r.URL.Path = strings.TrimRight(r.URL.Path, "/")
		}
		next.ServeHTTP(w, r)
	})
}

func (h *handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "Fein personal finance API"})
}

func (h *handler) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- auth -------------------------------------------------------------------

func (h *handler) register(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		UserName string `json:"user_name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.app.Users.Register(r.Context(), payload.UserName, payload.Email, payload.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) login(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	token, u, err := h.app.Users.Login(r.Context(), payload.Email, payload.Password)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"access_token": token,
		"token_type":   "bearer",
		"user_id":      u.ID,
	})
}

// --- accounts ---------------------------------------------------------------

func (h *handler) createAccount(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		AccountName string  `json:"account_name"`
		Balance     float64 `json:"balance"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	acct, err := h.app.Accounts.Create(r.Context(), middleware.GetUserID(r.Context()), payload.AccountName, payload.Balance)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

func (h *handler) listAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.app.Accounts.List(r.Context(), middleware.GetUserID(r.Context()))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

func (h *handler) adminListAccounts(w http.ResponseWriter, r *http.Request) {
	accts, err := h.app.Accounts.ListAll(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accts)
}

// --- transactions -----------------------------------------------------------

type breakdownPayload struct {
	AccountID    string  `json:"transaction_account_id"`
	EarnedAmount float64 `json:"earned_amount"`
	SpentAmount  float64 `json:"spent_amount"`
}

func (h *handler) createTransaction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name       string             `json:"transaction_name"`
		Amount     *float64           `json:"amount"`
		Date       *time.Time         `json:"date"`
		TagID      string             `json:"tag_id"`
		Breakdowns []breakdownPayload `json:"breakdowns"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	userID := middleware.GetUserID(r.Context())

	// An unknown tag fails before anything is stored.
	if payload.TagID != "" {
		if _, err := h.app.Tags.Get(r.Context(), payload.TagID); err != nil {
			respondError(w, err)
			return
		}
	}

	draft := transactions.Draft{Name: payload.Name, Amount: payload.Amount}
	if payload.Date != nil {
		draft.Date = *payload.Date
	}
	breakdowns := make([]transaction.Breakdown, 0, len(payload.Breakdowns))
	for _, b := range payload.Breakdowns {
		breakdowns = append(breakdowns, transaction.Breakdown{
			AccountID:    b.AccountID,
			EarnedAmount: b.EarnedAmount,
			SpentAmount:  b.SpentAmount,
		})
	}

	created, storedBreakdowns, err := h.app.Transactions.Create(r.Context(), userID, draft, breakdowns)
	if err != nil {
		respondError(w, err)
		return
	}

	if payload.TagID != "" {
		if _, err := h.app.Tags.Assign(r.Context(), userID, created.ID, payload.TagID); err != nil {
			respondError(w, err)
			return
		}
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"transaction": created,
		"breakdowns":  storedBreakdowns,
	})
}

func (h *handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	txns, err := h.app.Transactions.List(r.Context(), h.scopeUserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txns)
}

func (h *handler) getTransaction(w http.ResponseWriter, r *http.Request) {
	txn, err := h.app.Transactions.Get(r.Context(), h.scopeUserID(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, txn)
}

func (h *handler) updateTransaction(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name      *string    `json:"transaction_name"`
		Amount    *float64   `json:"amount"`
		NetAmount *float64   `json:"net_amount"`
		Date      *time.Time `json:"date"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	updated, err := h.app.Transactions.Update(r.Context(), h.scopeUserID(r), mux.Vars(r)["id"], transaction.Update{
		Name:      payload.Name,
		Amount:    payload.Amount,
		NetAmount: payload.NetAmount,
		Date:      payload.Date,
	})
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func (h *handler) deleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := h.app.Transactions.Delete(r.Context(), h.scopeUserID(r), mux.Vars(r)["id"]); err != nil {
		respondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) listBreakdowns(w http.ResponseWriter, r *http.Request) {
	breakdowns, err := h.app.Transactions.Breakdowns(r.Context(), h.scopeUserID(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdowns)
}

// --- reports ----------------------------------------------------------------

func (h *handler) reports(w http.ResponseWriter, r *http.Request) {
	summaries, err := h.app.Reports.Summaries(r.Context(), h.scopeUserID(r))
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, summaries)
}

func (h *handler) adminOverview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.app.Reports.Overview(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *handler) adminAudit(w http.ResponseWriter, r *http.Request) {
	if h.audit == nil {
		writeJSON(w, http.StatusOK, []auditEntry{})
		return
	}
	writeJSON(w, http.StatusOK, h.audit.listLimit(parseLimit(r)))
}

// --- tags -------------------------------------------------------------------

func (h *handler) createTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Name string `json:"tag_name"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.app.Tags.Create(r.Context(), payload.Name)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listTags(w http.ResponseWriter, r *http.Request) {
	all, err := h.app.Tags.List(r.Context())
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, all)
}

func (h *handler) assignTag(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		TransactionID string `json:"transaction_id"`
		TagID         string `json:"tag_id"`
	}
	if err := decodeJSON(r.Body, &payload); err != nil {
		respondError(w, apperrors.Validation(err.Error()))
		return
	}

	created, err := h.app.Tags.Assign(r.Context(), h.scopeUserID(r), payload.TransactionID, payload.TagID)
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *handler) listTagsForTransaction(w http.ResponseWriter, r *http.Request) {
	attached, err := h.app.Tags.ListForTransaction(r.Context(), h.scopeUserID(r), mux.Vars(r)["id"])
	if err != nil {
		respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, attached)
}

// --- helpers ----------------------------------------------------------------

// scopeUserID returns the caller's user ID, or "" for admins so services skip
// the ownership filter.
func (h *handler) scopeUserID(r *http.Request) string {
	if middleware.GetUserRole(r.Context()) == auth.RoleAdmin {
		return ""
	}
	return middleware.GetUserID(r.Context())
}

func parseLimit(r *http.Request) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return 0
	}
	limit := 0
	for _, c := range raw {
		if c < '0' || c > '9' {
			return 0
		}
		limit = limit*10 + int(c-'0')
	}
	return limit
}

func decodeJSON(body io.ReadCloser, dst interface{}) error {
	defer body.Close()
	dec := json.NewDecoder(body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, storage.ErrNotFound):
		writeErrorBody(w, apperrors.NotFound("resource not found"))
	case errors.Is(err, storage.ErrDuplicateEmail):
		writeErrorBody(w, apperrors.Conflict("email already registered"))
	default:
		serviceErr := apperrors.GetServiceError(err)
		if serviceErr == nil {
			serviceErr = apperrors.Internal("internal error", err)
		}
		writeErrorBody(w, serviceErr)
	}
}

func writeErrorBody(w http.ResponseWriter, serviceErr *apperrors.ServiceError) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(serviceErr.HTTPStatus)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"error": map[string]interface{}{
			"code":    serviceErr.Code,
			"message": serviceErr.Message,
			"details": serviceErr.Details,
		},
	})
}
