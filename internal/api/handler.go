// Package api exposes the dashboard HTTP surface: contract listing, batch
// submission, the latest batch, history and the chatbot.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/coder/quartz"
	"github.com/go-chi/chi/v5"

	"github.com/j-veylop/tokenflex-dashboard/internal/auth"
	"github.com/j-veylop/tokenflex-dashboard/internal/chatbot"
	"github.com/j-veylop/tokenflex-dashboard/internal/logger"
	"github.com/j-veylop/tokenflex-dashboard/internal/models"
	"github.com/j-veylop/tokenflex-dashboard/internal/pipeline"
	"github.com/j-veylop/tokenflex-dashboard/internal/store"
	"github.com/j-veylop/tokenflex-dashboard/internal/upstream"
)

const maxRequestBody = 1 << 20

// ContractLister lists upstream contracts.
type ContractLister interface {
	ListContracts(ctx context.Context, token string) ([]models.Contract, error)
}

// BatchRunner runs the usage query batch for an account.
type BatchRunner interface {
	Run(ctx context.Context, token, accountID string) (*models.UsageBatch, error)
}

// Handler implements the HTTP endpoints.
type Handler struct {
	contracts ContractLister
	runner    BatchRunner
	store     *store.Store
	bot       *chatbot.Bot
	clock     quartz.Clock
}

// NewHandler creates a Handler. clock may be nil.
func NewHandler(contracts ContractLister, runner BatchRunner, st *store.Store, bot *chatbot.Bot, clock quartz.Clock) *Handler {
	if clock == nil {
		clock = quartz.NewReal()
	}
	return &Handler{
		contracts: contracts,
		runner:    runner,
		store:     st,
		bot:       bot,
		clock:     clock,
	}
}

// ListContracts handles GET /api/contract.
func (h *Handler) ListContracts(w http.ResponseWriter, r *http.Request) {
	contracts, err := h.contracts.ListContracts(r.Context(), auth.TokenFromContext(r.Context()))
	if err != nil {
		logger.Error("error fetching contract data", "requestId", RequestIDFromContext(r.Context()), "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to fetch data")
		return
	}
	if contracts == nil {
		contracts = []models.Contract{}
	}
	writeJSON(w, http.StatusOK, contracts)
}

type submitRequest struct {
	SelectedValue json.RawMessage `json:"selectedValue"`
}

// selectedAccount accepts the account id as a JSON string or number.
func (s submitRequest) selectedAccount() string {
	raw := strings.TrimSpace(string(s.SelectedValue))
	if raw == "" || raw == "null" {
		return ""
	}
	var str string
	if err := json.Unmarshal(s.SelectedValue, &str); err == nil {
		return strings.TrimSpace(str)
	}
	var num json.Number
	if err := json.Unmarshal(s.SelectedValue, &num); err == nil {
		return num.String()
	}
	return ""
}

// SubmitDropdown handles POST /api/submit-dropdown.
func (h *Handler) SubmitDropdown(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := decodeBody(r, &req); err != nil {
		writeMessage(w, http.StatusBadRequest, "No selected value provided")
		return
	}
	accountID := req.selectedAccount()
	if accountID == "" {
		writeMessage(w, http.StatusBadRequest, "No selected value provided")
		return
	}

	logger.Info("received selected contract", "account", accountID, "requestId", RequestIDFromContext(r.Context()))

	batch, err := h.runner.Run(r.Context(), auth.TokenFromContext(r.Context()), accountID)
	switch {
	case errors.Is(err, pipeline.ErrNoResults):
		writeMessage(w, http.StatusNotFound, "No data available for the usecases")
		return
	case errors.Is(err, upstream.ErrTimedOut):
		writeMessage(w, http.StatusGatewayTimeout, "Timed out waiting for usecase data")
		return
	case err != nil:
		logger.Error("error processing selected contract", "account", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to process dropdown value")
		return
	}

	if err := h.store.Put(r.Context(), batch); err != nil {
		logger.Warn("batch served but not persisted", "account", accountID, "error", err)
	}
	writeJSON(w, http.StatusOK, batch.Results)
}

// LatestBatch handles GET /api/usecase1.
func (h *Handler) LatestBatch(w http.ResponseWriter, _ *http.Request) {
	results := []models.QueryResult{}
	if b := h.store.Latest(); b != nil && b.Results != nil {
		results = b.Results
	}
	writeJSON(w, http.StatusOK, results)
}

// History handles GET /api/history/{accountId}.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "accountId")

	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			writeMessage(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = n
	}

	batches, err := h.store.History(r.Context(), accountID, limit)
	switch {
	case errors.Is(err, store.ErrHistoryDisabled):
		writeMessage(w, http.StatusNotFound, "History is disabled")
		return
	case err != nil:
		logger.Error("error reading batch history", "account", accountID, "error", err)
		writeMessage(w, http.StatusInternalServerError, "Failed to read history")
		return
	}
	if batches == nil {
		batches = []models.UsageBatch{}
	}
	writeJSON(w, http.StatusOK, batches)
}

type chatRequest struct {
	Message string          `json:"message"`
	Context json.RawMessage `json:"context,omitempty"`
}

// contextAccount extracts an account id from the chat context, which may be
// a bare string or an object carrying accountId.
func (c chatRequest) contextAccount() string {
	if len(c.Context) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(c.Context, &s); err == nil {
		return s
	}
	var obj struct {
		AccountID string `json:"accountId"`
	}
	if err := json.Unmarshal(c.Context, &obj); err == nil {
		return obj.AccountID
	}
	return ""
}

// Chatbot handles POST /api/chatbot.
func (h *Handler) Chatbot(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		writeError(w, http.StatusBadRequest, "Message is required")
		return
	}

	batch := h.store.Resolve(req.contextAccount())
	writeJSON(w, http.StatusOK, models.ChatReply{
		Response:  h.bot.Respond(req.Message, batch),
		Timestamp: h.clock.Now().UTC(),
	})
}

// Healthz handles GET /healthz.
func (h *Handler) Healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"history": h.store.HistoryEnabled(),
	})
}
