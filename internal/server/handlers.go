package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/quayside/portfolio-valuer/internal/modules/fx"
	"github.com/quayside/portfolio-valuer/internal/modules/ledger"
	"github.com/quayside/portfolio-valuer/internal/modules/marketdata"
	"github.com/quayside/portfolio-valuer/internal/modules/valuation"
	"github.com/quayside/portfolio-valuer/internal/services"
)

// Handlers holds the HTTP handlers for the valuation API
type Handlers struct {
	portfolio      *services.PortfolioService
	defaultAccount string
	log            zerolog.Logger
}

// NewHandlers creates a new handlers instance
func NewHandlers(portfolio *services.PortfolioService, defaultAccount string, log zerolog.Logger) *Handlers {
	return &Handlers{
		portfolio:      portfolio,
		defaultAccount: defaultAccount,
		log:            log.With().Str("component", "handlers").Logger(),
	}
}

// ImportResponse summarizes a ledger import
type ImportResponse struct {
	AccountID string `json:"account_id"`
	Imported  int    `json:"imported"`
	Skipped   int    `json:"skipped"`
}

// ValuationResponse is a single-date portfolio value
type ValuationResponse struct {
	AccountID string  `json:"account_id"`
	Date      string  `json:"date"`
	ValueGBP  float64 `json:"value_gbp"`
}

// HistoryResponse is the dated value series for an account
type HistoryResponse struct {
	AccountID string                   `json:"account_id"`
	Points    []valuation.HistoryPoint `json:"points"`
	Smoothed  bool                     `json:"smoothed"`
}

// HandleHealth returns a liveness response
func (h *Handlers) HandleHealth(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, map[string]string{"status": "ok"})
}

// HandleImportLedger accepts a trade-history CSV upload.
// POST /api/ledger/import (multipart, field "file")
func (h *Handlers) HandleImportLedger(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(8 << 20); err != nil {
		http.Error(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Missing file upload", http.StatusBadRequest)
		return
	}
	defer file.Close()

	accountID := r.URL.Query().Get("account")
	if accountID == "" {
		accountID = ledger.AccountFromFilename(header.Filename)
	}

	result, err := h.portfolio.ImportLedger(accountID, file)
	if err != nil {
		h.log.Error().Err(err).Str("filename", header.Filename).Msg("Ledger import failed")
		http.Error(w, err.Error(), http.StatusUnprocessableEntity)
		return
	}

	h.writeJSON(w, ImportResponse{
		AccountID: accountID,
		Imported:  len(result.Trades),
		Skipped:   result.Skipped,
	})
}

// HandleHoldings returns the per-ticker holding summaries.
// GET /api/holdings?account=QX2B3
func (h *Handlers) HandleHoldings(w http.ResponseWriter, r *http.Request) {
	accountID := h.account(r)

	holdings, err := h.portfolio.Holdings(accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to load holdings")
		http.Error(w, "Failed to load holdings", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, map[string]interface{}{
		"account_id": accountID,
		"holdings":   holdings,
	})
}

// HandleValuation returns the portfolio value for one date. The date comes
// either from ?date=YYYY-MM-DD or from a lookback ?period= (1y, 6m, 3m, 1m,
// 1w, 1d), defaulting to today.
// GET /api/valuation?date=2024-03-15&account=QX2B3
func (h *Handlers) HandleValuation(w http.ResponseWriter, r *http.Request) {
	accountID := h.account(r)

	date := time.Now().UTC()
	switch {
	case r.URL.Query().Get("date") != "":
		parsed, err := time.Parse(ledger.DateOnly, r.URL.Query().Get("date"))
		if err != nil {
			http.Error(w, "Invalid date, expected YYYY-MM-DD", http.StatusBadRequest)
			return
		}
		date = parsed
	case r.URL.Query().Get("period") != "":
		resolved, err := marketdata.PastBusinessDate(r.URL.Query().Get("period"), date)
		if err != nil {
			http.Error(w, "Invalid period, expected one of 1y, 6m, 3m, 1m, 1w, 1d", http.StatusBadRequest)
			return
		}
		date = resolved
	}

	value, err := h.portfolio.ValueOnDate(r.Context(), accountID, date)
	if err != nil {
		h.log.Error().Err(err).
			Str("account_id", accountID).
			Str("date", date.Format(ledger.DateOnly)).
			Msg("Valuation failed")
		if errors.Is(err, fx.ErrRateUnavailable) {
			http.Error(w, "Exchange rate unavailable for the requested date", http.StatusBadGateway)
			return
		}
		http.Error(w, "Valuation failed", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, ValuationResponse{
		AccountID: accountID,
		Date:      ledger.Day(date).Format(ledger.DateOnly),
		ValueGBP:  value,
	})
}

// HandleValuationHistory returns the full dated value series.
// GET /api/valuation/history?account=QX2B3&smooth=7
func (h *Handlers) HandleValuationHistory(w http.ResponseWriter, r *http.Request) {
	accountID := h.account(r)

	window := 0
	if raw := r.URL.Query().Get("smooth"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			http.Error(w, "Invalid smooth window", http.StatusBadRequest)
			return
		}
		window = parsed
	}

	var points []valuation.HistoryPoint
	var err error
	if window >= 2 {
		points, err = h.portfolio.SmoothedValueHistory(r.Context(), accountID, window)
	} else {
		var values map[string]float64
		values, err = h.portfolio.ValueHistory(r.Context(), accountID)
		if err == nil {
			points = valuation.SortedHistory(values)
		}
	}
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to build valuation history")
		http.Error(w, "Failed to build valuation history", http.StatusInternalServerError)
		return
	}

	h.writeJSON(w, HistoryResponse{
		AccountID: accountID,
		Points:    points,
		Smoothed:  window >= 2,
	})
}

// HandleValuationStats returns summary statistics over the value history.
// GET /api/valuation/stats?account=QX2B3
func (h *Handlers) HandleValuationStats(w http.ResponseWriter, r *http.Request) {
	accountID := h.account(r)

	summary, err := h.portfolio.Performance(r.Context(), accountID)
	if err != nil {
		h.log.Error().Err(err).Str("account_id", accountID).Msg("Failed to compute performance")
		http.Error(w, "Failed to compute performance", http.StatusInternalServerError)
		return
	}
	if summary == nil {
		http.Error(w, "Not enough history to summarize", http.StatusNotFound)
		return
	}

	h.writeJSON(w, summary)
}

func (h *Handlers) account(r *http.Request) string {
	if account := r.URL.Query().Get("account"); account != "" {
		return account
	}
	return h.defaultAccount
}

// writeJSON writes a JSON response
func (h *Handlers) writeJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.log.Error().Err(err).Msg("Failed to encode JSON response")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
