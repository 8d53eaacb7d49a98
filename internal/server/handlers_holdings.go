package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/bobmcallan/folio/internal/interfaces"
	"github.com/bobmcallan/folio/internal/models"
)

// routeHoldings dispatches /api/holdings/{symbol}[/...] to the appropriate handler.
func (s *Server) routeHoldings(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/api/holdings/")
	if path == "" {
		WriteError(w, http.StatusBadRequest, "symbol is required in path")
		return
	}

	symbol := path
	subpath := ""
	if idx := strings.Index(path, "/"); idx >= 0 {
		symbol = path[:idx]
		subpath = path[idx+1:]
	}

	switch subpath {
	case "":
		s.handleHoldingBySymbol(w, r, symbol)
	case "history":
		s.handleCostHistory(w, r, symbol)
	case "chart":
		s.handleCostHistoryChart(w, r, symbol)
	case "gains":
		s.handleHoldingGains(w, r, symbol)
	default:
		WriteError(w, http.StatusNotFound, "Not found")
	}
}

// handleHoldings handles GET (list) and POST (seed) on /api/holdings.
func (s *Server) handleHoldings(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		holdings, err := s.app.LedgerService.ListHoldings(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, holdings)

	case http.MethodPost:
		var holding models.Holding
		if !DecodeJSON(w, r, &holding) {
			return
		}
		created, err := s.app.LedgerService.SeedHolding(r.Context(), &holding)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleHoldingBySymbol(w http.ResponseWriter, r *http.Request, symbol string) {
	switch r.Method {
	case http.MethodGet:
		holding, err := s.app.LedgerService.GetHolding(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusNotFound, fmt.Sprintf("Holding not found: %v", err))
			return
		}
		WriteJSON(w, http.StatusOK, holding)

	case http.MethodDelete:
		if err := s.app.LedgerService.DeleteHolding(r.Context(), symbol); err != nil {
			writeLedgerError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted", "symbol": models.NormalizeSymbol(symbol)})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodDelete)
	}
}

// handleCostHistory handles GET /api/holdings/{symbol}/history.
func (s *Server) handleCostHistory(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	history, err := s.app.LedgerService.GetCostHistory(r.Context(), symbol)
	if err != nil {
		writeLedgerError(w, err)
		return
	}

	resp := map[string]interface{}{
		"symbol":         models.NormalizeSymbol(symbol),
		"seed":           history.Seed,
		"points":         history.Points,
		"final_shares":   history.FinalShares(),
		"final_avg_cost": history.FinalAverageCost(),
	}
	if history.SeedWarning != nil {
		resp["warning"] = history.SeedWarning.Error()
	}
	WriteJSON(w, http.StatusOK, resp)
}

// handleCostHistoryChart handles GET /api/holdings/{symbol}/chart and
// returns a rendered PNG.
func (s *Server) handleCostHistoryChart(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	png, err := s.app.LedgerService.RenderCostHistoryChart(r.Context(), symbol)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.WriteHeader(http.StatusOK)
	w.Write(png)
}

func (s *Server) handleHoldingGains(w http.ResponseWriter, r *http.Request, symbol string) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	gains, err := s.app.LedgerService.ListGains(r.Context(), symbol)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, gains)
}

// handleTransactions handles GET /api/transactions?symbol= and POST /api/transactions.
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		symbol := r.URL.Query().Get("symbol")
		if symbol == "" {
			WriteError(w, http.StatusBadRequest, "symbol query parameter is required")
			return
		}
		txns, err := s.app.LedgerService.ListTransactions(r.Context(), symbol)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, txns)

	case http.MethodPost:
		var txn models.Transaction
		if !DecodeJSON(w, r, &txn) {
			return
		}
		holding, err := s.app.LedgerService.AddTransaction(r.Context(), &txn)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		WriteJSON(w, http.StatusCreated, map[string]interface{}{
			"transaction": txn,
			"holding":     holding,
		})

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

// handleTransactionByID handles PUT and DELETE on /api/transactions/{id}.
func (s *Server) handleTransactionByID(w http.ResponseWriter, r *http.Request) {
	id := PathParam(r, "/api/transactions/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "transaction id is required in path")
		return
	}

	switch r.Method {
	case http.MethodPut, http.MethodPatch:
		var patch interfaces.TransactionPatch
		if !DecodeJSON(w, r, &patch) {
			return
		}
		holding, err := s.app.LedgerService.UpdateTransaction(r.Context(), id, patch)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"holding": holding})

	case http.MethodDelete:
		holding, err := s.app.LedgerService.DeleteTransaction(r.Context(), id)
		if err != nil {
			writeLedgerError(w, err)
			return
		}
		WriteJSON(w, http.StatusOK, map[string]interface{}{"status": "deleted", "holding": holding})

	default:
		RequireMethod(w, r, http.MethodPut, http.MethodPatch, http.MethodDelete)
	}
}

// handleGains handles GET /api/gains (all symbols, optional ?symbol= filter).
func (s *Server) handleGains(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	gains, err := s.app.LedgerService.ListGains(r.Context(), r.URL.Query().Get("symbol"))
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, gains)
}

func (s *Server) handleGainSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := s.app.LedgerService.GainSummary(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
