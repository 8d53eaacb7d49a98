package server

import (
	"net/http"

	"github.com/bobmcallan/folio/internal/models"
)

// handleDividends handles GET /api/dividends?symbol= and POST /api/dividends.
func (s *Server) handleDividends(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		dividends, err := s.app.CashbookService.ListDividends(r.Context(), r.URL.Query().Get("symbol"))
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, dividends)

	case http.MethodPost:
		var dividend models.Dividend
		if !DecodeJSON(w, r, &dividend) {
			return
		}
		created, err := s.app.CashbookService.AddDividend(r.Context(), &dividend)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleDividendByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id := PathParam(r, "/api/dividends/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "dividend id is required in path")
		return
	}
	if err := s.app.CashbookService.DeleteDividend(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleExpenses handles GET and POST on /api/expenses.
func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		expenses, err := s.app.CashbookService.ListExpenses(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		WriteJSON(w, http.StatusOK, expenses)

	case http.MethodPost:
		var expense models.Expense
		if !DecodeJSON(w, r, &expense) {
			return
		}
		created, err := s.app.CashbookService.AddExpense(r.Context(), &expense)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleExpenseByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id := PathParam(r, "/api/expenses/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "expense id is required in path")
		return
	}
	if err := s.app.CashbookService.DeleteExpense(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleCertificates handles GET and POST on /api/certificates. Listed
// certificates include computed maturity date and value.
func (s *Server) handleCertificates(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		certs, err := s.app.CashbookService.ListCertificates(r.Context())
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
		out := make([]map[string]interface{}, 0, len(certs))
		for _, c := range certs {
			out = append(out, map[string]interface{}{
				"certificate":    c,
				"maturity_date":  c.MaturityDate(),
				"maturity_value": c.MaturityValue(),
			})
		}
		WriteJSON(w, http.StatusOK, out)

	case http.MethodPost:
		var cert models.Certificate
		if !DecodeJSON(w, r, &cert) {
			return
		}
		created, err := s.app.CashbookService.AddCertificate(r.Context(), &cert)
		if err != nil {
			WriteError(w, http.StatusBadRequest, err.Error())
			return
		}
		WriteJSON(w, http.StatusCreated, created)

	default:
		RequireMethod(w, r, http.MethodGet, http.MethodPost)
	}
}

func (s *Server) handleCertificateByID(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodDelete) {
		return
	}
	id := PathParam(r, "/api/certificates/", "")
	if id == "" {
		WriteError(w, http.StatusBadRequest, "certificate id is required in path")
		return
	}
	if err := s.app.CashbookService.DeleteCertificate(r.Context(), id); err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

func (s *Server) handleCashbookSummary(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, http.MethodGet) {
		return
	}
	summary, err := s.app.CashbookService.Summary(r.Context())
	if err != nil {
		WriteError(w, http.StatusInternalServerError, err.Error())
		return
	}
	WriteJSON(w, http.StatusOK, summary)
}
