package http

import (
	"net/http"
	"strings"

	"budget/internal/query"
	"budget/internal/services"
	"budget/internal/storage"
)

// filterKeys are the list parameters that become column filters.
var filterKeys = []string{"role", "name", "status", "year"}

// mountResource registers the list and find-one routes of one entity.
// Filters and name lookups are only offered for columns the table has.
func mountResource[T any](mux *http.ServeMux, path string, table storage.Table, svc *services.Service[T]) {
	mux.HandleFunc("GET /api/"+path, listHandler(table, svc))
	mux.HandleFunc("GET /api/"+path+"/{param}", findOneHandler(table, svc))
}

func listHandler[T any](table storage.Table, svc *services.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		for _, key := range filterKeys {
			if q.Has(key) && !table.HasColumn(key) {
				fail(w, r, badRequest("%s cannot be filtered by %s", table.Name, key))
				return
			}
		}
		params, err := parseListParams(q)
		if err != nil {
			fail(w, r, err)
			return
		}

		res, err := svc.List(r.Context(), params.Parameters, params.WithDeleted)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, res)
	}
}

func findOneHandler[T any](table storage.Table, svc *services.Service[T]) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		param := sanitizeInput(r.PathValue("param"))
		if !table.HasColumn("name") && !query.IsUUID(param) {
			fail(w, r, badRequest("%s are looked up by id only", table.Name))
			return
		}
		row, err := svc.FindOne(r.Context(), param)
		if err != nil {
			fail(w, r, err)
			return
		}
		writeJSON(w, r, http.StatusOK, row)
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.deps.Ready != nil {
		if err := s.deps.Ready(r.Context()); err != nil {
			writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
			return
		}
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ready"})
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	var in services.NewExpense
	if err := decodeJSON(w, r, &in); err != nil {
		fail(w, r, err)
		return
	}
	in.Name = sanitizeInput(in.Name)
	in.Description = sanitizeInput(in.Description)
	in.BillID = strings.TrimSpace(in.BillID)

	created, err := s.deps.Expenses.Create(r.Context(), in)
	if err != nil {
		fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/expenses/"+created.ID)
	writeJSON(w, r, http.StatusCreated, created)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !query.IsUUID(id) {
		fail(w, r, badRequest("invalid expense id %q", id))
		return
	}
	if err := s.deps.Expenses.Delete(r.Context(), id); err != nil {
		fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleExpenseSchedule(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if !query.IsUUID(id) {
		fail(w, r, badRequest("invalid expense id %q", id))
		return
	}
	exp, err := s.deps.Expenses.Get(r.Context(), id)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, exp)
}

func (s *Server) handlePokemonByOrder(w http.ResponseWriter, r *http.Request) {
	order, err := parseIntParam("order", r.PathValue("order"))
	if err != nil {
		fail(w, r, err)
		return
	}
	complete, err := parseBoolParam(r.URL.Query(), "complete", true)
	if err != nil {
		fail(w, r, err)
		return
	}
	p, err := s.deps.Pokemon.FindOneByOrder(r.Context(), order, complete)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, p)
}

// dashboardYear reads ?year=, defaulting to the current year.
func (s *Server) dashboardYear(r *http.Request) (int, error) {
	v := r.URL.Query().Get("year")
	if v == "" {
		return s.now().Year(), nil
	}
	return parseIntParam("year", v)
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	year, err := s.dashboardYear(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	ov, err := s.deps.Dashboard.Overview(r.Context(), year)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, ov)
}

func (s *Server) handleDashboardCharts(w http.ResponseWriter, r *http.Request) {
	year, err := s.dashboardYear(r)
	if err != nil {
		fail(w, r, err)
		return
	}
	charts, err := s.deps.Dashboard.Charts(r.Context(), year)
	if err != nil {
		fail(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, charts)
}
