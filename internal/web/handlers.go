package web

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/textutil"
	"github.com/go-chi/chi/v5"
)

// handleHealth reports liveness.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]string{"status": "ok"})
}

// handleListForms returns all registered forms grouped by menu section.
func (s *Server) handleListForms(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, map[string]any{
		"forms":  s.service.ListForms(),
		"groups": s.service.ListFormsByGroup(),
	})
}

// ColumnView describes one export column for clients building previews.
type ColumnView struct {
	Label   string `json:"label"`
	Binding string `json:"binding"`
}

// FormColumnsResponse is the column layout of one form.
type FormColumnsResponse struct {
	Form    core.FormInfo    `json:"form"`
	Dynamic string           `json:"dynamic"`
	Columns []ColumnView     `json:"columns"`
	Import  core.LabelMap    `json:"import,omitempty"`
	Budgets core.BudgetRules `json:"budgets,omitempty"`
}

// handleFormColumns returns the resolved column spec of a form. The
// assortCode and withMalls query parameters select the data-driven columns
// the same way an export would.
func (s *Server) handleFormColumns(w http.ResponseWriter, r *http.Request) {
	formKey := chi.URLParam(r, "formKey")
	def, ok := core.Get(formKey)
	if !ok {
		respondKindError(w, r, &core.Error{Kind: core.KindUnknownForm, Op: "forms", Err: fmt.Errorf("form %q", formKey)})
		return
	}

	withMalls, _ := strconv.ParseBool(r.URL.Query().Get("withMalls"))
	opts := core.ExportOptions{
		AssortCode: r.URL.Query().Get("assortCode"),
		WithMalls:  withMalls,
	}

	spec, err := s.service.FormSpec(WithRequestMetadata(r.Context(), r), def, opts)
	if err != nil {
		respondKindError(w, r, err)
		return
	}

	cols := make([]ColumnView, len(spec))
	for i, c := range spec {
		cols[i] = ColumnView{Label: c.Label, Binding: c.Binding.String()}
	}
	writeJSON(w, FormColumnsResponse{
		Form:    def.Info,
		Dynamic: def.Dynamic.String(),
		Columns: cols,
		Import:  def.Import,
		Budgets: def.Budgets,
	})
}

// handleStatus returns the current state of the job limiter.
// Used for monitoring and to check if the system can accept more jobs.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.service.LimiterStatus())
}

// BytesRequest asks for the legacy byte length of a text.
type BytesRequest struct {
	Text string `json:"text"`
	Max  int    `json:"max"`
}

// BytesResponse reports the byte budget check of a text.
type BytesResponse struct {
	textutil.Budget
	Units int `json:"units"`
}

// handleBytes measures text the way marketplace field limits count it.
func (s *Server) handleBytes(w http.ResponseWriter, r *http.Request) {
	var req BytesRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondRequestError(w, r, err)
		return
	}
	if req.Max <= 0 {
		req.Max = textutil.DefaultFieldBudget
	}

	writeJSON(w, BytesResponse{
		Budget: textutil.CheckBudget(req.Text, req.Max),
		Units:  textutil.UnitLength(req.Text),
	})
}
