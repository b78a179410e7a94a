package web

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/go-chi/chi/v5"
)

// ExportRequest is the JSON body of a form export.
type ExportRequest struct {
	Records []core.Record `json:"records"`
	core.ExportOptions
}

// OrderExportRequest is the JSON body of an order form export.
type OrderExportRequest struct {
	Records  []core.Record `json:"records"`
	Filename string        `json:"filename"`
}

// handleExport writes records through a registered form and returns the
// workbook as a download.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	formKey := chi.URLParam(r, "formKey")

	var req ExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondRequestError(w, r, err)
		return
	}

	// The workbook is buffered so a failed export still gets an error body.
	var buf bytes.Buffer
	stats, err := s.service.Export(WithRequestMetadata(r.Context(), r), &buf, formKey, req.ExportOptions, req.Records)
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, stats, &buf)
}

// handleExportOrders writes order records through a stored order download
// form, highlighting orders that ship together.
func (s *Server) handleExportOrders(w http.ResponseWriter, r *http.Request) {
	formID, err := strconv.ParseInt(chi.URLParam(r, "formID"), 10, 64)
	if err != nil || formID <= 0 {
		respondRequestError(w, r, fmt.Errorf("%w: order form id %q", errInvalidRequest, chi.URLParam(r, "formID")))
		return
	}

	var req OrderExportRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondRequestError(w, r, err)
		return
	}

	var buf bytes.Buffer
	stats, err := s.service.ExportOrders(WithRequestMetadata(r.Context(), r), &buf, formID, req.Filename, req.Records)
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	s.sendWorkbook(w, r, stats, &buf)
}

// sendWorkbook writes a finished export as an attachment. Export statistics
// travel in headers so download clients need not parse the workbook.
func (s *Server) sendWorkbook(w http.ResponseWriter, r *http.Request, stats core.ExportStats, buf *bytes.Buffer) {
	setAttachment(w, stats.Filename)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.Header().Set("X-Export-Rows", strconv.Itoa(stats.Rows))
	w.Header().Set("X-Export-Grouped", strconv.Itoa(stats.Grouped))

	if _, err := buf.WriteTo(w); err != nil {
		logging.FromContext(r.Context()).Warn("export download interrupted", "filename", stats.Filename, "error", err)
	}
}
