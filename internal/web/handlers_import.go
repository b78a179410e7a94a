package web

import (
	"net/http"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/logging"
	"github.com/JonMunkholm/sheetmap/internal/web/templates"
)

// importRequest reads the form key and label mapping of an upload.
func importRequest(r *http.Request) (core.ImportRequest, error) {
	m, err := parseMapping(r)
	if err != nil {
		return core.ImportRequest{}, err
	}
	return core.ImportRequest{FormKey: r.FormValue("form"), Mapping: m}, nil
}

// handleImport reads an uploaded workbook into keyed records.
//
// Form fields: file (required), form (registered form key), mapping (JSON
// object from header label to record key).
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	defer up.Close()

	req, err := importRequest(r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}

	ctx := WithRequestMetadata(r.Context(), r)
	logging.FromContext(ctx).Info("import received", "filename", up.filename, "size", up.size, "form", req.FormKey)

	res, err := s.service.Import(ctx, up.Source(), req)
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	writeJSON(w, res)
}

// handleImportHeaders returns the header labels of an uploaded workbook so
// the client can build a label mapping.
func (s *Server) handleImportHeaders(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	defer up.Close()

	h, err := s.service.ImportHeaders(WithRequestMetadata(r.Context(), r), up.Source())
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	writeJSON(w, h)
}

// handleImportPreview reads an upload and returns counts, sample records and
// byte budget problems instead of the full record set. HTMX requests get an
// HTML fragment.
func (s *Server) handleImportPreview(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	defer up.Close()

	req, err := importRequest(r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}

	p, err := s.service.PreviewImport(WithRequestMetadata(r.Context(), r), up.Source(), req)
	if err != nil {
		respondKindError(w, r, err)
		return
	}

	if isHTMX(r) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		if err := templates.ImportPreview(p).Render(r.Context(), w); err != nil {
			logging.FromContext(r.Context()).Error("render preview", "error", err)
		}
		return
	}
	writeJSON(w, p)
}

// GridResponse is the primary sheet of an upload as raw rows.
type GridResponse struct {
	Sheet string  `json:"sheet"`
	Rows  [][]any `json:"rows"`
}

// handleImportGrid returns the primary sheet as rows of typed cell values,
// header row included.
func (s *Server) handleImportGrid(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	defer up.Close()

	sheet, rows, err := s.service.ImportGrid(WithRequestMetadata(r.Context(), r), up.Source())
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	writeJSON(w, GridResponse{Sheet: sheet, Rows: rows})
}

// handleImportLetters reads every sheet of an upload keyed by column letter.
//
// Form fields: file (required), skip (leading rows to drop), require (column
// letter that must hold a value), sheetKey (record key for the sheet name).
func (s *Server) handleImportLetters(w http.ResponseWriter, r *http.Request) {
	up, err := s.parseUpload(w, r)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	defer up.Close()

	skip, err := parseIntForm(r, "skip", 0)
	if err != nil {
		respondRequestError(w, r, err)
		return
	}
	opts := core.LetterOptions{
		SkipRows: skip,
		Require:  r.FormValue("require"),
		SheetKey: r.FormValue("sheetKey"),
	}

	recs, err := s.service.ImportLetters(WithRequestMetadata(r.Context(), r), up.Source(), opts)
	if err != nil {
		respondKindError(w, r, err)
		return
	}
	writeJSON(w, map[string]any{"records": recs})
}
