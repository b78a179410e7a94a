// Package web provides HTTP handlers for the import/export API.
// This file contains shared utilities and helper functions used across handlers.
package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strconv"

	"github.com/JonMunkholm/sheetmap/internal/core"
	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// Request body limits beyond the configured file size.
const (
	multipartOverhead = 1 << 20  // form fields and part headers
	maxMemory         = 32 << 20 // multipart parts above this spill to disk
	maxJSONBody       = 64 << 20 // export payloads
)

var (
	errNoFile         = errors.New("no file provided")
	errInvalidRequest = errors.New("invalid request")
)

// upload is a parsed multipart file upload.
type upload struct {
	file     multipart.File
	filename string
	size     int64
}

// Source wraps the uploaded file for the importer.
func (u *upload) Source() workbook.Source {
	return workbook.NewSource(u.file, u.size)
}

// Close releases the file and any temp storage of the form.
func (u *upload) Close() error {
	return u.file.Close()
}

// parseUpload reads the "file" part of a multipart request. Bodies larger
// than the configured import limit fail with a file-too-large error.
func (s *Server) parseUpload(w http.ResponseWriter, r *http.Request) (*upload, error) {
	maxSize := s.cfg.Import.MaxFileSize
	if maxSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, maxSize+multipartOverhead)
	}

	if err := r.ParseMultipartForm(maxMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &core.Error{Kind: core.KindFileTooLarge, Op: "import", Err: err}
		}
		return nil, fmt.Errorf("%w: %v", errInvalidRequest, err)
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, errNoFile
	}
	if header.Size == 0 {
		file.Close()
		return nil, errors.New("empty file")
	}
	return &upload{file: file, filename: header.Filename, size: header.Size}, nil
}

// parseMapping reads the optional "mapping" form field, a JSON object from
// header label to record key.
func parseMapping(r *http.Request) (core.LabelMap, error) {
	raw := r.FormValue("mapping")
	if raw == "" {
		return nil, nil
	}
	var m core.LabelMap
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return nil, fmt.Errorf("%w: mapping: %v", errInvalidRequest, err)
	}
	return m, nil
}

// parseIntForm parses an integer form value with a default value.
func parseIntForm(r *http.Request, name string, defaultVal int) (int, error) {
	val := r.FormValue(name)
	if val == "" {
		return defaultVal, nil
	}
	i, err := strconv.Atoi(val)
	if err != nil || i < 0 {
		return 0, fmt.Errorf("%w: %s must be a non-negative integer", errInvalidRequest, name)
	}
	return i, nil
}

// decodeJSON decodes a bounded JSON request body into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBody)
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: empty body", errInvalidRequest)
		}
		return fmt.Errorf("%w: %v", errInvalidRequest, err)
	}
	return nil
}

// setAttachment marks the response as a workbook download named filename.
func setAttachment(w http.ResponseWriter, filename string) {
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
}
