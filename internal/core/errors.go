package core

import (
	"errors"
	"fmt"

	"github.com/JonMunkholm/sheetmap/internal/workbook"
)

// Kind classifies import and export failures. Every kind is recoverable by
// the user; none of them should take the process down.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindDecode
	KindNoData
	KindReadAborted
	KindReadFailed
	KindWriteFailed
	KindFileTooLarge
	KindUnknownForm
	KindBusy
)

var kindNames = map[Kind]string{
	KindUnknown:      "unknown",
	KindDecode:       "decode",
	KindNoData:       "no data",
	KindReadAborted:  "read aborted",
	KindReadFailed:   "read failed",
	KindWriteFailed:  "write failed",
	KindFileTooLarge: "file too large",
	KindUnknownForm:  "unknown form",
	KindBusy:         "too many jobs",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("Kind(%d)", uint8(k))
}

// Error is the failure outcome of an import or export call.
type Error struct {
	Kind Kind
	Op   string // "import", "export", ...
	Err  error  // underlying cause, for logs only
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error by kind, so errors.Is(err, ErrNoData) works on
// any wrapped failure of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Op == "" && t.Err == nil && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrDecode       = &Error{Kind: KindDecode}
	ErrNoData       = &Error{Kind: KindNoData}
	ErrReadAborted  = &Error{Kind: KindReadAborted}
	ErrReadFailed   = &Error{Kind: KindReadFailed}
	ErrWriteFailed  = &Error{Kind: KindWriteFailed}
	ErrFileTooLarge = &Error{Kind: KindFileTooLarge}
	ErrUnknownForm  = &Error{Kind: KindUnknownForm}
	ErrBusy         = &Error{Kind: KindBusy}
)

// KindOf returns the kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// fail wraps cause as an *Error of kind k.
func fail(op string, k Kind, cause error) error {
	return &Error{Kind: k, Op: op, Err: cause}
}

// readFailure maps a workbook read or decode error to its kind.
func readFailure(op string, err error) error {
	switch {
	case errors.Is(err, workbook.ErrReadAborted):
		return fail(op, KindReadAborted, err)
	case errors.Is(err, workbook.ErrTooLarge):
		return fail(op, KindFileTooLarge, err)
	case errors.Is(err, workbook.ErrMalformed):
		return fail(op, KindDecode, err)
	default:
		return fail(op, KindReadFailed, err)
	}
}
