// # Error Codes Reference
//
// This file defines the user-facing messages for import and export failures.
// Users quote the code to support staff; messages are in Korean because the
// back-office UI is.
//
// Failures carrying a *core.Error are mapped by kind first:
//
//	FILE001 - File too large        (KindFileTooLarge)
//	FILE002 - Malformed workbook    (KindDecode)
//	IMP001  - No data               (KindNoData)
//	IMP002  - Read aborted          (KindReadAborted)
//	IMP003  - Read failed           (KindReadFailed)
//	EXP001  - Write failed          (KindWriteFailed)
//	EXP002  - Unknown form          (KindUnknownForm)
//	JOB001  - Too many jobs         (KindBusy)
//
// Other errors fall back to case-insensitive pattern matching on the error
// text (strings.Contains, first match wins):
//
//	FILE004 - No file               "no file provided"
//	FILE005 - Empty file            "empty file"
//	REQ001  - Bad request body      "invalid request"
//	IMP002  - Cancelled             "context canceled"
//	DB004   - Database unreachable  "connection refused"
//	DB006   - Timeout               "timeout", "context deadline exceeded"
//	RATE001 - Rate limited          "rate limit"
//
// # Default Error (ERR000)
//
// Fallback when nothing matches. Support staff should check application logs
// for the original technical error when users report ERR000.

package core

import (
	"errors"
	"fmt"
	"strings"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string `json:"message"` // What happened (user-friendly)
	Action  string `json:"action"`  // What to do about it
	Code    string `json:"code"`    // Error code for support reference
}

// kindMessages maps failure kinds to user messages.
var kindMessages = map[Kind]UserMessage{
	KindDecode: {
		Message: "엑셀파일 형식이 잘못되었습니다.",
		Action:  "다른 이름으로 저장에서 파일 형식을 xlsx로 지정하시고 새로운 파일로 저장 후 다시 시도해주세요.",
		Code:    "FILE002",
	},
	KindNoData: {
		Message: "데이터가 없습니다.",
		Action:  "첫 행에 항목명이 있고 그 아래에 데이터가 있는지 확인해주세요.",
		Code:    "IMP001",
	},
	KindReadAborted: {
		Message: "작업이 중단되었습니다.",
		Action:  "다시 시도 바랍니다.",
		Code:    "IMP002",
	},
	KindReadFailed: {
		Message: "에러가 발생하였습니다.",
		Action:  "다시 시도 바랍니다.",
		Code:    "IMP003",
	},
	KindWriteFailed: {
		Message: "저장에 실패하였습니다.",
		Action:  "잠시 후 다시 시도 바랍니다.",
		Code:    "EXP001",
	},
	KindFileTooLarge: {
		Message: "파일 크기가 너무 큽니다.",
		Action:  "파일을 나누어 업로드해주세요.",
		Code:    "FILE001",
	},
	KindUnknownForm: {
		Message: "등록되지 않은 양식입니다.",
		Action:  "양식을 다시 선택해주세요.",
		Code:    "EXP002",
	},
	KindBusy: {
		Message: "처리 중인 작업이 많습니다.",
		Action:  "잠시 후 다시 시도 바랍니다.",
		Code:    "JOB001",
	},
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

// errorPatterns maps technical error patterns (case-insensitive) to user
// messages for errors that carry no kind. The first matching pattern wins,
// so more specific patterns come first.
var errorPatterns = []errorPattern{
	{
		pattern: "no file provided",
		msg: UserMessage{
			Message: "파일이 선택되지 않았습니다.",
			Action:  "업로드할 파일을 선택해주세요.",
			Code:    "FILE004",
		},
	},
	{
		pattern: "empty file",
		msg: UserMessage{
			Message: "빈 파일입니다.",
			Action:  "데이터가 있는 파일을 업로드해주세요.",
			Code:    "FILE005",
		},
	},
	{
		pattern: "invalid request",
		msg: UserMessage{
			Message: "요청 형식이 잘못되었습니다.",
			Action:  "입력값을 확인 후 다시 시도해주세요.",
			Code:    "REQ001",
		},
	},
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "데이터베이스에 연결할 수 없습니다.",
			Action:  "잠시 후 다시 시도 바랍니다.",
			Code:    "DB004",
		},
	},
	{
		pattern: "context canceled",
		msg:     kindMessages[KindReadAborted],
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "요청 시간이 초과되었습니다.",
			Action:  "잠시 후 다시 시도 바랍니다.",
			Code:    "DB006",
		},
	},
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "요청 시간이 초과되었습니다.",
			Action:  "잠시 후 다시 시도 바랍니다.",
			Code:    "DB006",
		},
	},
	{
		pattern: "rate limit",
		msg: UserMessage{
			Message: "요청이 너무 많습니다.",
			Action:  "잠시 후 다시 시도 바랍니다.",
			Code:    "RATE001",
		},
	},
}

// defaultMessage is returned when no kind or pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "에러가 발생하였습니다.",
	Action:  "다시 시도하시거나 관리자에게 문의해주세요.",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message. Kinded
// failures map by kind; anything else goes through the pattern table.
//
// Example:
//
//	msg := MapError(fail("import", KindNoData, nil))
//	// msg.Code == "IMP001"
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var e *Error
	if errors.As(err, &e) {
		if msg, ok := kindMessages[e.Kind]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())
	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX) Action"
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s) %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing reports whether err maps to a specific message rather than
// the ERR000 fallback.
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	return MapError(err).Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError maps err to a UserError. Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}
