package usecase

import (
	"errors"
	"fmt"
	"net/http"
)

// エラーの種類。HTTPステータスとは別に判定に使う。
type ErrorKind string

const (
	KindNotFound          ErrorKind = "not_found"
	KindValidation        ErrorKind = "validation"
	KindInsufficientStock ErrorKind = "insufficient_stock"
	KindConflict          ErrorKind = "conflict"
	KindForbidden         ErrorKind = "forbidden"
	KindInternal          ErrorKind = "internal"
)

type HTTPError struct {
	Status  int
	Kind    ErrorKind
	Message string
	Cause   error
}

func (e *HTTPError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%d: %s: %v", e.Status, e.Message, e.Cause)
	}
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func (e *HTTPError) Unwrap() error {
	return e.Cause
}

func AsHTTPError(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

func IsKind(err error, kind ErrorKind) bool {
	he, ok := AsHTTPError(err)
	return ok && he.Kind == kind
}

func NotFound(format string, args ...any) error {
	return &HTTPError{Status: http.StatusNotFound, Kind: KindNotFound, Message: fmt.Sprintf(format, args...)}
}

func Validation(format string, args ...any) error {
	return &HTTPError{Status: http.StatusBadRequest, Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

// メッセージには実際の在庫数を入れる
func InsufficientStock(available int64) error {
	if available < 0 {
		available = 0
	}
	return &HTTPError{
		Status:  http.StatusBadRequest,
		Kind:    KindInsufficientStock,
		Message: fmt.Sprintf("Insufficient stock. Only %d available", available),
	}
}

func Conflict(format string, args ...any) error {
	return &HTTPError{Status: http.StatusBadRequest, Kind: KindConflict, Message: fmt.Sprintf(format, args...)}
}

func Forbidden() error {
	return &HTTPError{Status: http.StatusForbidden, Kind: KindForbidden, Message: "forbidden"}
}

// DBエラーなど。原因はdetailsとして返す。
func Internal(err error) error {
	if he, ok := AsHTTPError(err); ok {
		return he
	}
	return &HTTPError{Status: http.StatusInternalServerError, Kind: KindInternal, Message: "internal error", Cause: err}
}
