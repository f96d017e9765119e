package apperrors

import "errors"

// 錯誤種類：handler 依此對應 HTTP 狀態碼
var (
	ErrValidation = errors.New("validation failed")
	ErrNotFound   = errors.New("not found")
	ErrForbidden  = errors.New("forbidden")
	ErrConflict   = errors.New("conflict")
)

var (
	ErrInvalidInput                = newError(ErrValidation, "invalid input")
	ErrUnknownStatus               = newError(ErrValidation, "unknown ticket status")
	ErrTicketNotFound              = newError(ErrNotFound, "ticket not found")
	ErrNoSellerTickets             = newError(ErrNotFound, "no tickets listed by this seller")
	ErrNotTicketOwner              = newError(ErrForbidden, "only the ticket owner can modify this ticket")
	ErrTicketNotUpdatable          = newError(ErrConflict, "ticket cannot be updated in its current status")
	ErrTicketNotDeletable          = newError(ErrConflict, "ticket cannot be deleted in its current status")
	ErrInvalidStatusTransition     = newError(ErrConflict, "ticket status transition is not allowed")
	ErrSellingPriceExceedsOriginal = newError(ErrConflict, "selling price cannot exceed original price")
	ErrFavoriteContention          = newError(ErrConflict, "favorite is being modified concurrently")
)

type appError struct {
	kind error
	msg  string
}

func newError(kind error, msg string) error {
	return &appError{kind: kind, msg: msg}
}

func (e *appError) Error() string {
	return e.msg
}

func (e *appError) Unwrap() error {
	return e.kind
}

// Validation 建立一個屬於 ErrValidation 的錯誤
func Validation(msg string) error {
	return newError(ErrValidation, msg)
}
