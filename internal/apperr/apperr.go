package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies a failure so callers can react without parsing messages.
type Kind string

const (
	KindNotFound     Kind = "NOT_FOUND"
	KindSlotOccupied Kind = "SLOT_OCCUPIED"
	KindMatchFull    Kind = "MATCH_FULL"
	KindUnauthorized Kind = "UNAUTHORIZED"
	KindForbidden    Kind = "FORBIDDEN"
	KindValidation   Kind = "VALIDATION_ERROR"
	KindInvalidState Kind = "INVALID_STATE"
	KindNotInvited   Kind = "NOT_INVITED"
	KindPlayerBusy   Kind = "PLAYER_BUSY"
	KindInternal     Kind = "INTERNAL"
)

// Error is a typed failure surfaced to callers of the engine and registries.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	switch {
	case e.Msg == "" && e.Err == nil:
		return string(e.Kind)
	case e.Err == nil:
		return e.Msg
	case e.Msg == "":
		return e.Err.Error()
	default:
		return e.Msg + ": " + e.Err.Error()
	}
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is a sentinel of the same kind. A sentinel is an
// *Error without message, so errors.Is(err, ErrMatchFull) matches every
// MATCH_FULL failure.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Msg == "" && t.Err == nil && t.Kind == e.Kind
}

var (
	ErrNotFound     = &Error{Kind: KindNotFound}
	ErrSlotOccupied = &Error{Kind: KindSlotOccupied}
	ErrMatchFull    = &Error{Kind: KindMatchFull}
	ErrUnauthorized = &Error{Kind: KindUnauthorized}
	ErrForbidden    = &Error{Kind: KindForbidden}
	ErrValidation   = &Error{Kind: KindValidation}
	ErrInvalidState = &Error{Kind: KindInvalidState}
	ErrNotInvited   = &Error{Kind: KindNotInvited}
	ErrPlayerBusy   = &Error{Kind: KindPlayerBusy}
)

func newf(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

func NotFound(format string, args ...any) error     { return newf(KindNotFound, format, args...) }
func SlotOccupied(format string, args ...any) error { return newf(KindSlotOccupied, format, args...) }
func MatchFull(format string, args ...any) error    { return newf(KindMatchFull, format, args...) }
func Unauthorized(format string, args ...any) error { return newf(KindUnauthorized, format, args...) }
func Forbidden(format string, args ...any) error    { return newf(KindForbidden, format, args...) }
func Validation(format string, args ...any) error   { return newf(KindValidation, format, args...) }
func InvalidState(format string, args ...any) error { return newf(KindInvalidState, format, args...) }
func NotInvited(format string, args ...any) error   { return newf(KindNotInvited, format, args...) }
func PlayerBusy(format string, args ...any) error   { return newf(KindPlayerBusy, format, args...) }

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}
