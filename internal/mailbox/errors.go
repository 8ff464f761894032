package mailbox

import (
	"errors"
	"fmt"
)

// Kind groups errors by how the caller should react to them.
type Kind int

const (
	KindValidation Kind = iota + 1
	KindNotFound
	KindConflict
	KindTransport
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindTransport:
		return "transport"
	}
	return "unknown"
}

// Error codes surfaced to clients.
const (
	CodeMissingInfo      = "missing_info"
	CodeNoRecipients     = "no_recipients"
	CodeUnknownRecipient = "unknown_recipient"
	CodeInvalidSchedule  = "invalid_schedule"
	CodeInvalidDraft     = "invalid_draft"
	CodeInvalidTab       = "invalid_tab"
	CodeNotSignable      = "not_signable"
	CodeMessageNotFound  = "message_not_found"
	CodeConflict         = "conflict"
	CodeBackend          = "backend_unavailable"
)

var (
	ErrMissingInfo      = errors.New("title and message are required")
	ErrNoRecipients     = errors.New("select at least one recipient")
	ErrUnknownRecipient = errors.New("unknown recipient")
	ErrInvalidSchedule  = errors.New("invalid schedule")
	ErrInvalidDraft     = errors.New("invalid draft")
	ErrInvalidTab       = errors.New("invalid tab")
	ErrNotSignable      = errors.New("only mandatory reading can be signed off")
	ErrNotFound         = errors.New("message not found")
	ErrConflict         = errors.New("conflicting update")
	ErrTransport        = errors.New("backend unavailable")
)

// Error is the single error type returned by mailbox operations.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil && e.Message == "" {
		return e.Err.Error()
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func validationError(code string, sentinel error, format string, args ...any) *Error {
	msg := sentinel.Error()
	if format != "" {
		msg = fmt.Sprintf(format, args...)
	}
	return &Error{Kind: KindValidation, Code: code, Message: msg, Err: sentinel}
}

func notFound(id string) *Error {
	return &Error{
		Kind:    KindNotFound,
		Code:    CodeMessageNotFound,
		Message: fmt.Sprintf("message %s not found", id),
		Err:     ErrNotFound,
	}
}

// transportError wraps a repository failure so it can't be confused with a
// missing message.
func transportError(op string, err error) *Error {
	return &Error{
		Kind:    KindTransport,
		Code:    CodeBackend,
		Message: ErrTransport.Error(),
		Err:     fmt.Errorf("%s: %w: %w", op, ErrTransport, err),
	}
}

func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}

func IsValidation(err error) bool { return KindOf(err) == KindValidation }
func IsNotFound(err error) bool   { return KindOf(err) == KindNotFound }
func IsConflict(err error) bool   { return KindOf(err) == KindConflict }
func IsTransport(err error) bool  { return KindOf(err) == KindTransport }
