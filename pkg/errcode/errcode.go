package errcode

import "fmt"

// Error represents a business error
type Error struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("errcode: %d, msg: %s", e.Code, e.Msg)
}

// New creates a new error with code and message
func New(code int, msg string) *Error {
	return &Error{Code: code, Msg: msg}
}

// Wrap wraps an error with additional context
func (e *Error) Wrap(err error) *Error {
	if err == nil {
		return e
	}
	return &Error{
		Code: e.Code,
		Msg:  fmt.Sprintf("%s: %v", e.Msg, err),
	}
}

// Common error codes
var (
	// Success
	ErrSuccess = New(0, "success")

	// Common errors (1xxx)
	ErrInvalidParam    = New(1001, "invalid parameter")
	ErrInternalServer  = New(1002, "internal server error")
	ErrUnauthorized    = New(1003, "unauthorized")
	ErrForbidden       = New(1004, "forbidden")
	ErrNotFound        = New(1005, "not found")
	ErrTooManyRequests = New(1006, "too many requests")
	ErrNoPermission    = New(1007, "no permission to access this resource")

	// Auth errors (2xxx)
	ErrTokenInvalid    = New(2001, "token invalid")
	ErrTokenExpired    = New(2002, "token expired")
	ErrTokenMissing    = New(2003, "token missing")
	ErrTokenMismatch   = New(2004, "token account mismatch")
	ErrLoginFailed     = New(2005, "login failed")
	ErrAccountNotFound = New(2006, "account not found")
	ErrAccountExists   = New(2007, "account already exists")
	ErrPasswordWrong   = New(2008, "password wrong")

	// Identity errors (3xxx)
	ErrNoArtistProfile = New(3001, "account has no artist profile")
	ErrSelfTarget      = New(3002, "cannot target your own artist profile")
	ErrArtistNotFound  = New(3003, "artist profile not found")
	ErrArtistExists    = New(3004, "account already has an artist profile")
	ErrIdentityInvalid = New(3005, "identity does not belong to acting account")

	// Conversation errors (4xxx)
	ErrConvNotFound = New(4001, "conversation not found")
	ErrConvConflict = New(4002, "conversation with this signature already exists")
	ErrIntegrity    = New(4003, "duplicate conversations for one signature")

	// Message errors (5xxx)
	ErrMessageNotFound    = New(5001, "message not found")
	ErrEmptyMessage       = New(5002, "text message requires text")
	ErrAttachmentRequired = New(5003, "message type requires an attachment")
	ErrSendFailed         = New(5004, "message send failed")
)
