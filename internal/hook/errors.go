package hook

import "errors"

var (
	ErrNullPointer     = errors.New("null pointer")
	ErrBadAddress      = errors.New("unreadable address")
	ErrStringTooLong   = errors.New("string too long")
	ErrArgOutOfRange   = errors.New("argument index out of range")
	ErrUnknownTarget   = errors.New("no function registered at target")
	ErrAlreadyAttached = errors.New("target already has a detour")
	ErrNotAttached     = errors.New("target has no detour")
	ErrTxnClosed       = errors.New("transaction already committed or aborted")
)
