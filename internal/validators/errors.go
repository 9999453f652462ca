package validators

import "errors"

var (
	ErrUnsupportedType = errors.New("unsupported type for validation")
	ErrUnknownField    = errors.New("unknown field for validation")

	ErrInvalidRecord   = errors.New("record does not match schema")
	ErrEmptyRecordID   = errors.New("record id is required")
	ErrTemporaryID     = errors.New("temporary record id cannot be sent to the server")
	ErrInvalidLastEdit = errors.New("lastEditTimestamp must be positive")
	ErrEmptyLogin      = errors.New("login is required")
	ErrEmptyPassword   = errors.New("password is required")
)
