package assessment

import "errors"

var (
	ErrUnknownForm     = errors.New("unknown assessment form")
	ErrInvalidFormData = errors.New("invalid form data")
	ErrFormIncomplete  = errors.New("form has incomplete required steps")
	ErrDraftNotFound   = errors.New("draft not found")
)
