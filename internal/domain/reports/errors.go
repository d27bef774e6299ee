package reports

import "errors"

var (
	ErrNotFound   = errors.New("work report not found")
	ErrValidation = errors.New("invalid work report")
)
