package workplace

import "errors"

var (
	ErrNotFound      = errors.New("workplace not found")
	ErrDuplicateCode = errors.New("workplace code already in use")
	ErrValidation    = errors.New("invalid workplace")
	ErrInUse         = errors.New("workplace has assignments")
)
