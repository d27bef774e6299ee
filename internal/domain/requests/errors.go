package requests

import "errors"

var (
	// ErrAlreadyProcessed marks a decision attempted on a request whose
	// status already left PENDING. Informational, not fatal: the caller
	// should refresh its view of the request.
	ErrAlreadyProcessed = errors.New("request already processed")

	ErrNotFound   = errors.New("request not found")
	ErrValidation = errors.New("invalid request data")
)
