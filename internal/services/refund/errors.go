package refund

import "errors"

var (
	ErrInvalidAmount     = errors.New("invalid refund amount")
	ErrInvalidStatus     = errors.New("invalid refund status")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrMissingUTR        = errors.New("settling a refund requires a UTR reference")
	ErrEmptyBatch        = errors.New("import batch is empty")
)
