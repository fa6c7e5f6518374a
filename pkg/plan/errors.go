package plan

import "errors"

var (
	ErrUnknownPlan          = errors.New("unknown subscription plan")
	ErrInvalidConfiguration = errors.New("invalid plan configuration")
)
