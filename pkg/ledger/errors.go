package ledger

import "errors"

var (
	ErrEmptyKey      = errors.New("idempotency key is empty")
	ErrStorageFailed = errors.New("idempotency ledger storage failed")
)
