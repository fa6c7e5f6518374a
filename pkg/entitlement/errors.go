package entitlement

import "errors"

var (
	ErrNotFound      = errors.New("entitlement not found")
	ErrInvalidPayer  = errors.New("invalid payer email")
	ErrStateConflict = errors.New("entitlement write conflict")
	ErrStorageFailed = errors.New("entitlement storage failed")
)
