package payment

import "errors"

var (
	ErrInvalidSignature    = errors.New("payment verification failed")
	ErrOrderNotFound       = errors.New("payment order not found")
	ErrInvalidTokens       = errors.New("invalid token quantity")
	ErrAmountMismatch      = errors.New("captured amount does not match order")
	ErrProviderUnavailable = errors.New("payment provider unavailable")
)
