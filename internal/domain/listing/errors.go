package listing

import "errors"

var (
	ErrListingNotFound = errors.New("listing not found")
	ErrNotSeller       = errors.New("only sellers and brokers can post listings")
	ErrInvalidStatus   = errors.New("invalid listing status")
)
