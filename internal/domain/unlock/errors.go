package unlock

import "errors"

// ErrListingNotFound covers missing listings and listings that are not
// approved for unlocking.
var ErrListingNotFound = errors.New("listing unavailable")
