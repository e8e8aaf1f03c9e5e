package admin

import "errors"

var (
	ErrUnknownOperation = errors.New("unknown wallet operation")
	ErrSelfDisable      = errors.New("admins cannot disable their own account")
)
