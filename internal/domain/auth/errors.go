package auth

import "errors"

var (
	ErrPhoneAlreadyExists   = errors.New("phone already registered")
	ErrInvalidCredentials   = errors.New("invalid phone or password")
	ErrInvalidRole          = errors.New("invalid role, must be 'buyer', 'seller' or 'broker'")
	ErrInvalidRefreshToken  = errors.New("invalid or expired refresh token")
	ErrUserNotFound         = errors.New("user not found")
	ErrRefreshTokenRequired = errors.New("refresh token is required")
	ErrUserDisabled         = errors.New("account is disabled")
)
