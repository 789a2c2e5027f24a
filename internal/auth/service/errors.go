package service

import "errors"

var (
	// ErrAuthenticationFailed covers every credential miss: unknown login,
	// wrong password, disabled account. Callers never learn which.
	ErrAuthenticationFailed = errors.New("authentication_failed")

	ErrAccountExists        = errors.New("account_exists")
	ErrCannotCreateAccount  = errors.New("cannot_create_account")
	ErrWrongCurrentPassword = errors.New("wrong_current_password")
	ErrPasswordRejected     = errors.New("password_rejected")
	ErrAccessDenied         = errors.New("access_denied")
	ErrInvalidInput         = errors.New("invalid_input")
	ErrNotFound             = errors.New("not_found")
)
