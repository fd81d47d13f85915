package auth

import "errors"

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrAccountDisabled is distinct from bad credentials: the password
	// matched but the account is switched off.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrAccountLocked implies a retry-after hint at the boundary.
	ErrAccountLocked = errors.New("account locked")
)
