package ctrl

import "errors"

// ErrNotFound is returned when a resource is not found.
var ErrNotFound = errors.New("not found")

// ErrAlreadyExists is returned when a resource already exists.
var ErrAlreadyExists = errors.New("already exists")

// ErrInvalidSession is returned when a refresh token is unknown or already
// revoked; the caller must re-authenticate fully.
var ErrInvalidSession = errors.New("invalid session")

// ErrSessionExpired is returned when a refresh token is past its expiry.
// Distinguished from ErrInvalidSession for client messaging.
var ErrSessionExpired = errors.New("session expired")
