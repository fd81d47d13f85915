package middleware

import "errors"

var errTooManyRequests = errors.New("too many requests")
