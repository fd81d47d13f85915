package captcha

import "errors"

var ErrValidationFailed = errors.New("captcha validation failed")
