package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrInvalidAddress = errors.New("invalid address")
	ErrUpstream       = errors.New("upstream unavailable")
	ErrMalformed      = errors.New("upstream payload malformed")
)
