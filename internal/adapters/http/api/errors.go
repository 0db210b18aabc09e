package api

import "errors"

// Sentinel kinds for API errors.
var (
	ErrInvalidSeason = errors.New("invalid season; must be an integer")
	ErrEncode        = errors.New("response could not be encoded")
)
