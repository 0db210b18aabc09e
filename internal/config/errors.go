package config

import "errors"

// Load and validation failures; wrapped with the offending key or path.
var (
	ErrInvalidConfig = errors.New("invalid config")
	ErrLoadConfig    = errors.New("load config failed")
)
