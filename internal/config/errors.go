package config

import (
	"errors"
)

// Sentinel error kinds returned by Validate and Load.
var (
	// ErrInvalidConfig marks a setting outside its allowed range.
	ErrInvalidConfig = errors.New("invalid biofitviz config")
	// ErrLoadConfig marks an unreadable config file or an env value of the wrong type.
	ErrLoadConfig = errors.New("load biofitviz config")
)
