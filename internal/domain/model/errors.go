package model

import "errors"

// Sentinel kinds shared across the geometry pipeline.
var (
	// ErrDataShape marks a missing column or a value the pipeline cannot index.
	ErrDataShape = errors.New("data shape error")
	// ErrEmptyInput marks a dataset without individuals.
	ErrEmptyInput = errors.New("empty input")
)
