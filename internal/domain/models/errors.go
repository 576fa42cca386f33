package models

import "errors"

var (
	// ErrInsufficientData means a series is shorter than the minimum a
	// statistical computation needs. Callers recover locally with a
	// NEUTRAL/UNKNOWN result.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrModelNotFitted means predict/classify was called before fit.
	ErrModelNotFitted = errors.New("model not fitted")

	// ErrInvalidSnapshot means a snapshot carries missing or NaN fields.
	ErrInvalidSnapshot = errors.New("invalid snapshot")
)
