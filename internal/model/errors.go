package model

import "errors"

var (
	// ErrConfiguration reports an unknown source preset, an incomplete column
	// mapping or a theme that lacks a referenced color or trace skeleton.
	ErrConfiguration = errors.New("configuration error")
	// ErrTypeMismatch reports an option value of the wrong shape.
	ErrTypeMismatch = errors.New("type mismatch")
	// ErrUnsupportedOption reports an unknown option key or value.
	ErrUnsupportedOption = errors.New("unsupported option")
	// ErrInsufficientData reports columns missing for the requested operation.
	ErrInsufficientData = errors.New("insufficient data")
	// ErrTierConflict reports an indicator name already registered in the other tier.
	ErrTierConflict = errors.New("indicator tier conflict")
)
