package core

import "errors"

// Computation errors
var (
	ErrInsufficientData = errors.New("insufficient data for analysis")
	ErrZeroMean         = errors.New("mean is zero")
	ErrZeroSpread       = errors.New("interquartile range is zero")
	ErrNonFinite        = errors.New("result is not finite")
	ErrUnsortable       = errors.New("column mixes incomparable value kinds")
)
