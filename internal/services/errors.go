package services

import "errors"

// Error taxonomy for the regression engine. Callers classify failures with
// errors.Is; every error returned by the engine wraps exactly one of these.
var (
	// ErrInsufficientData: the series is shorter than the minimum points
	// the requested model family needs (2 for linear fits, 3 for the
	// degree-2 polynomial).
	ErrInsufficientData = errors.New("insufficient data for fit")

	// ErrNonPositivePrice: a non-positive price was fed to a log-domain
	// model family.
	ErrNonPositivePrice = errors.New("non-positive price in log-domain model")

	// ErrSingularFit: the fit is numerically singular, e.g. a
	// zero-variance independent variable.
	ErrSingularFit = errors.New("singular fit")

	// ErrComputation: downstream arithmetic failure, e.g. a zero or NaN
	// trend value when computing a deviation percentage.
	ErrComputation = errors.New("computation failed")
)
