package domain

import "errors"

var (
	// ErrDataUnavailable reports that the incident source could not be fetched or parsed.
	ErrDataUnavailable = errors.New("incident data unavailable")

	// ErrEmptyPartition reports a percentage computed over zero rows.
	ErrEmptyPartition = errors.New("empty partition")

	// ErrMalformedTime reports a TIME OCC value that is non-numeric or outside 0..2359.
	ErrMalformedTime = errors.New("malformed time value")

	// ErrInvalidInput reports an out-of-range prediction or filter parameter.
	ErrInvalidInput = errors.New("invalid input")

	// ErrClassifier reports a failed call to the prediction model endpoint.
	ErrClassifier = errors.New("classifier request failed")

	// ErrPredictorDisabled reports that no prediction model is configured.
	ErrPredictorDisabled = errors.New("predictor disabled")
)
