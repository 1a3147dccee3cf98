package domain

import "errors"

var (
	// ErrNetwork covers transport failures: dial, TLS, timeout, reset.
	ErrNetwork = errors.New("market data: network error")
	// ErrAPI covers non-2xx answers and bodies that do not decode.
	ErrAPI = errors.New("market data: api error")
	// ErrPartialRecord marks a single record the normalizer had to drop.
	ErrPartialRecord = errors.New("market data: unusable record")
	// ErrEmptyDataset is returned when a cycle has no usable records.
	ErrEmptyDataset = errors.New("market data: empty dataset")
	// ErrSinkWrite wraps filesystem failures while publishing.
	ErrSinkWrite = errors.New("sink: write failed")
)
