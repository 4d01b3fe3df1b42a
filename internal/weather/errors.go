package weather

import "errors"

var (
	// ErrNoData is returned when a query matched no readings. It is an empty
	// result, not a failure of the data source.
	ErrNoData = errors.New("no data available for the selection")

	ErrUnknownCity    = errors.New("unknown city")
	ErrUnknownStation = errors.New("unknown station")
	ErrUnknownChart   = errors.New("unknown chart")
	ErrInvalidRange   = errors.New("invalid date range")

	// ErrMalformedResponse is returned when a store response lacks an expected key.
	ErrMalformedResponse = errors.New("malformed response from data store")
	// ErrNoStations is returned when the prediction store reports no stations.
	ErrNoStations = errors.New("no weather station data available")
	// ErrUpstream is returned when a store reports an error status.
	ErrUpstream = errors.New("data store reported an error")
)
