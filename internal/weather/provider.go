package weather

import "context"

// ReadingSource abstracts the remote store of raw daily station readings.
type ReadingSource interface {
	Name() string
	FetchReadings(ctx context.Context) ([]RawReading, error)
}

// PredictionSource abstracts the remote store of actual/predicted records,
// keyed by station name.
type PredictionSource interface {
	Name() string
	FetchPredictions(ctx context.Context) (map[string][]StationRecord, error)
}

// Store is the contract the in-memory store (and any future persistent store) must satisfy.
//
// NextSeq issues fetch sequence numbers. Save* commit a result only when its
// sequence is newer than the committed one and report whether it was applied.
type Store interface {
	NextSeq() uint64

	SaveReadings(ds Dataset) bool
	LatestReadings() (Dataset, error)

	SavePredictions(ps PredictionSet) bool
	LatestPredictions() (PredictionSet, error)
}
