package weather

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ServiceConfig controls how the Service obtains data.
type ServiceConfig struct {
	// FetchOnRequest pulls the full data set from the store before every query.
	// When false, queries read whatever the last refresh committed.
	FetchOnRequest bool

	Aggregation Options
}

// Service fetches readings and predictions and runs the aggregation functions
// over them.
type Service struct {
	store       Store
	readings    ReadingSource
	predictions PredictionSource
	cfg         ServiceConfig
	log         *zap.Logger
	now         func() time.Time
}

// NewService creates a new Service.
func NewService(store Store, readings ReadingSource, predictions PredictionSource, cfg ServiceConfig, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:       store,
		readings:    readings,
		predictions: predictions,
		cfg:         cfg,
		log:         log.Named("weather"),
		now:         func() time.Time { return time.Now().UTC() },
	}
}

// Options returns the aggregation options in use.
func (s *Service) Options() Options {
	return s.cfg.Aggregation
}

// RefreshReadings pulls every reading from the reading store and commits it.
// A response that completes after a newer one is discarded; the returned
// Dataset is always the newest committed one.
func (s *Service) RefreshReadings(ctx context.Context) (Dataset, error) {
	if s.readings == nil {
		return Dataset{}, fmt.Errorf("no reading source configured")
	}

	seq := s.store.NextSeq()
	readings, err := s.readings.FetchReadings(ctx)
	if err != nil {
		s.log.Error("reading fetch failed",
			zap.String("source", s.readings.Name()),
			zap.Uint64("seq", seq),
			zap.Error(err))
		return Dataset{}, err
	}

	ds := Dataset{
		ID:        uuid.NewString(),
		Seq:       seq,
		FetchedAt: s.now(),
		Readings:  readings,
	}
	if s.store.SaveReadings(ds) {
		s.log.Debug("committed readings",
			zap.String("dataset", ds.ID),
			zap.Uint64("seq", seq),
			zap.Int("readings", len(readings)))
	} else {
		s.log.Info("discarding stale readings response", zap.Uint64("seq", seq))
	}

	return s.store.LatestReadings()
}

// RefreshPredictions is RefreshReadings for the prediction store.
func (s *Service) RefreshPredictions(ctx context.Context) (PredictionSet, error) {
	if s.predictions == nil {
		return PredictionSet{}, fmt.Errorf("no prediction source configured")
	}

	seq := s.store.NextSeq()
	stations, err := s.predictions.FetchPredictions(ctx)
	if err != nil {
		s.log.Error("prediction fetch failed",
			zap.String("source", s.predictions.Name()),
			zap.Uint64("seq", seq),
			zap.Error(err))
		return PredictionSet{}, err
	}

	ps := PredictionSet{
		ID:        uuid.NewString(),
		Seq:       seq,
		FetchedAt: s.now(),
		Stations:  stations,
	}
	if s.store.SavePredictions(ps) {
		s.log.Debug("committed predictions",
			zap.String("dataset", ps.ID),
			zap.Uint64("seq", seq),
			zap.Int("stations", len(stations)))
	} else {
		s.log.Info("discarding stale predictions response", zap.Uint64("seq", seq))
	}

	return s.store.LatestPredictions()
}

// Refresh refreshes readings and predictions. Both are attempted even if one fails.
func (s *Service) Refresh(ctx context.Context) error {
	_, rerr := s.RefreshReadings(ctx)
	_, perr := s.RefreshPredictions(ctx)
	return errors.Join(rerr, perr)
}

func (s *Service) currentReadings(ctx context.Context) (Dataset, error) {
	if s.cfg.FetchOnRequest {
		return s.RefreshReadings(ctx)
	}
	return s.store.LatestReadings()
}

func (s *Service) currentPredictions(ctx context.Context) (PredictionSet, error) {
	if s.cfg.FetchOnRequest {
		return s.RefreshPredictions(ctx)
	}
	return s.store.LatestPredictions()
}

// Summaries returns the per-city summaries for sel in canonical city order.
// An empty slice means no city had data; it is not an error.
func (s *Service) Summaries(ctx context.Context, sel DateSelector) ([]CitySummary, Dataset, error) {
	ds, err := s.currentReadings(ctx)
	if err != nil {
		return nil, Dataset{}, err
	}
	return Summaries(ds.Readings, sel, s.cfg.Aggregation), ds, nil
}

// CityBreakdown returns the day-by-day readings of city within sel.
func (s *Service) CityBreakdown(ctx context.Context, city City, sel DateSelector) ([]DailyReading, Dataset, error) {
	ds, err := s.currentReadings(ctx)
	if err != nil {
		return nil, Dataset{}, err
	}
	series, err := CitySeries(ds.Readings, city, sel)
	return series, ds, err
}

// StationBreakdown returns the day-by-day readings of one station within sel.
func (s *Service) StationBreakdown(ctx context.Context, station string, sel DateSelector) ([]DailyReading, Dataset, error) {
	ds, err := s.currentReadings(ctx)
	if err != nil {
		return nil, Dataset{}, err
	}
	series, err := StationSeries(ds.Readings, station, sel)
	return series, ds, err
}

// Stations lists the known stations and whether each has data for sel.
func (s *Service) Stations(ctx context.Context, sel *DateSelector) ([]Station, Dataset, error) {
	ds, err := s.currentReadings(ctx)
	if err != nil {
		return nil, Dataset{}, err
	}
	return Stations(ds.Readings, sel), ds, nil
}

// Chart builds the comparison chart of kind, restricted to sel when non-nil.
func (s *Service) Chart(ctx context.Context, kind string, sel *DateSelector) (Chart, PredictionSet, error) {
	spec, err := LookupChart(kind)
	if err != nil {
		return Chart{}, PredictionSet{}, err
	}

	ps, err := s.currentPredictions(ctx)
	if err != nil {
		return Chart{}, PredictionSet{}, err
	}
	return BuildChart(spec, GroupByCity(ps.Stations), sel), ps, nil
}
