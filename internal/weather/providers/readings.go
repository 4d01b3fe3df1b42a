package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const rawDataPath = "/api/raw-data/"

// ReadingsClient implements weather.ReadingSource against the raw-data endpoint.
type ReadingsClient struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewReadingsClient(client *http.Client, baseURL string, backoff BackoffConfig, log *zap.Logger) *ReadingsClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &ReadingsClient{
		name:    "raw-data",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("raw-data"),
		log:     log.Named("raw-data"),
	}
}

func (p *ReadingsClient) Name() string {
	return p.name
}

type rawReadingPayload struct {
	Date      string        `json:"date"`
	Name      string        `json:"name"`
	Latitude  weather.Value `json:"latitude"`
	Longitude weather.Value `json:"longitude"`
	TMax      weather.Value `json:"tmax"`
	TMin      weather.Value `json:"tmin"`
	Prcp      weather.Value `json:"prcp"`
}

// FetchReadings pulls every reading. A body without a raw_data key is
// reported as weather.ErrMalformedResponse. Rows with an unparseable date
// are skipped.
func (p *ReadingsClient) FetchReadings(ctx context.Context) ([]weather.RawReading, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, newGetRequest(p.baseURL, rawDataPath))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		RawData *[]rawReadingPayload `json:"raw_data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}
	if payload.RawData == nil {
		return nil, fmt.Errorf("%w: missing raw_data", weather.ErrMalformedResponse)
	}

	rows := *payload.RawData
	readings := make([]weather.RawReading, 0, len(rows))
	skipped := 0
	for _, row := range rows {
		date, err := weather.ParseDate(row.Date)
		if err != nil {
			skipped++
			continue
		}
		readings = append(readings, weather.RawReading{
			Station:   row.Name,
			Date:      date,
			Latitude:  row.Latitude.Or(0),
			Longitude: row.Longitude.Or(0),
			TMax:      row.TMax,
			TMin:      row.TMin,
			Prcp:      row.Prcp,
		})
	}

	if skipped > 0 {
		p.log.Warn("skipped readings with invalid dates", zap.Int("skipped", skipped))
	}

	return readings, nil
}
