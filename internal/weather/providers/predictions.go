package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/weather"
)

const predictionsPath = "/api/ml_data/pred/"

// PredictionsClient implements weather.PredictionSource against the prediction endpoint.
type PredictionsClient struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewPredictionsClient(client *http.Client, baseURL string, backoff BackoffConfig, log *zap.Logger) *PredictionsClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &PredictionsClient{
		name:    "predictions",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:  client,
			Backoff: backoff,
		},
		circuit: newCircuitBreaker("predictions"),
		log:     log.Named("predictions"),
	}
}

func (p *PredictionsClient) Name() string {
	return p.name
}

type predictionPayload struct {
	Name      string        `json:"name"`
	Latitude  weather.Value `json:"latitude"`
	Longitude weather.Value `json:"longitude"`
	Year      int           `json:"year"`
	Month     int           `json:"month"`
	Day       int           `json:"day"`
	Date      string        `json:"date"`

	PredictedPrecip  weather.Value `json:"predicted_precip"`
	PredictedTempMax weather.Value `json:"predicted_temp_max"`
	PredictedTempMin weather.Value `json:"predicted_temp_min"`
	ActualPrecip     weather.Value `json:"actual_precip"`
	ActualTempMax    weather.Value `json:"actual_temp_max"`
	ActualTempMin    weather.Value `json:"actual_temp_min"`
}

// date prefers the date string and falls back to the year/month/day columns.
func (p predictionPayload) date() (weather.Date, bool) {
	if d, err := weather.ParseDate(p.Date); err == nil {
		return d, true
	}
	if p.Year > 0 && p.Month >= 1 && p.Month <= 12 && p.Day >= 1 && p.Day <= 31 {
		return weather.NewDate(p.Year, time.Month(p.Month), p.Day), true
	}
	return weather.Date{}, false
}

// FetchPredictions pulls every prediction record, keyed by station name.
// A status of "error" and an empty station map are both reported as failures.
func (p *PredictionsClient) FetchPredictions(ctx context.Context) (map[string][]weather.StationRecord, error) {
	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, newGetRequest(p.baseURL, predictionsPath))
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Status   string                     `json:"status"`
		Message  string                     `json:"message"`
		Stations map[string]json.RawMessage `json:"stations"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: %v", weather.ErrMalformedResponse, err)
	}

	if payload.Status == "error" {
		msg := payload.Message
		if msg == "" {
			msg = "error from server"
		}
		return nil, fmt.Errorf("%w: %s", weather.ErrUpstream, msg)
	}
	if len(payload.Stations) == 0 {
		return nil, weather.ErrNoStations
	}

	stations := make(map[string][]weather.StationRecord, len(payload.Stations))
	for name, raw := range payload.Stations {
		var rows []predictionPayload
		if err := json.Unmarshal(raw, &rows); err != nil {
			p.log.Warn("skipping station with unexpected record shape",
				zap.String("station", name), zap.Error(err))
			continue
		}

		records := make([]weather.StationRecord, 0, len(rows))
		for _, row := range rows {
			date, ok := row.date()
			if !ok {
				continue
			}
			records = append(records, weather.StationRecord{
				Station:   name,
				Latitude:  row.Latitude.Or(0),
				Longitude: row.Longitude.Or(0),
				Date:      date,
				Actual: weather.Metrics{
					TempMax: row.ActualTempMax,
					TempMin: row.ActualTempMin,
					Precip:  row.ActualPrecip,
				},
				Predicted: weather.Metrics{
					TempMax: row.PredictedTempMax,
					TempMin: row.PredictedTempMin,
					Precip:  row.PredictedPrecip,
				},
			})
		}
		stations[name] = records
	}

	if len(stations) == 0 {
		return nil, weather.ErrNoStations
	}
	return stations, nil
}
