package weather

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/i474232898/weather-dashboard/internal/common"
)

const (
	// dateLayout accepts both 2021-06-01 and 2021-6-1.
	dateLayout    = "2006-1-2"
	dateISOLayout = "2006-01-02"
)

// Date is a calendar date without a time component.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate returns the normalized date for y-m-d (2021-02-30 becomes 2021-03-02).
func NewDate(y int, m time.Month, d int) Date {
	return DateOf(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar date of t in t's location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// ParseDate parses YYYY-MM-DD. Non-padded month and day are accepted.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return DateOf(t), nil
}

// MustParseDate is like ParseDate but panics on error. Intended for tests and constants.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of d.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

func (d Date) String() string {
	return d.Time().Format(dateISOLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("date must be a string: %w", err)
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// Value is an optional measurement. A Value that is not Valid means "no value".
type Value struct {
	Float float64
	Valid bool
}

// Some returns a valid Value holding f.
func Some(f float64) Value {
	return Value{Float: f, Valid: true}
}

// Or returns the measurement, or def when there is none.
func (v Value) Or(def float64) float64 {
	if !v.Valid {
		return def
	}
	return v.Float
}

// MarshalJSON writes null for no value and for non-finite floats, which JSON
// cannot carry.
func (v Value) MarshalJSON() ([]byte, error) {
	if !v.Valid || math.IsNaN(v.Float) || math.IsInf(v.Float, 0) {
		return []byte("null"), nil
	}
	return []byte(strconv.FormatFloat(v.Float, 'f', -1, 64)), nil
}

// UnmarshalJSON accepts numbers, numeric strings and null. Anything else decodes
// to "no value" instead of failing the whole payload.
func (v *Value) UnmarshalJSON(b []byte) error {
	*v = Value{}

	b = bytes.TrimSpace(b)
	if len(b) == 0 || bytes.Equal(b, []byte("null")) {
		return nil
	}

	raw := string(b)
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return nil
		}
		raw = s
	}

	if f, ok := common.ParseNumber(raw); ok {
		*v = Some(f)
	}
	return nil
}

// RawReading is one station's recorded values for one calendar day.
type RawReading struct {
	Station   string  `json:"name"`
	Date      Date    `json:"date"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	TMax      Value   `json:"tmax"` // degrees Fahrenheit
	TMin      Value   `json:"tmin"` // degrees Fahrenheit
	Prcp      Value   `json:"prcp"` // inches
}

// CitySummary is the average of one or more readings for a city over a date
// or a date window. It is never mutated after construction.
type CitySummary struct {
	City City  `json:"city"`
	TMax Value `json:"tmax"`
	TMin Value `json:"tmin"`
	Prcp Value `json:"prcp"`

	// Days is the number of distinct dates folded into the summary.
	Days int `json:"days"`
	// Readings is the number of raw readings that matched.
	Readings int `json:"readings"`
}

// DailyReading is one point of a per-station or per-city time series.
type DailyReading struct {
	Station string `json:"station"`
	Date    Date   `json:"date"`
	TMax    Value  `json:"tmax"`
	TMin    Value  `json:"tmin"`
	Prcp    Value  `json:"prcp"`
}

// Station describes a weather station as seen in the readings.
type Station struct {
	Name      string  `json:"name"`
	City      City    `json:"city"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	HasData   bool    `json:"hasData"`
}

// Metrics groups the three measurements carried by a prediction record.
type Metrics struct {
	TempMax Value `json:"tempMax"`
	TempMin Value `json:"tempMin"`
	Precip  Value `json:"precip"`
}

// StationRecord is one prediction-store entry: actual and predicted values
// for a station on a date.
type StationRecord struct {
	Station   string  `json:"station"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Date      Date    `json:"date"`
	Actual    Metrics `json:"actual"`
	Predicted Metrics `json:"predicted"`
}

// Field names a single numeric column of a StationRecord.
type Field string

const (
	FieldActualTempMax    Field = "actual_temp_max"
	FieldActualTempMin    Field = "actual_temp_min"
	FieldActualPrecip     Field = "actual_precip"
	FieldPredictedTempMax Field = "predicted_temp_max"
	FieldPredictedTempMin Field = "predicted_temp_min"
	FieldPredictedPrecip  Field = "predicted_precip"
)

// Field returns the value of f, or no value for an unknown field.
func (r StationRecord) Field(f Field) Value {
	switch f {
	case FieldActualTempMax:
		return r.Actual.TempMax
	case FieldActualTempMin:
		return r.Actual.TempMin
	case FieldActualPrecip:
		return r.Actual.Precip
	case FieldPredictedTempMax:
		return r.Predicted.TempMax
	case FieldPredictedTempMin:
		return r.Predicted.TempMin
	case FieldPredictedPrecip:
		return r.Predicted.Precip
	default:
		return Value{}
	}
}

// Dataset is one complete pull of the reading store.
type Dataset struct {
	ID        string       `json:"id"`
	Seq       uint64       `json:"seq"`
	FetchedAt time.Time    `json:"fetchedAt"`
	Readings  []RawReading `json:"-"`
}

// PredictionSet is one complete pull of the prediction store, keyed by station name.
type PredictionSet struct {
	ID        string                     `json:"id"`
	Seq       uint64                     `json:"seq"`
	FetchedAt time.Time                  `json:"fetchedAt"`
	Stations  map[string][]StationRecord `json:"-"`
}
