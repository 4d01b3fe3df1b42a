package weather

import (
	"cmp"
	"fmt"
	"slices"
)

// CitySeries returns one point per reading of city within sel, ordered by date.
// Readings from several stations on the same date are all kept.
//
// ErrUnknownCity is returned for a city that is not tracked; ErrNoData when the
// selection holds no reading of the city.
func CitySeries(readings []RawReading, city City, sel DateSelector) ([]DailyReading, error) {
	if !city.Known() {
		return nil, fmt.Errorf("%w: %s", ErrUnknownCity, city)
	}

	series := collectSeries(readings, sel, func(r RawReading) bool {
		return ResolveCity(r.Station) == city
	})
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoData, city, sel)
	}
	return series, nil
}

// StationSeries returns the readings of one station within sel, ordered by date.
//
// ErrUnknownStation is returned when the station never appears in readings;
// ErrNoData when it does but not within sel.
func StationSeries(readings []RawReading, station string, sel DateSelector) ([]DailyReading, error) {
	known := slices.ContainsFunc(readings, func(r RawReading) bool {
		return r.Station == station
	})
	if !known {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStation, station)
	}

	series := collectSeries(readings, sel, func(r RawReading) bool {
		return r.Station == station
	})
	if len(series) == 0 {
		return nil, fmt.Errorf("%w: %s %s", ErrNoData, station, sel)
	}
	return series, nil
}

func collectSeries(readings []RawReading, sel DateSelector, match func(RawReading) bool) []DailyReading {
	var series []DailyReading
	for _, r := range readings {
		if !sel.Contains(r.Date) || !match(r) {
			continue
		}
		series = append(series, DailyReading{
			Station: r.Station,
			Date:    r.Date,
			TMax:    r.TMax,
			TMin:    r.TMin,
			Prcp:    r.Prcp,
		})
	}
	slices.SortStableFunc(series, func(a, b DailyReading) int {
		return a.Date.Compare(b.Date)
	})
	return series
}

// Stations lists every station present in readings, ordered by name. HasData
// tells whether the station has a reading within sel; with a nil sel it is true
// for every listed station. Coordinates come from the station's first reading.
func Stations(readings []RawReading, sel *DateSelector) []Station {
	index := make(map[string]int)
	var out []Station
	for _, r := range readings {
		i, ok := index[r.Station]
		if !ok {
			i = len(out)
			index[r.Station] = i
			out = append(out, Station{
				Name:      r.Station,
				City:      ResolveCity(r.Station),
				Latitude:  r.Latitude,
				Longitude: r.Longitude,
			})
		}
		if sel == nil || sel.Contains(r.Date) {
			out[i].HasData = true
		}
	}

	slices.SortFunc(out, func(a, b Station) int {
		return cmp.Compare(a.Name, b.Name)
	})
	return out
}
