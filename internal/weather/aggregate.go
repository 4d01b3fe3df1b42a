package weather

import (
	"fmt"
	"slices"
	"strings"
)

// MissingPolicy decides how an absent or unparseable measurement is averaged.
type MissingPolicy int

const (
	// MissingSkip leaves the measurement out of that field's mean entirely.
	MissingSkip MissingPolicy = iota
	// MissingZero folds the measurement into the mean as 0.
	MissingZero
)

func (p MissingPolicy) String() string {
	switch p {
	case MissingZero:
		return "zero"
	default:
		return "skip"
	}
}

// ParseMissingPolicy parses "skip" or "zero".
func ParseMissingPolicy(s string) (MissingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return MissingSkip, nil
	case "zero":
		return MissingZero, nil
	default:
		return MissingSkip, fmt.Errorf("unknown missing value policy %q (want skip or zero)", s)
	}
}

// Options tunes the averaging functions. The zero value is ready to use.
type Options struct {
	Missing MissingPolicy
}

// runningMean keeps an arithmetic mean without holding a sum, so intermediate
// values stay in the same range as the readings.
type runningMean struct {
	mean float64
	n    int
}

// add moves the mean toward x by 1/(n+1) of the difference. Equivalent to
// (mean*n + x)/(n+1) without forming mean*n, which overflows near MaxFloat64.
func (m *runningMean) add(x float64) {
	m.mean += (x - m.mean) / float64(m.n+1)
	m.n++
}

func (m runningMean) value() Value {
	if m.n == 0 {
		return Value{}
	}
	return Some(m.mean)
}

func (o Options) fold(m *runningMean, v Value) {
	switch {
	case v.Valid:
		m.add(v.Float)
	case o.Missing == MissingZero:
		m.add(0)
	}
}

// dayFold is the running-mean summary of all readings of one city on one date.
type dayFold struct {
	date             Date
	tmax, tmin, prcp runningMean
	readings         int
}

// cityDays holds the daily folds of one city, keyed by date.
type cityDays map[Date]*dayFold

func (cd cityDays) add(r RawReading, opts Options) {
	f, ok := cd[r.Date]
	if !ok {
		f = &dayFold{date: r.Date}
		cd[r.Date] = f
	}
	opts.fold(&f.tmax, r.TMax)
	opts.fold(&f.tmin, r.TMin)
	opts.fold(&f.prcp, r.Prcp)
	f.readings++
}

// sorted returns the daily folds in ascending date order.
func (cd cityDays) sorted() []*dayFold {
	days := make([]*dayFold, 0, len(cd))
	for _, f := range cd {
		days = append(days, f)
	}
	slices.SortFunc(days, func(a, b *dayFold) int {
		return a.date.Compare(b.date)
	})
	return days
}

// summarize takes the grand mean of the daily means. Every day weighs the same,
// whatever the number of stations that reported on it.
func (cd cityDays) summarize(city City) (CitySummary, bool) {
	if len(cd) == 0 {
		return CitySummary{}, false
	}

	var tmax, tmin, prcp runningMean
	readings := 0
	for _, day := range cd.sorted() {
		if v := day.tmax.value(); v.Valid {
			tmax.add(v.Float)
		}
		if v := day.tmin.value(); v.Valid {
			tmin.add(v.Float)
		}
		if v := day.prcp.value(); v.Valid {
			prcp.add(v.Float)
		}
		readings += day.readings
	}

	return CitySummary{
		City:     city,
		TMax:     tmax.value(),
		TMin:     tmin.value(),
		Prcp:     prcp.value(),
		Days:     len(cd),
		Readings: readings,
	}, true
}

// groupByCity folds every reading that resolves to a known city accepted by keep
// and whose date lies within sel. Readings are visited in input order.
func groupByCity(readings []RawReading, sel DateSelector, keep func(City) bool, opts Options) map[City]cityDays {
	grouped := make(map[City]cityDays)
	for _, r := range readings {
		if !sel.Contains(r.Date) {
			continue
		}
		city := ResolveCity(r.Station)
		if !city.Known() || !keep(city) {
			continue
		}
		cd, ok := grouped[city]
		if !ok {
			cd = make(cityDays)
			grouped[city] = cd
		}
		cd.add(r, opts)
	}
	return grouped
}

// SingleDate averages every reading of city on exactly date d. It reports false
// when no reading matched; no zero-filled summary is ever produced.
func SingleDate(readings []RawReading, city City, d Date, opts Options) (CitySummary, bool) {
	return RangeAggregate(readings, city, On(d), opts)
}

// RangeAggregate summarises city over sel. Readings sharing a date are first
// folded into one daily mean; the summary is the mean of those daily means.
// It reports false when no reading of city falls within sel.
func RangeAggregate(readings []RawReading, city City, sel DateSelector, opts Options) (CitySummary, bool) {
	grouped := groupByCity(readings, sel, func(c City) bool { return c == city }, opts)
	return grouped[city].summarize(city)
}

// Summaries summarises every tracked city over sel. The result follows the
// canonical city order and omits cities without matching readings.
func Summaries(readings []RawReading, sel DateSelector, opts Options) []CitySummary {
	grouped := groupByCity(readings, sel, func(City) bool { return true }, opts)

	out := make([]CitySummary, 0, len(Cities))
	for _, city := range Cities {
		if s, ok := grouped[city].summarize(city); ok {
			out = append(out, s)
		}
	}
	return out
}
