package weather

import (
	"fmt"
	"slices"
	"strings"
)

// ChartKind identifies one of the actual-vs-predicted comparison charts.
type ChartKind string

const (
	ChartActual    ChartKind = "actual"
	ChartPredicted ChartKind = "predicted"
	ChartMaxTemp   ChartKind = "max_temp"
	ChartMinTemp   ChartKind = "min_temp"
	ChartPrecip    ChartKind = "precip"
)

// ChartSpec describes which pair of record fields a chart overlays.
type ChartSpec struct {
	Kind           ChartKind `json:"kind"`
	Title          string    `json:"title"`
	YAxis          string    `json:"yAxis"`
	Primary        Field     `json:"primary"`
	PrimaryLabel   string    `json:"primaryLabel"`
	Secondary      Field     `json:"secondary"`
	SecondaryLabel string    `json:"secondaryLabel"`
}

var chartSpecs = []ChartSpec{
	{
		Kind:           ChartActual,
		Title:          "Actual Weather Data By City",
		YAxis:          "Temperature (F)",
		Primary:        FieldActualTempMax,
		PrimaryLabel:   "Max",
		Secondary:      FieldActualTempMin,
		SecondaryLabel: "Min",
	},
	{
		Kind:           ChartPredicted,
		Title:          "Predicted Weather Data By City",
		YAxis:          "Temperature (F)",
		Primary:        FieldPredictedTempMax,
		PrimaryLabel:   "Max",
		Secondary:      FieldPredictedTempMin,
		SecondaryLabel: "Min",
	},
	{
		Kind:           ChartMaxTemp,
		Title:          "Max Temperature Comparison",
		YAxis:          "Max Temperature (F)",
		Primary:        FieldActualTempMax,
		PrimaryLabel:   "Actual Max Temp",
		Secondary:      FieldPredictedTempMax,
		SecondaryLabel: "Predicted Max Temp",
	},
	{
		Kind:           ChartMinTemp,
		Title:          "Min Temperature Comparison",
		YAxis:          "Min Temperature (F)",
		Primary:        FieldActualTempMin,
		PrimaryLabel:   "Actual Min Temp",
		Secondary:      FieldPredictedTempMin,
		SecondaryLabel: "Predicted Min Temp",
	},
	{
		Kind:           ChartPrecip,
		Title:          "Precipitation Comparison",
		YAxis:          "Precipitation (in)",
		Primary:        FieldActualPrecip,
		PrimaryLabel:   "Actual Precipitation",
		Secondary:      FieldPredictedPrecip,
		SecondaryLabel: "Predicted Precipitation",
	},
}

// ChartSpecs returns the chart catalogue in display order.
func ChartSpecs() []ChartSpec {
	return slices.Clone(chartSpecs)
}

// LookupChart returns the chart definition for kind.
func LookupChart(kind string) (ChartSpec, error) {
	for _, spec := range chartSpecs {
		if string(spec.Kind) == kind {
			return spec, nil
		}
	}
	return ChartSpec{}, fmt.Errorf("%w: %q", ErrUnknownChart, kind)
}

const fallbackColor = "#888888"

// palette maps a city token to its primary and secondary (lighter) colour.
var palette = map[string][2]string{
	"ASHEVILLE":  {"#ff0000", "#ff9999"},
	"CHARLOTTE":  {"#0000ff", "#9999ff"},
	"RALEIGH":    {"#00ff00", "#99ff99"},
	"WILMINGTON": {"#ffff00", "#ffff99"},
}

// ColorFor returns the fixed colour of city; secondary selects the lighter tint.
// Unknown cities share one fallback colour.
func ColorFor(city string, secondary bool) string {
	pair, ok := palette[strings.ToUpper(city)]
	if !ok {
		return fallbackColor
	}
	if secondary {
		return pair[1]
	}
	return pair[0]
}

// Series is one line of a chart. Y[i] is the value at X[i]; a Y without a
// value is a gap, never a zero.
type Series struct {
	Name  string  `json:"name"`
	Field Field   `json:"field"`
	Color string  `json:"color"`
	X     []Date  `json:"x"`
	Y     []Value `json:"y"`
}

// CityChart holds the two overlaid series of one city.
type CityChart struct {
	City      string `json:"city"`
	Primary   Series `json:"primary"`
	Secondary Series `json:"secondary"`
}

// Chart is a built comparison chart.
type Chart struct {
	ChartSpec
	Cities []CityChart `json:"cities"`
}

// GroupByCity merges prediction records of all stations of a city under the
// city token. Stations that resolve to no city are dropped. Stations are visited
// by name so the merged order is deterministic.
func GroupByCity(stations map[string][]StationRecord) map[string][]StationRecord {
	names := make([]string, 0, len(stations))
	for name := range stations {
		names = append(names, name)
	}
	slices.Sort(names)

	byCity := make(map[string][]StationRecord)
	for _, name := range names {
		city := ResolveCity(name)
		if !city.Known() {
			continue
		}
		byCity[city.Token()] = append(byCity[city.Token()], stations[name]...)
	}
	return byCity
}

// BuildChart builds the two parallel series of spec for every city of byCity.
// Records keep their order; a nil sel keeps every record. Values are never
// averaged. Tracked cities come first in canonical order, then any other key
// alphabetically.
func BuildChart(spec ChartSpec, byCity map[string][]StationRecord, sel *DateSelector) Chart {
	chart := Chart{ChartSpec: spec, Cities: make([]CityChart, 0, len(byCity))}

	for _, city := range chartCityOrder(byCity) {
		records := byCity[city]

		primary := Series{
			Name:  city + " - " + spec.PrimaryLabel,
			Field: spec.Primary,
			Color: ColorFor(city, false),
			X:     []Date{},
			Y:     []Value{},
		}
		secondary := Series{
			Name:  city + " - " + spec.SecondaryLabel,
			Field: spec.Secondary,
			Color: ColorFor(city, true),
			X:     []Date{},
			Y:     []Value{},
		}

		for _, rec := range records {
			if sel != nil && !sel.Contains(rec.Date) {
				continue
			}
			primary.X = append(primary.X, rec.Date)
			primary.Y = append(primary.Y, rec.Field(spec.Primary))
			secondary.X = append(secondary.X, rec.Date)
			secondary.Y = append(secondary.Y, rec.Field(spec.Secondary))
		}

		chart.Cities = append(chart.Cities, CityChart{
			City:      city,
			Primary:   primary,
			Secondary: secondary,
		})
	}

	return chart
}

func chartCityOrder(byCity map[string][]StationRecord) []string {
	order := make([]string, 0, len(byCity))
	seen := make(map[string]bool, len(byCity))
	for _, c := range Cities {
		if _, ok := byCity[c.Token()]; ok {
			order = append(order, c.Token())
			seen[c.Token()] = true
		}
	}

	var rest []string
	for city := range byCity {
		if !seen[city] {
			rest = append(rest, city)
		}
	}
	slices.Sort(rest)
	return append(order, rest...)
}
