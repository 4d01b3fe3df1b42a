package weather

import (
	"encoding/json"
	"math/rand"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func reading(station, date string, tmax, tmin, prcp Value) RawReading {
	return RawReading{
		Station: station,
		Date:    MustParseDate(date),
		TMax:    tmax,
		TMin:    tmin,
		Prcp:    prcp,
	}
}

func ashevilleJune1() []RawReading {
	return []RawReading{
		reading("ASHEVILLE-1", "2021-06-01", Some(80), Some(60), Some(0)),
		reading("ASHEVILLE-2", "2021-06-01", Some(84), Some(64), Some(0.1)),
	}
}

func TestSingleDate(t *testing.T) {
	Convey("Given two Asheville stations reporting on 2021-06-01", t, func() {
		readings := ashevilleJune1()
		d := MustParseDate("2021-06-01")

		Convey("the single-date summary is the mean of both", func() {
			s, ok := SingleDate(readings, CityAsheville, d, Options{})
			So(ok, ShouldBeTrue)
			So(s.City, ShouldEqual, CityAsheville)
			So(s.TMax.Float, ShouldAlmostEqual, 82.0, 1e-9)
			So(s.TMin.Float, ShouldAlmostEqual, 62.0, 1e-9)
			So(s.Prcp.Float, ShouldAlmostEqual, 0.05, 1e-9)
			So(s.Readings, ShouldEqual, 2)
			So(s.Days, ShouldEqual, 1)
		})

		Convey("the one-day range gives the identical summary", func() {
			single, _ := SingleDate(readings, CityAsheville, d, Options{})
			ranged, ok := RangeAggregate(readings, CityAsheville, On(d), Options{})
			So(ok, ShouldBeTrue)
			So(ranged, ShouldResemble, single)

			sel, err := Between(d, d)
			So(err, ShouldBeNil)
			ranged, _ = RangeAggregate(readings, CityAsheville, sel, Options{})
			So(ranged, ShouldResemble, single)
		})

		Convey("another date reports no data", func() {
			_, ok := SingleDate(readings, CityAsheville, MustParseDate("2021-06-02"), Options{})
			So(ok, ShouldBeFalse)
		})
	})

	Convey("Given only a Raleigh reading on 2021-06-02", t, func() {
		readings := []RawReading{reading("RALEIGH-1", "2021-06-02", Some(90), Some(70), Some(0))}

		Convey("Asheville on 2021-06-01 has no summary at all", func() {
			s, ok := SingleDate(readings, CityAsheville, MustParseDate("2021-06-01"), Options{})
			So(ok, ShouldBeFalse)
			So(s, ShouldResemble, CitySummary{})
		})
	})
}

func TestMissingValues(t *testing.T) {
	Convey("Given an Asheville reading whose tmax is not a number", t, func() {
		var bad Value
		So(bad.UnmarshalJSON([]byte(`"not-a-number"`)), ShouldBeNil)
		So(bad.Valid, ShouldBeFalse)

		readings := []RawReading{
			reading("ASHEVILLE-1", "2021-06-01", bad, Some(60), Some(0)),
			reading("ASHEVILLE-2", "2021-06-01", Some(84), Some(64), Some(0.1)),
		}
		d := MustParseDate("2021-06-01")

		Convey("the zero policy averages it as 0", func() {
			s, ok := SingleDate(readings, CityAsheville, d, Options{Missing: MissingZero})
			So(ok, ShouldBeTrue)
			So(s.TMax.Float, ShouldAlmostEqual, 42.0, 1e-9)
			So(s.TMin.Float, ShouldAlmostEqual, 62.0, 1e-9)
		})

		Convey("the skip policy leaves it out of the denominator", func() {
			s, ok := SingleDate(readings, CityAsheville, d, Options{Missing: MissingSkip})
			So(ok, ShouldBeTrue)
			So(s.TMax.Float, ShouldAlmostEqual, 84.0, 1e-9)
			So(s.TMin.Float, ShouldAlmostEqual, 62.0, 1e-9)
		})

		Convey("a field with no value at all stays without a value under skip", func() {
			only := readings[:1]
			s, ok := SingleDate(only, CityAsheville, d, Options{Missing: MissingSkip})
			So(ok, ShouldBeTrue)
			So(s.TMax.Valid, ShouldBeFalse)
			So(s.TMin.Float, ShouldAlmostEqual, 60.0, 1e-9)
		})
	})
}

func TestRangeAggregate(t *testing.T) {
	Convey("Given readings across three days", t, func() {
		readings := []RawReading{
			reading("ASHEVILLE-1", "2021-06-01", Some(80), Some(60), Some(0)),
			reading("ASHEVILLE-2", "2021-06-01", Some(84), Some(64), Some(0.2)),
			reading("ASHEVILLE-1", "2021-06-02", Some(90), Some(70), Some(0.4)),
			reading("ASHEVILLE-1", "2021-06-05", Some(10), Some(10), Some(10)),
		}
		sel, err := Between(MustParseDate("2021-06-01"), MustParseDate("2021-06-02"))
		So(err, ShouldBeNil)

		Convey("each day weighs the same in the window mean", func() {
			s, ok := RangeAggregate(readings, CityAsheville, sel, Options{})
			So(ok, ShouldBeTrue)
			So(s.TMax.Float, ShouldAlmostEqual, 86.0, 1e-9)
			So(s.TMin.Float, ShouldAlmostEqual, 66.0, 1e-9)
			So(s.Prcp.Float, ShouldAlmostEqual, 0.25, 1e-9)
			So(s.Days, ShouldEqual, 2)
			So(s.Readings, ShouldEqual, 3)
		})

		Convey("bounds are inclusive", func() {
			end, _ := Between(MustParseDate("2021-06-05"), MustParseDate("2021-06-05"))
			s, ok := RangeAggregate(readings, CityAsheville, end, Options{})
			So(ok, ShouldBeTrue)
			So(s.TMax.Float, ShouldAlmostEqual, 10.0, 1e-9)
		})

		Convey("a window without readings reports no data", func() {
			gap, _ := Between(MustParseDate("2021-06-03"), MustParseDate("2021-06-04"))
			_, ok := RangeAggregate(readings, CityAsheville, gap, Options{})
			So(ok, ShouldBeFalse)
		})
	})

	Convey("A reversed range is rejected", t, func() {
		_, err := Between(MustParseDate("2021-06-02"), MustParseDate("2021-06-01"))
		So(err, ShouldNotBeNil)
	})
}

func TestSummaries(t *testing.T) {
	Convey("Given readings supplied in reverse city order", t, func() {
		readings := []RawReading{
			reading("WILMINGTON-1", "2021-06-01", Some(85), Some(70), Some(0)),
			reading("CHARLOTTE-1", "2021-06-01", Some(88), Some(66), Some(0)),
			reading("GREENSBORO-1", "2021-06-01", Some(999), Some(999), Some(999)),
			reading("RALEIGH-1", "2021-06-01", Some(87), Some(65), Some(0)),
			reading("ASHEVILLE-1", "2021-06-01", Some(80), Some(60), Some(0)),
		}
		sel := On(MustParseDate("2021-06-01"))

		Convey("output follows the canonical city order", func() {
			out := Summaries(readings, sel, Options{})
			So(out, ShouldHaveLength, 4)
			So(out[0].City, ShouldEqual, CityAsheville)
			So(out[1].City, ShouldEqual, CityRaleigh)
			So(out[2].City, ShouldEqual, CityCharlotte)
			So(out[3].City, ShouldEqual, CityWilmington)
		})

		Convey("unresolved stations contribute to no city", func() {
			for _, s := range Summaries(readings, sel, Options{}) {
				So(s.TMax.Float, ShouldBeLessThan, 999.0)
				So(s.Readings, ShouldEqual, 1)
			}
		})

		Convey("cities without readings are omitted", func() {
			out := Summaries(readings[:2], sel, Options{})
			So(out, ShouldHaveLength, 2)
			So(out[0].City, ShouldEqual, CityCharlotte)
			So(out[1].City, ShouldEqual, CityWilmington)
		})

		Convey("an empty selection gives an empty result", func() {
			out := Summaries(readings, On(MustParseDate("2022-01-01")), Options{})
			So(out, ShouldBeEmpty)
		})

		Convey("repeated calls give identical output", func() {
			So(Summaries(readings, sel, Options{}), ShouldResemble, Summaries(readings, sel, Options{}))
		})

		Convey("a single-date selection matches SingleDate per city", func() {
			for _, s := range Summaries(readings, sel, Options{}) {
				single, ok := SingleDate(readings, s.City, sel.Start(), Options{})
				So(ok, ShouldBeTrue)
				So(s, ShouldResemble, single)
			}
		})
	})
}

func TestOrderIndependence(t *testing.T) {
	Convey("Given many readings for one city and date", t, func() {
		rng := rand.New(rand.NewSource(7))
		var readings []RawReading
		var sum float64
		for i := 0; i < 50; i++ {
			v := float64(rng.Intn(1000)) / 10
			sum += v
			readings = append(readings, reading("RALEIGH-X", "2023-03-03", Some(v), Some(v), Some(v)))
		}
		want := sum / 50
		d := MustParseDate("2023-03-03")

		Convey("the mean does not depend on traversal order", func() {
			for i := 0; i < 5; i++ {
				rng.Shuffle(len(readings), func(a, b int) { readings[a], readings[b] = readings[b], readings[a] })
				s, ok := SingleDate(readings, CityRaleigh, d, Options{})
				So(ok, ShouldBeTrue)
				So(s.TMax.Float, ShouldAlmostEqual, want, 1e-9)
			}
		})
	})
}

func TestLargeFiniteValues(t *testing.T) {
	Convey("Given two Raleigh readings near the float64 limit", t, func() {
		readings := []RawReading{
			reading("RALEIGH-1", "2021-06-01", Some(1e308), Some(-1e308), Some(0)),
			reading("RALEIGH-2", "2021-06-01", Some(1e308), Some(-1e308), Some(0)),
		}

		Convey("the mean stays finite", func() {
			out := Summaries(readings, On(MustParseDate("2021-06-01")), Options{})
			So(out, ShouldHaveLength, 1)
			So(out[0].TMax.Valid, ShouldBeTrue)
			So(out[0].TMax.Float, ShouldEqual, 1e308)
			So(out[0].TMin.Float, ShouldEqual, -1e308)

			_, err := json.Marshal(out)
			So(err, ShouldBeNil)
		})
	})
}
