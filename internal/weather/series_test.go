package weather

import (
	"errors"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func TestCitySeries(t *testing.T) {
	Convey("Given unordered Charlotte readings from two stations", t, func() {
		readings := []RawReading{
			reading("CHARLOTTE-B", "2022-05-03", Some(70), Some(50), Some(0)),
			reading("CHARLOTTE-A", "2022-05-01", Some(71), Some(51), Some(0.3)),
			reading("RALEIGH-1", "2022-05-02", Some(72), Some(52), Some(0)),
			reading("CHARLOTTE-A", "2022-05-02", Value{}, Some(52), Some(0)),
			reading("CHARLOTTE-B", "2022-05-01", Some(69), Some(49), Some(0.1)),
		}
		sel, _ := Between(MustParseDate("2022-05-01"), MustParseDate("2022-05-03"))

		Convey("the series is sorted by date and keeps every station", func() {
			series, err := CitySeries(readings, CityCharlotte, sel)
			So(err, ShouldBeNil)
			So(series, ShouldHaveLength, 4)
			So(series[0].Date, ShouldEqual, MustParseDate("2022-05-01"))
			So(series[0].Station, ShouldEqual, "CHARLOTTE-A")
			So(series[1].Station, ShouldEqual, "CHARLOTTE-B")
			So(series[3].Date, ShouldEqual, MustParseDate("2022-05-03"))
		})

		Convey("an unparseable value is a gap, not zero", func() {
			series, _ := CitySeries(readings, CityCharlotte, sel)
			So(series[2].TMax.Valid, ShouldBeFalse)
			So(series[2].TMin, ShouldResemble, Some(52))
		})

		Convey("an empty window is reported as no data", func() {
			_, err := CitySeries(readings, CityCharlotte, On(MustParseDate("2023-01-01")))
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
			So(errors.Is(err, ErrUnknownCity), ShouldBeFalse)
		})

		Convey("an untracked city is reported as unknown", func() {
			_, err := CitySeries(readings, CityUnknown, sel)
			So(errors.Is(err, ErrUnknownCity), ShouldBeTrue)
		})
	})
}

func TestStationSeries(t *testing.T) {
	Convey("Given readings for one station", t, func() {
		readings := []RawReading{
			reading("WILMINGTON AIRPORT", "2020-01-02", Some(60), Some(40), Some(0)),
			reading("WILMINGTON AIRPORT", "2020-01-01", Some(58), Some(38), Some(1.2)),
			reading("WILMINGTON BEACH", "2020-01-01", Some(59), Some(39), Some(0)),
		}
		sel, _ := Between(MustParseDate("2020-01-01"), MustParseDate("2020-01-31"))

		Convey("only exact station matches are returned", func() {
			series, err := StationSeries(readings, "WILMINGTON AIRPORT", sel)
			So(err, ShouldBeNil)
			So(series, ShouldHaveLength, 2)
			So(series[0].Date, ShouldEqual, MustParseDate("2020-01-01"))
		})

		Convey("an unknown station differs from an empty selection", func() {
			_, err := StationSeries(readings, "NOWHERE", sel)
			So(errors.Is(err, ErrUnknownStation), ShouldBeTrue)

			_, err = StationSeries(readings, "WILMINGTON AIRPORT", On(MustParseDate("2021-01-01")))
			So(errors.Is(err, ErrNoData), ShouldBeTrue)
		})
	})
}

func TestStations(t *testing.T) {
	Convey("Given readings from three stations", t, func() {
		readings := []RawReading{
			{Station: "RALEIGH-1", Date: MustParseDate("2021-01-01"), Latitude: 35.8, Longitude: -78.6},
			{Station: "ASHEVILLE-1", Date: MustParseDate("2021-01-02"), Latitude: 35.6, Longitude: -82.5},
			{Station: "MOUNT MITCHELL", Date: MustParseDate("2021-01-01")},
			{Station: "RALEIGH-1", Date: MustParseDate("2021-01-02"), Latitude: 0, Longitude: 0},
		}

		Convey("stations are unique, sorted and carry their first coordinates", func() {
			out := Stations(readings, nil)
			So(out, ShouldHaveLength, 3)
			So(out[0].Name, ShouldEqual, "ASHEVILLE-1")
			So(out[2].Name, ShouldEqual, "RALEIGH-1")
			So(out[2].Latitude, ShouldEqual, 35.8)
			So(out[2].City, ShouldEqual, CityRaleigh)
			So(out[1].City, ShouldEqual, CityUnknown)
			for _, s := range out {
				So(s.HasData, ShouldBeTrue)
			}
		})

		Convey("HasData follows the selector", func() {
			sel := On(MustParseDate("2021-01-02"))
			out := Stations(readings, &sel)
			So(out[0].HasData, ShouldBeTrue)
			So(out[1].HasData, ShouldBeFalse)
			So(out[2].HasData, ShouldBeTrue)
		})
	})
}
