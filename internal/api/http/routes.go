package httpapi

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/url"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-dashboard/internal/store"
	"github.com/i474232898/weather-dashboard/internal/weather"
)

var validate = validator.New()

// Bounds limits the dates a client may select.
type Bounds struct {
	Min weather.Date
	Max weather.Date
}

// ErrorHandler renders every error as {"error": true, "message": ...}.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *weather.Service, bounds Bounds) {
	v1 := app.Group("/api/v1")

	// Per-city averages for a date or window. With the default "skip" policy a
	// missing tmax/tmin/prcp is left out of its mean; the older dashboards
	// averaged it in as 0, which the "zero" policy restores. The policy in
	// effect is echoed in the "missing" field.
	v1.Get("/summaries", func(c *fiber.Ctx) error {
		sel, err := parseSelector(c, bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		summaries, ds, err := service.Summaries(c.UserContext(), *sel)
		if err != nil {
			return toFiberError(err, "failed to aggregate weather data")
		}

		views := make([]summaryView, 0, len(summaries))
		for _, s := range summaries {
			views = append(views, newSummaryView(s))
		}

		return c.JSON(fiber.Map{
			"selection": newSelectionView(*sel),
			"dataset":   ds,
			"missing":   service.Options().Missing.String(),
			"noData":    len(views) == 0,
			"summaries": views,
		})
	})

	v1.Get("/cities/:city", func(c *fiber.Ctx) error {
		city, err := weather.LookupCity(c.Params("city"))
		if err != nil {
			return fiber.NewError(fiber.StatusNotFound, err.Error())
		}

		sel, err := parseSelector(c, bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, ds, err := service.CityBreakdown(c.UserContext(), city, *sel)
		return respondSeries(c, fiber.Map{"city": city}, *sel, series, ds, err)
	})

	v1.Get("/stations", func(c *fiber.Ctx) error {
		sel, err := parseOptionalSelector(c, bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		stations, ds, err := service.Stations(c.UserContext(), sel)
		if err != nil {
			return toFiberError(err, "failed to list stations")
		}

		resp := fiber.Map{
			"dataset":  ds,
			"stations": stations,
		}
		if sel != nil {
			resp["selection"] = newSelectionView(*sel)
		}
		return c.JSON(resp)
	})

	v1.Get("/stations/:station", func(c *fiber.Ctx) error {
		station, err := url.PathUnescape(c.Params("station"))
		if err != nil || station == "" {
			return fiber.NewError(fiber.StatusBadRequest, "invalid station name")
		}

		sel, err := parseSelector(c, bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		series, ds, err := service.StationBreakdown(c.UserContext(), station, *sel)
		return respondSeries(c, fiber.Map{"station": station}, *sel, series, ds, err)
	})

	v1.Get("/charts", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"charts": weather.ChartSpecs()})
	})

	v1.Get("/charts/:kind", func(c *fiber.Ctx) error {
		sel, err := parseOptionalSelector(c, bounds)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		chart, ps, err := service.Chart(c.UserContext(), c.Params("kind"), sel)
		if err != nil {
			return toFiberError(err, "failed to build chart")
		}

		resp := fiber.Map{
			"dataset": ps,
			"chart":   chart,
		}
		if sel != nil {
			resp["selection"] = newSelectionView(*sel)
		}
		return c.JSON(resp)
	})
}

func respondSeries(c *fiber.Ctx, subject fiber.Map, sel weather.DateSelector, series []weather.DailyReading, ds weather.Dataset, err error) error {
	resp := subject
	resp["selection"] = newSelectionView(sel)

	switch {
	case errors.Is(err, weather.ErrNoData):
		resp["dataset"] = ds
		resp["noData"] = true
		resp["message"] = "no weather data available for the selected dates"
		resp["readings"] = []dailyView{}
		return c.JSON(resp)
	case err != nil:
		return toFiberError(err, "failed to fetch weather data")
	}

	views := make([]dailyView, 0, len(series))
	for _, r := range series {
		views = append(views, newDailyView(r))
	}
	resp["dataset"] = ds
	resp["noData"] = false
	resp["readings"] = views
	return c.JSON(resp)
}

// toFiberError maps domain and store errors to HTTP status codes. Empty
// results are not errors and never reach this function.
func toFiberError(err error, fallback string) error {
	switch {
	case errors.Is(err, weather.ErrUnknownCity),
		errors.Is(err, weather.ErrUnknownStation),
		errors.Is(err, weather.ErrUnknownChart):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, store.ErrNotFound), errors.Is(err, store.ErrStale):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	case errors.Is(err, weather.ErrMalformedResponse),
		errors.Is(err, weather.ErrNoStations),
		errors.Is(err, weather.ErrUpstream):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return fiber.NewError(fiber.StatusGatewayTimeout, "weather data store timed out")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, fallback)
	}
}

// dateQuery holds the date selection query parameters. Either date, or both
// start and end, must be given.
type dateQuery struct {
	Date  string `validate:"omitempty,datetime=2006-01-02"`
	Start string `validate:"omitempty,datetime=2006-01-02"`
	End   string `validate:"omitempty,datetime=2006-01-02"`
}

func (q dateQuery) empty() bool {
	return q.Date == "" && q.Start == "" && q.End == ""
}

func parseSelector(c *fiber.Ctx, bounds Bounds) (*weather.DateSelector, error) {
	sel, err := parseOptionalSelector(c, bounds)
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, errors.New("either date or start and end query parameters are required")
	}
	return sel, nil
}

// parseOptionalSelector returns nil when no date parameter is present.
func parseOptionalSelector(c *fiber.Ctx, bounds Bounds) (*weather.DateSelector, error) {
	q := dateQuery{
		Date:  c.Query("date"),
		Start: c.Query("start"),
		End:   c.Query("end"),
	}
	if q.empty() {
		return nil, nil
	}

	if err := validate.Struct(q); err != nil {
		return nil, errors.New("invalid date format; use YYYY-MM-DD")
	}

	var sel weather.DateSelector
	switch {
	case q.Date != "" && (q.Start != "" || q.End != ""):
		return nil, errors.New("use either date or start and end, not both")
	case q.Date != "":
		d, err := weather.ParseDate(q.Date)
		if err != nil {
			return nil, err
		}
		sel = weather.On(d)
	case q.Start == "" || q.End == "":
		return nil, errors.New("start and end query parameters are required together")
	default:
		start, err := weather.ParseDate(q.Start)
		if err != nil {
			return nil, err
		}
		end, err := weather.ParseDate(q.End)
		if err != nil {
			return nil, err
		}
		if sel, err = weather.Between(start, end); err != nil {
			return nil, errors.New("start date must not be after end date")
		}
	}

	if sel.Start().Before(bounds.Min) || sel.End().After(bounds.Max) {
		return nil, fmt.Errorf("dates must be between %s and %s", bounds.Min, bounds.Max)
	}
	return &sel, nil
}

type selectionView struct {
	Mode  string       `json:"mode"`
	Start weather.Date `json:"start"`
	End   weather.Date `json:"end"`
}

func newSelectionView(sel weather.DateSelector) selectionView {
	mode := "range"
	if sel.IsSingle() {
		mode = "single"
	}
	return selectionView{Mode: mode, Start: sel.Start(), End: sel.End()}
}

// summaryView is a CitySummary rounded for display.
type summaryView struct {
	City     weather.City  `json:"city"`
	TMax     weather.Value `json:"tmax"`
	TMin     weather.Value `json:"tmin"`
	Prcp     weather.Value `json:"prcp"`
	Days     int           `json:"days"`
	Readings int           `json:"readings"`
}

func newSummaryView(s weather.CitySummary) summaryView {
	return summaryView{
		City:     s.City,
		TMax:     round(s.TMax, 2),
		TMin:     round(s.TMin, 2),
		Prcp:     round(s.Prcp, 2),
		Days:     s.Days,
		Readings: s.Readings,
	}
}

type dailyView struct {
	Station string        `json:"station"`
	Date    weather.Date  `json:"date"`
	TMax    weather.Value `json:"tmax"`
	TMin    weather.Value `json:"tmin"`
	Prcp    weather.Value `json:"prcp"`
}

func newDailyView(r weather.DailyReading) dailyView {
	return dailyView{
		Station: r.Station,
		Date:    r.Date,
		TMax:    round(r.TMax, 2),
		TMin:    round(r.TMin, 2),
		Prcp:    round(r.Prcp, 2),
	}
}

func round(v weather.Value, places int) weather.Value {
	if !v.Valid {
		return v
	}
	p := math.Pow(10, float64(places))
	r := math.Round(v.Float*p) / p
	if math.IsInf(r, 0) {
		// v.Float*p overflowed; values that large carry no fractional digits.
		return v
	}
	return weather.Some(r)
}
