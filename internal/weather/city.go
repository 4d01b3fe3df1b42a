package weather

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/i474232898/weather-dashboard/internal/common"
)

// City is one of the tracked cities.
type City int

const (
	CityUnknown City = iota
	CityAsheville
	CityRaleigh
	CityCharlotte
	CityWilmington
)

// Cities lists the tracked cities in canonical display order.
var Cities = []City{CityAsheville, CityRaleigh, CityCharlotte, CityWilmington}

var cityTokens = map[City]string{
	CityAsheville:  "ASHEVILLE",
	CityRaleigh:    "RALEIGH",
	CityCharlotte:  "CHARLOTTE",
	CityWilmington: "WILMINGTON",
}

var cityNames = map[City]string{
	CityUnknown:    "Unknown",
	CityAsheville:  "Asheville",
	CityRaleigh:    "Raleigh",
	CityCharlotte:  "Charlotte",
	CityWilmington: "Wilmington",
}

// Token returns the upper-case token that identifies the city inside station names.
func (c City) Token() string {
	return cityTokens[c]
}

func (c City) String() string {
	if name, ok := cityNames[c]; ok {
		return name
	}
	return cityNames[CityUnknown]
}

func (c City) Known() bool {
	return c != CityUnknown && cityTokens[c] != ""
}

func (c City) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *City) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	*c = ParseCity(s)
	return nil
}

// ResolveCity maps a station name to the city it belongs to. A station belongs to
// a city when its name contains the city token (case-sensitive). Tokens are
// checked in canonical order; names with no token resolve to CityUnknown.
func ResolveCity(station string) City {
	for _, c := range Cities {
		if _, ok := common.FirstContained(station, c.Token()); ok {
			return c
		}
	}
	return CityUnknown
}

// ParseCity parses a user-supplied city name such as "asheville" or "Raleigh".
func ParseCity(s string) City {
	s = strings.TrimSpace(s)
	for _, c := range Cities {
		if strings.EqualFold(s, c.Token()) {
			return c
		}
	}
	return CityUnknown
}

// LookupCity is ParseCity returning ErrUnknownCity for unrecognised names.
func LookupCity(s string) (City, error) {
	c := ParseCity(s)
	if !c.Known() {
		return CityUnknown, fmt.Errorf("%w: %q", ErrUnknownCity, s)
	}
	return c, nil
}
