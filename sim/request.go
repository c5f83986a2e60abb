package sim

import (
	"fmt"
	"strings"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

const (
	MinLaps = 1
	MaxLaps = 100
)

// legacyWeatherAliases maps weather names used by older clients to catalog keys.
var legacyWeatherAliases = map[string]string{
	"sunny": string(catalog.WeatherDry),
	"rainy": string(catalog.WeatherWet),
}

// SimulationRequest is the raw input of one simulation, as sent by a client.
type SimulationRequest struct {
	Driver   string `json:"driver"`
	Track    string `json:"track"`
	Compound string `json:"compound"`
	Weather  string `json:"weather"`
	Laps     int    `json:"laps"`
}

// ValidatedRequest is a normalized request whose catalog references have been
// resolved. Its fields are unexported so it cannot change after validation.
type ValidatedRequest struct {
	driverKey string
	trackKey  string
	driver    catalog.Driver
	track     catalog.Track
	compound  catalog.Compound
	weather   catalog.Weather
	weatherSp catalog.WeatherSpec
	laps      int
}

func (v ValidatedRequest) DriverKey() string                { return v.driverKey }
func (v ValidatedRequest) TrackKey() string                 { return v.trackKey }
func (v ValidatedRequest) Driver() catalog.Driver           { return v.driver }
func (v ValidatedRequest) Track() catalog.Track             { return v.track }
func (v ValidatedRequest) Compound() catalog.Compound       { return v.compound }
func (v ValidatedRequest) Weather() catalog.Weather         { return v.weather }
func (v ValidatedRequest) WeatherSpec() catalog.WeatherSpec { return v.weatherSp }
func (v ValidatedRequest) Laps() int                        { return v.laps }

// Validate normalizes req and checks it against cat. It fails with
// *InvalidInputError or *UnknownCatalogEntryError and has no side effects.
func Validate(cat *catalog.Catalog, req SimulationRequest) (ValidatedRequest, error) {
	if req.Laps < MinLaps || req.Laps > MaxLaps {
		return ValidatedRequest{}, &InvalidInputError{
			Field:   "laps",
			Value:   fmt.Sprint(req.Laps),
			Message: fmt.Sprintf("must be in [%d, %d]", MinLaps, MaxLaps),
		}
	}

	compound := normalize(req.Compound)
	if !catalog.IsValidCompound(compound) {
		return ValidatedRequest{}, &InvalidInputError{
			Field:   "compound",
			Value:   req.Compound,
			Message: "valid: soft, medium, hard, intermediate, wet",
		}
	}

	weather := normalize(req.Weather)
	if alias, ok := legacyWeatherAliases[weather]; ok {
		weather = alias
	}
	if !catalog.IsValidWeather(weather) {
		return ValidatedRequest{}, &InvalidInputError{
			Field:   "weather",
			Value:   req.Weather,
			Message: "valid: dry, mixed, wet",
		}
	}
	weatherSpec, ok := cat.WeatherSpec(catalog.Weather(weather))
	if !ok {
		return ValidatedRequest{}, &UnknownCatalogEntryError{Field: "weather", Value: weather}
	}
	if _, ok := cat.Compound(catalog.Compound(compound)); !ok {
		return ValidatedRequest{}, &UnknownCatalogEntryError{Field: "compound", Value: compound}
	}

	driverKey := normalize(req.Driver)
	if driverKey == "" {
		return ValidatedRequest{}, &InvalidInputError{Field: "driver", Value: req.Driver, Message: "must not be empty"}
	}
	driver, ok := cat.Driver(driverKey)
	if !ok {
		return ValidatedRequest{}, &UnknownCatalogEntryError{Field: "driver", Value: req.Driver}
	}

	trackKey := normalize(req.Track)
	if trackKey == "" {
		return ValidatedRequest{}, &InvalidInputError{Field: "track", Value: req.Track, Message: "must not be empty"}
	}
	track, ok := cat.Track(trackKey)
	if !ok {
		return ValidatedRequest{}, &UnknownCatalogEntryError{Field: "track", Value: req.Track}
	}

	return ValidatedRequest{
		driverKey: driverKey,
		trackKey:  trackKey,
		driver:    driver,
		track:     track,
		compound:  catalog.Compound(compound),
		weather:   catalog.Weather(weather),
		weatherSp: weatherSpec,
		laps:      req.Laps,
	}, nil
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
