// Package catalog holds the static reference data the race engine reads:
// tracks, drivers, tyre compounds, weather conditions and the competitor field.
// A Catalog is loaded once at process start and is read-only afterwards, so it
// is safe to share across goroutines without locking.
package catalog

import (
	"fmt"
	"math"
	"sort"
)

// Compound is a tyre rubber specification.
type Compound string

const (
	CompoundSoft         Compound = "soft"
	CompoundMedium       Compound = "medium"
	CompoundHard         Compound = "hard"
	CompoundIntermediate Compound = "intermediate"
	CompoundWet          Compound = "wet"
)

// AllCompounds lists every compound in display order.
var AllCompounds = []Compound{CompoundSoft, CompoundMedium, CompoundHard, CompoundIntermediate, CompoundWet}

// Weather is the track condition for the whole race.
type Weather string

const (
	WeatherDry   Weather = "dry"
	WeatherMixed Weather = "mixed"
	WeatherWet   Weather = "wet"
)

// AllWeather lists every weather condition in display order.
var AllWeather = []Weather{WeatherDry, WeatherMixed, WeatherWet}

var (
	validCompounds = map[Compound]bool{
		CompoundSoft: true, CompoundMedium: true, CompoundHard: true, CompoundIntermediate: true, CompoundWet: true,
	}
	validWeather = map[Weather]bool{
		WeatherDry: true, WeatherMixed: true, WeatherWet: true,
	}
)

// IsValidCompound reports whether c is a recognized compound.
func IsValidCompound(c string) bool { return validCompounds[Compound(c)] }

// IsValidWeather reports whether w is a recognized weather condition.
func IsValidWeather(w string) bool { return validWeather[Weather(w)] }

// Track describes a circuit.
type Track struct {
	Name         string  `yaml:"name"`
	BaseLapTime  float64 `yaml:"base_lap_time"` // seconds, > 0
	Abrasiveness float64 `yaml:"abrasiveness"`  // 0..1, scales tyre wear
	PitLaneLoss  float64 `yaml:"pit_lane_loss"` // seconds, > 0
}

// Driver describes a driver's pace relative to the car's baseline.
type Driver struct {
	Name        string  `yaml:"name"`
	SkillOffset float64 `yaml:"skill_offset"` // seconds per lap, negative = faster
	Consistency float64 `yaml:"consistency"`  // (0, 1], higher means less lap-to-lap noise
}

// GripCurve parameterizes the lap-time penalty of a worn tyre.
type GripCurve struct {
	PaceOffset  float64 `yaml:"pace_offset"`  // fractional lap-time offset of a fresh tyre, negative = faster
	LinearSlope float64 `yaml:"linear_slope"` // penalty per percent of health lost
	CliffHealth float64 `yaml:"cliff_health"` // health below which the penalty steepens
	CliffSlope  float64 `yaml:"cliff_slope"`  // quadratic coefficient below the cliff
}

// WeatherFit is how well a compound suits a weather condition.
// Both values are multipliers; 1.0 means a perfect match.
type WeatherFit struct {
	Pace float64 `yaml:"pace"`
	Wear float64 `yaml:"wear"`
}

// CompoundSpec holds the wear and grip characteristics of a compound.
type CompoundSpec struct {
	Name           string                 `yaml:"name"`
	BaseWearRate   float64                `yaml:"base_wear_rate"`  // percent of health per lap
	CriticalHealth float64                `yaml:"critical_health"` // pit threshold before track adjustment
	Next           Compound               `yaml:"next"`            // compound to switch to; wears longer unless this one wears longest
	Grip           GripCurve              `yaml:"grip"`
	WeatherFit     map[Weather]WeatherFit `yaml:"weather_fit"`
}

// Fit returns the compound's fit for weather w. Missing entries are neutral.
func (c CompoundSpec) Fit(w Weather) WeatherFit {
	if fit, ok := c.WeatherFit[w]; ok {
		return fit
	}
	return WeatherFit{Pace: 1, Wear: 1}
}

// WeatherSpec holds the race-wide effect of a weather condition.
type WeatherSpec struct {
	Name           string   `yaml:"name"`
	PaceFactor     float64  `yaml:"pace_factor"`
	WearModifier   float64  `yaml:"wear_modifier"`
	ForcedCompound Compound `yaml:"forced_compound,omitempty"` // replacement compound forced at every stop
}

// FieldSpec describes the competitor field used for classification.
// Competitor pace is measured against a reference run: a zero-skill car
// driving the race's conditions on ReferenceCompounds[weather] under the
// same pit rules. Offsets are in seconds per lap, negative = faster.
type FieldSpec struct {
	Size               int                  `yaml:"size"`
	LeaderOffset       float64              `yaml:"leader_offset"`       // pace of the fastest competitor relative to the reference run
	Step               float64              `yaml:"step"`                // pace gap between consecutive competitors
	Jitter             float64              `yaml:"jitter"`              // half-width of the random pace spread
	ReferenceCompounds map[Weather]Compound `yaml:"reference_compounds"` // starting compound of the reference run
}

// ReferenceCompound returns the compound the reference run starts on in
// weather w. Weather without an entry falls back to medium.
func (f FieldSpec) ReferenceCompound(w Weather) Compound {
	if c, ok := f.ReferenceCompounds[w]; ok {
		return c
	}
	return CompoundMedium
}

// Catalog is the full reference data set.
// All top-level sections must be listed to satisfy strict parsing.
type Catalog struct {
	Version   string                    `yaml:"version"`
	Tracks    map[string]Track          `yaml:"tracks"`
	Drivers   map[string]Driver         `yaml:"drivers"`
	Compounds map[Compound]CompoundSpec `yaml:"compounds"`
	Weather   map[Weather]WeatherSpec   `yaml:"weather"`
	Field     FieldSpec                 `yaml:"field"`
}

// Track returns the track with the given key.
func (c *Catalog) Track(key string) (Track, bool) {
	t, ok := c.Tracks[key]
	return t, ok
}

// Driver returns the driver with the given key.
func (c *Catalog) Driver(key string) (Driver, bool) {
	d, ok := c.Drivers[key]
	return d, ok
}

// Compound returns the spec of compound key.
func (c *Catalog) Compound(key Compound) (CompoundSpec, bool) {
	s, ok := c.Compounds[key]
	return s, ok
}

// WeatherSpec returns the spec of weather key.
func (c *Catalog) WeatherSpec(key Weather) (WeatherSpec, bool) {
	s, ok := c.Weather[key]
	return s, ok
}

// TrackKeys returns all track keys sorted alphabetically.
func (c *Catalog) TrackKeys() []string { return sortedKeys(c.Tracks) }

// DriverKeys returns all driver keys sorted alphabetically.
func (c *Catalog) DriverKeys() []string { return sortedKeys(c.Drivers) }

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Validate checks that the catalog is complete and every value is in range.
// Keys are visited in sorted order so the first reported error is stable.
func (c *Catalog) Validate() error {
	if len(c.Tracks) == 0 {
		return fmt.Errorf("catalog has no tracks")
	}
	if len(c.Drivers) == 0 {
		return fmt.Errorf("catalog has no drivers")
	}
	for _, key := range c.TrackKeys() {
		t := c.Tracks[key]
		prefix := fmt.Sprintf("tracks.%s", key)
		if err := validateFinitePositive(prefix+".base_lap_time", t.BaseLapTime); err != nil {
			return err
		}
		if err := validateFinitePositive(prefix+".pit_lane_loss", t.PitLaneLoss); err != nil {
			return err
		}
		if !inUnitRange(t.Abrasiveness) {
			return fmt.Errorf("%s.abrasiveness must be in [0, 1], got %f", prefix, t.Abrasiveness)
		}
	}
	for _, key := range c.DriverKeys() {
		d := c.Drivers[key]
		prefix := fmt.Sprintf("drivers.%s", key)
		if math.IsNaN(d.SkillOffset) || math.IsInf(d.SkillOffset, 0) {
			return fmt.Errorf("%s.skill_offset must be a finite number, got %f", prefix, d.SkillOffset)
		}
		if d.Consistency <= 0 || d.Consistency > 1 {
			return fmt.Errorf("%s.consistency must be in (0, 1], got %f", prefix, d.Consistency)
		}
	}
	for _, comp := range AllCompounds {
		spec, ok := c.Compounds[comp]
		if !ok {
			return fmt.Errorf("compounds.%s is missing", comp)
		}
		if err := validateCompound(string(comp), spec); err != nil {
			return err
		}
	}
	if len(c.Compounds) != len(AllCompounds) {
		for comp := range c.Compounds {
			if !validCompounds[comp] {
				return fmt.Errorf("compounds.%s is not a recognized compound", comp)
			}
		}
	}
	for _, w := range AllWeather {
		spec, ok := c.Weather[w]
		if !ok {
			return fmt.Errorf("weather.%s is missing", w)
		}
		prefix := fmt.Sprintf("weather.%s", w)
		if err := validateFinitePositive(prefix+".pace_factor", spec.PaceFactor); err != nil {
			return err
		}
		if err := validateFinitePositive(prefix+".wear_modifier", spec.WearModifier); err != nil {
			return err
		}
		if spec.ForcedCompound != "" && !validCompounds[spec.ForcedCompound] {
			return fmt.Errorf("%s.forced_compound %q is not a recognized compound", prefix, spec.ForcedCompound)
		}
	}
	if len(c.Weather) != len(AllWeather) {
		for w := range c.Weather {
			if !validWeather[w] {
				return fmt.Errorf("weather.%s is not a recognized weather condition", w)
			}
		}
	}
	return validateField(c.Field)
}

func validateCompound(key string, spec CompoundSpec) error {
	prefix := "compounds." + key
	if err := validateFinitePositive(prefix+".base_wear_rate", spec.BaseWearRate); err != nil {
		return err
	}
	if spec.CriticalHealth <= 0 || spec.CriticalHealth >= 100 {
		return fmt.Errorf("%s.critical_health must be in (0, 100), got %f", prefix, spec.CriticalHealth)
	}
	if !validCompounds[spec.Next] {
		return fmt.Errorf("%s.next %q is not a recognized compound", prefix, spec.Next)
	}
	g := spec.Grip
	if math.IsNaN(g.PaceOffset) || g.PaceOffset <= -0.5 || g.PaceOffset >= 0.5 {
		return fmt.Errorf("%s.grip.pace_offset must be in (-0.5, 0.5), got %f", prefix, g.PaceOffset)
	}
	if g.LinearSlope < 0 || g.CliffSlope < 0 {
		return fmt.Errorf("%s.grip slopes must be non-negative", prefix)
	}
	if g.CliffHealth < 0 || g.CliffHealth > 100 {
		return fmt.Errorf("%s.grip.cliff_health must be in [0, 100], got %f", prefix, g.CliffHealth)
	}
	for w, fit := range spec.WeatherFit {
		if !validWeather[w] {
			return fmt.Errorf("%s.weather_fit.%s is not a recognized weather condition", prefix, w)
		}
		if err := validateFinitePositive(fmt.Sprintf("%s.weather_fit.%s.pace", prefix, w), fit.Pace); err != nil {
			return err
		}
		if err := validateFinitePositive(fmt.Sprintf("%s.weather_fit.%s.wear", prefix, w), fit.Wear); err != nil {
			return err
		}
	}
	return nil
}

func validateField(f FieldSpec) error {
	if f.Size < 2 {
		return fmt.Errorf("field.size must be at least 2, got %d", f.Size)
	}
	if math.IsNaN(f.LeaderOffset) || math.IsInf(f.LeaderOffset, 0) {
		return fmt.Errorf("field.leader_offset must be a finite number, got %f", f.LeaderOffset)
	}
	if math.IsNaN(f.Step) || math.IsNaN(f.Jitter) || f.Step < 0 || f.Jitter < 0 {
		return fmt.Errorf("field.step and field.jitter must be non-negative")
	}
	for _, w := range AllWeather {
		c, ok := f.ReferenceCompounds[w]
		if !ok {
			continue
		}
		if !validCompounds[c] {
			return fmt.Errorf("field.reference_compounds.%s %q is not a recognized compound", w, c)
		}
	}
	for w := range f.ReferenceCompounds {
		if !validWeather[w] {
			return fmt.Errorf("field.reference_compounds.%s is not a recognized weather condition", w)
		}
	}
	return nil
}

func inUnitRange(v float64) bool {
	return !math.IsNaN(v) && v >= 0 && v <= 1
}

func validateFinitePositive(name string, val float64) error {
	if math.IsNaN(val) || math.IsInf(val, 0) {
		return fmt.Errorf("%s must be a finite number, got %f", name, val)
	}
	if val <= 0 {
		return fmt.Errorf("%s must be positive, got %f", name, val)
	}
	return nil
}
