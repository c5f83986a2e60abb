package sim

import (
	"fmt"
	"strings"

	"github.com/pitwall-sim/pitwall/sim/catalog"
)

// Decision-table rule names.
const (
	RuleRaceStart = "race-start"
	RuleFinalLap  = "final-lap"
	RuleThreshold = "threshold"
	RuleScheduled = "scheduled"
	RuleStayOut   = "stay-out"
)

const (
	// Abrasiveness bands shift the critical health threshold.
	highAbrasiveness       = 0.7
	lowAbrasiveness        = 0.4
	highAbrasivenessAdjust = 5.0
	lowAbrasivenessAdjust  = -3.0

	// MinScheduledStint is the shortest stint after which a scheduled stop is honoured.
	MinScheduledStint = 5
	// ScheduledStopMaxHealth is the highest health at which a scheduled stop is honoured.
	ScheduledStopMaxHealth = 85.0
	// ScheduleMinRaceLaps is the race length below which no stops are scheduled.
	ScheduleMinRaceLaps = 10
)

// PitContext is everything a decision-table rule may look at.
type PitContext struct {
	Lap       int
	TotalLaps int
	Tyres     TyreState
	Threshold float64
	Scheduled bool // lap appears in the race's stop schedule
	Refit     bool // a stop would fit the compound already on the car
}

// PitRule is one row of the decision table.
type PitRule struct {
	Name    string
	Matches func(ctx PitContext) bool
	Pit     bool
}

// DecisionTable is evaluated top to bottom; the first matching rule decides.
// The threshold rule sits above the schedule, so worn-out tyres always win
// over the plan. A scheduled stop that would refit the same compound is
// skipped; the threshold still replaces a worn set of it.
type DecisionTable []PitRule

// DefaultDecisionTable is the rule set used by NewPitPlanner.
var DefaultDecisionTable = DecisionTable{
	{Name: RuleRaceStart, Pit: false, Matches: func(ctx PitContext) bool { return ctx.Lap <= 1 }},
	{Name: RuleFinalLap, Pit: false, Matches: func(ctx PitContext) bool { return ctx.Lap >= ctx.TotalLaps }},
	{Name: RuleThreshold, Pit: true, Matches: func(ctx PitContext) bool { return ctx.Tyres.HealthPct <= ctx.Threshold }},
	{Name: RuleScheduled, Pit: true, Matches: func(ctx PitContext) bool {
		return ctx.Scheduled && !ctx.Refit &&
			ctx.Tyres.StintAgeLaps >= MinScheduledStint && ctx.Tyres.HealthPct <= ScheduledStopMaxHealth
	}},
	{Name: RuleStayOut, Pit: false, Matches: func(PitContext) bool { return true }},
}

// Decide returns the first rule matching ctx.
func (t DecisionTable) Decide(ctx PitContext) PitRule {
	for _, rule := range t {
		if rule.Matches(ctx) {
			return rule
		}
	}
	return PitRule{Name: RuleStayOut}
}

// ScheduleEntry plans stops for races started on Compound with at least MinLaps laps.
// Stops fall at the given fractions of race distance.
type ScheduleEntry struct {
	Compound  catalog.Compound
	MinLaps   int
	Fractions []float64
}

// DefaultSchedule is the strategy table keyed by starting compound and race length.
// Entries are ordered; the first match wins. Wet-weather compounds run to the
// threshold only.
var DefaultSchedule = []ScheduleEntry{
	{Compound: catalog.CompoundSoft, MinLaps: 21, Fractions: []float64{1.0 / 3, 2.0 / 3}},
	{Compound: catalog.CompoundSoft, MinLaps: ScheduleMinRaceLaps, Fractions: []float64{0.5}},
	{Compound: catalog.CompoundMedium, MinLaps: ScheduleMinRaceLaps, Fractions: []float64{0.5}},
	{Compound: catalog.CompoundHard, MinLaps: ScheduleMinRaceLaps, Fractions: []float64{0.6}},
}

// ScheduledLaps returns the planned stop laps for a race, in ascending order.
// Laps outside [2, laps-1] are dropped.
func ScheduledLaps(schedule []ScheduleEntry, start catalog.Compound, laps int) []int {
	for _, entry := range schedule {
		if entry.Compound != start || laps < entry.MinLaps {
			continue
		}
		out := make([]int, 0, len(entry.Fractions))
		for _, f := range entry.Fractions {
			lap := int(f * float64(laps))
			if lap < 2 || lap > laps-1 {
				continue
			}
			if len(out) > 0 && out[len(out)-1] >= lap {
				continue
			}
			out = append(out, lap)
		}
		return out
	}
	return nil
}

// CriticalThreshold is the pit threshold for a compound on a track of the
// given abrasiveness.
func CriticalThreshold(spec catalog.CompoundSpec, abrasiveness float64) float64 {
	switch {
	case abrasiveness >= highAbrasiveness:
		return spec.CriticalHealth + highAbrasivenessAdjust
	case abrasiveness < lowAbrasiveness:
		return spec.CriticalHealth + lowAbrasivenessAdjust
	default:
		return spec.CriticalHealth
	}
}

// PitDecision is the planner's verdict for one lap.
type PitDecision struct {
	Pit       bool
	Rule      string
	Threshold float64
	Next      catalog.Compound // replacement compound; empty unless Pit
}

// PitPlanner decides lap by lap whether to stop and what to fit.
type PitPlanner struct {
	cat       *catalog.Catalog
	table     DecisionTable
	track     catalog.Track
	weather   catalog.WeatherSpec
	laps      int
	scheduled map[int]bool
}

// NewPitPlanner builds the planner for one validated race.
func NewPitPlanner(cat *catalog.Catalog, req ValidatedRequest) *PitPlanner {
	scheduled := make(map[int]bool)
	for _, lap := range ScheduledLaps(DefaultSchedule, req.Compound(), req.Laps()) {
		scheduled[lap] = true
	}
	return &PitPlanner{
		cat:       cat,
		table:     DefaultDecisionTable,
		track:     req.Track(),
		weather:   req.WeatherSpec(),
		laps:      req.Laps(),
		scheduled: scheduled,
	}
}

// Decide evaluates the decision table before lap is run on tyres.
func (p *PitPlanner) Decide(lap int, tyres TyreState) (PitDecision, error) {
	spec, ok := p.cat.Compound(tyres.Compound)
	if !ok {
		return PitDecision{}, invariantf(lap, "compound %q not in catalog", tyres.Compound)
	}
	next := p.NextCompound(spec)
	ctx := PitContext{
		Lap:       lap,
		TotalLaps: p.laps,
		Tyres:     tyres,
		Threshold: CriticalThreshold(spec, p.track.Abrasiveness),
		Scheduled: p.scheduled[lap],
		Refit:     next == tyres.Compound,
	}
	rule := p.table.Decide(ctx)
	d := PitDecision{Pit: rule.Pit, Rule: rule.Name, Threshold: ctx.Threshold}
	if d.Pit {
		d.Next = next
	}
	return d, nil
}

// NextCompound picks the replacement for an exhausted set: the weather's
// forced compound if there is one, otherwise the compound's catalog successor.
func (p *PitPlanner) NextCompound(current catalog.CompoundSpec) catalog.Compound {
	if p.weather.ForcedCompound != "" {
		return p.weather.ForcedCompound
	}
	return current.Next
}

// PitEvent builds the event for a stop taken with decision d.
func (p *PitPlanner) PitEvent(lap int, before catalog.Compound, d PitDecision) PitEvent {
	return PitEvent{
		LapNumber:      lap,
		TimeLoss:       p.track.PitLaneLoss,
		CompoundBefore: before,
		CompoundAfter:  d.Next,
		Rule:           d.Rule,
	}
}

// DescribeStrategy renders pit events as e.g. "1-Stop: Lap 22 (Medium → Hard)".
// A race without stops is described by its only compound.
func DescribeStrategy(cat *catalog.Catalog, start catalog.Compound, events []PitEvent) string {
	if len(events) == 0 {
		return fmt.Sprintf("0-Stop: %s to the flag", compoundName(cat, start))
	}
	stops := make([]string, 0, len(events))
	for _, ev := range events {
		stops = append(stops, fmt.Sprintf("Lap %d (%s → %s)",
			ev.LapNumber, compoundName(cat, ev.CompoundBefore), compoundName(cat, ev.CompoundAfter)))
	}
	return fmt.Sprintf("%d-Stop: %s", len(events), strings.Join(stops, ", "))
}

func compoundName(cat *catalog.Catalog, c catalog.Compound) string {
	if spec, ok := cat.Compound(c); ok && spec.Name != "" {
		return spec.Name
	}
	return string(c)
}
