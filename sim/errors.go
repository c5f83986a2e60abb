package sim

import "fmt"

// InvalidInputError reports a request field that is out of range or not a
// recognized enum value. Callers surface it as a client error.
type InvalidInputError struct {
	Field   string
	Value   string
	Message string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
}

// UnknownCatalogEntryError reports a driver or track key missing from the catalog.
type UnknownCatalogEntryError struct {
	Field string
	Value string
}

func (e *UnknownCatalogEntryError) Error() string {
	return fmt.Sprintf("unknown %s %q", e.Field, e.Value)
}

// SimulationError reports a broken internal invariant. The simulation that
// raised it returns no result.
type SimulationError struct {
	Lap    int // 0 when not tied to a lap
	Reason string
}

func (e *SimulationError) Error() string {
	if e.Lap > 0 {
		return fmt.Sprintf("simulation invariant violated at lap %d: %s", e.Lap, e.Reason)
	}
	return fmt.Sprintf("simulation invariant violated: %s", e.Reason)
}

func invariantf(lap int, format string, args ...any) error {
	return &SimulationError{Lap: lap, Reason: fmt.Sprintf(format, args...)}
}
