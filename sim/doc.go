// Package sim provides the single-car race strategy simulator.
//
// # Reading Guide
//
// A race is simulated lap by lap in simulator.go. Each lap:
//   - pit_planner.go decides whether to stop, using an ordered decision table
//   - laptime.go times the lap on the (possibly just fitted) tyres
//   - tyre.go advances tyre health for the lap
//
// outcome.go then reduces the laps into totals and a finishing position
// against a synthetic competitor field.
//
// # Inputs and Reproducibility
//
// Requests are validated against a catalog (sim/catalog) in request.go.
// All randomness comes from a PartitionedRNG (rng.go) derived from the
// request's SimulationKey, so a seeded request always yields the same race.
//
// # Errors
//
// Validation fails with InvalidInputError or UnknownCatalogEntryError. A
// broken internal invariant fails with SimulationError and no result.
//
// # Tracing
//
// Pass WithTraceLevel(trace.TraceLevelDecisions) to NewSimulator to record
// every pit decision and stint (sim/trace).
package sim
