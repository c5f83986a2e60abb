package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"github.com/pitwall-sim/pitwall/internal/observability"
	"github.com/pitwall-sim/pitwall/sim"
	"github.com/pitwall-sim/pitwall/sim/catalog"
)

// simulateRequest is the POST /api/simulate body. Seed is optional.
type simulateRequest struct {
	sim.SimulationRequest
	Seed *int64 `json:"seed,omitempty"`
}

func (s *Server) handleSimulate(w http.ResponseWriter, r *http.Request) {
	log := logEntry(r)

	var body simulateRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&body); err != nil {
		log.Debugf("malformed simulate request: %v", err)
		writeJSON(w, http.StatusBadRequest, errorBody{Error: observability.OutcomeMalformedRequest, Message: err.Error()})
		s.collector.RecordSimulation(observability.OutcomeMalformedRequest, 0, 0)
		return
	}

	seed := s.seeds()
	if body.Seed != nil {
		seed = *body.Seed
	}
	w.Header().Set(SeedHeader, strconv.FormatInt(seed, 10))

	ctx := otel.GetTextMapPropagator().Extract(r.Context(), propagation.HeaderCarrier(r.Header))
	_, span := s.tracer.Start(ctx, "simulate", trace.WithAttributes(
		attribute.String("pitwall.driver", body.Driver),
		attribute.String("pitwall.track", body.Track),
		attribute.String("pitwall.compound", body.Compound),
		attribute.String("pitwall.weather", body.Weather),
		attribute.Int("pitwall.laps", body.Laps),
		attribute.Int64("pitwall.seed", seed),
	))
	defer span.End()

	result, err := s.sim.Simulate(body.SimulationRequest, sim.NewSimulationKey(seed))
	if err != nil {
		status, payload, outcome := classify(err)
		span.RecordError(err)
		span.SetStatus(codes.Error, outcome)
		if status >= http.StatusInternalServerError {
			log.WithField("seed", seed).Errorf("simulation failed: %v", err)
		} else {
			log.Debugf("rejected simulate request: %v", err)
		}
		s.collector.RecordSimulation(outcome, 0, 0)
		writeJSON(w, status, payload)
		return
	}

	span.SetAttributes(
		attribute.Int("pitwall.final_position", result.FinalPosition),
		attribute.Int("pitwall.pit_stops", len(result.PitEvents)),
	)
	s.collector.RecordSimulation(observability.OutcomeOK, len(result.PitEvents), result.FinalPosition)
	log.WithField("seed", seed).Infof("simulated %s: P%d", result.PitStrategy, result.FinalPosition)
	writeJSON(w, http.StatusOK, result.Response())
}

type catalogEntry struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

type lapRange struct {
	Min int `json:"min"`
	Max int `json:"max"`
}

// catalogResponse lists the choices a client may offer on its setup page.
type catalogResponse struct {
	Drivers   []catalogEntry `json:"drivers"`
	Tracks    []catalogEntry `json:"tracks"`
	Compounds []catalogEntry `json:"compounds"`
	Weather   []catalogEntry `json:"weather"`
	Laps      lapRange       `json:"laps"`
}

func (s *Server) handleCatalog(w http.ResponseWriter, _ *http.Request) {
	cat := s.sim.Catalog()
	resp := catalogResponse{Laps: lapRange{Min: sim.MinLaps, Max: sim.MaxLaps}}

	for _, key := range cat.DriverKeys() {
		d, _ := cat.Driver(key)
		resp.Drivers = append(resp.Drivers, catalogEntry{Key: key, Name: d.Name})
	}
	for _, key := range cat.TrackKeys() {
		t, _ := cat.Track(key)
		resp.Tracks = append(resp.Tracks, catalogEntry{Key: key, Name: t.Name})
	}
	for _, c := range catalog.AllCompounds {
		spec, _ := cat.Compound(c)
		resp.Compounds = append(resp.Compounds, catalogEntry{Key: string(c), Name: spec.Name})
	}
	for _, wx := range catalog.AllWeather {
		spec, _ := cat.WeatherSpec(wx)
		resp.Weather = append(resp.Weather, catalogEntry{Key: string(wx), Name: spec.Name})
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
