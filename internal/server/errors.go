package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/pitwall-sim/pitwall/internal/observability"
	"github.com/pitwall-sim/pitwall/sim"
)

// errorBody is the JSON error envelope. Empty fields are omitted.
type errorBody struct {
	Error   string `json:"error"`
	Field   string `json:"field,omitempty"`
	Value   string `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// classify maps a simulation error to its status, body and metric outcome.
func classify(err error) (int, errorBody, string) {
	var invalid *sim.InvalidInputError
	var unknown *sim.UnknownCatalogEntryError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, errorBody{
			Error:   observability.OutcomeInvalidInput,
			Field:   invalid.Field,
			Message: invalid.Message,
		}, observability.OutcomeInvalidInput
	case errors.As(err, &unknown):
		return http.StatusBadRequest, errorBody{
			Error: observability.OutcomeUnknownCatalogEntry,
			Field: unknown.Field,
			Value: unknown.Value,
		}, observability.OutcomeUnknownCatalogEntry
	default:
		return http.StatusInternalServerError, errorBody{
			Error: observability.OutcomeSimulationError,
		}, observability.OutcomeSimulationError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.Warnf("encoding response: %v", err)
	}
}
