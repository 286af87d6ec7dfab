// Package handlers provides HTTP handlers for the inventory API.
package handlers

import (
	"encoding/json"
	"net/http"
)

// Envelope is the response wrapper shared by every endpoint.
type Envelope struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

const (
	// StatusSuccess marks a normal response.
	StatusSuccess = "success"
	// StatusWarning marks a degraded response served from fallback values.
	StatusWarning = "warning"
	// StatusError marks a failed request.
	StatusError = "error"
)

// fallbackMessage accompanies warning responses whose payload came from the
// deterministic fallback table rather than the model.
const fallbackMessage = "Model response was unavailable or could not be parsed; returning estimated values."

func writeJSON(w http.ResponseWriter, status int, envelope Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(envelope)
}

func writeSuccess(w http.ResponseWriter, data any) {
	writeJSON(w, http.StatusOK, Envelope{Status: StatusSuccess, Data: data})
}

func writeWarning(w http.ResponseWriter, message string, data any) {
	writeJSON(w, http.StatusOK, Envelope{Status: StatusWarning, Message: message, Data: data})
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, Envelope{Status: StatusError, Message: message})
}
