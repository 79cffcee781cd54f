package devserver

import (
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog/log"

	"github.com/mycelian/mycelian-journal/internal/types"
)

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Error().Err(err).Msg("failed to encode JSON response")
	}
}

// writeError writes the error body the client decodes into its error message.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	writeJSON(w, statusCode, types.ErrorResponse{
		Error:   http.StatusText(statusCode),
		Code:    statusCode,
		Message: message,
	})
}
