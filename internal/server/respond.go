package server

import (
	"encoding/json"
	"net/http"

	argerrors "github.com/argviz/argviz/pkg/errors"
)

// errorResponse is the JSON error envelope.
type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// writeJSON encodes v as the response body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError maps an error to its HTTP status and writes the envelope.
func (s *Server) writeError(w http.ResponseWriter, err error) {
	status := argerrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorResponse{
		Error: argerrors.UserMessage(err),
		Code:  string(argerrors.GetCode(err)),
	})
}
