package server

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/errors"
	"github.com/Bloop15/House-Price-Predictor-Deployment/pkg/json"
)

// errorBody is the JSON shape of every error response
type errorBody struct {
	Error errorDetail `json:"error"`
}

type errorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// StatusFor maps an error to its HTTP status
func StatusFor(err error) int {
	switch errors.TypeOf(err) {
	case errors.ErrorTypeValidation, errors.ErrorTypeMalformedInput:
		return http.StatusBadRequest
	case errors.ErrorTypeScalingMismatch, errors.ErrorTypeUnrecognizedCategory:
		return http.StatusUnprocessableEntity
	case errors.ErrorTypeArtifact:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v interface{}) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encode response", zap.Error(err))
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	s.writeErrorStatus(w, r, StatusFor(err), string(errors.TypeOf(err)), err)
}

func (s *Server) writeErrorStatus(w http.ResponseWriter, r *http.Request, status int, typ string, err error) {
	msg := err.Error()
	var e *errors.Error
	if errors.As(err, &e) {
		msg = e.Message
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
	}

	l := s.requestLogger(r)
	if status >= http.StatusInternalServerError {
		l.Error("request failed", zap.Error(err), zap.Int("status", status))
	} else {
		l.Debug("request rejected", zap.Error(err), zap.Int("status", status))
	}

	s.writeJSON(w, status, errorBody{Error: errorDetail{Type: typ, Message: msg}})
}
