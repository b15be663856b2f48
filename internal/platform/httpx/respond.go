package httpx

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
)

// Envelope is the body shape of every API response.
type Envelope struct {
	Success bool              `json:"success"`
	Data    any               `json:"data,omitempty"`
	Error   string            `json:"error,omitempty"`
	Details map[string]string `json:"details,omitempty"`
}

// JSON sends a JSON response with the given status code.
func JSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// OK writes a successful envelope.
func OK(w http.ResponseWriter, status int, data any) {
	JSON(w, status, Envelope{Success: true, Data: data})
}

// Fail writes a failed envelope with the given message.
func Fail(w http.ResponseWriter, status int, message string) {
	JSON(w, status, Envelope{Success: false, Error: message})
}

// Responder writes error envelopes and logs unexpected failures.
type Responder struct {
	Logger *slog.Logger
	// Debug exposes internal error detail to callers. Development only.
	Debug bool
}

// Error maps err onto the taxonomy and writes the matching envelope.
func (rs Responder) Error(w http.ResponseWriter, r *http.Request, err error) {
	status := StatusFor(err)
	body := Envelope{Success: false, Error: messageFor(err, status)}

	var verr *ValidationError
	if errors.As(err, &verr) && !verr.Empty() {
		body.Details = verr.Fields
	}

	if status == http.StatusInternalServerError {
		if rs.Logger != nil {
			rs.Logger.Error("request failed",
				slog.String("method", r.Method),
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.Any("error", err))
		}
		if rs.Debug {
			body.Error = err.Error()
		}
	}
	JSON(w, status, body)
}

// DecodeJSON decodes JSON request body into the target struct.
func DecodeJSON(r *http.Request, target any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(target); err != nil {
		if errors.Is(err, io.EOF) {
			return Invalid("body", "Request body is required")
		}
		return Invalid("body", "Request body is not valid JSON")
	}
	return nil
}
