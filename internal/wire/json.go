package wire

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/pkg/metrics"
)

// ActionFunc handles one decoded action. A nil response marshals as "{}".
type ActionFunc func(ctx context.Context, body []byte) (any, error)

// JSONHandler serves the AWS JSON protocol: POST / with an
// "X-Amz-Target: <TargetPrefix>.<Action>" header and a JSON body.
type JSONHandler struct {
	// Service names the handler in logs and metrics ("sqs", "dynamodb", ...).
	Service string
	// TargetPrefix is the service part of the target header ("AmazonSQS").
	TargetPrefix string
	Actions      map[string]ActionFunc
}

func (h *JSONHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	target := r.Header.Get("X-Amz-Target")
	action, ok := strings.CutPrefix(target, h.TargetPrefix+".")
	if target == "" || !ok {
		h.finish(w, "", start, NewError("InvalidAction", http.StatusBadRequest,
			"invalid target: %q", target))
		return
	}

	fn, ok := h.Actions[action]
	if !ok {
		h.finish(w, action, start, NewError("InvalidAction", http.StatusBadRequest,
			"unknown action: %s.%s", h.TargetPrefix, action))
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		h.finish(w, action, start, NewError("InvalidParameterValue",
			http.StatusBadRequest, "unreadable body: %v", err))
		return
	}

	resp, err := fn(r.Context(), body)
	if err != nil {
		h.finish(w, action, start, err)
		return
	}
	if resp == nil {
		resp = struct{}{}
	}
	WriteJSON(w, http.StatusOK, resp)
	metrics.ObserveRequest(h.Service, action, http.StatusOK, time.Since(start))
}

func (h *JSONHandler) finish(w http.ResponseWriter, action string, start time.Time, err error) {
	ae := AsAPIError(err)
	logger.Debug("request failed",
		"service", h.Service, "action", action, "code", ae.Code, "error", ae.Message)
	WriteJSONError(w, ae)
	metrics.ObserveRequest(h.Service, action, ae.Status, time.Since(start))
}

// WriteJSON writes v as a JSON response body.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Error("failed to encode response", "error", err)
	}
}

// WriteJSONError writes the AWS JSON protocol error body.
func WriteJSONError(w http.ResponseWriter, ae *APIError) {
	w.Header().Set("Content-Type", "application/x-amz-json-1.0")
	w.WriteHeader(ae.Status)
	_ = json.NewEncoder(w).Encode(map[string]string{
		"__type":  ae.Code,
		"message": ae.Message,
	})
}

// DecodeJSON unmarshals an action body, mapping malformed input to the
// service's bad-request code.
func DecodeJSON(body []byte, v any, badRequestCode string) error {
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, v); err != nil {
		return NewError(badRequestCode, http.StatusBadRequest, "malformed request: %v", err)
	}
	return nil
}
