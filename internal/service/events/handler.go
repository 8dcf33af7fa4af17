package events

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "AWSEvents"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "ValidationException"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "ValidationException"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the EventBridge JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "events",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateEventBus":   action(r.CreateEventBus),
			"DeleteEventBus":   actionNoOutput(r.DeleteEventBus),
			"DescribeEventBus": action(r.DescribeEventBus),
			"ListEventBuses":   action(r.ListEventBuses),

			"PutEvents": action(r.PutEvents),

			"PutRule":      action(r.PutRule),
			"DeleteRule":   actionNoOutput(r.DeleteRule),
			"DescribeRule": action(r.DescribeRule),
			"ListRules":    action(r.ListRules),

			"PutTargets":        action(r.PutTargets),
			"RemoveTargets":     action(r.RemoveTargets),
			"ListTargetsByRule": action(r.ListTargetsByRule),

			"TagResource":         actionNoOutput(r.TagResource),
			"UntagResource":       actionNoOutput(r.UntagResource),
			"ListTagsForResource": action(r.ListTagsForResource),
		},
	}
}
