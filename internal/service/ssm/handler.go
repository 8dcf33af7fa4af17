package ssm

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "AmazonSSM"

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

// NewHandler returns the HTTP handler speaking the SSM JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "ssm",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"PutParameter":        action(r.PutParameter),
			"GetParameter":        action(r.GetParameter),
			"GetParameters":       action(r.GetParameters),
			"GetParametersByPath": action(r.GetParametersByPath),
			"DeleteParameter":     actionNoOutput(r.DeleteParameter),
			"DeleteParameters":    action(r.DeleteParameters),
			"DescribeParameters":  action(r.DescribeParameters),

			"AddTagsToResource":      actionNoOutput(r.AddTagsToResource),
			"RemoveTagsFromResource": actionNoOutput(r.RemoveTagsFromResource),
			"ListTagsForResource":    action(r.ListTagsForResource),
		},
	}
}
