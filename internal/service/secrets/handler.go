package secrets

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "secretsmanager"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterException"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterException"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the Secrets Manager JSON
// protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "secretsmanager",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateSecret":   action(r.CreateSecret),
			"DeleteSecret":   action(r.DeleteSecret),
			"RestoreSecret":  action(r.RestoreSecret),
			"DescribeSecret": action(r.DescribeSecret),
			"ListSecrets":    action(r.ListSecrets),
			"UpdateSecret":   action(r.UpdateSecret),

			"GetSecretValue":       action(r.GetSecretValue),
			"PutSecretValue":       action(r.PutSecretValue),
			"ListSecretVersionIds": action(r.ListSecretVersionIDs),

			"TagResource":   actionNoOutput(r.TagResource),
			"UntagResource": actionNoOutput(r.UntagResource),
		},
	}
}
