package kms

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "TrentService"

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

// NewHandler returns the HTTP handler speaking the KMS JSON protocol. The
// target prefix is TrentService, KMS's original internal name.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "kms",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateKey":           action(r.CreateKey),
			"DescribeKey":         action(r.DescribeKey),
			"ListKeys":            action(r.ListKeys),
			"EnableKey":           actionNoOutput(r.EnableKey),
			"DisableKey":          actionNoOutput(r.DisableKey),
			"ScheduleKeyDeletion": action(r.ScheduleKeyDeletion),
			"CancelKeyDeletion":   action(r.CancelKeyDeletion),

			"Encrypt":                         action(r.Encrypt),
			"Decrypt":                         action(r.Decrypt),
			"GenerateDataKey":                 action(r.GenerateDataKey),
			"GenerateDataKeyWithoutPlaintext": action(r.GenerateDataKeyWithoutPlaintext),
			"GenerateRandom":                  action(r.GenerateRandom),
			"Sign":                            action(r.Sign),
			"Verify":                          action(r.Verify),

			"CreateAlias": actionNoOutput(r.CreateAlias),
			"DeleteAlias": actionNoOutput(r.DeleteAlias),
			"ListAliases": action(r.ListAliases),

			"GetKeyPolicy": action(r.GetKeyPolicy),
			"PutKeyPolicy": actionNoOutput(r.PutKeyPolicy),

			"TagResource":      actionNoOutput(r.TagResource),
			"UntagResource":    actionNoOutput(r.UntagResource),
			"ListResourceTags": action(r.ListResourceTags),
		},
	}
}
