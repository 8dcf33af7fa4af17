package dynamodb

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "DynamoDB_20120810"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, typePrefix+"ValidationException"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, typePrefix+"ValidationException"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the DynamoDB JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "dynamodb",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateTable":   action(r.CreateTable),
			"DeleteTable":   action(r.DeleteTable),
			"DescribeTable": action(r.DescribeTable),
			"ListTables":    action(r.ListTables),

			"PutItem":    action(r.PutItem),
			"GetItem":    action(r.GetItem),
			"DeleteItem": action(r.DeleteItem),
			"UpdateItem": action(r.UpdateItem),

			"Query": action(r.Query),
			"Scan":  action(r.Scan),

			"BatchGetItem":   action(r.BatchGetItem),
			"BatchWriteItem": action(r.BatchWriteItem),

			"TagResource":        actionNoOutput(r.TagResource),
			"UntagResource":      actionNoOutput(r.UntagResource),
			"ListTagsOfResource": action(r.ListTagsOfResource),
		},
	}
}
