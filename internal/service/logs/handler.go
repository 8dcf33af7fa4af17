package logs

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "Logs_20140328"

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

// NewHandler returns the HTTP handler speaking the CloudWatch Logs JSON
// protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "logs",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateLogGroup":    actionNoOutput(r.CreateLogGroup),
			"DeleteLogGroup":    actionNoOutput(r.DeleteLogGroup),
			"DescribeLogGroups": action(r.DescribeLogGroups),

			"CreateLogStream":    actionNoOutput(r.CreateLogStream),
			"DeleteLogStream":    actionNoOutput(r.DeleteLogStream),
			"DescribeLogStreams": action(r.DescribeLogStreams),

			"PutLogEvents":    action(r.PutLogEvents),
			"GetLogEvents":    action(r.GetLogEvents),
			"FilterLogEvents": action(r.FilterLogEvents),

			"PutRetentionPolicy":    actionNoOutput(r.PutRetentionPolicy),
			"DeleteRetentionPolicy": actionNoOutput(r.DeleteRetentionPolicy),

			"TagLogGroup":         actionNoOutput(r.TagLogGroup),
			"UntagLogGroup":       actionNoOutput(r.UntagLogGroup),
			"ListTagsLogGroup":    action(r.ListTagsLogGroup),
			"TagResource":         actionNoOutput(r.TagResource),
			"UntagResource":       actionNoOutput(r.UntagResource),
			"ListTagsForResource": action(r.ListTagsForResource),
		},
	}
}
