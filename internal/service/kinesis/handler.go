package kinesis

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "Kinesis_20131202"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidArgumentException"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidArgumentException"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the Kinesis JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "kinesis",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateStream":          actionNoOutput(r.CreateStream),
			"DeleteStream":          actionNoOutput(r.DeleteStream),
			"DescribeStream":        action(r.DescribeStream),
			"DescribeStreamSummary": action(r.DescribeStreamSummary),
			"ListStreams":           action(r.ListStreams),
			"ListShards":            action(r.ListShards),

			"PutRecord":        action(r.PutRecord),
			"PutRecords":       action(r.PutRecords),
			"GetShardIterator": action(r.GetShardIterator),
			"GetRecords":       action(r.GetRecords),

			"AddTagsToStream":      actionNoOutput(r.AddTagsToStream),
			"RemoveTagsFromStream": actionNoOutput(r.RemoveTagsFromStream),
			"ListTagsForStream":    action(r.ListTagsForStream),

			"IncreaseStreamRetentionPeriod": actionNoOutput(r.IncreaseStreamRetentionPeriod),
			"DecreaseStreamRetentionPeriod": actionNoOutput(r.DecreaseStreamRetentionPeriod),
		},
	}
}
