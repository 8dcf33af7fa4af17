package firehose

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "Firehose_20150804"

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

// NewHandler returns the HTTP handler speaking the Firehose JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "firehose",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateDeliveryStream":   action(r.CreateDeliveryStream),
			"DeleteDeliveryStream":   actionNoOutput(r.DeleteDeliveryStream),
			"DescribeDeliveryStream": action(r.DescribeDeliveryStream),
			"ListDeliveryStreams":    action(r.ListDeliveryStreams),
			"UpdateDestination":      actionNoOutput(r.UpdateDestination),

			"PutRecord":      action(r.PutRecord),
			"PutRecordBatch": action(r.PutRecordBatch),

			"TagDeliveryStream":         actionNoOutput(r.TagDeliveryStream),
			"UntagDeliveryStream":       actionNoOutput(r.UntagDeliveryStream),
			"ListTagsForDeliveryStream": action(r.ListTagsForDeliveryStream),
		},
	}
}
