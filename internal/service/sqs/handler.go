package sqs

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "AmazonSQS"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterValue"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidParameterValue"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the SQS JSON protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "sqs",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateQueue":        action(r.CreateQueue),
			"DeleteQueue":        actionNoOutput(r.DeleteQueue),
			"GetQueueUrl":        action(r.GetQueueURL),
			"ListQueues":         action(r.ListQueues),
			"GetQueueAttributes": action(r.GetQueueAttributes),
			"SetQueueAttributes": actionNoOutput(r.SetQueueAttributes),
			"PurgeQueue":         actionNoOutput(r.PurgeQueue),

			"SendMessage":      action(r.SendMessage),
			"SendMessageBatch": action(r.SendMessageBatch),
			"ReceiveMessage": func(ctx context.Context, body []byte) (any, error) {
				var req ReceiveMessageRequest
				if err := wire.DecodeJSON(body, &req, "InvalidParameterValue"); err != nil {
					return nil, err
				}
				return r.ReceiveMessage(ctx, &req)
			},
			"DeleteMessage":                actionNoOutput(r.DeleteMessage),
			"DeleteMessageBatch":           action(r.DeleteMessageBatch),
			"ChangeMessageVisibility":      actionNoOutput(r.ChangeMessageVisibility),
			"ChangeMessageVisibilityBatch": action(r.ChangeMessageVisibilityBatch),

			"TagQueue":         actionNoOutput(r.TagQueue),
			"UntagQueue":       actionNoOutput(r.UntagQueue),
			"ListQueueTags":    action(r.ListQueueTags),
			"AddPermission":    actionNoOutput(r.AddPermission),
			"RemovePermission": actionNoOutput(r.RemovePermission),

			"ListDeadLetterSourceQueues": action(r.ListDeadLetterSourceQueues),
			"StartMessageMoveTask":       action(r.StartMessageMoveTask),
			"CancelMessageMoveTask":      action(r.CancelMessageMoveTask),
			"ListMessageMoveTasks":       action(r.ListMessageMoveTasks),
		},
	}
}
