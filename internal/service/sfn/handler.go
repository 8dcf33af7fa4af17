package sfn

import (
	"context"
	"net/http"

	"github.com/stratuslocal/stratus/internal/wire"
)

const targetPrefix = "AWSStepFunctions"

func action[Req, Resp any](fn func(*Req) (Resp, error)) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidExecutionInput"); err != nil {
			return nil, err
		}
		return fn(&req)
	}
}

func actionNoOutput[Req any](fn func(*Req) error) wire.ActionFunc {
	return func(_ context.Context, body []byte) (any, error) {
		var req Req
		if err := wire.DecodeJSON(body, &req, "InvalidExecutionInput"); err != nil {
			return nil, err
		}
		return nil, fn(&req)
	}
}

// NewHandler returns the HTTP handler speaking the Step Functions JSON
// protocol.
func NewHandler(r *Registry) http.Handler {
	return &wire.JSONHandler{
		Service:      "sfn",
		TargetPrefix: targetPrefix,
		Actions: map[string]wire.ActionFunc{
			"CreateStateMachine":   action(r.CreateStateMachine),
			"DeleteStateMachine":   actionNoOutput(r.DeleteStateMachine),
			"DescribeStateMachine": action(r.DescribeStateMachine),
			"ListStateMachines":    action(r.ListStateMachines),

			"StartExecution":      action(r.StartExecution),
			"StopExecution":       action(r.StopExecution),
			"DescribeExecution":   action(r.DescribeExecution),
			"ListExecutions":      action(r.ListExecutions),
			"GetExecutionHistory": action(r.GetExecutionHistory),

			"SendTaskSuccess":   actionNoOutput(r.SendTaskSuccess),
			"SendTaskFailure":   actionNoOutput(r.SendTaskFailure),
			"SendTaskHeartbeat": actionNoOutput(r.SendTaskHeartbeat),

			"TagResource":         actionNoOutput(r.TagResource),
			"UntagResource":       actionNoOutput(r.UntagResource),
			"ListTagsForResource": action(r.ListTagsForResource),
		},
	}
}
