package sfn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

const helloDefinition = `{"StartAt":"Hello","States":{"Hello":{"Type":"Pass","End":true}}}`

func newTestMachine(t *testing.T) (*Registry, string) {
	t.Helper()
	r := NewRegistry("us-east-1", "000000000000")
	created, err := r.CreateStateMachine(&CreateStateMachineRequest{
		Name:       "order-flow",
		Definition: helloDefinition,
		RoleARN:    "arn:aws:iam::000000000000:role/sfn",
	})
	require.NoError(t, err)
	return r, created.StateMachineARN
}

func TestStateMachineLifecycle(t *testing.T) {
	r, arn := newTestMachine(t)
	assert.Equal(t, "arn:aws:states:us-east-1:000000000000:stateMachine:order-flow", arn)

	_, err := r.CreateStateMachine(&CreateStateMachineRequest{Name: "order-flow"})
	assert.Equal(t, "StateMachineAlreadyExists", wire.AsAPIError(err).Code)

	desc, err := r.DescribeStateMachine(&DescribeStateMachineRequest{StateMachineARN: arn})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", desc.Status)
	assert.Equal(t, "STANDARD", desc.Type)
	assert.Equal(t, helloDefinition, desc.Definition)

	listed, err := r.ListStateMachines(&ListStateMachinesRequest{})
	require.NoError(t, err)
	require.Len(t, listed.StateMachines, 1)

	require.NoError(t, r.DeleteStateMachine(&DeleteStateMachineRequest{StateMachineARN: arn}))
	err = r.DeleteStateMachine(&DeleteStateMachineRequest{StateMachineARN: arn})
	assert.Equal(t, "StateMachineDoesNotExist", wire.AsAPIError(err).Code)
}

func TestExecutionSucceedsImmediately(t *testing.T) {
	r, arn := newTestMachine(t)

	started, err := r.StartExecution(&StartExecutionRequest{
		StateMachineARN: arn, Name: "run-1", Input: `{"order":42}`,
	})
	require.NoError(t, err)
	assert.Equal(t,
		"arn:aws:states:us-east-1:000000000000:execution:order-flow:run-1",
		started.ExecutionARN)

	desc, err := r.DescribeExecution(&DescribeExecutionRequest{ExecutionARN: started.ExecutionARN})
	require.NoError(t, err)
	assert.Equal(t, "SUCCEEDED", desc.Status)
	assert.Equal(t, `{"order":42}`, desc.Input)
	assert.Equal(t, `{"order":42}`, desc.Output)
	require.NotNil(t, desc.StopDate)

	_, err = r.StartExecution(&StartExecutionRequest{StateMachineARN: arn, Name: "run-1"})
	assert.Equal(t, "ExecutionAlreadyExists", wire.AsAPIError(err).Code)

	_, err = r.StartExecution(&StartExecutionRequest{
		StateMachineARN: "arn:aws:states:us-east-1:000000000000:stateMachine:missing",
	})
	assert.Equal(t, "StateMachineDoesNotExist", wire.AsAPIError(err).Code)
}

func TestExecutionHistory(t *testing.T) {
	r, arn := newTestMachine(t)
	started, err := r.StartExecution(&StartExecutionRequest{StateMachineARN: arn, Input: `{"a":1}`})
	require.NoError(t, err)

	history, err := r.GetExecutionHistory(&GetExecutionHistoryRequest{ExecutionARN: started.ExecutionARN})
	require.NoError(t, err)
	require.Len(t, history.Events, 2)
	assert.Equal(t, "ExecutionStarted", history.Events[0].Type)
	assert.Equal(t, "ExecutionSucceeded", history.Events[1].Type)
	assert.Equal(t, int64(1), history.Events[1].PreviousEventID)

	reversed, err := r.GetExecutionHistory(&GetExecutionHistoryRequest{
		ExecutionARN: started.ExecutionARN, ReverseOrder: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ExecutionSucceeded", reversed.Events[0].Type)
}

func TestStopAndListExecutions(t *testing.T) {
	r, arn := newTestMachine(t)
	first, err := r.StartExecution(&StartExecutionRequest{StateMachineARN: arn, Name: "a"})
	require.NoError(t, err)
	_, err = r.StartExecution(&StartExecutionRequest{StateMachineARN: arn, Name: "b"})
	require.NoError(t, err)

	_, err = r.StopExecution(&StopExecutionRequest{ExecutionARN: first.ExecutionARN})
	require.NoError(t, err)

	all, err := r.ListExecutions(&ListExecutionsRequest{StateMachineARN: arn})
	require.NoError(t, err)
	assert.Len(t, all.Executions, 2)

	aborted, err := r.ListExecutions(&ListExecutionsRequest{
		StateMachineARN: arn, StatusFilter: "ABORTED",
	})
	require.NoError(t, err)
	require.Len(t, aborted.Executions, 1)
	assert.Equal(t, "a", aborted.Executions[0].Name)

	// Task callbacks are accepted unconditionally.
	require.NoError(t, r.SendTaskSuccess(&SendTaskSuccessRequest{TaskToken: "tok", Output: "{}"}))
	require.NoError(t, r.SendTaskHeartbeat(&SendTaskHeartbeatRequest{TaskToken: "tok"}))
}

func TestStateMachineTags(t *testing.T) {
	r, arn := newTestMachine(t)

	require.NoError(t, r.TagResource(&TagResourceRequest{
		ResourceARN: arn, Tags: []Tag{{Key: "env", Value: "test"}},
	}))
	listed, err := r.ListTagsForResource(&ListTagsForResourceRequest{ResourceARN: arn})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}}, listed.Tags)

	require.NoError(t, r.UntagResource(&UntagResourceRequest{ResourceARN: arn, TagKeys: []string{"env"}}))
	listed, err = r.ListTagsForResource(&ListTagsForResourceRequest{ResourceARN: arn})
	require.NoError(t, err)
	assert.Empty(t, listed.Tags)

	err = r.TagResource(&TagResourceRequest{ResourceARN: "arn:bogus"})
	assert.Equal(t, "InvalidArn", wire.AsAPIError(err).Code)
}
