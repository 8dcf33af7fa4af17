package events

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

func TestDefaultBusExists(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	described, err := r.DescribeEventBus(&DescribeEventBusRequest{})
	require.NoError(t, err)
	assert.Equal(t, "default", described.Name)
	assert.Equal(t, "arn:aws:events:us-east-1:000000000000:event-bus/default", described.ARN)

	err = r.DeleteEventBus(&DeleteEventBusRequest{Name: "default"})
	assert.Equal(t, "ValidationException", wire.AsAPIError(err).Code)
}

func TestEventBusLifecycle(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	created, err := r.CreateEventBus(&CreateEventBusRequest{Name: "orders"})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:events:us-east-1:000000000000:event-bus/orders", created.EventBusARN)

	_, err = r.CreateEventBus(&CreateEventBusRequest{Name: "orders"})
	assert.Equal(t, "ResourceAlreadyExistsException", wire.AsAPIError(err).Code)

	buses, err := r.ListEventBuses(&ListEventBusesRequest{})
	require.NoError(t, err)
	require.Len(t, buses.EventBuses, 2)
	assert.Equal(t, "default", buses.EventBuses[0].Name)

	require.NoError(t, r.DeleteEventBus(&DeleteEventBusRequest{Name: "orders"}))
	_, err = r.DescribeEventBus(&DescribeEventBusRequest{Name: "orders"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestPutEventsPerEntryFailure(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	resp, err := r.PutEvents(&PutEventsRequest{Entries: []PutEventsRequestEntry{
		{Source: "app.orders", DetailType: "OrderPlaced", Detail: `{"id":1}`},
		{Source: "app.orders", EventBusName: "missing"},
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, resp.FailedEntryCount)
	require.Len(t, resp.Entries, 2)
	assert.NotEmpty(t, resp.Entries[0].EventID)
	assert.Equal(t, "ResourceNotFoundException", resp.Entries[1].ErrorCode)
}

func TestRulesAndTargets(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	put, err := r.PutRule(&PutRuleRequest{
		Name:         "on-order",
		EventPattern: `{"source":["app.orders"]}`,
	})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:events:us-east-1:000000000000:rule/default/on-order", put.RuleARN)

	described, err := r.DescribeRule(&DescribeRuleRequest{Name: "on-order"})
	require.NoError(t, err)
	assert.Equal(t, "ENABLED", described.State)

	// PutRule on an existing name updates in place.
	_, err = r.PutRule(&PutRuleRequest{Name: "on-order", State: "DISABLED"})
	require.NoError(t, err)
	described, err = r.DescribeRule(&DescribeRuleRequest{Name: "on-order"})
	require.NoError(t, err)
	assert.Equal(t, "DISABLED", described.State)

	_, err = r.PutTargets(&PutTargetsRequest{
		Rule: "on-order",
		Targets: []Target{
			{ID: "queue", ARN: "arn:aws:sqs:us-east-1:000000000000:orders"},
			{ID: "fn", ARN: "arn:aws:lambda:us-east-1:000000000000:function:handler"},
		},
	})
	require.NoError(t, err)

	targets, err := r.ListTargetsByRule(&ListTargetsByRuleRequest{Rule: "on-order"})
	require.NoError(t, err)
	require.Len(t, targets.Targets, 2)
	assert.Equal(t, "fn", targets.Targets[0].ID)

	_, err = r.RemoveTargets(&RemoveTargetsRequest{Rule: "on-order", IDs: []string{"fn"}})
	require.NoError(t, err)
	targets, err = r.ListTargetsByRule(&ListTargetsByRuleRequest{Rule: "on-order"})
	require.NoError(t, err)
	require.Len(t, targets.Targets, 1)

	require.NoError(t, r.DeleteRule(&DeleteRuleRequest{Name: "on-order"}))
	_, err = r.DescribeRule(&DescribeRuleRequest{Name: "on-order"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestResourceTags(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	created, err := r.CreateEventBus(&CreateEventBusRequest{
		Name: "orders", Tags: []Tag{{Key: "env", Value: "test"}},
	})
	require.NoError(t, err)

	require.NoError(t, r.TagResource(&TagResourceRequest{
		ResourceARN: created.EventBusARN, Tags: []Tag{{Key: "team", Value: "core"}},
	}))
	listed, err := r.ListTagsForResource(&ListTagsForResourceRequest{ResourceARN: created.EventBusARN})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}}, listed.Tags)

	require.NoError(t, r.UntagResource(&UntagResourceRequest{
		ResourceARN: created.EventBusARN, TagKeys: []string{"env"},
	}))
	listed, err = r.ListTagsForResource(&ListTagsForResourceRequest{ResourceARN: created.EventBusARN})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "team", Value: "core"}}, listed.Tags)
}
