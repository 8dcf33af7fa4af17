package firehose

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestStream(t *testing.T) *Registry {
	t.Helper()
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.CreateDeliveryStream(&CreateDeliveryStreamRequest{DeliveryStreamName: "events"})
	require.NoError(t, err)
	return r
}

func TestDeliveryStreamLifecycle(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	created, err := r.CreateDeliveryStream(&CreateDeliveryStreamRequest{
		DeliveryStreamName: "events",
		Tags:               []Tag{{Key: "env", Value: "test"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:firehose:us-east-1:000000000000:deliverystream/events", created.DeliveryStreamARN)

	_, err = r.CreateDeliveryStream(&CreateDeliveryStreamRequest{DeliveryStreamName: "events"})
	assert.Equal(t, "ResourceInUseException", wire.AsAPIError(err).Code)

	desc, err := r.DescribeDeliveryStream(&DescribeDeliveryStreamRequest{DeliveryStreamName: "events"})
	require.NoError(t, err)
	d := desc.DeliveryStreamDescription
	assert.Equal(t, "ACTIVE", d.DeliveryStreamStatus)
	assert.Equal(t, "DirectPut", d.DeliveryStreamType)
	assert.Equal(t, "1", d.VersionID)
	require.Len(t, d.Destinations, 1)
	assert.Equal(t, "destinationId-000000000001", d.Destinations[0].DestinationID)
	assert.Equal(t, "DISABLED", d.DeliveryStreamEncryptionConfiguration.Status)

	require.NoError(t, r.DeleteDeliveryStream(&DeleteDeliveryStreamRequest{DeliveryStreamName: "events"}))
	err = r.DeleteDeliveryStream(&DeleteDeliveryStreamRequest{DeliveryStreamName: "events"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestPutRecordBuffers(t *testing.T) {
	r := newTestStream(t)

	put, err := r.PutRecord(&PutRecordRequest{
		DeliveryStreamName: "events",
		Record:             RecordEntry{Data: awsutil.Base64Encode([]byte("hello"))},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, put.RecordID)
	assert.False(t, put.Encrypted)

	batch, err := r.PutRecordBatch(&PutRecordBatchRequest{
		DeliveryStreamName: "events",
		Records: []RecordEntry{
			{Data: awsutil.Base64Encode([]byte("a"))},
			{Data: awsutil.Base64Encode([]byte("b"))},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, batch.FailedPutCount)
	require.Len(t, batch.RequestResponses, 2)
	assert.NotEqual(t, batch.RequestResponses[0].RecordID, batch.RequestResponses[1].RecordID)
}

func TestPutRecordBatchValidation(t *testing.T) {
	r := newTestStream(t)

	_, err := r.PutRecordBatch(&PutRecordBatchRequest{DeliveryStreamName: "events"})
	assert.Equal(t, "InvalidArgumentException", wire.AsAPIError(err).Code)

	oversized := make([]RecordEntry, 501)
	for i := range oversized {
		oversized[i] = RecordEntry{Data: "AA=="}
	}
	_, err = r.PutRecordBatch(&PutRecordBatchRequest{
		DeliveryStreamName: "events", Records: oversized,
	})
	assert.Equal(t, "InvalidArgumentException", wire.AsAPIError(err).Code)

	_, err = r.PutRecord(&PutRecordRequest{DeliveryStreamName: "missing"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestUpdateDestinationVersioning(t *testing.T) {
	r := newTestStream(t)

	err := r.UpdateDestination(&UpdateDestinationRequest{
		DeliveryStreamName:             "events",
		CurrentDeliveryStreamVersionID: "7",
		DestinationID:                  "destinationId-000000000001",
	})
	assert.Equal(t, "ConcurrentModificationException", wire.AsAPIError(err).Code)

	err = r.UpdateDestination(&UpdateDestinationRequest{
		DeliveryStreamName:             "events",
		CurrentDeliveryStreamVersionID: "1",
		DestinationID:                  "destinationId-999999999999",
	})
	assert.Equal(t, "InvalidArgumentException", wire.AsAPIError(err).Code)

	require.NoError(t, r.UpdateDestination(&UpdateDestinationRequest{
		DeliveryStreamName:             "events",
		CurrentDeliveryStreamVersionID: "1",
		DestinationID:                  "destinationId-000000000001",
	}))
	desc, err := r.DescribeDeliveryStream(&DescribeDeliveryStreamRequest{DeliveryStreamName: "events"})
	require.NoError(t, err)
	assert.Equal(t, "2", desc.DeliveryStreamDescription.VersionID)
}

func TestListDeliveryStreams(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	for _, name := range []string{"alpha", "beta", "gamma"} {
		_, err := r.CreateDeliveryStream(&CreateDeliveryStreamRequest{DeliveryStreamName: name})
		require.NoError(t, err)
	}

	resp, err := r.ListDeliveryStreams(&ListDeliveryStreamsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, resp.DeliveryStreamNames)
	assert.True(t, resp.HasMoreDeliveryStreams)

	resp, err = r.ListDeliveryStreams(&ListDeliveryStreamsRequest{ExclusiveStartDeliveryStreamName: "beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, resp.DeliveryStreamNames)

	resp, err = r.ListDeliveryStreams(&ListDeliveryStreamsRequest{DeliveryStreamType: "KinesisStreamAsSource"})
	require.NoError(t, err)
	assert.Empty(t, resp.DeliveryStreamNames)
}

func TestDeliveryStreamTags(t *testing.T) {
	r := newTestStream(t)

	require.NoError(t, r.TagDeliveryStream(&TagDeliveryStreamRequest{
		DeliveryStreamName: "events",
		Tags:               []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}},
	}))
	listed, err := r.ListTagsForDeliveryStream(&ListTagsForDeliveryStreamRequest{DeliveryStreamName: "events"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}}, listed.Tags)

	require.NoError(t, r.UntagDeliveryStream(&UntagDeliveryStreamRequest{
		DeliveryStreamName: "events", TagKeys: []string{"env"},
	}))
	listed, err = r.ListTagsForDeliveryStream(&ListTagsForDeliveryStreamRequest{DeliveryStreamName: "events"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "team", Value: "core"}}, listed.Tags)
}
