package kinesis

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestStream(t *testing.T, shards int) *Registry {
	t.Helper()
	r := NewRegistry("us-east-1", "000000000000")
	require.NoError(t, r.CreateStream(&CreateStreamRequest{StreamName: "clicks", ShardCount: shards}))
	return r
}

func TestStreamLifecycle(t *testing.T) {
	r := newTestStream(t, 2)

	err := r.CreateStream(&CreateStreamRequest{StreamName: "clicks"})
	assert.Equal(t, "ResourceInUseException", wire.AsAPIError(err).Code)

	desc, err := r.DescribeStream(&DescribeStreamRequest{StreamName: "clicks"})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", desc.StreamDescription.StreamStatus)
	assert.Equal(t, "arn:aws:kinesis:us-east-1:000000000000:stream/clicks", desc.StreamDescription.StreamARN)
	require.Len(t, desc.StreamDescription.Shards, 2)
	assert.Equal(t, "shardId-000000000000", desc.StreamDescription.Shards[0].ShardID)
	assert.Equal(t, "0", desc.StreamDescription.Shards[0].HashKeyRange.StartingHashKey)

	// Streams resolve by ARN too.
	summary, err := r.DescribeStreamSummary(&DescribeStreamSummaryRequest{
		StreamARN: desc.StreamDescription.StreamARN,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, summary.StreamDescriptionSummary.OpenShardCount)
	assert.Equal(t, 24, summary.StreamDescriptionSummary.RetentionPeriodHours)

	require.NoError(t, r.DeleteStream(&DeleteStreamRequest{StreamName: "clicks"}))
	_, err = r.DescribeStream(&DescribeStreamRequest{StreamName: "clicks"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestPutAndGetRecords(t *testing.T) {
	r := newTestStream(t, 1)

	put, err := r.PutRecord(&PutRecordRequest{
		StreamName:   "clicks",
		Data:         awsutil.Base64Encode([]byte("first")),
		PartitionKey: "pk-1",
	})
	require.NoError(t, err)
	assert.Equal(t, "shardId-000000000000", put.ShardID)
	assert.Len(t, put.SequenceNumber, 49)

	batch, err := r.PutRecords(&PutRecordsRequest{
		StreamName: "clicks",
		Records: []PutRecordsRequestEntry{
			{Data: awsutil.Base64Encode([]byte("second")), PartitionKey: "pk-2"},
			{Data: awsutil.Base64Encode([]byte("third")), PartitionKey: "pk-3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, batch.FailedRecordCount)
	require.Len(t, batch.Records, 2)
	assert.Greater(t, batch.Records[1].SequenceNumber, batch.Records[0].SequenceNumber)

	iter, err := r.GetShardIterator(&GetShardIteratorRequest{
		StreamName: "clicks", ShardID: "shardId-000000000000", ShardIteratorType: "TRIM_HORIZON",
	})
	require.NoError(t, err)

	got, err := r.GetRecords(&GetRecordsRequest{ShardIterator: iter.ShardIterator})
	require.NoError(t, err)
	require.Len(t, got.Records, 3)
	assert.Equal(t, []byte("first"), awsutil.Base64Decode(got.Records[0].Data))
	assert.Equal(t, int64(0), got.MillisBehindLatest)
	require.NotEmpty(t, got.NextShardIterator)

	// The next iterator starts after everything read so far.
	again, err := r.GetRecords(&GetRecordsRequest{ShardIterator: got.NextShardIterator})
	require.NoError(t, err)
	assert.Empty(t, again.Records)
}

func TestShardIteratorTypes(t *testing.T) {
	r := newTestStream(t, 1)
	var seqs []string
	for _, msg := range []string{"a", "b", "c"} {
		put, err := r.PutRecord(&PutRecordRequest{
			StreamName: "clicks", Data: awsutil.Base64Encode([]byte(msg)), PartitionKey: "pk",
		})
		require.NoError(t, err)
		seqs = append(seqs, put.SequenceNumber)
	}

	at, err := r.GetShardIterator(&GetShardIteratorRequest{
		StreamName: "clicks", ShardID: "shardId-000000000000",
		ShardIteratorType: "AT_SEQUENCE_NUMBER", StartingSequenceNumber: seqs[1],
	})
	require.NoError(t, err)
	got, err := r.GetRecords(&GetRecordsRequest{ShardIterator: at.ShardIterator})
	require.NoError(t, err)
	require.Len(t, got.Records, 2)
	assert.Equal(t, seqs[1], got.Records[0].SequenceNumber)

	after, err := r.GetShardIterator(&GetShardIteratorRequest{
		StreamName: "clicks", ShardID: "shardId-000000000000",
		ShardIteratorType: "AFTER_SEQUENCE_NUMBER", StartingSequenceNumber: seqs[1],
	})
	require.NoError(t, err)
	got, err = r.GetRecords(&GetRecordsRequest{ShardIterator: after.ShardIterator})
	require.NoError(t, err)
	require.Len(t, got.Records, 1)
	assert.Equal(t, seqs[2], got.Records[0].SequenceNumber)

	latest, err := r.GetShardIterator(&GetShardIteratorRequest{
		StreamName: "clicks", ShardID: "shardId-000000000000", ShardIteratorType: "LATEST",
	})
	require.NoError(t, err)
	got, err = r.GetRecords(&GetRecordsRequest{ShardIterator: latest.ShardIterator})
	require.NoError(t, err)
	assert.Empty(t, got.Records)

	_, err = r.GetRecords(&GetRecordsRequest{ShardIterator: "bogus"})
	assert.Equal(t, "ExpiredIteratorException", wire.AsAPIError(err).Code)
}

func TestIteratorConsumedAfterRead(t *testing.T) {
	r := newTestStream(t, 1)
	_, err := r.PutRecord(&PutRecordRequest{
		StreamName: "clicks", Data: awsutil.Base64Encode([]byte("x")), PartitionKey: "pk",
	})
	require.NoError(t, err)

	iter, err := r.GetShardIterator(&GetShardIteratorRequest{
		StreamName: "clicks", ShardID: "shardId-000000000000", ShardIteratorType: "TRIM_HORIZON",
	})
	require.NoError(t, err)
	_, err = r.GetRecords(&GetRecordsRequest{ShardIterator: iter.ShardIterator})
	require.NoError(t, err)

	_, err = r.GetRecords(&GetRecordsRequest{ShardIterator: iter.ShardIterator})
	assert.Equal(t, "ExpiredIteratorException", wire.AsAPIError(err).Code)
}

func TestRetentionPeriodBounds(t *testing.T) {
	r := newTestStream(t, 1)

	err := r.IncreaseStreamRetentionPeriod(&IncreaseStreamRetentionPeriodRequest{
		StreamName: "clicks", RetentionPeriodHours: 12,
	})
	assert.Equal(t, "InvalidArgumentException", wire.AsAPIError(err).Code)

	require.NoError(t, r.IncreaseStreamRetentionPeriod(&IncreaseStreamRetentionPeriodRequest{
		StreamName: "clicks", RetentionPeriodHours: 48,
	}))
	require.NoError(t, r.DecreaseStreamRetentionPeriod(&DecreaseStreamRetentionPeriodRequest{
		StreamName: "clicks", RetentionPeriodHours: 24,
	}))

	summary, err := r.DescribeStreamSummary(&DescribeStreamSummaryRequest{StreamName: "clicks"})
	require.NoError(t, err)
	assert.Equal(t, 24, summary.StreamDescriptionSummary.RetentionPeriodHours)
}

func TestStreamTags(t *testing.T) {
	r := newTestStream(t, 1)

	require.NoError(t, r.AddTagsToStream(&AddTagsToStreamRequest{
		StreamName: "clicks", Tags: map[string]string{"env": "test", "team": "core"},
	}))
	listed, err := r.ListTagsForStream(&ListTagsForStreamRequest{StreamName: "clicks"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}}, listed.Tags)
	assert.False(t, listed.HasMoreTags)

	require.NoError(t, r.RemoveTagsFromStream(&RemoveTagsFromStreamRequest{
		StreamName: "clicks", TagKeys: []string{"env"},
	}))
	listed, err = r.ListTagsForStream(&ListTagsForStreamRequest{StreamName: "clicks"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "team", Value: "core"}}, listed.Tags)
}

func TestListStreamsPagination(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	for _, name := range []string{"alpha", "beta", "gamma"} {
		require.NoError(t, r.CreateStream(&CreateStreamRequest{StreamName: name}))
	}

	resp, err := r.ListStreams(&ListStreamsRequest{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"alpha", "beta"}, resp.StreamNames)
	assert.True(t, resp.HasMoreStreams)

	resp, err = r.ListStreams(&ListStreamsRequest{ExclusiveStartStreamName: "beta"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gamma"}, resp.StreamNames)
	assert.False(t, resp.HasMoreStreams)
}
