package sqs

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestRegistry() *Registry {
	return NewRegistry("us-east-1", "000000000000", "http://localhost:9324")
}

func intPtr(n int) *int { return &n }

func errCode(t *testing.T, err error) string {
	t.Helper()
	require.Error(t, err)
	return wire.AsAPIError(err).Code
}

func mustCreateQueue(t *testing.T, r *Registry, name string, attrs map[string]string) string {
	t.Helper()
	resp, err := r.CreateQueue(&CreateQueueRequest{QueueName: name, Attributes: attrs})
	require.NoError(t, err)
	return resp.QueueURL
}

func TestAttributeMD5(t *testing.T) {
	single, err := attributeMD5(map[string]MessageAttributeValue{
		"City": {DataType: "String", StringValue: "Any City"},
	})
	require.NoError(t, err)
	assert.Equal(t, "0c32cb5c844c01fbd5b6b434b52cf670", single)

	multi, err := attributeMD5(map[string]MessageAttributeValue{
		"City":       {DataType: "String", StringValue: "Any City"},
		"Population": {DataType: "Number", StringValue: "1250800"},
		"Payload":    {DataType: "Binary", BinaryValue: "AQID/w=="},
	})
	require.NoError(t, err)
	assert.Equal(t, "2bcdb9fdf228d3ddbd1b218bdade6e9e", multi)

	empty, err := attributeMD5(nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	_, err = attributeMD5(map[string]MessageAttributeValue{
		"Bad": {DataType: "Binary", BinaryValue: "not-base64!"},
	})
	assert.Equal(t, "InvalidParameterValue", errCode(t, err))
}

func TestCreateQueueValidation(t *testing.T) {
	r := newTestRegistry()

	tests := []struct {
		name      string
		queueName string
		attrs     map[string]string
		wantCode  string
	}{
		{"empty name", "", nil, "InvalidParameterValue"},
		{"bad characters", "my queue", nil, "InvalidParameterValue"},
		{"fifo suffix without attribute", "orders.fifo", nil, "InvalidParameterValue"},
		{"fifo attribute without suffix", "orders", map[string]string{"FifoQueue": "true"}, "InvalidParameterValue"},
		{"unknown attribute", "orders", map[string]string{"NoSuchAttribute": "1"}, "InvalidAttributeName"},
		{"visibility out of range", "orders", map[string]string{"VisibilityTimeout": "99999"}, "InvalidAttributeValue"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.CreateQueue(&CreateQueueRequest{QueueName: tt.queueName, Attributes: tt.attrs})
			assert.Equal(t, tt.wantCode, errCode(t, err))
		})
	}
}

func TestCreateQueueIdempotency(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "jobs", map[string]string{"VisibilityTimeout": "45"})
	assert.Equal(t, "http://localhost:9324/000000000000/jobs", url)

	// Same attributes: same URL back.
	again, err := r.CreateQueue(&CreateQueueRequest{
		QueueName:  "jobs",
		Attributes: map[string]string{"VisibilityTimeout": "45"},
	})
	require.NoError(t, err)
	assert.Equal(t, url, again.QueueURL)

	// Conflicting attribute value: rejected.
	_, err = r.CreateQueue(&CreateQueueRequest{
		QueueName:  "jobs",
		Attributes: map[string]string{"VisibilityTimeout": "60"},
	})
	assert.Equal(t, "QueueAlreadyExists", errCode(t, err))
}

func TestSendReceiveDeleteRoundTrip(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "work", nil)

	sent, err := r.SendMessage(&SendMessageRequest{
		QueueURL:    url,
		MessageBody: "hello world",
		MessageAttributes: map[string]MessageAttributeValue{
			"City": {DataType: "String", StringValue: "Any City"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "5eb63bbbe01eeed093cb22bb8f5acdc3", sent.MD5OfMessageBody)
	assert.Equal(t, "0c32cb5c844c01fbd5b6b434b52cf670", sent.MD5OfMessageAttributes)
	assert.Empty(t, sent.SequenceNumber)

	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
		QueueURL:              url,
		AttributeNames:        []string{"All"},
		MessageAttributeNames: []string{"All"},
	})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)
	m := recv.Messages[0]
	assert.Equal(t, sent.MessageID, m.MessageID)
	assert.Equal(t, "hello world", m.Body)
	assert.Equal(t, "1", m.Attributes["ApproximateReceiveCount"])
	assert.NotEmpty(t, m.Attributes["SentTimestamp"])
	assert.Equal(t, "Any City", m.MessageAttributes["City"].StringValue)

	// In flight: a second receive sees nothing.
	recv2, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	assert.Empty(t, recv2.Messages)

	require.NoError(t, r.DeleteMessage(&DeleteMessageRequest{QueueURL: url, ReceiptHandle: m.ReceiptHandle}))
	// Deleting again is a no-op.
	require.NoError(t, r.DeleteMessage(&DeleteMessageRequest{QueueURL: url, ReceiptHandle: m.ReceiptHandle}))
}

func TestReceiveAttributeFilters(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "filters", nil)
	_, err := r.SendMessage(&SendMessageRequest{
		QueueURL:    url,
		MessageBody: "x",
		MessageAttributes: map[string]MessageAttributeValue{
			"trace.id":   {DataType: "String", StringValue: "t-1"},
			"trace.span": {DataType: "String", StringValue: "s-1"},
			"other":      {DataType: "String", StringValue: "o"},
		},
	})
	require.NoError(t, err)

	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
		QueueURL:              url,
		AttributeNames:        []string{"SentTimestamp"},
		MessageAttributeNames: []string{"trace.*"},
	})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)
	m := recv.Messages[0]
	assert.Len(t, m.Attributes, 1)
	assert.Contains(t, m.Attributes, "SentTimestamp")
	assert.Len(t, m.MessageAttributes, 2)
	assert.NotContains(t, m.MessageAttributes, "other")
}

func TestFIFOOrderingAndGroupLocking(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "orders.fifo", map[string]string{"FifoQueue": "true"})

	for i := 1; i <= 3; i++ {
		_, err := r.SendMessage(&SendMessageRequest{
			QueueURL:               url,
			MessageBody:            fmt.Sprintf("a-%d", i),
			MessageGroupID:         "group-a",
			MessageDeduplicationID: fmt.Sprintf("a-%d", i),
		})
		require.NoError(t, err)
	}
	_, err := r.SendMessage(&SendMessageRequest{
		QueueURL:               url,
		MessageBody:            "b-1",
		MessageGroupID:         "group-b",
		MessageDeduplicationID: "b-1",
	})
	require.NoError(t, err)

	// First receive takes the head of group-a and locks the group.
	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)
	assert.Equal(t, "a-1", recv.Messages[0].Body)

	// Group-a is locked: the next receive skips to group-b.
	recv2, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	require.Len(t, recv2.Messages, 1)
	assert.Equal(t, "b-1", recv2.Messages[0].Body)

	// Deleting the group-a message unlocks the group for a-2.
	require.NoError(t, r.DeleteMessage(&DeleteMessageRequest{
		QueueURL: url, ReceiptHandle: recv.Messages[0].ReceiptHandle,
	}))
	recv3, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	require.Len(t, recv3.Messages, 1)
	assert.Equal(t, "a-2", recv3.Messages[0].Body)
}

func TestFIFODeduplication(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "dedup.fifo", map[string]string{"FifoQueue": "true"})

	first, err := r.SendMessage(&SendMessageRequest{
		QueueURL:               url,
		MessageBody:            "payload",
		MessageGroupID:         "g",
		MessageDeduplicationID: "dedup-1",
	})
	require.NoError(t, err)

	// Replay inside the window returns the original send result.
	replay, err := r.SendMessage(&SendMessageRequest{
		QueueURL:               url,
		MessageBody:            "different payload",
		MessageGroupID:         "g",
		MessageDeduplicationID: "dedup-1",
	})
	require.NoError(t, err)
	assert.Equal(t, first.MessageID, replay.MessageID)

	attrs, err := r.GetQueueAttributes(&GetQueueAttributesRequest{
		QueueURL: url, AttributeNames: []string{"ApproximateNumberOfMessages"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", attrs.Attributes["ApproximateNumberOfMessages"])

	// Neither a dedup id nor content-based dedup: rejected.
	_, err = r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "x", MessageGroupID: "g"})
	assert.Equal(t, "InvalidParameterValue", errCode(t, err))

	// FIFO sends without a group id are rejected.
	_, err = r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "x", MessageDeduplicationID: "d"})
	assert.Equal(t, "MissingParameter", errCode(t, err))
}

func TestFIFOContentBasedDeduplication(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "cbd.fifo", map[string]string{
		"FifoQueue":                 "true",
		"ContentBasedDeduplication": "true",
	})

	first, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "dup-body", MessageGroupID: "g"})
	require.NoError(t, err)
	second, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "dup-body", MessageGroupID: "g"})
	require.NoError(t, err)
	assert.Equal(t, first.MessageID, second.MessageID)

	other, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "other-body", MessageGroupID: "g"})
	require.NoError(t, err)
	assert.NotEqual(t, first.MessageID, other.MessageID)
}

func TestLongPollingWakesOnSend(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "poll", nil)

	type result struct {
		resp *ReceiveMessageResponse
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
			QueueURL:        url,
			WaitTimeSeconds: intPtr(5),
		})
		done <- result{resp, err}
	}()

	time.Sleep(50 * time.Millisecond)
	_, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "wake up"})
	require.NoError(t, err)

	select {
	case res := <-done:
		require.NoError(t, res.err)
		require.Len(t, res.resp.Messages, 1)
		assert.Equal(t, "wake up", res.resp.Messages[0].Body)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not wake on send")
	}
}

func TestLongPollingHonorsContextCancel(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "poll-cancel", nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan *ReceiveMessageResponse, 1)
	go func() {
		resp, err := r.ReceiveMessage(ctx, &ReceiveMessageRequest{
			QueueURL:        url,
			WaitTimeSeconds: intPtr(20),
		})
		require.NoError(t, err)
		done <- resp
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()
	select {
	case resp := <-done:
		assert.Empty(t, resp.Messages)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll did not observe cancellation")
	}
}

func TestLongPollEmptyWakeResolvesEmpty(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "poll-once", nil)

	done := make(chan *ReceiveMessageResponse, 1)
	go func() {
		resp, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
			QueueURL:        url,
			WaitTimeSeconds: intPtr(10),
		})
		require.NoError(t, err)
		done <- resp
	}()

	// A delayed send wakes the poller without making anything visible;
	// the call resolves empty instead of parking again until the deadline.
	time.Sleep(50 * time.Millisecond)
	_, err := r.SendMessage(&SendMessageRequest{
		QueueURL: url, MessageBody: "later", DelaySeconds: intPtr(60),
	})
	require.NoError(t, err)

	select {
	case resp := <-done:
		assert.Empty(t, resp.Messages)
	case <-time.After(2 * time.Second):
		t.Fatal("long poll parked again after an empty wake")
	}
}

func TestChangeMessageVisibility(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "vis", nil)
	_, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "m"})
	require.NoError(t, err)

	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)
	handle := recv.Messages[0].ReceiptHandle

	// Zero makes the message immediately receivable again.
	require.NoError(t, r.ChangeMessageVisibility(&ChangeMessageVisibilityRequest{
		QueueURL: url, ReceiptHandle: handle, VisibilityTimeout: 0,
	}))
	recv2, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: url})
	require.NoError(t, err)
	require.Len(t, recv2.Messages, 1)
	attrs, err := r.GetQueueAttributes(&GetQueueAttributesRequest{
		QueueURL: url, AttributeNames: []string{"All"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1", attrs.Attributes["ApproximateNumberOfMessagesNotVisible"])

	// The old handle is no longer in flight.
	err = r.ChangeMessageVisibility(&ChangeMessageVisibilityRequest{
		QueueURL: url, ReceiptHandle: handle, VisibilityTimeout: 10,
	})
	assert.Equal(t, "MessageNotInflight", errCode(t, err))
}

func TestPurgeQueueWindow(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "purge", nil)
	_, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "m"})
	require.NoError(t, err)

	require.NoError(t, r.PurgeQueue(&PurgeQueueRequest{QueueURL: url}))
	attrs, err := r.GetQueueAttributes(&GetQueueAttributesRequest{QueueURL: url})
	require.NoError(t, err)
	assert.Equal(t, "0", attrs.Attributes["ApproximateNumberOfMessages"])

	err = r.PurgeQueue(&PurgeQueueRequest{QueueURL: url})
	assert.Equal(t, "PurgeQueueInProgress", errCode(t, err))
}

func TestDLQRedriveStampsOriginAndMoveTaskReturnsHome(t *testing.T) {
	r := newTestRegistry()
	dlqURL := mustCreateQueue(t, r, "work-dlq", nil)
	dlqARN := "arn:aws:sqs:us-east-1:000000000000:work-dlq"
	srcURL := mustCreateQueue(t, r, "work", map[string]string{
		"RedrivePolicy": fmt.Sprintf(`{"deadLetterTargetArn":%q,"maxReceiveCount":1}`, dlqARN),
	})

	_, err := r.SendMessage(&SendMessageRequest{QueueURL: srcURL, MessageBody: "poison"})
	require.NoError(t, err)

	// Deliver once with an immediate timeout, then sweep on the next
	// receive: the receive budget is exhausted and the message moves to
	// the dead-letter queue.
	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
		QueueURL: srcURL, VisibilityTimeout: intPtr(0),
	})
	require.NoError(t, err)
	require.Len(t, recv.Messages, 1)

	recv2, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: srcURL})
	require.NoError(t, err)
	assert.Empty(t, recv2.Messages)

	attrs, err := r.GetQueueAttributes(&GetQueueAttributesRequest{QueueURL: dlqURL})
	require.NoError(t, err)
	assert.Equal(t, "1", attrs.Attributes["ApproximateNumberOfMessages"])

	// A redrive without an explicit destination routes each message back
	// to the queue it was originally sent to.
	started, err := r.StartMessageMoveTask(&StartMessageMoveTaskRequest{SourceARN: dlqARN})
	require.NoError(t, err)
	require.NotEmpty(t, started.TaskHandle)

	require.Eventually(t, func() bool {
		attrs, err := r.GetQueueAttributes(&GetQueueAttributesRequest{QueueURL: srcURL})
		require.NoError(t, err)
		return attrs.Attributes["ApproximateNumberOfMessages"] == "1"
	}, 2*time.Second, 10*time.Millisecond)

	require.Eventually(t, func() bool {
		tasks, err := r.ListMessageMoveTasks(&ListMessageMoveTasksRequest{SourceARN: dlqARN})
		require.NoError(t, err)
		require.Len(t, tasks.Results, 1)
		return tasks.Results[0].Status == moveTaskCompleted
	}, 2*time.Second, 10*time.Millisecond)

	tasks, err := r.ListMessageMoveTasks(&ListMessageMoveTasksRequest{SourceARN: dlqARN})
	require.NoError(t, err)
	assert.Equal(t, int64(1), tasks.Results[0].ApproximateNumberOfMessagesMoved)
	assert.Empty(t, tasks.Results[0].TaskHandle)

	// The redelivered message carries its dead-letter provenance.
	recv3, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{
		QueueURL: srcURL, AttributeNames: []string{"All"},
	})
	require.NoError(t, err)
	require.Len(t, recv3.Messages, 1)
	assert.Equal(t, "poison", recv3.Messages[0].Body)
	assert.Equal(t, "arn:aws:sqs:us-east-1:000000000000:work",
		recv3.Messages[0].Attributes["DeadLetterQueueSourceArn"])
}

func TestMoveTaskValidation(t *testing.T) {
	r := newTestRegistry()
	mustCreateQueue(t, r, "a-queue", nil)

	_, err := r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN: "arn:aws:sqs:us-east-1:000000000000:missing",
	})
	assert.Equal(t, "ResourceNotFoundException", errCode(t, err))

	_, err = r.CancelMessageMoveTask(&CancelMessageMoveTaskRequest{TaskHandle: "nope"})
	assert.Equal(t, "ResourceNotFoundException", errCode(t, err))

	_, err = r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN:                    "arn:aws:sqs:us-east-1:000000000000:a-queue",
		MaxNumberOfMessagesPerSecond: intPtr(0),
	})
	assert.Equal(t, "InvalidParameterValue", errCode(t, err))
}

func TestMoveTaskSingleActivePerSource(t *testing.T) {
	r := newTestRegistry()
	srcURL := mustCreateQueue(t, r, "stuck-dlq", nil)
	mustCreateQueue(t, r, "stuck", nil)
	srcARN := "arn:aws:sqs:us-east-1:000000000000:stuck-dlq"
	destARN := "arn:aws:sqs:us-east-1:000000000000:stuck"
	for i := 0; i < 3; i++ {
		_, err := r.SendMessage(&SendMessageRequest{
			QueueURL: srcURL, MessageBody: fmt.Sprintf("m%d", i),
		})
		require.NoError(t, err)
	}

	// Rate-limit the worker so the task is still alive when cancelled.
	started, err := r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN: srcARN, DestinationARN: destARN,
		MaxNumberOfMessagesPerSecond: intPtr(1),
	})
	require.NoError(t, err)

	_, err = r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN: srcARN, DestinationARN: destARN,
	})
	assert.Equal(t, "InvalidParameterValue", errCode(t, err))

	_, err = r.CancelMessageMoveTask(&CancelMessageMoveTaskRequest{TaskHandle: started.TaskHandle})
	require.NoError(t, err)

	// A cancelled task that is still winding down keeps blocking new starts
	// for the same source queue.
	_, err = r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN: srcARN, DestinationARN: destARN,
	})
	assert.Equal(t, "InvalidParameterValue", errCode(t, err))

	require.Eventually(t, func() bool {
		tasks, err := r.ListMessageMoveTasks(&ListMessageMoveTasksRequest{SourceARN: srcARN})
		require.NoError(t, err)
		require.NotEmpty(t, tasks.Results)
		return tasks.Results[0].Status == moveTaskCancelled
	}, 3*time.Second, 10*time.Millisecond)

	_, err = r.StartMessageMoveTask(&StartMessageMoveTaskRequest{
		SourceARN: srcARN, DestinationARN: destARN,
	})
	require.NoError(t, err)
}

func TestReceiveDropsMessagesPastRetention(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "short-lived", map[string]string{
		"MessageRetentionPeriod": "60",
	})
	_, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "stale"})
	require.NoError(t, err)

	q, err := r.queueByURL(url)
	require.NoError(t, err)

	// Past the retention period the message is dropped silently: neither
	// delivered nor left pending.
	msgs, err := q.receiveOnce(10, 30, time.Now().Add(2*time.Minute))
	require.NoError(t, err)
	assert.Empty(t, msgs)
	assert.Empty(t, q.pending)
	assert.Empty(t, q.inflight)

	// A fresh message still delivers normally.
	_, err = r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "fresh"})
	require.NoError(t, err)
	msgs, err = q.receiveOnce(10, 30, time.Now())
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "fresh", msgs[0].Body)
}

func TestReceiveInflightCaps(t *testing.T) {
	r := newTestRegistry()
	stdURL := mustCreateQueue(t, r, "busy", nil)
	fifoURL := mustCreateQueue(t, r, "busy.fifo", map[string]string{"FifoQueue": "true"})
	deadline := time.Now().Add(time.Hour)

	std, err := r.queueByURL(stdURL)
	require.NoError(t, err)
	for i := 0; i < maxInflightStandard; i++ {
		std.inflight[fmt.Sprintf("h%d", i)] = &Message{VisibilityDeadline: deadline}
	}
	_, err = r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: stdURL})
	assert.Equal(t, "OverLimit", errCode(t, err))

	fifo, err := r.queueByURL(fifoURL)
	require.NoError(t, err)
	for i := 0; i < maxInflightFifo; i++ {
		fifo.inflight[fmt.Sprintf("h%d", i)] = &Message{VisibilityDeadline: deadline}
	}
	_, err = r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: fifoURL})
	assert.Equal(t, "OverLimit", errCode(t, err))

	// One slot below the cap delivers again.
	delete(fifo.inflight, "h0")
	_, err = r.SendMessage(&SendMessageRequest{
		QueueURL: fifoURL, MessageBody: "go",
		MessageGroupID: "g1", MessageDeduplicationID: "d1",
	})
	require.NoError(t, err)
	recv, err := r.ReceiveMessage(context.Background(), &ReceiveMessageRequest{QueueURL: fifoURL})
	require.NoError(t, err)
	assert.Len(t, recv.Messages, 1)
}

func TestSendMessageBatch(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "batch", nil)

	_, err := r.SendMessageBatch(&SendMessageBatchRequest{QueueURL: url})
	assert.Equal(t, "EmptyBatchRequest", errCode(t, err))

	var tooMany []SendMessageBatchEntry
	for i := 0; i < 11; i++ {
		tooMany = append(tooMany, SendMessageBatchEntry{ID: fmt.Sprintf("id-%d", i), MessageBody: "m"})
	}
	_, err = r.SendMessageBatch(&SendMessageBatchRequest{QueueURL: url, Entries: tooMany})
	assert.Equal(t, "TooManyEntriesInBatchRequest", errCode(t, err))

	_, err = r.SendMessageBatch(&SendMessageBatchRequest{QueueURL: url, Entries: []SendMessageBatchEntry{
		{ID: "dup", MessageBody: "a"}, {ID: "dup", MessageBody: "b"},
	}})
	assert.Equal(t, "BatchEntryIdsNotDistinct", errCode(t, err))

	_, err = r.SendMessageBatch(&SendMessageBatchRequest{QueueURL: url, Entries: []SendMessageBatchEntry{
		{ID: "bad id!", MessageBody: "a"},
	}})
	assert.Equal(t, "InvalidBatchEntryId", errCode(t, err))

	// Mixed success and per-entry failure.
	resp, err := r.SendMessageBatch(&SendMessageBatchRequest{QueueURL: url, Entries: []SendMessageBatchEntry{
		{ID: "ok", MessageBody: "fine"},
		{ID: "empty", MessageBody: ""},
	}})
	require.NoError(t, err)
	require.Len(t, resp.Successful, 1)
	assert.Equal(t, "ok", resp.Successful[0].ID)
	require.Len(t, resp.Failed, 1)
	assert.Equal(t, "empty", resp.Failed[0].ID)
	assert.Equal(t, "MissingParameter", resp.Failed[0].Code)
	assert.True(t, resp.Failed[0].SenderFault)
}

func TestListQueuesPagination(t *testing.T) {
	r := newTestRegistry()
	for _, name := range []string{"list-a", "list-b", "list-c", "other"} {
		mustCreateQueue(t, r, name, nil)
	}

	resp, err := r.ListQueues(&ListQueuesRequest{QueueNamePrefix: "list-", MaxResults: intPtr(2)})
	require.NoError(t, err)
	require.Len(t, resp.QueueURLs, 2)
	assert.Contains(t, resp.QueueURLs[0], "list-a")
	assert.Contains(t, resp.QueueURLs[1], "list-b")
	require.NotEmpty(t, resp.NextToken)

	resp, err = r.ListQueues(&ListQueuesRequest{
		QueueNamePrefix: "list-", MaxResults: intPtr(2), NextToken: resp.NextToken,
	})
	require.NoError(t, err)
	require.Len(t, resp.QueueURLs, 1)
	assert.Contains(t, resp.QueueURLs[0], "list-c")
	assert.Empty(t, resp.NextToken)
}

func TestListDeadLetterSourceQueues(t *testing.T) {
	r := newTestRegistry()
	dlqURL := mustCreateQueue(t, r, "shared-dlq", nil)
	policy := `{"deadLetterTargetArn":"arn:aws:sqs:us-east-1:000000000000:shared-dlq","maxReceiveCount":3}`
	mustCreateQueue(t, r, "src-1", map[string]string{"RedrivePolicy": policy})
	mustCreateQueue(t, r, "src-2", map[string]string{"RedrivePolicy": policy})
	mustCreateQueue(t, r, "unrelated", nil)

	resp, err := r.ListDeadLetterSourceQueues(&ListDeadLetterSourceQueuesRequest{QueueURL: dlqURL})
	require.NoError(t, err)
	require.Len(t, resp.QueueURLs, 2)
	assert.Contains(t, resp.QueueURLs[0], "src-1")
	assert.Contains(t, resp.QueueURLs[1], "src-2")
}

func TestQueueAttributes(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "attrs", nil)

	_, err := r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "now"})
	require.NoError(t, err)
	_, err = r.SendMessage(&SendMessageRequest{QueueURL: url, MessageBody: "later", DelaySeconds: intPtr(600)})
	require.NoError(t, err)

	resp, err := r.GetQueueAttributes(&GetQueueAttributesRequest{QueueURL: url, AttributeNames: []string{"All"}})
	require.NoError(t, err)
	assert.Equal(t, "1", resp.Attributes["ApproximateNumberOfMessages"])
	assert.Equal(t, "1", resp.Attributes["ApproximateNumberOfMessagesDelayed"])
	assert.Equal(t, "arn:aws:sqs:us-east-1:000000000000:attrs", resp.Attributes["QueueArn"])
	assert.Equal(t, "30", resp.Attributes["VisibilityTimeout"])
	assert.Equal(t, "345600", resp.Attributes["MessageRetentionPeriod"])

	// FifoQueue can only be set at creation time.
	err = r.SetQueueAttributes(&SetQueueAttributesRequest{
		QueueURL: url, Attributes: map[string]string{"FifoQueue": "true"},
	})
	assert.Equal(t, "InvalidAttributeName", errCode(t, err))

	require.NoError(t, r.SetQueueAttributes(&SetQueueAttributesRequest{
		QueueURL: url, Attributes: map[string]string{"VisibilityTimeout": "120"},
	}))
	resp, err = r.GetQueueAttributes(&GetQueueAttributesRequest{
		QueueURL: url, AttributeNames: []string{"VisibilityTimeout"},
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"VisibilityTimeout": "120"}, resp.Attributes)
}

func TestQueueTagsAndPermissions(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "tagged", nil)

	require.NoError(t, r.TagQueue(&TagQueueRequest{QueueURL: url, Tags: map[string]string{"env": "dev"}}))
	tags, err := r.ListQueueTags(&ListQueueTagsRequest{QueueURL: url})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "dev"}, tags.Tags)

	require.NoError(t, r.UntagQueue(&UntagQueueRequest{QueueURL: url, TagKeys: []string{"env"}}))
	tags, err = r.ListQueueTags(&ListQueueTagsRequest{QueueURL: url})
	require.NoError(t, err)
	assert.Empty(t, tags.Tags)

	perm := &AddPermissionRequest{
		QueueURL: url, Label: "readers",
		AWSAccountIDs: []string{"111122223333"}, Actions: []string{"ReceiveMessage"},
	}
	require.NoError(t, r.AddPermission(perm))
	assert.Equal(t, "InvalidParameterValue", errCode(t, r.AddPermission(perm)))
	require.NoError(t, r.RemovePermission(&RemovePermissionRequest{QueueURL: url, Label: "readers"}))
	assert.Equal(t, "InvalidParameterValue",
		errCode(t, r.RemovePermission(&RemovePermissionRequest{QueueURL: url, Label: "readers"})))
}

func TestDeleteQueue(t *testing.T) {
	r := newTestRegistry()
	url := mustCreateQueue(t, r, "gone", nil)
	require.NoError(t, r.DeleteQueue(&DeleteQueueRequest{QueueURL: url}))
	_, err := r.GetQueueURL(&GetQueueURLRequest{QueueName: "gone"})
	assert.Equal(t, "QueueDoesNotExist", errCode(t, err))
}
