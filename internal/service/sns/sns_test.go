package sns

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/service/sqs"
	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestRegistry(t *testing.T) (*Registry, *sqs.Registry) {
	t.Helper()
	queues := sqs.NewRegistry("us-east-1", "000000000000", "http://localhost:9324")
	return NewRegistry("us-east-1", "000000000000", queues), queues
}

func subscribeQueue(t *testing.T, r *Registry, queues *sqs.Registry, topicARN, queueName string, raw bool) string {
	t.Helper()
	created, err := queues.CreateQueue(&sqs.CreateQueueRequest{QueueName: queueName})
	require.NoError(t, err)
	attrs, err := queues.GetQueueAttributes(&sqs.GetQueueAttributesRequest{
		QueueURL: created.QueueURL, AttributeNames: []string{"QueueArn"},
	})
	require.NoError(t, err)
	subAttrs := map[string]string{}
	if raw {
		subAttrs["RawMessageDelivery"] = "true"
	}
	subARN, err := r.Subscribe(topicARN, "sqs", attrs.Attributes["QueueArn"], subAttrs)
	require.NoError(t, err)
	return subARN
}

func receiveOne(t *testing.T, queues *sqs.Registry, queueName string) sqs.ReceivedMessage {
	t.Helper()
	resp, err := queues.ReceiveMessage(t.Context(), &sqs.ReceiveMessageRequest{
		QueueURL:              "http://localhost:9324/000000000000/" + queueName,
		MessageAttributeNames: []string{"All"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Messages, 1)
	return resp.Messages[0]
}

func TestCreateTopicIdempotent(t *testing.T) {
	r, _ := newTestRegistry(t)

	arn, err := r.CreateTopic("alerts", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, "arn:aws:sns:us-east-1:000000000000:alerts", arn)

	again, err := r.CreateTopic("alerts", nil, nil)
	require.NoError(t, err)
	assert.Equal(t, arn, again)

	_, err = r.CreateTopic("bad name!", nil, nil)
	assert.Equal(t, "InvalidParameter", wire.AsAPIError(err).Code)

	_, err = r.CreateTopic("ordered", map[string]string{"FifoTopic": "true"}, nil)
	assert.Equal(t, "InvalidParameter", wire.AsAPIError(err).Code)

	fifoARN, err := r.CreateTopic("ordered.fifo", map[string]string{"FifoTopic": "true"}, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(fifoARN, "ordered.fifo"))
}

func TestPublishEnvelopeDelivery(t *testing.T) {
	r, queues := newTestRegistry(t)
	topicARN, err := r.CreateTopic("orders", nil, nil)
	require.NoError(t, err)
	subscribeQueue(t, r, queues, topicARN, "orders-q", false)

	messageID, err := r.Publish(&PublishInput{
		TopicARN: topicARN,
		Message:  "hello",
		Subject:  "greeting",
		Attributes: map[string]MessageAttribute{
			"kind": {DataType: "String", StringValue: "test"},
		},
	})
	require.NoError(t, err)

	msg := receiveOne(t, queues, "orders-q")
	var envelope notificationEnvelope
	require.NoError(t, json.Unmarshal([]byte(msg.Body), &envelope))
	assert.Equal(t, "Notification", envelope.Type)
	assert.Equal(t, messageID, envelope.MessageID)
	assert.Equal(t, topicARN, envelope.TopicARN)
	assert.Equal(t, "greeting", envelope.Subject)
	assert.Equal(t, "hello", envelope.Message)
	assert.Equal(t, envelopeAttribute{Type: "String", Value: "test"}, envelope.MessageAttributes["kind"])
}

func TestPublishRawDelivery(t *testing.T) {
	r, queues := newTestRegistry(t)
	topicARN, err := r.CreateTopic("orders", nil, nil)
	require.NoError(t, err)
	subscribeQueue(t, r, queues, topicARN, "raw-q", true)

	_, err = r.Publish(&PublishInput{
		TopicARN: topicARN,
		Message:  "payload",
		Attributes: map[string]MessageAttribute{
			"kind": {DataType: "String", StringValue: "test"},
		},
	})
	require.NoError(t, err)

	msg := receiveOne(t, queues, "raw-q")
	assert.Equal(t, "payload", msg.Body)
	assert.Equal(t, "test", msg.MessageAttributes["kind"].StringValue)
}

func TestPublishFanOut(t *testing.T) {
	r, queues := newTestRegistry(t)
	topicARN, err := r.CreateTopic("fan", nil, nil)
	require.NoError(t, err)
	subscribeQueue(t, r, queues, topicARN, "fan-a", true)
	subscribeQueue(t, r, queues, topicARN, "fan-b", true)

	_, err = r.Publish(&PublishInput{TopicARN: topicARN, Message: "x"})
	require.NoError(t, err)

	assert.Equal(t, "x", receiveOne(t, queues, "fan-a").Body)
	assert.Equal(t, "x", receiveOne(t, queues, "fan-b").Body)
}

func TestPublishValidation(t *testing.T) {
	r, _ := newTestRegistry(t)
	topicARN, err := r.CreateTopic("t", nil, nil)
	require.NoError(t, err)

	_, err = r.Publish(&PublishInput{TopicARN: topicARN})
	assert.Equal(t, "InvalidParameter", wire.AsAPIError(err).Code)

	_, err = r.Publish(&PublishInput{TopicARN: "arn:aws:sns:us-east-1:000000000000:none", Message: "m"})
	assert.Equal(t, "NotFound", wire.AsAPIError(err).Code)

	fifoARN, err := r.CreateTopic("f.fifo", map[string]string{"FifoTopic": "true"}, nil)
	require.NoError(t, err)
	_, err = r.Publish(&PublishInput{TopicARN: fifoARN, Message: "m"})
	assert.Equal(t, "InvalidParameter", wire.AsAPIError(err).Code)
}

func TestSubscriptionLifecycle(t *testing.T) {
	r, queues := newTestRegistry(t)
	topicARN, err := r.CreateTopic("subs", nil, nil)
	require.NoError(t, err)
	subARN := subscribeQueue(t, r, queues, topicARN, "subs-q", false)

	// Subscribing the same endpoint again returns the existing ARN.
	attrs, err := r.SubscriptionAttributes(subARN)
	require.NoError(t, err)
	again, err := r.Subscribe(topicARN, "sqs", attrs["Endpoint"], nil)
	require.NoError(t, err)
	assert.Equal(t, subARN, again)

	byTopic, err := r.ListSubscriptionsByTopic(topicARN)
	require.NoError(t, err)
	require.Len(t, byTopic, 1)
	assert.Equal(t, subARN, byTopic[0].ARN)

	require.NoError(t, r.SetSubscriptionAttribute(subARN, "RawMessageDelivery", "true"))
	attrs, err = r.SubscriptionAttributes(subARN)
	require.NoError(t, err)
	assert.Equal(t, "true", attrs["RawMessageDelivery"])

	err = r.SetSubscriptionAttribute(subARN, "Protocol", "sqs")
	assert.Equal(t, "InvalidParameter", wire.AsAPIError(err).Code)

	require.NoError(t, r.Unsubscribe(subARN))
	assert.Equal(t, "NotFound", wire.AsAPIError(r.Unsubscribe(subARN)).Code)

	// Deleting the topic drops its remaining subscriptions.
	subscribeQueue(t, r, queues, topicARN, "subs-q2", false)
	r.DeleteTopic(topicARN)
	assert.Empty(t, r.ListSubscriptions())
}

func TestTopicTags(t *testing.T) {
	r, _ := newTestRegistry(t)
	arn, err := r.CreateTopic("tagged", nil, map[string]string{"env": "dev"})
	require.NoError(t, err)

	require.NoError(t, r.TagResource(arn, map[string]string{"team": "core"}))
	tags, err := r.ListTagsForResource(arn)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"env": "dev", "team": "core"}, tags)

	require.NoError(t, r.UntagResource(arn, []string{"env"}))
	tags, err = r.ListTagsForResource(arn)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"team": "core"}, tags)

	err = r.TagResource("arn:aws:sns:us-east-1:000000000000:none", nil)
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func postForm(t *testing.T, h http.Handler, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestHandlerFormProtocol(t *testing.T) {
	r, queues := newTestRegistry(t)
	h := NewHandler(r)

	form := url.Values{}
	form.Set("Action", "CreateTopic")
	form.Set("Name", "wire")
	form.Set("Tags.member.1.Key", "env")
	form.Set("Tags.member.1.Value", "dev")
	form.Set("Attributes.entry.1.key", "DisplayName")
	form.Set("Attributes.entry.1.value", "Wire")
	rec := postForm(t, h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<TopicArn>arn:aws:sns:us-east-1:000000000000:wire</TopicArn>")
	assert.Contains(t, rec.Body.String(), "http://sns.amazonaws.com/doc/2010-03-31/")

	created, err := queues.CreateQueue(&sqs.CreateQueueRequest{QueueName: "wire-q"})
	require.NoError(t, err)
	attrs, err := queues.GetQueueAttributes(&sqs.GetQueueAttributesRequest{
		QueueURL: created.QueueURL, AttributeNames: []string{"QueueArn"},
	})
	require.NoError(t, err)

	rec = postForm(t, h, url.Values{
		"Action":   {"Subscribe"},
		"TopicArn": {"arn:aws:sns:us-east-1:000000000000:wire"},
		"Protocol": {"sqs"},
		"Endpoint": {attrs.Attributes["QueueArn"]},
	})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<SubscriptionArn>")

	form = url.Values{}
	form.Set("Action", "Publish")
	form.Set("TopicArn", "arn:aws:sns:us-east-1:000000000000:wire")
	form.Set("Message", "over the wire")
	form.Set("MessageAttributes.entry.1.Name", "kind")
	form.Set("MessageAttributes.entry.1.Value.DataType", "String")
	form.Set("MessageAttributes.entry.1.Value.StringValue", "form")
	rec = postForm(t, h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "<MessageId>")

	msg := receiveOne(t, queues, "wire-q")
	assert.Contains(t, msg.Body, `"Message":"over the wire"`)

	rec = postForm(t, h, url.Values{
		"Action":   {"GetTopicAttributes"},
		"TopicArn": {"arn:aws:sns:us-east-1:000000000000:none"},
	})
	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "<Code>NotFound</Code>")
	assert.Contains(t, rec.Body.String(), "<Type>Sender</Type>")
}

func TestHandlerPublishBatch(t *testing.T) {
	r, queues := newTestRegistry(t)
	h := NewHandler(r)
	topicARN, err := r.CreateTopic("batch", nil, nil)
	require.NoError(t, err)
	subscribeQueue(t, r, queues, topicARN, "batch-q", true)

	form := url.Values{}
	form.Set("Action", "PublishBatch")
	form.Set("TopicArn", topicARN)
	form.Set("PublishBatchRequestEntries.member.1.Id", "a")
	form.Set("PublishBatchRequestEntries.member.1.Message", "one")
	form.Set("PublishBatchRequestEntries.member.2.Id", "b")
	form.Set("PublishBatchRequestEntries.member.2.Message", "")
	rec := postForm(t, h, form)
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.Contains(t, body, "<Id>a</Id>")
	assert.Contains(t, body, "<Code>InvalidParameter</Code>")

	rec = postForm(t, h, url.Values{"Action": {"PublishBatch"}, "TopicArn": {topicARN}})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "EmptyBatchRequest")
}
