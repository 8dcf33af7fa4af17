package sns

import (
	"encoding/json"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/service/sqs"
)

const maxPageSize = 100

// Topic is one stored topic. Subscriptions live on the registry, keyed by
// subscription ARN, so unsubscribing never walks topics.
type Topic struct {
	ARN        string
	Name       string
	FIFO       bool
	Attributes map[string]string
	Tags       map[string]string
}

type Subscription struct {
	ARN         string
	TopicARN    string
	Protocol    string
	Endpoint    string
	Owner       string
	RawDelivery bool
}

// MessageAttribute is one typed attribute of a published message.
type MessageAttribute struct {
	DataType    string
	StringValue string
	BinaryValue string
}

// PublishInput carries the decoded parameters of Publish and of one
// PublishBatch entry.
type PublishInput struct {
	TopicARN   string
	Message    string
	Subject    string
	GroupID    string
	DedupID    string
	Attributes map[string]MessageAttribute
}

// Registry holds all topics and subscriptions, and fans published messages
// out to queue subscribers through the queue registry.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string
	queues  *sqs.Registry

	topics map[string]*Topic        // by ARN
	subs   map[string]*Subscription // by ARN
}

func NewRegistry(region, account string, queues *sqs.Registry) *Registry {
	return &Registry{
		region:  region,
		account: account,
		queues:  queues,
		topics:  map[string]*Topic{},
		subs:    map[string]*Subscription{},
	}
}

func validTopicName(name string, fifo bool) bool {
	base := name
	if fifo {
		var ok bool
		base, ok = strings.CutSuffix(name, ".fifo")
		if !ok {
			return false
		}
	}
	if base == "" || len(name) > 256 {
		return false
	}
	for _, c := range base {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func (r *Registry) topic(arn string) (*Topic, error) {
	t, ok := r.topics[arn]
	if !ok {
		return nil, errNotFound("Topic does not exist")
	}
	return t, nil
}

// CreateTopic creates a topic or returns the existing ARN; topic creation
// is idempotent by name.
func (r *Registry) CreateTopic(name string, attributes, tags map[string]string) (string, error) {
	fifo := attributes["FifoTopic"] == "true"
	if !validTopicName(name, fifo) {
		return "", errInvalidParameter("Invalid parameter: Topic Name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	arn := awsutil.ARN("sns", r.region, r.account, name)
	if t, ok := r.topics[arn]; ok {
		return t.ARN, nil
	}
	t := &Topic{
		ARN:        arn,
		Name:       name,
		FIFO:       fifo,
		Attributes: map[string]string{},
		Tags:       map[string]string{},
	}
	for k, v := range attributes {
		t.Attributes[k] = v
	}
	for k, v := range tags {
		t.Tags[k] = v
	}
	r.topics[arn] = t
	return arn, nil
}

// DeleteTopic removes the topic and all of its subscriptions. Deleting a
// missing topic is not an error.
func (r *Registry) DeleteTopic(arn string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.topics, arn)
	for subARN, sub := range r.subs {
		if sub.TopicARN == arn {
			delete(r.subs, subARN)
		}
	}
}

// ListTopics pages topic ARNs in lexicographic order; the token is the last
// ARN of the previous page.
func (r *Registry) ListTopics(nextToken string) (arns []string, token string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := make([]string, 0, len(r.topics))
	for arn := range r.topics {
		all = append(all, arn)
	}
	sort.Strings(all)
	for _, arn := range all {
		if nextToken != "" && arn <= nextToken {
			continue
		}
		if len(arns) == maxPageSize {
			return arns, arns[len(arns)-1]
		}
		arns = append(arns, arn)
	}
	return arns, ""
}

func (r *Registry) TopicAttributes(arn string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.topic(arn)
	if err != nil {
		return nil, err
	}
	subCount := 0
	for _, sub := range r.subs {
		if sub.TopicARN == arn {
			subCount++
		}
	}
	out := map[string]string{
		"TopicArn":                t.ARN,
		"DisplayName":             t.Attributes["DisplayName"],
		"Owner":                   r.account,
		"SubscriptionsConfirmed":  strconv.Itoa(subCount),
		"SubscriptionsPending":    "0",
		"SubscriptionsDeleted":    "0",
		"EffectiveDeliveryPolicy": t.Attributes["DeliveryPolicy"],
		"Policy":                  t.Attributes["Policy"],
	}
	if t.FIFO {
		out["FifoTopic"] = "true"
		out["ContentBasedDeduplication"] = t.Attributes["ContentBasedDeduplication"]
	}
	for k, v := range out {
		if v == "" && k != "DisplayName" {
			delete(out, k)
		}
	}
	return out, nil
}

func (r *Registry) SetTopicAttribute(arn, name, value string) error {
	if name == "" {
		return errMissingParameter("AttributeName is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.topic(arn)
	if err != nil {
		return err
	}
	if name == "FifoTopic" {
		return errInvalidParameter("Invalid parameter: AttributeName")
	}
	t.Attributes[name] = value
	return nil
}

// Subscribe registers an endpoint on a topic. Subscriptions are confirmed
// immediately; there is no pending state to work through here.
func (r *Registry) Subscribe(topicARN, protocol, endpoint string, attributes map[string]string) (string, error) {
	if protocol == "" {
		return "", errMissingParameter("Protocol is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.topic(topicARN)
	if err != nil {
		return "", err
	}
	for _, sub := range r.subs {
		if sub.TopicARN == topicARN && sub.Protocol == protocol && sub.Endpoint == endpoint {
			return sub.ARN, nil
		}
	}
	sub := &Subscription{
		ARN:         t.ARN + ":" + awsutil.NewID(),
		TopicARN:    t.ARN,
		Protocol:    protocol,
		Endpoint:    endpoint,
		Owner:       r.account,
		RawDelivery: attributes["RawMessageDelivery"] == "true",
	}
	r.subs[sub.ARN] = sub
	return sub.ARN, nil
}

// ConfirmSubscription exists for API parity; subscriptions are created
// confirmed, so it just validates the topic and returns a subscription for
// the token if one matches.
func (r *Registry) ConfirmSubscription(topicARN, token string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.topic(topicARN); err != nil {
		return "", err
	}
	if sub, ok := r.subs[token]; ok {
		return sub.ARN, nil
	}
	for _, sub := range r.subs {
		if sub.TopicARN == topicARN {
			return sub.ARN, nil
		}
	}
	return "", errNotFound("Subscription does not exist")
}

func (r *Registry) Unsubscribe(subscriptionARN string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.subs[subscriptionARN]; !ok {
		return errNotFound("Subscription does not exist")
	}
	delete(r.subs, subscriptionARN)
	return nil
}

func (r *Registry) listSubscriptions(topicARN string) []*Subscription {
	var out []*Subscription
	for _, sub := range r.subs {
		if topicARN == "" || sub.TopicARN == topicARN {
			out = append(out, sub)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ARN < out[j].ARN })
	return out
}

func (r *Registry) ListSubscriptions() []*Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.listSubscriptions("")
}

func (r *Registry) ListSubscriptionsByTopic(topicARN string) ([]*Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.topic(topicARN); err != nil {
		return nil, err
	}
	return r.listSubscriptions(topicARN), nil
}

func (r *Registry) SubscriptionAttributes(subscriptionARN string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[subscriptionARN]
	if !ok {
		return nil, errNotFound("Subscription does not exist")
	}
	return map[string]string{
		"SubscriptionArn":              sub.ARN,
		"TopicArn":                     sub.TopicARN,
		"Protocol":                     sub.Protocol,
		"Endpoint":                     sub.Endpoint,
		"Owner":                        sub.Owner,
		"RawMessageDelivery":           boolString(sub.RawDelivery),
		"ConfirmationWasAuthenticated": "true",
		"PendingConfirmation":          "false",
	}, nil
}

func (r *Registry) SetSubscriptionAttribute(subscriptionARN, name, value string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sub, ok := r.subs[subscriptionARN]
	if !ok {
		return errNotFound("Subscription does not exist")
	}
	switch name {
	case "RawMessageDelivery":
		sub.RawDelivery = value == "true"
	case "FilterPolicy", "RedrivePolicy", "DeliveryPolicy":
		// Accepted and ignored: filtering and retry policies have no
		// observable effect on in-process delivery.
	default:
		return errInvalidParameter("Invalid parameter: AttributeName")
	}
	return nil
}

// Publish stores nothing: it resolves the topic's queue subscribers under
// the lock and delivers after releasing it, since queue delivery takes the
// queue registry's own lock.
func (r *Registry) Publish(in *PublishInput) (messageID string, err error) {
	if in.Message == "" {
		return "", errInvalidParameter("Invalid parameter: Empty message")
	}
	r.mu.Lock()
	t, err := r.topic(in.TopicARN)
	if err != nil {
		r.mu.Unlock()
		return "", err
	}
	if t.FIFO && in.GroupID == "" {
		r.mu.Unlock()
		return "", errInvalidParameter("Invalid parameter: The MessageGroupId parameter is required for FIFO topics")
	}
	subs := r.listSubscriptions(in.TopicARN)
	r.mu.Unlock()

	messageID = awsutil.NewID()
	for _, sub := range subs {
		if sub.Protocol != "sqs" {
			continue
		}
		body, attrs := r.renderDelivery(messageID, in, sub)
		if err := r.queues.DeliverToQueueARN(sub.Endpoint, body, attrs, in.GroupID, in.DedupID); err != nil {
			logger.Warn("dropping notification, queue delivery failed",
				"topic_arn", in.TopicARN, "queue_arn", sub.Endpoint, "error", err)
		}
	}
	return messageID, nil
}

// renderDelivery builds the queue message body for one subscription: the
// raw message when the subscription opted in, otherwise the notification
// envelope with attributes folded inside it.
func (r *Registry) renderDelivery(messageID string, in *PublishInput, sub *Subscription) (string, map[string]sqs.MessageAttributeValue) {
	if sub.RawDelivery {
		attrs := make(map[string]sqs.MessageAttributeValue, len(in.Attributes))
		for name, a := range in.Attributes {
			attrs[name] = sqs.MessageAttributeValue{
				DataType:    a.DataType,
				StringValue: a.StringValue,
				BinaryValue: a.BinaryValue,
			}
		}
		return in.Message, attrs
	}
	envelope := notificationEnvelope{
		Type:             "Notification",
		MessageID:        messageID,
		TopicARN:         in.TopicARN,
		Subject:          in.Subject,
		Message:          in.Message,
		Timestamp:        awsutil.ISO8601Millis(time.Now()),
		SignatureVersion: "1",
	}
	if len(in.Attributes) > 0 {
		envelope.MessageAttributes = map[string]envelopeAttribute{}
		for name, a := range in.Attributes {
			value := a.StringValue
			if a.DataType == "Binary" {
				value = a.BinaryValue
			}
			envelope.MessageAttributes[name] = envelopeAttribute{Type: a.DataType, Value: value}
		}
	}
	body, _ := json.Marshal(envelope)
	return string(body), nil
}

func (r *Registry) resourceTags(arn string) (map[string]string, error) {
	if t, ok := r.topics[arn]; ok {
		return t.Tags, nil
	}
	return nil, errResourceNotFound("Resource does not exist")
}

func (r *Registry) TagResource(arn string, tags map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, err := r.resourceTags(arn)
	if err != nil {
		return err
	}
	for k, v := range tags {
		existing[k] = v
	}
	return nil
}

func (r *Registry) UntagResource(arn string, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, err := r.resourceTags(arn)
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(existing, k)
	}
	return nil
}

func (r *Registry) ListTagsForResource(arn string) (map[string]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags, err := r.resourceTags(arn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out, nil
}

func boolString(b bool) string {
	if b {
		return "true"
	}
	return "false"
}
