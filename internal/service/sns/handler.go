package sns

import (
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/wire"
	"github.com/stratuslocal/stratus/pkg/metrics"
)

type formAction func(form url.Values, requestID string) (any, error)

// Handler serves the form-encoded query protocol: POST / with an Action
// field and dotted member/entry encodings, answered with namespaced XML.
type Handler struct {
	reg     *Registry
	actions map[string]formAction
}

func NewHandler(reg *Registry) *Handler {
	h := &Handler{reg: reg}
	h.actions = map[string]formAction{
		"CreateTopic":        h.createTopic,
		"DeleteTopic":        h.deleteTopic,
		"ListTopics":         h.listTopics,
		"GetTopicAttributes": h.getTopicAttributes,
		"SetTopicAttributes": h.setTopicAttributes,

		"Subscribe":                 h.subscribe,
		"ConfirmSubscription":       h.confirmSubscription,
		"Unsubscribe":               h.unsubscribe,
		"ListSubscriptions":         h.listSubscriptions,
		"ListSubscriptionsByTopic":  h.listSubscriptionsByTopic,
		"GetSubscriptionAttributes": h.getSubscriptionAttributes,
		"SetSubscriptionAttributes": h.setSubscriptionAttributes,

		"Publish":      h.publish,
		"PublishBatch": h.publishBatch,

		"TagResource":         h.tagResource,
		"UntagResource":       h.untagResource,
		"ListTagsForResource": h.listTagsForResource,
	}
	return h
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	requestID := awsutil.NewID()

	if err := r.ParseForm(); err != nil {
		h.fail(w, "", requestID, start,
			wire.NewError("InvalidParameterValue", http.StatusBadRequest, "unreadable form: %v", err))
		return
	}
	action := r.Form.Get("Action")
	fn, ok := h.actions[action]
	if !ok {
		h.fail(w, action, requestID, start,
			wire.NewError("InvalidAction", http.StatusBadRequest, "unknown action: %q", action))
		return
	}
	resp, err := fn(r.Form, requestID)
	if err != nil {
		h.fail(w, action, requestID, start, err)
		return
	}
	wire.WriteXML(w, http.StatusOK, resp)
	metrics.ObserveRequest("sns", action, http.StatusOK, time.Since(start))
}

func (h *Handler) fail(w http.ResponseWriter, action, requestID string, start time.Time, err error) {
	ae := wire.AsAPIError(err)
	logger.Debug("request failed",
		"service", "sns", "action", action, "code", ae.Code, "error", ae.Message)
	faultType := "Receiver"
	if ae.SenderFault {
		faultType = "Sender"
	}
	wire.WriteXML(w, ae.Status, errorResponse{
		Error:     errorBody{Type: faultType, Code: ae.Code, Message: ae.Message},
		RequestID: requestID,
	})
	metrics.ObserveRequest("sns", action, ae.Status, time.Since(start))
}

func attributeEntries(attrs map[string]string) []attributeEntry {
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]attributeEntry, 0, len(keys))
	for _, k := range keys {
		out = append(out, attributeEntry{Key: k, Value: attrs[k]})
	}
	return out
}

func subscriptionEntries(subs []*Subscription) []subscriptionEntry {
	out := make([]subscriptionEntry, 0, len(subs))
	for _, sub := range subs {
		out = append(out, subscriptionEntry{
			SubscriptionARN: sub.ARN,
			Owner:           sub.Owner,
			Protocol:        sub.Protocol,
			Endpoint:        sub.Endpoint,
			TopicARN:        sub.TopicARN,
		})
	}
	return out
}

// formTags decodes the Tags.member.N.Key/Value encoding.
func formTags(form url.Values, prefix string) map[string]string {
	out := map[string]string{}
	for _, fields := range wire.FormMemberFields(form, prefix) {
		if k := fields["Key"]; k != "" {
			out[k] = fields["Value"]
		}
	}
	return out
}

// formMessageAttributes decodes MessageAttributes.entry.N.Name plus the
// nested Value fields.
func formMessageAttributes(form url.Values, prefix string) map[string]MessageAttribute {
	out := map[string]MessageAttribute{}
	for i := 1; ; i++ {
		base := prefix + ".entry." + strconv.Itoa(i)
		name := form.Get(base + ".Name")
		if name == "" {
			break
		}
		out[name] = MessageAttribute{
			DataType:    form.Get(base + ".Value.DataType"),
			StringValue: form.Get(base + ".Value.StringValue"),
			BinaryValue: form.Get(base + ".Value.BinaryValue"),
		}
	}
	return out
}

func (h *Handler) createTopic(form url.Values, requestID string) (any, error) {
	arn, err := h.reg.CreateTopic(
		form.Get("Name"),
		wire.FormEntryMap(form, "Attributes"),
		formTags(form, "Tags"),
	)
	if err != nil {
		return nil, err
	}
	return createTopicResponse{TopicARN: arn, Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) deleteTopic(form url.Values, requestID string) (any, error) {
	h.reg.DeleteTopic(form.Get("TopicArn"))
	return deleteTopicResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) listTopics(form url.Values, requestID string) (any, error) {
	arns, token := h.reg.ListTopics(form.Get("NextToken"))
	resp := listTopicsResponse{NextToken: token, Metadata: responseMetadata{RequestID: requestID}}
	for _, arn := range arns {
		resp.Topics = append(resp.Topics, topicEntry{TopicARN: arn})
	}
	return resp, nil
}

func (h *Handler) getTopicAttributes(form url.Values, requestID string) (any, error) {
	attrs, err := h.reg.TopicAttributes(form.Get("TopicArn"))
	if err != nil {
		return nil, err
	}
	return getTopicAttributesResponse{
		Attributes: attributeEntries(attrs),
		Metadata:   responseMetadata{RequestID: requestID},
	}, nil
}

func (h *Handler) setTopicAttributes(form url.Values, requestID string) (any, error) {
	err := h.reg.SetTopicAttribute(
		form.Get("TopicArn"), form.Get("AttributeName"), form.Get("AttributeValue"))
	if err != nil {
		return nil, err
	}
	return setTopicAttributesResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) subscribe(form url.Values, requestID string) (any, error) {
	arn, err := h.reg.Subscribe(
		form.Get("TopicArn"),
		form.Get("Protocol"),
		form.Get("Endpoint"),
		wire.FormEntryMap(form, "Attributes"),
	)
	if err != nil {
		return nil, err
	}
	return subscribeResponse{SubscriptionARN: arn, Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) confirmSubscription(form url.Values, requestID string) (any, error) {
	arn, err := h.reg.ConfirmSubscription(form.Get("TopicArn"), form.Get("Token"))
	if err != nil {
		return nil, err
	}
	return confirmSubscriptionResponse{SubscriptionARN: arn, Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) unsubscribe(form url.Values, requestID string) (any, error) {
	if err := h.reg.Unsubscribe(form.Get("SubscriptionArn")); err != nil {
		return nil, err
	}
	return unsubscribeResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) listSubscriptions(form url.Values, requestID string) (any, error) {
	return listSubscriptionsResponse{
		Subscriptions: subscriptionEntries(h.reg.ListSubscriptions()),
		Metadata:      responseMetadata{RequestID: requestID},
	}, nil
}

func (h *Handler) listSubscriptionsByTopic(form url.Values, requestID string) (any, error) {
	subs, err := h.reg.ListSubscriptionsByTopic(form.Get("TopicArn"))
	if err != nil {
		return nil, err
	}
	return listSubscriptionsByTopicResponse{
		Subscriptions: subscriptionEntries(subs),
		Metadata:      responseMetadata{RequestID: requestID},
	}, nil
}

func (h *Handler) getSubscriptionAttributes(form url.Values, requestID string) (any, error) {
	attrs, err := h.reg.SubscriptionAttributes(form.Get("SubscriptionArn"))
	if err != nil {
		return nil, err
	}
	return getSubscriptionAttributesResponse{
		Attributes: attributeEntries(attrs),
		Metadata:   responseMetadata{RequestID: requestID},
	}, nil
}

func (h *Handler) setSubscriptionAttributes(form url.Values, requestID string) (any, error) {
	err := h.reg.SetSubscriptionAttribute(
		form.Get("SubscriptionArn"), form.Get("AttributeName"), form.Get("AttributeValue"))
	if err != nil {
		return nil, err
	}
	return setSubscriptionAttributesResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) publish(form url.Values, requestID string) (any, error) {
	topicARN := form.Get("TopicArn")
	if topicARN == "" {
		topicARN = form.Get("TargetArn")
	}
	messageID, err := h.reg.Publish(&PublishInput{
		TopicARN:   topicARN,
		Message:    form.Get("Message"),
		Subject:    form.Get("Subject"),
		GroupID:    form.Get("MessageGroupId"),
		DedupID:    form.Get("MessageDeduplicationId"),
		Attributes: formMessageAttributes(form, "MessageAttributes"),
	})
	if err != nil {
		return nil, err
	}
	return publishResponse{MessageID: messageID, Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) publishBatch(form url.Values, requestID string) (any, error) {
	topicARN := form.Get("TopicArn")
	entries := wire.FormMemberFields(form, "PublishBatchRequestEntries")
	if len(entries) == 0 {
		return nil, wire.NewError("EmptyBatchRequest", http.StatusBadRequest,
			"There should be at least one entry in the batch request.")
	}
	if len(entries) > 10 {
		return nil, wire.NewError("TooManyEntriesInBatchRequest", http.StatusBadRequest,
			"The batch request contains more entries than permissible.")
	}
	seen := map[string]struct{}{}
	for _, fields := range entries {
		id := fields["Id"]
		if _, dup := seen[id]; dup {
			return nil, wire.NewError("BatchEntryIdsNotDistinct", http.StatusBadRequest,
				"Two or more batch entries in the request have the same Id.")
		}
		seen[id] = struct{}{}
	}

	resp := publishBatchResponse{Metadata: responseMetadata{RequestID: requestID}}
	for _, fields := range entries {
		messageID, err := h.reg.Publish(&PublishInput{
			TopicARN: topicARN,
			Message:  fields["Message"],
			Subject:  fields["Subject"],
			GroupID:  fields["MessageGroupId"],
			DedupID:  fields["MessageDeduplicationId"],
		})
		if err != nil {
			ae := wire.AsAPIError(err)
			resp.Failed = append(resp.Failed, publishBatchFailure{
				ID: fields["Id"], Code: ae.Code, Message: ae.Message, SenderFault: true,
			})
			continue
		}
		resp.Successful = append(resp.Successful, publishBatchSuccess{
			ID: fields["Id"], MessageID: messageID,
		})
	}
	return resp, nil
}

func (h *Handler) tagResource(form url.Values, requestID string) (any, error) {
	if err := h.reg.TagResource(form.Get("ResourceArn"), formTags(form, "Tags")); err != nil {
		return nil, err
	}
	return tagResourceResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) untagResource(form url.Values, requestID string) (any, error) {
	err := h.reg.UntagResource(form.Get("ResourceArn"), wire.FormMemberList(form, "TagKeys"))
	if err != nil {
		return nil, err
	}
	return untagResourceResponse{Metadata: responseMetadata{RequestID: requestID}}, nil
}

func (h *Handler) listTagsForResource(form url.Values, requestID string) (any, error) {
	tags, err := h.reg.ListTagsForResource(form.Get("ResourceArn"))
	if err != nil {
		return nil, err
	}
	resp := listTagsForResourceResponse{Metadata: responseMetadata{RequestID: requestID}}
	for _, e := range attributeEntries(tags) {
		resp.Tags = append(resp.Tags, tagEntry{Key: e.Key, Value: e.Value})
	}
	return resp, nil
}
