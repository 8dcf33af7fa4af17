package sqs

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
	"github.com/stratuslocal/stratus/internal/wire"
)

const (
	maxQueueNameLength = 80
	maxBatchEntries    = 10
	maxQueueTags       = 50
	maxPermissions     = 7
)

// Registry is the whole-service state: every queue plus the message move
// tasks operating across them. One mutex serializes all operations, which is
// what lets long polls park on a queue's arrival channel without racing
// queue deletion.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string
	baseURL string

	queues    map[string]*Queue
	moveTasks map[string]*moveTask
}

// NewRegistry builds an empty registry. baseURL is the externally reachable
// root used to mint queue URLs, e.g. "http://localhost:9324".
func NewRegistry(region, account, baseURL string) *Registry {
	return &Registry{
		region:    region,
		account:   account,
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		queues:    map[string]*Queue{},
		moveTasks: map[string]*moveTask{},
	}
}

func validQueueName(name string, fifo bool) bool {
	base := name
	if fifo {
		var ok bool
		base, ok = strings.CutSuffix(name, ".fifo")
		if !ok {
			return false
		}
	}
	if base == "" || len(name) > maxQueueNameLength || strings.Contains(base, ".") {
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

// queueByURL resolves a queue by URL or bare name. Callers hold r.mu.
func (r *Registry) queueByURL(queueURL string) (*Queue, error) {
	if queueURL == "" {
		return nil, errMissingParameter("The request must contain the parameter QueueUrl.")
	}
	name := queueURL
	if i := strings.LastIndex(queueURL, "/"); i >= 0 {
		name = queueURL[i+1:]
	}
	q, ok := r.queues[name]
	if !ok {
		return nil, errQueueDoesNotExist("The specified queue does not exist.")
	}
	return q, nil
}

func (r *Registry) queueByARN(arn string) (*Queue, bool) {
	name := arn
	if i := strings.LastIndex(arn, ":"); i >= 0 {
		name = arn[i+1:]
	}
	q, ok := r.queues[name]
	if !ok || q.ARN != arn {
		return nil, false
	}
	return q, true
}

// routeRedrives delivers dead-lettered messages to their target queues.
// Messages whose target no longer exists are dropped. Callers hold r.mu.
func (r *Registry) routeRedrives(redrives []DLQRedrive, now time.Time) {
	for _, rd := range redrives {
		target, ok := r.queueByARN(rd.TargetARN)
		if !ok {
			logger.Warn("dropping dead-lettered message, target queue missing",
				"target_arn", rd.TargetARN, "message_id", rd.Message.ID)
			continue
		}
		target.enqueueMoved(rd.Message, now)
	}
}

// CreateQueue creates a queue or, when one already exists with exactly the
// supplied attribute values, returns the existing URL.
func (r *Registry) CreateQueue(req *CreateQueueRequest) (*CreateQueueResponse, error) {
	fifo := req.Attributes["FifoQueue"] == "true"
	if !validQueueName(req.QueueName, fifo) {
		return nil, errInvalidParameterValue(
			"Can only include alphanumeric characters, hyphens, or underscores. 1 to 80 in length; a FIFO queue name must end with the .fifo suffix.")
	}

	attrs := make(map[string]string, len(req.Attributes))
	for k, v := range req.Attributes {
		if k != "FifoQueue" {
			attrs[k] = v
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()

	if existing, ok := r.queues[req.QueueName]; ok {
		if existing.FIFO != fifo {
			return nil, errQueueAlreadyExists(
				"A queue already exists with the same name and a different value for attribute FifoQueue.")
		}
		current := existing.attributeValues(now)
		for name, value := range attrs {
			if current[name] != value {
				return nil, errQueueAlreadyExists(
					"A queue already exists with the same name and a different value for attribute %s.", name)
			}
		}
		return &CreateQueueResponse{QueueURL: existing.URL}, nil
	}

	url := r.baseURL + "/" + r.account + "/" + req.QueueName
	arn := awsutil.ARN("sqs", r.region, r.account, req.QueueName)
	q, err := newQueue(req.QueueName, url, arn, r.account, fifo, attrs, now)
	if err != nil {
		return nil, err
	}
	for k, v := range req.Tags {
		q.tags[k] = v
	}
	r.queues[req.QueueName] = q
	logger.Info("queue created", "queue", req.QueueName, "fifo", fifo)
	return &CreateQueueResponse{QueueURL: url}, nil
}

func (r *Registry) DeleteQueue(req *DeleteQueueRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	// Wake parked long polls so they observe the deletion instead of
	// blocking on a queue that no longer exists.
	q.notifyArrival()
	delete(r.queues, q.Name)
	logger.Info("queue deleted", "queue", q.Name)
	return nil
}

func (r *Registry) GetQueueURL(req *GetQueueURLRequest) (*GetQueueURLResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queues[req.QueueName]
	if !ok {
		return nil, errQueueDoesNotExist("The specified queue does not exist.")
	}
	return &GetQueueURLResponse{QueueURL: q.URL}, nil
}

// paginateNames applies the shared sorted-name cursor: results strictly
// after the token, with the next token naming the last element of the
// returned page.
func paginateNames(names []string, token string, max int) (page []string, next string) {
	sort.Strings(names)
	start := 0
	if token != "" {
		for start < len(names) && names[start] <= token {
			start++
		}
	}
	end := len(names)
	if max > 0 && start+max < end {
		end = start + max
		next = names[end-1]
	}
	return names[start:end], next
}

func (r *Registry) ListQueues(req *ListQueuesRequest) (*ListQueuesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.queues {
		if req.QueueNamePrefix == "" || strings.HasPrefix(name, req.QueueNamePrefix) {
			names = append(names, name)
		}
	}
	max := 0
	if req.MaxResults != nil {
		if *req.MaxResults < 1 || *req.MaxResults > 1000 {
			return nil, errInvalidParameterValue(
				"Value %d for parameter MaxResults is invalid. Reason: Must be an integer from 1 to 1000.", *req.MaxResults)
		}
		max = *req.MaxResults
	}
	page, next := paginateNames(names, req.NextToken, max)
	resp := &ListQueuesResponse{NextToken: next}
	for _, name := range page {
		resp.QueueURLs = append(resp.QueueURLs, r.queues[name].URL)
	}
	return resp, nil
}

func (r *Registry) GetQueueAttributes(req *GetQueueAttributesRequest) (*GetQueueAttributesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	r.routeRedrives(q.sweepExpired(now), now)
	all := q.attributeValues(now)
	if len(req.AttributeNames) == 0 {
		return &GetQueueAttributesResponse{Attributes: all}, nil
	}
	out := map[string]string{}
	for _, name := range req.AttributeNames {
		if name == "All" {
			return &GetQueueAttributesResponse{Attributes: all}, nil
		}
		if v, ok := all[name]; ok {
			out[name] = v
		}
	}
	return &GetQueueAttributesResponse{Attributes: out}, nil
}

func (r *Registry) SetQueueAttributes(req *SetQueueAttributesRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	if err := q.applyAttributes(req.Attributes); err != nil {
		return err
	}
	q.lastModified = time.Now().Unix()
	return nil
}

func (r *Registry) SendMessage(req *SendMessageRequest) (*SendMessageResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	return q.send(sendParams{
		Body:             req.MessageBody,
		DelaySeconds:     req.DelaySeconds,
		Attributes:       req.MessageAttributes,
		SystemAttributes: req.MessageSystemAttributes,
		DedupID:          req.MessageDeduplicationID,
		GroupID:          req.MessageGroupID,
	}, time.Now())
}

// DeliverToQueueARN enqueues a message on the queue with the given ARN. It
// backs topic fan-out, where subscriptions address queues by ARN rather
// than URL.
func (r *Registry) DeliverToQueueARN(arn, body string, attrs map[string]MessageAttributeValue, groupID, dedupID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, ok := r.queueByARN(arn)
	if !ok {
		return errQueueDoesNotExist("The specified queue does not exist.")
	}
	_, err := q.send(sendParams{
		Body:       body,
		Attributes: attrs,
		DedupID:    dedupID,
		GroupID:    groupID,
	}, time.Now())
	return err
}

func validateBatchIDs[E any](entries []E, id func(E) string) error {
	if len(entries) == 0 {
		return errEmptyBatchRequest("There should be at least one entry in the batch request.")
	}
	if len(entries) > maxBatchEntries {
		return errTooManyEntriesInBatchRequest(
			"Maximum number of entries per request are %d. You have sent %d.", maxBatchEntries, len(entries))
	}
	seen := map[string]struct{}{}
	for _, e := range entries {
		entryID := id(e)
		if !validBatchEntryID(entryID) {
			return errInvalidBatchEntryID(
				"A batch entry id can only contain alphanumeric characters, hyphens and underscores. It can be at most 80 letters long.")
		}
		if _, dup := seen[entryID]; dup {
			return errBatchEntryIdsNotDistinct("Id %s repeated.", entryID)
		}
		seen[entryID] = struct{}{}
	}
	return nil
}

func validBatchEntryID(id string) bool {
	if id == "" || len(id) > 80 {
		return false
	}
	for _, c := range id {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}

func batchFailure(id string, err error) BatchResultErrorEntry {
	ae := wire.AsAPIError(err)
	return BatchResultErrorEntry{ID: id, Code: ae.Code, Message: ae.Message, SenderFault: true}
}

func (r *Registry) SendMessageBatch(req *SendMessageBatchRequest) (*SendMessageBatchResponse, error) {
	if err := validateBatchIDs(req.Entries, func(e SendMessageBatchEntry) string { return e.ID }); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	resp := &SendMessageBatchResponse{
		Successful: []SendMessageBatchResultEntry{},
		Failed:     []BatchResultErrorEntry{},
	}
	for _, e := range req.Entries {
		sent, err := q.send(sendParams{
			Body:             e.MessageBody,
			DelaySeconds:     e.DelaySeconds,
			Attributes:       e.MessageAttributes,
			SystemAttributes: e.MessageSystemAttributes,
			DedupID:          e.MessageDeduplicationID,
			GroupID:          e.MessageGroupID,
		}, now)
		if err != nil {
			resp.Failed = append(resp.Failed, batchFailure(e.ID, err))
			continue
		}
		resp.Successful = append(resp.Successful, SendMessageBatchResultEntry{
			ID:                           e.ID,
			MessageID:                    sent.MessageID,
			MD5OfMessageBody:             sent.MD5OfMessageBody,
			MD5OfMessageAttributes:       sent.MD5OfMessageAttributes,
			MD5OfMessageSystemAttributes: sent.MD5OfMessageSystemAttributes,
			SequenceNumber:               sent.SequenceNumber,
		})
	}
	return resp, nil
}

// ReceiveMessage delivers up to MaxNumberOfMessages, long polling for up to
// WaitTimeSeconds when the queue is empty. The lock is dropped while
// parked; every wake re-resolves the queue so deletion mid-poll is safe.
func (r *Registry) ReceiveMessage(ctx context.Context, req *ReceiveMessageRequest) (*ReceiveMessageResponse, error) {
	max := 1
	if req.MaxNumberOfMessages != nil {
		max = min(10, *req.MaxNumberOfMessages)
		if max < 1 {
			max = 1
		}
	}

	r.mu.Lock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}

	visibility := q.cfg.VisibilityTimeout
	if req.VisibilityTimeout != nil {
		if *req.VisibilityTimeout < 0 || *req.VisibilityTimeout > 43200 {
			r.mu.Unlock()
			return nil, errInvalidParameterValue(
				"Value %d for parameter VisibilityTimeout is invalid. Reason: Must be an integer from 0 to 43200.", *req.VisibilityTimeout)
		}
		visibility = *req.VisibilityTimeout
	}
	wait := q.cfg.ReceiveMessageWaitTimeSeconds
	if req.WaitTimeSeconds != nil {
		if *req.WaitTimeSeconds < 0 || *req.WaitTimeSeconds > 20 {
			r.mu.Unlock()
			return nil, errInvalidParameterValue(
				"Value %d for parameter WaitTimeSeconds is invalid. Reason: Must be an integer from 0 to 20.", *req.WaitTimeSeconds)
		}
		wait = *req.WaitTimeSeconds
	}
	deadline := time.Now().Add(time.Duration(wait) * time.Second)

	now := time.Now()
	r.routeRedrives(q.sweepExpired(now), now)
	msgs, err := q.receiveOnce(max, visibility, now)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	if len(msgs) > 0 || wait == 0 {
		resp := r.buildReceiveResponse(q, msgs, req)
		r.mu.Unlock()
		return resp, nil
	}

	// At most one wait and one post-wake retry per call. A wake that loses
	// the race to another receiver resolves to an empty response once the
	// second attempt comes up dry.
	arrival := q.waitChannel()
	r.mu.Unlock()

	timer := time.NewTimer(time.Until(deadline))
	select {
	case <-arrival:
		timer.Stop()
	case <-timer.C:
	case <-ctx.Done():
		timer.Stop()
		return &ReceiveMessageResponse{}, nil
	}

	r.mu.Lock()
	q, err = r.queueByURL(req.QueueURL)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	now = time.Now()
	r.routeRedrives(q.sweepExpired(now), now)
	msgs, err = q.receiveOnce(max, visibility, now)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	resp := r.buildReceiveResponse(q, msgs, req)
	r.mu.Unlock()
	return resp, nil
}

// buildReceiveResponse renders delivered messages with the request's
// attribute filters applied. Callers hold r.mu.
func (r *Registry) buildReceiveResponse(q *Queue, msgs []*Message, req *ReceiveMessageRequest) *ReceiveMessageResponse {
	resp := &ReceiveMessageResponse{}
	for _, m := range msgs {
		resp.Messages = append(resp.Messages, ReceivedMessage{
			MessageID:              m.ID,
			ReceiptHandle:          m.ReceiptHandle,
			Body:                   m.Body,
			MD5OfBody:              m.MD5OfBody,
			MD5OfMessageAttributes: m.MD5OfAttributes,
			Attributes:             filterSystemAttributes(q.systemAttributes(m), req.AttributeNames),
			MessageAttributes:      filterMessageAttributes(m.Attributes, req.MessageAttributeNames),
		})
	}
	return resp
}

func (r *Registry) DeleteMessage(req *DeleteMessageRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	if req.ReceiptHandle == "" {
		return errMissingParameter("The request must contain the parameter ReceiptHandle.")
	}
	q.deleteMessage(req.ReceiptHandle)
	return nil
}

func (r *Registry) DeleteMessageBatch(req *DeleteMessageBatchRequest) (*DeleteMessageBatchResponse, error) {
	if err := validateBatchIDs(req.Entries, func(e DeleteMessageBatchEntry) string { return e.ID }); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	resp := &DeleteMessageBatchResponse{
		Successful: []DeleteMessageBatchResultEntry{},
		Failed:     []BatchResultErrorEntry{},
	}
	for _, e := range req.Entries {
		if e.ReceiptHandle == "" {
			resp.Failed = append(resp.Failed, batchFailure(e.ID,
				errMissingParameter("The request must contain the parameter ReceiptHandle.")))
			continue
		}
		q.deleteMessage(e.ReceiptHandle)
		resp.Successful = append(resp.Successful, DeleteMessageBatchResultEntry{ID: e.ID})
	}
	return resp, nil
}

func (r *Registry) ChangeMessageVisibility(req *ChangeMessageVisibilityRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	return q.changeVisibility(req.ReceiptHandle, req.VisibilityTimeout, time.Now())
}

func (r *Registry) ChangeMessageVisibilityBatch(req *ChangeMessageVisibilityBatchRequest) (*ChangeMessageVisibilityBatchResponse, error) {
	if err := validateBatchIDs(req.Entries, func(e ChangeMessageVisibilityBatchEntry) string { return e.ID }); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	resp := &ChangeMessageVisibilityBatchResponse{
		Successful: []ChangeMessageVisibilityBatchResultEntry{},
		Failed:     []BatchResultErrorEntry{},
	}
	for _, e := range req.Entries {
		if err := q.changeVisibility(e.ReceiptHandle, e.VisibilityTimeout, now); err != nil {
			resp.Failed = append(resp.Failed, batchFailure(e.ID, err))
			continue
		}
		resp.Successful = append(resp.Successful, ChangeMessageVisibilityBatchResultEntry{ID: e.ID})
	}
	return resp, nil
}

func (r *Registry) PurgeQueue(req *PurgeQueueRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	return q.purge(time.Now())
}

func (r *Registry) TagQueue(req *TagQueueRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	merged := len(q.tags)
	for k := range req.Tags {
		if _, ok := q.tags[k]; !ok {
			merged++
		}
	}
	if merged > maxQueueTags {
		return errInvalidParameterValue("Too many tags added for queue %s.", q.Name)
	}
	for k, v := range req.Tags {
		q.tags[k] = v
	}
	return nil
}

func (r *Registry) UntagQueue(req *UntagQueueRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(q.tags, k)
	}
	return nil
}

func (r *Registry) ListQueueTags(req *ListQueueTagsRequest) (*ListQueueTagsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	tags := make(map[string]string, len(q.tags))
	for k, v := range q.tags {
		tags[k] = v
	}
	return &ListQueueTagsResponse{Tags: tags}, nil
}

func (r *Registry) AddPermission(req *AddPermissionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	if req.Label == "" {
		return errMissingParameter("The request must contain the parameter Label.")
	}
	if len(req.AWSAccountIDs) == 0 {
		return errMissingParameter("The request must contain the parameter AWSAccountIds.")
	}
	if len(req.Actions) == 0 {
		return errMissingParameter("The request must contain the parameter Actions.")
	}
	if _, exists := q.permissions[req.Label]; exists {
		return errInvalidParameterValue("Value %s for parameter Label is invalid. Reason: Already exists.", req.Label)
	}
	if len(q.permissions) >= maxPermissions {
		return errOverLimit("%d permissions already exist for this queue.", maxPermissions)
	}
	q.permissions[req.Label] = struct{}{}
	return nil
}

func (r *Registry) RemovePermission(req *RemovePermissionRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return err
	}
	if _, exists := q.permissions[req.Label]; !exists {
		return errInvalidParameterValue(
			"Value %s for parameter Label is invalid. Reason: does not exist.", req.Label)
	}
	delete(q.permissions, req.Label)
	return nil
}

// ListDeadLetterSourceQueues lists every queue whose redrive policy targets
// the given queue, with the same cursor scheme as ListQueues.
func (r *Registry) ListDeadLetterSourceQueues(req *ListDeadLetterSourceQueuesRequest) (*ListDeadLetterSourceQueuesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q, err := r.queueByURL(req.QueueURL)
	if err != nil {
		return nil, err
	}
	var names []string
	for name, candidate := range r.queues {
		if arn, _, ok := candidate.redrive(); ok && arn == q.ARN {
			names = append(names, name)
		}
	}
	max := 0
	if req.MaxResults != nil {
		max = *req.MaxResults
	}
	page, next := paginateNames(names, req.NextToken, max)
	resp := &ListDeadLetterSourceQueuesResponse{QueueURLs: []string{}, NextToken: next}
	for _, name := range page {
		resp.QueueURLs = append(resp.QueueURLs, r.queues[name].URL)
	}
	return resp, nil
}
