package sqs

import (
	"bytes"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
)

// Queue limits and defaults. Values mirror the real service.
const (
	defaultVisibilityTimeout = 30
	defaultRetentionPeriod   = 345600
	defaultMaxMessageSize    = 262144
	defaultKmsReusePeriod    = 300

	maxInflightFifo     = 20_000
	maxInflightStandard = 120_000

	dedupWindow = 5 * time.Minute
	purgeWindow = 60 * time.Second
)

// Message is one stored message. The receipt handle and visibility deadline
// are only meaningful while the message is in flight.
type Message struct {
	ID                    string
	Body                  string
	MD5OfBody             string
	Attributes            map[string]MessageAttributeValue
	MD5OfAttributes       string
	SystemAttributes      map[string]MessageAttributeValue
	MD5OfSystemAttributes string

	GroupID        string
	DedupID        string
	SequenceNumber string

	SentTimestamp         int64 // unix millis
	VisibleAt             time.Time
	ReceiveCount          int
	FirstReceiveTimestamp int64 // unix millis, zero until first delivery

	ReceiptHandle      string
	VisibilityDeadline time.Time

	// OriginARN is the queue the message was originally sent to. It is
	// stamped when a message crosses into a dead-letter queue so a later
	// redrive without an explicit destination can route it home.
	OriginARN string
}

type queueConfig struct {
	VisibilityTimeout             int
	MessageRetentionPeriod        int
	DelaySeconds                  int
	MaximumMessageSize            int
	ReceiveMessageWaitTimeSeconds int

	ContentBasedDeduplication bool
	DeduplicationScope        string
	FifoThroughputLimit       string

	SseEnabled                   bool
	KmsMasterKeyID               string
	KmsDataKeyReusePeriodSeconds int

	Policy             string
	RedrivePolicy      string
	RedriveAllowPolicy string
}

type dedupEntry struct {
	resp       SendMessageResponse
	insertedAt time.Time
}

// Queue holds all state for one queue. Methods are not self-locking: the
// owning Registry serializes access under its mutex.
type Queue struct {
	Name    string
	URL     string
	ARN     string
	Account string
	FIFO    bool

	cfg          queueConfig
	tags         map[string]string
	permissions  map[string]struct{}
	created      int64 // unix seconds
	lastModified int64

	pending      []*Message
	inflight     map[string]*Message // keyed by receipt handle
	lockedGroups map[string]struct{}
	dedupCache   map[string]dedupEntry
	seqCounter   int64
	lastPurge    time.Time

	// notify is closed and replaced whenever a message becomes available,
	// waking every blocked long poll at once.
	notify chan struct{}
}

// DLQRedrive is a message that exhausted its receive budget and must be
// appended to the named dead-letter queue.
type DLQRedrive struct {
	TargetARN string
	Message   *Message
}

func newQueue(name, url, arn, account string, fifo bool, attrs map[string]string, now time.Time) (*Queue, error) {
	q := &Queue{
		Name:    name,
		URL:     url,
		ARN:     arn,
		Account: account,
		FIFO:    fifo,
		cfg: queueConfig{
			VisibilityTimeout:            defaultVisibilityTimeout,
			MessageRetentionPeriod:       defaultRetentionPeriod,
			MaximumMessageSize:           defaultMaxMessageSize,
			SseEnabled:                   true,
			KmsDataKeyReusePeriodSeconds: defaultKmsReusePeriod,
		},
		tags:         map[string]string{},
		permissions:  map[string]struct{}{},
		created:      now.Unix(),
		lastModified: now.Unix(),
		inflight:     map[string]*Message{},
		lockedGroups: map[string]struct{}{},
		dedupCache:   map[string]dedupEntry{},
		notify:       make(chan struct{}),
	}
	if fifo {
		q.cfg.DeduplicationScope = "queue"
		q.cfg.FifoThroughputLimit = "perQueue"
	}
	if err := q.applyAttributes(attrs); err != nil {
		return nil, err
	}
	return q, nil
}

// applyAttributes validates and applies a queue attribute map. FifoQueue
// itself is handled by queue creation and rejected here.
func (q *Queue) applyAttributes(attrs map[string]string) error {
	for name, value := range attrs {
		switch name {
		case "VisibilityTimeout":
			n, err := attrInt(name, value, 0, 43200)
			if err != nil {
				return err
			}
			q.cfg.VisibilityTimeout = n
		case "MessageRetentionPeriod":
			n, err := attrInt(name, value, 60, 1209600)
			if err != nil {
				return err
			}
			q.cfg.MessageRetentionPeriod = n
		case "DelaySeconds":
			n, err := attrInt(name, value, 0, 900)
			if err != nil {
				return err
			}
			q.cfg.DelaySeconds = n
		case "MaximumMessageSize":
			n, err := attrInt(name, value, 1024, 262144)
			if err != nil {
				return err
			}
			q.cfg.MaximumMessageSize = n
		case "ReceiveMessageWaitTimeSeconds":
			n, err := attrInt(name, value, 0, 20)
			if err != nil {
				return err
			}
			q.cfg.ReceiveMessageWaitTimeSeconds = n
		case "ContentBasedDeduplication":
			if !q.FIFO {
				return errInvalidAttributeName("Unknown Attribute ContentBasedDeduplication.")
			}
			q.cfg.ContentBasedDeduplication = value == "true"
		case "DeduplicationScope":
			if value != "queue" && value != "messageGroup" {
				return errInvalidAttributeValue("Invalid value for the parameter DeduplicationScope.")
			}
			q.cfg.DeduplicationScope = value
		case "FifoThroughputLimit":
			if value != "perQueue" && value != "perMessageGroupId" {
				return errInvalidAttributeValue("Invalid value for the parameter FifoThroughputLimit.")
			}
			q.cfg.FifoThroughputLimit = value
		case "SqsManagedSseEnabled":
			q.cfg.SseEnabled = value == "true"
		case "KmsMasterKeyId":
			q.cfg.KmsMasterKeyID = value
		case "KmsDataKeyReusePeriodSeconds":
			n, err := attrInt(name, value, 60, 86400)
			if err != nil {
				return err
			}
			q.cfg.KmsDataKeyReusePeriodSeconds = n
		case "Policy":
			q.cfg.Policy = value
		case "RedrivePolicy":
			if value != "" {
				if _, _, err := parseRedrivePolicy(value); err != nil {
					return err
				}
			}
			q.cfg.RedrivePolicy = value
		case "RedriveAllowPolicy":
			q.cfg.RedriveAllowPolicy = value
		case "FifoQueue":
			return errInvalidAttributeName("Unknown Attribute FifoQueue.")
		default:
			return errInvalidAttributeName("Unknown Attribute %s.", name)
		}
	}
	return nil
}

func attrInt(name, value string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(value)
	if err != nil || n < lo || n > hi {
		return 0, errInvalidAttributeValue(
			"Invalid value for the parameter %s. Reason: Must be an integer from %d to %d.", name, lo, hi)
	}
	return n, nil
}

type redrivePolicyDoc struct {
	DeadLetterTargetARN string          `json:"deadLetterTargetArn"`
	MaxReceiveCount     json.RawMessage `json:"maxReceiveCount"`
}

// parseRedrivePolicy accepts maxReceiveCount as either a JSON number or a
// quoted string, which is how SDKs in the wild actually send it.
func parseRedrivePolicy(raw string) (arn string, maxReceive int, err error) {
	var doc redrivePolicyDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return "", 0, errInvalidAttributeValue("Invalid value for the parameter RedrivePolicy.")
	}
	count := strings.Trim(string(doc.MaxReceiveCount), `"`)
	n, convErr := strconv.Atoi(count)
	if convErr != nil || n < 1 || n > 1000 || doc.DeadLetterTargetARN == "" {
		return "", 0, errInvalidAttributeValue("Invalid value for the parameter RedrivePolicy.")
	}
	return doc.DeadLetterTargetARN, n, nil
}

// redrive reports the queue's dead-letter target, if configured.
func (q *Queue) redrive() (arn string, maxReceive int, ok bool) {
	if q.cfg.RedrivePolicy == "" {
		return "", 0, false
	}
	arn, maxReceive, err := parseRedrivePolicy(q.cfg.RedrivePolicy)
	if err != nil {
		return "", 0, false
	}
	return arn, maxReceive, true
}

// notifyArrival wakes all blocked long polls. Callers hold the registry lock,
// so swapping the channel races with nobody.
func (q *Queue) notifyArrival() {
	close(q.notify)
	q.notify = make(chan struct{})
}

func (q *Queue) waitChannel() <-chan struct{} {
	return q.notify
}

type sendParams struct {
	Body             string
	DelaySeconds     *int
	Attributes       map[string]MessageAttributeValue
	SystemAttributes map[string]MessageAttributeValue
	DedupID          string
	GroupID          string
	OriginARN        string
}

// send validates and enqueues one message, returning the wire response.
// FIFO duplicates inside the deduplication window return the original
// response without enqueueing anything.
func (q *Queue) send(p sendParams, now time.Time) (*SendMessageResponse, error) {
	if p.Body == "" {
		return nil, errMissingParameter("The request must contain the parameter MessageBody.")
	}
	if len(p.Body) > q.cfg.MaximumMessageSize {
		return nil, errInvalidParameterValue(
			"One or more parameters are invalid. Reason: Message must be shorter than %d bytes.",
			q.cfg.MaximumMessageSize)
	}

	delay := q.cfg.DelaySeconds
	if p.DelaySeconds != nil {
		if q.FIFO {
			return nil, errInvalidParameterValue(
				"Value %d for parameter DelaySeconds is invalid. Reason: The request include parameter that is not valid for this queue type.",
				*p.DelaySeconds)
		}
		if *p.DelaySeconds < 0 || *p.DelaySeconds > 900 {
			return nil, errInvalidParameterValue(
				"Value %d for parameter DelaySeconds is invalid. Reason: DelaySeconds must be >= 0 and <= 900.",
				*p.DelaySeconds)
		}
		delay = *p.DelaySeconds
	}

	var dedupID string
	if q.FIFO {
		if p.GroupID == "" {
			return nil, errMissingParameter("The request must contain the parameter MessageGroupId.")
		}
		switch {
		case p.DedupID != "":
			dedupID = p.DedupID
		case q.cfg.ContentBasedDeduplication:
			dedupID = awsutil.SHA256Hex([]byte(p.Body))
		default:
			return nil, errInvalidParameterValue(
				"The queue should either have ContentBasedDeduplication enabled or MessageDeduplicationId provided explicitly.")
		}
		q.expireDedupEntries(now)
		if entry, ok := q.dedupCache[dedupID]; ok {
			resp := entry.resp
			return &resp, nil
		}
	}

	md5Attrs, err := attributeMD5(p.Attributes)
	if err != nil {
		return nil, err
	}
	md5SysAttrs, err := attributeMD5(p.SystemAttributes)
	if err != nil {
		return nil, err
	}

	m := &Message{
		ID:                    awsutil.NewID(),
		Body:                  p.Body,
		MD5OfBody:             awsutil.MD5Hex([]byte(p.Body)),
		Attributes:            p.Attributes,
		MD5OfAttributes:       md5Attrs,
		SystemAttributes:      p.SystemAttributes,
		MD5OfSystemAttributes: md5SysAttrs,
		GroupID:               p.GroupID,
		DedupID:               dedupID,
		SentTimestamp:         now.UnixMilli(),
		VisibleAt:             now.Add(time.Duration(delay) * time.Second),
		OriginARN:             p.OriginARN,
	}
	if q.FIFO {
		q.seqCounter++
		m.SequenceNumber = fmt.Sprintf("%020d", q.seqCounter)
	}
	q.pending = append(q.pending, m)

	resp := SendMessageResponse{
		MessageID:                    m.ID,
		MD5OfMessageBody:             m.MD5OfBody,
		MD5OfMessageAttributes:       m.MD5OfAttributes,
		MD5OfMessageSystemAttributes: m.MD5OfSystemAttributes,
		SequenceNumber:               m.SequenceNumber,
	}
	if q.FIFO {
		q.dedupCache[dedupID] = dedupEntry{resp: resp, insertedAt: now}
	}
	q.notifyArrival()
	return &resp, nil
}

func (q *Queue) expireDedupEntries(now time.Time) {
	for id, entry := range q.dedupCache {
		if now.Sub(entry.insertedAt) > dedupWindow {
			delete(q.dedupCache, id)
		}
	}
}

// enqueueMoved appends a message arriving from a redrive or move task. The
// message keeps its body and attributes but starts a fresh delivery life.
func (q *Queue) enqueueMoved(m *Message, now time.Time) {
	m.ReceiptHandle = ""
	m.ReceiveCount = 0
	m.FirstReceiveTimestamp = 0
	m.VisibleAt = now
	m.SentTimestamp = now.UnixMilli()
	if q.FIFO {
		if m.GroupID == "" {
			m.GroupID = "default"
		}
		q.seqCounter++
		m.SequenceNumber = fmt.Sprintf("%020d", q.seqCounter)
	}
	q.pending = append(q.pending, m)
	q.notifyArrival()
}

// sweepExpired returns timed-out in-flight messages to the pending list and
// collects the ones that exhausted their receive budget for dead-lettering.
func (q *Queue) sweepExpired(now time.Time) []DLQRedrive {
	var redrives []DLQRedrive
	dlqARN, maxReceive, hasRedrive := q.redrive()
	for handle, m := range q.inflight {
		if now.Before(m.VisibilityDeadline) {
			continue
		}
		delete(q.inflight, handle)
		delete(q.lockedGroups, m.GroupID)
		m.ReceiptHandle = ""
		if hasRedrive && m.ReceiveCount >= maxReceive {
			if m.OriginARN == "" {
				m.OriginARN = q.ARN
			}
			redrives = append(redrives, DLQRedrive{TargetARN: dlqARN, Message: m})
			continue
		}
		q.requeue(m)
	}
	if len(q.pending) > 0 {
		q.notifyArrival()
	}
	return redrives
}

// requeue puts a message back on the pending list. FIFO queues restore
// sequence order so redelivery cannot reorder a message group.
func (q *Queue) requeue(m *Message) {
	q.pending = append(q.pending, m)
	if q.FIFO {
		sort.SliceStable(q.pending, func(i, j int) bool {
			return q.pending[i].SequenceNumber < q.pending[j].SequenceNumber
		})
	}
}

// receiveOnce attempts one non-blocking delivery pass. It never waits; the
// registry layer owns long-poll blocking.
func (q *Queue) receiveOnce(max, visibility int, now time.Time) ([]*Message, error) {
	limit := maxInflightStandard
	if q.FIFO {
		limit = maxInflightFifo
	}
	if len(q.inflight) >= limit {
		return nil, errOverLimit(
			"The maximum number of in flight messages is reached for this queue.")
	}

	retentionCutoff := now.Add(-time.Duration(q.cfg.MessageRetentionPeriod) * time.Second)
	seenGroups := map[string]struct{}{}
	var out []*Message
	kept := q.pending[:0]
	for _, m := range q.pending {
		if time.UnixMilli(m.SentTimestamp).Before(retentionCutoff) {
			continue // past retention, silently dropped
		}
		if len(out) >= max {
			kept = append(kept, m)
			continue
		}
		if q.FIFO {
			if _, locked := q.lockedGroups[m.GroupID]; locked {
				seenGroups[m.GroupID] = struct{}{}
			}
			if _, seen := seenGroups[m.GroupID]; seen {
				kept = append(kept, m)
				continue
			}
		}
		if now.Before(m.VisibleAt) {
			if q.FIFO {
				seenGroups[m.GroupID] = struct{}{}
			}
			kept = append(kept, m)
			continue
		}

		m.ReceiveCount++
		if m.FirstReceiveTimestamp == 0 {
			m.FirstReceiveTimestamp = now.UnixMilli()
		}
		m.ReceiptHandle = awsutil.NewID()
		m.VisibilityDeadline = now.Add(time.Duration(visibility) * time.Second)
		q.inflight[m.ReceiptHandle] = m
		if q.FIFO {
			q.lockedGroups[m.GroupID] = struct{}{}
			seenGroups[m.GroupID] = struct{}{}
		}
		out = append(out, m)
	}
	q.pending = kept
	return out, nil
}

// deleteMessage removes an in-flight message. Unknown handles are treated as
// already deleted.
func (q *Queue) deleteMessage(receiptHandle string) {
	m, ok := q.inflight[receiptHandle]
	if !ok {
		return
	}
	delete(q.inflight, receiptHandle)
	if q.FIFO {
		delete(q.lockedGroups, m.GroupID)
	}
}

func (q *Queue) changeVisibility(receiptHandle string, timeout int, now time.Time) error {
	if timeout < 0 || timeout > 43200 {
		return errInvalidParameterValue(
			"Value %d for parameter VisibilityTimeout is invalid. Reason: Must be an integer from 0 to 43200.", timeout)
	}
	m, ok := q.inflight[receiptHandle]
	if !ok {
		return errMessageNotInflight("The specified message isn't in flight.")
	}
	if timeout == 0 {
		delete(q.inflight, receiptHandle)
		if q.FIFO {
			delete(q.lockedGroups, m.GroupID)
		}
		m.ReceiptHandle = ""
		q.requeue(m)
		q.notifyArrival()
		return nil
	}
	m.VisibilityDeadline = now.Add(time.Duration(timeout) * time.Second)
	return nil
}

func (q *Queue) purge(now time.Time) error {
	if !q.lastPurge.IsZero() && now.Sub(q.lastPurge) < purgeWindow {
		return errPurgeQueueInProgress(
			"Only one PurgeQueue operation on %s is allowed every 60 seconds.", q.Name)
	}
	q.pending = nil
	q.inflight = map[string]*Message{}
	q.lockedGroups = map[string]struct{}{}
	q.lastPurge = now
	return nil
}

// attributeValues returns every queue attribute, stored and computed.
func (q *Queue) attributeValues(now time.Time) map[string]string {
	delayed := 0
	for _, m := range q.pending {
		if now.Before(m.VisibleAt) {
			delayed++
		}
	}
	attrs := map[string]string{
		"QueueArn":                              q.ARN,
		"ApproximateNumberOfMessages":           strconv.Itoa(len(q.pending) - delayed),
		"ApproximateNumberOfMessagesNotVisible": strconv.Itoa(len(q.inflight)),
		"ApproximateNumberOfMessagesDelayed":    strconv.Itoa(delayed),
		"CreatedTimestamp":                      strconv.FormatInt(q.created, 10),
		"LastModifiedTimestamp":                 strconv.FormatInt(q.lastModified, 10),
		"VisibilityTimeout":                     strconv.Itoa(q.cfg.VisibilityTimeout),
		"MessageRetentionPeriod":                strconv.Itoa(q.cfg.MessageRetentionPeriod),
		"DelaySeconds":                          strconv.Itoa(q.cfg.DelaySeconds),
		"MaximumMessageSize":                    strconv.Itoa(q.cfg.MaximumMessageSize),
		"ReceiveMessageWaitTimeSeconds":         strconv.Itoa(q.cfg.ReceiveMessageWaitTimeSeconds),
		"SqsManagedSseEnabled":                  strconv.FormatBool(q.cfg.SseEnabled),
	}
	if q.FIFO {
		attrs["FifoQueue"] = "true"
		attrs["ContentBasedDeduplication"] = strconv.FormatBool(q.cfg.ContentBasedDeduplication)
		attrs["DeduplicationScope"] = q.cfg.DeduplicationScope
		attrs["FifoThroughputLimit"] = q.cfg.FifoThroughputLimit
	}
	if q.cfg.KmsMasterKeyID != "" {
		attrs["KmsMasterKeyId"] = q.cfg.KmsMasterKeyID
		attrs["KmsDataKeyReusePeriodSeconds"] = strconv.Itoa(q.cfg.KmsDataKeyReusePeriodSeconds)
	}
	if q.cfg.Policy != "" {
		attrs["Policy"] = q.cfg.Policy
	}
	if q.cfg.RedrivePolicy != "" {
		attrs["RedrivePolicy"] = q.cfg.RedrivePolicy
	}
	if q.cfg.RedriveAllowPolicy != "" {
		attrs["RedriveAllowPolicy"] = q.cfg.RedriveAllowPolicy
	}
	return attrs
}

// systemAttributes builds the per-delivery attribute map for one message.
func (q *Queue) systemAttributes(m *Message) map[string]string {
	attrs := map[string]string{
		"SenderId":                         q.Account,
		"SentTimestamp":                    strconv.FormatInt(m.SentTimestamp, 10),
		"ApproximateReceiveCount":          strconv.Itoa(m.ReceiveCount),
		"ApproximateFirstReceiveTimestamp": strconv.FormatInt(m.FirstReceiveTimestamp, 10),
	}
	if q.FIFO {
		attrs["MessageDeduplicationId"] = m.DedupID
		attrs["MessageGroupId"] = m.GroupID
		attrs["SequenceNumber"] = m.SequenceNumber
	}
	if trace, ok := m.SystemAttributes["AWSTraceHeader"]; ok {
		attrs["AWSTraceHeader"] = trace.StringValue
	}
	if m.OriginARN != "" {
		attrs["DeadLetterQueueSourceArn"] = m.OriginARN
	}
	return attrs
}

// attributeMD5 computes the attribute digest the SDKs verify: names sorted,
// each name, type and value written with a 4-byte big-endian length prefix,
// with a transport byte of 1 for string values and 2 for binary values
// (binary values are digested raw, after base64 decoding).
func attributeMD5(attrs map[string]MessageAttributeValue) (string, error) {
	if len(attrs) == 0 {
		return "", nil
	}
	names := make([]string, 0, len(attrs))
	for name := range attrs {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	writeChunk := func(b []byte) {
		var lenBuf [4]byte
		binary.BigEndian.PutUint32(lenBuf[:], uint32(len(b)))
		buf.Write(lenBuf[:])
		buf.Write(b)
	}
	for _, name := range names {
		attr := attrs[name]
		if attr.DataType == "" {
			return "", errInvalidParameterValue(
				"The message attribute '%s' must contain a non-empty message attribute type.", name)
		}
		writeChunk([]byte(name))
		writeChunk([]byte(attr.DataType))
		if strings.HasPrefix(attr.DataType, "Binary") {
			raw := awsutil.Base64Decode(attr.BinaryValue)
			if raw == nil && attr.BinaryValue != "" {
				return "", errInvalidParameterValue(
					"The message attribute '%s' has an invalid binary value.", name)
			}
			buf.WriteByte(2)
			writeChunk(raw)
		} else {
			buf.WriteByte(1)
			writeChunk([]byte(attr.StringValue))
		}
	}
	return awsutil.MD5Hex(buf.Bytes()), nil
}

// filterSystemAttributes applies a ReceiveMessage AttributeNames filter.
// A nil filter omits attributes entirely; "All" passes everything.
func filterSystemAttributes(attrs map[string]string, names []string) map[string]string {
	if len(names) == 0 {
		return nil
	}
	for _, n := range names {
		if n == "All" {
			return attrs
		}
	}
	out := map[string]string{}
	for _, n := range names {
		if v, ok := attrs[n]; ok {
			out[n] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// filterMessageAttributes applies a MessageAttributeNames filter, which
// supports "All" and trailing ".*" prefix wildcards.
func filterMessageAttributes(attrs map[string]MessageAttributeValue, names []string) map[string]MessageAttributeValue {
	if len(names) == 0 || len(attrs) == 0 {
		return nil
	}
	out := map[string]MessageAttributeValue{}
	for _, pattern := range names {
		if pattern == "All" || pattern == ".*" {
			return attrs
		}
		if prefix, ok := strings.CutSuffix(pattern, ".*"); ok {
			for name, v := range attrs {
				if strings.HasPrefix(name, prefix) {
					out[name] = v
				}
			}
			continue
		}
		if v, ok := attrs[pattern]; ok {
			out[pattern] = v
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}
