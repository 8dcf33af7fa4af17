package firehose

import (
	"net/http"
	"sort"
	"strconv"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errInUse(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceInUseException", http.StatusBadRequest, format, args...)
}

func errInvalidArgument(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidArgumentException", http.StatusBadRequest, format, args...)
}

func errConcurrentModification(format string, args ...any) *wire.APIError {
	return wire.NewError("ConcurrentModificationException", http.StatusBadRequest, format, args...)
}

func errLimitExceeded(format string, args ...any) *wire.APIError {
	return wire.NewError("LimitExceededException", http.StatusBadRequest, format, args...)
}

type storedRecord struct {
	recordID string
	data     string
}

type deliveryStream struct {
	name        string
	arn         string
	status      string
	streamType  string
	createdSecs float64
	updatedSecs float64
	versionID   string

	destinationIDs []string
	tags           map[string]string
	records        []storedRecord
}

// Registry holds delivery streams. Records are buffered in memory; nothing
// delivers them anywhere, PutRecord acknowledgements are the contract.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	streams map[string]*deliveryStream
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, streams: map[string]*deliveryStream{}}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

func (r *Registry) stream(name string) (*deliveryStream, error) {
	s, ok := r.streams[name]
	if !ok {
		return nil, errNotFound("Delivery stream %s under account %s not found.", name, r.account)
	}
	return s, nil
}

func (r *Registry) CreateDeliveryStream(req *CreateDeliveryStreamRequest) (*CreateDeliveryStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[req.DeliveryStreamName]; ok {
		return nil, errInUse("Delivery stream %s already exists", req.DeliveryStreamName)
	}
	streamType := req.DeliveryStreamType
	if streamType == "" {
		streamType = "DirectPut"
	}
	now := nowEpoch()
	s := &deliveryStream{
		name:           req.DeliveryStreamName,
		arn:            awsutil.ARN("firehose", r.region, r.account, "deliverystream/"+req.DeliveryStreamName),
		status:         "ACTIVE",
		streamType:     streamType,
		createdSecs:    now,
		updatedSecs:    now,
		versionID:      "1",
		destinationIDs: []string{"destinationId-000000000001"},
		tags:           map[string]string{},
	}
	for _, tag := range req.Tags {
		s.tags[tag.Key] = tag.Value
	}
	r.streams[req.DeliveryStreamName] = s
	return &CreateDeliveryStreamResponse{DeliveryStreamARN: s.arn}, nil
}

func (r *Registry) DeleteDeliveryStream(req *DeleteDeliveryStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.stream(req.DeliveryStreamName); err != nil {
		return err
	}
	delete(r.streams, req.DeliveryStreamName)
	return nil
}

func (r *Registry) DescribeDeliveryStream(req *DescribeDeliveryStreamRequest) (*DescribeDeliveryStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return nil, err
	}
	destinations := make([]DestinationDescription, 0, len(s.destinationIDs))
	for _, id := range s.destinationIDs {
		destinations = append(destinations, DestinationDescription{DestinationID: id})
	}
	return &DescribeDeliveryStreamResponse{DeliveryStreamDescription: DeliveryStreamDescription{
		DeliveryStreamName:                    s.name,
		DeliveryStreamARN:                     s.arn,
		DeliveryStreamStatus:                  s.status,
		DeliveryStreamType:                    s.streamType,
		VersionID:                             s.versionID,
		CreateTimestamp:                       s.createdSecs,
		LastUpdateTimestamp:                   s.updatedSecs,
		Destinations:                          destinations,
		HasMoreDestinations:                   false,
		DeliveryStreamEncryptionConfiguration: EncryptionConfig{Status: "DISABLED"},
	}}, nil
}

func (r *Registry) ListDeliveryStreams(req *ListDeliveryStreamsRequest) (*ListDeliveryStreamsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.streams))
	for name, s := range r.streams {
		if req.DeliveryStreamType != "" && s.streamType != req.DeliveryStreamType {
			continue
		}
		if req.ExclusiveStartDeliveryStreamName != "" && name <= req.ExclusiveStartDeliveryStreamName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	limit := req.Limit
	if limit <= 0 {
		limit = 10000
	}
	hasMore := len(names) > limit
	if hasMore {
		names = names[:limit]
	}
	return &ListDeliveryStreamsResponse{DeliveryStreamNames: names, HasMoreDeliveryStreams: hasMore}, nil
}

// UpdateDestination only bumps the stream version; destination configs are
// accepted and discarded.
func (r *Registry) UpdateDestination(req *UpdateDestinationRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	if s.versionID != req.CurrentDeliveryStreamVersionID {
		return errConcurrentModification(
			"Version mismatch: current version is %s, provided version is %s",
			s.versionID, req.CurrentDeliveryStreamVersionID)
	}
	found := false
	for _, id := range s.destinationIDs {
		if id == req.DestinationID {
			found = true
			break
		}
	}
	if !found {
		return errInvalidArgument("Destination Id %s not found", req.DestinationID)
	}
	version, _ := strconv.Atoi(s.versionID)
	if version == 0 {
		version = 1
	}
	s.versionID = strconv.Itoa(version + 1)
	s.updatedSecs = nowEpoch()
	return nil
}

func (r *Registry) PutRecord(req *PutRecordRequest) (*PutRecordResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return nil, err
	}
	recordID := awsutil.NewID()
	s.records = append(s.records, storedRecord{recordID: recordID, data: req.Record.Data})
	return &PutRecordResponse{RecordID: recordID}, nil
}

func (r *Registry) PutRecordBatch(req *PutRecordBatchRequest) (*PutRecordBatchResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(req.Records) == 0 {
		return nil, errInvalidArgument("Records must not be empty")
	}
	if len(req.Records) > 500 {
		return nil, errInvalidArgument("Batch size must not exceed 500 records")
	}
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return nil, err
	}
	resp := &PutRecordBatchResponse{
		RequestResponses: make([]PutRecordBatchResponseEntry, 0, len(req.Records)),
	}
	for _, record := range req.Records {
		recordID := awsutil.NewID()
		s.records = append(s.records, storedRecord{recordID: recordID, data: record.Data})
		resp.RequestResponses = append(resp.RequestResponses, PutRecordBatchResponseEntry{RecordID: recordID})
	}
	return resp, nil
}

func (r *Registry) TagDeliveryStream(req *TagDeliveryStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	for _, tag := range req.Tags {
		s.tags[tag.Key] = tag.Value
	}
	if len(s.tags) > 50 {
		return errLimitExceeded("Tag limit exceeded. Max 50 tags per delivery stream.")
	}
	return nil
}

func (r *Registry) UntagDeliveryStream(req *UntagDeliveryStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(s.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForDeliveryStream(req *ListTagsForDeliveryStreamRequest) (*ListTagsForDeliveryStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.stream(req.DeliveryStreamName)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(s.tags))
	for k := range s.tags {
		if req.ExclusiveStartTagKey != "" && k <= req.ExclusiveStartTagKey {
			continue
		}
		keys = append(keys, k)
	}
	sort.Strings(keys)
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}
	resp := &ListTagsForDeliveryStreamResponse{Tags: []Tag{}, HasMoreTags: hasMore}
	for _, k := range keys {
		resp.Tags = append(resp.Tags, Tag{Key: k, Value: s.tags[k]})
	}
	return resp, nil
}
