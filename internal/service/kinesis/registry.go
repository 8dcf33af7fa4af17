package kinesis

import (
	"fmt"
	"math/big"
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

func errExpiredIterator(format string, args ...any) *wire.APIError {
	return wire.NewError("ExpiredIteratorException", http.StatusBadRequest, format, args...)
}

type storedRecord struct {
	sequenceNumber string
	data           string
	partitionKey   string
	arrivalSecs    float64
}

type stream struct {
	name           string
	arn            string
	status         string
	shardCount     int
	retentionHours int
	createdSecs    float64
	tags           map[string]string
	records        []storedRecord
	nextSequence   uint64
}

// iteratorState is a cursor into a stream's record log. Records are kept in
// one flat list regardless of shard; shard 0 receives everything.
type iteratorState struct {
	streamName string
	shardID    string
	position   int
}

// Registry holds data streams and the shard iterators handed out over them.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	streams   map[string]*stream
	iterators map[string]iteratorState
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:    region,
		account:   account,
		streams:   map[string]*stream{},
		iterators: map[string]iteratorState{},
	}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

func sequenceNumber(n uint64) string {
	return fmt.Sprintf("%049d", n)
}

func shardID(n int) string {
	return fmt.Sprintf("shardId-%012d", n)
}

// makeShards splits the 128-bit hash key space evenly across count shards.
func makeShards(count int) []Shard {
	max := new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 128), big.NewInt(1))
	step := new(big.Int).Div(max, big.NewInt(int64(count)))
	shards := make([]Shard, 0, count)
	for i := 0; i < count; i++ {
		start := new(big.Int).Mul(step, big.NewInt(int64(i)))
		var end *big.Int
		if i+1 == count {
			end = max
		} else {
			end = new(big.Int).Mul(step, big.NewInt(int64(i+1)))
			end.Sub(end, big.NewInt(1))
		}
		shards = append(shards, Shard{
			ShardID: shardID(i),
			HashKeyRange: HashKeyRange{
				StartingHashKey: start.String(),
				EndingHashKey:   end.String(),
			},
			SequenceNumberRange: SequenceNumberRange{
				StartingSequenceNumber: sequenceNumber(0),
			},
		})
	}
	return shards
}

// resolve finds a stream by name or by ARN; requests may carry either.
func (r *Registry) resolve(name, arn string) (*stream, error) {
	if name != "" {
		if s, ok := r.streams[name]; ok {
			return s, nil
		}
	}
	if arn != "" {
		for _, s := range r.streams {
			if s.arn == arn {
				return s, nil
			}
		}
	}
	return nil, errNotFound("Stream not found")
}

func (r *Registry) CreateStream(req *CreateStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.streams[req.StreamName]; ok {
		return errInUse("Stream %s already exists", req.StreamName)
	}
	shardCount := req.ShardCount
	if shardCount <= 0 {
		shardCount = 1
	}
	r.streams[req.StreamName] = &stream{
		name:           req.StreamName,
		arn:            awsutil.ARN("kinesis", r.region, r.account, "stream/"+req.StreamName),
		status:         "ACTIVE",
		shardCount:     shardCount,
		retentionHours: 24,
		createdSecs:    nowEpoch(),
		tags:           map[string]string{},
		nextSequence:   1,
	}
	return nil
}

func (r *Registry) DeleteStream(req *DeleteStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return err
	}
	delete(r.streams, s.name)
	return nil
}

func (r *Registry) DescribeStream(req *DescribeStreamRequest) (*DescribeStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	return &DescribeStreamResponse{StreamDescription: StreamDescription{
		StreamName:              s.name,
		StreamARN:               s.arn,
		StreamStatus:            s.status,
		StreamModeDetails:       StreamModeDetails{StreamMode: "PROVISIONED"},
		Shards:                  makeShards(s.shardCount),
		HasMoreShards:           false,
		RetentionPeriodHours:    s.retentionHours,
		StreamCreationTimestamp: s.createdSecs,
		EnhancedMonitoring:      []any{},
	}}, nil
}

func (r *Registry) DescribeStreamSummary(req *DescribeStreamSummaryRequest) (*DescribeStreamSummaryResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	return &DescribeStreamSummaryResponse{StreamDescriptionSummary: StreamDescriptionSummary{
		StreamName:              s.name,
		StreamARN:               s.arn,
		StreamStatus:            s.status,
		StreamModeDetails:       StreamModeDetails{StreamMode: "PROVISIONED"},
		RetentionPeriodHours:    s.retentionHours,
		StreamCreationTimestamp: s.createdSecs,
		OpenShardCount:          s.shardCount,
		EnhancedMonitoring:      []any{},
	}}, nil
}

func (r *Registry) ListStreams(req *ListStreamsRequest) (*ListStreamsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.streams))
	for name := range r.streams {
		if req.ExclusiveStartStreamName != "" && name <= req.ExclusiveStartStreamName {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	hasMore := len(names) > limit
	if hasMore {
		names = names[:limit]
	}
	return &ListStreamsResponse{StreamNames: names, HasMoreStreams: hasMore}, nil
}

func (r *Registry) PutRecord(req *PutRecordRequest) (*PutRecordResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	seq := s.append(req.Data, req.PartitionKey)
	return &PutRecordResponse{
		ShardID:        shardID(0),
		SequenceNumber: seq,
		EncryptionType: "NONE",
	}, nil
}

func (r *Registry) PutRecords(req *PutRecordsRequest) (*PutRecordsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	resp := &PutRecordsResponse{
		Records:        make([]PutRecordsResultEntry, 0, len(req.Records)),
		EncryptionType: "NONE",
	}
	for _, record := range req.Records {
		seq := s.append(record.Data, record.PartitionKey)
		resp.Records = append(resp.Records, PutRecordsResultEntry{
			ShardID:        shardID(0),
			SequenceNumber: seq,
		})
	}
	return resp, nil
}

func (s *stream) append(data, partitionKey string) string {
	seq := sequenceNumber(s.nextSequence)
	s.nextSequence++
	s.records = append(s.records, storedRecord{
		sequenceNumber: seq,
		data:           data,
		partitionKey:   partitionKey,
		arrivalSecs:    nowEpoch(),
	})
	return seq
}

func encodeIterator(streamName, shardID string, position int) string {
	return awsutil.Base64Encode([]byte(streamName + ":" + shardID + ":" + strconv.Itoa(position)))
}

func (r *Registry) GetShardIterator(req *GetShardIteratorRequest) (*GetShardIteratorResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	var position int
	switch req.ShardIteratorType {
	case "TRIM_HORIZON":
		position = 0
	case "LATEST":
		position = len(s.records)
	case "AT_SEQUENCE_NUMBER", "AFTER_SEQUENCE_NUMBER":
		position = len(s.records)
		for i, rec := range s.records {
			if rec.sequenceNumber == req.StartingSequenceNumber {
				position = i
				if req.ShardIteratorType == "AFTER_SEQUENCE_NUMBER" {
					position = i + 1
				}
				break
			}
		}
	default:
		position = len(s.records)
	}
	iterator := encodeIterator(s.name, req.ShardID, position)
	r.iterators[iterator] = iteratorState{
		streamName: s.name,
		shardID:    req.ShardID,
		position:   position,
	}
	return &GetShardIteratorResponse{ShardIterator: iterator}, nil
}

func (r *Registry) GetRecords(req *GetRecordsRequest) (*GetRecordsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	iter, ok := r.iterators[req.ShardIterator]
	if !ok {
		return nil, errExpiredIterator("Iterator expired or invalid")
	}
	s, ok := r.streams[iter.streamName]
	if !ok {
		return nil, errNotFound("Stream not found")
	}
	limit := req.Limit
	if limit <= 0 || limit > 10000 {
		limit = 10000
	}
	position := iter.position
	if position > len(s.records) {
		position = len(s.records)
	}
	take := len(s.records) - position
	if take > limit {
		take = limit
	}
	records := make([]Record, 0, take)
	for _, rec := range s.records[position : position+take] {
		records = append(records, Record{
			SequenceNumber:              rec.sequenceNumber,
			ApproximateArrivalTimestamp: rec.arrivalSecs,
			Data:                        rec.data,
			PartitionKey:                rec.partitionKey,
			EncryptionType:              "NONE",
		})
	}
	newPosition := position + take
	next := encodeIterator(iter.streamName, iter.shardID, newPosition)
	r.iterators[next] = iteratorState{
		streamName: iter.streamName,
		shardID:    iter.shardID,
		position:   newPosition,
	}
	delete(r.iterators, req.ShardIterator)
	var millisBehind int64
	if newPosition < len(s.records) {
		millisBehind = 1000
	}
	return &GetRecordsResponse{
		Records:            records,
		NextShardIterator:  next,
		MillisBehindLatest: millisBehind,
	}, nil
}

func (r *Registry) ListShards(req *ListShardsRequest) (*ListShardsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return nil, err
	}
	return &ListShardsResponse{Shards: makeShards(s.shardCount)}, nil
}

func (r *Registry) AddTagsToStream(req *AddTagsToStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return err
	}
	for k, v := range req.Tags {
		s.tags[k] = v
	}
	return nil
}

func (r *Registry) RemoveTagsFromStream(req *RemoveTagsFromStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(s.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForStream(req *ListTagsForStreamRequest) (*ListTagsForStreamResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
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
		limit = 10
	}
	hasMore := len(keys) > limit
	if hasMore {
		keys = keys[:limit]
	}
	resp := &ListTagsForStreamResponse{Tags: []Tag{}, HasMoreTags: hasMore}
	for _, k := range keys {
		resp.Tags = append(resp.Tags, Tag{Key: k, Value: s.tags[k]})
	}
	return resp, nil
}

func (r *Registry) IncreaseStreamRetentionPeriod(req *IncreaseStreamRetentionPeriodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return err
	}
	if req.RetentionPeriodHours <= s.retentionHours {
		return errInvalidArgument("New retention period must be greater than current")
	}
	s.retentionHours = req.RetentionPeriodHours
	return nil
}

func (r *Registry) DecreaseStreamRetentionPeriod(req *DecreaseStreamRetentionPeriodRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.StreamName, req.StreamARN)
	if err != nil {
		return err
	}
	if req.RetentionPeriodHours >= s.retentionHours {
		return errInvalidArgument("New retention period must be less than current")
	}
	s.retentionHours = req.RetentionPeriodHours
	return nil
}
