package kinesis

type StreamModeDetails struct {
	StreamMode string `json:"StreamMode"`
}

type HashKeyRange struct {
	StartingHashKey string `json:"StartingHashKey"`
	EndingHashKey   string `json:"EndingHashKey"`
}

type SequenceNumberRange struct {
	StartingSequenceNumber string `json:"StartingSequenceNumber"`
	EndingSequenceNumber   string `json:"EndingSequenceNumber,omitempty"`
}

type Shard struct {
	ShardID             string              `json:"ShardId"`
	HashKeyRange        HashKeyRange        `json:"HashKeyRange"`
	SequenceNumberRange SequenceNumberRange `json:"SequenceNumberRange"`
}

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type CreateStreamRequest struct {
	StreamName        string             `json:"StreamName"`
	ShardCount        int                `json:"ShardCount,omitempty"`
	StreamModeDetails *StreamModeDetails `json:"StreamModeDetails,omitempty"`
}

type DeleteStreamRequest struct {
	StreamName              string `json:"StreamName,omitempty"`
	StreamARN               string `json:"StreamARN,omitempty"`
	EnforceConsumerDeletion bool   `json:"EnforceConsumerDeletion,omitempty"`
}

type DescribeStreamRequest struct {
	StreamName            string `json:"StreamName,omitempty"`
	StreamARN             string `json:"StreamARN,omitempty"`
	Limit                 int    `json:"Limit,omitempty"`
	ExclusiveStartShardID string `json:"ExclusiveStartShardId,omitempty"`
}

type StreamDescription struct {
	StreamName              string            `json:"StreamName"`
	StreamARN               string            `json:"StreamARN"`
	StreamStatus            string            `json:"StreamStatus"`
	StreamModeDetails       StreamModeDetails `json:"StreamModeDetails"`
	Shards                  []Shard           `json:"Shards"`
	HasMoreShards           bool              `json:"HasMoreShards"`
	RetentionPeriodHours    int               `json:"RetentionPeriodHours"`
	StreamCreationTimestamp float64           `json:"StreamCreationTimestamp"`
	EnhancedMonitoring      []any             `json:"EnhancedMonitoring"`
}

type DescribeStreamResponse struct {
	StreamDescription StreamDescription `json:"StreamDescription"`
}

type DescribeStreamSummaryRequest struct {
	StreamName string `json:"StreamName,omitempty"`
	StreamARN  string `json:"StreamARN,omitempty"`
}

type StreamDescriptionSummary struct {
	StreamName              string            `json:"StreamName"`
	StreamARN               string            `json:"StreamARN"`
	StreamStatus            string            `json:"StreamStatus"`
	StreamModeDetails       StreamModeDetails `json:"StreamModeDetails"`
	RetentionPeriodHours    int               `json:"RetentionPeriodHours"`
	StreamCreationTimestamp float64           `json:"StreamCreationTimestamp"`
	OpenShardCount          int               `json:"OpenShardCount"`
	EnhancedMonitoring      []any             `json:"EnhancedMonitoring"`
}

type DescribeStreamSummaryResponse struct {
	StreamDescriptionSummary StreamDescriptionSummary `json:"StreamDescriptionSummary"`
}

type ListStreamsRequest struct {
	Limit                    int    `json:"Limit,omitempty"`
	ExclusiveStartStreamName string `json:"ExclusiveStartStreamName,omitempty"`
	NextToken                string `json:"NextToken,omitempty"`
}

type ListStreamsResponse struct {
	StreamNames    []string `json:"StreamNames"`
	HasMoreStreams bool     `json:"HasMoreStreams"`
	NextToken      string   `json:"NextToken,omitempty"`
}

type PutRecordRequest struct {
	StreamName                string `json:"StreamName,omitempty"`
	StreamARN                 string `json:"StreamARN,omitempty"`
	Data                      string `json:"Data"`
	PartitionKey              string `json:"PartitionKey"`
	ExplicitHashKey           string `json:"ExplicitHashKey,omitempty"`
	SequenceNumberForOrdering string `json:"SequenceNumberForOrdering,omitempty"`
}

type PutRecordResponse struct {
	ShardID        string `json:"ShardId"`
	SequenceNumber string `json:"SequenceNumber"`
	EncryptionType string `json:"EncryptionType"`
}

type PutRecordsRequestEntry struct {
	Data            string `json:"Data"`
	PartitionKey    string `json:"PartitionKey"`
	ExplicitHashKey string `json:"ExplicitHashKey,omitempty"`
}

type PutRecordsRequest struct {
	StreamName string                   `json:"StreamName,omitempty"`
	StreamARN  string                   `json:"StreamARN,omitempty"`
	Records    []PutRecordsRequestEntry `json:"Records"`
}

type PutRecordsResultEntry struct {
	ShardID        string `json:"ShardId"`
	SequenceNumber string `json:"SequenceNumber"`
}

type PutRecordsResponse struct {
	FailedRecordCount int                     `json:"FailedRecordCount"`
	Records           []PutRecordsResultEntry `json:"Records"`
	EncryptionType    string                  `json:"EncryptionType"`
}

type GetShardIteratorRequest struct {
	StreamName             string  `json:"StreamName,omitempty"`
	StreamARN              string  `json:"StreamARN,omitempty"`
	ShardID                string  `json:"ShardId"`
	ShardIteratorType      string  `json:"ShardIteratorType"`
	StartingSequenceNumber string  `json:"StartingSequenceNumber,omitempty"`
	Timestamp              float64 `json:"Timestamp,omitempty"`
}

type GetShardIteratorResponse struct {
	ShardIterator string `json:"ShardIterator"`
}

type GetRecordsRequest struct {
	ShardIterator string `json:"ShardIterator"`
	Limit         int    `json:"Limit,omitempty"`
	StreamARN     string `json:"StreamARN,omitempty"`
}

type Record struct {
	SequenceNumber              string  `json:"SequenceNumber"`
	ApproximateArrivalTimestamp float64 `json:"ApproximateArrivalTimestamp"`
	Data                        string  `json:"Data"`
	PartitionKey                string  `json:"PartitionKey"`
	EncryptionType              string  `json:"EncryptionType"`
}

type GetRecordsResponse struct {
	Records            []Record `json:"Records"`
	NextShardIterator  string   `json:"NextShardIterator,omitempty"`
	MillisBehindLatest int64    `json:"MillisBehindLatest"`
}

type ListShardsRequest struct {
	StreamName string `json:"StreamName,omitempty"`
	StreamARN  string `json:"StreamARN,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
	MaxResults int    `json:"MaxResults,omitempty"`
}

type ListShardsResponse struct {
	Shards    []Shard `json:"Shards"`
	NextToken string  `json:"NextToken,omitempty"`
}

type AddTagsToStreamRequest struct {
	StreamName string            `json:"StreamName,omitempty"`
	StreamARN  string            `json:"StreamARN,omitempty"`
	Tags       map[string]string `json:"Tags"`
}

type RemoveTagsFromStreamRequest struct {
	StreamName string   `json:"StreamName,omitempty"`
	StreamARN  string   `json:"StreamARN,omitempty"`
	TagKeys    []string `json:"TagKeys"`
}

type ListTagsForStreamRequest struct {
	StreamName           string `json:"StreamName,omitempty"`
	StreamARN            string `json:"StreamARN,omitempty"`
	Limit                int    `json:"Limit,omitempty"`
	ExclusiveStartTagKey string `json:"ExclusiveStartTagKey,omitempty"`
}

type ListTagsForStreamResponse struct {
	Tags        []Tag `json:"Tags"`
	HasMoreTags bool  `json:"HasMoreTags"`
}

type IncreaseStreamRetentionPeriodRequest struct {
	StreamName           string `json:"StreamName,omitempty"`
	StreamARN            string `json:"StreamARN,omitempty"`
	RetentionPeriodHours int    `json:"RetentionPeriodHours"`
}

type DecreaseStreamRetentionPeriodRequest struct {
	StreamName           string `json:"StreamName,omitempty"`
	StreamARN            string `json:"StreamARN,omitempty"`
	RetentionPeriodHours int    `json:"RetentionPeriodHours"`
}
