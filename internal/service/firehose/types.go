package firehose

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value,omitempty"`
}

type RecordEntry struct {
	Data string `json:"Data"`
}

type CreateDeliveryStreamRequest struct {
	DeliveryStreamName string `json:"DeliveryStreamName"`
	DeliveryStreamType string `json:"DeliveryStreamType,omitempty"`
	Tags               []Tag  `json:"Tags,omitempty"`
}

type CreateDeliveryStreamResponse struct {
	DeliveryStreamARN string `json:"DeliveryStreamARN"`
}

type DeleteDeliveryStreamRequest struct {
	DeliveryStreamName string `json:"DeliveryStreamName"`
	AllowForceDelete   bool   `json:"AllowForceDelete,omitempty"`
}

type DescribeDeliveryStreamRequest struct {
	DeliveryStreamName          string `json:"DeliveryStreamName"`
	Limit                       int    `json:"Limit,omitempty"`
	ExclusiveStartDestinationID string `json:"ExclusiveStartDestinationId,omitempty"`
}

type DestinationDescription struct {
	DestinationID string `json:"DestinationId"`
}

type EncryptionConfig struct {
	Status string `json:"Status"`
}

type DeliveryStreamDescription struct {
	DeliveryStreamName                    string                   `json:"DeliveryStreamName"`
	DeliveryStreamARN                     string                   `json:"DeliveryStreamARN"`
	DeliveryStreamStatus                  string                   `json:"DeliveryStreamStatus"`
	DeliveryStreamType                    string                   `json:"DeliveryStreamType"`
	VersionID                             string                   `json:"VersionId"`
	CreateTimestamp                       float64                  `json:"CreateTimestamp"`
	LastUpdateTimestamp                   float64                  `json:"LastUpdateTimestamp"`
	Destinations                          []DestinationDescription `json:"Destinations"`
	HasMoreDestinations                   bool                     `json:"HasMoreDestinations"`
	DeliveryStreamEncryptionConfiguration EncryptionConfig         `json:"DeliveryStreamEncryptionConfiguration"`
}

type DescribeDeliveryStreamResponse struct {
	DeliveryStreamDescription DeliveryStreamDescription `json:"DeliveryStreamDescription"`
}

type ListDeliveryStreamsRequest struct {
	Limit                             int    `json:"Limit,omitempty"`
	DeliveryStreamType                string `json:"DeliveryStreamType,omitempty"`
	ExclusiveStartDeliveryStreamName  string `json:"ExclusiveStartDeliveryStreamName,omitempty"`
}

type ListDeliveryStreamsResponse struct {
	DeliveryStreamNames    []string `json:"DeliveryStreamNames"`
	HasMoreDeliveryStreams bool     `json:"HasMoreDeliveryStreams"`
}

type UpdateDestinationRequest struct {
	DeliveryStreamName             string `json:"DeliveryStreamName"`
	CurrentDeliveryStreamVersionID string `json:"CurrentDeliveryStreamVersionId"`
	DestinationID                  string `json:"DestinationId"`
}

type PutRecordRequest struct {
	DeliveryStreamName string      `json:"DeliveryStreamName"`
	Record             RecordEntry `json:"Record"`
}

type PutRecordResponse struct {
	RecordID  string `json:"RecordId"`
	Encrypted bool   `json:"Encrypted"`
}

type PutRecordBatchRequest struct {
	DeliveryStreamName string        `json:"DeliveryStreamName"`
	Records            []RecordEntry `json:"Records"`
}

type PutRecordBatchResponseEntry struct {
	RecordID string `json:"RecordId"`
}

type PutRecordBatchResponse struct {
	FailedPutCount   int                           `json:"FailedPutCount"`
	Encrypted        bool                          `json:"Encrypted"`
	RequestResponses []PutRecordBatchResponseEntry `json:"RequestResponses"`
}

type TagDeliveryStreamRequest struct {
	DeliveryStreamName string `json:"DeliveryStreamName"`
	Tags               []Tag  `json:"Tags"`
}

type UntagDeliveryStreamRequest struct {
	DeliveryStreamName string   `json:"DeliveryStreamName"`
	TagKeys            []string `json:"TagKeys"`
}

type ListTagsForDeliveryStreamRequest struct {
	DeliveryStreamName   string `json:"DeliveryStreamName"`
	ExclusiveStartTagKey string `json:"ExclusiveStartTagKey,omitempty"`
	Limit                int    `json:"Limit,omitempty"`
}

type ListTagsForDeliveryStreamResponse struct {
	Tags        []Tag `json:"Tags"`
	HasMoreTags bool  `json:"HasMoreTags"`
}
