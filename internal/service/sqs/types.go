package sqs

// Request and response shapes for the SQS JSON protocol. Field names match
// the wire exactly; renames are purely cosmetic and carry no semantics.

// MessageAttributeValue is a user-supplied message attribute.
type MessageAttributeValue struct {
	DataType    string `json:"DataType"`
	StringValue string `json:"StringValue,omitempty"`
	BinaryValue string `json:"BinaryValue,omitempty"` // base64 on the wire
}

type CreateQueueRequest struct {
	QueueName  string            `json:"QueueName"`
	Attributes map[string]string `json:"Attributes,omitempty"`
	Tags       map[string]string `json:"tags,omitempty"`
}

type CreateQueueResponse struct {
	QueueURL string `json:"QueueUrl"`
}

type DeleteQueueRequest struct {
	QueueURL string `json:"QueueUrl"`
}

type GetQueueURLRequest struct {
	QueueName string `json:"QueueName"`
}

type GetQueueURLResponse struct {
	QueueURL string `json:"QueueUrl"`
}

type ListQueuesRequest struct {
	QueueNamePrefix string `json:"QueueNamePrefix,omitempty"`
	MaxResults      *int   `json:"MaxResults,omitempty"`
	NextToken       string `json:"NextToken,omitempty"`
}

type ListQueuesResponse struct {
	QueueURLs []string `json:"QueueUrls,omitempty"`
	NextToken string   `json:"NextToken,omitempty"`
}

type GetQueueAttributesRequest struct {
	QueueURL       string   `json:"QueueUrl"`
	AttributeNames []string `json:"AttributeNames,omitempty"`
}

type GetQueueAttributesResponse struct {
	Attributes map[string]string `json:"Attributes"`
}

type SetQueueAttributesRequest struct {
	QueueURL   string            `json:"QueueUrl"`
	Attributes map[string]string `json:"Attributes"`
}

type PurgeQueueRequest struct {
	QueueURL string `json:"QueueUrl"`
}

type SendMessageRequest struct {
	QueueURL                string                           `json:"QueueUrl"`
	MessageBody             string                           `json:"MessageBody"`
	DelaySeconds            *int                             `json:"DelaySeconds,omitempty"`
	MessageAttributes       map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageSystemAttributes map[string]MessageAttributeValue `json:"MessageSystemAttributes,omitempty"`
	MessageDeduplicationID  string                           `json:"MessageDeduplicationId,omitempty"`
	MessageGroupID          string                           `json:"MessageGroupId,omitempty"`
}

type SendMessageResponse struct {
	MessageID                    string `json:"MessageId"`
	MD5OfMessageBody             string `json:"MD5OfMessageBody"`
	MD5OfMessageAttributes       string `json:"MD5OfMessageAttributes,omitempty"`
	MD5OfMessageSystemAttributes string `json:"MD5OfMessageSystemAttributes,omitempty"`
	SequenceNumber               string `json:"SequenceNumber,omitempty"`
}

type SendMessageBatchEntry struct {
	ID                      string                           `json:"Id"`
	MessageBody             string                           `json:"MessageBody"`
	DelaySeconds            *int                             `json:"DelaySeconds,omitempty"`
	MessageAttributes       map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
	MessageSystemAttributes map[string]MessageAttributeValue `json:"MessageSystemAttributes,omitempty"`
	MessageDeduplicationID  string                           `json:"MessageDeduplicationId,omitempty"`
	MessageGroupID          string                           `json:"MessageGroupId,omitempty"`
}

type SendMessageBatchRequest struct {
	QueueURL string                  `json:"QueueUrl"`
	Entries  []SendMessageBatchEntry `json:"Entries"`
}

type SendMessageBatchResultEntry struct {
	ID                           string `json:"Id"`
	MessageID                    string `json:"MessageId"`
	MD5OfMessageBody             string `json:"MD5OfMessageBody"`
	MD5OfMessageAttributes       string `json:"MD5OfMessageAttributes,omitempty"`
	MD5OfMessageSystemAttributes string `json:"MD5OfMessageSystemAttributes,omitempty"`
	SequenceNumber               string `json:"SequenceNumber,omitempty"`
}

// BatchResultErrorEntry reports one failed batch entry as a sender fault.
type BatchResultErrorEntry struct {
	ID          string `json:"Id"`
	Code        string `json:"Code"`
	Message     string `json:"Message"`
	SenderFault bool   `json:"SenderFault"`
}

type SendMessageBatchResponse struct {
	Successful []SendMessageBatchResultEntry `json:"Successful"`
	Failed     []BatchResultErrorEntry       `json:"Failed"`
}

type ReceiveMessageRequest struct {
	QueueURL              string   `json:"QueueUrl"`
	MaxNumberOfMessages   *int     `json:"MaxNumberOfMessages,omitempty"`
	VisibilityTimeout     *int     `json:"VisibilityTimeout,omitempty"`
	WaitTimeSeconds       *int     `json:"WaitTimeSeconds,omitempty"`
	AttributeNames        []string `json:"AttributeNames,omitempty"`
	MessageAttributeNames []string `json:"MessageAttributeNames,omitempty"`
}

// ReceivedMessage is one delivered message with its per-delivery handle.
type ReceivedMessage struct {
	MessageID              string                           `json:"MessageId"`
	ReceiptHandle          string                           `json:"ReceiptHandle"`
	Body                   string                           `json:"Body"`
	MD5OfBody              string                           `json:"MD5OfBody"`
	MD5OfMessageAttributes string                           `json:"MD5OfMessageAttributes,omitempty"`
	Attributes             map[string]string                `json:"Attributes,omitempty"`
	MessageAttributes      map[string]MessageAttributeValue `json:"MessageAttributes,omitempty"`
}

type ReceiveMessageResponse struct {
	Messages []ReceivedMessage `json:"Messages,omitempty"`
}

type DeleteMessageRequest struct {
	QueueURL      string `json:"QueueUrl"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

type DeleteMessageBatchEntry struct {
	ID            string `json:"Id"`
	ReceiptHandle string `json:"ReceiptHandle"`
}

type DeleteMessageBatchRequest struct {
	QueueURL string                    `json:"QueueUrl"`
	Entries  []DeleteMessageBatchEntry `json:"Entries"`
}

type DeleteMessageBatchResultEntry struct {
	ID string `json:"Id"`
}

type DeleteMessageBatchResponse struct {
	Successful []DeleteMessageBatchResultEntry `json:"Successful"`
	Failed     []BatchResultErrorEntry         `json:"Failed"`
}

type ChangeMessageVisibilityRequest struct {
	QueueURL          string `json:"QueueUrl"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int    `json:"VisibilityTimeout"`
}

type ChangeMessageVisibilityBatchEntry struct {
	ID                string `json:"Id"`
	ReceiptHandle     string `json:"ReceiptHandle"`
	VisibilityTimeout int    `json:"VisibilityTimeout"`
}

type ChangeMessageVisibilityBatchRequest struct {
	QueueURL string                              `json:"QueueUrl"`
	Entries  []ChangeMessageVisibilityBatchEntry `json:"Entries"`
}

type ChangeMessageVisibilityBatchResultEntry struct {
	ID string `json:"Id"`
}

type ChangeMessageVisibilityBatchResponse struct {
	Successful []ChangeMessageVisibilityBatchResultEntry `json:"Successful"`
	Failed     []BatchResultErrorEntry                   `json:"Failed"`
}

type TagQueueRequest struct {
	QueueURL string            `json:"QueueUrl"`
	Tags     map[string]string `json:"Tags"`
}

type UntagQueueRequest struct {
	QueueURL string   `json:"QueueUrl"`
	TagKeys  []string `json:"TagKeys"`
}

type ListQueueTagsRequest struct {
	QueueURL string `json:"QueueUrl"`
}

type ListQueueTagsResponse struct {
	Tags map[string]string `json:"Tags,omitempty"`
}

type AddPermissionRequest struct {
	QueueURL      string   `json:"QueueUrl"`
	Label         string   `json:"Label"`
	AWSAccountIDs []string `json:"AWSAccountIds"`
	Actions       []string `json:"Actions"`
}

type RemovePermissionRequest struct {
	QueueURL string `json:"QueueUrl"`
	Label    string `json:"Label"`
}

type ListDeadLetterSourceQueuesRequest struct {
	QueueURL   string `json:"QueueUrl"`
	MaxResults *int   `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type ListDeadLetterSourceQueuesResponse struct {
	QueueURLs []string `json:"queueUrls"`
	NextToken string   `json:"NextToken,omitempty"`
}

type StartMessageMoveTaskRequest struct {
	SourceARN                    string `json:"SourceArn"`
	DestinationARN               string `json:"DestinationArn,omitempty"`
	MaxNumberOfMessagesPerSecond *int   `json:"MaxNumberOfMessagesPerSecond,omitempty"`
}

type StartMessageMoveTaskResponse struct {
	TaskHandle string `json:"TaskHandle"`
}

type CancelMessageMoveTaskRequest struct {
	TaskHandle string `json:"TaskHandle"`
}

type CancelMessageMoveTaskResponse struct {
	ApproximateNumberOfMessagesMoved int64 `json:"ApproximateNumberOfMessagesMoved"`
}

type ListMessageMoveTasksRequest struct {
	SourceARN  string `json:"SourceArn"`
	MaxResults *int   `json:"MaxResults,omitempty"`
}

type MessageMoveTaskResult struct {
	TaskHandle                        string `json:"TaskHandle,omitempty"`
	Status                            string `json:"Status"`
	SourceARN                         string `json:"SourceArn"`
	DestinationARN                    string `json:"DestinationArn,omitempty"`
	ApproximateNumberOfMessagesMoved  int64  `json:"ApproximateNumberOfMessagesMoved"`
	ApproximateNumberOfMessagesToMove *int64 `json:"ApproximateNumberOfMessagesToMove,omitempty"`
	MaxNumberOfMessagesPerSecond      *int   `json:"MaxNumberOfMessagesPerSecond,omitempty"`
	StartedTimestamp                  *int64 `json:"StartedTimestamp,omitempty"`
}

type ListMessageMoveTasksResponse struct {
	Results   []MessageMoveTaskResult `json:"Results"`
	NextToken string                  `json:"NextToken,omitempty"`
}
