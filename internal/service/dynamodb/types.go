package dynamodb

type KeySchemaElement struct {
	AttributeName string `json:"AttributeName"`
	KeyType       string `json:"KeyType"` // HASH or RANGE
}

type AttributeDefinition struct {
	AttributeName string `json:"AttributeName"`
	AttributeType string `json:"AttributeType"` // S, N or B
}

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type ProvisionedThroughput struct {
	ReadCapacityUnits  int64 `json:"ReadCapacityUnits"`
	WriteCapacityUnits int64 `json:"WriteCapacityUnits"`
}

type TableDescription struct {
	TableName            string                `json:"TableName"`
	TableStatus          string                `json:"TableStatus"`
	TableArn             string                `json:"TableArn"`
	KeySchema            []KeySchemaElement    `json:"KeySchema"`
	AttributeDefinitions []AttributeDefinition `json:"AttributeDefinitions"`
	ItemCount            int                   `json:"ItemCount"`
	CreationDateTime     float64               `json:"CreationDateTime"`
}

type CreateTableRequest struct {
	TableName             string                 `json:"TableName"`
	KeySchema             []KeySchemaElement     `json:"KeySchema"`
	AttributeDefinitions  []AttributeDefinition  `json:"AttributeDefinitions"`
	BillingMode           string                 `json:"BillingMode,omitempty"`
	ProvisionedThroughput *ProvisionedThroughput `json:"ProvisionedThroughput,omitempty"`
	Tags                  []Tag                  `json:"Tags,omitempty"`
}

type CreateTableResponse struct {
	TableDescription TableDescription `json:"TableDescription"`
}

type DeleteTableRequest struct {
	TableName string `json:"TableName"`
}

type DeleteTableResponse struct {
	TableDescription TableDescription `json:"TableDescription"`
}

type DescribeTableRequest struct {
	TableName string `json:"TableName"`
}

type DescribeTableResponse struct {
	Table TableDescription `json:"Table"`
}

type ListTablesRequest struct {
	ExclusiveStartTableName string `json:"ExclusiveStartTableName,omitempty"`
	Limit                   *int   `json:"Limit,omitempty"`
}

type ListTablesResponse struct {
	TableNames             []string `json:"TableNames"`
	LastEvaluatedTableName string   `json:"LastEvaluatedTableName,omitempty"`
}

type PutItemRequest struct {
	TableName                 string                    `json:"TableName"`
	Item                      Item                      `json:"Item"`
	ReturnValues              string                    `json:"ReturnValues,omitempty"`
	ConditionExpression       string                    `json:"ConditionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string         `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues,omitempty"`
}

type PutItemResponse struct {
	Attributes Item `json:"Attributes,omitempty"`
}

type GetItemRequest struct {
	TableName                string            `json:"TableName"`
	Key                      Item              `json:"Key"`
	ProjectionExpression     string            `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames map[string]string `json:"ExpressionAttributeNames,omitempty"`
	ConsistentRead           bool              `json:"ConsistentRead,omitempty"`
}

type GetItemResponse struct {
	Item Item `json:"Item,omitempty"`
}

type DeleteItemRequest struct {
	TableName                 string                    `json:"TableName"`
	Key                       Item                      `json:"Key"`
	ReturnValues              string                    `json:"ReturnValues,omitempty"`
	ConditionExpression       string                    `json:"ConditionExpression,omitempty"`
	ExpressionAttributeNames  map[string]string         `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues,omitempty"`
}

type DeleteItemResponse struct {
	Attributes Item `json:"Attributes,omitempty"`
}

type UpdateItemRequest struct {
	TableName                 string                    `json:"TableName"`
	Key                       Item                      `json:"Key"`
	UpdateExpression          string                    `json:"UpdateExpression,omitempty"`
	ConditionExpression       string                    `json:"ConditionExpression,omitempty"`
	ReturnValues              string                    `json:"ReturnValues,omitempty"`
	ExpressionAttributeNames  map[string]string         `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues,omitempty"`
}

type UpdateItemResponse struct {
	Attributes Item `json:"Attributes,omitempty"`
}

type QueryRequest struct {
	TableName                 string                    `json:"TableName"`
	KeyConditionExpression    string                    `json:"KeyConditionExpression"`
	FilterExpression          string                    `json:"FilterExpression,omitempty"`
	ProjectionExpression      string                    `json:"ProjectionExpression,omitempty"`
	Select                    string                    `json:"Select,omitempty"`
	ScanIndexForward          *bool                     `json:"ScanIndexForward,omitempty"`
	Limit                     *int                      `json:"Limit,omitempty"`
	ExclusiveStartKey         Item                      `json:"ExclusiveStartKey,omitempty"`
	ExpressionAttributeNames  map[string]string         `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues,omitempty"`
}

type QueryResponse struct {
	Items            []Item `json:"Items"`
	Count            int    `json:"Count"`
	ScannedCount     int    `json:"ScannedCount"`
	LastEvaluatedKey Item   `json:"LastEvaluatedKey,omitempty"`
}

type ScanRequest struct {
	TableName                 string                    `json:"TableName"`
	FilterExpression          string                    `json:"FilterExpression,omitempty"`
	ProjectionExpression      string                    `json:"ProjectionExpression,omitempty"`
	Select                    string                    `json:"Select,omitempty"`
	Limit                     *int                      `json:"Limit,omitempty"`
	ExclusiveStartKey         Item                      `json:"ExclusiveStartKey,omitempty"`
	ExpressionAttributeNames  map[string]string         `json:"ExpressionAttributeNames,omitempty"`
	ExpressionAttributeValues map[string]AttributeValue `json:"ExpressionAttributeValues,omitempty"`
}

type ScanResponse = QueryResponse

type KeysAndAttributes struct {
	Keys                     []Item            `json:"Keys"`
	ProjectionExpression     string            `json:"ProjectionExpression,omitempty"`
	ExpressionAttributeNames map[string]string `json:"ExpressionAttributeNames,omitempty"`
}

type BatchGetItemRequest struct {
	RequestItems map[string]KeysAndAttributes `json:"RequestItems"`
}

type BatchGetItemResponse struct {
	Responses       map[string][]Item            `json:"Responses"`
	UnprocessedKeys map[string]KeysAndAttributes `json:"UnprocessedKeys"`
}

type PutRequest struct {
	Item Item `json:"Item"`
}

type DeleteRequest struct {
	Key Item `json:"Key"`
}

type WriteRequest struct {
	PutRequest    *PutRequest    `json:"PutRequest,omitempty"`
	DeleteRequest *DeleteRequest `json:"DeleteRequest,omitempty"`
}

type BatchWriteItemRequest struct {
	RequestItems map[string][]WriteRequest `json:"RequestItems"`
}

type BatchWriteItemResponse struct {
	UnprocessedItems map[string][]WriteRequest `json:"UnprocessedItems"`
}

type TagResourceRequest struct {
	ResourceArn string `json:"ResourceArn"`
	Tags        []Tag  `json:"Tags"`
}

type UntagResourceRequest struct {
	ResourceArn string   `json:"ResourceArn"`
	TagKeys     []string `json:"TagKeys"`
}

type ListTagsOfResourceRequest struct {
	ResourceArn string `json:"ResourceArn"`
}

type ListTagsOfResourceResponse struct {
	Tags []Tag `json:"Tags"`
}
