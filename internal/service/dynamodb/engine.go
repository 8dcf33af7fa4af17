package dynamodb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
)

const defaultListTablesLimit = 100

// Registry is the whole-service state: every table under one mutex.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string
	tables  map[string]*Table
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, tables: map[string]*Table{}}
}

func (r *Registry) table(name string) (*Table, error) {
	t, ok := r.tables[name]
	if !ok {
		return nil, errResourceNotFound("Requested resource not found: Table: %s not found", name)
	}
	return t, nil
}

func (r *Registry) tableByARN(arn string) (*Table, error) {
	for _, t := range r.tables {
		if t.ARN == arn {
			return t, nil
		}
	}
	return nil, errResourceNotFound("Requested resource not found: %s", arn)
}

func (r *Registry) CreateTable(req *CreateTableRequest) (*CreateTableResponse, error) {
	if req.TableName == "" {
		return nil, errValidation("TableName must not be empty")
	}
	var hashKey, rangeKey string
	for _, ks := range req.KeySchema {
		switch ks.KeyType {
		case "HASH":
			hashKey = ks.AttributeName
		case "RANGE":
			rangeKey = ks.AttributeName
		default:
			return nil, errValidation("Invalid KeyType: %s", ks.KeyType)
		}
	}
	if hashKey == "" {
		return nil, errValidation("One or more parameter values were invalid: KeySchema must contain a HASH key")
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.tables[req.TableName]; exists {
		return nil, errResourceInUse("Table already exists: %s", req.TableName)
	}
	t := &Table{
		Name:                 req.TableName,
		ARN:                  awsutil.ARN("dynamodb", r.region, r.account, "table/"+req.TableName),
		HashKey:              hashKey,
		RangeKey:             rangeKey,
		KeySchema:            req.KeySchema,
		AttributeDefinitions: req.AttributeDefinitions,
		Created:              time.Now(),
		tags:                 map[string]string{},
	}
	for _, tag := range req.Tags {
		t.tags[tag.Key] = tag.Value
	}
	r.tables[req.TableName] = t
	logger.Info("table created", "table", req.TableName)
	return &CreateTableResponse{TableDescription: t.description("ACTIVE")}, nil
}

func (r *Registry) DeleteTable(req *DeleteTableRequest) (*DeleteTableResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	delete(r.tables, req.TableName)
	logger.Info("table deleted", "table", req.TableName)
	return &DeleteTableResponse{TableDescription: t.description("DELETING")}, nil
}

func (r *Registry) DescribeTable(req *DescribeTableRequest) (*DescribeTableResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	return &DescribeTableResponse{Table: t.description("ACTIVE")}, nil
}

func (r *Registry) ListTables(req *ListTablesRequest) (*ListTablesResponse, error) {
	limit := defaultListTablesLimit
	if req.Limit != nil {
		if *req.Limit < 1 || *req.Limit > 100 {
			return nil, errValidation("Limit must be an integer from 1 to 100")
		}
		limit = *req.Limit
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	var names []string
	for name := range r.tables {
		if name > req.ExclusiveStartTableName {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	resp := &ListTablesResponse{TableNames: []string{}}
	if len(names) > limit {
		names = names[:limit]
		resp.LastEvaluatedTableName = names[len(names)-1]
	}
	resp.TableNames = names
	if resp.TableNames == nil {
		resp.TableNames = []string{}
	}
	return resp, nil
}

func exprCtx(names map[string]string, values map[string]AttributeValue) *exprContext {
	return &exprContext{names: names, values: values}
}

// checkCondition evaluates an optional ConditionExpression against the
// current item (which may be nil for a missing row).
func checkCondition(expr string, current Item, ctx *exprContext) error {
	if expr == "" {
		return nil
	}
	if current == nil {
		current = Item{}
	}
	ok, err := evalCondition(expr, current, ctx)
	if err != nil {
		return err
	}
	if !ok {
		return errConditionalCheckFailed()
	}
	return nil
}

func (r *Registry) PutItem(req *PutItemRequest) (*PutItemResponse, error) {
	if len(req.Item) == 0 {
		return nil, errValidation("The request must contain the parameter Item")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	ctx := exprCtx(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if req.ConditionExpression != "" {
		key, err := t.keyOf(req.Item)
		if err != nil {
			return nil, err
		}
		current, _ := t.getItem(key)
		if err := checkCondition(req.ConditionExpression, current, ctx); err != nil {
			return nil, err
		}
	}
	old, err := t.putItem(req.Item)
	if err != nil {
		return nil, err
	}
	resp := &PutItemResponse{}
	if strings.EqualFold(req.ReturnValues, "ALL_OLD") {
		resp.Attributes = old
	}
	return resp, nil
}

func (r *Registry) GetItem(req *GetItemRequest) (*GetItemResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	item, err := t.getItem(req.Key)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return &GetItemResponse{}, nil
	}
	projected, err := applyProjection(item, req.ProjectionExpression,
		exprCtx(req.ExpressionAttributeNames, nil))
	if err != nil {
		return nil, err
	}
	return &GetItemResponse{Item: projected}, nil
}

func (r *Registry) DeleteItem(req *DeleteItemRequest) (*DeleteItemResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	ctx := exprCtx(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	if req.ConditionExpression != "" {
		current, err := t.getItem(req.Key)
		if err != nil {
			return nil, err
		}
		if err := checkCondition(req.ConditionExpression, current, ctx); err != nil {
			return nil, err
		}
	}
	old, err := t.deleteItem(req.Key)
	if err != nil {
		return nil, err
	}
	resp := &DeleteItemResponse{}
	if strings.EqualFold(req.ReturnValues, "ALL_OLD") {
		resp.Attributes = old
	}
	return resp, nil
}

// UpdateItem applies an update expression, synthesizing a key-only item
// when the row does not exist yet.
func (r *Registry) UpdateItem(req *UpdateItemRequest) (*UpdateItemResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	ctx := exprCtx(req.ExpressionAttributeNames, req.ExpressionAttributeValues)

	current, err := t.getItem(req.Key)
	if err != nil {
		return nil, err
	}
	if err := checkCondition(req.ConditionExpression, current, ctx); err != nil {
		return nil, err
	}

	old := copyItem(current)
	updated := copyItem(current)
	if updated == nil {
		updated = copyItem(req.Key)
	}
	if req.UpdateExpression != "" {
		if err := applyUpdate(req.UpdateExpression, updated, ctx); err != nil {
			return nil, err
		}
	}
	if _, err := t.putItem(updated); err != nil {
		return nil, err
	}

	resp := &UpdateItemResponse{}
	switch strings.ToUpper(req.ReturnValues) {
	case "ALL_OLD", "UPDATED_OLD":
		resp.Attributes = old
	case "ALL_NEW", "UPDATED_NEW":
		resp.Attributes = updated
	}
	return resp, nil
}

func (r *Registry) Query(req *QueryRequest) (*QueryResponse, error) {
	if req.KeyConditionExpression == "" {
		return nil, errValidation("The request must contain the parameter KeyConditionExpression")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	ctx := exprCtx(req.ExpressionAttributeNames, req.ExpressionAttributeValues)
	conditions, err := parseKeyConditions(req.KeyConditionExpression, ctx)
	if err != nil {
		return nil, err
	}
	forward := true
	if req.ScanIndexForward != nil {
		forward = *req.ScanIndexForward
	}
	limit := 0
	if req.Limit != nil {
		if *req.Limit < 1 {
			return nil, errValidation("Limit must be a positive integer")
		}
		limit = *req.Limit
	}
	return t.runQuery(queryParams{
		keyConditions:     conditions,
		filterExpression:  req.FilterExpression,
		projection:        req.ProjectionExpression,
		selectCount:       strings.EqualFold(req.Select, "COUNT"),
		scanIndexForward:  forward,
		limit:             limit,
		exclusiveStartKey: req.ExclusiveStartKey,
		ctx:               ctx,
	})
}

func (r *Registry) Scan(req *ScanRequest) (*QueryResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.table(req.TableName)
	if err != nil {
		return nil, err
	}
	limit := 0
	if req.Limit != nil {
		if *req.Limit < 1 {
			return nil, errValidation("Limit must be a positive integer")
		}
		limit = *req.Limit
	}
	return t.runQuery(queryParams{
		filterExpression:  req.FilterExpression,
		projection:        req.ProjectionExpression,
		selectCount:       strings.EqualFold(req.Select, "COUNT"),
		limit:             limit,
		exclusiveStartKey: req.ExclusiveStartKey,
		ctx:               exprCtx(req.ExpressionAttributeNames, req.ExpressionAttributeValues),
	})
}

func (r *Registry) BatchGetItem(req *BatchGetItemRequest) (*BatchGetItemResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &BatchGetItemResponse{
		Responses:       map[string][]Item{},
		UnprocessedKeys: map[string]KeysAndAttributes{},
	}
	for tableName, ka := range req.RequestItems {
		t, err := r.table(tableName)
		if err != nil {
			return nil, err
		}
		ctx := exprCtx(ka.ExpressionAttributeNames, nil)
		items := []Item{}
		for _, key := range ka.Keys {
			item, err := t.getItem(key)
			if err != nil {
				return nil, err
			}
			if item == nil {
				continue
			}
			projected, err := applyProjection(item, ka.ProjectionExpression, ctx)
			if err != nil {
				return nil, err
			}
			items = append(items, projected)
		}
		resp.Responses[tableName] = items
	}
	return resp, nil
}

func (r *Registry) BatchWriteItem(req *BatchWriteItemRequest) (*BatchWriteItemResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for tableName, writes := range req.RequestItems {
		t, err := r.table(tableName)
		if err != nil {
			return nil, err
		}
		for _, w := range writes {
			switch {
			case w.PutRequest != nil:
				if _, err := t.putItem(w.PutRequest.Item); err != nil {
					return nil, err
				}
			case w.DeleteRequest != nil:
				if _, err := t.deleteItem(w.DeleteRequest.Key); err != nil {
					return nil, err
				}
			default:
				return nil, errValidation("Supplied AttributeValue has more than one datatypes set")
			}
		}
	}
	return &BatchWriteItemResponse{UnprocessedItems: map[string][]WriteRequest{}}, nil
}

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tableByARN(req.ResourceArn)
	if err != nil {
		return err
	}
	for _, tag := range req.Tags {
		t.tags[tag.Key] = tag.Value
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tableByARN(req.ResourceArn)
	if err != nil {
		return err
	}
	for _, key := range req.TagKeys {
		delete(t.tags, key)
	}
	return nil
}

func (r *Registry) ListTagsOfResource(req *ListTagsOfResourceRequest) (*ListTagsOfResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.tableByARN(req.ResourceArn)
	if err != nil {
		return nil, err
	}
	resp := &ListTagsOfResourceResponse{Tags: []Tag{}}
	var keys []string
	for k := range t.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		resp.Tags = append(resp.Tags, Tag{Key: k, Value: t.tags[k]})
	}
	return resp, nil
}
