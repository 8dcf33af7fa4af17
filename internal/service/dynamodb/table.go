package dynamodb

import (
	"sort"
	"time"
)

// Table is one stored table. Items keep insertion order; key lookups are a
// linear probe on the primary key, which is plenty at emulator scale.
type Table struct {
	Name                 string
	ARN                  string
	HashKey              string
	RangeKey             string
	KeySchema            []KeySchemaElement
	AttributeDefinitions []AttributeDefinition
	Created              time.Time
	items                []Item
	tags                 map[string]string
}

// keyOf extracts the primary key attributes from an item, failing when one
// is missing.
func (t *Table) keyOf(item Item) (Item, error) {
	key := Item{}
	for _, attr := range []string{t.HashKey, t.RangeKey} {
		if attr == "" {
			continue
		}
		v, ok := item[attr]
		if !ok {
			return nil, errValidation("One or more parameter values were invalid: Missing the key %s in the item", attr)
		}
		key[attr] = v
	}
	return key, nil
}

// probe finds the index of the item with the given primary key, or -1.
func (t *Table) probe(key Item) int {
	for i, item := range t.items {
		if !avEqual(item[t.HashKey], key[t.HashKey]) {
			continue
		}
		if t.RangeKey == "" || avEqual(item[t.RangeKey], key[t.RangeKey]) {
			return i
		}
	}
	return -1
}

// putItem inserts or replaces by primary key, returning the previous item.
func (t *Table) putItem(item Item) (Item, error) {
	key, err := t.keyOf(item)
	if err != nil {
		return nil, err
	}
	if idx := t.probe(key); idx >= 0 {
		old := t.items[idx]
		t.items[idx] = item
		return old, nil
	}
	t.items = append(t.items, item)
	return nil, nil
}

func (t *Table) getItem(key Item) (Item, error) {
	if _, err := t.keyOf(key); err != nil {
		return nil, err
	}
	if idx := t.probe(key); idx >= 0 {
		return t.items[idx], nil
	}
	return nil, nil
}

// deleteItem removes by primary key, returning the removed item.
func (t *Table) deleteItem(key Item) (Item, error) {
	if _, err := t.keyOf(key); err != nil {
		return nil, err
	}
	idx := t.probe(key)
	if idx < 0 {
		return nil, nil
	}
	old := t.items[idx]
	t.items = append(t.items[:idx], t.items[idx+1:]...)
	return old, nil
}

func (t *Table) description(status string) TableDescription {
	return TableDescription{
		TableName:            t.Name,
		TableStatus:          status,
		TableArn:             t.ARN,
		KeySchema:            t.KeySchema,
		AttributeDefinitions: t.AttributeDefinitions,
		ItemCount:            len(t.items),
		CreationDateTime:     float64(t.Created.UnixMilli()) / 1000,
	}
}

// queryParams are the shared inputs of the Query and Scan pipelines.
type queryParams struct {
	keyConditions     []keyCondition // nil for Scan
	filterExpression  string
	projection        string
	selectCount       bool
	scanIndexForward  bool
	limit             int
	exclusiveStartKey Item
	ctx               *exprContext
}

// runQuery executes the read pipeline: key-condition filter, range-key
// order, ScannedCount, filter expression, start-key cursor, limit, then
// COUNT or projection.
func (t *Table) runQuery(p queryParams) (*QueryResponse, error) {
	var selected []Item
	if p.keyConditions == nil {
		selected = append(selected, t.items...)
	} else {
		for _, item := range t.items {
			match := true
			for _, kc := range p.keyConditions {
				if !kc.matches(item) {
					match = false
					break
				}
			}
			if match {
				selected = append(selected, item)
			}
		}
		if t.RangeKey != "" {
			sort.SliceStable(selected, func(i, j int) bool {
				cmp := compareAV(selected[i][t.RangeKey], selected[j][t.RangeKey])
				if p.scanIndexForward {
					return cmp < 0
				}
				return cmp > 0
			})
		}
	}

	scannedCount := len(selected)
	if p.keyConditions == nil {
		scannedCount = len(t.items)
	}

	if p.filterExpression != "" {
		var filtered []Item
		for _, item := range selected {
			ok, err := evalCondition(p.filterExpression, item, p.ctx)
			if err != nil {
				return nil, err
			}
			if ok {
				filtered = append(filtered, item)
			}
		}
		selected = filtered
	}

	if len(p.exclusiveStartKey) > 0 {
		start := 0
		for i, item := range selected {
			if t.sameKey(item, p.exclusiveStartKey) {
				start = i + 1
				break
			}
		}
		selected = selected[start:]
	}

	var lastEvaluated Item
	if p.limit > 0 && len(selected) > p.limit {
		selected = selected[:p.limit]
		if len(selected) > 0 {
			last, err := t.keyOf(selected[len(selected)-1])
			if err == nil {
				lastEvaluated = last
			}
		}
	}

	resp := &QueryResponse{
		Count:            len(selected),
		ScannedCount:     scannedCount,
		LastEvaluatedKey: lastEvaluated,
		Items:            []Item{},
	}
	if p.selectCount {
		resp.Items = nil
		return resp, nil
	}
	for _, item := range selected {
		projected, err := applyProjection(item, p.projection, p.ctx)
		if err != nil {
			return nil, err
		}
		resp.Items = append(resp.Items, projected)
	}
	return resp, nil
}

func (t *Table) sameKey(item, key Item) bool {
	if !avEqual(item[t.HashKey], key[t.HashKey]) {
		return false
	}
	return t.RangeKey == "" || avEqual(item[t.RangeKey], key[t.RangeKey])
}
