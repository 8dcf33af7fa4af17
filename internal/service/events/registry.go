package events

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

const defaultBus = "default"

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errAlreadyExists(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceAlreadyExistsException", http.StatusBadRequest, format, args...)
}

func errValidation(format string, args ...any) *wire.APIError {
	return wire.NewError("ValidationException", http.StatusBadRequest, format, args...)
}

type storedEvent struct {
	id         string
	source     string
	detailType string
	detail     string
	timestamp  int64
}

type rule struct {
	name     string
	arn      string
	busName  string
	pattern  string
	schedule string
	state    string
	desc     string
	targets  map[string]Target
	tags     map[string]string
}

type bus struct {
	name   string
	arn    string
	tags   map[string]string
	rules  map[string]*rule
	events []storedEvent
}

// Registry holds event buses, their rules and targets. PutEvents records
// entries on the bus; nothing evaluates patterns or fires targets, the
// control plane round trip is what SDK setup code needs.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	buses map[string]*bus
}

func NewRegistry(region, account string) *Registry {
	r := &Registry{region: region, account: account, buses: map[string]*bus{}}
	r.buses[defaultBus] = &bus{
		name:  defaultBus,
		arn:   awsutil.ARN("events", region, account, "event-bus/"+defaultBus),
		tags:  map[string]string{},
		rules: map[string]*rule{},
	}
	return r
}

func (r *Registry) bus(name string) (*bus, error) {
	if name == "" {
		name = defaultBus
	}
	if strings.HasPrefix(name, "arn:") {
		for _, b := range r.buses {
			if b.arn == name {
				return b, nil
			}
		}
		name = defaultBus
	}
	b, ok := r.buses[name]
	if !ok {
		return nil, errNotFound("Event bus %s not found", name)
	}
	return b, nil
}

func (b *bus) rule(name string) (*rule, error) {
	ru, ok := b.rules[name]
	if !ok {
		return nil, errNotFound("Rule %s not found", name)
	}
	return ru, nil
}

func tagMap(tags []Tag) map[string]string {
	out := map[string]string{}
	for _, t := range tags {
		out[t.Key] = t.Value
	}
	return out
}

func (r *Registry) CreateEventBus(req *CreateEventBusRequest) (*CreateEventBusResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.buses[req.Name]; ok {
		return nil, errAlreadyExists("Event bus %s already exists", req.Name)
	}
	b := &bus{
		name:  req.Name,
		arn:   awsutil.ARN("events", r.region, r.account, "event-bus/"+req.Name),
		tags:  tagMap(req.Tags),
		rules: map[string]*rule{},
	}
	r.buses[req.Name] = b
	return &CreateEventBusResponse{EventBusARN: b.arn}, nil
}

func (r *Registry) DeleteEventBus(req *DeleteEventBusRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if req.Name == defaultBus {
		return errValidation("Cannot delete the default event bus")
	}
	if _, ok := r.buses[req.Name]; !ok {
		return errNotFound("Event bus %s not found", req.Name)
	}
	delete(r.buses, req.Name)
	return nil
}

func (r *Registry) DescribeEventBus(req *DescribeEventBusRequest) (*DescribeEventBusResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.Name)
	if err != nil {
		return nil, err
	}
	return &DescribeEventBusResponse{Name: b.name, ARN: b.arn}, nil
}

func (r *Registry) ListEventBuses(req *ListEventBusesRequest) (*ListEventBusesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.buses))
	for name := range r.buses {
		if req.NamePrefix != "" && !strings.HasPrefix(name, req.NamePrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	resp := &ListEventBusesResponse{EventBuses: []EventBus{}}
	for _, name := range names {
		if len(resp.EventBuses) == limit {
			resp.NextToken = "next"
			break
		}
		b := r.buses[name]
		resp.EventBuses = append(resp.EventBuses, EventBus{Name: b.name, ARN: b.arn})
	}
	return resp, nil
}

// PutEvents is per-entry best effort: an unknown bus fails only that entry.
func (r *Registry) PutEvents(req *PutEventsRequest) (*PutEventsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &PutEventsResponse{Entries: make([]PutEventsResultEntry, 0, len(req.Entries))}
	for _, entry := range req.Entries {
		busName := entry.EventBusName
		if busName == "" {
			busName = defaultBus
		}
		b, ok := r.buses[busName]
		if !ok {
			resp.FailedEntryCount++
			resp.Entries = append(resp.Entries, PutEventsResultEntry{
				ErrorCode:    "ResourceNotFoundException",
				ErrorMessage: "Event bus " + busName + " not found",
			})
			continue
		}
		id := awsutil.NewID()
		b.events = append(b.events, storedEvent{
			id:         id,
			source:     entry.Source,
			detailType: entry.DetailType,
			detail:     entry.Detail,
			timestamp:  awsutil.NowMillis(),
		})
		resp.Entries = append(resp.Entries, PutEventsResultEntry{EventID: id})
	}
	return resp, nil
}

func (r *Registry) PutRule(req *PutRuleRequest) (*PutRuleResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	state := req.State
	if state == "" {
		state = "ENABLED"
	}
	existing, ok := b.rules[req.Name]
	if !ok {
		existing = &rule{
			name:    req.Name,
			arn:     awsutil.ARN("events", r.region, r.account, "rule/"+b.name+"/"+req.Name),
			busName: b.name,
			targets: map[string]Target{},
			tags:    map[string]string{},
		}
		b.rules[req.Name] = existing
	}
	existing.pattern = req.EventPattern
	existing.schedule = req.ScheduleExpression
	existing.state = state
	existing.desc = req.Description
	for k, v := range tagMap(req.Tags) {
		existing.tags[k] = v
	}
	return &PutRuleResponse{RuleARN: existing.arn}, nil
}

func (r *Registry) DeleteRule(req *DeleteRuleRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return err
	}
	if _, err := b.rule(req.Name); err != nil {
		return err
	}
	delete(b.rules, req.Name)
	return nil
}

func (r *Registry) DescribeRule(req *DescribeRuleRequest) (*DescribeRuleResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	ru, err := b.rule(req.Name)
	if err != nil {
		return nil, err
	}
	return &DescribeRuleResponse{
		Name:               ru.name,
		ARN:                ru.arn,
		EventPattern:       ru.pattern,
		ScheduleExpression: ru.schedule,
		State:              ru.state,
		Description:        ru.desc,
		EventBusName:       ru.busName,
	}, nil
}

func (r *Registry) ListRules(req *ListRulesRequest) (*ListRulesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(b.rules))
	for name := range b.rules {
		if req.NamePrefix != "" && !strings.HasPrefix(name, req.NamePrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	resp := &ListRulesResponse{Rules: []Rule{}}
	for _, name := range names {
		if len(resp.Rules) == limit {
			resp.NextToken = "next"
			break
		}
		ru := b.rules[name]
		resp.Rules = append(resp.Rules, Rule{
			Name: ru.name, ARN: ru.arn, State: ru.state, EventBusName: ru.busName,
		})
	}
	return resp, nil
}

func (r *Registry) PutTargets(req *PutTargetsRequest) (*PutTargetsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	ru, err := b.rule(req.Rule)
	if err != nil {
		return nil, err
	}
	for _, target := range req.Targets {
		ru.targets[target.ID] = target
	}
	return &PutTargetsResponse{FailedEntries: []FailedTargetEntry{}}, nil
}

func (r *Registry) RemoveTargets(req *RemoveTargetsRequest) (*RemoveTargetsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	ru, err := b.rule(req.Rule)
	if err != nil {
		return nil, err
	}
	for _, id := range req.IDs {
		delete(ru.targets, id)
	}
	return &RemoveTargetsResponse{FailedEntries: []FailedTargetEntry{}}, nil
}

func (r *Registry) ListTargetsByRule(req *ListTargetsByRuleRequest) (*ListTargetsByRuleResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, err := r.bus(req.EventBusName)
	if err != nil {
		return nil, err
	}
	ru, err := b.rule(req.Rule)
	if err != nil {
		return nil, err
	}
	resp := &ListTargetsByRuleResponse{Targets: []Target{}}
	for _, t := range ru.targets {
		resp.Targets = append(resp.Targets, t)
	}
	sort.Slice(resp.Targets, func(i, j int) bool { return resp.Targets[i].ID < resp.Targets[j].ID })
	return resp, nil
}

// resourceTags finds the tag map of a bus or a rule addressed by ARN.
func (r *Registry) resourceTags(arn string) (map[string]string, error) {
	for _, b := range r.buses {
		if b.arn == arn {
			return b.tags, nil
		}
		for _, ru := range b.rules {
			if ru.arn == arn {
				return ru.tags, nil
			}
		}
	}
	return nil, errNotFound("Resource %s not found", arn)
}

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags, err := r.resourceTags(req.ResourceARN)
	if err != nil {
		return err
	}
	for _, t := range req.Tags {
		tags[t.Key] = t.Value
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags, err := r.resourceTags(req.ResourceARN)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForResource(req *ListTagsForResourceRequest) (*ListTagsForResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	tags, err := r.resourceTags(req.ResourceARN)
	if err != nil {
		return nil, err
	}
	resp := &ListTagsForResourceResponse{Tags: []Tag{}}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		resp.Tags = append(resp.Tags, Tag{Key: k, Value: tags[k]})
	}
	return resp, nil
}
