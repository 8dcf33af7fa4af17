package logs

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

const defaultEventLimit = 10000

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errAlreadyExists(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceAlreadyExistsException", http.StatusBadRequest, format, args...)
}

type storedEvent struct {
	timestamp int64
	message   string
	ingested  int64
	id        string
}

type stream struct {
	name     string
	arn      string
	created  int64
	events   []storedEvent
	sequence uint64
}

type group struct {
	name      string
	arn       string
	created   int64
	retention *int
	tags      map[string]string
	streams   map[string]*stream
}

// Registry holds every log group of the emulated Logs service. Events are
// append-only per stream; retention is recorded but never enforced by a
// background reaper.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	groups map[string]*group
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, groups: map[string]*group{}}
}

func (r *Registry) group(name string) (*group, error) {
	g, ok := r.groups[name]
	if !ok {
		return nil, errNotFound("The specified log group does not exist: %s", name)
	}
	return g, nil
}

func (g *group) stream(name string) (*stream, error) {
	s, ok := g.streams[name]
	if !ok {
		return nil, errNotFound("The specified log stream does not exist: %s", name)
	}
	return s, nil
}

func (g *group) groupByARN(arn string) bool {
	return g.arn == arn || g.arn+":*" == arn
}

func (s *stream) storedBytes() int64 {
	var total int64
	for _, e := range s.events {
		total += int64(len(e.message))
	}
	return total
}

func (r *Registry) CreateLogGroup(req *CreateLogGroupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.groups[req.LogGroupName]; ok {
		return errAlreadyExists("The specified log group already exists: %s", req.LogGroupName)
	}
	g := &group{
		name:    req.LogGroupName,
		arn:     awsutil.ARN("logs", r.region, r.account, "log-group:"+req.LogGroupName),
		created: awsutil.NowMillis(),
		tags:    map[string]string{},
		streams: map[string]*stream{},
	}
	for k, v := range req.Tags {
		g.tags[k] = v
	}
	r.groups[req.LogGroupName] = g
	return nil
}

func (r *Registry) DeleteLogGroup(req *DeleteLogGroupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.group(req.LogGroupName); err != nil {
		return err
	}
	delete(r.groups, req.LogGroupName)
	return nil
}

func (r *Registry) DescribeLogGroups(req *DescribeLogGroupsRequest) (*DescribeLogGroupsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &DescribeLogGroupsResponse{LogGroups: []LogGroup{}}
	names := make([]string, 0, len(r.groups))
	for name := range r.groups {
		names = append(names, name)
	}
	sort.Strings(names)
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	for _, name := range names {
		g := r.groups[name]
		if req.LogGroupNamePrefix != "" && !strings.HasPrefix(name, req.LogGroupNamePrefix) {
			continue
		}
		if req.LogGroupNamePattern != "" && !strings.Contains(name, req.LogGroupNamePattern) {
			continue
		}
		if len(resp.LogGroups) == limit {
			resp.NextToken = resp.LogGroups[len(resp.LogGroups)-1].LogGroupName
			break
		}
		var stored int64
		for _, s := range g.streams {
			stored += s.storedBytes()
		}
		resp.LogGroups = append(resp.LogGroups, LogGroup{
			LogGroupName:    g.name,
			ARN:             g.arn + ":*",
			CreationTime:    g.created,
			RetentionInDays: g.retention,
			StoredBytes:     stored,
		})
	}
	return resp, nil
}

func (r *Registry) CreateLogStream(req *CreateLogStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	if _, ok := g.streams[req.LogStreamName]; ok {
		return errAlreadyExists("The specified log stream already exists: %s", req.LogStreamName)
	}
	g.streams[req.LogStreamName] = &stream{
		name:     req.LogStreamName,
		arn:      g.arn + ":log-stream:" + req.LogStreamName,
		created:  awsutil.NowMillis(),
		sequence: 1,
	}
	return nil
}

func (r *Registry) DeleteLogStream(req *DeleteLogStreamRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	if _, err := g.stream(req.LogStreamName); err != nil {
		return err
	}
	delete(g.streams, req.LogStreamName)
	return nil
}

func (r *Registry) DescribeLogStreams(req *DescribeLogStreamsRequest) (*DescribeLogStreamsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(g.streams))
	for name := range g.streams {
		if req.LogStreamNamePrefix != "" && !strings.HasPrefix(name, req.LogStreamNamePrefix) {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)
	if req.Descending {
		for i, j := 0, len(names)-1; i < j; i, j = i+1, j-1 {
			names[i], names[j] = names[j], names[i]
		}
	}
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	resp := &DescribeLogStreamsResponse{LogStreams: []LogStream{}}
	for _, name := range names {
		if len(resp.LogStreams) == limit {
			resp.NextToken = resp.LogStreams[len(resp.LogStreams)-1].LogStreamName
			break
		}
		s := g.streams[name]
		ls := LogStream{
			LogStreamName:       s.name,
			CreationTime:        s.created,
			UploadSequenceToken: strconv.FormatUint(s.sequence, 10),
			ARN:                 s.arn,
			StoredBytes:         s.storedBytes(),
		}
		if len(s.events) > 0 {
			first, last := s.events[0], s.events[len(s.events)-1]
			ls.FirstEventTimestamp = &first.timestamp
			ls.LastEventTimestamp = &last.timestamp
			ls.LastIngestionTime = &last.ingested
		}
		resp.LogStreams = append(resp.LogStreams, ls)
	}
	return resp, nil
}

func (r *Registry) PutLogEvents(req *PutLogEventsRequest) (*PutLogEventsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return nil, err
	}
	s, err := g.stream(req.LogStreamName)
	if err != nil {
		return nil, err
	}
	now := awsutil.NowMillis()
	for _, e := range req.LogEvents {
		s.events = append(s.events, storedEvent{
			timestamp: e.Timestamp,
			message:   e.Message,
			ingested:  now,
			id:        awsutil.NewID(),
		})
	}
	s.sequence++
	return &PutLogEventsResponse{NextSequenceToken: strconv.FormatUint(s.sequence, 10)}, nil
}

func (r *Registry) GetLogEvents(req *GetLogEventsRequest) (*GetLogEventsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return nil, err
	}
	s, err := g.stream(req.LogStreamName)
	if err != nil {
		return nil, err
	}
	limit := req.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	resp := &GetLogEventsResponse{
		Events:            []OutputLogEvent{},
		NextForwardToken:  "f/next",
		NextBackwardToken: "b/start",
	}
	for _, e := range s.events {
		if req.StartTime != nil && e.timestamp < *req.StartTime {
			continue
		}
		if req.EndTime != nil && e.timestamp > *req.EndTime {
			continue
		}
		if len(resp.Events) == limit {
			break
		}
		resp.Events = append(resp.Events, OutputLogEvent{
			Timestamp: e.timestamp, Message: e.message, IngestionTime: e.ingested,
		})
	}
	return resp, nil
}

// FilterLogEvents matches with a plain case-insensitive substring; the real
// filter-pattern grammar is out of scope.
func (r *Registry) FilterLogEvents(req *FilterLogEventsRequest) (*FilterLogEventsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return nil, err
	}
	wanted := map[string]bool{}
	for _, name := range req.LogStreamNames {
		wanted[name] = true
	}
	pattern := strings.ToLower(req.FilterPattern)

	var events []FilteredLogEvent
	for _, s := range g.streams {
		if len(wanted) > 0 && !wanted[s.name] {
			continue
		}
		for _, e := range s.events {
			if req.StartTime != nil && e.timestamp < *req.StartTime {
				continue
			}
			if req.EndTime != nil && e.timestamp > *req.EndTime {
				continue
			}
			if pattern != "" && !strings.Contains(strings.ToLower(e.message), pattern) {
				continue
			}
			events = append(events, FilteredLogEvent{
				LogStreamName: s.name,
				Timestamp:     e.timestamp,
				Message:       e.message,
				IngestionTime: e.ingested,
				EventID:       e.id,
			})
		}
	}
	sort.Slice(events, func(i, j int) bool { return events[i].Timestamp < events[j].Timestamp })

	limit := req.Limit
	if limit <= 0 {
		limit = defaultEventLimit
	}
	resp := &FilterLogEventsResponse{Events: events}
	if len(events) > limit {
		resp.Events = events[:limit]
		resp.NextToken = "next"
	}
	if resp.Events == nil {
		resp.Events = []FilteredLogEvent{}
	}
	return resp, nil
}

func (r *Registry) PutRetentionPolicy(req *PutRetentionPolicyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	days := req.RetentionInDays
	g.retention = &days
	return nil
}

func (r *Registry) DeleteRetentionPolicy(req *DeleteRetentionPolicyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	g.retention = nil
	return nil
}

func (r *Registry) TagLogGroup(req *TagLogGroupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	for k, v := range req.Tags {
		g.tags[k] = v
	}
	return nil
}

func (r *Registry) UntagLogGroup(req *UntagLogGroupRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return err
	}
	for _, k := range req.Tags {
		delete(g.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsLogGroup(req *ListTagsLogGroupRequest) (*ListTagsLogGroupResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.group(req.LogGroupName)
	if err != nil {
		return nil, err
	}
	return &ListTagsLogGroupResponse{Tags: copyTags(g.tags)}, nil
}

func (r *Registry) byARN(arn string) (*group, error) {
	for _, g := range r.groups {
		if g.groupByARN(arn) {
			return g, nil
		}
	}
	return nil, errNotFound("Resource not found: %s", arn)
}

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.byARN(req.ResourceARN)
	if err != nil {
		return err
	}
	for k, v := range req.Tags {
		g.tags[k] = v
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.byARN(req.ResourceARN)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(g.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForResource(req *ListTagsForResourceRequest) (*ListTagsForResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g, err := r.byARN(req.ResourceARN)
	if err != nil {
		return nil, err
	}
	return &ListTagsForResourceResponse{Tags: copyTags(g.tags)}, nil
}

func copyTags(tags map[string]string) map[string]string {
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}
