package sfn

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

func errMachineExists(format string, args ...any) *wire.APIError {
	return wire.NewError("StateMachineAlreadyExists", http.StatusBadRequest, format, args...)
}

func errMachineMissing(format string, args ...any) *wire.APIError {
	return wire.NewError("StateMachineDoesNotExist", http.StatusBadRequest, format, args...)
}

func errExecutionExists(format string, args ...any) *wire.APIError {
	return wire.NewError("ExecutionAlreadyExists", http.StatusBadRequest, format, args...)
}

func errExecutionMissing(format string, args ...any) *wire.APIError {
	return wire.NewError("ExecutionDoesNotExist", http.StatusBadRequest, format, args...)
}

func errInvalidARN(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidArn", http.StatusBadRequest, format, args...)
}

type stateMachine struct {
	arn         string
	name        string
	definition  string
	roleARN     string
	machineType string
	createdSecs float64
	tags        map[string]string
}

type execution struct {
	arn        string
	machineARN string
	name       string
	status     string
	startSecs  float64
	stopSecs   *float64
	input      string
	output     string
	history    []HistoryEvent
}

// Registry holds state machines and their executions. Definitions are not
// interpreted: an execution succeeds the moment it starts, echoing its input
// as output, which is enough for SDK round trips and workflow plumbing tests.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	machines   map[string]*stateMachine
	executions map[string]*execution
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:     region,
		account:    account,
		machines:   map[string]*stateMachine{},
		executions: map[string]*execution{},
	}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

func (r *Registry) CreateStateMachine(req *CreateStateMachineRequest) (*CreateStateMachineResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	arn := awsutil.ARN("states", r.region, r.account, "stateMachine:"+req.Name)
	if _, ok := r.machines[arn]; ok {
		return nil, errMachineExists("State machine already exists: %s", arn)
	}
	machineType := req.Type
	if machineType == "" {
		machineType = "STANDARD"
	}
	sm := &stateMachine{
		arn:         arn,
		name:        req.Name,
		definition:  req.Definition,
		roleARN:     req.RoleARN,
		machineType: machineType,
		createdSecs: nowEpoch(),
		tags:        map[string]string{},
	}
	for _, tag := range req.Tags {
		sm.tags[tag.Key] = tag.Value
	}
	r.machines[arn] = sm
	return &CreateStateMachineResponse{StateMachineARN: arn, CreationDate: sm.createdSecs}, nil
}

func (r *Registry) DeleteStateMachine(req *DeleteStateMachineRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.machines[req.StateMachineARN]; !ok {
		return errMachineMissing("State machine does not exist: %s", req.StateMachineARN)
	}
	delete(r.machines, req.StateMachineARN)
	return nil
}

func (r *Registry) DescribeStateMachine(req *DescribeStateMachineRequest) (*DescribeStateMachineResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.machines[req.StateMachineARN]
	if !ok {
		return nil, errMachineMissing("State machine does not exist: %s", req.StateMachineARN)
	}
	return &DescribeStateMachineResponse{
		StateMachineARN: sm.arn,
		Name:            sm.name,
		Status:          "ACTIVE",
		Definition:      sm.definition,
		RoleARN:         sm.roleARN,
		Type:            sm.machineType,
		CreationDate:    sm.createdSecs,
	}, nil
}

func (r *Registry) ListStateMachines(req *ListStateMachinesRequest) (*ListStateMachinesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]StateMachineListItem, 0, len(r.machines))
	for _, sm := range r.machines {
		items = append(items, StateMachineListItem{
			StateMachineARN: sm.arn,
			Name:            sm.name,
			Type:            sm.machineType,
			CreationDate:    sm.createdSecs,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	limit := req.MaxResults
	if limit <= 0 {
		limit = 1000
	}
	resp := &ListStateMachinesResponse{StateMachines: items}
	if len(items) > limit {
		resp.StateMachines = items[:limit]
		resp.NextToken = "next"
	}
	return resp, nil
}

// StartExecution records the execution as already SUCCEEDED with the input
// echoed back as output.
func (r *Registry) StartExecution(req *StartExecutionRequest) (*StartExecutionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.machines[req.StateMachineARN]
	if !ok {
		return nil, errMachineMissing("State machine does not exist: %s", req.StateMachineARN)
	}
	execName := req.Name
	if execName == "" {
		execName = awsutil.NewID()
	}
	machineName := req.StateMachineARN
	if idx := strings.LastIndex(machineName, ":"); idx >= 0 {
		machineName = machineName[idx+1:]
	}
	execARN := awsutil.ARN("states", r.region, r.account, "execution:"+machineName+":"+execName)
	if _, ok := r.executions[execARN]; ok {
		return nil, errExecutionExists("Execution already exists: %s", execARN)
	}
	input := req.Input
	if input == "" {
		input = "{}"
	}
	now := nowEpoch()
	stop := now
	exec := &execution{
		arn:        execARN,
		machineARN: req.StateMachineARN,
		name:       execName,
		status:     "SUCCEEDED",
		startSecs:  now,
		stopSecs:   &stop,
		input:      input,
		output:     input,
		history: []HistoryEvent{
			{
				ID:              1,
				Type:            "ExecutionStarted",
				Timestamp:       now,
				PreviousEventID: 0,
				ExecutionStartedEventDetails: map[string]any{
					"input":   input,
					"roleArn": sm.roleARN,
				},
			},
			{
				ID:              2,
				Type:            "ExecutionSucceeded",
				Timestamp:       now,
				PreviousEventID: 1,
				ExecutionSucceededEventDetails: map[string]any{
					"output": input,
				},
			},
		},
	}
	r.executions[execARN] = exec
	return &StartExecutionResponse{ExecutionARN: execARN, StartDate: now}, nil
}

func (r *Registry) StopExecution(req *StopExecutionRequest) (*StopExecutionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec, ok := r.executions[req.ExecutionARN]
	if !ok {
		return nil, errExecutionMissing("Execution does not exist: %s", req.ExecutionARN)
	}
	now := nowEpoch()
	exec.status = "ABORTED"
	exec.stopSecs = &now
	return &StopExecutionResponse{StopDate: now}, nil
}

func (r *Registry) DescribeExecution(req *DescribeExecutionRequest) (*DescribeExecutionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec, ok := r.executions[req.ExecutionARN]
	if !ok {
		return nil, errExecutionMissing("Execution does not exist: %s", req.ExecutionARN)
	}
	return &DescribeExecutionResponse{
		ExecutionARN:    exec.arn,
		StateMachineARN: exec.machineARN,
		Name:            exec.name,
		Status:          exec.status,
		StartDate:       exec.startSecs,
		StopDate:        exec.stopSecs,
		Input:           exec.input,
		Output:          exec.output,
	}, nil
}

func (r *Registry) ListExecutions(req *ListExecutionsRequest) (*ListExecutionsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	items := make([]ExecutionListItem, 0, len(r.executions))
	for _, exec := range r.executions {
		if req.StateMachineARN != "" && exec.machineARN != req.StateMachineARN {
			continue
		}
		if req.StatusFilter != "" && exec.status != req.StatusFilter {
			continue
		}
		items = append(items, ExecutionListItem{
			ExecutionARN:    exec.arn,
			StateMachineARN: exec.machineARN,
			Name:            exec.name,
			Status:          exec.status,
			StartDate:       exec.startSecs,
			StopDate:        exec.stopSecs,
		})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].StartDate > items[j].StartDate })
	limit := req.MaxResults
	if limit <= 0 {
		limit = 1000
	}
	resp := &ListExecutionsResponse{Executions: items}
	if len(items) > limit {
		resp.Executions = items[:limit]
		resp.NextToken = "next"
	}
	return resp, nil
}

func (r *Registry) GetExecutionHistory(req *GetExecutionHistoryRequest) (*GetExecutionHistoryResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	exec, ok := r.executions[req.ExecutionARN]
	if !ok {
		return nil, errExecutionMissing("Execution does not exist: %s", req.ExecutionARN)
	}
	events := make([]HistoryEvent, len(exec.history))
	copy(events, exec.history)
	if req.ReverseOrder {
		for i, j := 0, len(events)-1; i < j; i, j = i+1, j-1 {
			events[i], events[j] = events[j], events[i]
		}
	}
	return &GetExecutionHistoryResponse{Events: events}, nil
}

// Task callbacks accept any token; nothing waits on them.
func (r *Registry) SendTaskSuccess(req *SendTaskSuccessRequest) error { return nil }

func (r *Registry) SendTaskFailure(req *SendTaskFailureRequest) error { return nil }

func (r *Registry) SendTaskHeartbeat(req *SendTaskHeartbeatRequest) error { return nil }

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.machines[req.ResourceARN]
	if !ok {
		return errInvalidARN("Resource not found: %s", req.ResourceARN)
	}
	for _, tag := range req.Tags {
		sm.tags[tag.Key] = tag.Value
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.machines[req.ResourceARN]
	if !ok {
		return errInvalidARN("Resource not found: %s", req.ResourceARN)
	}
	for _, k := range req.TagKeys {
		delete(sm.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForResource(req *ListTagsForResourceRequest) (*ListTagsForResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sm, ok := r.machines[req.ResourceARN]
	if !ok {
		return nil, errInvalidARN("Resource not found: %s", req.ResourceARN)
	}
	keys := make([]string, 0, len(sm.tags))
	for k := range sm.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	resp := &ListTagsForResourceResponse{Tags: []Tag{}}
	for _, k := range keys {
		resp.Tags = append(resp.Tags, Tag{Key: k, Value: sm.tags[k]})
	}
	return resp, nil
}
