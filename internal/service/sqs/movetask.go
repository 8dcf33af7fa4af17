package sqs

import (
	"sort"
	"sync/atomic"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/logger"
)

// Move task statuses.
const (
	moveTaskRunning    = "RUNNING"
	moveTaskCompleted  = "COMPLETED"
	moveTaskCancelling = "CANCELLING"
	moveTaskCancelled  = "CANCELLED"
	moveTaskFailed     = "FAILED"
)

// moveTask drains a dead-letter queue in the background. The worker
// goroutine re-acquires the registry lock for every message, so moves
// interleave cleanly with live traffic. cancelled and moved are atomics
// because CancelMessageMoveTask reads them without waiting for the worker.
type moveTask struct {
	handle       string
	sourceARN    string
	destARN      string // empty means route each message to its origin
	maxPerSecond *int
	started      int64 // unix millis
	toMove       int64

	status    string // guarded by Registry.mu
	cancelled atomic.Bool
	moved     atomic.Int64
}

// StartMessageMoveTask begins moving every message currently in the source
// queue. Without an explicit destination each message returns to the queue
// it was originally sent to.
func (r *Registry) StartMessageMoveTask(req *StartMessageMoveTaskRequest) (*StartMessageMoveTaskResponse, error) {
	if req.SourceARN == "" {
		return nil, errMissingParameter("The request must contain the parameter SourceArn.")
	}
	if req.MaxNumberOfMessagesPerSecond != nil {
		rate := *req.MaxNumberOfMessagesPerSecond
		if rate < 1 || rate > 500 {
			return nil, errInvalidParameterValue(
				"Value %d for parameter MaxNumberOfMessagesPerSecond is invalid. Reason: Must be an integer from 1 to 500.", rate)
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.queueByARN(req.SourceARN)
	if !ok {
		return nil, errResourceNotFound("The resource that you specified for the SourceArn parameter doesn't exist.")
	}
	if req.DestinationARN != "" {
		if _, ok := r.queueByARN(req.DestinationARN); !ok {
			return nil, errResourceNotFound("The resource that you specified for the DestinationArn parameter doesn't exist.")
		}
	}
	for _, t := range r.moveTasks {
		if t.sourceARN == req.SourceARN &&
			(t.status == moveTaskRunning || t.status == moveTaskCancelling) {
			return nil, errInvalidParameterValue(
				"There is already a task running. Only one active task is allowed for a source queue arn at a given time.")
		}
	}

	t := &moveTask{
		handle:       awsutil.NewID(),
		sourceARN:    req.SourceARN,
		destARN:      req.DestinationARN,
		maxPerSecond: req.MaxNumberOfMessagesPerSecond,
		started:      time.Now().UnixMilli(),
		toMove:       int64(len(src.pending)),
		status:       moveTaskRunning,
	}
	r.moveTasks[t.handle] = t
	go r.runMoveTask(t)
	logger.Info("message move task started",
		"task", t.handle, "source", t.sourceARN, "destination", t.destARN)
	return &StartMessageMoveTaskResponse{TaskHandle: t.handle}, nil
}

func (r *Registry) runMoveTask(t *moveTask) {
	interval := 10 * time.Millisecond
	if t.maxPerSecond != nil {
		interval = time.Second / time.Duration(*t.maxPerSecond)
	}
	for {
		if t.cancelled.Load() {
			r.finishMoveTask(t, moveTaskCancelled)
			return
		}
		r.mu.Lock()
		src, ok := r.queueByARN(t.sourceARN)
		if !ok {
			t.status = moveTaskFailed
			r.mu.Unlock()
			return
		}
		now := time.Now()
		moved := false
		for i, m := range src.pending {
			destARN := t.destARN
			if destARN == "" {
				destARN = m.OriginARN
			}
			if destARN == "" {
				continue // no explicit destination and no recorded origin
			}
			target, ok := r.queueByARN(destARN)
			if !ok {
				continue
			}
			src.pending = append(src.pending[:i], src.pending[i+1:]...)
			target.enqueueMoved(m, now)
			t.moved.Add(1)
			moved = true
			break
		}
		if !moved {
			t.status = moveTaskCompleted
			r.mu.Unlock()
			logger.Info("message move task completed",
				"task", t.handle, "moved", t.moved.Load())
			return
		}
		r.mu.Unlock()
		time.Sleep(interval)
	}
}

func (r *Registry) finishMoveTask(t *moveTask, status string) {
	r.mu.Lock()
	t.status = status
	r.mu.Unlock()
}

func (r *Registry) CancelMessageMoveTask(req *CancelMessageMoveTaskRequest) (*CancelMessageMoveTaskResponse, error) {
	if req.TaskHandle == "" {
		return nil, errMissingParameter("The request must contain the parameter TaskHandle.")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.moveTasks[req.TaskHandle]
	if !ok {
		return nil, errResourceNotFound("Task handle is invalid or expired.")
	}
	if t.status == moveTaskRunning {
		t.status = moveTaskCancelling
		t.cancelled.Store(true)
	}
	return &CancelMessageMoveTaskResponse{
		ApproximateNumberOfMessagesMoved: t.moved.Load(),
	}, nil
}

// ListMessageMoveTasks lists tasks for a source queue, most recent first.
// The task handle is only exposed while a task can still be cancelled.
func (r *Registry) ListMessageMoveTasks(req *ListMessageMoveTasksRequest) (*ListMessageMoveTasksResponse, error) {
	if req.SourceARN == "" {
		return nil, errMissingParameter("The request must contain the parameter SourceArn.")
	}
	max := 1
	if req.MaxResults != nil {
		if *req.MaxResults < 1 || *req.MaxResults > 10 {
			return nil, errInvalidParameterValue(
				"Value %d for parameter MaxResults is invalid. Reason: Must be an integer from 1 to 10.", *req.MaxResults)
		}
		max = *req.MaxResults
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.queueByARN(req.SourceARN); !ok {
		return nil, errResourceNotFound("The resource that you specified for the SourceArn parameter doesn't exist.")
	}
	var tasks []*moveTask
	for _, t := range r.moveTasks {
		if t.sourceARN == req.SourceARN {
			tasks = append(tasks, t)
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].started > tasks[j].started })
	if len(tasks) > max {
		tasks = tasks[:max]
	}

	resp := &ListMessageMoveTasksResponse{Results: []MessageMoveTaskResult{}}
	for _, t := range tasks {
		result := MessageMoveTaskResult{
			Status:                           t.status,
			SourceARN:                        t.sourceARN,
			DestinationARN:                   t.destARN,
			ApproximateNumberOfMessagesMoved: t.moved.Load(),
			MaxNumberOfMessagesPerSecond:     t.maxPerSecond,
		}
		toMove := t.toMove
		result.ApproximateNumberOfMessagesToMove = &toMove
		started := t.started
		result.StartedTimestamp = &started
		if t.status == moveTaskRunning || t.status == moveTaskCancelling {
			result.TaskHandle = t.handle
		}
		resp.Results = append(resp.Results, result)
	}
	return resp, nil
}
