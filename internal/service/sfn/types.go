package sfn

type Tag struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type CreateStateMachineRequest struct {
	Name       string `json:"name"`
	Definition string `json:"definition"`
	RoleARN    string `json:"roleArn"`
	Type       string `json:"type,omitempty"`
	Tags       []Tag  `json:"tags,omitempty"`
}

type CreateStateMachineResponse struct {
	StateMachineARN string  `json:"stateMachineArn"`
	CreationDate    float64 `json:"creationDate"`
}

type DeleteStateMachineRequest struct {
	StateMachineARN string `json:"stateMachineArn"`
}

type DescribeStateMachineRequest struct {
	StateMachineARN string `json:"stateMachineArn"`
}

type DescribeStateMachineResponse struct {
	StateMachineARN string  `json:"stateMachineArn"`
	Name            string  `json:"name"`
	Status          string  `json:"status"`
	Definition      string  `json:"definition"`
	RoleARN         string  `json:"roleArn"`
	Type            string  `json:"type"`
	CreationDate    float64 `json:"creationDate"`
}

type ListStateMachinesRequest struct {
	MaxResults int    `json:"maxResults,omitempty"`
	NextToken  string `json:"nextToken,omitempty"`
}

type StateMachineListItem struct {
	StateMachineARN string  `json:"stateMachineArn"`
	Name            string  `json:"name"`
	Type            string  `json:"type"`
	CreationDate    float64 `json:"creationDate"`
}

type ListStateMachinesResponse struct {
	StateMachines []StateMachineListItem `json:"stateMachines"`
	NextToken     string                 `json:"nextToken,omitempty"`
}

type StartExecutionRequest struct {
	StateMachineARN string `json:"stateMachineArn"`
	Name            string `json:"name,omitempty"`
	Input           string `json:"input,omitempty"`
}

type StartExecutionResponse struct {
	ExecutionARN string  `json:"executionArn"`
	StartDate    float64 `json:"startDate"`
}

type StopExecutionRequest struct {
	ExecutionARN string `json:"executionArn"`
	Error        string `json:"error,omitempty"`
	Cause        string `json:"cause,omitempty"`
}

type StopExecutionResponse struct {
	StopDate float64 `json:"stopDate"`
}

type DescribeExecutionRequest struct {
	ExecutionARN string `json:"executionArn"`
}

type DescribeExecutionResponse struct {
	ExecutionARN    string   `json:"executionArn"`
	StateMachineARN string   `json:"stateMachineArn"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	StartDate       float64  `json:"startDate"`
	StopDate        *float64 `json:"stopDate,omitempty"`
	Input           string   `json:"input,omitempty"`
	Output          string   `json:"output,omitempty"`
}

type ListExecutionsRequest struct {
	StateMachineARN string `json:"stateMachineArn,omitempty"`
	StatusFilter    string `json:"statusFilter,omitempty"`
	MaxResults      int    `json:"maxResults,omitempty"`
	NextToken       string `json:"nextToken,omitempty"`
}

type ExecutionListItem struct {
	ExecutionARN    string   `json:"executionArn"`
	StateMachineARN string   `json:"stateMachineArn"`
	Name            string   `json:"name"`
	Status          string   `json:"status"`
	StartDate       float64  `json:"startDate"`
	StopDate        *float64 `json:"stopDate,omitempty"`
}

type ListExecutionsResponse struct {
	Executions []ExecutionListItem `json:"executions"`
	NextToken  string              `json:"nextToken,omitempty"`
}

type HistoryEvent struct {
	ID                             int64   `json:"id"`
	Type                           string  `json:"type"`
	Timestamp                      float64 `json:"timestamp"`
	PreviousEventID                int64   `json:"previousEventId"`
	ExecutionStartedEventDetails   any     `json:"executionStartedEventDetails,omitempty"`
	ExecutionSucceededEventDetails any     `json:"executionSucceededEventDetails,omitempty"`
}

type GetExecutionHistoryRequest struct {
	ExecutionARN string `json:"executionArn"`
	MaxResults   int    `json:"maxResults,omitempty"`
	ReverseOrder bool   `json:"reverseOrder,omitempty"`
	NextToken    string `json:"nextToken,omitempty"`
}

type GetExecutionHistoryResponse struct {
	Events    []HistoryEvent `json:"events"`
	NextToken string         `json:"nextToken,omitempty"`
}

type SendTaskSuccessRequest struct {
	TaskToken string `json:"taskToken"`
	Output    string `json:"output"`
}

type SendTaskFailureRequest struct {
	TaskToken string `json:"taskToken"`
	Error     string `json:"error,omitempty"`
	Cause     string `json:"cause,omitempty"`
}

type SendTaskHeartbeatRequest struct {
	TaskToken string `json:"taskToken"`
}

type TagResourceRequest struct {
	ResourceARN string `json:"resourceArn"`
	Tags        []Tag  `json:"tags"`
}

type UntagResourceRequest struct {
	ResourceARN string   `json:"resourceArn"`
	TagKeys     []string `json:"tagKeys"`
}

type ListTagsForResourceRequest struct {
	ResourceARN string `json:"resourceArn"`
}

type ListTagsForResourceResponse struct {
	Tags []Tag `json:"tags"`
}
