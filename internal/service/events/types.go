package events

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type EventBus struct {
	Name string `json:"Name"`
	ARN  string `json:"Arn"`
}

type Rule struct {
	Name         string `json:"Name"`
	ARN          string `json:"Arn"`
	State        string `json:"State"`
	EventBusName string `json:"EventBusName"`
}

type Target struct {
	ID      string `json:"Id"`
	ARN     string `json:"Arn"`
	Input   string `json:"Input,omitempty"`
	RoleARN string `json:"RoleArn,omitempty"`
}

type CreateEventBusRequest struct {
	Name string `json:"Name"`
	Tags []Tag  `json:"Tags,omitempty"`
}

type CreateEventBusResponse struct {
	EventBusARN string `json:"EventBusArn"`
}

type DeleteEventBusRequest struct {
	Name string `json:"Name"`
}

type DescribeEventBusRequest struct {
	Name string `json:"Name,omitempty"`
}

type DescribeEventBusResponse struct {
	Name   string `json:"Name"`
	ARN    string `json:"Arn"`
	Policy string `json:"Policy,omitempty"`
}

type ListEventBusesRequest struct {
	NamePrefix string `json:"NamePrefix,omitempty"`
	Limit      int    `json:"Limit,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type ListEventBusesResponse struct {
	EventBuses []EventBus `json:"EventBuses"`
	NextToken  string     `json:"NextToken,omitempty"`
}

type PutEventsRequestEntry struct {
	Source       string `json:"Source,omitempty"`
	DetailType   string `json:"DetailType,omitempty"`
	Detail       string `json:"Detail,omitempty"`
	EventBusName string `json:"EventBusName,omitempty"`
}

type PutEventsRequest struct {
	Entries []PutEventsRequestEntry `json:"Entries"`
}

type PutEventsResultEntry struct {
	EventID      string `json:"EventId,omitempty"`
	ErrorCode    string `json:"ErrorCode,omitempty"`
	ErrorMessage string `json:"ErrorMessage,omitempty"`
}

type PutEventsResponse struct {
	FailedEntryCount int                    `json:"FailedEntryCount"`
	Entries          []PutEventsResultEntry `json:"Entries"`
}

type PutRuleRequest struct {
	Name               string `json:"Name"`
	EventPattern       string `json:"EventPattern,omitempty"`
	ScheduleExpression string `json:"ScheduleExpression,omitempty"`
	State              string `json:"State,omitempty"`
	Description        string `json:"Description,omitempty"`
	EventBusName       string `json:"EventBusName,omitempty"`
	Tags               []Tag  `json:"Tags,omitempty"`
}

type PutRuleResponse struct {
	RuleARN string `json:"RuleArn"`
}

type DeleteRuleRequest struct {
	Name         string `json:"Name"`
	EventBusName string `json:"EventBusName,omitempty"`
}

type DescribeRuleRequest struct {
	Name         string `json:"Name"`
	EventBusName string `json:"EventBusName,omitempty"`
}

type DescribeRuleResponse struct {
	Name               string `json:"Name"`
	ARN                string `json:"Arn"`
	EventPattern       string `json:"EventPattern,omitempty"`
	ScheduleExpression string `json:"ScheduleExpression,omitempty"`
	State              string `json:"State"`
	Description        string `json:"Description,omitempty"`
	EventBusName       string `json:"EventBusName"`
}

type ListRulesRequest struct {
	NamePrefix   string `json:"NamePrefix,omitempty"`
	EventBusName string `json:"EventBusName,omitempty"`
	Limit        int    `json:"Limit,omitempty"`
	NextToken    string `json:"NextToken,omitempty"`
}

type ListRulesResponse struct {
	Rules     []Rule `json:"Rules"`
	NextToken string `json:"NextToken,omitempty"`
}

type PutTargetsRequest struct {
	Rule         string   `json:"Rule"`
	EventBusName string   `json:"EventBusName,omitempty"`
	Targets      []Target `json:"Targets"`
}

type FailedTargetEntry struct {
	TargetID     string `json:"TargetId"`
	ErrorCode    string `json:"ErrorCode"`
	ErrorMessage string `json:"ErrorMessage"`
}

type PutTargetsResponse struct {
	FailedEntryCount int                 `json:"FailedEntryCount"`
	FailedEntries    []FailedTargetEntry `json:"FailedEntries"`
}

type RemoveTargetsRequest struct {
	Rule         string   `json:"Rule"`
	EventBusName string   `json:"EventBusName,omitempty"`
	IDs          []string `json:"Ids"`
}

type RemoveTargetsResponse struct {
	FailedEntryCount int                 `json:"FailedEntryCount"`
	FailedEntries    []FailedTargetEntry `json:"FailedEntries"`
}

type ListTargetsByRuleRequest struct {
	Rule         string `json:"Rule"`
	EventBusName string `json:"EventBusName,omitempty"`
}

type ListTargetsByRuleResponse struct {
	Targets   []Target `json:"Targets"`
	NextToken string   `json:"NextToken,omitempty"`
}

type TagResourceRequest struct {
	ResourceARN string `json:"ResourceARN"`
	Tags        []Tag  `json:"Tags"`
}

type UntagResourceRequest struct {
	ResourceARN string   `json:"ResourceARN"`
	TagKeys     []string `json:"TagKeys"`
}

type ListTagsForResourceRequest struct {
	ResourceARN string `json:"ResourceARN"`
}

type ListTagsForResourceResponse struct {
	Tags []Tag `json:"Tags"`
}
