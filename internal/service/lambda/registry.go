package lambda

import (
	"encoding/json"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/stratuslocal/stratus/internal/awsutil"
)

// Function is one stored function: the mutable $LATEST revision plus its
// published versions, aliases and policy statements.
type Function struct {
	Name         string
	ARN          string
	Runtime      string
	Role         string
	Handler      string
	Description  string
	Timeout      int
	MemorySize   int
	Code         []byte
	CodeSHA256   string // base64 of SHA-256, as the provider reports it
	LastModified string
	Environment  map[string]string
	Tags         map[string]string

	Versions []FunctionConfiguration
	Aliases  map[string]*AliasConfiguration
	Policy   []PolicyStatement
}

// PolicyStatement is one AddPermission grant on a function.
type PolicyStatement struct {
	Sid       string            `json:"Sid"`
	Effect    string            `json:"Effect"`
	Principal map[string]string `json:"Principal"`
	Action    string            `json:"Action"`
	Resource  string            `json:"Resource"`
}

type eventSourceMapping struct {
	uuid         string
	sourceARN    string
	functionARN  string
	state        string
	batchSize    int
	lastModified int64
}

// Registry holds all functions and event-source mappings for the emulated
// Lambda control plane.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	functions map[string]*Function           // by name
	mappings  map[string]*eventSourceMapping // by uuid
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:    region,
		account:   account,
		functions: map[string]*Function{},
		mappings:  map[string]*eventSourceMapping{},
	}
}

func (r *Registry) arn(name string) string {
	return awsutil.ARN("lambda", r.region, r.account, "function:"+name)
}

func (r *Registry) function(name string) (*Function, error) {
	f, ok := r.functions[name]
	if !ok {
		return nil, errResourceNotFound("Function not found: %s", r.arn(name))
	}
	return f, nil
}

// lastModified is the timestamp format Lambda uses, RFC 3339 millis with a
// numeric zone.
func lastModified() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000+0000")
}

func (f *Function) configuration() FunctionConfiguration {
	c := FunctionConfiguration{
		FunctionName: f.Name,
		FunctionARN:  f.ARN,
		Runtime:      f.Runtime,
		Role:         f.Role,
		Handler:      f.Handler,
		Description:  f.Description,
		Timeout:      f.Timeout,
		MemorySize:   f.MemorySize,
		CodeSize:     len(f.Code),
		CodeSha256:   f.CodeSHA256,
		Version:      "$LATEST",
		LastModified: f.LastModified,
		State:        "Active",
	}
	if len(f.Environment) > 0 {
		c.Environment = &Environment{Variables: f.Environment}
	}
	return c
}

// CreateFunction registers a new function at $LATEST.
func (r *Registry) CreateFunction(req *CreateFunctionRequest) (*FunctionConfiguration, error) {
	if req.FunctionName == "" {
		return nil, errInvalidParameterValue("FunctionName is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.functions[req.FunctionName]; ok {
		return nil, errResourceConflict("Function already exist: %s", req.FunctionName)
	}
	code := awsutil.Base64Decode(req.Code.ZipFile)
	f := &Function{
		Name:         req.FunctionName,
		ARN:          r.arn(req.FunctionName),
		Runtime:      req.Runtime,
		Role:         req.Role,
		Handler:      req.Handler,
		Description:  req.Description,
		Timeout:      3,
		MemorySize:   128,
		Code:         code,
		CodeSHA256:   codeSHA256(code),
		LastModified: lastModified(),
		Environment:  map[string]string{},
		Tags:         map[string]string{},
		Aliases:      map[string]*AliasConfiguration{},
	}
	if req.Timeout != nil {
		f.Timeout = *req.Timeout
	}
	if req.MemorySize != nil {
		f.MemorySize = *req.MemorySize
	}
	if req.Environment != nil {
		for k, v := range req.Environment.Variables {
			f.Environment[k] = v
		}
	}
	for k, v := range req.Tags {
		f.Tags[k] = v
	}
	r.functions[f.Name] = f
	cfg := f.configuration()
	return &cfg, nil
}

func (r *Registry) GetFunction(name string) (*GetFunctionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	resp := &GetFunctionResponse{
		Configuration: f.configuration(),
		Code:          FunctionCodeLocation{RepositoryType: "S3"},
	}
	if len(f.Tags) > 0 {
		resp.Tags = f.Tags
	}
	return resp, nil
}

func (r *Registry) ListFunctions() *ListFunctionsResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	names := make([]string, 0, len(r.functions))
	for name := range r.functions {
		names = append(names, name)
	}
	sort.Strings(names)
	resp := &ListFunctionsResponse{Functions: []FunctionConfiguration{}}
	for _, name := range names {
		resp.Functions = append(resp.Functions, r.functions[name].configuration())
	}
	return resp
}

func (r *Registry) DeleteFunction(name string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.function(name); err != nil {
		return err
	}
	delete(r.functions, name)
	return nil
}

func (r *Registry) UpdateFunctionCode(name string, req *UpdateFunctionCodeRequest) (*FunctionConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	code := awsutil.Base64Decode(req.ZipFile)
	f.Code = code
	f.CodeSHA256 = codeSHA256(code)
	f.LastModified = lastModified()
	cfg := f.configuration()
	return &cfg, nil
}

func (r *Registry) UpdateFunctionConfiguration(name string, req *UpdateFunctionConfigurationRequest) (*FunctionConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	if req.Runtime != "" {
		f.Runtime = req.Runtime
	}
	if req.Role != "" {
		f.Role = req.Role
	}
	if req.Handler != "" {
		f.Handler = req.Handler
	}
	if req.Description != "" {
		f.Description = req.Description
	}
	if req.Timeout != nil {
		f.Timeout = *req.Timeout
	}
	if req.MemorySize != nil {
		f.MemorySize = *req.MemorySize
	}
	if req.Environment != nil {
		f.Environment = map[string]string{}
		for k, v := range req.Environment.Variables {
			f.Environment[k] = v
		}
	}
	f.LastModified = lastModified()
	cfg := f.configuration()
	return &cfg, nil
}

// Invoke checks the function exists and returns the canned result for the
// invocation type. There is no runtime behind the control plane; RequestResponse
// invocations answer "null" the way an empty handler would.
func (r *Registry) Invoke(name, invocationType string) (status int, payload string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, err := r.function(name); err != nil {
		return 0, "", err
	}
	switch invocationType {
	case "Event":
		return 202, "", nil
	case "DryRun":
		return 204, "", nil
	default:
		return 200, "null", nil
	}
}

// PublishVersion snapshots $LATEST as the next numbered version.
func (r *Registry) PublishVersion(name string, req *PublishVersionRequest) (*FunctionConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	cfg := f.configuration()
	cfg.Version = strconv.Itoa(len(f.Versions) + 1)
	cfg.FunctionARN = f.ARN + ":" + cfg.Version
	cfg.LastModified = lastModified()
	if req.Description != "" {
		cfg.Description = req.Description
	}
	f.Versions = append(f.Versions, cfg)
	return &cfg, nil
}

func (r *Registry) ListVersions(name string) (*ListVersionsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	resp := &ListVersionsResponse{Versions: []FunctionConfiguration{f.configuration()}}
	resp.Versions = append(resp.Versions, f.Versions...)
	return resp, nil
}

func (r *Registry) CreateAlias(name string, req *CreateAliasRequest) (*AliasConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	if _, ok := f.Aliases[req.Name]; ok {
		return nil, errResourceConflict("Alias already exists: %s", req.Name)
	}
	alias := &AliasConfiguration{
		AliasARN:        f.ARN + ":" + req.Name,
		Name:            req.Name,
		FunctionVersion: req.FunctionVersion,
		Description:     req.Description,
	}
	f.Aliases[req.Name] = alias
	return alias, nil
}

func (r *Registry) GetAlias(name, aliasName string) (*AliasConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	alias, ok := f.Aliases[aliasName]
	if !ok {
		return nil, errResourceNotFound("Alias not found: %s", aliasName)
	}
	return alias, nil
}

func (r *Registry) UpdateAlias(name, aliasName string, req *UpdateAliasRequest) (*AliasConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	alias, ok := f.Aliases[aliasName]
	if !ok {
		return nil, errResourceNotFound("Alias not found: %s", aliasName)
	}
	if req.FunctionVersion != "" {
		alias.FunctionVersion = req.FunctionVersion
	}
	if req.Description != "" {
		alias.Description = req.Description
	}
	return alias, nil
}

func (r *Registry) DeleteAlias(name, aliasName string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return err
	}
	if _, ok := f.Aliases[aliasName]; !ok {
		return errResourceNotFound("Alias not found: %s", aliasName)
	}
	delete(f.Aliases, aliasName)
	return nil
}

func (r *Registry) ListAliases(name string) (*ListAliasesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(f.Aliases))
	for n := range f.Aliases {
		names = append(names, n)
	}
	sort.Strings(names)
	resp := &ListAliasesResponse{Aliases: []AliasConfiguration{}}
	for _, n := range names {
		resp.Aliases = append(resp.Aliases, *f.Aliases[n])
	}
	return resp, nil
}

func (r *Registry) AddPermission(name string, req *AddPermissionRequest) (*AddPermissionResponse, error) {
	if req.StatementID == "" {
		return nil, errInvalidParameterValue("StatementId is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	st := PolicyStatement{
		Sid:       req.StatementID,
		Effect:    "Allow",
		Principal: map[string]string{"Service": req.Principal},
		Action:    req.Action,
		Resource:  f.ARN,
	}
	f.Policy = append(f.Policy, st)
	rendered, _ := json.Marshal(st)
	return &AddPermissionResponse{Statement: string(rendered)}, nil
}

func (r *Registry) RemovePermission(name, statementID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return err
	}
	for i, st := range f.Policy {
		if st.Sid == statementID {
			f.Policy = append(f.Policy[:i], f.Policy[i+1:]...)
			return nil
		}
	}
	return errResourceNotFound("Statement not found: %s", statementID)
}

func (r *Registry) GetPolicy(name string) (*GetPolicyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(name)
	if err != nil {
		return nil, err
	}
	if len(f.Policy) == 0 {
		return nil, errResourceNotFound("No policy is associated with the given resource.")
	}
	doc := map[string]any{
		"Version":   "2012-10-17",
		"Id":        "default",
		"Statement": f.Policy,
	}
	rendered, _ := json.Marshal(doc)
	return &GetPolicyResponse{Policy: string(rendered), RevisionID: awsutil.NewID()}, nil
}

// CreateEventSourceMapping records a mapping from a queue or stream ARN to
// a function. Nothing polls the source; the record only satisfies the
// control-plane round trip SDK setup code performs.
func (r *Registry) CreateEventSourceMapping(req *CreateEventSourceMappingRequest) (*EventSourceMappingConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.function(req.FunctionName)
	if err != nil {
		return nil, err
	}
	m := &eventSourceMapping{
		uuid:         awsutil.NewID(),
		sourceARN:    req.EventSourceARN,
		functionARN:  f.ARN,
		state:        "Enabled",
		batchSize:    10,
		lastModified: awsutil.NowSecs(),
	}
	if req.Enabled != nil && !*req.Enabled {
		m.state = "Disabled"
	}
	if req.BatchSize != nil {
		m.batchSize = *req.BatchSize
	}
	r.mappings[m.uuid] = m
	cfg := m.configuration()
	return &cfg, nil
}

func (m *eventSourceMapping) configuration() EventSourceMappingConfiguration {
	return EventSourceMappingConfiguration{
		UUID:           m.uuid,
		EventSourceARN: m.sourceARN,
		FunctionARN:    m.functionARN,
		BatchSize:      m.batchSize,
		State:          m.state,
		LastModified:   m.lastModified,
	}
}

func (r *Registry) GetEventSourceMapping(uuid string) (*EventSourceMappingConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[uuid]
	if !ok {
		return nil, errResourceNotFound("Event source mapping not found: %s", uuid)
	}
	cfg := m.configuration()
	return &cfg, nil
}

func (r *Registry) UpdateEventSourceMapping(uuid string, req *UpdateEventSourceMappingRequest) (*EventSourceMappingConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[uuid]
	if !ok {
		return nil, errResourceNotFound("Event source mapping not found: %s", uuid)
	}
	if req.BatchSize != nil {
		m.batchSize = *req.BatchSize
	}
	if req.Enabled != nil {
		if *req.Enabled {
			m.state = "Enabled"
		} else {
			m.state = "Disabled"
		}
	}
	m.lastModified = awsutil.NowSecs()
	cfg := m.configuration()
	return &cfg, nil
}

func (r *Registry) DeleteEventSourceMapping(uuid string) (*EventSourceMappingConfiguration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.mappings[uuid]
	if !ok {
		return nil, errResourceNotFound("Event source mapping not found: %s", uuid)
	}
	delete(r.mappings, uuid)
	cfg := m.configuration()
	cfg.State = "Deleting"
	return &cfg, nil
}

func (r *Registry) ListEventSourceMappings() *ListEventSourceMappingsResponse {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &ListEventSourceMappingsResponse{EventSourceMappings: []EventSourceMappingConfiguration{}}
	uuids := make([]string, 0, len(r.mappings))
	for id := range r.mappings {
		uuids = append(uuids, id)
	}
	sort.Strings(uuids)
	for _, id := range uuids {
		resp.EventSourceMappings = append(resp.EventSourceMappings, r.mappings[id].configuration())
	}
	return resp
}

func (r *Registry) functionByARN(arn string) (*Function, error) {
	for _, f := range r.functions {
		if f.ARN == arn {
			return f, nil
		}
	}
	return nil, errResourceNotFound("Function not found: %s", arn)
}

func (r *Registry) TagResource(arn string, tags map[string]string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.functionByARN(arn)
	if err != nil {
		return err
	}
	for k, v := range tags {
		f.Tags[k] = v
	}
	return nil
}

func (r *Registry) UntagResource(arn string, keys []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.functionByARN(arn)
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(f.Tags, k)
	}
	return nil
}

func (r *Registry) ListTags(arn string) (*ListTagsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, err := r.functionByARN(arn)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(f.Tags))
	for k, v := range f.Tags {
		out[k] = v
	}
	return &ListTagsResponse{Tags: out}, nil
}

// codeSHA256 renders the digest the way the provider does: base64 of the
// raw SHA-256, not hex.
func codeSHA256(code []byte) string {
	return awsutil.Base64Encode(awsutil.SHA256Raw(code))
}
