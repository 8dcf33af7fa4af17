package ssm

import (
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

// secureMarker wraps SecureString values returned without decryption. No
// real encryption happens anywhere in this store.
const secureMarker = "stratus:v1"

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ParameterNotFound", http.StatusBadRequest, format, args...)
}

func errAlreadyExists(format string, args ...any) *wire.APIError {
	return wire.NewError("ParameterAlreadyExists", http.StatusBadRequest, format, args...)
}

type parameter struct {
	name         string
	value        string
	paramType    string
	description  string
	version      int64
	arn          string
	modifiedSecs float64
	tags         map[string]string
	tier         string
	dataType     string
}

// Registry holds the parameter store. Names may be plain or hierarchical
// (slash-separated paths).
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	parameters map[string]*parameter
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, parameters: map[string]*parameter{}}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

func (r *Registry) parameterARN(name string) string {
	if !strings.HasPrefix(name, "/") {
		name = "/" + name
	}
	return awsutil.ARN("ssm", r.region, r.account, "parameter"+name)
}

// render converts a stored parameter to its wire shape. SecureString values
// come back wrapped in the marker unless decryption was requested.
func (p *parameter) render(withDecryption bool) Parameter {
	value := p.value
	if p.paramType == "SecureString" && !withDecryption {
		value = secureMarker + ":" + awsutil.Base64Encode([]byte(p.value))
	}
	return Parameter{
		Name:             p.name,
		Type:             p.paramType,
		Value:            value,
		Version:          p.version,
		ARN:              p.arn,
		LastModifiedDate: p.modifiedSecs,
		DataType:         p.dataType,
	}
}

func (r *Registry) PutParameter(req *PutParameterRequest) (*PutParameterResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.parameters[req.Name]
	if ok && !req.Overwrite {
		return nil, errAlreadyExists("Parameter %s already exists", req.Name)
	}
	version := int64(1)
	tags := map[string]string{}
	if ok {
		version = existing.version + 1
		tags = existing.tags
	}
	for _, tag := range req.Tags {
		tags[tag.Key] = tag.Value
	}
	paramType := req.Type
	if paramType == "" {
		paramType = "String"
	}
	tier := req.Tier
	if tier == "" {
		tier = "Standard"
	}
	dataType := req.DataType
	if dataType == "" {
		dataType = "text"
	}
	r.parameters[req.Name] = &parameter{
		name:         req.Name,
		value:        req.Value,
		paramType:    paramType,
		description:  req.Description,
		version:      version,
		arn:          r.parameterARN(req.Name),
		modifiedSecs: nowEpoch(),
		tags:         tags,
		tier:         tier,
		dataType:     dataType,
	}
	return &PutParameterResponse{Version: version, Tier: tier}, nil
}

func (r *Registry) GetParameter(req *GetParameterRequest) (*GetParameterResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parameters[req.Name]
	if !ok {
		return nil, errNotFound("Parameter %s not found", req.Name)
	}
	return &GetParameterResponse{Parameter: p.render(req.WithDecryption)}, nil
}

// GetParameters is best effort: unknown names land in InvalidParameters.
func (r *Registry) GetParameters(req *GetParametersRequest) (*GetParametersResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &GetParametersResponse{Parameters: []Parameter{}, InvalidParameters: []string{}}
	for _, name := range req.Names {
		p, ok := r.parameters[name]
		if !ok {
			resp.InvalidParameters = append(resp.InvalidParameters, name)
			continue
		}
		resp.Parameters = append(resp.Parameters, p.render(req.WithDecryption))
	}
	return resp, nil
}

func (r *Registry) GetParametersByPath(req *GetParametersByPathRequest) (*GetParametersByPathResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	path := req.Path
	if !strings.HasSuffix(path, "/") {
		path += "/"
	}
	params := make([]Parameter, 0)
	for _, p := range r.parameters {
		if !strings.HasPrefix(p.name, path) {
			continue
		}
		if !req.Recursive && strings.Contains(p.name[len(path):], "/") {
			continue
		}
		params = append(params, p.render(req.WithDecryption))
	}
	sort.Slice(params, func(i, j int) bool { return params[i].Name < params[j].Name })
	limit := req.MaxResults
	if limit <= 0 {
		limit = 10
	}
	resp := &GetParametersByPathResponse{Parameters: params}
	if len(params) > limit {
		resp.Parameters = params[:limit]
		resp.NextToken = "next"
	}
	return resp, nil
}

func (r *Registry) DeleteParameter(req *DeleteParameterRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.parameters[req.Name]; !ok {
		return errNotFound("Parameter %s not found", req.Name)
	}
	delete(r.parameters, req.Name)
	return nil
}

func (r *Registry) DeleteParameters(req *DeleteParametersRequest) (*DeleteParametersResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp := &DeleteParametersResponse{DeletedParameters: []string{}, InvalidParameters: []string{}}
	for _, name := range req.Names {
		if _, ok := r.parameters[name]; !ok {
			resp.InvalidParameters = append(resp.InvalidParameters, name)
			continue
		}
		delete(r.parameters, name)
		resp.DeletedParameters = append(resp.DeletedParameters, name)
	}
	return resp, nil
}

func (r *Registry) DescribeParameters(req *DescribeParametersRequest) (*DescribeParametersResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	metas := make([]ParameterMetadata, 0, len(r.parameters))
	for _, p := range r.parameters {
		metas = append(metas, ParameterMetadata{
			Name:             p.name,
			Type:             p.paramType,
			Version:          p.version,
			LastModifiedDate: p.modifiedSecs,
			ARN:              p.arn,
			Description:      p.description,
			Tier:             p.tier,
			DataType:         p.dataType,
		})
	}
	sort.Slice(metas, func(i, j int) bool { return metas[i].Name < metas[j].Name })
	limit := req.MaxResults
	if limit <= 0 {
		limit = 50
	}
	resp := &DescribeParametersResponse{Parameters: metas}
	if len(metas) > limit {
		resp.Parameters = metas[:limit]
		resp.NextToken = "next"
	}
	return resp, nil
}

// Tag operations address parameters by name; ResourceType is accepted but
// only Parameter resources exist here.
func (r *Registry) AddTagsToResource(req *AddTagsToResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parameters[req.ResourceID]
	if !ok {
		return errNotFound("Parameter %s not found", req.ResourceID)
	}
	for _, tag := range req.Tags {
		p.tags[tag.Key] = tag.Value
	}
	return nil
}

func (r *Registry) RemoveTagsFromResource(req *RemoveTagsFromResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parameters[req.ResourceID]
	if !ok {
		return errNotFound("Parameter %s not found", req.ResourceID)
	}
	for _, k := range req.TagKeys {
		delete(p.tags, k)
	}
	return nil
}

func (r *Registry) ListTagsForResource(req *ListTagsForResourceRequest) (*ListTagsForResourceResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.parameters[req.ResourceID]
	if !ok {
		return nil, errNotFound("Parameter %s not found", req.ResourceID)
	}
	keys := make([]string, 0, len(p.tags))
	for k := range p.tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	resp := &ListTagsForResourceResponse{TagList: []Tag{}}
	for _, k := range keys {
		resp.TagList = append(resp.TagList, Tag{Key: k, Value: p.tags[k]})
	}
	return resp, nil
}
