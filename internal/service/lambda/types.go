package lambda

// FunctionCode carries the deployment package of create and update-code
// requests. Only inline zip bytes are accepted; there is no object store
// fetch behind S3Bucket/S3Key.
type FunctionCode struct {
	ZipFile  string `json:"ZipFile,omitempty"` // base64 on the wire
	S3Bucket string `json:"S3Bucket,omitempty"`
	S3Key    string `json:"S3Key,omitempty"`
}

type Environment struct {
	Variables map[string]string `json:"Variables"`
}

type CreateFunctionRequest struct {
	FunctionName string            `json:"FunctionName"`
	Runtime      string            `json:"Runtime"`
	Role         string            `json:"Role"`
	Handler      string            `json:"Handler"`
	Description  string            `json:"Description,omitempty"`
	Timeout      *int              `json:"Timeout,omitempty"`
	MemorySize   *int              `json:"MemorySize,omitempty"`
	Code         FunctionCode      `json:"Code"`
	Environment  *Environment      `json:"Environment,omitempty"`
	Tags         map[string]string `json:"Tags,omitempty"`
}

type UpdateFunctionConfigurationRequest struct {
	Runtime     string       `json:"Runtime,omitempty"`
	Role        string       `json:"Role,omitempty"`
	Handler     string       `json:"Handler,omitempty"`
	Description string       `json:"Description,omitempty"`
	Timeout     *int         `json:"Timeout,omitempty"`
	MemorySize  *int         `json:"MemorySize,omitempty"`
	Environment *Environment `json:"Environment,omitempty"`
}

type UpdateFunctionCodeRequest struct {
	ZipFile string `json:"ZipFile,omitempty"`
}

// FunctionConfiguration is the wire view of one function version.
type FunctionConfiguration struct {
	FunctionName string       `json:"FunctionName"`
	FunctionARN  string       `json:"FunctionArn"`
	Runtime      string       `json:"Runtime"`
	Role         string       `json:"Role"`
	Handler      string       `json:"Handler"`
	Description  string       `json:"Description,omitempty"`
	Timeout      int          `json:"Timeout"`
	MemorySize   int          `json:"MemorySize"`
	CodeSize     int          `json:"CodeSize"`
	CodeSha256   string       `json:"CodeSha256"`
	Version      string       `json:"Version"`
	Environment  *Environment `json:"Environment,omitempty"`
	LastModified string       `json:"LastModified"`
	State        string       `json:"State"`
}

type GetFunctionResponse struct {
	Configuration FunctionConfiguration `json:"Configuration"`
	Code          FunctionCodeLocation  `json:"Code"`
	Tags          map[string]string     `json:"Tags,omitempty"`
}

type FunctionCodeLocation struct {
	RepositoryType string `json:"RepositoryType"`
	Location       string `json:"Location,omitempty"`
}

type ListFunctionsResponse struct {
	Functions  []FunctionConfiguration `json:"Functions"`
	NextMarker string                  `json:"NextMarker,omitempty"`
}

type ListVersionsResponse struct {
	Versions []FunctionConfiguration `json:"Versions"`
}

type AliasConfiguration struct {
	AliasARN        string `json:"AliasArn"`
	Name            string `json:"Name"`
	FunctionVersion string `json:"FunctionVersion"`
	Description     string `json:"Description,omitempty"`
}

type CreateAliasRequest struct {
	Name            string `json:"Name"`
	FunctionVersion string `json:"FunctionVersion"`
	Description     string `json:"Description,omitempty"`
}

type UpdateAliasRequest struct {
	FunctionVersion string `json:"FunctionVersion,omitempty"`
	Description     string `json:"Description,omitempty"`
}

type ListAliasesResponse struct {
	Aliases []AliasConfiguration `json:"Aliases"`
}

type PublishVersionRequest struct {
	Description string `json:"Description,omitempty"`
}

type CreateEventSourceMappingRequest struct {
	EventSourceARN string `json:"EventSourceArn"`
	FunctionName   string `json:"FunctionName"`
	BatchSize      *int   `json:"BatchSize,omitempty"`
	Enabled        *bool  `json:"Enabled,omitempty"`
}

type UpdateEventSourceMappingRequest struct {
	FunctionName string `json:"FunctionName,omitempty"`
	BatchSize    *int   `json:"BatchSize,omitempty"`
	Enabled      *bool  `json:"Enabled,omitempty"`
}

type EventSourceMappingConfiguration struct {
	UUID           string `json:"UUID"`
	EventSourceARN string `json:"EventSourceArn"`
	FunctionARN    string `json:"FunctionArn"`
	BatchSize      int    `json:"BatchSize"`
	State          string `json:"State"`
	LastModified   int64  `json:"LastModified"`
}

type ListEventSourceMappingsResponse struct {
	EventSourceMappings []EventSourceMappingConfiguration `json:"EventSourceMappings"`
}

type AddPermissionRequest struct {
	StatementID string `json:"StatementId"`
	Action      string `json:"Action"`
	Principal   string `json:"Principal"`
	SourceARN   string `json:"SourceArn,omitempty"`
}

type AddPermissionResponse struct {
	Statement string `json:"Statement"`
}

type GetPolicyResponse struct {
	Policy     string `json:"Policy"`
	RevisionID string `json:"RevisionId"`
}

type ListTagsResponse struct {
	Tags map[string]string `json:"Tags"`
}

type TagResourceRequest struct {
	Tags map[string]string `json:"Tags"`
}
