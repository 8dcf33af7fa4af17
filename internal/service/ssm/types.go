package ssm

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type Parameter struct {
	Name             string  `json:"Name"`
	Type             string  `json:"Type"`
	Value            string  `json:"Value"`
	Version          int64   `json:"Version"`
	ARN              string  `json:"ARN"`
	LastModifiedDate float64 `json:"LastModifiedDate"`
	DataType         string  `json:"DataType"`
}

type ParameterMetadata struct {
	Name             string  `json:"Name"`
	Type             string  `json:"Type"`
	Version          int64   `json:"Version"`
	LastModifiedDate float64 `json:"LastModifiedDate"`
	ARN              string  `json:"ARN"`
	Description      string  `json:"Description,omitempty"`
	Tier             string  `json:"Tier"`
	DataType         string  `json:"DataType"`
}

type PutParameterRequest struct {
	Name        string `json:"Name"`
	Value       string `json:"Value"`
	Type        string `json:"Type,omitempty"`
	Description string `json:"Description,omitempty"`
	Overwrite   bool   `json:"Overwrite,omitempty"`
	Tier        string `json:"Tier,omitempty"`
	DataType    string `json:"DataType,omitempty"`
	KeyID       string `json:"KeyId,omitempty"`
	Tags        []Tag  `json:"Tags,omitempty"`
}

type PutParameterResponse struct {
	Version int64  `json:"Version"`
	Tier    string `json:"Tier"`
}

type GetParameterRequest struct {
	Name           string `json:"Name"`
	WithDecryption bool   `json:"WithDecryption,omitempty"`
}

type GetParameterResponse struct {
	Parameter Parameter `json:"Parameter"`
}

type GetParametersRequest struct {
	Names          []string `json:"Names"`
	WithDecryption bool     `json:"WithDecryption,omitempty"`
}

type GetParametersResponse struct {
	Parameters        []Parameter `json:"Parameters"`
	InvalidParameters []string    `json:"InvalidParameters"`
}

type GetParametersByPathRequest struct {
	Path           string `json:"Path"`
	Recursive      bool   `json:"Recursive,omitempty"`
	WithDecryption bool   `json:"WithDecryption,omitempty"`
	MaxResults     int    `json:"MaxResults,omitempty"`
	NextToken      string `json:"NextToken,omitempty"`
}

type GetParametersByPathResponse struct {
	Parameters []Parameter `json:"Parameters"`
	NextToken  string      `json:"NextToken,omitempty"`
}

type DeleteParameterRequest struct {
	Name string `json:"Name"`
}

type DeleteParametersRequest struct {
	Names []string `json:"Names"`
}

type DeleteParametersResponse struct {
	DeletedParameters []string `json:"DeletedParameters"`
	InvalidParameters []string `json:"InvalidParameters"`
}

type DescribeParametersRequest struct {
	MaxResults int    `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type DescribeParametersResponse struct {
	Parameters []ParameterMetadata `json:"Parameters"`
	NextToken  string              `json:"NextToken,omitempty"`
}

type AddTagsToResourceRequest struct {
	ResourceType string `json:"ResourceType"`
	ResourceID   string `json:"ResourceId"`
	Tags         []Tag  `json:"Tags"`
}

type RemoveTagsFromResourceRequest struct {
	ResourceType string   `json:"ResourceType"`
	ResourceID   string   `json:"ResourceId"`
	TagKeys      []string `json:"TagKeys"`
}

type ListTagsForResourceRequest struct {
	ResourceType string `json:"ResourceType"`
	ResourceID   string `json:"ResourceId"`
}

type ListTagsForResourceResponse struct {
	TagList []Tag `json:"TagList"`
}
