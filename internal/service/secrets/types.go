package secrets

type Tag struct {
	Key   string `json:"Key"`
	Value string `json:"Value"`
}

type CreateSecretRequest struct {
	Name         string `json:"Name"`
	SecretString string `json:"SecretString,omitempty"`
	SecretBinary string `json:"SecretBinary,omitempty"`
	Description  string `json:"Description,omitempty"`
	KMSKeyID     string `json:"KmsKeyId,omitempty"`
	Tags         []Tag  `json:"Tags,omitempty"`
}

type CreateSecretResponse struct {
	ARN       string `json:"ARN"`
	Name      string `json:"Name"`
	VersionID string `json:"VersionId"`
}

type GetSecretValueRequest struct {
	SecretID     string `json:"SecretId"`
	VersionID    string `json:"VersionId,omitempty"`
	VersionStage string `json:"VersionStage,omitempty"`
}

type GetSecretValueResponse struct {
	ARN           string   `json:"ARN"`
	Name          string   `json:"Name"`
	VersionID     string   `json:"VersionId"`
	SecretString  string   `json:"SecretString,omitempty"`
	SecretBinary  string   `json:"SecretBinary,omitempty"`
	VersionStages []string `json:"VersionStages"`
	CreatedDate   float64  `json:"CreatedDate"`
}

type PutSecretValueRequest struct {
	SecretID           string   `json:"SecretId"`
	SecretString       string   `json:"SecretString,omitempty"`
	SecretBinary       string   `json:"SecretBinary,omitempty"`
	ClientRequestToken string   `json:"ClientRequestToken,omitempty"`
	VersionStages      []string `json:"VersionStages,omitempty"`
}

type PutSecretValueResponse struct {
	ARN           string   `json:"ARN"`
	Name          string   `json:"Name"`
	VersionID     string   `json:"VersionId"`
	VersionStages []string `json:"VersionStages"`
}

type DescribeSecretRequest struct {
	SecretID string `json:"SecretId"`
}

type DescribeSecretResponse struct {
	ARN                string              `json:"ARN"`
	Name               string              `json:"Name"`
	Description        string              `json:"Description,omitempty"`
	KMSKeyID           string              `json:"KmsKeyId,omitempty"`
	RotationEnabled    bool                `json:"RotationEnabled"`
	Tags               []Tag               `json:"Tags"`
	CreatedDate        float64             `json:"CreatedDate"`
	LastChangedDate    float64             `json:"LastChangedDate"`
	VersionIDsToStages map[string][]string `json:"VersionIdsToStages"`
}

type ListSecretsRequest struct {
	MaxResults int    `json:"MaxResults,omitempty"`
	NextToken  string `json:"NextToken,omitempty"`
}

type SecretListEntry struct {
	ARN             string  `json:"ARN"`
	Name            string  `json:"Name"`
	Description     string  `json:"Description,omitempty"`
	CreatedDate     float64 `json:"CreatedDate"`
	LastChangedDate float64 `json:"LastChangedDate"`
	Tags            []Tag   `json:"Tags"`
}

type ListSecretsResponse struct {
	SecretList []SecretListEntry `json:"SecretList"`
	NextToken  string            `json:"NextToken,omitempty"`
}

type UpdateSecretRequest struct {
	SecretID     string `json:"SecretId"`
	SecretString string `json:"SecretString,omitempty"`
	SecretBinary string `json:"SecretBinary,omitempty"`
	Description  string `json:"Description,omitempty"`
	KMSKeyID     string `json:"KmsKeyId,omitempty"`
}

type UpdateSecretResponse struct {
	ARN       string `json:"ARN"`
	Name      string `json:"Name"`
	VersionID string `json:"VersionId"`
}

type DeleteSecretRequest struct {
	SecretID                   string `json:"SecretId"`
	RecoveryWindowInDays       int    `json:"RecoveryWindowInDays,omitempty"`
	ForceDeleteWithoutRecovery bool   `json:"ForceDeleteWithoutRecovery,omitempty"`
}

type DeleteSecretResponse struct {
	ARN          string  `json:"ARN"`
	Name         string  `json:"Name"`
	DeletionDate float64 `json:"DeletionDate"`
}

type RestoreSecretRequest struct {
	SecretID string `json:"SecretId"`
}

type RestoreSecretResponse struct {
	ARN  string `json:"ARN"`
	Name string `json:"Name"`
}

type TagResourceRequest struct {
	SecretID string `json:"SecretId"`
	Tags     []Tag  `json:"Tags"`
}

type UntagResourceRequest struct {
	SecretID string   `json:"SecretId"`
	TagKeys  []string `json:"TagKeys"`
}

type SecretVersionEntry struct {
	VersionID     string   `json:"VersionId"`
	VersionStages []string `json:"VersionStages"`
	CreatedDate   float64  `json:"CreatedDate"`
}

type ListSecretVersionIDsRequest struct {
	SecretID   string `json:"SecretId"`
	MaxResults int    `json:"MaxResults,omitempty"`
}

type ListSecretVersionIDsResponse struct {
	ARN      string               `json:"ARN"`
	Name     string               `json:"Name"`
	Versions []SecretVersionEntry `json:"Versions"`
}
