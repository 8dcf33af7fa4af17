package kms

type Tag struct {
	TagKey   string `json:"TagKey"`
	TagValue string `json:"TagValue"`
}

type KeyMetadata struct {
	KeyID        string  `json:"KeyId"`
	ARN          string  `json:"Arn"`
	Description  string  `json:"Description"`
	KeyUsage     string  `json:"KeyUsage"`
	KeySpec      string  `json:"KeySpec"`
	KeyState     string  `json:"KeyState"`
	Enabled      bool    `json:"Enabled"`
	CreationDate float64 `json:"CreationDate"`
	KeyManager   string  `json:"KeyManager"`
	MultiRegion  bool    `json:"MultiRegion"`
}

type CreateKeyRequest struct {
	Description string `json:"Description,omitempty"`
	KeyUsage    string `json:"KeyUsage,omitempty"`
	KeySpec     string `json:"KeySpec,omitempty"`
	Tags        []Tag  `json:"Tags,omitempty"`
}

type CreateKeyResponse struct {
	KeyMetadata KeyMetadata `json:"KeyMetadata"`
}

type DescribeKeyRequest struct {
	KeyID string `json:"KeyId"`
}

type DescribeKeyResponse struct {
	KeyMetadata KeyMetadata `json:"KeyMetadata"`
}

type ListKeysRequest struct {
	Limit  int    `json:"Limit,omitempty"`
	Marker string `json:"Marker,omitempty"`
}

type KeyListEntry struct {
	KeyID  string `json:"KeyId"`
	KeyARN string `json:"KeyArn"`
}

type ListKeysResponse struct {
	Keys       []KeyListEntry `json:"Keys"`
	Truncated  bool           `json:"Truncated"`
	NextMarker string         `json:"NextMarker,omitempty"`
}

type ScheduleKeyDeletionRequest struct {
	KeyID                string `json:"KeyId"`
	PendingWindowInDays  int    `json:"PendingWindowInDays,omitempty"`
}

type ScheduleKeyDeletionResponse struct {
	KeyID               string  `json:"KeyId"`
	DeletionDate        float64 `json:"DeletionDate"`
	KeyState            string  `json:"KeyState"`
	PendingWindowInDays int     `json:"PendingWindowInDays"`
}

type CancelKeyDeletionRequest struct {
	KeyID string `json:"KeyId"`
}

type CancelKeyDeletionResponse struct {
	KeyID string `json:"KeyId"`
}

type EnableKeyRequest struct {
	KeyID string `json:"KeyId"`
}

type DisableKeyRequest struct {
	KeyID string `json:"KeyId"`
}

type EncryptRequest struct {
	KeyID               string `json:"KeyId"`
	Plaintext           string `json:"Plaintext"`
	EncryptionAlgorithm string `json:"EncryptionAlgorithm,omitempty"`
}

type EncryptResponse struct {
	KeyID               string `json:"KeyId"`
	CiphertextBlob      string `json:"CiphertextBlob"`
	EncryptionAlgorithm string `json:"EncryptionAlgorithm"`
}

type DecryptRequest struct {
	CiphertextBlob      string `json:"CiphertextBlob"`
	KeyID               string `json:"KeyId,omitempty"`
	EncryptionAlgorithm string `json:"EncryptionAlgorithm,omitempty"`
}

type DecryptResponse struct {
	KeyID               string `json:"KeyId"`
	Plaintext           string `json:"Plaintext"`
	EncryptionAlgorithm string `json:"EncryptionAlgorithm"`
}

type GenerateDataKeyRequest struct {
	KeyID         string `json:"KeyId"`
	KeySpec       string `json:"KeySpec,omitempty"`
	NumberOfBytes int    `json:"NumberOfBytes,omitempty"`
}

type GenerateDataKeyResponse struct {
	KeyID          string `json:"KeyId"`
	Plaintext      string `json:"Plaintext"`
	CiphertextBlob string `json:"CiphertextBlob"`
}

type GenerateDataKeyWithoutPlaintextRequest struct {
	KeyID         string `json:"KeyId"`
	KeySpec       string `json:"KeySpec,omitempty"`
	NumberOfBytes int    `json:"NumberOfBytes,omitempty"`
}

type GenerateDataKeyWithoutPlaintextResponse struct {
	KeyID          string `json:"KeyId"`
	CiphertextBlob string `json:"CiphertextBlob"`
}

type GenerateRandomRequest struct {
	NumberOfBytes int `json:"NumberOfBytes,omitempty"`
}

type GenerateRandomResponse struct {
	Plaintext string `json:"Plaintext"`
}

type SignRequest struct {
	KeyID            string `json:"KeyId"`
	Message          string `json:"Message"`
	MessageType      string `json:"MessageType,omitempty"`
	SigningAlgorithm string `json:"SigningAlgorithm"`
}

type SignResponse struct {
	KeyID            string `json:"KeyId"`
	Signature        string `json:"Signature"`
	SigningAlgorithm string `json:"SigningAlgorithm"`
}

type VerifyRequest struct {
	KeyID            string `json:"KeyId"`
	Message          string `json:"Message"`
	Signature        string `json:"Signature"`
	SigningAlgorithm string `json:"SigningAlgorithm"`
}

type VerifyResponse struct {
	KeyID            string `json:"KeyId"`
	SignatureValid   bool   `json:"SignatureValid"`
	SigningAlgorithm string `json:"SigningAlgorithm"`
}

type TagResourceRequest struct {
	KeyID string `json:"KeyId"`
	Tags  []Tag  `json:"Tags"`
}

type UntagResourceRequest struct {
	KeyID   string   `json:"KeyId"`
	TagKeys []string `json:"TagKeys"`
}

type ListResourceTagsRequest struct {
	KeyID string `json:"KeyId"`
	Limit int    `json:"Limit,omitempty"`
}

type ListResourceTagsResponse struct {
	Tags      []Tag `json:"Tags"`
	Truncated bool  `json:"Truncated"`
}

type CreateAliasRequest struct {
	AliasName   string `json:"AliasName"`
	TargetKeyID string `json:"TargetKeyId"`
}

type DeleteAliasRequest struct {
	AliasName string `json:"AliasName"`
}

type AliasListEntry struct {
	AliasName   string `json:"AliasName"`
	AliasARN    string `json:"AliasArn"`
	TargetKeyID string `json:"TargetKeyId"`
}

type ListAliasesRequest struct {
	KeyID string `json:"KeyId,omitempty"`
	Limit int    `json:"Limit,omitempty"`
}

type ListAliasesResponse struct {
	Aliases   []AliasListEntry `json:"Aliases"`
	Truncated bool             `json:"Truncated"`
}

type GetKeyPolicyRequest struct {
	KeyID      string `json:"KeyId"`
	PolicyName string `json:"PolicyName,omitempty"`
}

type GetKeyPolicyResponse struct {
	Policy string `json:"Policy"`
}

type PutKeyPolicyRequest struct {
	KeyID      string `json:"KeyId"`
	PolicyName string `json:"PolicyName,omitempty"`
	Policy     string `json:"Policy"`
}
