package kms

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"net/http"
	"sort"
	"strings"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

// ciphertextMarker prefixes every blob this emulator produces. No real
// encryption happens; the blob is the marker, the key id and the original
// plaintext base64, wrapped in one more base64 layer.
const ciphertextMarker = "stratus:v1"

const defaultKeyPolicy = `{"Version":"2012-10-17","Statement":[{"Effect":"Allow","Principal":{"AWS":"*"},"Action":"kms:*","Resource":"*"}]}`

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("NotFoundException", http.StatusBadRequest, format, args...)
}

func errDisabled(format string, args ...any) *wire.APIError {
	return wire.NewError("DisabledException", http.StatusBadRequest, format, args...)
}

func errInvalidCiphertext(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidCiphertextException", http.StatusBadRequest, format, args...)
}

type key struct {
	metadata KeyMetadata
	tags     map[string]string
	policy   string
}

// Registry holds customer master keys and their aliases.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	keys    map[string]*key
	aliases map[string]AliasListEntry
}

func NewRegistry(region, account string) *Registry {
	return &Registry{
		region:  region,
		account: account,
		keys:    map[string]*key{},
		aliases: map[string]AliasListEntry{},
	}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

// resolveKey accepts a bare key id, a key ARN, or an alias name.
func (r *Registry) resolveKey(keyID string) (*key, error) {
	if k, ok := r.keys[keyID]; ok {
		return k, nil
	}
	if strings.HasPrefix(keyID, "arn:") {
		parts := strings.SplitN(keyID, ":", 6)
		if len(parts) == 6 {
			id := strings.TrimPrefix(parts[5], "key/")
			if k, ok := r.keys[id]; ok {
				return k, nil
			}
		}
	}
	if alias, ok := r.aliases[keyID]; ok {
		if k, ok := r.keys[alias.TargetKeyID]; ok {
			return k, nil
		}
	}
	return nil, errNotFound("Invalid keyId %s", keyID)
}

func (r *Registry) enabledKey(keyID string) (*key, error) {
	k, err := r.resolveKey(keyID)
	if err != nil {
		return nil, err
	}
	if !k.metadata.Enabled {
		return nil, errDisabled("KMS key %s is disabled", k.metadata.KeyID)
	}
	return k, nil
}

func (r *Registry) CreateKey(req *CreateKeyRequest) (*CreateKeyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keyID := awsutil.NewID()
	usage := req.KeyUsage
	if usage == "" {
		usage = "ENCRYPT_DECRYPT"
	}
	spec := req.KeySpec
	if spec == "" {
		spec = "SYMMETRIC_DEFAULT"
	}
	k := &key{
		metadata: KeyMetadata{
			KeyID:        keyID,
			ARN:          awsutil.ARN("kms", r.region, r.account, "key/"+keyID),
			Description:  req.Description,
			KeyUsage:     usage,
			KeySpec:      spec,
			KeyState:     "Enabled",
			Enabled:      true,
			CreationDate: nowEpoch(),
			KeyManager:   "CUSTOMER",
		},
		tags:   map[string]string{},
		policy: defaultKeyPolicy,
	}
	for _, tag := range req.Tags {
		k.tags[tag.TagKey] = tag.TagValue
	}
	r.keys[keyID] = k
	return &CreateKeyResponse{KeyMetadata: k.metadata}, nil
}

func (r *Registry) DescribeKey(req *DescribeKeyRequest) (*DescribeKeyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	return &DescribeKeyResponse{KeyMetadata: k.metadata}, nil
}

func (r *Registry) ListKeys(req *ListKeysRequest) (*ListKeysResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]KeyListEntry, 0, len(r.keys))
	for _, k := range r.keys {
		entries = append(entries, KeyListEntry{KeyID: k.metadata.KeyID, KeyARN: k.metadata.ARN})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].KeyID < entries[j].KeyID })
	limit := req.Limit
	if limit <= 0 {
		limit = 1000
	}
	truncated := len(entries) > limit
	if truncated {
		entries = entries[:limit]
	}
	return &ListKeysResponse{Keys: entries, Truncated: truncated}, nil
}

func (r *Registry) ScheduleKeyDeletion(req *ScheduleKeyDeletionRequest) (*ScheduleKeyDeletionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	days := req.PendingWindowInDays
	if days <= 0 {
		days = 30
	}
	k.metadata.KeyState = "PendingDeletion"
	k.metadata.Enabled = false
	return &ScheduleKeyDeletionResponse{
		KeyID:               k.metadata.KeyID,
		DeletionDate:        nowEpoch() + float64(days)*86400,
		KeyState:            "PendingDeletion",
		PendingWindowInDays: days,
	}, nil
}

func (r *Registry) CancelKeyDeletion(req *CancelKeyDeletionRequest) (*CancelKeyDeletionResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	k.metadata.KeyState = "Enabled"
	k.metadata.Enabled = true
	return &CancelKeyDeletionResponse{KeyID: k.metadata.KeyID}, nil
}

func (r *Registry) EnableKey(req *EnableKeyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return err
	}
	k.metadata.Enabled = true
	k.metadata.KeyState = "Enabled"
	return nil
}

func (r *Registry) DisableKey(req *DisableKeyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return err
	}
	k.metadata.Enabled = false
	k.metadata.KeyState = "Disabled"
	return nil
}

func seal(keyID, plaintextB64 string) string {
	return awsutil.Base64Encode([]byte(ciphertextMarker + ":" + keyID + ":" + plaintextB64))
}

// unseal splits a blob back into key id and plaintext base64.
func unseal(blob string) (keyID, plaintextB64 string, err error) {
	decoded := awsutil.Base64Decode(blob)
	if decoded == nil {
		return "", "", errInvalidCiphertext("Invalid ciphertext")
	}
	rest, ok := strings.CutPrefix(string(decoded), ciphertextMarker+":")
	if !ok {
		return "", "", errInvalidCiphertext("Malformed ciphertext")
	}
	keyID, plaintextB64, ok = strings.Cut(rest, ":")
	if !ok {
		return "", "", errInvalidCiphertext("Malformed ciphertext")
	}
	return keyID, plaintextB64, nil
}

func (r *Registry) Encrypt(req *EncryptRequest) (*EncryptResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.enabledKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	algorithm := req.EncryptionAlgorithm
	if algorithm == "" {
		algorithm = "SYMMETRIC_DEFAULT"
	}
	return &EncryptResponse{
		KeyID:               k.metadata.ARN,
		CiphertextBlob:      seal(k.metadata.KeyID, req.Plaintext),
		EncryptionAlgorithm: algorithm,
	}, nil
}

func (r *Registry) Decrypt(req *DecryptRequest) (*DecryptResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	keyID, plaintextB64, err := unseal(req.CiphertextBlob)
	if err != nil {
		return nil, err
	}
	if req.KeyID != "" {
		keyID = req.KeyID
	}
	k, err := r.enabledKey(keyID)
	if err != nil {
		return nil, err
	}
	algorithm := req.EncryptionAlgorithm
	if algorithm == "" {
		algorithm = "SYMMETRIC_DEFAULT"
	}
	return &DecryptResponse{
		KeyID:               k.metadata.ARN,
		Plaintext:           plaintextB64,
		EncryptionAlgorithm: algorithm,
	}, nil
}

func dataKeyLength(keySpec string, numberOfBytes int) int {
	switch keySpec {
	case "AES_256":
		return 32
	case "AES_128":
		return 16
	}
	if numberOfBytes > 0 {
		return numberOfBytes
	}
	return 32
}

func randomBytes(n int) []byte {
	buf := make([]byte, n)
	_, _ = rand.Read(buf)
	return buf
}

func (r *Registry) GenerateDataKey(req *GenerateDataKeyRequest) (*GenerateDataKeyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.enabledKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	plaintextB64 := awsutil.Base64Encode(randomBytes(dataKeyLength(req.KeySpec, req.NumberOfBytes)))
	return &GenerateDataKeyResponse{
		KeyID:          k.metadata.ARN,
		Plaintext:      plaintextB64,
		CiphertextBlob: seal(k.metadata.KeyID, plaintextB64),
	}, nil
}

func (r *Registry) GenerateDataKeyWithoutPlaintext(req *GenerateDataKeyWithoutPlaintextRequest) (*GenerateDataKeyWithoutPlaintextResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.enabledKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	plaintextB64 := awsutil.Base64Encode(randomBytes(dataKeyLength(req.KeySpec, req.NumberOfBytes)))
	return &GenerateDataKeyWithoutPlaintextResponse{
		KeyID:          k.metadata.ARN,
		CiphertextBlob: seal(k.metadata.KeyID, plaintextB64),
	}, nil
}

func (r *Registry) GenerateRandom(req *GenerateRandomRequest) (*GenerateRandomResponse, error) {
	n := req.NumberOfBytes
	if n <= 0 {
		n = 32
	}
	if n > 1024 {
		n = 1024
	}
	return &GenerateRandomResponse{Plaintext: awsutil.Base64Encode(randomBytes(n))}, nil
}

// sign computes HMAC-SHA256 keyed by the key id. Deterministic, so Verify
// can recompute it; not a real asymmetric signature.
func signMessage(keyID, messageB64 string) string {
	mac := hmac.New(sha256.New, []byte(keyID))
	mac.Write([]byte(messageB64))
	return awsutil.Base64Encode(mac.Sum(nil))
}

func (r *Registry) Sign(req *SignRequest) (*SignResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.enabledKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	return &SignResponse{
		KeyID:            k.metadata.ARN,
		Signature:        signMessage(k.metadata.KeyID, req.Message),
		SigningAlgorithm: req.SigningAlgorithm,
	}, nil
}

func (r *Registry) Verify(req *VerifyRequest) (*VerifyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.enabledKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	expected := signMessage(k.metadata.KeyID, req.Message)
	return &VerifyResponse{
		KeyID:            k.metadata.ARN,
		SignatureValid:   hmac.Equal([]byte(expected), []byte(req.Signature)),
		SigningAlgorithm: req.SigningAlgorithm,
	}, nil
}

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return err
	}
	for _, tag := range req.Tags {
		k.tags[tag.TagKey] = tag.TagValue
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return err
	}
	for _, tagKey := range req.TagKeys {
		delete(k.tags, tagKey)
	}
	return nil
}

func (r *Registry) ListResourceTags(req *ListResourceTagsRequest) (*ListResourceTagsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(k.tags))
	for tagKey := range k.tags {
		keys = append(keys, tagKey)
	}
	sort.Strings(keys)
	limit := req.Limit
	if limit <= 0 {
		limit = 50
	}
	truncated := len(keys) > limit
	if truncated {
		keys = keys[:limit]
	}
	resp := &ListResourceTagsResponse{Tags: []Tag{}, Truncated: truncated}
	for _, tagKey := range keys {
		resp.Tags = append(resp.Tags, Tag{TagKey: tagKey, TagValue: k.tags[tagKey]})
	}
	return resp, nil
}

func (r *Registry) CreateAlias(req *CreateAliasRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.keys[req.TargetKeyID]; !ok {
		return errNotFound("Invalid keyId %s", req.TargetKeyID)
	}
	r.aliases[req.AliasName] = AliasListEntry{
		AliasName:   req.AliasName,
		AliasARN:    awsutil.ARN("kms", r.region, r.account, req.AliasName),
		TargetKeyID: req.TargetKeyID,
	}
	return nil
}

func (r *Registry) DeleteAlias(req *DeleteAliasRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.aliases[req.AliasName]; !ok {
		return errNotFound("Alias %s not found", req.AliasName)
	}
	delete(r.aliases, req.AliasName)
	return nil
}

func (r *Registry) ListAliases(req *ListAliasesRequest) (*ListAliasesResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	aliases := make([]AliasListEntry, 0, len(r.aliases))
	for _, alias := range r.aliases {
		if req.KeyID != "" && alias.TargetKeyID != req.KeyID {
			continue
		}
		aliases = append(aliases, alias)
	}
	sort.Slice(aliases, func(i, j int) bool { return aliases[i].AliasName < aliases[j].AliasName })
	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	truncated := len(aliases) > limit
	if truncated {
		aliases = aliases[:limit]
	}
	return &ListAliasesResponse{Aliases: aliases, Truncated: truncated}, nil
}

func (r *Registry) GetKeyPolicy(req *GetKeyPolicyRequest) (*GetKeyPolicyResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return nil, err
	}
	return &GetKeyPolicyResponse{Policy: k.policy}, nil
}

func (r *Registry) PutKeyPolicy(req *PutKeyPolicyRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	k, err := r.resolveKey(req.KeyID)
	if err != nil {
		return err
	}
	k.policy = req.Policy
	return nil
}
