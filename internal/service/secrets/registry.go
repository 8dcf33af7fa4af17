package secrets

import (
	"net/http"
	"sort"
	"sync"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

const (
	stageCurrent  = "AWSCURRENT"
	stagePrevious = "AWSPREVIOUS"
)

func errNotFound(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceNotFoundException", http.StatusBadRequest, format, args...)
}

func errExists(format string, args ...any) *wire.APIError {
	return wire.NewError("ResourceExistsException", http.StatusBadRequest, format, args...)
}

func errInvalidRequest(format string, args ...any) *wire.APIError {
	return wire.NewError("InvalidRequestException", http.StatusBadRequest, format, args...)
}

type version struct {
	id           string
	secretString string
	secretBinary string
	stages       []string
	createdSecs  float64
}

type secret struct {
	name        string
	arn         string
	description string
	kmsKeyID    string
	tags        map[string]string
	versions    []*version
	currentID   string
	createdSecs float64
	changedSecs float64
	deleted     bool
}

// Registry holds secrets with their staged version history. The ARN carries
// the random six-character suffix real secret ARNs have.
type Registry struct {
	mu      sync.Mutex
	region  string
	account string

	secrets map[string]*secret
}

func NewRegistry(region, account string) *Registry {
	return &Registry{region: region, account: account, secrets: map[string]*secret{}}
}

func nowEpoch() float64 {
	return float64(awsutil.NowMillis()) / 1000
}

// resolve accepts either a secret name or its full ARN.
func (r *Registry) resolve(secretID string) (*secret, error) {
	if s, ok := r.secrets[secretID]; ok {
		return s, nil
	}
	for _, s := range r.secrets {
		if s.arn == secretID {
			return s, nil
		}
	}
	return nil, errNotFound(
		"Secrets Manager can't find the specified secret: %s for account %s", secretID, r.account)
}

// demoteCurrent drops AWSCURRENT from every version, relabeling versions
// left stageless as AWSPREVIOUS.
func (s *secret) demoteCurrent() {
	for _, v := range s.versions {
		kept := v.stages[:0]
		for _, stage := range v.stages {
			if stage != stageCurrent {
				kept = append(kept, stage)
			}
		}
		v.stages = kept
		if len(v.stages) == 0 {
			v.stages = []string{stagePrevious}
		}
	}
}

func (r *Registry) CreateSecret(req *CreateSecretRequest) (*CreateSecretResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.secrets[req.Name]; ok {
		return nil, errExists("Secret %s already exists", req.Name)
	}
	now := nowEpoch()
	versionID := awsutil.NewID()
	s := &secret{
		name:        req.Name,
		arn:         awsutil.ARN("secretsmanager", r.region, r.account, "secret:"+req.Name+"-"+awsutil.NewID()[:6]),
		description: req.Description,
		kmsKeyID:    req.KMSKeyID,
		tags:        map[string]string{},
		versions: []*version{{
			id:           versionID,
			secretString: req.SecretString,
			secretBinary: req.SecretBinary,
			stages:       []string{stageCurrent},
			createdSecs:  now,
		}},
		currentID:   versionID,
		createdSecs: now,
		changedSecs: now,
	}
	for _, tag := range req.Tags {
		s.tags[tag.Key] = tag.Value
	}
	r.secrets[req.Name] = s
	return &CreateSecretResponse{ARN: s.arn, Name: s.name, VersionID: versionID}, nil
}

func (r *Registry) GetSecretValue(req *GetSecretValueRequest) (*GetSecretValueResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	if s.deleted {
		return nil, errInvalidRequest("Secret is scheduled for deletion")
	}
	var found *version
	switch {
	case req.VersionID != "":
		for _, v := range s.versions {
			if v.id == req.VersionID {
				found = v
				break
			}
		}
		if found == nil {
			return nil, errNotFound("Version not found")
		}
	default:
		stage := req.VersionStage
		if stage == "" {
			stage = stageCurrent
		}
		for _, v := range s.versions {
			for _, vs := range v.stages {
				if vs == stage {
					found = v
					break
				}
			}
			if found != nil {
				break
			}
		}
		if found == nil {
			return nil, errNotFound("Version stage not found")
		}
	}
	return &GetSecretValueResponse{
		ARN:           s.arn,
		Name:          s.name,
		VersionID:     found.id,
		SecretString:  found.secretString,
		SecretBinary:  found.secretBinary,
		VersionStages: found.stages,
		CreatedDate:   found.createdSecs,
	}, nil
}

func (r *Registry) PutSecretValue(req *PutSecretValueRequest) (*PutSecretValueResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	versionID := req.ClientRequestToken
	if versionID == "" {
		versionID = awsutil.NewID()
	}
	stages := req.VersionStages
	if len(stages) == 0 {
		stages = []string{stageCurrent}
	}
	s.demoteCurrent()
	now := nowEpoch()
	s.versions = append(s.versions, &version{
		id:           versionID,
		secretString: req.SecretString,
		secretBinary: req.SecretBinary,
		stages:       stages,
		createdSecs:  now,
	})
	s.currentID = versionID
	s.changedSecs = now
	return &PutSecretValueResponse{
		ARN: s.arn, Name: s.name, VersionID: versionID, VersionStages: stages,
	}, nil
}

func (r *Registry) DescribeSecret(req *DescribeSecretRequest) (*DescribeSecretResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	stages := make(map[string][]string, len(s.versions))
	for _, v := range s.versions {
		stages[v.id] = v.stages
	}
	return &DescribeSecretResponse{
		ARN:                s.arn,
		Name:               s.name,
		Description:        s.description,
		KMSKeyID:           s.kmsKeyID,
		Tags:               sortedTags(s.tags),
		CreatedDate:        s.createdSecs,
		LastChangedDate:    s.changedSecs,
		VersionIDsToStages: stages,
	}, nil
}

func (r *Registry) ListSecrets(req *ListSecretsRequest) (*ListSecretsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	entries := make([]SecretListEntry, 0, len(r.secrets))
	for _, s := range r.secrets {
		if s.deleted {
			continue
		}
		entries = append(entries, SecretListEntry{
			ARN:             s.arn,
			Name:            s.name,
			Description:     s.description,
			CreatedDate:     s.createdSecs,
			LastChangedDate: s.changedSecs,
			Tags:            sortedTags(s.tags),
		})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	limit := req.MaxResults
	if limit <= 0 {
		limit = 100
	}
	resp := &ListSecretsResponse{SecretList: entries}
	if len(entries) > limit {
		resp.SecretList = entries[:limit]
		resp.NextToken = "next"
	}
	return resp, nil
}

func (r *Registry) UpdateSecret(req *UpdateSecretRequest) (*UpdateSecretResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	if req.Description != "" {
		s.description = req.Description
	}
	if req.KMSKeyID != "" {
		s.kmsKeyID = req.KMSKeyID
	}
	now := nowEpoch()
	versionID := s.currentID
	if req.SecretString != "" || req.SecretBinary != "" {
		versionID = awsutil.NewID()
		s.demoteCurrent()
		s.versions = append(s.versions, &version{
			id:           versionID,
			secretString: req.SecretString,
			secretBinary: req.SecretBinary,
			stages:       []string{stageCurrent},
			createdSecs:  now,
		})
		s.currentID = versionID
	}
	s.changedSecs = now
	return &UpdateSecretResponse{ARN: s.arn, Name: s.name, VersionID: versionID}, nil
}

// DeleteSecret marks the secret as scheduled for deletion unless force is
// requested; restore undoes the schedule.
func (r *Registry) DeleteSecret(req *DeleteSecretRequest) (*DeleteSecretResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	days := req.RecoveryWindowInDays
	if days <= 0 {
		days = 30
	}
	deletionDate := nowEpoch() + float64(days)*86400
	if req.ForceDeleteWithoutRecovery {
		delete(r.secrets, s.name)
	} else {
		s.deleted = true
	}
	return &DeleteSecretResponse{ARN: s.arn, Name: s.name, DeletionDate: deletionDate}, nil
}

func (r *Registry) RestoreSecret(req *RestoreSecretRequest) (*RestoreSecretResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	s.deleted = false
	return &RestoreSecretResponse{ARN: s.arn, Name: s.name}, nil
}

func (r *Registry) TagResource(req *TagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return err
	}
	for _, tag := range req.Tags {
		s.tags[tag.Key] = tag.Value
	}
	return nil
}

func (r *Registry) UntagResource(req *UntagResourceRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return err
	}
	for _, k := range req.TagKeys {
		delete(s.tags, k)
	}
	return nil
}

func (r *Registry) ListSecretVersionIDs(req *ListSecretVersionIDsRequest) (*ListSecretVersionIDsResponse, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, err := r.resolve(req.SecretID)
	if err != nil {
		return nil, err
	}
	resp := &ListSecretVersionIDsResponse{ARN: s.arn, Name: s.name}
	for _, v := range s.versions {
		resp.Versions = append(resp.Versions, SecretVersionEntry{
			VersionID:     v.id,
			VersionStages: v.stages,
			CreatedDate:   v.createdSecs,
		})
	}
	return resp, nil
}

func sortedTags(tags map[string]string) []Tag {
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]Tag, 0, len(keys))
	for _, k := range keys {
		out = append(out, Tag{Key: k, Value: tags[k]})
	}
	return out
}
