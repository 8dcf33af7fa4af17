package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

func TestCreateAndGetSecret(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	created, err := r.CreateSecret(&CreateSecretRequest{
		Name:         "db/password",
		SecretString: "hunter2",
		Description:  "database password",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(created.ARN,
		"arn:aws:secretsmanager:us-east-1:000000000000:secret:db/password-"))
	assert.NotEmpty(t, created.VersionID)

	_, err = r.CreateSecret(&CreateSecretRequest{Name: "db/password"})
	assert.Equal(t, "ResourceExistsException", wire.AsAPIError(err).Code)

	got, err := r.GetSecretValue(&GetSecretValueRequest{SecretID: "db/password"})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", got.SecretString)
	assert.Equal(t, created.VersionID, got.VersionID)
	assert.Equal(t, []string{"AWSCURRENT"}, got.VersionStages)

	// Lookup by ARN works too.
	byARN, err := r.GetSecretValue(&GetSecretValueRequest{SecretID: created.ARN})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", byARN.SecretString)
}

func TestPutSecretValueRotatesStages(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	created, err := r.CreateSecret(&CreateSecretRequest{Name: "api-key", SecretString: "v1"})
	require.NoError(t, err)

	put, err := r.PutSecretValue(&PutSecretValueRequest{SecretID: "api-key", SecretString: "v2"})
	require.NoError(t, err)
	assert.Equal(t, []string{"AWSCURRENT"}, put.VersionStages)

	current, err := r.GetSecretValue(&GetSecretValueRequest{SecretID: "api-key"})
	require.NoError(t, err)
	assert.Equal(t, "v2", current.SecretString)

	previous, err := r.GetSecretValue(&GetSecretValueRequest{
		SecretID: "api-key", VersionStage: "AWSPREVIOUS",
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", previous.SecretString)
	assert.Equal(t, created.VersionID, previous.VersionID)

	byVersion, err := r.GetSecretValue(&GetSecretValueRequest{
		SecretID: "api-key", VersionID: created.VersionID,
	})
	require.NoError(t, err)
	assert.Equal(t, "v1", byVersion.SecretString)

	listed, err := r.ListSecretVersionIDs(&ListSecretVersionIDsRequest{SecretID: "api-key"})
	require.NoError(t, err)
	assert.Len(t, listed.Versions, 2)
}

func TestUpdateSecret(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.CreateSecret(&CreateSecretRequest{Name: "token", SecretString: "old"})
	require.NoError(t, err)

	updated, err := r.UpdateSecret(&UpdateSecretRequest{
		SecretID: "token", SecretString: "new", Description: "rotated",
	})
	require.NoError(t, err)

	desc, err := r.DescribeSecret(&DescribeSecretRequest{SecretID: "token"})
	require.NoError(t, err)
	assert.Equal(t, "rotated", desc.Description)
	assert.Contains(t, desc.VersionIDsToStages, updated.VersionID)
	assert.Equal(t, []string{"AWSCURRENT"}, desc.VersionIDsToStages[updated.VersionID])

	got, err := r.GetSecretValue(&GetSecretValueRequest{SecretID: "token"})
	require.NoError(t, err)
	assert.Equal(t, "new", got.SecretString)
}

func TestScheduledDeletionAndRestore(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.CreateSecret(&CreateSecretRequest{Name: "doomed", SecretString: "x"})
	require.NoError(t, err)

	deleted, err := r.DeleteSecret(&DeleteSecretRequest{SecretID: "doomed"})
	require.NoError(t, err)
	assert.Greater(t, deleted.DeletionDate, float64(0))

	_, err = r.GetSecretValue(&GetSecretValueRequest{SecretID: "doomed"})
	assert.Equal(t, "InvalidRequestException", wire.AsAPIError(err).Code)

	// Scheduled secrets drop out of listings but remain describable.
	listed, err := r.ListSecrets(&ListSecretsRequest{})
	require.NoError(t, err)
	assert.Empty(t, listed.SecretList)

	_, err = r.RestoreSecret(&RestoreSecretRequest{SecretID: "doomed"})
	require.NoError(t, err)
	got, err := r.GetSecretValue(&GetSecretValueRequest{SecretID: "doomed"})
	require.NoError(t, err)
	assert.Equal(t, "x", got.SecretString)
}

func TestForceDeleteRemovesImmediately(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.CreateSecret(&CreateSecretRequest{Name: "gone", SecretString: "x"})
	require.NoError(t, err)

	_, err = r.DeleteSecret(&DeleteSecretRequest{SecretID: "gone", ForceDeleteWithoutRecovery: true})
	require.NoError(t, err)

	_, err = r.DescribeSecret(&DescribeSecretRequest{SecretID: "gone"})
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestSecretTags(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.CreateSecret(&CreateSecretRequest{
		Name: "tagged", SecretString: "x", Tags: []Tag{{Key: "env", Value: "test"}},
	})
	require.NoError(t, err)

	require.NoError(t, r.TagResource(&TagResourceRequest{
		SecretID: "tagged", Tags: []Tag{{Key: "team", Value: "core"}},
	}))
	desc, err := r.DescribeSecret(&DescribeSecretRequest{SecretID: "tagged"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}}, desc.Tags)

	require.NoError(t, r.UntagResource(&UntagResourceRequest{SecretID: "tagged", TagKeys: []string{"env"}}))
	desc, err = r.DescribeSecret(&DescribeSecretRequest{SecretID: "tagged"})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "team", Value: "core"}}, desc.Tags)
}
