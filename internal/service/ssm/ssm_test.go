package ssm

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/wire"
)

func TestPutAndGetParameter(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")

	put, err := r.PutParameter(&PutParameterRequest{Name: "/app/db-host", Value: "localhost"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), put.Version)
	assert.Equal(t, "Standard", put.Tier)

	got, err := r.GetParameter(&GetParameterRequest{Name: "/app/db-host"})
	require.NoError(t, err)
	assert.Equal(t, "localhost", got.Parameter.Value)
	assert.Equal(t, "String", got.Parameter.Type)
	assert.Equal(t, "arn:aws:ssm:us-east-1:000000000000:parameter/app/db-host", got.Parameter.ARN)

	_, err = r.GetParameter(&GetParameterRequest{Name: "/app/missing"})
	assert.Equal(t, "ParameterNotFound", wire.AsAPIError(err).Code)
}

func TestOverwriteBumpsVersion(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.PutParameter(&PutParameterRequest{Name: "key", Value: "v1"})
	require.NoError(t, err)

	_, err = r.PutParameter(&PutParameterRequest{Name: "key", Value: "v2"})
	assert.Equal(t, "ParameterAlreadyExists", wire.AsAPIError(err).Code)

	put, err := r.PutParameter(&PutParameterRequest{Name: "key", Value: "v2", Overwrite: true})
	require.NoError(t, err)
	assert.Equal(t, int64(2), put.Version)

	got, err := r.GetParameter(&GetParameterRequest{Name: "key"})
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Parameter.Value)
}

func TestSecureStringMarker(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.PutParameter(&PutParameterRequest{
		Name: "/app/secret", Value: "hunter2", Type: "SecureString",
	})
	require.NoError(t, err)

	masked, err := r.GetParameter(&GetParameterRequest{Name: "/app/secret"})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(masked.Parameter.Value, "stratus:v1:"))
	assert.NotContains(t, masked.Parameter.Value, "hunter2")

	plain, err := r.GetParameter(&GetParameterRequest{Name: "/app/secret", WithDecryption: true})
	require.NoError(t, err)
	assert.Equal(t, "hunter2", plain.Parameter.Value)
}

func TestGetParametersBestEffort(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.PutParameter(&PutParameterRequest{Name: "a", Value: "1"})
	require.NoError(t, err)

	resp, err := r.GetParameters(&GetParametersRequest{Names: []string{"a", "b"}})
	require.NoError(t, err)
	require.Len(t, resp.Parameters, 1)
	assert.Equal(t, "a", resp.Parameters[0].Name)
	assert.Equal(t, []string{"b"}, resp.InvalidParameters)
}

func TestGetParametersByPath(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	for name, value := range map[string]string{
		"/app/db/host":     "localhost",
		"/app/db/port":     "5432",
		"/app/db/ro/host":  "replica",
		"/app/cache/host":  "redis",
		"/other/unrelated": "x",
	} {
		_, err := r.PutParameter(&PutParameterRequest{Name: name, Value: value})
		require.NoError(t, err)
	}

	direct, err := r.GetParametersByPath(&GetParametersByPathRequest{Path: "/app/db"})
	require.NoError(t, err)
	require.Len(t, direct.Parameters, 2)
	assert.Equal(t, "/app/db/host", direct.Parameters[0].Name)
	assert.Equal(t, "/app/db/port", direct.Parameters[1].Name)

	recursive, err := r.GetParametersByPath(&GetParametersByPathRequest{Path: "/app", Recursive: true})
	require.NoError(t, err)
	assert.Len(t, recursive.Parameters, 4)

	limited, err := r.GetParametersByPath(&GetParametersByPathRequest{
		Path: "/app", Recursive: true, MaxResults: 2,
	})
	require.NoError(t, err)
	assert.Len(t, limited.Parameters, 2)
	assert.Equal(t, "next", limited.NextToken)
}

func TestDeleteParameters(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.PutParameter(&PutParameterRequest{Name: "a", Value: "1"})
	require.NoError(t, err)

	resp, err := r.DeleteParameters(&DeleteParametersRequest{Names: []string{"a", "b"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a"}, resp.DeletedParameters)
	assert.Equal(t, []string{"b"}, resp.InvalidParameters)

	err = r.DeleteParameter(&DeleteParameterRequest{Name: "a"})
	assert.Equal(t, "ParameterNotFound", wire.AsAPIError(err).Code)
}

func TestDescribeParametersAndTags(t *testing.T) {
	r := NewRegistry("us-east-1", "000000000000")
	_, err := r.PutParameter(&PutParameterRequest{
		Name: "b", Value: "2", Description: "second", Tags: []Tag{{Key: "env", Value: "test"}},
	})
	require.NoError(t, err)
	_, err = r.PutParameter(&PutParameterRequest{Name: "a", Value: "1"})
	require.NoError(t, err)

	described, err := r.DescribeParameters(&DescribeParametersRequest{})
	require.NoError(t, err)
	require.Len(t, described.Parameters, 2)
	assert.Equal(t, "a", described.Parameters[0].Name)
	assert.Equal(t, "second", described.Parameters[1].Description)

	require.NoError(t, r.AddTagsToResource(&AddTagsToResourceRequest{
		ResourceType: "Parameter", ResourceID: "b", Tags: []Tag{{Key: "team", Value: "core"}},
	}))
	listed, err := r.ListTagsForResource(&ListTagsForResourceRequest{
		ResourceType: "Parameter", ResourceID: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "env", Value: "test"}, {Key: "team", Value: "core"}}, listed.TagList)

	require.NoError(t, r.RemoveTagsFromResource(&RemoveTagsFromResourceRequest{
		ResourceType: "Parameter", ResourceID: "b", TagKeys: []string{"env"},
	}))
	listed, err = r.ListTagsForResource(&ListTagsForResourceRequest{
		ResourceType: "Parameter", ResourceID: "b",
	})
	require.NoError(t, err)
	assert.Equal(t, []Tag{{Key: "team", Value: "core"}}, listed.TagList)
}
