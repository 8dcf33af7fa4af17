package lambda

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stratuslocal/stratus/internal/awsutil"
	"github.com/stratuslocal/stratus/internal/wire"
)

func newTestRegistry() *Registry {
	return NewRegistry("us-east-1", "000000000000")
}

func createFunction(t *testing.T, r *Registry, name string) *FunctionConfiguration {
	t.Helper()
	cfg, err := r.CreateFunction(&CreateFunctionRequest{
		FunctionName: name,
		Runtime:      "provided.al2023",
		Role:         "arn:aws:iam::000000000000:role/lambda",
		Handler:      "bootstrap",
		Code:         FunctionCode{ZipFile: awsutil.Base64Encode([]byte("zip-bytes"))},
	})
	require.NoError(t, err)
	return cfg
}

func TestCreateFunction(t *testing.T) {
	r := newTestRegistry()
	cfg := createFunction(t, r, "fn")

	assert.Equal(t, "arn:aws:lambda:us-east-1:000000000000:function:fn", cfg.FunctionARN)
	assert.Equal(t, "$LATEST", cfg.Version)
	assert.Equal(t, 3, cfg.Timeout)
	assert.Equal(t, 128, cfg.MemorySize)
	assert.Equal(t, len("zip-bytes"), cfg.CodeSize)
	assert.Equal(t, awsutil.Base64Encode(awsutil.SHA256Raw([]byte("zip-bytes"))), cfg.CodeSha256)

	_, err := r.CreateFunction(&CreateFunctionRequest{FunctionName: "fn"})
	assert.Equal(t, "ResourceConflictException", wire.AsAPIError(err).Code)

	_, err = r.GetFunction("missing")
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestPublishVersionAndAliases(t *testing.T) {
	r := newTestRegistry()
	createFunction(t, r, "fn")

	v1, err := r.PublishVersion("fn", &PublishVersionRequest{})
	require.NoError(t, err)
	assert.Equal(t, "1", v1.Version)
	assert.True(t, strings.HasSuffix(v1.FunctionARN, ":function:fn:1"))

	v2, err := r.PublishVersion("fn", &PublishVersionRequest{Description: "second"})
	require.NoError(t, err)
	assert.Equal(t, "2", v2.Version)
	assert.Equal(t, "second", v2.Description)

	versions, err := r.ListVersions("fn")
	require.NoError(t, err)
	require.Len(t, versions.Versions, 3)
	assert.Equal(t, "$LATEST", versions.Versions[0].Version)

	alias, err := r.CreateAlias("fn", &CreateAliasRequest{Name: "live", FunctionVersion: "1"})
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(alias.AliasARN, ":function:fn:live"))

	_, err = r.CreateAlias("fn", &CreateAliasRequest{Name: "live", FunctionVersion: "2"})
	assert.Equal(t, "ResourceConflictException", wire.AsAPIError(err).Code)

	updated, err := r.UpdateAlias("fn", "live", &UpdateAliasRequest{FunctionVersion: "2"})
	require.NoError(t, err)
	assert.Equal(t, "2", updated.FunctionVersion)

	require.NoError(t, r.DeleteAlias("fn", "live"))
	_, err = r.GetAlias("fn", "live")
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestInvokeTypes(t *testing.T) {
	r := newTestRegistry()
	createFunction(t, r, "fn")

	status, payload, err := r.Invoke("fn", "")
	require.NoError(t, err)
	assert.Equal(t, 200, status)
	assert.Equal(t, "null", payload)

	status, _, err = r.Invoke("fn", "Event")
	require.NoError(t, err)
	assert.Equal(t, 202, status)

	status, _, err = r.Invoke("fn", "DryRun")
	require.NoError(t, err)
	assert.Equal(t, 204, status)

	_, _, err = r.Invoke("missing", "")
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestEventSourceMappings(t *testing.T) {
	r := newTestRegistry()
	createFunction(t, r, "fn")

	cfg, err := r.CreateEventSourceMapping(&CreateEventSourceMappingRequest{
		EventSourceARN: "arn:aws:sqs:us-east-1:000000000000:jobs",
		FunctionName:   "fn",
	})
	require.NoError(t, err)
	assert.Equal(t, "Enabled", cfg.State)
	assert.Equal(t, 10, cfg.BatchSize)

	disabled := false
	size := 5
	updated, err := r.UpdateEventSourceMapping(cfg.UUID, &UpdateEventSourceMappingRequest{
		Enabled: &disabled, BatchSize: &size,
	})
	require.NoError(t, err)
	assert.Equal(t, "Disabled", updated.State)
	assert.Equal(t, 5, updated.BatchSize)

	deleted, err := r.DeleteEventSourceMapping(cfg.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Deleting", deleted.State)
	assert.Empty(t, r.ListEventSourceMappings().EventSourceMappings)
}

func TestPermissionsPolicy(t *testing.T) {
	r := newTestRegistry()
	createFunction(t, r, "fn")

	_, err := r.GetPolicy("fn")
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)

	_, err = r.AddPermission("fn", &AddPermissionRequest{
		StatementID: "sns-invoke",
		Action:      "lambda:InvokeFunction",
		Principal:   "sns.amazonaws.com",
	})
	require.NoError(t, err)

	policy, err := r.GetPolicy("fn")
	require.NoError(t, err)
	var doc struct {
		Statement []PolicyStatement `json:"Statement"`
	}
	require.NoError(t, json.Unmarshal([]byte(policy.Policy), &doc))
	require.Len(t, doc.Statement, 1)
	assert.Equal(t, "sns-invoke", doc.Statement[0].Sid)

	require.NoError(t, r.RemovePermission("fn", "sns-invoke"))
	err = r.RemovePermission("fn", "sns-invoke")
	assert.Equal(t, "ResourceNotFoundException", wire.AsAPIError(err).Code)
}

func TestHandlerRoundTrip(t *testing.T) {
	r := newTestRegistry()
	srv := httptest.NewServer(NewHandler(r))
	defer srv.Close()

	body := `{"FunctionName":"fn","Runtime":"provided.al2023","Role":"r","Handler":"h","Code":{}}`
	resp, err := http.Post(srv.URL+"/2015-03-31/functions", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var cfg FunctionConfiguration
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&cfg))
	assert.Equal(t, "fn", cfg.FunctionName)

	invoke, err := http.Post(srv.URL+"/2015-03-31/functions/fn/invocations", "application/json", strings.NewReader("{}"))
	require.NoError(t, err)
	defer invoke.Body.Close()
	assert.Equal(t, http.StatusOK, invoke.StatusCode)
	assert.Equal(t, "$LATEST", invoke.Header.Get("X-Amz-Executed-Version"))

	missing, err := http.Get(srv.URL + "/2015-03-31/functions/absent")
	require.NoError(t, err)
	defer missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
	assert.Equal(t, "ResourceNotFoundException", missing.Header.Get("X-Amzn-ErrorType"))
}
