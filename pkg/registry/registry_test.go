package registry

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noopHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
}

func TestRegisterAndGet(t *testing.T) {
	r := New("us-east-1", "000000000000")

	require.NoError(t, r.Register("sqs", 9324, noopHandler()))
	require.NoError(t, r.Register("s3", 9000, noopHandler()))

	svc, ok := r.Get("sqs")
	require.True(t, ok)
	assert.Equal(t, 9324, svc.Port)

	_, ok = r.Get("dynamodb")
	assert.False(t, ok)
}

func TestRegisterRejectsDuplicates(t *testing.T) {
	r := New("us-east-1", "000000000000")
	require.NoError(t, r.Register("sqs", 9324, noopHandler()))

	assert.Error(t, r.Register("sqs", 9325, noopHandler()))
	assert.Error(t, r.Register("sns", 9324, noopHandler()))
	assert.Error(t, r.Register("", 9326, noopHandler()))
	assert.Error(t, r.Register("kms", 9327, nil))
}

func TestServicesPreserveOrder(t *testing.T) {
	r := New("us-east-1", "000000000000")
	require.NoError(t, r.Register("s3", 9000, noopHandler()))
	require.NoError(t, r.Register("sns", 9911, noopHandler()))
	require.NoError(t, r.Register("sqs", 9324, noopHandler()))

	services := r.Services()
	require.Len(t, services, 3)
	assert.Equal(t, "s3", services[0].Name)
	assert.Equal(t, "sns", services[1].Name)
	assert.Equal(t, "sqs", services[2].Name)
}

func TestHealthSnapshot(t *testing.T) {
	r := New("eu-west-1", "123456789012")
	require.NoError(t, r.Register("dynamodb", 8000, noopHandler()))

	h := r.Health()
	assert.Equal(t, "ok", h.Status)
	assert.Equal(t, "eu-west-1", h.Region)
	assert.Equal(t, "123456789012", h.Account)
	assert.NotEmpty(t, h.Uptime)
	require.Len(t, h.Services, 1)
	assert.Equal(t, ServiceHealth{Name: "dynamodb", Port: 8000, Status: "up"}, h.Services[0])
}
