package telemetry

import (
	"context"
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitDisabled(t *testing.T) {
	ctx := context.Background()

	shutdown, err := Init(ctx, Config{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown(ctx))
	assert.False(t, IsEnabled())
}

func TestTracerReturnsNoOp(t *testing.T) {
	tracer = nil
	enabled = false

	require.NotNil(t, Tracer())
}

func TestStartSpan(t *testing.T) {
	ctx := context.Background()

	// Works without initialization (no-op tracer).
	newCtx, span := StartSpan(ctx, "test.operation")
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestStartServiceSpan(t *testing.T) {
	ctx := context.Background()

	newCtx, span := StartServiceSpan(ctx, "sqs", "POST", "/", Action("SendMessage"))
	require.NotNil(t, newCtx)
	require.NotNil(t, span)
	span.End()
}

func TestRecordError(t *testing.T) {
	ctx := context.Background()

	require.NotPanics(t, func() {
		RecordError(ctx, nil)
	})
	require.NotPanics(t, func() {
		RecordError(ctx, errors.New("test error"))
	})
}

func TestTraceID(t *testing.T) {
	assert.Equal(t, "", TraceID(context.Background()))
}

func TestAttributeHelpers(t *testing.T) {
	attr := Service("dynamodb")
	assert.Equal(t, AttrService, string(attr.Key))
	assert.Equal(t, "dynamodb", attr.Value.AsString())

	attr = Action("PutItem")
	assert.Equal(t, AttrAction, string(attr.Key))
	assert.Equal(t, "PutItem", attr.Value.AsString())

	attr = HTTPStatus(400)
	assert.Equal(t, AttrHTTPStatus, string(attr.Key))
	assert.Equal(t, int64(400), attr.Value.AsInt64())
}

func TestInitProfilingDisabled(t *testing.T) {
	shutdown, err := InitProfiling(ProfilingConfig{Enabled: false})
	require.NoError(t, err)
	require.NotNil(t, shutdown)

	assert.NoError(t, shutdown())
	assert.False(t, IsProfilingEnabled())
}

func TestInitProfilingRejectsUnknownType(t *testing.T) {
	_, err := InitProfiling(ProfilingConfig{
		Enabled:      true,
		ProfileTypes: []string{"flamegraph"},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "flamegraph")
}

func TestProfileTypeNames(t *testing.T) {
	names := ProfileTypeNames()
	assert.Contains(t, names, "cpu")
	assert.Contains(t, names, "inuse_space")
	assert.True(t, sort.StringsAreSorted(names))
}
