package telemetry

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// Attribute keys used across service spans.
const (
	AttrService    = "stratus.service"
	AttrAction     = "stratus.action"
	AttrHTTPMethod = "http.request.method"
	AttrHTTPPath   = "url.path"
	AttrHTTPStatus = "http.response.status_code"
	AttrClientAddr = "client.address"
)

// Service returns an attribute for the emulated service name.
func Service(name string) attribute.KeyValue {
	return attribute.String(AttrService, name)
}

// Action returns an attribute for the dispatched API action.
func Action(name string) attribute.KeyValue {
	return attribute.String(AttrAction, name)
}

// HTTPMethod returns an attribute for the request method.
func HTTPMethod(method string) attribute.KeyValue {
	return attribute.String(AttrHTTPMethod, method)
}

// HTTPPath returns an attribute for the request path.
func HTTPPath(path string) attribute.KeyValue {
	return attribute.String(AttrHTTPPath, path)
}

// HTTPStatus returns an attribute for the response status code.
func HTTPStatus(code int) attribute.KeyValue {
	return attribute.Int(AttrHTTPStatus, code)
}

// ClientAddr returns an attribute for the remote address.
func ClientAddr(addr string) attribute.KeyValue {
	return attribute.String(AttrClientAddr, addr)
}

// StartServiceSpan starts a server span for one emulated-service request.
func StartServiceSpan(ctx context.Context, service, method, path string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	all := append([]attribute.KeyValue{
		Service(service),
		HTTPMethod(method),
		HTTPPath(path),
	}, attrs...)
	return StartSpan(ctx, service+" "+method,
		trace.WithSpanKind(trace.SpanKindServer),
		trace.WithAttributes(all...),
	)
}
