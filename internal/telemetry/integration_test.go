package telemetry

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func TestMiddlewareTracesRoutes(t *testing.T) {
	exporter := tracetest.NewInMemoryExporter()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSyncer(exporter))
	prevTP, prevProp := otel.GetTracerProvider(), otel.GetTextMapPropagator()
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTP)
		otel.SetTextMapPropagator(prevProp)
		_ = tp.Shutdown(t.Context())
	})

	r := mux.NewRouter()
	r.Use(Middleware(ServiceName))
	ok := func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }
	r.HandleFunc("/", ok).Methods("GET")
	r.HandleFunc("/auth/me", ok).Methods("GET")

	const parentTraceID = "4bf92f3577b34da6a3ce929d0e0e4736"

	tests := []struct {
		name        string
		path        string
		traceParent string
		wantSpan    string
	}{
		{name: "status root", path: "/", wantSpan: "/"},
		{name: "auth route", path: "/auth/me", wantSpan: "/auth/me"},
		{
			name:        "continues incoming trace",
			path:        "/auth/me",
			traceParent: "00-" + parentTraceID + "-00f067aa0ba902b7-01",
			wantSpan:    "/auth/me",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			exporter.Reset()

			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.traceParent != "" {
				req.Header.Set("traceparent", tt.traceParent)
			}
			rr := httptest.NewRecorder()
			r.ServeHTTP(rr, req)
			if rr.Code != http.StatusOK {
				t.Fatalf("Expected 200, got %d", rr.Code)
			}

			spans := exporter.GetSpans()
			if len(spans) != 1 {
				t.Fatalf("Expected one span, got %d", len(spans))
			}
			if !strings.HasSuffix(spans[0].Name, tt.wantSpan) {
				t.Errorf("Span name = %q, want route %q", spans[0].Name, tt.wantSpan)
			}
			if tt.traceParent != "" {
				if got := spans[0].SpanContext.TraceID().String(); got != parentTraceID {
					t.Errorf("Trace ID = %s, want %s", got, parentTraceID)
				}
				if !spans[0].Parent.IsRemote() {
					t.Error("Expected the span parent to be the remote caller")
				}
			}
		})
	}
}
