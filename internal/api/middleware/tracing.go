// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package middleware

import (
	"net/http"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/ManuGH/paramlab/internal/telemetry"
)

// Tracing wraps the handler with OpenTelemetry HTTP instrumentation. Spans
// are named after the chi route pattern once routing is done, and after the
// method alone for requests that matched no route.
func Tracing(serviceName string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			rw := &statusRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(rw, r)

			span := trace.SpanFromContext(r.Context())
			if route := RoutePattern(r); route != "" {
				span.SetName(spanName("", r))
				span.SetAttributes(telemetry.HTTPAttributes(r.Method, route, rw.statusCode)...)
			}
		})
		return otelhttp.NewHandler(
			inner,
			serviceName,
			otelhttp.WithTracerProvider(otel.GetTracerProvider()),
			otelhttp.WithSpanOptions(trace.WithAttributes(attribute.String(telemetry.ServiceNameKey, serviceName))),
			otelhttp.WithFilter(shouldTrace),
			otelhttp.WithSpanNameFormatter(spanName),
		)
	}
}

// spanName is also applied by otelhttp after the handler returns whenever
// the request carries a pattern, so it must never fall back to the raw path.
func spanName(_ string, r *http.Request) string {
	if route := RoutePattern(r); route != "" {
		return r.Method + " " + route
	}
	return r.Method
}

// shouldTrace skips probe and scrape endpoints.
func shouldTrace(r *http.Request) bool {
	switch r.URL.Path {
	case "/healthz", "/readyz", "/metrics":
		return false
	}
	return true
}

// ExtractTraceContext returns the trace and span ids of the active span.
func ExtractTraceContext(r *http.Request) (traceID, spanID string) {
	spanCtx := trace.SpanContextFromContext(r.Context())
	if !spanCtx.IsValid() {
		return "", ""
	}
	return spanCtx.TraceID().String(), spanCtx.SpanID().String()
}
