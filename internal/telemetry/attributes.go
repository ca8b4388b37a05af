// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
)

// Attribute keys.
const (
	ServiceNameKey    = "service.name"
	ServiceVersionKey = "service.version"

	HTTPMethodKey     = "http.method"
	HTTPStatusCodeKey = "http.status_code"
	HTTPRouteKey      = "http.route"

	CatalogOperationKey = "catalog.operation"
	CatalogBackendKey   = "catalog.store_backend"
	CatalogCacheHitKey  = "catalog.cache_hit"

	ValidationErrorsKey = "validation.errors"

	ErrorKey     = "error"
	ErrorTypeKey = "error.type"
)

// HTTPAttributes describes a handled request.
func HTTPAttributes(method, route string, statusCode int) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.String(HTTPMethodKey, method),
		attribute.String(HTTPRouteKey, route),
		attribute.Int(HTTPStatusCodeKey, statusCode),
	}
}

// CatalogAttributes describes a catalog operation.
func CatalogAttributes(operation, backend string) []attribute.KeyValue {
	attrs := []attribute.KeyValue{attribute.String(CatalogOperationKey, operation)}
	if backend != "" {
		attrs = append(attrs, attribute.String(CatalogBackendKey, backend))
	}
	return attrs
}

// ValidationAttributes records how many field errors a request produced.
func ValidationAttributes(count int) []attribute.KeyValue {
	return []attribute.KeyValue{attribute.Int(ValidationErrorsKey, count)}
}

// ErrorAttributes marks a span as failed with a classified error type.
func ErrorAttributes(_ error, errorType string) []attribute.KeyValue {
	return []attribute.KeyValue{
		attribute.Bool(ErrorKey, true),
		attribute.String(ErrorTypeKey, errorType),
	}
}
