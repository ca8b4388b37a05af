// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package metrics holds paramlab's application-level Prometheus metrics.
// HTTP request metrics live with the middleware.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	validationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paramlab_validation_errors_total",
		Help: "Request validation errors by route, parameter location and error type",
	}, []string{"route", "location", "type"})

	rejectedRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paramlab_validation_rejected_requests_total",
		Help: "Requests answered with 422 by route",
	}, []string{"route"})

	configReloads = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "paramlab_config_reloads_total",
		Help: "Configuration reload attempts by outcome",
	}, []string{"outcome"}) // outcome=success|failure

	uploadsStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paramlab_uploads_stored_total",
		Help: "Uploaded files written to the uploads directory",
	})

	uploadBytes = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paramlab_upload_bytes_total",
		Help: "Bytes written to the uploads directory",
	})

	usersRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Name: "paramlab_users_registered_total",
		Help: "Users created through the registration endpoint",
	})
)

// ValidationFailure is one rejected field, reduced to metric labels.
type ValidationFailure struct {
	Location string
	Type     string
}

// RecordValidationFailures counts one 422 response on route and each of its
// field errors.
func RecordValidationFailures(route string, failures []ValidationFailure) {
	if route == "" {
		route = "unmatched"
	}
	rejectedRequests.WithLabelValues(route).Inc()
	for _, f := range failures {
		validationErrors.WithLabelValues(route, f.Location, f.Type).Inc()
	}
}

func RecordConfigReload(success bool) {
	outcome := "success"
	if !success {
		outcome = "failure"
	}
	configReloads.WithLabelValues(outcome).Inc()
}

// RecordUploadStored counts a persisted upload of n bytes.
func RecordUploadStored(n int64) {
	uploadsStored.Inc()
	if n > 0 {
		uploadBytes.Add(float64(n))
	}
}

func IncUserRegistered() { usersRegistered.Inc() }
