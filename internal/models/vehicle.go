// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

// Vehicle is either a car or a plane; only planes have a size.
type Vehicle struct {
	Description string      `json:"description" validate:"required"`
	Type        VehicleType `json:"type" validate:"required,oneof=car plane"`
	Size        *int        `json:"size,omitempty"`
}
