// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

import (
	"time"

	"github.com/ManuGH/paramlab/internal/params"
)

// Offer bundles items under one price.
type Offer struct {
	ID            *params.UUID      `json:"id" validate:"required" example:"3fa85f64-5717-4562-b3fc-2c963f66afa6"`
	Name          string            `json:"name" validate:"required" example:"Keyboard, mouse pack"`
	Description   *string           `json:"description" example:"This pack includes..."`
	Price         *params.FlexFloat `json:"price" validate:"required" example:"35000"`
	Items         []Item            `json:"items" validate:"required,dive"`
	StartDatetime *params.DateTime  `json:"start_datetime"`
	EndDatetime   *params.DateTime  `json:"end_datetime"`
	RepeatAt      *params.TimeOfDay `json:"repeat_at"`
}

// Duration is the time between start and end, when both are set.
func (o Offer) Duration() (time.Duration, bool) {
	if o.StartDatetime == nil || o.EndDatetime == nil {
		return 0, false
	}
	return o.EndDatetime.Sub(o.StartDatetime.Time), true
}
