// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package models holds the request and response schemas of the API.
package models

// ModelName names a machine learning model.
type ModelName string

const (
	ModelAlexnet ModelName = "alexnet"
	ModelResnet  ModelName = "resnet"
	ModelLenet   ModelName = "lenet"
)

// EnumValues implements params.Enum.
func (ModelName) EnumValues() []string {
	return []string{string(ModelAlexnet), string(ModelResnet), string(ModelLenet)}
}

// Message is the blurb returned for a model.
func (m ModelName) Message() string {
	switch m {
	case ModelAlexnet:
		return "Deep Learning FTW!"
	case ModelLenet:
		return "LeCNN all the images"
	default:
		return "Have some residuals"
	}
}

// VehicleType distinguishes the vehicle variants.
type VehicleType string

const (
	VehicleCar   VehicleType = "car"
	VehiclePlane VehicleType = "plane"
)
