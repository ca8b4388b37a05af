// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

// IndexWeights maps integer indexes to weights. JSON object keys are
// strings; the binder parses them as integers and accepts numeric strings
// as weights, reporting bad keys at "__key__" and bad weights at their key.
type IndexWeights map[int]float64
