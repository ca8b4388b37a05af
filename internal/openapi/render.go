// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package openapi

import (
	"encoding/json"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/oasdiff/yaml"
)

// Rendered holds both encodings of a document.
type Rendered struct {
	Doc  *openapi3.T
	JSON []byte
	YAML []byte
}

// Render encodes doc once so it can be served without re-marshaling.
func Render(doc *openapi3.T) (*Rendered, error) {
	js, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal json: %w", err)
	}
	y, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("openapi: marshal yaml: %w", err)
	}
	return &Rendered{Doc: doc, JSON: js, YAML: y}, nil
}
