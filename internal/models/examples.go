// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

package models

// Example is a named request payload shown in the API documentation.
type Example struct {
	Summary     string
	Description string
	Value       any
}

// ItemExample is the canonical item payload.
var ItemExample = map[string]any{
	"name":        "keyboard",
	"description": "A very nice keyboard.",
	"price":       7900,
	"tax":         0.2,
	"tags":        []string{"Cherry MX Red", "RGB", "Mechanical"},
	"images": []map[string]string{
		{"name": "Front view", "url": "https://via.placeholder.com/640x360"},
		{"name": "Switch", "url": "https://via.placeholder.com/640x360"},
	},
}

// CreateItemExamples documents accepted and rejected create payloads.
var CreateItemExamples = map[string]Example{
	"normal": {
		Summary:     "A normal example",
		Description: "A **normal** item works correctly.",
		Value: map[string]any{
			"name":        "Foo",
			"description": "A very nice Item",
			"price":       3540,
			"tax":         3.2,
		},
	},
	"converted": {
		Summary:     "An example with converted data",
		Description: "Price `strings` are converted to `numbers` automatically.",
		Value: map[string]any{
			"name":  "Bar",
			"price": "3540",
		},
	},
	"invalid": {
		Summary: "Invalid data is rejected with an error",
		Value: map[string]any{
			"name":  "Baz",
			"price": "thirty five point four",
		},
	},
}
