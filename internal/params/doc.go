// Copyright (c) 2025 ManuGH
// Licensed under the PolyForm Noncommercial License 1.0.0
// Since v2.0.0, this software is restricted to non-commercial use only.

// Package params binds and validates HTTP request parameters declared with
// struct tags.
//
// A handler declares its inputs as a struct:
//
//	type readKeyboardParams struct {
//	    KeyboardID int     `path:"keyboard_id" validate:"gte=1,lte=999" title:"The ID of the keyboard to get"`
//	    Q          *string `query:"keyboard-query"`
//	}
//
// The field type decides conversion (int, float, bool, string, enums, UUIDs,
// slices for repeated values) and whether the parameter is required:
// non-pointer scalars without a `default` tag are required, pointers and
// slices are optional. `validate` carries go-playground validator rules.
//
// Failures are collected into a *ValidationError whose entries mirror the
// loc/msg/type triplets clients already parse. The same declarations are
// read by the openapi package to document every operation.
package params
