// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks inbound record payloads and credentials before
// they reach the services.
//
// Record bodies are validated against an embedded JSON schema; callers can
// name extra fields (id, last edit) to enforce operation-specific rules.
package validators

import "context"

// Validator validates an arbitrary input value.
type Validator interface {

	// Validate validates the provided input and optionally
	// restricts validation to specific named fields.
	Validate(context.Context, any, ...string) error
}
