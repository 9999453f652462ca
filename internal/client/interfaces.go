// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "errors"

// Client defines the minimal lifecycle contract for runnable client
// applications.
type Client interface {
	// Run starts the client application and blocks until exit.
	Run() error
}

var _ Client = (*App)(nil)

// ErrIncompleteApp is returned by [NewApp] when a dependency is missing.
var ErrIncompleteApp = errors.New("client app requires services, ui and workers")
