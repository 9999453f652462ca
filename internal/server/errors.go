// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package server

import "errors"

// errNoServersAreCreated is returned when no transport has both an address
// and a handler.
var errNoServersAreCreated = errors.New("no servers are created")
