// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the interactive client application runtime.
//
// It resumes the persisted session, runs the periodic sync worker next to the
// live push merger and blocks in the terminal UI until the user quits or the
// process is signalled. Storage and services are closed on the way out.
package client
