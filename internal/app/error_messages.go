// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package app contains shared application-layer constants used across the
// sync server handlers and the client.
//
// All Msg* constants are human-readable message strings that are written into
// HTTP response bodies or log entries to describe the outcome of an operation.
// The client matches on them to tell apart failures that share a status code.
package app

const (
	// MsgInvalidDataProvided is returned when the request body cannot be
	// decoded or fails validation (e.g. missing title).
	MsgInvalidDataProvided = "invalid data provided"

	// MsgInvalidLoginPassword is returned when the supplied login/password
	// combination does not match any existing user.
	MsgInvalidLoginPassword = "invalid login/password"

	MsgInternalServerError = "internal server error"

	// MsgTokenIsExpiredOrInvalid is returned when a bearer token is missing,
	// expired or cannot be verified.
	MsgTokenIsExpiredOrInvalid = "token is expired or invalid"

	// MsgNoUserIDProvided is returned when a handler requires an owner id but
	// none is present in the request context.
	MsgNoUserIDProvided = "no user ID provided"

	// MsgAccessDenied is returned when the authenticated user touches a
	// record of another owner.
	MsgAccessDenied = "access denied"

	MsgRegistrationFailed = "registration failed"
	MsgLoginFailed        = "login failed"

	// MsgLoginAlreadyExists is returned when a registration attempt is
	// rejected because the requested login is already in use.
	MsgLoginAlreadyExists = "login already exists"

	// MsgRecordNotFound is returned when an update or delete targets a
	// record that does not exist.
	MsgRecordNotFound = "record not found"

	// MsgRecordIDMismatch is returned when the record id in the body differs
	// from the id in the path.
	MsgRecordIDMismatch = "record id does not match path"

	// MsgInvalidPage is returned for a page number that is not a positive
	// integer.
	MsgInvalidPage = "invalid page"

	// MsgVersionIsNotSpecified is returned when the server was started
	// without a build version.
	MsgVersionIsNotSpecified = "version is not specified"
)
