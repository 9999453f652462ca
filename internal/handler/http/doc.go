// Package http implements the REST transport of the sync server.
//
// Routes cover registration and login, paged record reads with a
// watermark-based 304, record writes with last-writer-wins conflict answers
// (409 with the stored record) and the websocket push channel. Tracing,
// access logging, authentication and compression are middleware.
package http
