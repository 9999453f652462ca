// Package server runs the REST and gRPC transports of the sync server and
// shuts them down on a termination signal.
package server
