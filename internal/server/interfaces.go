package server

// Server is a runnable transport.
type Server interface {
	// RunServer serves until a termination signal arrives.
	RunServer()

	// Shutdown stops accepting connections and closes open push channels.
	Shutdown()
}
