// Package server holds the HTTP server configuration.
//
// The serve command owns the Fiber application; this package only defines the listen port,
// the API key checked by the auth middleware, and the shutdown budget.
package server
