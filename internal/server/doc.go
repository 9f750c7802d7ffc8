// Package server implements the HTTP server and handlers for the careers
// backend: account registration and login, bearer-token authentication,
// candidature submission with CV upload, and read-only CV retrieval. It
// wires together the HTTP routes and their dependencies (database, content
// store), and provides lifecycle helpers used by tests and the production
// binary.
package server
