// Package api provides the HTTP handlers for the REST surface: auth,
// users and tasks. Handlers decode and validate requests, delegate to the
// service and store layers, and translate errors into sanitized JSON
// responses.
package api
