// Package handler implements the webofworlds HTTP API.
//
// RunHandler serves stored runs: listing, metadata, the renderer graph,
// deletion, export in any codec format and the graph database mirror status.
// Errors are returned as JSON with an {error, details} body and a matching
// status code.
//
// The /events endpoint streams run lifecycle events over Server-Sent Events.
//
// Middleware provides request logging, panic recovery and CORS.
package handler
