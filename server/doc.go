// Package server is the nanodraw relay: a Gin engine served over HTTP/1.1
// and h2c that lets a browser drive generations without holding the API key.
//
// # Middleware
//
// Built-in middleware (server/middleware):
//
//   - Recovery: panic recovery with structured logging
//   - RequestID: request ID generation and propagation
//   - RequestLogger: request logging with duration
//   - Auth: HS256 bearer tokens, enabled by server.auth.secret
//
// # Endpoints
//
// Routes (server/endpoint):
//
//   - POST /generate: progress relayed as Server-Sent Events, then one result or error event
//   - POST /api/result: task lookup by id
//   - GET /health: component health aggregation
//   - GET /info: build information
package server
