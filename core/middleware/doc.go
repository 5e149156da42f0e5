// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting every route except the documentation.
//   - rayid: a unique request ID (RayID) per request, stored in the context and echoed
//     in the response headers for tracing.
//
// RayID is registered first so every later log line can carry it.
package middleware
