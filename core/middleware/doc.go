// Package middleware contains HTTP middleware for the Fiber application.
//
// # Components
//
//   - auth: API key validation protecting the sync endpoints.
//   - rayid: assigns every request a RayID, stored in the fiber locals and echoed in
//     the X-Ray-ID response header for tracing.
package middleware
