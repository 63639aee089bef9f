// Package client contains the client-side API contract for SecurePass and
// its HTTP implementation.
//
// # Overview
//
// Client lists the calls the CLI makes: Register/Login/Logout, Ping, and the
// vault operations List/Add/Delete/Backup. HTTPClient implements it against
// the JSON API and keeps the bearer token for the session in memory only.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable; 401 and 404 answers wrap
// ErrUnauthorized and ErrNotFound. Every other non-2xx answer is an
// *APIError carrying the server's error envelope, including per-field
// validation details.
package client
