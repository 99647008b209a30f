// Package errs defines the error shapes the HTTP API returns.
//
// Every failure that reaches a client is an *HTTPError, so responses
// always carry the same JSON body:
//
//	{ "code": "NOT_FOUND", "message": "Workflow not found", "status": 404, ... }
//
// Validation failures additionally list per-field errors.
package errs
