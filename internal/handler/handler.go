// Package handler is the HTTP entry point after the router.
//
// Handlers bind and validate requests with the validation package, call
// the service layer and write the response.
package handler
