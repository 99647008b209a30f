// Package validation binds request data and turns validator failures
// into field-level 400 responses.
package validation
