// Package service contains the business logic.
//
// It sits between the handlers (or CLI commands) and the repositories.
// Each operation validates its input, opens its own Unit of Work and runs
// the repository calls inside it, so nothing outlives a single call.
package service
