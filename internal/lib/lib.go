// Package lib holds helpers that do not belong to a specific layer.
package lib
