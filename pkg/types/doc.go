// Package types defines the worker entity model, the field-map and snapshot
// representations shared by display and persistence, the Storage interface
// implemented by every backend, and the standard errors of the roster system.
package types
