// Package errors provides the classified error primitives used across semcheck.
//
// Key features:
//   - ErrorCategory: broad classification (config, validation, auth, parse, storage, ...)
//   - ErrorSeverity: impact level (fatal, error, warning, info)
//   - ClassifiedError: structured error with category, severity and context
//   - ErrorBuilder: fluent API for creating classified errors
//   - HTTP and CLI adapters mapping categories to status codes and exit codes
//
// Example usage:
//
//	err := errors.WrapError(cause, errors.CategoryStorage, "save analysis failed").
//		WithContext("analysis_id", id).
//		Build()
package errors
