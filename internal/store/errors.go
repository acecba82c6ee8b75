package store

import (
	"git.home.luguber.info/inful/semcheck/internal/foundation/errors"
)

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.NotFoundError("record not found").Build()

	// ErrEmailTaken indicates a user with the same email already exists.
	ErrEmailTaken = errors.AlreadyExistsError("email already registered").Build()

	// ErrDatabaseOpenFailed indicates the SQLite database could not be opened.
	ErrDatabaseOpenFailed = errors.StorageError("could not open database").Build()

	// ErrInitializeSchemaFailed indicates the database schema could not be initialized.
	ErrInitializeSchemaFailed = errors.StorageError("failed to initialize database schema").Build()
)

// wrapAs wraps err so that errors.Is(result, sentinel) holds.
func wrapAs(sentinel *errors.ClassifiedError, err error) error {
	return errors.WrapError(err, sentinel.Category(), sentinel.Message()).
		WithSeverity(sentinel.Severity()).
		Build()
}

func storageErr(err error, message string) error {
	return errors.WrapError(err, errors.CategoryStorage, message).Build()
}
