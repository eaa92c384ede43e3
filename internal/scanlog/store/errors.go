package store

import (
	"github.com/cockroachdb/errors"
)

// StorageError reports an Append or QueryRange that did not reach the
// medium. Callers treat the scan as observed but not recorded.
type StorageError struct {
	Op  string // "append" | "query_range"
	err error
}

func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, err: errors.Wrap(err, op)}
}

func (e *StorageError) Error() string {
	return "storage error: " + e.err.Error()
}

func (e *StorageError) Unwrap() error {
	return e.err
}

func IsStorageError(err error) bool {
	var e *StorageError
	return errors.As(err, &e)
}
