package pipeline

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrTransport means a read or write request could not be completed.
type ErrTransport struct {
	error
	Op string
}

// NewErrTransport wraps err with the operation that could not complete.
func NewErrTransport(op string, err error) *ErrTransport {
	return &ErrTransport{error: errors.Wrap(err, op), Op: op}
}

// Unwrap returns the wrapped cause.
func (e *ErrTransport) Unwrap() error { return e.error }

// ErrUpdateRejected means the platform accepted the write request but
// reported user errors for it.
type ErrUpdateRejected struct {
	error
	ProductID string
	Title     string
	Field     []string
	Message   string
}

// NewErrUpdateRejected reports the first user error of a product write.
func NewErrUpdateRejected(productID, title string, field []string, message string) *ErrUpdateRejected {
	return &ErrUpdateRejected{
		error:     fmt.Errorf("failed to update product %s: %s", title, message),
		ProductID: productID,
		Title:     title,
		Field:     field,
		Message:   message,
	}
}

// ErrBatchAborted is returned by Run when any product failed. Its message is
// the first failure's message. Written lists products whose new description
// was already stored by the platform; those writes are not rolled back.
type ErrBatchAborted struct {
	cause   error
	Written []string
}

// NewErrBatchAborted wraps the first failure of a run.
func NewErrBatchAborted(cause error, written []string) *ErrBatchAborted {
	return &ErrBatchAborted{cause: cause, Written: written}
}

// Error returns the first failure's message unchanged.
func (e *ErrBatchAborted) Error() string { return e.cause.Error() }

// Unwrap returns the first failure.
func (e *ErrBatchAborted) Unwrap() error { return e.cause }
