package services

import (
	"errors"
	"fmt"
)

// Sentinel errors for the common not-found cases.
var (
	ErrMaterialNotFound   = &NotFoundError{Resource: "study_material"}
	ErrDocumentNotFound   = &NotFoundError{Resource: "document"}
	ErrExamResultNotFound = &NotFoundError{Resource: "exam_result"}
	ErrPostNotFound       = &NotFoundError{Resource: "post"}
	ErrCommentNotFound    = &NotFoundError{Resource: "comment"}
	ErrProfileNotFound    = &NotFoundError{Resource: "profile"}
)

// NotFoundError signals that the requested resource does not exist. Lookups
// after a delete and lookups with a bad id both surface it.
type NotFoundError struct {
	Resource string
	ID       interface{}
}

func (e *NotFoundError) Error() string {
	if e.ID != nil {
		return fmt.Sprintf("%s %v not found", e.Resource, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Resource)
}

// Is matches any NotFoundError for the same resource, so callers can compare
// against the sentinels with errors.Is regardless of the concrete id.
func (e *NotFoundError) Is(target error) bool {
	t, ok := target.(*NotFoundError)
	if !ok {
		return false
	}
	return t.Resource == e.Resource
}

func NewNotFoundError(resource string, id interface{}) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// IsNotFound reports whether err is any service-level not-found error.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}

// PermissionError signals that the caller is not allowed to perform the
// operation on the resource.
type PermissionError struct {
	UserID     string
	Resource   string
	ResourceID interface{}
	Operation  string
	Reason     string
}

func (e *PermissionError) Error() string {
	return fmt.Sprintf("user %s cannot %s %s %v: %s", e.UserID, e.Operation, e.Resource, e.ResourceID, e.Reason)
}

func NewPermissionError(userID string, resourceID interface{}, resource, operation, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		Resource:   resource,
		ResourceID: resourceID,
		Operation:  operation,
		Reason:     reason,
	}
}

// IsPermissionError reports whether err is a permission failure.
func IsPermissionError(err error) bool {
	var pe *PermissionError
	return errors.As(err, &pe)
}

// PersistenceError wraps a storage failure that is neither a validation nor a
// not-found condition: connection loss, constraint violations, blob storage
// write failures.
type PersistenceError struct {
	Operation string
	Err       error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence failure during %s: %v", e.Operation, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

func NewPersistenceError(operation string, err error) *PersistenceError {
	return &PersistenceError{Operation: operation, Err: err}
}

// IsPersistenceError reports whether err is a storage-level failure.
func IsPersistenceError(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
