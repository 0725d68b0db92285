package errors

import (
	stderrors "errors"
	"fmt"
)

// ErrorCode identifies the class of an organizer failure.
type ErrorCode string

const (
	ErrInvalidConfig ErrorCode = "INVALID_CONFIG"
	ErrWatch         ErrorCode = "WATCH"
	ErrLocked        ErrorCode = "LOCKED"
	ErrCreateFolder  ErrorCode = "CREATE_FOLDER"
	ErrResolve       ErrorCode = "RESOLVE"
	ErrMove          ErrorCode = "MOVE"
)

// OrganizerError is a coded error carrying the path it concerns and the
// underlying cause, if any.
type OrganizerError struct {
	Code    ErrorCode
	Message string
	Path    string
	Err     error
}

// Error implements the error interface.
func (e *OrganizerError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Code, e.Message)
	if e.Path != "" {
		msg += fmt.Sprintf(" (%s)", e.Path)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap exposes the underlying cause to errors.Is and errors.As.
func (e *OrganizerError) Unwrap() error {
	return e.Err
}

// NewInvalidConfig reports a configuration value that cannot be used.
func NewInvalidConfig(msg string) *OrganizerError {
	return &OrganizerError{Code: ErrInvalidConfig, Message: msg}
}

// NewInvalidConfigErr reports a configuration value that failed with a cause.
func NewInvalidConfigErr(msg string, err error) *OrganizerError {
	return &OrganizerError{Code: ErrInvalidConfig, Message: msg, Err: err}
}

// NewWatch reports a failure to set up or run the filesystem subscription.
func NewWatch(path string, err error) *OrganizerError {
	return &OrganizerError{Code: ErrWatch, Message: "watch directory", Path: path, Err: err}
}

// NewLocked reports that another organizer instance holds the lock.
func NewLocked(lockPath string) *OrganizerError {
	return &OrganizerError{
		Code:    ErrLocked,
		Message: "another organizer instance is already running",
		Path:    lockPath,
	}
}

// NewLockFailed reports an error while acquiring the instance lock.
func NewLockFailed(lockPath string, err error) *OrganizerError {
	return &OrganizerError{Code: ErrLocked, Message: "acquire lock", Path: lockPath, Err: err}
}

// NewCreateFolder reports a failure to create a category folder.
func NewCreateFolder(folder string, err error) *OrganizerError {
	return &OrganizerError{Code: ErrCreateFolder, Message: "create category folder", Path: folder, Err: err}
}

// NewResolve reports a failure while probing for a free destination name.
func NewResolve(path string, err error) *OrganizerError {
	return &OrganizerError{Code: ErrResolve, Message: "resolve destination", Path: path, Err: err}
}

// NewMove reports a failed relocation of a file.
func NewMove(src, dst string, err error) *OrganizerError {
	return &OrganizerError{
		Code:    ErrMove,
		Message: fmt.Sprintf("move to %s", dst),
		Path:    src,
		Err:     err,
	}
}

// Is checks if err, or any error it wraps, is an OrganizerError with the given code.
func Is(err error, code ErrorCode) bool {
	var oErr *OrganizerError
	if stderrors.As(err, &oErr) {
		return oErr.Code == code
	}
	return false
}
