package modfs

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("not found in the mod directory")
	ErrUnknownEncoding = errors.New("unknown text encoding")
	ErrUnknownFormat   = errors.New("unknown image format")
	ErrNotADirectory   = errors.New("not a directory")
)

// FileError reports a failure to resolve, read or write a required file.
// The orchestrator treats it as fatal: the run stops and the process exits 1.
type FileError struct {
	Op   string
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("fatal: %s %q: %v", e.Op, e.Path, e.Err)
}

func (e *FileError) Unwrap() error {
	return e.Err
}

// IsFatal reports whether err carries a *FileError
func IsFatal(err error) bool {
	var fe *FileError
	return errors.As(err, &fe)
}
