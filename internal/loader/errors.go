package loader

import (
	"errors"
	"fmt"
)

var (
	// ErrFileFormat is matched by all malformed or unsupported input errors.
	ErrFileFormat = errors.New("unsupported or malformed file")

	// ErrMissingField is matched when a configured column is absent.
	ErrMissingField = errors.New("missing field")
)

// FileFormatError reports an input file that could not be parsed.
type FileFormatError struct {
	Path   string
	Reason string
}

func (e *FileFormatError) Error() string {
	return fmt.Sprintf("cannot load %s: %s", e.Path, e.Reason)
}

func (e *FileFormatError) Is(target error) bool {
	return target == ErrFileFormat
}

// MissingFieldError reports a configured field name absent from the file.
type MissingFieldError struct {
	Path  string
	Field string
}

func (e *MissingFieldError) Error() string {
	return fmt.Sprintf("%s has no %q field", e.Path, e.Field)
}

func (e *MissingFieldError) Is(target error) bool {
	return target == ErrMissingField
}
