package permutations

import (
	"errors"
	"fmt"
)

var (
	ErrConfigNotFound = errors.New("confusable wordlist not found")
	ErrTooLarge       = errors.New("combination space too large to materialize")
)

type ConfigNotFoundError struct {
	Path string
	Err  error
}

func (e *ConfigNotFoundError) Error() string {
	return fmt.Sprintf("%s not found", e.Path)
}

func (e *ConfigNotFoundError) Unwrap() error { return e.Err }

func (e *ConfigNotFoundError) Is(target error) bool { return target == ErrConfigNotFound }

// ConfigReadError covers every wordlist I/O failure other than a missing file.
type ConfigReadError struct {
	Path string
	Err  error
}

func (e *ConfigReadError) Error() string {
	return fmt.Sprintf("failed to read wordlist %s: %v", e.Path, e.Err)
}

func (e *ConfigReadError) Unwrap() error { return e.Err }
