package cli

import (
	"errors"
	"fmt"
	"os"

	"cuelang.org/go/cue/token"

	"github.com/roach88/causalcore/internal/compiler"
	"github.com/roach88/causalcore/internal/ir"
)

// LoadError represents an error that occurred while loading a model.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Error code constants - unified across all CLI commands.
// Model validation errors use the compiler's E1xx codes and engine runtime
// errors use their own code names.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeCompileFailed = "E002" // CUE model did not compile
	ErrCodeNoFiles       = "E003" // No CUE files found
	ErrCodeLoadFailed    = "E004" // CUE load failed
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeBadFlag       = "E006" // Malformed flag value
	ErrCodeWriteFailed   = "E007" // File write error
	ErrCodeStoreFailed   = "E008" // Run store error
	ErrCodeInvalidModel  = "E009" // Model failed validation
)

// LoadModel loads and compiles a model from a .cue file or a directory.
// Every failure is returned as a *LoadError.
func LoadModel(path string) (*ir.Model, error) {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("model not found: %s", path)}
		}
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing model: %v", err)}
	}

	m, err := compiler.LoadModel(path)
	if err != nil {
		return nil, convertCompileError(err)
	}
	return m, nil
}

// LoadValidModel loads a model and fails with ErrCodeInvalidModel when it
// does not validate. The first validation error becomes the message.
func LoadValidModel(path string) (*ir.Model, error) {
	m, err := LoadModel(path)
	if err != nil {
		return nil, err
	}
	if errs := compiler.Validate(m); len(errs) > 0 {
		return nil, &LoadError{
			Code:    ErrCodeInvalidModel,
			Message: fmt.Sprintf("%d validation error(s), first: %v", len(errs), errs[0]),
		}
	}
	return m, nil
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    ErrCodeCompileFailed,
			Message: fmt.Sprintf("%s: %s", compileErr.Field, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	return &LoadError{Code: ErrCodeLoadFailed, Message: err.Error()}
}
