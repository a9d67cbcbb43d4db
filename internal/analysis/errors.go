package analysis

import (
	"errors"
	"fmt"

	"github.com/dgallion1/docrank/internal/doctree"
)

var (
	// ErrInvalidInput matches every *InvalidInputError via errors.Is.
	ErrInvalidInput = errors.New("invalid input")
	// ErrAssembly matches every *AssemblyError via errors.Is.
	ErrAssembly = errors.New("assembly error")
)

// InvalidInputError reports input that no stage can produce meaningful output for.
type InvalidInputError struct {
	Field  string
	Reason string
}

func (e *InvalidInputError) Error() string {
	return fmt.Sprintf("invalid input: %s: %s", e.Field, e.Reason)
}

func (e *InvalidInputError) Is(target error) bool {
	return target == ErrInvalidInput
}

func invalidInput(field, reason string) error {
	return &InvalidInputError{Field: field, Reason: reason}
}

// AssemblyError is an internal consistency violation between the ranking and
// its refinements. It signals a defect upstream, not bad input.
type AssemblyError struct {
	Key    doctree.SectionKey
	Reason string
}

func (e *AssemblyError) Error() string {
	return fmt.Sprintf("assembly error: section %s#%d: %s", e.Key.DocumentID, e.Key.OrderIndex, e.Reason)
}

func (e *AssemblyError) Is(target error) bool {
	return target == ErrAssembly
}
