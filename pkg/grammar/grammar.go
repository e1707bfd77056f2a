// Package grammar manages the tree-sitter grammars compiled into the
// binary. Grammar availability is a capability set: a language is either
// parse-capable or fallback-only, and the detector selects its strategy
// by asking this registry rather than branching on language identity.
package grammar

import (
	"fmt"
	"unsafe"

	"github.com/skew202/antislop/pkg/lang"
)

// Provider is a function that returns an unsafe.Pointer to a TSLanguage.
// This is the signature exposed by tree-sitter grammar Go bindings.
type Provider func() unsafe.Pointer

// ErrGrammarNotFound is returned when no grammar is compiled in for a
// language.
type ErrGrammarNotFound struct {
	Language lang.Language
}

func (e *ErrGrammarNotFound) Error() string {
	return fmt.Sprintf("no grammar for language %q", string(e.Language))
}
