package grammar

import (
	"sync"
	"unsafe"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
	tree_sitter_c "github.com/tree-sitter/tree-sitter-c/bindings/go"
	tree_sitter_c_sharp "github.com/tree-sitter/tree-sitter-c-sharp/bindings/go"
	tree_sitter_cpp "github.com/tree-sitter/tree-sitter-cpp/bindings/go"
	tree_sitter_go "github.com/tree-sitter/tree-sitter-go/bindings/go"
	tree_sitter_java "github.com/tree-sitter/tree-sitter-java/bindings/go"
	tree_sitter_javascript "github.com/tree-sitter/tree-sitter-javascript/bindings/go"
	tree_sitter_python "github.com/tree-sitter/tree-sitter-python/bindings/go"
	tree_sitter_ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
	tree_sitter_rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
	tree_sitter_typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"

	"github.com/skew202/antislop/pkg/lang"
)

// Registry manages the grammars compiled into the binary. Languages are
// loaded lazily and cached; the registry is safe for concurrent use and
// loaded languages are shared across workers without copying.
type Registry struct {
	mu        sync.RWMutex
	providers map[lang.Language]Provider
	loaded    map[lang.Language]*tree_sitter.Language
}

// NewRegistry creates a registry with every compiled-in grammar wired up.
func NewRegistry() *Registry {
	r := &Registry{
		providers: make(map[lang.Language]Provider),
		loaded:    make(map[lang.Language]*tree_sitter.Language),
	}
	registerBuiltins(r)
	return r
}

// Register adds a compiled-in grammar provider for a language.
func (r *Registry) Register(l lang.Language, p Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[l] = p
}

// Has reports whether a language is parse-capable.
func (r *Registry) Has(l lang.Language) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[l]
	return ok
}

// Load returns the tree-sitter Language for a parse-capable language.
func (r *Registry) Load(l lang.Language) (*tree_sitter.Language, error) {
	r.mu.RLock()
	if loaded, ok := r.loaded[l]; ok {
		r.mu.RUnlock()
		return loaded, nil
	}
	r.mu.RUnlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring the write lock.
	if loaded, ok := r.loaded[l]; ok {
		return loaded, nil
	}

	p, ok := r.providers[l]
	if !ok {
		return nil, &ErrGrammarNotFound{Language: l}
	}
	language := tree_sitter.NewLanguage(p())
	if language == nil {
		return nil, &ErrGrammarNotFound{Language: l}
	}
	r.loaded[l] = language
	return language, nil
}

// Languages returns all parse-capable languages.
func (r *Registry) Languages() []lang.Language {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]lang.Language, 0, len(r.providers))
	for l := range r.providers {
		out = append(out, l)
	}
	return out
}

// registerBuiltins wires up the grammars compiled into the binary. Each
// grammar Go binding exposes a function returning unsafe.Pointer.
func registerBuiltins(r *Registry) {
	r.Register(lang.C, tree_sitter_c.Language)
	r.Register(lang.CPP, tree_sitter_cpp.Language)
	r.Register(lang.CSharp, tree_sitter_c_sharp.Language)
	r.Register(lang.Go, tree_sitter_go.Language)
	r.Register(lang.Java, tree_sitter_java.Language)
	r.Register(lang.JavaScript, tree_sitter_javascript.Language)
	r.Register(lang.Python, tree_sitter_python.Language)
	r.Register(lang.Ruby, tree_sitter_ruby.Language)
	r.Register(lang.Rust, tree_sitter_rust.Language)
	// TypeScript uses LanguageTypescript() not Language(), so wrap it.
	r.Register(lang.TypeScript, func() unsafe.Pointer {
		return tree_sitter_typescript.LanguageTypescript()
	})
}
