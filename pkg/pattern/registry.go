package pattern

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/skew202/antislop/pkg/lang"
)

// Compilation and validation errors. All are fatal to a scan.
var (
	ErrInvalidRegex    = errors.New("invalid regex")
	ErrInvalidSeverity = errors.New("invalid severity")
	ErrInvalidCategory = errors.New("invalid category")
)

// Compiled is a detection rule ready for matching. Immutable after
// registry construction; shared read-only across workers.
type Compiled struct {
	Regexp    *regexp.Regexp
	ID        string
	Severity  Severity
	Category  Category
	Message   string
	Languages []lang.Language
	// Order is the registry insertion index, used to break dedup ties.
	Order int
}

// AppliesTo reports whether the rule is enabled for a language.
func (c *Compiled) AppliesTo(l lang.Language) bool {
	if len(c.Languages) == 0 {
		return true
	}
	for _, restricted := range c.Languages {
		if restricted == l {
			return true
		}
	}
	return false
}

// Registry holds the compiled rule set for a scan. It exclusively owns
// the compiled regexes; construct once, never mutate afterwards.
type Registry struct {
	rules []*Compiled
	byID  map[string]*Compiled
}

// Compile merges pattern definitions (later sources override earlier
// ones by id, keeping the original position) and compiles them. Any
// invalid regex, severity, or category fails the whole compilation.
func Compile(sources ...[]Definition) (*Registry, error) {
	merged := make([]Definition, 0, 64)
	index := make(map[string]int)

	for _, defs := range sources {
		for _, d := range defs {
			id := d.EffectiveID()
			if at, ok := index[id]; ok {
				merged[at] = d
				continue
			}
			index[id] = len(merged)
			merged = append(merged, d)
		}
	}

	r := &Registry{byID: make(map[string]*Compiled, len(merged))}
	for _, d := range merged {
		c, err := compileOne(d)
		if err != nil {
			return nil, err
		}
		c.Order = len(r.rules)
		r.rules = append(r.rules, c)
		r.byID[c.ID] = c
	}
	return r, nil
}

func compileOne(d Definition) (*Compiled, error) {
	sev, err := ParseSeverity(d.Severity)
	if err != nil {
		return nil, err
	}
	cat, err := ParseCategory(d.Category)
	if err != nil {
		return nil, err
	}
	re, err := regexp.Compile(d.Regex)
	if err != nil {
		return nil, fmt.Errorf("%w %q: %v", ErrInvalidRegex, d.Regex, err)
	}

	langs := make([]lang.Language, 0, len(d.Languages))
	for _, name := range d.Languages {
		langs = append(langs, lang.Language(name))
	}

	return &Compiled{
		Regexp:    re,
		ID:        d.EffectiveID(),
		Severity:  sev,
		Category:  cat,
		Message:   d.Message,
		Languages: langs,
	}, nil
}

// Filter returns a registry view restricted by category. only wins over
// disable when both are given. The returned registry shares compiled
// regexes with the receiver; rule order is preserved.
func (r *Registry) Filter(only, disable []Category) *Registry {
	keep := func(c Category) bool {
		if len(only) > 0 {
			return containsCategory(only, c)
		}
		return !containsCategory(disable, c)
	}

	out := &Registry{byID: make(map[string]*Compiled)}
	for _, rule := range r.rules {
		if keep(rule.Category) {
			out.rules = append(out.rules, rule)
			out.byID[rule.ID] = rule
		}
	}
	return out
}

// Rules returns all compiled rules in insertion order. Callers must not
// mutate the returned slice.
func (r *Registry) Rules() []*Compiled {
	return r.rules
}

// CommentRules returns the rules applied to comment text (every category
// except stub and naming_convention).
func (r *Registry) CommentRules() []*Compiled {
	var out []*Compiled
	for _, rule := range r.rules {
		if rule.Category != CatStub && rule.Category != CatNaming {
			out = append(out, rule)
		}
	}
	return out
}

// StubRules returns the textual stub rules used by the regex fallback.
func (r *Registry) StubRules() []*Compiled {
	var out []*Compiled
	for _, rule := range r.rules {
		if rule.Category == CatStub {
			out = append(out, rule)
		}
	}
	return out
}

// NamingRules returns the rules applied to file names.
func (r *Registry) NamingRules() []*Compiled {
	var out []*Compiled
	for _, rule := range r.rules {
		if rule.Category == CatNaming {
			out = append(out, rule)
		}
	}
	return out
}

// Get looks up a rule by id.
func (r *Registry) Get(id string) (*Compiled, bool) {
	c, ok := r.byID[id]
	return c, ok
}

// Len returns the number of rules.
func (r *Registry) Len() int {
	return len(r.rules)
}

func containsCategory(set []Category, c Category) bool {
	for _, x := range set {
		if x == c {
			return true
		}
	}
	return false
}
