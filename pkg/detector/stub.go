package detector

import (
	"context"
	"regexp"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/skew202/antislop/pkg/lang"
	"github.com/skew202/antislop/pkg/pattern"
)

// Structural stub rules carry fixed ids so they can be suppressed like
// any registry pattern.
const (
	stubEmptyBodyID  = "stub-empty-body"
	stubEmptyCatchID = "stub-empty-catch"
)

// structuralOrder sorts structural rules after every registry rule when
// breaking same-span dedup ties.
const structuralOrder = 1 << 30

// stubMarker flags AST nodes whose text marks an explicitly
// unimplemented path (todo!(), raise NotImplementedError, ...).
type stubMarker struct {
	kinds   map[string]bool
	re      *regexp.Regexp
	id      string
	message string
}

// stubSpec is the per-language structural stub configuration. Each
// language registers one from its own file, mirroring how the pattern
// set is split per category.
type stubSpec struct {
	// funcKinds are node kinds that define a function or method.
	funcKinds map[string]bool
	// bodyField is the field name of the body node (usually "body").
	bodyField string
	// bodyKinds restricts the empty-body check to real block nodes.
	// Expression-bodied forms (concise arrows) are never stubs.
	bodyKinds map[string]bool
	// nilBodyIsStub reports a definition with no body node at all
	// (Ruby's `def foo; end`). Off for languages where bodyless
	// declarations are legal interfaces or prototypes.
	nilBodyIsStub bool
	// noopKinds are statement kinds that make a single-statement body a
	// stub (empty_statement and friends).
	noopKinds map[string]bool
	// noopText matches single-statement bodies by source text (bare
	// returns, ellipsis). Nil disables the check.
	noopText *regexp.Regexp
	// placeholderKinds are reported as critical stubs wherever they
	// appear (Python's pass_statement).
	placeholderKinds map[string]bool
	placeholderID    string
	placeholderMsg   string
	// markers flag explicit unimplemented constructs, critical severity.
	markers []stubMarker
	// catchKinds are exception-handler node kinds checked for swallowed
	// errors; the handler body is found via catchBodyField or, when that
	// is empty, the first child of catchBodyKind.
	catchKinds     map[string]bool
	catchBodyField string
	catchBodyKind  string
}

var stubSpecs = map[lang.Language]*stubSpec{}

// registerStubSpec wires a language's structural stub configuration.
// Called from per-language init functions.
func registerStubSpec(l lang.Language, spec *stubSpec) {
	stubSpecs[l] = spec
}

// analyzeStubs walks the tree once collecting structural stub findings:
// explicit unimplemented markers, placeholder statements, swallowed
// catches, and empty or no-op function bodies.
//
// Containment rules keep one finding per construct: markers and
// placeholder statements inside a reported catch are dropped (the catch
// is the story), and a body finding is only emitted when nothing more
// specific was found inside it.
func (d *Detector) analyzeStubs(ctx context.Context, content []byte, idx *lineIndex, language lang.Language, root *tree_sitter.Node) ([]Finding, error) {
	spec, ok := stubSpecs[language]
	if !ok {
		return nil, nil
	}

	var inner []Finding   // markers + placeholder statements
	var catches []Finding // swallowed catch handlers
	var bodies []Finding  // empty/no-op bodies, emitted last

	var walkErr error
	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		if walkErr != nil {
			return
		}
		if err := checkDeadline(ctx); err != nil {
			walkErr = err
			return
		}
		kind := node.Kind()

		for i := range spec.markers {
			m := &spec.markers[i]
			if m.kinds[kind] && m.re.MatchString(nodeText(node, content)) {
				inner = append(inner, newFinding(idx, int(node.StartByte()), int(node.EndByte()),
					m.id, pattern.CatStub, pattern.SevCritical, m.message, structuralOrder))
				break
			}
		}

		if spec.placeholderKinds[kind] {
			inner = append(inner, newFinding(idx, int(node.StartByte()), int(node.EndByte()),
				spec.placeholderID, pattern.CatStub, pattern.SevCritical, spec.placeholderMsg, structuralOrder))
		}

		if spec.catchKinds[kind] {
			body := catchBody(node, spec)
			if body == nil || spec.isStubBody(body, content) {
				catches = append(catches, newFinding(idx, int(node.StartByte()), int(node.EndByte()),
					stubEmptyCatchID, pattern.CatStub, pattern.SevHigh,
					"Exception caught and silently discarded", structuralOrder))
			}
		}

		if spec.funcKinds[kind] {
			body := node.ChildByFieldName(spec.bodyField)
			switch {
			case body == nil && spec.nilBodyIsStub:
				bodies = append(bodies, newFinding(idx, int(node.StartByte()), int(node.EndByte()),
					stubEmptyBodyID, pattern.CatStub, pattern.SevHigh,
					"Function body is empty", structuralOrder))
			case body != nil && spec.blockBody(body) && spec.isStubBody(body, content):
				bodies = append(bodies, newFinding(idx, int(body.StartByte()), int(body.EndByte()),
					stubEmptyBodyID, pattern.CatStub, pattern.SevHigh,
					"Function body is empty or a placeholder", structuralOrder))
			}
		}

		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)
	if walkErr != nil {
		return nil, walkErr
	}

	// Markers and placeholder statements inside a swallowed catch are
	// subsumed by the catch finding.
	kept := catches
	for i := range inner {
		contained := false
		for j := range catches {
			if catches[j].contains(&inner[i]) {
				contained = true
				break
			}
		}
		if !contained {
			kept = append(kept, inner[i])
		}
	}

	// A body finding only stands when no more specific stub finding
	// lives inside the body span.
	for i := range bodies {
		covered := false
		for j := range kept {
			if bodies[i].startByte <= kept[j].startByte && kept[j].endByte <= bodies[i].endByte {
				covered = true
				break
			}
		}
		if !covered {
			kept = append(kept, bodies[i])
		}
	}

	return kept, nil
}

// blockBody reports whether the body node is a statement block this
// language stub-checks.
func (s *stubSpec) blockBody(body *tree_sitter.Node) bool {
	if s.bodyKinds == nil {
		return true
	}
	return s.bodyKinds[body.Kind()]
}

// isStubBody reports whether a body node is empty, comment-only, or a
// single no-op statement.
func (s *stubSpec) isStubBody(body *tree_sitter.Node, content []byte) bool {
	var stmts []*tree_sitter.Node
	for i := uint(0); i < body.NamedChildCount(); i++ {
		child := body.NamedChild(i)
		if isCommentKind(child.Kind()) {
			continue
		}
		stmts = append(stmts, child)
	}

	switch len(stmts) {
	case 0:
		return true
	case 1:
		stmt := stmts[0]
		if s.noopKinds[stmt.Kind()] || s.placeholderKinds[stmt.Kind()] {
			return true
		}
		if s.noopText != nil && s.noopText.MatchString(strings.TrimSpace(nodeText(stmt, content))) {
			return true
		}
		return false
	default:
		return false
	}
}

// catchBody resolves the handler body node for a catch-like node.
func catchBody(node *tree_sitter.Node, spec *stubSpec) *tree_sitter.Node {
	if spec.catchBodyField != "" {
		if body := node.ChildByFieldName(spec.catchBodyField); body != nil {
			return body
		}
	}
	if spec.catchBodyKind != "" {
		for i := uint(0); i < node.NamedChildCount(); i++ {
			if child := node.NamedChild(i); child.Kind() == spec.catchBodyKind {
				return child
			}
		}
	}
	return nil
}

func nodeText(node *tree_sitter.Node, content []byte) string {
	start := node.StartByte()
	end := node.EndByte()
	if end > uint(len(content)) {
		end = uint(len(content))
	}
	return string(content[start:end])
}
