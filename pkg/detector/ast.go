package detector

import (
	"context"
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/skew202/antislop/pkg/lang"
)

// detectAST parses the file with its grammar and extracts two node
// classes: comment nodes, matched against every enabled non-stub rule,
// and structural stub nodes. Parse errors inside the tree are
// recoverable; only an outright nil tree falls back to regex scanning.
func (d *Detector) detectAST(ctx context.Context, content []byte, idx *lineIndex, language lang.Language) ([]Finding, error) {
	sitterLang, err := d.grammars.Load(language)
	if err != nil {
		return nil, errParseRejected
	}

	parser := tree_sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(sitterLang); err != nil {
		return nil, errParseRejected
	}

	tree := parser.Parse(content, nil)
	if tree == nil {
		return nil, errParseRejected
	}
	defer tree.Close()

	root := tree.RootNode()

	findings, err := d.matchComments(ctx, content, idx, language, root)
	if err != nil {
		return nil, err
	}

	stubs, err := d.analyzeStubs(ctx, content, idx, language, root)
	if err != nil {
		return nil, err
	}
	return append(findings, stubs...), nil
}

// matchComments walks the tree and applies comment rules to the raw text
// of every comment node. Match positions are the node span translated by
// the intra-comment byte offset, so matched text is always an exact
// substring of the source.
func (d *Detector) matchComments(ctx context.Context, content []byte, idx *lineIndex, language lang.Language, root *tree_sitter.Node) ([]Finding, error) {
	rules := d.rules.CommentRules()
	if len(rules) == 0 {
		return nil, nil
	}

	var findings []Finding
	var walkErr error

	var walk func(node *tree_sitter.Node)
	walk = func(node *tree_sitter.Node) {
		if walkErr != nil {
			return
		}
		if isCommentKind(node.Kind()) {
			if err := checkDeadline(ctx); err != nil {
				walkErr = err
				return
			}
			start := int(node.StartByte())
			end := int(node.EndByte())
			if end > len(content) {
				end = len(content)
			}
			text := string(content[start:end])

			for _, rule := range rules {
				if !rule.AppliesTo(language) {
					continue
				}
				for _, m := range rule.Regexp.FindAllStringIndex(text, -1) {
					findings = append(findings, newFinding(idx, start+m[0], start+m[1], rule.ID, rule.Category, rule.Severity, rule.Message, rule.Order))
				}
			}
		}
		for i := uint(0); i < node.ChildCount(); i++ {
			walk(node.Child(i))
		}
	}
	walk(root)

	return findings, walkErr
}

// isCommentKind matches the comment node kinds across all built-in
// grammars: "comment", "line_comment", "block_comment".
func isCommentKind(kind string) bool {
	return kind == "comment" || strings.HasSuffix(kind, "_comment")
}
