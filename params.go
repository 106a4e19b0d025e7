package matscript

import (
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
)

// wildcard names, stored in a node name set in place of a literal.
const (
	wildIdentifier = "(identifier)"
	wildNumber     = "(number)"
	wildString     = "(string)"
	wildMatch      = "(match)"
)

// Grammar is a trie of compiled parameter line patterns.
// It is read-only after Compile and safe for concurrent use.
type Grammar struct {
	root *grammarNode
}

// grammarNode is one position in the trie.
type grammarNode struct {
	names    map[string]struct{} // Literals or a single wildcard
	children []*grammarNode      // Ordered by insertion
	kind     TokenKind           // Token kind to match
	terminal bool                // A pattern ends here
}

// grammarStep is one parsed pattern element.
type grammarStep struct {
	names []string
	kind  TokenKind
}

// Compile builds a grammar from patterns. Pattern elements are literals
// ("<scene_blend>"), alternations at one position ("[<on><off>]") and typed
// placeholders ("(number)", "(identifier)", "(string)", "(match)").
func Compile(patterns ...string) (*Grammar, error) {
	g := &Grammar{root: &grammarNode{}}
	for _, pattern := range patterns {
		steps, err := parsePattern(pattern)
		if err != nil {
			return nil, err
		}
		g.insert(steps)
	}

	return g, nil
}

// MustCompile is like Compile but panics on malformed patterns.
func MustCompile(patterns ...string) *Grammar {
	g, err := Compile(patterns...)
	if err != nil {
		panic(err)
	}

	return g
}

// insert adds one pattern, reusing children with an equal name set and kind.
func (g *Grammar) insert(steps []grammarStep) {
	node := g.root
	for _, step := range steps {
		var next *grammarNode
		for _, child := range node.children {
			if child.kind == step.kind && child.sameNames(step.names) {
				next = child
				break
			}
		}

		if next == nil {
			next = &grammarNode{kind: step.kind, names: make(map[string]struct{}, len(step.names))}
			for _, name := range step.names {
				next.names[name] = struct{}{}
			}
			node.children = append(node.children, next)
		}
		node = next
	}

	node.terminal = true
}

// Validate checks a parameter line against the grammar. The returned error is
// a *SyntaxError wrapping ErrParams positioned at the divergence point.
func (g *Grammar) Validate(tokens []Token) error {
	node := g.root
	var (
		last Token
		name Token
	)

	for i := 0; ; i++ {
		for i < len(tokens) && tokens[i].Kind == TokenComma {
			i++
		}

		if node.terminal && (i == len(tokens) || len(node.children) == 0) {
			return nil
		}

		if i == len(tokens) || len(node.children) == 0 {
			if node == g.root {
				// Nothing but commas.
				var at Token
				if len(tokens) > 0 {
					at = tokens[0]
				}
				return syntaxErrorf(KindParams, CodeInvalidParams, at, "missing parameter name")
			}
			return syntaxErrorf(KindParams, CodeInvalidParams, last,
				"incomplete '%s' parameter, expected %s", name.Literal, node.expected())
		}

		tok := tokens[i]
		if tok.Kind == TokenVariable {
			// Value is only known once the variable is substituted.
			return nil
		}

		child := node.match(tok)
		if child == nil {
			if node == g.root {
				return syntaxErrorf(KindParams, CodeInvalidParams, tok, "unknown parameter '%s'", tok.Literal)
			}
			return syntaxErrorf(KindParams, CodeInvalidParams, tok,
				"unexpected %s in '%s' parameter, expected %s", describe(tok), name.Literal, node.expected())
		}

		if node == g.root {
			name = tok
		}
		node, last = child, tok
	}
}

// Accepts reports whether the line validates.
func (g *Grammar) Accepts(tokens []Token) bool {
	return g.Validate(tokens) == nil
}

// match picks a child for tok, literal names win over wildcards.
func (n *grammarNode) match(tok Token) *grammarNode {
	for _, child := range n.children {
		if child.kind != tok.Kind {
			continue
		}
		if _, ok := child.names[tok.Literal]; ok {
			return child
		}
	}

	wild := wildcardFor(tok.Kind)
	if wild == "" {
		return nil
	}

	for _, child := range n.children {
		if child.kind != tok.Kind {
			continue
		}
		if _, ok := child.names[wild]; ok {
			return child
		}
	}

	return nil
}

// sameNames compares the node name set with names.
func (n *grammarNode) sameNames(names []string) bool {
	if len(n.names) != len(names) {
		return false
	}
	for _, name := range names {
		if _, ok := n.names[name]; !ok {
			return false
		}
	}

	return true
}

// expected lists what may follow n, for messages.
func (n *grammarNode) expected() string {
	var out []string
	for _, child := range n.children {
		for name := range child.names {
			out = append(out, name)
		}
	}
	if len(out) == 0 {
		return "end of line"
	}

	sort.Strings(out)
	out = slices.Compact(out)
	if len(out) > 6 {
		out = append(out[:6], "...")
	}

	return strings.Join(out, ", ")
}

// wildcardFor returns the wildcard name for a token kind.
func wildcardFor(kind TokenKind) string {
	switch kind {
	case TokenIdentifier:
		return wildIdentifier
	case TokenNumber:
		return wildNumber
	case TokenString:
		return wildString
	case TokenMatch:
		return wildMatch
	default:
		return ""
	}
}

// parsePattern splits a pattern string into steps.
func parsePattern(pattern string) ([]grammarStep, error) {
	var steps []grammarStep
	rest := strings.TrimSpace(pattern)
	for rest != "" {
		switch rest[0] {
		case '<':
			end := strings.IndexByte(rest, '>')
			if end < 2 {
				return nil, fmt.Errorf("pattern %q: unterminated literal", pattern)
			}
			steps = append(steps, grammarStep{kind: TokenIdentifier, names: []string{rest[1:end]}})
			rest = rest[end+1:]

		case '[':
			end := strings.IndexByte(rest, ']')
			if end < 0 {
				return nil, fmt.Errorf("pattern %q: unterminated alternation", pattern)
			}
			inner := rest[1:end]
			var names []string
			for inner != "" {
				if inner[0] != '<' {
					return nil, fmt.Errorf("pattern %q: alternation accepts literals only", pattern)
				}
				gt := strings.IndexByte(inner, '>')
				if gt < 2 {
					return nil, fmt.Errorf("pattern %q: unterminated literal", pattern)
				}
				names = append(names, inner[1:gt])
				inner = inner[gt+1:]
			}
			if len(names) == 0 {
				return nil, fmt.Errorf("pattern %q: empty alternation", pattern)
			}
			steps = append(steps, grammarStep{kind: TokenIdentifier, names: names})
			rest = rest[end+1:]

		case '(':
			end := strings.IndexByte(rest, ')')
			if end < 0 {
				return nil, fmt.Errorf("pattern %q: unterminated placeholder", pattern)
			}
			wild := rest[:end+1]
			var kind TokenKind
			switch wild {
			case wildIdentifier:
				kind = TokenIdentifier
			case wildNumber:
				kind = TokenNumber
			case wildString:
				kind = TokenString
			case wildMatch:
				kind = TokenMatch
			default:
				return nil, fmt.Errorf("pattern %q: unknown placeholder %s", pattern, wild)
			}
			steps = append(steps, grammarStep{kind: kind, names: []string{wild}})
			rest = rest[end+1:]

		case ' ', '\t':
			rest = rest[1:]

		default:
			return nil, fmt.Errorf("pattern %q: unexpected %q", pattern, rest[0])
		}
	}

	if len(steps) == 0 {
		return nil, fmt.Errorf("pattern %q: empty", pattern)
	}

	return steps, nil
}

// Validator holds the compiled grammars of every construct with
// validated parameter lines.
type Validator struct {
	material    *Grammar
	technique   *Grammar
	pass        *Grammar
	textureUnit *Grammar
	sampler     *Grammar
}

// NewValidator compiles the built-in grammars.
func NewValidator() *Validator {
	return &Validator{
		material:    MustCompile(materialPatterns()...),
		technique:   MustCompile(techniquePatterns()...),
		pass:        MustCompile(passPatterns()...),
		textureUnit: MustCompile(textureUnitPatterns()...),
		sampler:     MustCompile(samplerPatterns()...),
	}
}

var defaultValidator = sync.OnceValue(NewValidator)

// DefaultValidator returns a validator shared by callers that do not
// bring their own. It is built on first use.
func DefaultValidator() *Validator {
	return defaultValidator()
}
