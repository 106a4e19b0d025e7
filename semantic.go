package matscript

// SemanticTokenTypes is the legend SemanticTokens indexes into.
var SemanticTokenTypes = []string{"keyword", "type", "property", "string", "number", "variable", "comment", "operator"}

// semantic token type indexes.
const (
	semKeyword = iota
	semType
	semProperty
	semString
	semNumber
	semVariable
	semComment
	semOperator
	semNone = -1
)

// SemanticTokens encodes tokens in the relative five-integer form used by
// editors: line delta, start delta, length, type index and modifiers.
func SemanticTokens(tokens []Token) []uint32 {
	out := make([]uint32, 0, len(tokens)*5)
	prevLine, prevCol := 0, 0
	lineStart := true
	var prev Token

	for _, tok := range tokens {
		if tok.Kind == TokenEndOfLine {
			lineStart = true
			prev = Token{}
			continue
		}

		typ := classify(tok, prev, lineStart)
		lineStart = false
		if tok.Kind != TokenComment {
			prev = tok
		}
		if typ == semNone || tok.Size == 0 {
			continue
		}

		deltaLine := tok.Line - prevLine
		deltaCol := tok.Column
		if deltaLine == 0 {
			deltaCol = tok.Column - prevCol
		}
		out = append(out, uint32(deltaLine), uint32(deltaCol), uint32(tok.Size), uint32(typ), 0)
		prevLine, prevCol = tok.Line, tok.Column
	}

	return out
}

// classify picks a legend index for tok. prev is the previous token on the line.
func classify(tok, prev Token, lineStart bool) int {
	switch {
	case tok.Kind.IsKeyword():
		return semKeyword
	case tok.Kind == TokenString:
		return semString
	case tok.Kind == TokenNumber:
		return semNumber
	case tok.Kind == TokenVariable:
		return semVariable
	case tok.Kind == TokenComment:
		return semComment
	case tok.Kind == TokenMatch:
		return semType
	case tok.Kind == TokenColon, tok.Kind == TokenAsterisk:
		return semOperator
	case tok.Kind == TokenIdentifier:
		if lineStart {
			return semProperty
		}
		if prev.Kind.IsKeyword() || prev.Kind == TokenColon {
			return semType
		}
	}

	return semNone
}
