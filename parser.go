package matscript

import (
	"errors"
	"fmt"
	"os"
)

// ParseResult is the outcome of parsing one document.
type ParseResult struct {
	Script       *MaterialScript // Syntax tree, partial blocks included
	Declarations Declarations    // Named blocks by key
	Diagnostics  []Diagnostic    // Scanner and parser diagnostics in source order
}

// Parse builds the syntax tree from scanned tokens. Scanner diagnostics are
// merged into the result in source order.
func Parse(uri string, tokens []Token, scanDiags []Diagnostic) *ParseResult {
	p := newParser(tokens, scanDiags)
	script := p.parseScript(uri)
	p.flush(nil)

	return &ParseResult{Script: script, Declarations: p.decls, Diagnostics: p.diags}
}

// ParseSource scans and parses src.
func ParseSource(uri string, src []byte) *ParseResult {
	tokens, diags := Scan(src, nil)
	return Parse(uri, tokens, diags)
}

// ParseFile scans and parses a file from disk.
func ParseFile(path string) (*ParseResult, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFile, err)
	}

	return ParseSource(PathToURI(path), b), nil
}

// objectRule tells parseObject which definition forms a block accepts.
type objectRule int

const (
	allowParent    objectRule = 1 << iota // name : parent
	allowMatch                            // *match* names
	allowAnonymous                        // no name at all

	nestedBlock = allowParent | allowMatch | allowAnonymous
)

// parser represents a parser for material scripts.
type parser struct {
	toks       []Token      // Tokens without comments, ends with end_of_file
	pending    []Diagnostic // Scanner diagnostics not merged yet
	diags      []Diagnostic // Merged diagnostics
	decls      Declarations // Declarations index
	pos        int          // Index of the current token
	recovering bool         // Top-level recovery mode
}

// newParser creates a parser over tokens.
func newParser(tokens []Token, scanDiags []Diagnostic) *parser {
	toks := make([]Token, 0, len(tokens)+1)
	for _, tok := range tokens {
		if tok.Kind == TokenComment {
			continue
		}
		toks = append(toks, tok)
	}
	if len(toks) == 0 || toks[len(toks)-1].Kind != TokenEndOfFile {
		eof := Token{Kind: TokenEndOfFile}
		if len(toks) > 0 {
			last := toks[len(toks)-1]
			eof.Line, eof.Column = last.Line, last.Column+last.Size
		}
		toks = append(toks, eof)
	}

	return &parser{
		toks:    toks,
		pending: append([]Diagnostic(nil), scanDiags...),
		decls:   make(Declarations),
	}
}

// peek returns the current token without consuming it.
func (p *parser) peek() Token {
	return p.toks[p.pos]
}

// next consumes the current token. end_of_file is never consumed.
func (p *parser) next() Token {
	tok := p.toks[p.pos]
	if tok.Kind != TokenEndOfFile {
		p.pos++
	}

	return tok
}

// expect consumes a token of one of the given kinds.
func (p *parser) expect(kinds ...TokenKind) (Token, error) {
	tok := p.peek()
	for _, k := range kinds {
		if tok.Kind == k {
			return p.next(), nil
		}
	}

	return tok, syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected %s, found %s", kindList(kinds), describe(tok))
}

// expectLineEnd requires the current line to end here.
func (p *parser) expectLineEnd() error {
	tok := p.peek()
	if tok.Kind == TokenEndOfLine || tok.Kind == TokenEndOfFile {
		return nil
	}

	return syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected end of line, found %s", describe(tok))
}

// skipEOL skips blank lines.
func (p *parser) skipEOL() {
	for p.peek().Kind == TokenEndOfLine {
		p.next()
	}
}

// skipLine skips up to and including the next end of line.
func (p *parser) skipLine() {
	for {
		tok := p.next()
		if tok.Kind == TokenEndOfLine || tok.Kind == TokenEndOfFile {
			return
		}
	}
}

// skipParamLine skips the rest of a line, together with any brace block
// opened on it.
func (p *parser) skipParamLine() {
	depth := 0
	for {
		tok := p.peek()
		switch tok.Kind {
		case TokenEndOfFile:
			return
		case TokenEndOfLine:
			if depth == 0 {
				p.next()
				return
			}
		case TokenLeftBrace:
			depth++
		case TokenRightBrace:
			if depth == 0 {
				// Closing brace of the enclosing block.
				return
			}
			depth--
		}
		p.next()
	}
}

// skipNested skips the rest of a failed block header together with the
// brace block that follows it.
func (p *parser) skipNested() {
	p.skipParamLine()
	p.skipEOL()
	if p.peek().Kind == TokenLeftBrace {
		p.skipParamLine()
	}
}

// record appends a diagnostic after any scanner diagnostics positioned before it.
func (p *parser) record(d Diagnostic) {
	p.flush(&d.Range.Start)
	p.diags = append(p.diags, d)
}

// flush merges pending scanner diagnostics up to pos, or all of them when pos is nil.
func (p *parser) flush(pos *Position) {
	n := 0
	for n < len(p.pending) && (pos == nil || !pos.Before(p.pending[n].Range.Start)) {
		n++
	}

	p.diags = append(p.diags, p.pending[:n]...)
	p.pending = p.pending[n:]
}

// fail records a production failure.
func (p *parser) fail(err error) {
	var se *SyntaxError
	if errors.As(err, &se) {
		p.record(se.Diagnostic())
		return
	}

	p.record(Diagnostic{Level: LevelError, Kind: KindParse, Message: err.Error(), Range: pointRange(p.peek().Start())})
}

// parseScript runs the top-level loop.
func (p *parser) parseScript(uri string) *MaterialScript {
	s := &MaterialScript{URI: uri}
	for {
		p.skipEOL()
		tok := p.peek()
		if tok.Kind == TokenEndOfFile {
			return s
		}

		var err error
		switch {
		case tok.Kind == TokenMaterial:
			var m *Material
			m, err = p.parseMaterial()
			if !m.Name.IsZero() {
				s.Materials = append(s.Materials, m)
			}

		case tok.Kind.IsProgram():
			var prog *Program
			prog, err = p.parseProgram()
			if !prog.Name.IsZero() {
				s.Programs = append(s.Programs, prog)
			}

		case tok.Kind == TokenAbstract:
			var a *Abstract
			a, err = p.parseAbstract()
			if a != nil {
				s.Abstracts = append(s.Abstracts, a)
			}

		case tok.Kind == TokenSampler:
			var sm *Sampler
			sm, err = p.parseSampler()
			if !sm.Name.IsZero() {
				s.Samplers = append(s.Samplers, sm)
			}

		case tok.Kind == TokenImport:
			var imp *Import
			imp, err = p.parseImport()
			if err == nil {
				s.Imports = append(s.Imports, imp)
			}

		case tok.Kind == TokenSharedParams:
			var sp *SharedParams
			sp, err = p.parseSharedParams()
			if !sp.Name.IsZero() {
				s.SharedParams = append(s.SharedParams, sp)
			}

		default:
			if !p.recovering {
				p.fail(syntaxErrorf(KindParse, CodeInvalidToken, tok, "unexpected %s at top level", describe(tok)))
				p.recovering = true
			}
			p.skipLine()
			continue
		}

		if err != nil {
			p.fail(err)
			p.recovering = true
			if !p.peek().Kind.isTopLevel() {
				p.skipLine()
			}
			continue
		}

		p.recovering = false
	}
}

// parseObject parses a block definition and registers its name.
func (p *parser) parseObject(obj *Object, kind DeclKind, rule objectRule) error {
	tok := p.peek()
	switch tok.Kind {
	case TokenIdentifier, TokenString, TokenNumber:
		obj.Name = p.next()
		p.decls.declare(kind, obj.Name)

	case TokenMatch:
		if rule&allowMatch == 0 {
			return syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "match literal is not allowed as a %s name", kind)
		}
		obj.Name = p.next()
		if p.peek().Kind == TokenLeftBrace {
			return nil
		}
		return p.expectLineEnd()

	case TokenLeftBrace, TokenEndOfLine:
		if rule&allowAnonymous == 0 {
			return syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected %s name, found %s", kind, describe(tok))
		}
		return nil

	case TokenColon:
		// Anonymous block with a parent: "pass : Base".
		if rule&allowAnonymous == 0 {
			return syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected %s name, found %s", kind, describe(tok))
		}

	default:
		return syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected %s name, found %s", kind, describe(tok))
	}

	if p.peek().Kind == TokenColon {
		colon := p.next()
		if rule&allowParent == 0 {
			return syntaxErrorf(KindParse, CodeUnexpectedToken, colon, "%s does not support inheritance", kind)
		}
		parent, err := p.expect(TokenIdentifier, TokenString)
		if err != nil {
			return err
		}
		obj.Parent = parent
	}

	tok = p.peek()
	if tok.Kind == TokenLeftBrace {
		return nil
	}

	return p.expectLineEnd()
}

// parseBody parses block contents after the opening brace. item parses
// nested constructs and reports whether it owned the token; everything
// else becomes a parameter line.
func (p *parser) parseBody(params *[]*ParamLine, item func(tok Token) (bool, error)) (Token, error) {
	for {
		p.skipEOL()
		tok := p.peek()
		switch {
		case tok.Kind == TokenRightBrace:
			return p.next(), nil
		case tok.Kind == TokenEndOfFile, tok.Kind.isTopLevel():
			return tok, syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected '}', found %s", describe(tok))
		}

		if item != nil {
			owned, err := item(tok)
			if err != nil {
				if next := p.peek().Kind; next == TokenEndOfFile || next.isTopLevel() {
					return tok, err
				}
				// Nested failures stop here; sibling items still parse.
				p.fail(err)
				p.skipNested()
				continue
			}
			if owned {
				continue
			}
		}

		line, err := p.parseParamLine()
		if err != nil {
			p.fail(err)
			p.skipParamLine()
			continue
		}
		*params = append(*params, line)
	}
}

// openBlock skips blank lines and consumes the opening brace.
func (p *parser) openBlock() error {
	p.skipEOL()
	_, err := p.expect(TokenLeftBrace)
	return err
}

// parseParamLine collects value tokens up to the end of the line.
func (p *parser) parseParamLine() (*ParamLine, error) {
	line := &ParamLine{}
	for {
		tok := p.peek()
		if tok.Kind == TokenEndOfLine || tok.Kind == TokenEndOfFile {
			return line, nil
		}

		if !tok.Kind.isParamValue() {
			return nil, syntaxErrorf(KindParse, CodeNotValidParam, tok, "%s is not a valid parameter value", describe(tok))
		}

		line.Tokens = append(line.Tokens, p.next())
	}
}

// parseRefLine parses "keyword name" reference lines. Failures are
// recovered at line granularity.
func (p *parser) parseRefLine() (kw, name Token, ok bool) {
	kw = p.next()
	name, err := p.expect(TokenIdentifier, TokenString)
	if err == nil {
		err = p.expectLineEnd()
	}
	if err != nil {
		p.fail(err)
		p.skipParamLine()
		return kw, name, false
	}

	return kw, name, true
}

// parseMaterial parses a material block.
func (p *parser) parseMaterial() (*Material, error) {
	kw := p.next()
	m := &Material{}
	if err := p.parseObject(&m.Object, DeclMaterial, allowParent); err != nil {
		return m, err
	}
	if err := p.openBlock(); err != nil {
		return m, err
	}

	end, err := p.parseBody(&m.Params, func(tok Token) (bool, error) {
		if tok.Kind != TokenTechnique {
			return false, nil
		}
		t, err := p.parseTechnique()
		m.Techniques = append(m.Techniques, t)
		return true, err
	})
	m.Range = Range{Start: kw.Start(), End: end.End()}

	return m, err
}

// parseTechnique parses a technique block.
func (p *parser) parseTechnique() (*Technique, error) {
	kw := p.next()
	t := &Technique{}
	if err := p.parseObject(&t.Object, DeclTechnique, nestedBlock); err != nil {
		return t, err
	}
	if err := p.openBlock(); err != nil {
		return t, err
	}

	end, err := p.parseBody(&t.Params, func(tok Token) (bool, error) {
		switch tok.Kind {
		case TokenPass:
			ps, err := p.parsePass()
			t.Passes = append(t.Passes, ps)
			return true, err

		case TokenShadowCasterMaterial, TokenShadowReceiverMaterial:
			if kw, name, ok := p.parseRefLine(); ok {
				t.ShadowMaterials = append(t.ShadowMaterials, &ShadowMaterialRef{Type: kw, Name: name})
			}
			return true, nil
		}
		return false, nil
	})
	t.Range = Range{Start: kw.Start(), End: end.End()}

	return t, err
}

// parsePass parses a pass block.
func (p *parser) parsePass() (*Pass, error) {
	kw := p.next()
	ps := &Pass{}
	if err := p.parseObject(&ps.Object, DeclPass, nestedBlock); err != nil {
		return ps, err
	}
	if err := p.openBlock(); err != nil {
		return ps, err
	}

	end, err := p.parseBody(&ps.Params, func(tok Token) (bool, error) {
		switch {
		case tok.Kind == TokenTextureUnit:
			tu, err := p.parseTextureUnit()
			ps.TextureUnits = append(ps.TextureUnits, tu)
			return true, err

		case tok.Kind == TokenRtShaderSystem:
			rs, err := p.parseRtShader()
			ps.RtShaders = append(ps.RtShaders, rs)
			return true, err

		case tok.Kind.IsProgramRef():
			ref, err := p.parseProgramRef()
			ps.ProgramRefs = append(ps.ProgramRefs, ref)
			return true, err
		}
		return false, nil
	})
	ps.Range = Range{Start: kw.Start(), End: end.End()}

	return ps, err
}

// parseTextureUnit parses a texture_unit block.
func (p *parser) parseTextureUnit() (*TextureUnit, error) {
	kw := p.next()
	tu := &TextureUnit{}
	if err := p.parseObject(&tu.Object, DeclTextureUnit, nestedBlock); err != nil {
		return tu, err
	}
	if err := p.openBlock(); err != nil {
		return tu, err
	}

	end, err := p.parseBody(&tu.Params, func(tok Token) (bool, error) {
		switch tok.Kind {
		case TokenRtShaderSystem:
			rs, err := p.parseRtShader()
			tu.RtShaders = append(tu.RtShaders, rs)
			return true, err

		case TokenTextureSource:
			ts, err := p.parseTextureSource()
			tu.TextureSources = append(tu.TextureSources, ts)
			return true, err

		case TokenSamplerRef:
			if kw, name, ok := p.parseRefLine(); ok {
				tu.SamplerRefs = append(tu.SamplerRefs, &SamplerRef{Type: kw, Name: name})
			}
			return true, nil
		}
		return false, nil
	})
	tu.Range = Range{Start: kw.Start(), End: end.End()}

	return tu, err
}

// parseRtShader parses an rtshader_system block.
func (p *parser) parseRtShader() (*RtShader, error) {
	kw := p.next()
	rs := &RtShader{}
	if err := p.parseObject(&rs.Object, DeclRtShader, nestedBlock); err != nil {
		return rs, err
	}
	if err := p.openBlock(); err != nil {
		return rs, err
	}

	end, err := p.parseBody(&rs.Params, nil)
	rs.Range = Range{Start: kw.Start(), End: end.End()}

	return rs, err
}

// parseTextureSource parses a texture_source block.
func (p *parser) parseTextureSource() (*TextureSource, error) {
	kw := p.next()
	ts := &TextureSource{}
	if err := p.parseObject(&ts.Object, DeclTextureSource, nestedBlock); err != nil {
		return ts, err
	}
	if err := p.openBlock(); err != nil {
		return ts, err
	}

	end, err := p.parseBody(&ts.Params, nil)
	ts.Range = Range{Start: kw.Start(), End: end.End()}

	return ts, err
}

// parseAbstract parses an abstract block; the body registers under its concrete kind.
func (p *parser) parseAbstract() (*Abstract, error) {
	p.next()
	tok := p.peek()
	a := &Abstract{Type: tok}

	var err error
	switch tok.Kind {
	case TokenMaterial:
		var m *Material
		m, err = p.parseMaterial()
		a.Body = m
	case TokenTechnique:
		var t *Technique
		t, err = p.parseTechnique()
		a.Body = t
	case TokenPass:
		var ps *Pass
		ps, err = p.parsePass()
		a.Body = ps
	case TokenTextureUnit:
		var tu *TextureUnit
		tu, err = p.parseTextureUnit()
		a.Body = tu
	case TokenTextureSource:
		var ts *TextureSource
		ts, err = p.parseTextureSource()
		a.Body = ts
	case TokenRtShaderSystem:
		var rs *RtShader
		rs, err = p.parseRtShader()
		a.Body = rs
	default:
		return nil, syntaxErrorf(KindParse, CodeUnexpectedToken, tok,
			"expected material, technique, pass, texture_unit, texture_source or rtshader_system after abstract, found %s", describe(tok))
	}

	return a, err
}

// parseProgram parses a program definition.
func (p *parser) parseProgram() (*Program, error) {
	kw := p.next()
	prog := &Program{Stage: kw}

	name, err := p.expect(TokenIdentifier, TokenString)
	if err != nil {
		return prog, err
	}
	prog.Name = name
	p.decls.declare(programDeclKind(kw.Kind), name)

	for p.peek().Kind == TokenIdentifier {
		prog.HighLevelTypes = append(prog.HighLevelTypes, p.next())
	}
	if len(prog.HighLevelTypes) == 0 {
		tok := p.peek()
		return prog, syntaxErrorf(KindParse, CodeUnexpectedToken, tok, "expected high-level program type, found %s", describe(tok))
	}

	if err := p.openBlock(); err != nil {
		return prog, err
	}

	end, err := p.parseBody(&prog.Params, func(tok Token) (bool, error) {
		if tok.Kind != TokenDefaultParams {
			return false, nil
		}
		p.next()
		if err := p.openBlock(); err != nil {
			return true, err
		}
		_, err := p.parseBody(&prog.Defaults, func(tok Token) (bool, error) {
			if tok.Kind != TokenSharedParamsRef {
				return false, nil
			}
			if kw, name, ok := p.parseRefLine(); ok {
				prog.SharedParamRefs = append(prog.SharedParamRefs, &SharedParamRef{Type: kw, Name: name})
			}
			return true, nil
		})
		return true, err
	})
	prog.Range = Range{Start: kw.Start(), End: end.End()}

	return prog, err
}

// parseProgramRef parses a *_program_ref block.
func (p *parser) parseProgramRef() (*ProgramRef, error) {
	kw := p.next()
	ref := &ProgramRef{Type: kw}

	name, err := p.expect(TokenIdentifier, TokenString)
	if err != nil {
		return ref, err
	}
	ref.Name = name

	if err := p.openBlock(); err != nil {
		return ref, err
	}

	end, err := p.parseBody(&ref.Params, func(tok Token) (bool, error) {
		if tok.Kind != TokenSharedParamsRef {
			return false, nil
		}
		if kw, name, ok := p.parseRefLine(); ok {
			ref.SharedParamRefs = append(ref.SharedParamRefs, &SharedParamRef{Type: kw, Name: name})
		}
		return true, nil
	})
	ref.Range = Range{Start: kw.Start(), End: end.End()}

	return ref, err
}

// parseSharedParams parses a shared_params block.
func (p *parser) parseSharedParams() (*SharedParams, error) {
	kw := p.next()
	sp := &SharedParams{}
	if err := p.parseObject(&sp.Object, DeclSharedParams, 0); err != nil {
		return sp, err
	}
	if err := p.openBlock(); err != nil {
		return sp, err
	}

	end, err := p.parseBody(&sp.Params, nil)
	sp.Range = Range{Start: kw.Start(), End: end.End()}

	return sp, err
}

// parseSampler parses a sampler block.
func (p *parser) parseSampler() (*Sampler, error) {
	kw := p.next()
	sm := &Sampler{}
	if err := p.parseObject(&sm.Object, DeclSampler, allowParent); err != nil {
		return sm, err
	}
	if err := p.openBlock(); err != nil {
		return sm, err
	}

	end, err := p.parseBody(&sm.Params, nil)
	sm.Range = Range{Start: kw.Start(), End: end.End()}

	return sm, err
}

// parseImport parses an import statement.
func (p *parser) parseImport() (*Import, error) {
	imp := &Import{Keyword: p.next()}

	target, err := p.expect(TokenIdentifier, TokenString, TokenAsterisk)
	if err != nil {
		return imp, err
	}
	imp.Target = target

	if _, err := p.expect(TokenFrom); err != nil {
		return imp, err
	}

	source, err := p.expect(TokenString, TokenIdentifier)
	if err != nil {
		return imp, err
	}
	imp.Source = source
	imp.Range = Range{Start: imp.Keyword.Start(), End: source.End()}

	return imp, p.expectLineEnd()
}

// describe renders a token for messages.
func describe(tok Token) string {
	switch tok.Kind {
	case TokenEndOfFile, TokenEndOfLine:
		return tok.Kind.String()
	default:
		return "'" + tok.Source() + "'"
	}
}

// kindList joins expected kinds for messages.
func kindList(kinds []TokenKind) string {
	switch len(kinds) {
	case 0:
		return "token"
	case 1:
		return kinds[0].String()
	}

	out := ""
	for i, k := range kinds {
		switch {
		case i == 0:
		case i == len(kinds)-1:
			out += " or "
		default:
			out += ", "
		}
		out += k.String()
	}

	return out
}
