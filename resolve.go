package matscript

// FindReference returns the declaration key named by the token under pos.
// Block names, parents and reference names are hit-tested in document
// order; the first hit wins.
func FindReference(script *MaterialScript, pos Position) (DeclKey, Token, bool) {
	if script == nil {
		return DeclKey{}, Token{}, false
	}

	f := &finder{pos: pos}
	f.script(script)

	return f.key, f.tok, f.found
}

// Resolve returns the location of the declaration referenced at pos. When
// nothing resolves, the location is a zero-width range at pos.
func Resolve(script *MaterialScript, decls Declarations, pos Position) Location {
	miss := Location{Range: pointRange(pos)}
	if script == nil {
		return miss
	}
	miss.URI = script.URI

	key, _, ok := FindReference(script, pos)
	if !ok {
		return miss
	}

	tok, ok := decls.Lookup(key)
	if !ok {
		return miss
	}

	return Location{URI: script.URI, Range: tok.Range()}
}

// finder walks the tree looking for the first token touching pos.
type finder struct {
	key   DeclKey
	tok   Token
	pos   Position
	found bool
}

// check tests toks and records the first hit under kind.
func (f *finder) check(kind DeclKind, toks ...Token) bool {
	if f.found {
		return true
	}

	for _, tok := range toks {
		if tok.Kind == TokenMatch || !tok.Contains(f.pos) {
			continue
		}

		f.key = DeclKey{Kind: kind, Name: tok.Literal}
		f.tok = tok
		f.found = true
		return true
	}

	return false
}

func (f *finder) script(s *MaterialScript) {
	for _, m := range s.Materials {
		if f.material(m) {
			return
		}
	}

	for _, a := range s.Abstracts {
		if f.abstract(a) {
			return
		}
	}

	for _, prog := range s.Programs {
		kind := programDeclKind(prog.Stage.Kind)
		if f.check(kind, prog.Name) || f.sharedParamRefs(prog.SharedParamRefs) {
			return
		}
	}

	for _, sp := range s.SharedParams {
		if f.check(DeclSharedParams, sp.Name) {
			return
		}
	}

	for _, sm := range s.Samplers {
		if f.check(DeclSampler, sm.Name, sm.Parent) {
			return
		}
	}

	for _, imp := range s.Imports {
		if imp.Target.Kind != TokenAsterisk && f.check(DeclMaterial, imp.Target) {
			return
		}
	}
}

func (f *finder) abstract(a *Abstract) bool {
	switch body := a.Body.(type) {
	case *Material:
		return f.material(body)
	case *Technique:
		return f.technique(body)
	case *Pass:
		return f.pass(body)
	case *TextureUnit:
		return f.textureUnit(body)
	case *RtShader:
		return f.check(DeclRtShader, body.Name, body.Parent)
	case *TextureSource:
		return f.check(DeclTextureSource, body.Name, body.Parent)
	}

	return false
}

func (f *finder) material(m *Material) bool {
	if f.check(DeclMaterial, m.Name, m.Parent) {
		return true
	}

	for _, t := range m.Techniques {
		if f.technique(t) {
			return true
		}
	}

	return false
}

func (f *finder) technique(t *Technique) bool {
	if f.check(DeclTechnique, t.Name, t.Parent) {
		return true
	}

	for _, p := range t.Passes {
		if f.pass(p) {
			return true
		}
	}

	for _, ref := range t.ShadowMaterials {
		if f.check(DeclMaterial, ref.Name) {
			return true
		}
	}

	return false
}

func (f *finder) pass(p *Pass) bool {
	if f.check(DeclPass, p.Name, p.Parent) {
		return true
	}

	for _, tu := range p.TextureUnits {
		if f.textureUnit(tu) {
			return true
		}
	}

	for _, ref := range p.ProgramRefs {
		if f.check(programDeclKind(ref.Type.Kind), ref.Name) || f.sharedParamRefs(ref.SharedParamRefs) {
			return true
		}
	}

	for _, rs := range p.RtShaders {
		if f.check(DeclRtShader, rs.Name, rs.Parent) {
			return true
		}
	}

	return false
}

func (f *finder) textureUnit(tu *TextureUnit) bool {
	if f.check(DeclTextureUnit, tu.Name, tu.Parent) {
		return true
	}

	for _, rs := range tu.RtShaders {
		if f.check(DeclRtShader, rs.Name, rs.Parent) {
			return true
		}
	}

	for _, ts := range tu.TextureSources {
		if f.check(DeclTextureSource, ts.Name, ts.Parent) {
			return true
		}
	}

	for _, ref := range tu.SamplerRefs {
		if f.check(DeclSampler, ref.Name) {
			return true
		}
	}

	return false
}

func (f *finder) sharedParamRefs(refs []*SharedParamRef) bool {
	for _, ref := range refs {
		if f.check(DeclSharedParams, ref.Name) {
			return true
		}
	}

	return false
}
