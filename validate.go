package matscript

import "errors"

// ValidateParams checks every parameter line of the script against the
// grammar of its enclosing construct. It returns one diagnostic per failing
// line and never fails itself.
func (v *Validator) ValidateParams(script *MaterialScript) []Diagnostic {
	if v == nil || script == nil {
		return nil
	}

	var out []Diagnostic
	for _, m := range script.Materials {
		out = v.materialParams(out, m)
	}

	for _, a := range script.Abstracts {
		switch body := a.Body.(type) {
		case *Material:
			out = v.materialParams(out, body)
		case *Technique:
			out = v.techniqueParams(out, body)
		case *Pass:
			out = v.passParams(out, body)
		case *TextureUnit:
			out = v.textureUnitParams(out, body)
		}
	}

	for _, s := range script.Samplers {
		out = validateLines(out, v.sampler, s.Params)
	}

	return out
}

// ValidateLine checks a single line against the grammar named by kind.
// Kinds without a grammar accept every line.
func (v *Validator) ValidateLine(kind DeclKind, line *ParamLine) error {
	g := v.grammar(kind)
	if g == nil || line == nil {
		return nil
	}

	return g.Validate(line.Tokens)
}

// grammar returns the grammar of a construct kind.
func (v *Validator) grammar(kind DeclKind) *Grammar {
	switch kind {
	case DeclMaterial:
		return v.material
	case DeclTechnique:
		return v.technique
	case DeclPass:
		return v.pass
	case DeclTextureUnit:
		return v.textureUnit
	case DeclSampler:
		return v.sampler
	default:
		return nil
	}
}

func (v *Validator) materialParams(out []Diagnostic, m *Material) []Diagnostic {
	if m == nil {
		return out
	}

	out = validateLines(out, v.material, m.Params)
	for _, t := range m.Techniques {
		out = v.techniqueParams(out, t)
	}

	return out
}

func (v *Validator) techniqueParams(out []Diagnostic, t *Technique) []Diagnostic {
	if t == nil {
		return out
	}

	out = validateLines(out, v.technique, t.Params)
	for _, p := range t.Passes {
		out = v.passParams(out, p)
	}

	return out
}

func (v *Validator) passParams(out []Diagnostic, p *Pass) []Diagnostic {
	if p == nil {
		return out
	}

	out = validateLines(out, v.pass, p.Params)
	for _, tu := range p.TextureUnits {
		out = v.textureUnitParams(out, tu)
	}

	return out
}

func (v *Validator) textureUnitParams(out []Diagnostic, tu *TextureUnit) []Diagnostic {
	if tu == nil {
		return out
	}

	return validateLines(out, v.textureUnit, tu.Params)
}

// validateLines appends one diagnostic per line rejected by g.
func validateLines(out []Diagnostic, g *Grammar, lines []*ParamLine) []Diagnostic {
	for _, line := range lines {
		err := g.Validate(line.Tokens)
		if err == nil {
			continue
		}

		var se *SyntaxError
		if errors.As(err, &se) {
			out = append(out, se.Diagnostic())
			continue
		}

		out = append(out, Diagnostic{Level: LevelError, Kind: KindParams, Code: CodeInvalidParams, Message: err.Error(), Range: line.Range()})
	}

	return out
}
