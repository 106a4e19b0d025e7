package matscript

// SymbolKind mirrors the editor protocol symbol kinds used here.
type SymbolKind int

// symbol kinds.
const (
	SymbolModule    SymbolKind = 2
	SymbolNamespace SymbolKind = 3
	SymbolClass     SymbolKind = 5
	SymbolMethod    SymbolKind = 6
	SymbolProperty  SymbolKind = 7
	SymbolField     SymbolKind = 8
	SymbolInterface SymbolKind = 11
	SymbolFunction  SymbolKind = 12
	SymbolStruct    SymbolKind = 23
)

// Symbol is an outline entry.
type Symbol struct {
	Name           string     `json:"name" yaml:"name"`
	Detail         string     `json:"detail,omitempty" yaml:"detail,omitempty"`
	Kind           SymbolKind `json:"kind" yaml:"kind"`
	Range          Range      `json:"range" yaml:"range"`
	SelectionRange Range      `json:"selectionRange" yaml:"selectionRange"`
	Children       []Symbol   `json:"children,omitempty" yaml:"children,omitempty"`
}

// DocumentSymbols returns the outline of a script.
func DocumentSymbols(script *MaterialScript) []Symbol {
	if script == nil {
		return nil
	}

	var out []Symbol
	for _, m := range script.Materials {
		out = append(out, materialSymbol(m))
	}

	for _, a := range script.Abstracts {
		sym, ok := bodySymbol(a.Body)
		if !ok {
			continue
		}
		sym.Kind = SymbolInterface
		sym.Detail = "abstract " + a.Type.Literal
		out = append(out, sym)
	}

	for _, prog := range script.Programs {
		detail := prog.Stage.Literal
		for _, t := range prog.HighLevelTypes {
			detail += " " + t.Literal
		}
		out = append(out, newSymbol(prog.Name.Literal, detail, SymbolFunction, prog.Range, prog.Name))
	}

	for _, sp := range script.SharedParams {
		out = append(out, objectSymbol(sp.Object, "shared_params", SymbolStruct))
	}

	for _, sm := range script.Samplers {
		out = append(out, objectSymbol(sm.Object, "sampler", SymbolStruct))
	}

	for _, imp := range script.Imports {
		out = append(out, newSymbol(imp.Target.Source(), "from "+imp.Source.Literal, SymbolModule, imp.Range, imp.Target))
	}

	return out
}

func bodySymbol(body AbstractBody) (Symbol, bool) {
	switch b := body.(type) {
	case *Material:
		return materialSymbol(b), true
	case *Technique:
		return techniqueSymbol(b), true
	case *Pass:
		return passSymbol(b), true
	case *TextureUnit:
		return textureUnitSymbol(b), true
	case *RtShader:
		return objectSymbol(b.Object, "rtshader_system", SymbolProperty), true
	case *TextureSource:
		return objectSymbol(b.Object, "texture_source", SymbolProperty), true
	}

	return Symbol{}, false
}

func materialSymbol(m *Material) Symbol {
	sym := objectSymbol(m.Object, "material", SymbolClass)
	for _, t := range m.Techniques {
		sym.Children = append(sym.Children, techniqueSymbol(t))
	}

	return sym
}

func techniqueSymbol(t *Technique) Symbol {
	sym := objectSymbol(t.Object, "technique", SymbolNamespace)
	for _, p := range t.Passes {
		sym.Children = append(sym.Children, passSymbol(p))
	}

	return sym
}

func passSymbol(p *Pass) Symbol {
	sym := objectSymbol(p.Object, "pass", SymbolMethod)
	for _, tu := range p.TextureUnits {
		sym.Children = append(sym.Children, textureUnitSymbol(tu))
	}
	for _, rs := range p.RtShaders {
		sym.Children = append(sym.Children, objectSymbol(rs.Object, "rtshader_system", SymbolProperty))
	}
	for _, ref := range p.ProgramRefs {
		sym.Children = append(sym.Children, newSymbol(ref.Name.Literal, ref.Type.Literal, SymbolFunction, ref.Range, ref.Name))
	}

	return sym
}

func textureUnitSymbol(tu *TextureUnit) Symbol {
	sym := objectSymbol(tu.Object, "texture_unit", SymbolField)
	for _, ts := range tu.TextureSources {
		sym.Children = append(sym.Children, objectSymbol(ts.Object, "texture_source", SymbolProperty))
	}
	for _, rs := range tu.RtShaders {
		sym.Children = append(sym.Children, objectSymbol(rs.Object, "rtshader_system", SymbolProperty))
	}

	return sym
}

// objectSymbol builds a symbol for a block; anonymous blocks take the keyword as name.
func objectSymbol(obj Object, keyword string, kind SymbolKind) Symbol {
	name := obj.Name.Source()
	if name == "" {
		name = keyword
	}

	detail := ""
	if !obj.Parent.IsZero() {
		detail = ": " + obj.Parent.Literal
	}

	return newSymbol(name, detail, kind, obj.Range, obj.Name)
}

// newSymbol keeps the selection range inside the full range, also for
// blocks that failed before their closing brace.
func newSymbol(name, detail string, kind SymbolKind, rng Range, sel Token) Symbol {
	selRange := pointRange(rng.Start)
	if !sel.IsZero() {
		selRange = sel.Range()
	}
	if rng == (Range{}) || selRange.End.Before(rng.Start) || rng.End.Before(selRange.End) {
		rng = selRange
	}

	return Symbol{Name: name, Detail: detail, Kind: kind, Range: rng, SelectionRange: selRange}
}
