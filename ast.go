package matscript

// MaterialScript is the root of a parsed document.
type MaterialScript struct {
	URI          string          `json:"uri" yaml:"uri"`                                       // Document URI
	Materials    []*Material     `json:"materials,omitempty" yaml:"materials,omitempty"`       // material blocks
	Programs     []*Program      `json:"programs,omitempty" yaml:"programs,omitempty"`         // *_program blocks
	Abstracts    []*Abstract     `json:"abstracts,omitempty" yaml:"abstracts,omitempty"`       // abstract blocks
	Imports      []*Import       `json:"imports,omitempty" yaml:"imports,omitempty"`           // import statements
	SharedParams []*SharedParams `json:"sharedParams,omitempty" yaml:"sharedParams,omitempty"` // shared_params blocks
	Samplers     []*Sampler      `json:"samplers,omitempty" yaml:"samplers,omitempty"`         // sampler blocks
}

// Object holds what every named block has in common.
type Object struct {
	Name   Token `json:"name" yaml:"name"`     // Block name, zero for anonymous blocks
	Parent Token `json:"parent" yaml:"parent"` // Inheritance parent, zero without "name : parent"
	Range  Range `json:"range" yaml:"range"`   // Keyword to closing brace
}

// AbstractBody is one of *Material, *Technique, *Pass, *TextureUnit,
// *RtShader or *TextureSource.
type AbstractBody interface {
	abstractBody()
}

// Abstract represents an abstract template block.
type Abstract struct {
	Type Token        `json:"type" yaml:"type"` // Keyword of the concrete construct
	Body AbstractBody `json:"body" yaml:"body"` // Concrete construct
}

// Program represents a GPU program definition.
type Program struct {
	Stage           Token             `json:"stage" yaml:"stage"`                                         // Program keyword
	Name            Token             `json:"name" yaml:"name"`                                           // Program name
	HighLevelTypes  []Token           `json:"highLevelTypes,omitempty" yaml:"highLevelTypes,omitempty"`   // glsl, hlsl, ...
	Params          []*ParamLine      `json:"params,omitempty" yaml:"params,omitempty"`                   // Body parameter lines
	Defaults        []*ParamLine      `json:"defaults,omitempty" yaml:"defaults,omitempty"`               // default_params lines
	SharedParamRefs []*SharedParamRef `json:"sharedParamRefs,omitempty" yaml:"sharedParamRefs,omitempty"` // default_params references
	Range           Range             `json:"range" yaml:"range"`                                         // Keyword to closing brace
}

// ProgramRef represents a *_program_ref block inside a pass.
type ProgramRef struct {
	Type            Token             `json:"type" yaml:"type"`                                           // *_program_ref keyword
	Name            Token             `json:"name" yaml:"name"`                                           // Referenced program
	Params          []*ParamLine      `json:"params,omitempty" yaml:"params,omitempty"`                   // Body parameter lines
	SharedParamRefs []*SharedParamRef `json:"sharedParamRefs,omitempty" yaml:"sharedParamRefs,omitempty"` // shared_params_ref lines
	Range           Range             `json:"range" yaml:"range"`                                         // Keyword to closing brace
}

// SharedParams represents a shared_params block.
type SharedParams struct {
	Object `yaml:",inline"`
	Params []*ParamLine `json:"params,omitempty" yaml:"params,omitempty"` // shared_param_named lines
}

// Sampler represents a sampler block.
type Sampler struct {
	Object `yaml:",inline"`
	Params []*ParamLine `json:"params,omitempty" yaml:"params,omitempty"` // Sampler state lines
}

// SharedParamRef represents a shared_params_ref line.
type SharedParamRef struct {
	Type Token `json:"type" yaml:"type"` // Keyword
	Name Token `json:"name" yaml:"name"` // Referenced shared_params
}

// SamplerRef represents a sampler_ref line.
type SamplerRef struct {
	Type Token `json:"type" yaml:"type"` // Keyword
	Name Token `json:"name" yaml:"name"` // Referenced sampler
}

// ShadowMaterialRef represents shadow_caster_material and shadow_receiver_material lines.
type ShadowMaterialRef struct {
	Type Token `json:"type" yaml:"type"` // Keyword
	Name Token `json:"name" yaml:"name"` // Referenced material
}

// Import represents an import statement.
type Import struct {
	Keyword Token `json:"keyword" yaml:"keyword"` // The import keyword
	Target  Token `json:"target" yaml:"target"`   // Imported name or '*'
	Source  Token `json:"source" yaml:"source"`   // Script the name comes from
	Range   Range `json:"range" yaml:"range"`     // Whole statement
}

// ParamLine is an unparsed value line, validated later against a grammar.
type ParamLine struct {
	Tokens []Token `json:"tokens" yaml:"tokens"` // identifier/string/number/variable/comma tokens
}

// Name returns the parameter keyword, the first token of the line.
func (p *ParamLine) Name() Token {
	if p == nil || len(p.Tokens) == 0 {
		return Token{}
	}

	return p.Tokens[0]
}

// Args returns the tokens after the parameter keyword.
func (p *ParamLine) Args() []Token {
	if p == nil || len(p.Tokens) < 2 {
		return nil
	}

	return p.Tokens[1:]
}

// Range returns the source range of the line.
func (p *ParamLine) Range() Range {
	if p == nil || len(p.Tokens) == 0 {
		return Range{}
	}

	return Range{Start: p.Tokens[0].Start(), End: p.Tokens[len(p.Tokens)-1].End()}
}

// DeclKind tags declarations so unrelated block kinds never collide.
type DeclKind int

// declaration kinds.
const (
	DeclMaterial DeclKind = iota
	DeclTechnique
	DeclPass
	DeclTextureUnit
	DeclTextureSource
	DeclRtShader
	DeclSharedParams
	DeclSampler
	DeclVertexProgram
	DeclFragmentProgram
	DeclGeometryProgram
	DeclTessellationHullProgram
	DeclTessellationDomainProgram
	DeclComputeProgram
)

// String implements fmt.Stringer.
func (k DeclKind) String() string {
	switch k {
	case DeclMaterial:
		return "material"
	case DeclTechnique:
		return "technique"
	case DeclPass:
		return "pass"
	case DeclTextureUnit:
		return "texture_unit"
	case DeclTextureSource:
		return "texture_source"
	case DeclRtShader:
		return "rtshader_system"
	case DeclSharedParams:
		return "shared_params"
	case DeclSampler:
		return "sampler"
	case DeclVertexProgram:
		return "vertex_program"
	case DeclFragmentProgram:
		return "fragment_program"
	case DeclGeometryProgram:
		return "geometry_program"
	case DeclTessellationHullProgram:
		return "tessellation_hull_program"
	case DeclTessellationDomainProgram:
		return "tessellation_domain_program"
	case DeclComputeProgram:
		return "compute_program"
	default:
		return "unknown"
	}
}

// DeclKey identifies a declaration.
type DeclKey struct {
	Kind DeclKind
	Name string
}

// Declarations indexes declaring name tokens by key.
type Declarations map[DeclKey]Token

// declare registers tok under kind, the first declaration wins.
func (d Declarations) declare(kind DeclKind, tok Token) {
	if tok.IsZero() || tok.Kind == TokenMatch {
		return
	}

	key := DeclKey{Kind: kind, Name: tok.Literal}
	if _, ok := d[key]; ok {
		return
	}

	d[key] = tok
}

// Lookup returns the declaring token for key.
func (d Declarations) Lookup(key DeclKey) (Token, bool) {
	tok, ok := d[key]
	return tok, ok
}

// programDeclKind maps program and program reference keywords to their stage kind.
func programDeclKind(k TokenKind) DeclKind {
	switch k {
	case TokenVertexProgram, TokenVertexProgramRef:
		return DeclVertexProgram
	case TokenFragmentProgram, TokenFragmentProgramRef:
		return DeclFragmentProgram
	case TokenGeometryProgram, TokenGeometryProgramRef:
		return DeclGeometryProgram
	case TokenTessellationHullProgram, TokenTessellationHullProgramRef:
		return DeclTessellationHullProgram
	case TokenTessellationDomainProgram, TokenTessellationDomainProgramRef:
		return DeclTessellationDomainProgram
	default:
		return DeclComputeProgram
	}
}
