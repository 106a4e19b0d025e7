package matscript

// TokenKind represents a type of a token.
type TokenKind int

// token kinds.
const (
	TokenBad        TokenKind = iota // Zero value, also the empty token sentinel
	TokenEndOfLine                   // \n
	TokenEndOfFile                   // End of input
	TokenComment                     // // comment, only with ScanOptions.KeepComments
	TokenIdentifier                  // Identifier
	TokenString                      // "string"
	TokenMatch                       // *match*
	TokenNumber                      // Number
	TokenVariable                    // $variable
	TokenColon                       // :
	TokenComma                       // ,
	TokenLeftBrace                   // {
	TokenRightBrace                  // }
	TokenAsterisk                    // *

	TokenMaterial
	TokenTechnique
	TokenPass
	TokenTextureUnit
	TokenRtShaderSystem
	TokenTextureSource
	TokenSampler
	TokenSamplerRef
	TokenSharedParams
	TokenSharedParamsRef
	TokenImport
	TokenFrom
	TokenAbstract
	TokenDefaultParams
	TokenVertexProgram
	TokenFragmentProgram
	TokenGeometryProgram
	TokenTessellationHullProgram
	TokenTessellationDomainProgram
	TokenComputeProgram
	TokenVertexProgramRef
	TokenFragmentProgramRef
	TokenGeometryProgramRef
	TokenTessellationHullProgramRef
	TokenTessellationDomainProgramRef
	TokenComputeProgramRef
	TokenShadowCasterMaterial
	TokenShadowReceiverMaterial

	tokenKindCount
)

// keywords maps exact keyword literals to their kinds.
var keywords = map[string]TokenKind{
	"material":                        TokenMaterial,
	"technique":                       TokenTechnique,
	"pass":                            TokenPass,
	"texture_unit":                    TokenTextureUnit,
	"rtshader_system":                 TokenRtShaderSystem,
	"texture_source":                  TokenTextureSource,
	"sampler":                         TokenSampler,
	"sampler_ref":                     TokenSamplerRef,
	"shared_params":                   TokenSharedParams,
	"shared_params_ref":               TokenSharedParamsRef,
	"import":                          TokenImport,
	"from":                            TokenFrom,
	"abstract":                        TokenAbstract,
	"default_params":                  TokenDefaultParams,
	"vertex_program":                  TokenVertexProgram,
	"fragment_program":                TokenFragmentProgram,
	"geometry_program":                TokenGeometryProgram,
	"tessellation_hull_program":       TokenTessellationHullProgram,
	"tessellation_domain_program":     TokenTessellationDomainProgram,
	"compute_program":                 TokenComputeProgram,
	"vertex_program_ref":              TokenVertexProgramRef,
	"fragment_program_ref":            TokenFragmentProgramRef,
	"geometry_program_ref":            TokenGeometryProgramRef,
	"tessellation_hull_program_ref":   TokenTessellationHullProgramRef,
	"tessellation_domain_program_ref": TokenTessellationDomainProgramRef,
	"compute_program_ref":             TokenComputeProgramRef,
	"shadow_caster_material":          TokenShadowCasterMaterial,
	"shadow_receiver_material":        TokenShadowReceiverMaterial,
}

// kindNames holds display names indexed by kind.
var kindNames = [tokenKindCount]string{
	TokenBad:        "bad",
	TokenEndOfLine:  "end of line",
	TokenEndOfFile:  "end of file",
	TokenComment:    "comment",
	TokenIdentifier: "identifier",
	TokenString:     "string literal",
	TokenMatch:      "match literal",
	TokenNumber:     "number",
	TokenVariable:   "variable",
	TokenColon:      "':'",
	TokenComma:      "','",
	TokenLeftBrace:  "'{'",
	TokenRightBrace: "'}'",
	TokenAsterisk:   "'*'",
}

func init() {
	for lit, k := range keywords {
		kindNames[k] = lit
	}
}

// String implements fmt.Stringer.
func (k TokenKind) String() string {
	if k < 0 || k >= tokenKindCount {
		return "token"
	}

	return kindNames[k]
}

// IsKeyword reports whether k is a keyword kind.
func (k TokenKind) IsKeyword() bool {
	return k >= TokenMaterial && k < tokenKindCount
}

// IsProgram reports whether k starts a program definition.
func (k TokenKind) IsProgram() bool {
	return k >= TokenVertexProgram && k <= TokenComputeProgram
}

// IsProgramRef reports whether k starts a program reference.
func (k TokenKind) IsProgramRef() bool {
	return k >= TokenVertexProgramRef && k <= TokenComputeProgramRef
}

// isTopLevel reports whether k can only start a top-level construct.
func (k TokenKind) isTopLevel() bool {
	switch k {
	case TokenMaterial, TokenAbstract, TokenImport, TokenSampler, TokenSharedParams:
		return true
	}

	return k.IsProgram()
}

// isParamValue reports whether k may appear in a parameter line.
func (k TokenKind) isParamValue() bool {
	switch k {
	case TokenIdentifier, TokenString, TokenNumber, TokenVariable, TokenComma:
		return true
	}

	return false
}

// Token is a scanned token.
type Token struct {
	Kind    TokenKind `json:"kind" yaml:"kind"`                         // Kind of the token
	Literal string    `json:"literal,omitempty" yaml:"literal,omitempty"` // Literal text, without quotes or stars
	Line    int       `json:"line" yaml:"line"`                         // Zero-based line
	Column  int       `json:"column" yaml:"column"`                     // Zero-based column
	Size    int       `json:"size" yaml:"size"`                         // Rendered width in the source
}

// IsZero reports whether t is the empty sentinel.
func (t Token) IsZero() bool {
	return t.Kind == TokenBad && t.Literal == "" && t.Size == 0
}

// Start returns the token start position.
func (t Token) Start() Position {
	return Position{Line: t.Line, Character: t.Column}
}

// End returns the exclusive token end position.
func (t Token) End() Position {
	return Position{Line: t.Line, Character: t.Column + t.Size}
}

// Range returns the token source range.
func (t Token) Range() Range {
	return Range{Start: t.Start(), End: t.End()}
}

// Contains reports whether pos touches the token, the position right
// after the last character included.
func (t Token) Contains(pos Position) bool {
	if t.IsZero() || pos.Line != t.Line {
		return false
	}

	return pos.Character >= t.Column && pos.Character <= t.Column+t.Size
}

// Source renders the token as it appears in source.
func (t Token) Source() string {
	switch t.Kind {
	case TokenString:
		return `"` + t.Literal + `"`
	case TokenMatch:
		return "*" + t.Literal + "*"
	case TokenEndOfLine:
		return "\n"
	case TokenEndOfFile:
		return ""
	default:
		return t.Literal
	}
}
