package matscript

// Material represents a material block.
type Material struct {
	Object `yaml:",inline"`
	Params     []*ParamLine `json:"params,omitempty" yaml:"params,omitempty"`         // Free-form parameter lines
	Techniques []*Technique `json:"techniques,omitempty" yaml:"techniques,omitempty"` // Techniques
}

// Technique represents a technique block.
type Technique struct {
	Object `yaml:",inline"`
	Params          []*ParamLine         `json:"params,omitempty" yaml:"params,omitempty"`                   // Free-form parameter lines
	Passes          []*Pass              `json:"passes,omitempty" yaml:"passes,omitempty"`                   // Passes
	ShadowMaterials []*ShadowMaterialRef `json:"shadowMaterials,omitempty" yaml:"shadowMaterials,omitempty"` // Shadow caster/receiver references
}

// Pass represents a pass block.
type Pass struct {
	Object `yaml:",inline"`
	Params       []*ParamLine   `json:"params,omitempty" yaml:"params,omitempty"`             // Free-form parameter lines
	TextureUnits []*TextureUnit `json:"textureUnits,omitempty" yaml:"textureUnits,omitempty"` // Texture units
	RtShaders    []*RtShader    `json:"rtShaders,omitempty" yaml:"rtShaders,omitempty"`       // RTSS blocks
	ProgramRefs  []*ProgramRef  `json:"programRefs,omitempty" yaml:"programRefs,omitempty"`   // GPU program references
}

// TextureUnit represents a texture_unit block.
type TextureUnit struct {
	Object `yaml:",inline"`
	Params         []*ParamLine     `json:"params,omitempty" yaml:"params,omitempty"`                 // Free-form parameter lines
	RtShaders      []*RtShader      `json:"rtShaders,omitempty" yaml:"rtShaders,omitempty"`           // RTSS blocks
	TextureSources []*TextureSource `json:"textureSources,omitempty" yaml:"textureSources,omitempty"` // texture_source blocks
	SamplerRefs    []*SamplerRef    `json:"samplerRefs,omitempty" yaml:"samplerRefs,omitempty"`       // sampler_ref lines
}

// RtShader represents an rtshader_system block.
type RtShader struct {
	Object `yaml:",inline"`
	Params []*ParamLine `json:"params,omitempty" yaml:"params,omitempty"` // Free-form parameter lines
}

// TextureSource represents a texture_source block.
type TextureSource struct {
	Object `yaml:",inline"`
	Params []*ParamLine `json:"params,omitempty" yaml:"params,omitempty"` // Free-form parameter lines
}

// abstractBody implements AbstractBody.
func (*Material) abstractBody() {}

// abstractBody implements AbstractBody.
func (*Technique) abstractBody() {}

// abstractBody implements AbstractBody.
func (*Pass) abstractBody() {}

// abstractBody implements AbstractBody.
func (*TextureUnit) abstractBody() {}

// abstractBody implements AbstractBody.
func (*RtShader) abstractBody() {}

// abstractBody implements AbstractBody.
func (*TextureSource) abstractBody() {}
