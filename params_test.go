package matscript

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineTokens scans one parameter line.
func lineTokens(t *testing.T, src string) []Token {
	t.Helper()
	tokens, diags := Scan([]byte(src), nil)
	require.Empty(t, diags)

	return significant(tokens)
}

func TestGrammarValidate(t *testing.T) {
	g := MustCompile(
		"<scene_blend>[<add><modulate>]",
		"<scene_blend>(identifier)(identifier)",
		"<depth_bias>(number)",
		"<depth_bias>(number)(number)",
		"<texture>(string)",
		"<texture>(identifier)",
	)

	tests := []struct {
		name string
		line string
		// err is the divergence token index, -1 for success.
		err int
	}{
		{"exact literal", "scene_blend add", -1},
		{"alternation", "scene_blend modulate", -1},
		{"wildcards", "scene_blend one zero", -1},
		{"optional tail", "depth_bias 1", -1},
		{"full tail", "depth_bias 1 2.5", -1},
		{"string wildcard", `texture "a b.png"`, -1},
		{"identifier wildcard", "texture a.png", -1},
		{"variable", "depth_bias $bias", -1},
		{"variable ends validation", "scene_blend $src 1 2 3", -1},
		{"commas skipped", "depth_bias 1 , 2", -1},
		{"trailing after leaf", "scene_blend add zero", -1},
		{"unknown", "foo 1", 0},
		{"prefix", "scene_blend", 0},
		{"partial wildcard", "scene_blend one", 1},
		{"divergent kind", "scene_blend 1", 1},
		{"divergent second", "depth_bias 1 on", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			toks := lineTokens(t, tt.line)
			err := g.Validate(toks)
			if tt.err < 0 {
				require.NoError(t, err)
				assert.True(t, g.Accepts(toks))
				return
			}

			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParams)
			assert.False(t, g.Accepts(toks))

			var se *SyntaxError
			require.True(t, errors.As(err, &se))
			assert.Equal(t, KindParams, se.Kind)
			assert.Equal(t, CodeInvalidParams, se.Code)
			assert.Equal(t, toks[tt.err].Range(), se.Range)
		})
	}
}

func TestGrammarPrefersLiterals(t *testing.T) {
	g := MustCompile("<filtering>(identifier)(number)", "<filtering><none>")

	assert.NoError(t, g.Validate(lineTokens(t, "filtering none")))
	assert.NoError(t, g.Validate(lineTokens(t, "filtering point 2")))
	assert.Error(t, g.Validate(lineTokens(t, "filtering point")))
}

func TestGrammarSharesNodes(t *testing.T) {
	g := MustCompile("<a><b>", "<a><c>", "<a>[<b><c>]", "<a>[<c><b>]")

	require.Len(t, g.root.children, 1)
	a := g.root.children[0]

	// <b>, <c> and the {b, c} set compared as a whole.
	require.Len(t, a.children, 3)
	assert.True(t, a.children[2].terminal)
	assert.Empty(t, a.children[2].children)
}

func TestCompileErrors(t *testing.T) {
	for _, pattern := range []string{
		"",
		"<open",
		"<>",
		"[<a>",
		"[<a>(number)]",
		"[]",
		"(float)",
		"(number",
		"word",
	} {
		t.Run(pattern, func(t *testing.T) {
			_, err := Compile(pattern)
			assert.Error(t, err)
		})
	}

	assert.Panics(t, func() { MustCompile("<bad") })
}

func TestGrammarMessages(t *testing.T) {
	g := MustCompile("<depth_check>[<on><off>]")

	err := g.Validate(lineTokens(t, "depth_check maybe"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected 'maybe' in 'depth_check' parameter, expected off, on")

	err = g.Validate(lineTokens(t, "depth_check"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "incomplete 'depth_check' parameter")

	err = g.Validate(lineTokens(t, "depth_write on"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown parameter 'depth_write'")
}

func TestGrammarCommasOnly(t *testing.T) {
	g := MustCompile("<a>(number)")
	comma := Token{Kind: TokenComma, Line: 3, Column: 4, Size: 1}

	err := g.Validate([]Token{comma})
	require.Error(t, err)

	var se *SyntaxError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, comma.Range(), se.Range)
	assert.Equal(t, "missing parameter name", se.Message)
}

func TestBuiltinGrammars(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		kind DeclKind
		line string
		ok   bool
	}{
		{DeclMaterial, "receive_shadows on", true},
		{DeclMaterial, "lod_values 100 200 300", true},
		{DeclMaterial, "set_texture_alias DiffuseMap rock.png", true},
		{DeclMaterial, "receive_shadows yes", false},
		{DeclTechnique, "scheme HighQuality", true},
		{DeclTechnique, "lod_index 1", true},
		{DeclTechnique, "gpu_vendor_rule exclude nvidia", true},
		{DeclTechnique, "gpu_device_rule include geforce true", true},
		{DeclPass, "ambient 0.1 0.2 0.3", true},
		{DeclPass, "ambient vertexcolour", true},
		{DeclPass, "ambient 0.1 0.2", false},
		{DeclPass, "specular 1 1 1 1 64", true},
		{DeclPass, "scene_blend add", true},
		{DeclPass, "scene_blend src_alpha one_minus_src_alpha", true},
		{DeclPass, "scene_blend src_alpha", false},
		{DeclPass, "depth_bias 1 2", true},
		{DeclPass, "alpha_rejection greater 128", true},
		{DeclPass, "iteration once_per_light point", true},
		{DeclPass, "iteration 2 per_n_lights 4 spot", true},
		{DeclPass, "fog_override true exp 1 1 1 0.002 100 10000", true},
		{DeclPass, "cull_hardware sideways", false},
		{DeclTextureUnit, "texture rock.png", true},
		{DeclTextureUnit, "texture rock.png 2d 5 alpha", true},
		{DeclTextureUnit, "texture rock.png 2d unlimited PF_R8G8B8 gamma", true},
		{DeclTextureUnit, "anim_texture flame.png 8 2.5", true},
		{DeclTextureUnit, "anim_texture a.png b.png c.png 1.5", true},
		{DeclTextureUnit, "cubic_texture sky.dds combinedUVW", true},
		{DeclTextureUnit, "cubic_texture f.png b.png l.png r.png u.png d.png separateUV", true},
		{DeclTextureUnit, "colour_op_ex blend_manual src_texture src_current 0.5", true},
		{DeclTextureUnit, "content_type compositor Bloom rt0 1", true},
		{DeclTextureUnit, "wave_xform scroll_x sine 0 0.5 0 1", true},
		{DeclTextureUnit, "filtering anisotropic", true},
		{DeclTextureUnit, "tex_address_mode wrap clamp mirror", true},
		{DeclTextureUnit, "env_map sideways", false},
		{DeclSampler, "max_anisotropy 8", true},
		{DeclSampler, "comp_func less_equal", true},
		{DeclSampler, "texture rock.png", false},
		{DeclRtShader, "anything goes here", true},
	}

	for _, tt := range tests {
		t.Run(tt.kind.String()+"/"+tt.line, func(t *testing.T) {
			err := v.ValidateLine(tt.kind, &ParamLine{Tokens: lineTokens(t, tt.line)})
			if tt.ok {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrParams)
			}
		})
	}
}

func TestValidateParams(t *testing.T) {
	res, err := ParseFile(filepath.Join("testdata", "basic.material"))
	require.NoError(t, err)

	v := NewValidator()
	assert.Empty(t, v.ValidateParams(res.Script))

	src := "sampler S\n{\n    filtering nearest\n}\n\n" +
		"abstract pass P\n{\n    lighting maybe\n}\n\n" +
		"material M\n{\n    receive_shadows on\n    technique\n    {\n        pass\n        {\n" +
		"            diffuse 1 1\n            lighting off\n" +
		"            texture_unit\n            {\n                tex_coord_set x\n            }\n" +
		"        }\n    }\n}\n"

	res = parseString(t, src)
	require.Empty(t, res.Diagnostics)

	diags := v.ValidateParams(res.Script)
	require.Len(t, diags, 4)

	// Materials first, then abstracts and samplers.
	lines := []int{diags[0].Range.Start.Line, diags[1].Range.Start.Line, diags[2].Range.Start.Line, diags[3].Range.Start.Line}
	assert.Equal(t, []int{17, 21, 7, 2}, lines)
	for _, d := range diags {
		assert.Equal(t, KindParams, d.Kind)
		assert.Equal(t, LevelError, d.Level)
	}
}

func TestValidatorNil(t *testing.T) {
	var v *Validator
	assert.Nil(t, v.ValidateParams(&MaterialScript{}))
	assert.Nil(t, NewValidator().ValidateParams(nil))
}

func TestDefaultValidatorShared(t *testing.T) {
	assert.Same(t, DefaultValidator(), DefaultValidator())
}
