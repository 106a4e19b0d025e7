package matscript

import "strings"

const num = "(number)"

var (
	onOff        = alt("on", "off")
	trueFalse    = alt("true", "false")
	compareFunc  = alt("always_fail", "always_pass", "less", "less_equal", "equal", "not_equal", "greater_equal", "greater")
	blendOp      = alt("add", "subtract", "reverse_subtract", "min", "max")
	simpleBlend  = alt("add", "modulate", "colour_blend", "alpha_blend", "replace")
	lightType    = alt("point", "directional", "spot")
	addressMode  = alt("wrap", "clamp", "mirror", "border")
	textureType  = alt("1d", "2d", "3d", "cubic", "2darray")
	layerBlendOp = alt("source1", "source2", "modulate", "modulate_x2", "modulate_x4", "add", "add_signed",
		"add_smooth", "subtract", "blend_diffuse_alpha", "blend_texture_alpha", "blend_current_alpha",
		"blend_manual", "dotproduct", "blend_diffuse_colour")
	layerSource  = alt("src_current", "src_texture", "src_diffuse", "src_specular", "src_manual")
	colourFactor = alt("one", "zero", "dest_colour", "src_colour", "one_minus_dest_colour",
		"one_minus_src_colour", "dest_alpha", "src_alpha", "one_minus_dest_alpha", "one_minus_src_alpha")
	fileName = []string{"(identifier)", "(string)"}
)

// lit returns a literal pattern element.
func lit(name string) string {
	return "<" + name + ">"
}

// alt returns an alternation pattern element.
func alt(names ...string) string {
	var b strings.Builder
	b.WriteByte('[')
	for _, name := range names {
		b.WriteString(lit(name))
	}
	b.WriteByte(']')

	return b.String()
}

// rep repeats elem n times.
func rep(elem string, n int) string {
	return strings.Repeat(elem, n)
}

// opt builds an optional group for expand.
func opt(alts ...string) []string {
	return append([]string{""}, alts...)
}

// expand returns base followed by one alternative of each group, for every
// combination. An empty alternative leaves the group out.
func expand(base string, groups ...[]string) []string {
	out := []string{base}
	for _, group := range groups {
		next := make([]string, 0, len(out)*len(group))
		for _, prefix := range out {
			for _, a := range group {
				next = append(next, prefix+a)
			}
		}
		out = next
	}

	return out
}

// between returns base followed by lo to hi copies of elem.
func between(base, elem string, lo, hi int) []string {
	out := make([]string, 0, hi-lo+1)
	for n := lo; n <= hi; n++ {
		out = append(out, base+rep(elem, n))
	}

	return out
}

// materialPatterns lists material parameter lines.
func materialPatterns() []string {
	out := []string{
		lit("lod_strategy") + alt("distance_box", "distance_sphere", "pixel_count", "screen_ratio_pixel_count", "Distance", "PixelCount"),
		lit("receive_shadows") + onOff,
		lit("transparency_casts_shadows") + onOff,
		lit("set") + "(identifier)(identifier)",
		lit("set") + "(identifier)(string)",
		lit("set") + "(identifier)" + num,
	}
	out = append(out, between(lit("lod_values"), num, 1, 32)...)
	out = append(out, between(lit("lod_distances"), num, 1, 32)...)
	out = append(out, expand(lit("set_texture_alias")+"(identifier)", fileName)...)

	return out
}

// techniquePatterns lists technique parameter lines.
func techniquePatterns() []string {
	out := []string{
		lit("scheme") + "(identifier)",
		lit("lod_index") + num,
		lit("gpu_vendor_rule") + alt("include", "exclude") + "(identifier)",
	}
	out = append(out, expand(lit("gpu_device_rule")+alt("include", "exclude"), fileName, opt(trueFalse))...)

	return out
}

// passPatterns lists pass parameter lines.
func passPatterns() []string {
	var out []string
	for _, name := range []string{"ambient", "diffuse", "emissive", "self_illumination"} {
		out = append(out, expand(lit(name), []string{lit("vertexcolour"), rep(num, 3), rep(num, 4)})...)
	}
	out = append(out, expand(lit("specular"), []string{lit("vertexcolour") + num, rep(num, 4), rep(num, 5)})...)

	out = append(out,
		lit("scene_blend")+simpleBlend,
		lit("scene_blend")+colourFactor+colourFactor,
		lit("separate_scene_blend")+simpleBlend+simpleBlend,
		lit("separate_scene_blend")+rep(colourFactor, 4),
		lit("scene_blend_op")+blendOp,
		lit("separate_scene_blend_op")+blendOp+blendOp,
		lit("depth_check")+onOff,
		lit("depth_write")+onOff,
		lit("depth_func")+compareFunc,
		lit("iteration_depth_bias")+num,
		lit("alpha_to_coverage")+onOff,
		lit("light_scissor")+onOff,
		lit("light_clip_planes")+onOff,
		lit("illumination_stage")+alt("ambient", "per_light", "decal"),
		lit("transparent_sorting")+alt("on", "off", "force"),
		lit("normalise_normals")+onOff,
		lit("cull_hardware")+alt("clockwise", "anticlockwise", "none"),
		lit("cull_software")+alt("back", "front", "none"),
		lit("lighting")+onOff,
		lit("shading")+alt("flat", "gouraud", "phong"),
		lit("polygon_mode")+alt("solid", "wireframe", "points"),
		lit("polygon_mode_overrideable")+trueFalse,
		lit("fog_override")+trueFalse,
		lit("fog_override")+trueFalse+alt("none", "linear", "exp", "exp2")+rep(num, 6),
		lit("colour_write")+onOff,
		lit("colour_write")+rep(onOff, 4),
		lit("max_lights")+num,
		lit("start_light")+num,
		lit("point_size")+num,
		lit("point_sprites")+onOff,
		lit("point_size_attenuation")+onOff,
		lit("point_size_attenuation")+onOff+rep(num, 3),
		lit("point_size_min")+num,
		lit("point_size_max")+num,
		lit("line_width")+num,
	)
	out = append(out, expand(lit("depth_bias")+num, opt(num))...)
	out = append(out, expand(lit("alpha_rejection")+compareFunc, opt(num))...)
	out = append(out, expand(lit("iteration")+alt("once", "once_per_light"), opt(lightType))...)
	out = append(out, expand(lit("iteration")+num, opt(
		lit("per_light"),
		lit("per_light")+lightType,
		lit("per_n_lights")+num,
		lit("per_n_lights")+num+lightType,
	))...)

	return out
}

// samplerPatterns lists sampler state lines, shared by sampler blocks and texture units.
func samplerPatterns() []string {
	filter := alt("none", "point", "linear", "anisotropic")
	return []string{
		lit("tex_address_mode") + addressMode,
		lit("tex_address_mode") + rep(addressMode, 3),
		lit("tex_border_colour") + rep(num, 3),
		lit("tex_border_colour") + rep(num, 4),
		lit("filtering") + alt("none", "bilinear", "trilinear", "anisotropic"),
		lit("filtering") + rep(filter, 3),
		lit("max_anisotropy") + num,
		lit("mipmap_bias") + num,
		lit("compare_test") + onOff,
		lit("comp_func") + compareFunc,
	}
}

// textureUnitPatterns lists texture_unit parameter lines.
func textureUnitPatterns() []string {
	out := samplerPatterns()
	out = append(out,
		lit("texture_alias")+"(identifier)",
		lit("tex_coord_set")+num,
		lit("colour_op")+alt("replace", "add", "modulate", "alpha_blend"),
		lit("colour_op_multipass_fallback")+colourFactor+colourFactor,
		lit("env_map")+alt("off", "spherical", "planar", "cubic_reflection", "cubic_normal"),
		lit("scroll")+rep(num, 2),
		lit("scroll_anim")+rep(num, 2),
		lit("rotate")+num,
		lit("rotate_anim")+num,
		lit("scale")+rep(num, 2),
		lit("wave_xform")+alt("scroll_x", "scroll_y", "rotate", "scale_x", "scale_y")+
			alt("sine", "triangle", "square", "sawtooth", "inverse_sawtooth")+rep(num, 4),
		lit("transform")+rep(num, 16),
		lit("binding_type")+alt("vertex", "fragment"),
		lit("content_type")+alt("named", "shadow", "compositor"),
		lit("unordered_access_mip")+num,
	)

	out = append(out, expand(lit("content_type")+alt("named", "shadow", "compositor")+"(identifier)(identifier)", opt(num))...)
	out = append(out, expand(lit("texture"), fileName, opt(textureType), opt(num, lit("unlimited")),
		opt(lit("alpha")), opt("(identifier)"), opt(lit("gamma")))...)
	out = append(out, expand(lit("anim_texture"), fileName, []string{rep(num, 2)})...)
	for frames := 2; frames <= 32; frames++ {
		// Frame lists end with the animation duration.
		out = append(out, lit("anim_texture")+rep("(identifier)", frames)+num)
	}
	out = append(out, expand(lit("cubic_texture"), fileName, []string{alt("combinedUVW", "separateUV")})...)
	out = append(out, lit("cubic_texture")+rep("(identifier)", 6)+lit("separateUV"))
	out = append(out, between(lit("colour_op_ex")+layerBlendOp+layerSource+layerSource, num, 0, 7)...)
	out = append(out, between(lit("alpha_op_ex")+layerBlendOp+layerSource+layerSource, num, 0, 2)...)

	return out
}
