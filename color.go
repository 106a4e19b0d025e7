package matscript

import "strconv"

// colorParams are pass parameters carrying an RGB(A) value.
var colorParams = map[string]struct{}{
	"ambient":           {},
	"diffuse":           {},
	"specular":          {},
	"emissive":          {},
	"self_illumination": {},
	"tex_border_colour": {},
}

// Color represents RGBA color.
type Color struct {
	R float64 `json:"red" yaml:"red"`     // Red channel component
	G float64 `json:"green" yaml:"green"` // Green channel component
	B float64 `json:"blue" yaml:"blue"`   // Blue channel component
	A float64 `json:"alpha" yaml:"alpha"` // Alpha channel component
}

// ColorInfo is a color literal found in a document.
type ColorInfo struct {
	Color Color `json:"color" yaml:"color"` // Parsed value
	Range Range `json:"range" yaml:"range"` // Range of the numeric components
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Clamped returns the color with every channel clamped to [0,1].
func (c Color) Clamped() Color {
	return Color{R: Clamp01(c.R), G: Clamp01(c.G), B: Clamp01(c.B), A: Clamp01(c.A)}
}

// ToArray converts color to float array.
func (c Color) ToArray() []float64 {
	return []float64{c.R, c.G, c.B, c.A}
}

// ParseColor reads the color of an ambient, diffuse, specular, emissive or
// tex_border_colour line. Alpha defaults to 1. The shininess trailing a
// specular color is not part of the range.
func ParseColor(line *ParamLine) (ColorInfo, bool) {
	if _, ok := colorParams[line.Name().Literal]; !ok {
		return ColorInfo{}, false
	}

	args := line.Args()
	n := len(args)
	if line.Name().Literal == "specular" {
		n-- // shininess
	}
	if n != 3 && n != 4 {
		return ColorInfo{}, false
	}

	vals := make([]float64, 4)
	vals[3] = 1
	for i, tok := range args[:n] {
		if tok.Kind != TokenNumber {
			return ColorInfo{}, false
		}
		v, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			return ColorInfo{}, false
		}
		vals[i] = v
	}

	return ColorInfo{
		Color: Color{R: vals[0], G: vals[1], B: vals[2], A: vals[3]},
		Range: Range{Start: args[0].Start(), End: args[n-1].End()},
	}, true
}

// DocumentColors returns every color literal of passes and texture units.
func DocumentColors(script *MaterialScript) []ColorInfo {
	if script == nil {
		return nil
	}

	var out []ColorInfo
	collect := func(lines []*ParamLine) {
		for _, line := range lines {
			if c, ok := ParseColor(line); ok {
				out = append(out, c)
			}
		}
	}

	pass := func(p *Pass) {
		collect(p.Params)
		for _, tu := range p.TextureUnits {
			collect(tu.Params)
		}
	}
	technique := func(t *Technique) {
		for _, p := range t.Passes {
			pass(p)
		}
	}

	for _, m := range script.Materials {
		for _, t := range m.Techniques {
			technique(t)
		}
	}

	for _, a := range script.Abstracts {
		switch body := a.Body.(type) {
		case *Material:
			for _, t := range body.Techniques {
				technique(t)
			}
		case *Technique:
			technique(body)
		case *Pass:
			pass(body)
		case *TextureUnit:
			collect(body.Params)
		}
	}

	for _, sm := range script.Samplers {
		collect(sm.Params)
	}

	return out
}

// FormatColor renders c as the numeric components of a color line.
func FormatColor(c Color) string {
	out := formatFloat(c.R) + " " + formatFloat(c.G) + " " + formatFloat(c.B)
	if c.A != 1 {
		out += " " + formatFloat(c.A)
	}

	return out
}

// formatFloat formats a float64 value to a string.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
