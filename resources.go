package matscript

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gobwas/glob"
)

// defaultTextureExts lists image formats the engine codecs load.
var defaultTextureExts = []string{
	".png", ".jpg", ".jpeg", ".tga", ".dds", ".bmp", ".gif", ".tif", ".tiff",
	".ktx", ".pvr", ".exr", ".hdr", ".psd", ".webp", ".astc",
}

// PathResolver resolves resource names against a list of roots.
type PathResolver struct {
	Roots []string
}

// ResolvePath returns the first existing file named raw under the roots.
// Absolute paths are checked as they are.
func (r PathResolver) ResolvePath(raw string) (string, bool) {
	if raw == "" {
		return "", false
	}

	norm := normalizeOSPath(raw)
	if filepath.IsAbs(norm) || hasVolume(norm) {
		p := filepath.Clean(norm)
		return p, fileExists(p)
	}

	for _, root := range r.Roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		p := filepath.Clean(filepath.Join(root, norm))
		if fileExists(p) {
			return p, true
		}
	}

	return "", false
}

// CheckResources reports texture and program source references with an
// unexpected extension or missing from every root. Findings are warnings.
func CheckResources(script *MaterialScript, opt *ResourceOptions) []Diagnostic {
	if script == nil {
		return nil
	}

	ropt := opt.normalize()
	c := &resourceChecker{
		opt:      ropt,
		resolver: PathResolver{Roots: ropt.Roots},
		exclude:  compileGlobs(ropt.Exclude),
	}

	for _, m := range script.Materials {
		c.material(m)
	}

	for _, a := range script.Abstracts {
		switch body := a.Body.(type) {
		case *Material:
			c.material(body)
		case *Technique:
			c.technique(body)
		case *Pass:
			c.pass(body)
		case *TextureUnit:
			c.textureUnit(body)
		}
	}

	for _, prog := range script.Programs {
		for _, line := range prog.Params {
			if line.Name().Literal != "source" {
				continue
			}
			if args := line.Args(); len(args) > 0 {
				c.file(args[0], false)
			}
		}
	}

	return c.out
}

// resourceChecker collects resource diagnostics over one script.
type resourceChecker struct {
	resolver PathResolver
	exclude  []glob.Glob
	out      []Diagnostic
	opt      ResourceOptions
}

func (c *resourceChecker) material(m *Material) {
	for _, t := range m.Techniques {
		c.technique(t)
	}
}

func (c *resourceChecker) technique(t *Technique) {
	for _, p := range t.Passes {
		c.pass(p)
	}
}

func (c *resourceChecker) pass(p *Pass) {
	for _, tu := range p.TextureUnits {
		c.textureUnit(tu)
	}
}

func (c *resourceChecker) textureUnit(tu *TextureUnit) {
	for _, line := range tu.Params {
		args := line.Args()
		if len(args) == 0 {
			continue
		}

		switch line.Name().Literal {
		case "texture":
			c.file(args[0], true)

		case "cubic_texture":
			if len(args) >= 7 {
				for _, tok := range args[:6] {
					c.file(tok, true)
				}
				continue
			}
			// separateUV with a single name expands to six faces.
			if len(args) == 2 && args[1].Literal == "separateUV" {
				c.extension(args[0])
				continue
			}
			c.file(args[0], true)

		case "anim_texture":
			if len(args) == 3 && args[1].Kind == TokenNumber {
				// Frame names are derived from the base name.
				c.extension(args[0])
				continue
			}
			for _, tok := range args[:len(args)-1] {
				c.file(tok, true)
			}
		}
	}
}

// file checks the extension (textures only) and existence of a reference.
func (c *resourceChecker) file(tok Token, texture bool) {
	if tok.Kind != TokenIdentifier && tok.Kind != TokenString {
		return
	}
	if c.excluded(tok.Literal) {
		return
	}

	if texture {
		c.extension(tok)
	}

	if c.opt.DisableFileCheck {
		return
	}

	if _, ok := c.resolver.ResolvePath(tok.Literal); !ok {
		c.out = append(c.out, Diagnostic{
			Level:   LevelWarning,
			Kind:    KindResource,
			Code:    CodeMissingResource,
			Message: "resource '" + tok.Literal + "' not found",
			Range:   tok.Range(),
		})
	}
}

// extension warns on texture names with an unexpected extension.
func (c *resourceChecker) extension(tok Token) {
	if c.opt.DisableExtensionsCheck || tok.Kind == TokenVariable || c.excluded(tok.Literal) {
		return
	}

	if hasAllowedExt(tok.Literal, c.opt.Extensions) {
		return
	}

	c.out = append(c.out, Diagnostic{
		Level:   LevelWarning,
		Kind:    KindResource,
		Code:    CodeResourceExtension,
		Message: "unexpected texture extension in '" + tok.Literal + "'",
		Range:   tok.Range(),
	})
}

// excluded reports whether raw matches an exclude pattern.
func (c *resourceChecker) excluded(raw string) bool {
	norm := normalizePathForMatch(raw)
	for _, g := range c.exclude {
		if g.Match(norm) {
			return true
		}
	}

	return false
}

// compileGlobs compiles exclude patterns, skipping malformed ones.
func compileGlobs(patterns []string) []glob.Glob {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		p = normalizePathForMatch(p)
		if p == "" {
			continue
		}
		g, err := glob.Compile(p, '/')
		if err != nil {
			continue
		}
		out = append(out, g)
	}

	return out
}

// ValidateGlob checks that pattern compiles as an exclude pattern.
func ValidateGlob(pattern string) error {
	_, err := glob.Compile(normalizePathForMatch(pattern), '/')
	return err
}

// hasAllowedExt checks if the path has one of exts.
func hasAllowedExt(path string, exts []string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return slices.ContainsFunc(exts, func(e string) bool {
		return strings.ToLower(e) == ext
	})
}

// normalizePathForMatch normalizes a path for glob matching.
func normalizePathForMatch(p string) string {
	p = strings.TrimSpace(p)
	return strings.ReplaceAll(p, "\\", "/")
}

// hasVolume checks if the path has a volume.
func hasVolume(p string) bool {
	return len(p) >= 2 && p[1] == ':'
}

// normalizeOSPath normalizes a path for OS-specific separators.
func normalizeOSPath(p string) string {
	p = strings.ReplaceAll(p, "\\", "/")
	return filepath.FromSlash(p)
}

// fileExists reports whether p is an existing regular file.
func fileExists(p string) bool {
	info, err := os.Stat(p)
	return err == nil && !info.IsDir()
}
