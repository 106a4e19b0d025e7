package matscript

import (
	"os"
	"strings"
)

// ScanOptions controls scanning behavior.
type ScanOptions struct {
	// KeepComments emits // comments as comment tokens. The parser drops them.
	KeepComments bool
}

// FormatOptions controls formatter output.
type FormatOptions struct {
	// Indent is the indentation string for nested blocks (default is four spaces).
	Indent string
}

// ResourceOptions controls the resource reference checks.
type ResourceOptions struct {
	// Roots are directories searched for textures and program sources.
	// The directory of the document is always searched first.
	Roots []string
	// Exclude skips references matching any of these glob patterns (e.g. "textures/generated/*").
	Exclude []string
	// Extensions lists accepted texture extensions, lower case with the dot.
	// Defaults to the common image formats when empty.
	Extensions []string
	// DisableFileCheck disables filesystem existence checks.
	DisableFileCheck bool
	// DisableExtensionsCheck disables extension validation for textures.
	DisableExtensionsCheck bool
}

// Options controls LoadAndParse.
type Options struct {
	// Scan is passed to the scanner.
	Scan *ScanOptions
	// Validator checks parameter lines. When nil, a shared default validator is used.
	Validator *Validator
	// DisableParamsValidation skips the params validator.
	DisableParamsValidation bool
	// Resources enables the resource checker when not nil.
	Resources *ResourceOptions
}

// HasExistingRoot reports whether at least one resource root is an existing directory.
func (o *ResourceOptions) HasExistingRoot() bool {
	if o == nil {
		return false
	}

	for _, root := range o.Roots {
		if strings.TrimSpace(root) == "" {
			continue
		}
		info, err := os.Stat(root)
		if err == nil && info.IsDir() {
			return true
		}
	}

	return false
}

// normalize normalizes the ScanOptions.
func (o *ScanOptions) normalize() ScanOptions {
	if o == nil {
		return ScanOptions{}
	}

	return *o
}

// normalize normalizes the FormatOptions.
func (o *FormatOptions) normalize() FormatOptions {
	if o == nil {
		return FormatOptions{Indent: "    "}
	}

	out := *o
	if out.Indent == "" {
		out.Indent = "    "
	}

	return out
}

// normalize normalizes the ResourceOptions.
func (o *ResourceOptions) normalize() ResourceOptions {
	if o == nil {
		return ResourceOptions{DisableFileCheck: true, Extensions: defaultTextureExts}
	}

	out := *o
	if len(out.Extensions) == 0 {
		out.Extensions = defaultTextureExts
	}

	return out
}

// normalize normalizes the Options.
func (o *Options) normalize() Options {
	if o == nil {
		return Options{Validator: DefaultValidator()}
	}

	out := *o
	if out.Validator == nil {
		out.Validator = DefaultValidator()
	}

	return out
}
