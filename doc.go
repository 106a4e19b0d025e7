/*
Package matscript provides scanning, parsing, validation and navigation for
material scripts, the block-structured text format engines use to describe
materials, GPU programs, samplers and shared parameters.

It focuses on tolerant parsing for editors: every pass collects diagnostics
with precise ranges instead of stopping at the first problem, and partially
parsed blocks stay in the tree.

Parser example:

	doc, err := matscript.LoadAndParse("file:///data/example.material", nil, nil)
	if err != nil {
		// file could not be read
	}
	for _, d := range doc.Diagnostics {
		fmt.Println(d)
	}

Go to definition example:

	loc := doc.Definition(matscript.Position{Line: 12, Character: 20})
	_ = loc.Range

Params validator example:

	v := matscript.NewValidator()
	diags := v.ValidateParams(doc.Script)
	if len(diags) != 0 {
		// handle invalid parameter lines
	}

Formatter example:

	out, err := matscript.Format(src, &matscript.FormatOptions{Indent: "\t"})
	if err != nil {
		// source has scanner errors
	}
*/
package matscript
