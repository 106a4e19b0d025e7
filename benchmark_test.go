package matscript

import (
	"os"
	"path/filepath"
	"testing"
)

func BenchmarkScan(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("testdata", "basic.material"))
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, diags := Scan(data, nil); len(diags) > 0 {
			b.Fatalf("scan: %v", diags[0])
		}
	}
}

func BenchmarkParse(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("testdata", "basic.material"))
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if res := ParseSource("file:///basic.material", data); HasErrors(res.Diagnostics) {
			b.Fatalf("parse: %v", res.Diagnostics[0])
		}
	}
}

func BenchmarkValidate(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("testdata", "basic.material"))
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	res := ParseSource("file:///basic.material", data)
	v := DefaultValidator()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if diags := v.ValidateParams(res.Script); len(diags) > 0 {
			b.Fatalf("validate: %v", diags[0])
		}
	}
}

func BenchmarkFormat(b *testing.B) {
	data, err := os.ReadFile(filepath.Join("testdata", "basic.material"))
	if err != nil {
		b.Fatalf("read: %v", err)
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Format(data, nil); err != nil {
			b.Fatalf("format: %v", err)
		}
	}
}
