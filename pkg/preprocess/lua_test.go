package preprocess

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

const maskScript = `
-- replaces urls and numbers with placeholder tokens
function preprocess(text)
  textclf.log("masking")
  text = textclf.replace(text, "https?://\\S+", " urltoken ")
  text = textclf.replace(text, "[0-9]+", " numtoken ")
  return textclf.lower(text)
end
`

func TestApplyAll(t *testing.T) {
	s, err := Compile("mask.lua", maskScript)
	if err != nil {
		t.Fatalf("Compile failed: %v", err)
	}
	defer s.Close()

	got, err := s.ApplyAll([]string{"Visit http://x.io NOW", "Call 555"})
	if err != nil {
		t.Fatalf("ApplyAll failed: %v", err)
	}
	want := []string{"visit  urltoken  now", "call  numtoken "}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("ApplyAll = %q, expected %q", got, want)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"syntax error", "function preprocess(text"},
		{"missing entry point", "function other(text) return text end"},
		{"runtime error at load", "error('boom')"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := Compile(tt.name, tt.src); err == nil {
				t.Error("Expected compile error")
			}
		})
	}
}

func TestApplyErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"non string result", "function preprocess(text) return 42 end"},
		{"raises", "function preprocess(text) error('bad input') end"},
		{"bad pattern", "function preprocess(text) return textclf.replace(text, '(', '') end"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := Compile(tt.name, tt.src)
			if err != nil {
				t.Fatalf("Compile failed: %v", err)
			}
			defer s.Close()

			if _, err := s.Apply("text"); err == nil {
				t.Error("Expected apply error")
			}
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "identity.lua")
	if err := os.WriteFile(path, []byte("function preprocess(t) return t end"), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	defer s.Close()

	if s.Name() != "identity.lua" {
		t.Errorf("Name = %s", s.Name())
	}
	if out, _ := s.Apply("Same"); out != "Same" {
		t.Errorf("Apply = %q", out)
	}

	if _, err := LoadFile(filepath.Join(t.TempDir(), "none.lua")); err == nil {
		t.Error("Expected error for missing script")
	}
}
