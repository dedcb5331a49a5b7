package parser

import "strings"

// Registry dispatches a file path to the CodeParser that handles its
// extension, per spec §4.B: "Dispatched per language from a common
// interface."
type Registry struct {
	byExt map[string]CodeParser
}

// NewRegistry builds the default registry: go/ast for Go, tree-sitter
// for Python/Rust/JavaScript/TypeScript.
func NewRegistry() *Registry {
	r := &Registry{byExt: map[string]CodeParser{}}
	r.register(NewGoParser())
	r.register(NewPythonParser())
	r.register(NewRustParser())
	r.register(NewJavaScriptParser())
	r.register(NewTypeScriptParser())
	return r
}

func (r *Registry) register(p CodeParser) {
	for _, ext := range p.SupportedExtensions() {
		r.byExt[ext] = p
	}
}

// ForPath returns the parser for path's extension, or nil if
// unsupported.
func (r *Registry) ForPath(path string) CodeParser {
	ext := extOf(path)
	return r.byExt[ext]
}

// Supported reports whether path's extension has a registered parser.
func (r *Registry) Supported(path string) bool {
	return r.ForPath(path) != nil
}

func extOf(path string) string {
	if idx := strings.LastIndexByte(path, '.'); idx >= 0 {
		return path[idx:]
	}
	return ""
}
