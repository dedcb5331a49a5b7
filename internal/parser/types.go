// Package parser implements component B: per-language extraction of
// symbols, call edges, and imports, plus the chunk builder that turns
// parsed source into the retrieval unit the code store indexes.
package parser

import "github.com/ConaryLabs/mira/internal/codestore"

// ParsedFile is one language parser's complete output for a file.
type ParsedFile struct {
	Symbols []codestore.Symbol
	Calls   []ParsedCall
	Imports []codestore.Import
}

// ParsedCall is a call site before its caller symbol has been resolved
// to a row id; the indexer resolves CallerLine against the
// file's own ParsedFile.Symbols (by line range) before persisting.
type ParsedCall struct {
	CallerLine int
	CalleeName string
	CallLine   int
}

// CodeParser is the common interface every language implementation
// satisfies, matching spec §4.B: "extract_symbols(file_bytes) ->
// [Symbol]", extract_calls, extract_imports.
type CodeParser interface {
	Language() string
	SupportedExtensions() []string
	ExtractSymbols(content []byte) ([]codestore.Symbol, error)
	ExtractCalls(content []byte) ([]ParsedCall, error)
	ExtractImports(content []byte) ([]codestore.Import, error)
}

// ParseFile dispatches content to p and assembles a ParsedFile. Parsers
// that share one AST walk for all three extractions (tree-sitter-backed
// ones) may internally cache the parsed tree keyed by content's address;
// ParseFile itself makes no such assumption.
func ParseFile(p CodeParser, content []byte) (ParsedFile, error) {
	syms, err := p.ExtractSymbols(content)
	if err != nil {
		return ParsedFile{}, err
	}
	calls, err := p.ExtractCalls(content)
	if err != nil {
		return ParsedFile{}, err
	}
	imports, err := p.ExtractImports(content)
	if err != nil {
		return ParsedFile{}, err
	}
	return ParsedFile{Symbols: syms, Calls: calls, Imports: imports}, nil
}
