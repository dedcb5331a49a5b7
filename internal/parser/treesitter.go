package parser

import (
	"context"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/ConaryLabs/mira/internal/codestore"
)

// TreeSitterParser implements CodeParser for a single non-Go language,
// grounded on the teacher's internal/world/ast_treesitter.go. One
// instance handles exactly one language; the indexer picks an instance
// per file extension (see languages.go).
type TreeSitterParser struct {
	lang       string
	extensions []string
	sitterLang *sitter.Language

	// rules maps this language's grammar node types onto the
	// symbol/call/import extraction rules, since each tree-sitter
	// grammar names its productions differently.
	rules languageRules
}

type languageRules struct {
	funcKinds      map[string]bool // node types that are function-like declarations
	classKinds     map[string]bool // node types that are class/struct/interface declarations
	importKinds    map[string]bool // node types that introduce an import
	nameField      string          // field name carrying the declared identifier
	callExprKind   string          // node type for a call expression
	callFuncField  string          // field name of the callee expression within a call
	importPathKind string          // node type of the literal/path holding the import target, within an import node
}

func newTreeSitterParser(lang string, exts []string, sl *sitter.Language, rules languageRules) *TreeSitterParser {
	return &TreeSitterParser{lang: lang, extensions: exts, sitterLang: sl, rules: rules}
}

// NewPythonParser, NewRustParser, NewJavaScriptParser, NewTypeScriptParser
// construct the pack's non-Go tree-sitter parsers.
func NewPythonParser() *TreeSitterParser {
	return newTreeSitterParser("python", []string{".py"}, python.GetLanguage(), languageRules{
		funcKinds:      map[string]bool{"function_definition": true},
		classKinds:     map[string]bool{"class_definition": true},
		importKinds:    map[string]bool{"import_statement": true, "import_from_statement": true},
		nameField:      "name",
		callExprKind:   "call",
		callFuncField:  "function",
		importPathKind: "dotted_name",
	})
}

func NewRustParser() *TreeSitterParser {
	return newTreeSitterParser("rust", []string{".rs"}, rust.GetLanguage(), languageRules{
		funcKinds:      map[string]bool{"function_item": true},
		classKinds:     map[string]bool{"struct_item": true, "enum_item": true, "trait_item": true},
		importKinds:    map[string]bool{"use_declaration": true},
		nameField:      "name",
		callExprKind:   "call_expression",
		callFuncField:  "function",
		importPathKind: "",
	})
}

func NewJavaScriptParser() *TreeSitterParser {
	return newTreeSitterParser("javascript", []string{".js", ".jsx", ".mjs"}, javascript.GetLanguage(), languageRules{
		funcKinds:      map[string]bool{"function_declaration": true},
		classKinds:     map[string]bool{"class_declaration": true},
		importKinds:    map[string]bool{"import_statement": true},
		nameField:      "name",
		callExprKind:   "call_expression",
		callFuncField:  "function",
		importPathKind: "",
	})
}

func NewTypeScriptParser() *TreeSitterParser {
	return newTreeSitterParser("typescript", []string{".ts", ".tsx"}, typescript.GetLanguage(), languageRules{
		funcKinds:      map[string]bool{"function_declaration": true},
		classKinds:     map[string]bool{"class_declaration": true, "interface_declaration": true},
		importKinds:    map[string]bool{"import_statement": true},
		nameField:      "name",
		callExprKind:   "call_expression",
		callFuncField:  "function",
		importPathKind: "",
	})
}

func (p *TreeSitterParser) Language() string             { return p.lang }
func (p *TreeSitterParser) SupportedExtensions() []string { return p.extensions }

func (p *TreeSitterParser) parseTree(content []byte) (*sitter.Node, func(), error) {
	sp := sitter.NewParser()
	sp.SetLanguage(p.sitterLang)
	tree, err := sp.ParseCtx(context.Background(), nil, content)
	if err != nil {
		sp.Close()
		return nil, func() {}, err
	}
	cleanup := func() {
		tree.Close()
		sp.Close()
	}
	return tree.RootNode(), cleanup, nil
}

func (p *TreeSitterParser) ExtractSymbols(content []byte) ([]codestore.Symbol, error) {
	root, cleanup, err := p.parseTree(content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []codestore.Symbol
	text := func(n *sitter.Node) string { return n.Content(content) }

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		kind := ""
		switch {
		case p.rules.funcKinds[n.Type()]:
			kind = "function"
		case p.rules.classKinds[n.Type()]:
			kind = "type"
		}
		if kind != "" {
			if nameNode := n.ChildByFieldName(p.rules.nameField); nameNode != nil {
				out = append(out, codestore.Symbol{
					Name:      text(nameNode),
					Kind:      kind,
					StartLine: int(n.StartPoint().Row) + 1,
					EndLine:   int(n.EndPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out, nil
}

func (p *TreeSitterParser) ExtractCalls(content []byte) ([]ParsedCall, error) {
	root, cleanup, err := p.parseTree(content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []ParsedCall
	text := func(n *sitter.Node) string { return n.Content(content) }

	var walk func(n *sitter.Node, enclosingStart int)
	walk = func(n *sitter.Node, enclosingStart int) {
		callerLine := enclosingStart
		if p.rules.funcKinds[n.Type()] {
			callerLine = int(n.StartPoint().Row) + 1
		}
		if n.Type() == p.rules.callExprKind {
			if fnNode := n.ChildByFieldName(p.rules.callFuncField); fnNode != nil {
				name := lastIdentSegment(text(fnNode))
				out = append(out, ParsedCall{
					CallerLine: callerLine,
					CalleeName: name,
					CallLine:   int(n.StartPoint().Row) + 1,
				})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i), callerLine)
		}
	}
	walk(root, 0)
	return out, nil
}

func (p *TreeSitterParser) ExtractImports(content []byte) ([]codestore.Import, error) {
	root, cleanup, err := p.parseTree(content)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	var out []codestore.Import
	text := func(n *sitter.Node) string { return n.Content(content) }

	var walk func(n *sitter.Node)
	walk = func(n *sitter.Node) {
		if p.rules.importKinds[n.Type()] {
			path := firstMatchingDescendant(n, p.rules.importPathKind, text)
			if path == "" {
				// Grammars without a dedicated path node (JS/TS/Rust use
				// a quoted string or scoped path as a direct child).
				path = strings.Trim(text(n), "\"'; \t")
			}
			if path != "" {
				out = append(out, codestore.Import{ImportPath: path})
			}
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(i))
		}
	}
	walk(root)
	return out, nil
}

func firstMatchingDescendant(n *sitter.Node, kind string, text func(*sitter.Node) string) string {
	if kind == "" {
		return ""
	}
	if n.Type() == kind {
		return text(n)
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if v := firstMatchingDescendant(n.Child(i), kind, text); v != "" {
			return v
		}
	}
	return ""
}

func lastIdentSegment(expr string) string {
	expr = strings.TrimSpace(expr)
	for _, sep := range []string{".", "::"} {
		if idx := strings.LastIndex(expr, sep); idx >= 0 {
			expr = expr[idx+len(sep):]
		}
	}
	return expr
}
