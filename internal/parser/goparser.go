package parser

import (
	"go/ast"
	"go/parser"
	"go/token"

	"github.com/ConaryLabs/mira/internal/codestore"
)

// GoParser implements CodeParser for Go source using the standard
// go/ast package for exact line ranges and identifier resolution,
// grounded on the teacher's internal/world/go_parser.go.
type GoParser struct{}

func NewGoParser() *GoParser { return &GoParser{} }

func (p *GoParser) Language() string               { return "go" }
func (p *GoParser) SupportedExtensions() []string   { return []string{".go"} }

func (p *GoParser) parse(content []byte) (*ast.File, *token.FileSet, error) {
	fset := token.NewFileSet()
	f, err := parser.ParseFile(fset, "", content, parser.AllErrors)
	if err != nil {
		return nil, nil, err
	}
	return f, fset, nil
}

func (p *GoParser) ExtractSymbols(content []byte) ([]codestore.Symbol, error) {
	f, fset, err := p.parse(content)
	if err != nil {
		return nil, err
	}

	structRefs := map[string]bool{}
	for _, decl := range f.Decls {
		if gd, ok := decl.(*ast.GenDecl); ok && gd.Tok == token.TYPE {
			for _, spec := range gd.Specs {
				if ts, ok := spec.(*ast.TypeSpec); ok {
					if _, isStruct := ts.Type.(*ast.StructType); isStruct {
						structRefs[ts.Name.Name] = true
					}
				}
			}
		}
	}

	var out []codestore.Symbol
	for _, decl := range f.Decls {
		switch d := decl.(type) {
		case *ast.FuncDecl:
			kind := "function"
			name := d.Name.Name
			if d.Recv != nil && len(d.Recv.List) > 0 {
				kind = "method"
				if recvName := receiverTypeName(d.Recv.List[0].Type); recvName != "" {
					name = recvName + "." + d.Name.Name
				}
			}
			out = append(out, codestore.Symbol{
				Name:      name,
				Kind:      kind,
				StartLine: fset.Position(d.Pos()).Line,
				EndLine:   fset.Position(d.End()).Line,
				Signature: funcSignature(d),
			})
		case *ast.GenDecl:
			if d.Tok != token.TYPE {
				continue
			}
			for _, spec := range d.Specs {
				ts, ok := spec.(*ast.TypeSpec)
				if !ok {
					continue
				}
				kind := "type"
				switch ts.Type.(type) {
				case *ast.StructType:
					kind = "struct"
				case *ast.InterfaceType:
					kind = "interface"
				}
				out = append(out, codestore.Symbol{
					Name:      ts.Name.Name,
					Kind:      kind,
					StartLine: fset.Position(ts.Pos()).Line,
					EndLine:   fset.Position(ts.End()).Line,
				})
			}
		}
	}
	return out, nil
}

func (p *GoParser) ExtractCalls(content []byte) ([]ParsedCall, error) {
	f, fset, err := p.parse(content)
	if err != nil {
		return nil, err
	}

	var out []ParsedCall
	for _, decl := range f.Decls {
		fd, ok := decl.(*ast.FuncDecl)
		if !ok || fd.Body == nil {
			continue
		}
		callerLine := fset.Position(fd.Pos()).Line
		ast.Inspect(fd.Body, func(n ast.Node) bool {
			call, ok := n.(*ast.CallExpr)
			if !ok {
				return true
			}
			name := calleeName(call.Fun)
			if name == "" {
				return true
			}
			out = append(out, ParsedCall{
				CallerLine: callerLine,
				CalleeName: name,
				CallLine:   fset.Position(call.Pos()).Line,
			})
			return true
		})
	}
	return out, nil
}

func (p *GoParser) ExtractImports(content []byte) ([]codestore.Import, error) {
	f, _, err := p.parse(content)
	if err != nil {
		return nil, err
	}
	var out []codestore.Import
	for _, imp := range f.Imports {
		path := stripQuotes(imp.Path.Value)
		alias := ""
		if imp.Name != nil {
			alias = imp.Name.Name
		}
		out = append(out, codestore.Import{ImportPath: path, Alias: alias})
	}
	return out, nil
}

func receiverTypeName(expr ast.Expr) string {
	switch t := expr.(type) {
	case *ast.Ident:
		return t.Name
	case *ast.StarExpr:
		return receiverTypeName(t.X)
	}
	return ""
}

func calleeName(fun ast.Expr) string {
	switch f := fun.(type) {
	case *ast.Ident:
		return f.Name
	case *ast.SelectorExpr:
		return f.Sel.Name
	}
	return ""
}

func funcSignature(d *ast.FuncDecl) string {
	name := d.Name.Name
	if d.Recv != nil && len(d.Recv.List) > 0 {
		return "func (" + receiverTypeName(d.Recv.List[0].Type) + ") " + name
	}
	return "func " + name
}

func stripQuotes(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
