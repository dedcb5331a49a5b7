package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRegistry_ForPath_DispatchesByExtension(t *testing.T) {
	r := NewRegistry()

	assert.Equal(t, "go", r.ForPath("main.go").Language())
	assert.Equal(t, "python", r.ForPath("script.py").Language())
	assert.Equal(t, "typescript", r.ForPath("app.tsx").Language())
	assert.Nil(t, r.ForPath("README.md"))
}

func TestRegistry_Supported(t *testing.T) {
	r := NewRegistry()

	assert.True(t, r.Supported("main.go"))
	assert.False(t, r.Supported("image.png"))
}

func TestGoParser_ExtractSymbols(t *testing.T) {
	p := NewGoParser()
	syms, err := p.ExtractSymbols([]byte(sampleGoSource))
	assertNoErr(t, err)

	var methodFound, funcFound bool
	for _, s := range syms {
		if s.Name == "Greeter.Hello" && s.Kind == "method" {
			methodFound = true
		}
		if s.Name == "greet" && s.Kind == "function" {
			funcFound = true
		}
	}
	assert.True(t, methodFound, "expected Greeter.Hello method symbol")
	assert.True(t, funcFound, "expected greet function symbol")
}

func assertNoErr(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
