package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePythonSource = `import os

def greet(name):
    return helper(name)

def helper(name):
    return "hi " + name
`

func TestTreeSitterParser_Python_ExtractSymbols(t *testing.T) {
	p := NewPythonParser()
	syms, err := p.ExtractSymbols([]byte(samplePythonSource))
	require.NoError(t, err)

	names := make([]string, len(syms))
	for i, s := range syms {
		names[i] = s.Name
	}
	assert.Contains(t, names, "greet")
	assert.Contains(t, names, "helper")
}

func TestTreeSitterParser_Python_ExtractCalls(t *testing.T) {
	p := NewPythonParser()
	calls, err := p.ExtractCalls([]byte(samplePythonSource))
	require.NoError(t, err)

	found := false
	for _, c := range calls {
		if c.CalleeName == "helper" {
			found = true
		}
	}
	assert.True(t, found, "expected a call to helper to be extracted")
}

func TestTreeSitterParser_Python_ExtractImports(t *testing.T) {
	p := NewPythonParser()
	imports, err := p.ExtractImports([]byte(samplePythonSource))
	require.NoError(t, err)
	require.Len(t, imports, 1)
	assert.Equal(t, "os", imports[0].ImportPath)
}

func TestTreeSitterParser_LanguageAndExtensions(t *testing.T) {
	rs := NewRustParser()
	assert.Equal(t, "rust", rs.Language())
	assert.Equal(t, []string{".rs"}, rs.SupportedExtensions())

	ts := NewTypeScriptParser()
	assert.Equal(t, "typescript", ts.Language())
	assert.Contains(t, ts.SupportedExtensions(), ".tsx")
}

func TestLastIdentSegment(t *testing.T) {
	assert.Equal(t, "helper", lastIdentSegment("self.helper"))
	assert.Equal(t, "call", lastIdentSegment("module::sub::call"))
	assert.Equal(t, "bare", lastIdentSegment("bare"))
}
