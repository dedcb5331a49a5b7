package parser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildChunks_SplitsAtBudget(t *testing.T) {
	lines := make([]string, 0, 200)
	for i := 0; i < 200; i++ {
		lines = append(lines, strings.Repeat("x", 50))
	}
	content := strings.Join(lines, "\n")

	chunks := BuildChunks(content, nil, "go", 500)
	assert.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), 500+51)
	}
}

func TestBuildChunks_ZeroOrNegativeBudgetUsesDefault(t *testing.T) {
	chunks := BuildChunks("line one\nline two", nil, "go", 0)
	assert.Len(t, chunks, 1)
}

func TestBuildChunks_AttachesContainingSymbol(t *testing.T) {
	content := "line1\nline2\nline3\nline4\nline5"
	syms := []SymbolRef{{ID: 42, StartLine: 1, EndLine: 4}}

	chunks := BuildChunks(content, syms, "go", 1_000_000)
	assert.NotNil(t, chunks[0].SymbolID)
}

func TestHalveBudget_StopsShrinkingBelowFloor(t *testing.T) {
	assert.Equal(t, 6000, HalveBudget(12000))
	assert.Equal(t, 200, HalveBudget(200))
}
