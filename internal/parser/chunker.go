package parser

import (
	"sort"
	"strings"

	"github.com/ConaryLabs/mira/internal/codestore"
)

// DefaultChunkBudget is the target max chunk size in characters (spec
// §4.B: "roughly 12k chars of source").
const DefaultChunkBudget = 12_000

// HalveBudget returns half of budget, or budget unchanged once it is 256
// or less. No code path calls it when the embedding provider reports a
// context overflow: the Indexer always chunks with its fixed budget, and
// an overflowing chunk is not rebuilt smaller.
func HalveBudget(budget int) int {
	if budget <= 256 {
		return budget
	}
	return budget / 2
}

// SymbolRef is the minimal identification of a persisted symbol row
// needed to scope chunks to it: its database id and line range.
type SymbolRef struct {
	ID        int64
	StartLine int
	EndLine   int
}

// BuildChunks splits a file's source into overlapping-free chunks no
// larger than maxChars, each tagged with the symbol whose declaration
// line range contains the chunk's start (if any). Each chunk computes
// its own start_line by counting newlines consumed so far — it never
// inherits a parent symbol's start_line, since a symbol spanning
// multiple chunks would otherwise give every sub-chunk the same
// (wrong) line number (spec §4.B). Pass symbols after they've been
// persisted (see codestore.Store.ReplaceSymbolsForFile) so SymbolRef.ID
// is a real foreign key rather than a placeholder.
func BuildChunks(content string, symbols []SymbolRef, language string, maxChars int) []codestore.Chunk {
	if maxChars <= 0 {
		maxChars = DefaultChunkBudget
	}
	lines := strings.Split(content, "\n")
	sorted := append([]SymbolRef(nil), symbols...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StartLine < sorted[j].StartLine })

	var chunks []codestore.Chunk
	var buf strings.Builder
	chunkStartLine := 1

	flush := func(endLine int) {
		if buf.Len() == 0 {
			return
		}
		chunks = append(chunks, codestore.Chunk{
			StartLine: chunkStartLine,
			EndLine:   endLine,
			Content:   buf.String(),
			Language:  language,
			Status:    codestore.ChunkActive,
		})
		buf.Reset()
	}

	for i, line := range lines {
		lineNo := i + 1
		if buf.Len() > 0 && buf.Len()+len(line)+1 > maxChars {
			flush(lineNo - 1)
			chunkStartLine = lineNo
		}
		if buf.Len() > 0 {
			buf.WriteByte('\n')
		}
		buf.WriteString(line)
	}
	flush(len(lines))

	attachSymbols(chunks, sorted)
	return chunks
}

// attachSymbols tags each chunk with the id of the innermost symbol
// whose line range contains the chunk's start line, if any.
func attachSymbols(chunks []codestore.Chunk, symbols []SymbolRef) {
	for i := range chunks {
		var best *SymbolRef
		for j := range symbols {
			sym := &symbols[j]
			if chunks[i].StartLine >= sym.StartLine && chunks[i].StartLine <= sym.EndLine {
				if best == nil || (sym.EndLine-sym.StartLine) < (best.EndLine-best.StartLine) {
					best = sym
				}
			}
		}
		if best != nil {
			id := best.ID
			chunks[i].SymbolID = &id
		}
	}
}
