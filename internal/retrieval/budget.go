package retrieval

import (
	"hash/fnv"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mainstore"
)

// ContextBudget caps the total characters assembled into one context
// bundle, split across code and fact results by a fixed proportion
// (adapted from the teacher's TieredContextBuilder budget percentages,
// collapsed from four file-discovery tiers to two result kinds since
// Mira already ranks within each kind via CompositeScore rather than
// needing separate mention/keyword/import/semantic tiers).
type ContextBudget struct {
	TotalChars int
	CodeShare  float64 // fraction of TotalChars reserved for code hits
}

// DefaultContextBudget mirrors the teacher's 50-file/tiered-percentage
// scale down to a character budget suited to a single hook-call
// context injection.
func DefaultContextBudget() ContextBudget {
	return ContextBudget{TotalChars: 24_000, CodeShare: 0.7}
}

// AssembledContext is the final, budget-capped, deduplicated bundle
// handed to a caller (a hook response, a tool result).
type AssembledContext struct {
	CodeChunks []codestore.Chunk
	Facts      []mainstore.Fact
	Truncated  bool
}

// AssembleContext takes already-ranked code and fact results (best
// first) and greedily fills the budget, deduplicating by content hash
// (FNV-1a) so a chunk and a fact that happen to quote the same text
// aren't both included.
func AssembleContext(codeHits []Scored[codestore.Chunk], factHits []Scored[mainstore.Fact], budget ContextBudget) AssembledContext {
	var out AssembledContext
	seen := make(map[uint64]bool)

	codeBudget := int(float64(budget.TotalChars) * budget.CodeShare)
	factBudget := budget.TotalChars - codeBudget

	var used int
	for _, h := range codeHits {
		if used >= codeBudget {
			out.Truncated = true
			break
		}
		key := fnvHash(h.Item.Content)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.CodeChunks = append(out.CodeChunks, h.Item)
		used += len(h.Item.Content)
	}

	used = 0
	for _, h := range factHits {
		if used >= factBudget {
			out.Truncated = true
			break
		}
		key := fnvHash(h.Item.Content)
		if seen[key] {
			continue
		}
		seen[key] = true
		out.Facts = append(out.Facts, h.Item)
		used += len(h.Item.Content)
	}

	return out
}

func fnvHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
