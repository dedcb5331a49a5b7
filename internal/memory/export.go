package memory

import (
	"context"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
)

// exportLineBudget caps the rendered markdown file at 500 lines per
// spec §4.E, counting every line written: the two-line title, two lines
// per category heading (heading plus blank), one line per fact (a
// "- key: content" bullet), a blank after each category, and the
// two-line truncation footer.
const exportLineBudget = 500

// hotness ranks confirmed facts for export truncation when the corpus
// exceeds the line budget. There is no teacher precedent for this
// exact formula (spec left it an open question); it combines the same
// three signals retrieval.recencyScore/salience already track so a
// fact that would rank high for retrieval also survives export first:
// recent observation, accumulated salience, and how many times it has
// been independently observed (a corroboration signal distinct from
// recency).
func hotness(f mainstore.Fact, now time.Time) float64 {
	age := now.Sub(f.LastObservedAt)
	if age < 0 {
		age = 0
	}
	recency := math.Exp(-math.Ln2 * float64(age) / float64(14*24*time.Hour))
	observations := math.Min(float64(f.ObservationCount)/10.0, 1.0)
	return 0.5*recency + 0.3*f.Salience + 0.2*observations
}

// Export writes a budget-capped, hotness-ranked markdown snapshot of a
// project's confirmed facts to path, atomically (temp file + rename,
// mode 0o600). archived and suspicious facts are never included;
// RecallableFacts already excludes both, so only a candidate/confirmed
// filter is needed here.
func Export(ctx context.Context, store *mainstore.Store, projectID int64, path string) error {
	facts, err := store.RecallableFacts(ctx, projectID, false)
	if err != nil {
		return err
	}

	confirmed := facts[:0]
	for _, f := range facts {
		if f.Status == mainstore.FactConfirmed {
			confirmed = append(confirmed, f)
		}
	}

	now := time.Now()
	sort.Slice(confirmed, func(i, j int) bool {
		return hotness(confirmed[i], now) > hotness(confirmed[j], now)
	})

	byCategory := make(map[string][]mainstore.Fact)
	var categoryOrder []string
	for _, f := range confirmed {
		cat := f.Category
		if cat == "" {
			cat = "general"
		}
		if _, ok := byCategory[cat]; !ok {
			categoryOrder = append(categoryOrder, cat)
		}
		byCategory[cat] = append(byCategory[cat], f)
	}

	var b strings.Builder
	b.WriteString("# Memory\n\n")
	lines := 2
	truncated := false
	rendered := 0
	// Reserve room for the blank that closes a category and the two-line
	// truncation footer.
	limit := exportLineBudget - 3

outer:
	for _, cat := range categoryOrder {
		if lines+2 > limit {
			truncated = true
			break
		}
		b.WriteString(fmt.Sprintf("## %s\n\n", cat))
		lines += 2
		for _, f := range byCategory[cat] {
			if lines+1 > limit {
				truncated = true
				break outer
			}
			b.WriteString(fmt.Sprintf("- `%s`: %s\n", f.Key, oneLine(f.Content)))
			lines++
			rendered++
		}
		b.WriteString("\n")
		lines++
	}
	if truncated {
		b.WriteString(fmt.Sprintf("\n_truncated at %d lines; %d facts omitted_\n", exportLineBudget, len(confirmed)-rendered))
	}

	return atomicWriteFile(path, []byte(b.String()), 0o600)
}

func oneLine(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.TrimSpace(s)
}

// atomicWriteFile writes data to a temp file in the same directory as
// path, then renames over path, so a reader never observes a partially
// written export (same pattern the teacher uses for its session/index
// checkpoint writes).
func atomicWriteFile(path string, data []byte, mode os.FileMode) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".mira-export-*.tmp")
	if err != nil {
		return err
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(mode); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpPath, path)
}
