package memory

import (
	"bufio"
	"context"
	"os"
	"regexp"
	"strings"

	"github.com/ConaryLabs/mira/internal/mainstore"
)

var (
	headingPattern = regexp.MustCompile(`^##\s+(.+)$`)
	bulletPattern  = regexp.MustCompile("^- `([^`]+)`: (.*)$")
)

// Import parses a file previously produced by Export and upserts its
// facts as confirmed, keyed by the same (project, key) pair Export
// rendered them from. Re-importing the same file is a fixed point: the
// same key always resolves to the same row via InsertConfirmedFact's
// ON CONFLICT(project_id, key) clause, so repeated imports converge to
// one row per key rather than accumulating duplicates.
func Import(ctx context.Context, store *mainstore.Store, projectID int64, path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	var category string
	var imported int

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := scanner.Text()
		if m := headingPattern.FindStringSubmatch(line); m != nil {
			category = strings.TrimSpace(m[1])
			continue
		}
		m := bulletPattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		key, content := m[1], m[2]
		if _, err := store.InsertConfirmedFact(ctx, projectID, key, content, category, "imported", "[]"); err != nil {
			return imported, err
		}
		imported++
	}
	return imported, scanner.Err()
}
