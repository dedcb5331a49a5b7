package behavior

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// Typed insight-type prefixes keep SQL-mined patterns and pondering
// (LLM-derived) insights from colliding on dedup_key within the shared
// insights table, per spec §4.F.
const (
	InsightToolChain = "insight_tool_chain"
)

const (
	chainWindow     = 3
	chainMinRepeats = 2
	chainTTL        = 72 * time.Hour
	minerCapPerType = 20
)

// Miner runs on the supervisor's slow lane, reading a session's
// totally-ordered behavior events and emitting typed-prefixed insights
// for patterns it recognizes.
type Miner struct {
	store *mainstore.Store
}

func NewMiner(store *mainstore.Store) *Miner {
	return &Miner{store: store}
}

// MineToolChains scans sessionID's events for tool-call subsequences of
// length chainWindow repeated at least chainMinRepeats times, and
// upserts one insight per distinct chain found. Deserialization
// failures on a stored event are logged, never silently dropped (spec
// §4.F), since a skipped event would desync the chain window.
func (m *Miner) MineToolChains(ctx context.Context, projectID int64, sessionID string) (int, error) {
	events, err := m.store.EventsForSession(ctx, sessionID)
	if err != nil {
		return 0, err
	}

	var tools []string
	for _, e := range events {
		if e.Tool == "" {
			mlog.Get(mlog.CategoryBehavior).Warn("behavior event %d has empty tool field, skipping from chain mining", e.ID)
			continue
		}
		tools = append(tools, e.Tool)
	}
	if len(tools) < chainWindow {
		return 0, nil
	}

	counts := make(map[string]int)
	var order []string
	for i := 0; i+chainWindow <= len(tools); i++ {
		chain := strings.Join(tools[i:i+chainWindow], " -> ")
		if counts[chain] == 0 {
			order = append(order, chain)
		}
		counts[chain]++
	}

	emitted := 0
	for _, chain := range order {
		if counts[chain] < chainMinRepeats {
			continue
		}
		if emitted >= minerCapPerType {
			mlog.Get(mlog.CategoryBehavior).Warn("tool-chain miner capped at %d insights for project %d, remaining chains dropped", minerCapPerType, projectID)
			break
		}
		content := fmt.Sprintf("Tool chain %q repeated %d times in this session", chain, counts[chain])
		_, err := m.store.UpsertInsight(ctx, projectID, InsightToolChain, DedupKey(chain), content, time.Now().Add(chainTTL))
		if err != nil {
			return emitted, err
		}
		emitted++
	}
	return emitted, nil
}
