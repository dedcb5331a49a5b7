package supervisor

import (
	"context"
	"time"

	"github.com/ConaryLabs/mira/internal/codestore"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

const healthScanFlagKey = "health_scan_needed"

// HealthScanFlag is the computed flag spec §4.G names as its concrete
// example: Request sets it true, and HealthScanTask clears it once it
// has actually run the scan - guarded so a timed-out scan can't clear a
// flag a later run re-set. Nothing in cmd/mirad calls Request or
// registers HealthScanTask with the slow lane.
type HealthScanFlag struct {
	guard *Guard
	set   bool
}

func NewHealthScanFlag(guard *Guard) *HealthScanFlag {
	return &HealthScanFlag{guard: guard}
}

// Request marks a scan as due; idempotent if already pending.
func (f *HealthScanFlag) Request() { f.set = true }

// HealthScanTask reports the pending-embedding backlog per project as a
// cheap stand-in for a fuller health scan (symbol-count drift,
// orphaned chunks, etc. — left for toolsurface's index action to
// trigger on demand rather than duplicated here). Normal priority.
type HealthScanTask struct {
	flag       *HealthScanFlag
	codeStore  *codestore.Store
}

func NewHealthScanTask(flag *HealthScanFlag, codeStore *codestore.Store) HealthScanTask {
	return HealthScanTask{flag: flag, codeStore: codeStore}
}

func (HealthScanTask) Name() string           { return "health_scan" }
func (HealthScanTask) Priority() Priority     { return Normal }
func (HealthScanTask) Timeout() time.Duration { return 15 * time.Second }

func (t HealthScanTask) Run(ctx context.Context, store *mainstore.Store, projectID int64) error {
	if t.flag == nil || !t.flag.set {
		return nil
	}
	token := t.flag.guard.Begin(healthScanFlagKey)

	pending, err := t.codeStore.CountPendingByStatus(ctx, projectID, "pending")
	if err != nil {
		return err
	}
	mlog.Get(mlog.CategorySupervisor).Info("health scan: project %d has %d chunks pending embedding", projectID, pending)

	if t.flag.guard.Consume(healthScanFlagKey, token) {
		t.flag.set = false
	}
	return nil
}
