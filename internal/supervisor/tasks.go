package supervisor

import (
	"context"
	"time"

	"github.com/ConaryLabs/mira/internal/behavior"
	"github.com/ConaryLabs/mira/internal/config"
	"github.com/ConaryLabs/mira/internal/dbutil"
	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// StaleSessionTask auto-closes sessions inactive past mainstore.StaleAfter
// (spec §4.F scenario S5), mining tool-chain patterns from each
// session's final event log before closing it — a session won't be
// revisited once closed, so this is the one point where its complete
// chain history is available. Critical priority: nothing else auto-closes
// a stale session, so without this task it stays "active" until an
// explicit session close and its chains are not mined.
type StaleSessionTask struct {
	miner *behavior.Miner
}

func NewStaleSessionTask(miner *behavior.Miner) StaleSessionTask {
	return StaleSessionTask{miner: miner}
}

func (StaleSessionTask) Name() string           { return "stale_sessions" }
func (StaleSessionTask) Priority() Priority     { return Critical }
func (StaleSessionTask) Timeout() time.Duration { return 20 * time.Second }

func (t StaleSessionTask) Run(ctx context.Context, store *mainstore.Store, projectID int64) error {
	stale, err := store.StaleSessions(ctx, time.Now())
	if err != nil {
		return err
	}
	log := mlog.Get(mlog.CategorySupervisor)
	for _, sess := range stale {
		if sess.ProjectID != projectID {
			continue
		}
		if t.miner != nil {
			if _, err := t.miner.MineToolChains(ctx, projectID, sess.ID); err != nil {
				log.Warn("stale session task: mine chains for %s: %v", sess.ID, err)
			}
		}
		if err := store.CloseSession(ctx, sess.ID, "completed", "auto-closed by supervisor: inactive past stale threshold"); err != nil {
			log.Warn("stale session task: close %s: %v", sess.ID, err)
		}
	}
	return nil
}

// RetentionTask runs one table's tiered retention sweep per cycle per
// project's shared store; Low priority since correctness never depends
// on timely cleanup, only disk growth does.
type RetentionTask struct {
	Table dbutil.Table
	Days  int
}

func (t RetentionTask) Name() string           { return "retention_" + string(t.Table) }
func (RetentionTask) Priority() Priority       { return Low }
func (RetentionTask) Timeout() time.Duration   { return 30 * time.Second }

func (t RetentionTask) Run(ctx context.Context, store *mainstore.Store, projectID int64) error {
	// Retention sweeps the whole table, not a single project's rows;
	// running it once (on the lowest project id) avoids redoing the
	// same table-wide DELETE once per project every cycle.
	ids, err := store.ListProjectIDs(ctx)
	if err != nil {
		return err
	}
	if len(ids) > 0 && projectID != ids[0] {
		return nil
	}
	result, err := store.RunRetention(ctx, t.Table, t.Days)
	if err != nil {
		return err
	}
	if result.DeletedRows > 0 {
		mlog.Get(mlog.CategoryRetention).Info("retention: table %s deleted %d rows", t.Table, result.DeletedRows)
	}
	return nil
}

// RetentionTasksFromConfig builds one RetentionTask per configured
// table, skipping tables the config doesn't mention.
func RetentionTasksFromConfig(cfg config.RetentionConfig) []Task {
	var tasks []Task
	for _, tbl := range []dbutil.Table{
		dbutil.TableBehaviorEvents, dbutil.TableInsights, dbutil.TableObservations, dbutil.TableErrorPatterns,
	} {
		days, ok := cfg.Days[string(tbl)]
		if !ok {
			continue
		}
		tasks = append(tasks, RetentionTask{Table: tbl, Days: days})
	}
	return tasks
}
