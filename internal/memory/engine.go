// Package memory implements component E's business logic on top of
// mainstore's fact/entity storage primitives: evidence-based
// candidate -> confirmed promotion, the injection-defense scanner, a
// per-session insert rate limit, and markdown export/import.
package memory

import (
	"context"
	"database/sql"
	"time"

	"github.com/ConaryLabs/mira/internal/mainstore"
	"github.com/ConaryLabs/mira/internal/mlog"
)

// promotionObservationThreshold and promotionWindow implement "repeated
// observation within a time window" from spec §4.E: two observations
// of the same fact within the window promote it to confirmed without
// needing an explicit user store or entity corroboration.
const (
	promotionObservationThreshold = 2
	promotionWindow               = time.Hour
)

// Engine is the memory layer's entry point, used by toolsurface's
// memory action and by the hook's passive observation path.
type Engine struct {
	store   *mainstore.Store
	limiter *RateLimiter
}

func NewEngine(store *mainstore.Store) *Engine {
	return &Engine{store: store, limiter: NewRateLimiter()}
}

// ObserveResult reports what Observe did, for the caller to log or
// surface back to a hook response.
type ObserveResult struct {
	FactID      int64
	Status      string
	Promoted    bool
	Suspicious  bool
	RateLimited bool
}

// Observe records (or re-observes) a candidate fact, applying the
// injection scanner and rate limiter before promotion logic runs.
func (e *Engine) Observe(ctx context.Context, sessionID string, projectID int64, key, content, category, factType, tagsJSON string, confidence float64) (ObserveResult, error) {
	scan := Scan(content)
	content = WithDataMarker(content)

	isNew, err := e.isNewKey(ctx, projectID, key)
	if err != nil {
		return ObserveResult{}, err
	}
	if isNew && !e.limiter.AllowInsert(sessionID, time.Now()) {
		mlog.Get(mlog.CategoryMemory).Warn("session %s exceeded memory insert rate limit", sessionID)
		return ObserveResult{RateLimited: true}, nil
	}

	id, observations, err := e.store.UpsertCandidateFact(ctx, projectID, key, content, category, factType, tagsJSON, confidence)
	if err != nil {
		return ObserveResult{}, err
	}

	result := ObserveResult{FactID: id, Status: mainstore.FactCandidate, Suspicious: scan.Suspicious}

	if scan.Suspicious {
		if err := e.store.SetFactStatus(ctx, id, mainstore.FactSuspicious); err != nil {
			return result, err
		}
		result.Status = mainstore.FactSuspicious
		mlog.Get(mlog.CategoryMemory).Warn("fact %d flagged suspicious: %v", id, scan.Matched)
		return result, nil
	}

	if observations >= promotionObservationThreshold {
		promoted, err := e.promoteIfWithinWindow(ctx, id)
		if err != nil {
			return result, err
		}
		if promoted {
			result.Status = mainstore.FactConfirmed
			result.Promoted = true
		}
	}

	return result, nil
}

// StoreExplicit records a fact the user asked to remember directly,
// confirmed immediately at the spec's default confidence of 0.8.
func (e *Engine) StoreExplicit(ctx context.Context, sessionID string, projectID int64, key, content, category, factType, tagsJSON string) (ObserveResult, error) {
	scan := Scan(content)
	content = WithDataMarker(content)

	isNew, err := e.isNewKey(ctx, projectID, key)
	if err != nil {
		return ObserveResult{}, err
	}
	if isNew && !e.limiter.AllowInsert(sessionID, time.Now()) {
		return ObserveResult{RateLimited: true}, nil
	}

	id, err := e.store.InsertConfirmedFact(ctx, projectID, key, content, category, factType, tagsJSON)
	if err != nil {
		return ObserveResult{}, err
	}

	result := ObserveResult{FactID: id, Status: mainstore.FactConfirmed, Suspicious: scan.Suspicious}
	if scan.Suspicious {
		if err := e.store.SetFactStatus(ctx, id, mainstore.FactSuspicious); err != nil {
			return result, err
		}
		result.Status = mainstore.FactSuspicious
	}
	return result, nil
}

// Corroborate promotes a candidate fact to confirmed on
// entity-extractor agreement (the third promotion path in spec §4.E).
func (e *Engine) Corroborate(ctx context.Context, factID int64) error {
	return e.store.SetFactStatus(ctx, factID, mainstore.FactConfirmed)
}

// Demote archives a fact explicitly; spec requires demotion to be an
// explicit action, never automatic.
func (e *Engine) Demote(ctx context.Context, factID int64) error {
	return e.store.SetFactStatus(ctx, factID, mainstore.FactArchived)
}

// promoteIfWithinWindow promotes a candidate factID to confirmed if its
// latest observation (last_observed_at) falls within promotionWindow of
// its first (created_at).
func (e *Engine) promoteIfWithinWindow(ctx context.Context, factID int64) (bool, error) {
	var lastObserved, createdAt time.Time
	var status string
	err := e.store.DB().QueryRowContext(ctx,
		`SELECT last_observed_at, created_at, status FROM memory_facts WHERE id = ?`, factID).
		Scan(&lastObserved, &createdAt, &status)
	if err != nil {
		return false, err
	}
	if status != mainstore.FactCandidate {
		return false, nil
	}
	if lastObserved.Sub(createdAt) > promotionWindow {
		return false, nil
	}
	if err := e.store.SetFactStatus(ctx, factID, mainstore.FactConfirmed); err != nil {
		return false, err
	}
	return true, nil
}

func (e *Engine) isNewKey(ctx context.Context, projectID int64, key string) (bool, error) {
	var one int
	err := e.store.DB().QueryRowContext(ctx,
		`SELECT 1 FROM memory_facts WHERE project_id = ? AND key = ?`, projectID, key).Scan(&one)
	if err == sql.ErrNoRows {
		return true, nil
	}
	if err != nil {
		return false, err
	}
	return false, nil
}
