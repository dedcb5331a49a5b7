package behavior

import (
	"context"

	"github.com/ConaryLabs/mira/internal/mainstore"
)

// Recorder wires tool failure/success events into error-pattern
// fingerprinting and auto-resolve (spec §4.F), on top of
// mainstore.RecordFailure/ResolveOnSuccess.
type Recorder struct {
	store *mainstore.Store
}

func NewRecorder(store *mainstore.Store) *Recorder {
	return &Recorder{store: store}
}

// Failure normalizes and fingerprints rawError, records the failure,
// and returns the fingerprint so the caller can stamp it onto the
// behavior event it is about to insert.
func (r *Recorder) Failure(ctx context.Context, projectID int64, tool, rawError string, seqPos int) (string, error) {
	normalized := NormalizeError(rawError)
	fp := Fingerprint(tool, normalized)
	if err := r.store.RecordFailure(ctx, projectID, tool, fp, normalized, seqPos); err != nil {
		return fp, err
	}
	return fp, nil
}

// Success attempts auto-resolution of the (tool, fingerprint) pattern;
// it computes no fingerprint itself, so fingerprint must be the value
// Failure previously returned for the pattern this success fixes.
func (r *Recorder) Success(ctx context.Context, projectID int64, tool, fingerprint, fix string) (bool, error) {
	return r.store.ResolveOnSuccess(ctx, projectID, tool, fingerprint, fix)
}
