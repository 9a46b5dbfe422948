package freshness

import (
	"sync"

	"github.com/ternarybob/arbor"
)

// Tracker decides whether the vector index is stale relative to the
// documents on disk. It holds the fingerprint of the last successful build;
// staleness is an explicit check the retriever runs before serving, not a
// background process.
type Tracker struct {
	dir    string
	logger arbor.ILogger

	mu        sync.Mutex
	lastBuilt string
}

func NewTracker(dir string, logger arbor.ILogger) *Tracker {
	return &Tracker{
		dir:    dir,
		logger: logger,
	}
}

// NeedsRebuild fingerprints the corpus and reports whether it differs from
// the last built fingerprint. The current fingerprint is returned so the
// caller can stamp the snapshot it builds. A never-built tracker always
// reports stale.
func (t *Tracker) NeedsRebuild() (bool, string, error) {
	current, err := Fingerprint(t.dir)
	if err != nil {
		return false, "", err
	}

	t.mu.Lock()
	lastBuilt := t.lastBuilt
	t.mu.Unlock()

	stale := current != lastBuilt
	if stale {
		t.logger.Debug().
			Str("dir", t.dir).
			Msg("Document corpus changed since last index build")
	}

	return stale, current, nil
}

// MarkBuilt records the fingerprint of a successfully built snapshot
func (t *Tracker) MarkBuilt(fingerprint string) {
	t.mu.Lock()
	t.lastBuilt = fingerprint
	t.mu.Unlock()
}
