package assert

import (
	"sync"
	"sync/atomic"
)

// Tracker is the process-wide registry of assertion sites. Sites are created
// lazily on first encounter and accumulate for the life of the process; they
// are never removed.
//
// Registration uses an atomic check-and-insert per site rather than a global
// lock around the whole call, so concurrent outcome reporting from different
// sites never serializes.
type Tracker struct {
	sites sync.Map // site id -> *siteEntry
}

// siteEntry holds the per-site state: the location captured at registration
// time and running pass/fail tallies.
type siteEntry struct {
	filename  string
	classname string
	defined   atomic.Bool
	passes    atomic.Int64
	fails     atomic.Int64
}

// NewTracker returns an empty tracker. Production code shares the default
// tracker; tests and the smoke harness inject a fresh one via SetTracker.
func NewTracker() *Tracker {
	return &Tracker{}
}

// entry returns the siteEntry for id, creating it if unseen. Under a race,
// LoadOrStore guarantees all callers converge on one entry.
func (t *Tracker) entry(id, filename, classname string) *siteEntry {
	if e, ok := t.sites.Load(id); ok {
		return e.(*siteEntry)
	}
	e, _ := t.sites.LoadOrStore(id, &siteEntry{filename: filename, classname: classname})
	return e.(*siteEntry)
}

// markDefined flips the entry to defined and reports whether this caller won
// the registration. Exactly one caller per site ever sees true, no matter
// how many goroutines race the first encounter.
func (e *siteEntry) markDefined() bool {
	return e.defined.CompareAndSwap(false, true)
}

// SiteCounts is an observable snapshot of one site's tallies.
type SiteCounts struct {
	Passes  int64
	Fails   int64
	Defined bool
}

// Counts returns the tallies for a site id, and whether the site exists.
func (t *Tracker) Counts(id string) (SiteCounts, bool) {
	e, ok := t.sites.Load(id)
	if !ok {
		return SiteCounts{}, false
	}
	entry := e.(*siteEntry)
	return SiteCounts{
		Passes:  entry.passes.Load(),
		Fails:   entry.fails.Load(),
		Defined: entry.defined.Load(),
	}, true
}

// Snapshot returns the tallies for every known site, keyed by site id.
func (t *Tracker) Snapshot() map[string]SiteCounts {
	out := make(map[string]SiteCounts)
	t.sites.Range(func(key, value any) bool {
		entry := value.(*siteEntry)
		out[key.(string)] = SiteCounts{
			Passes:  entry.passes.Load(),
			Fails:   entry.fails.Load(),
			Defined: entry.defined.Load(),
		}
		return true
	})
	return out
}

// defaultTracker is installed lazily on first use and lives for the process.
var defaultTracker atomic.Pointer[Tracker]

// DefaultTracker returns the shared process-wide tracker.
func DefaultTracker() *Tracker {
	if t := defaultTracker.Load(); t != nil {
		return t
	}
	t := NewTracker()
	if defaultTracker.CompareAndSwap(nil, t) {
		return t
	}
	return defaultTracker.Load()
}

// SetTracker installs t as the shared tracker and returns a func restoring
// the previous one. Tests inject a fresh tracker instead of resetting the
// shared instance.
func SetTracker(t *Tracker) (restore func()) {
	prev := defaultTracker.Swap(t)
	return func() { defaultTracker.Store(prev) }
}
