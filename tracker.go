// Package scribe tracks the evolution of documents by recording every
// transition as an ordered list of patch operations, and can reconstruct
// any prior state by replaying a prefix of that history.
package scribe

import (
	"context"
	"fmt"
	"sync"

	"github.com/scribe-data/scribe/patch"
	"github.com/scribe-data/scribe/store"
)

// Tracker wires history tracking to one document type: a document
// collection, a record collection and the tracking options.
type Tracker struct {
	docs store.Collection
	recs store.Collection

	excludes      []patch.Path
	trackOriginal bool
	purgeOnDelete bool
}

func NewTracker(docs, recs store.Collection, opts *Options) *Tracker {
	if opts == nil {
		opts = &Options{}
	}
	t := &Tracker{
		docs:          docs,
		recs:          recs,
		trackOriginal: opts.TrackOriginal,
		purgeOnDelete: opts.PurgeOnDelete,
	}
	for _, e := range opts.Excludes {
		t.excludes = append(t.excludes, patch.ParsePath(e))
	}
	return t
}

// Destroy deletes the document and, when purge-on-delete is set, every
// record of its history, under the caller's session if one is given.
func (t *Tracker) Destroy(ctx context.Context, ref string, opts ...CallOpt) error {
	cfg := newCallConfig(opts)
	if err := t.docs.DeleteOne(ctx, store.Conditions{"_id": ref}, cfg.Session); err != nil {
		return err
	}
	if !t.purgeOnDelete {
		return nil
	}
	return t.recs.DeleteMany(ctx, store.Conditions{"ref": ref}, cfg.Session)
}

// Registry maps document-type names to trackers.  It replaces a
// process-global registry: create one, register trackers during init,
// Close on teardown.
type Registry struct {
	mu       sync.Mutex
	trackers map[string]*Tracker
}

func NewRegistry() *Registry {
	return &Registry{trackers: map[string]*Tracker{}}
}

func (r *Registry) Register(name string, t *Tracker) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.trackers[name]; ok {
		return fmt.Errorf("tracker %q already registered", name)
	}
	r.trackers[name] = t
	return nil
}

func (r *Registry) Lookup(name string) *Tracker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.trackers[name]
}

func (r *Registry) Deregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.trackers, name)
}

// Close detaches every tracker.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.trackers = map[string]*Tracker{}
}
