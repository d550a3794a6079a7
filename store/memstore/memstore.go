// Package memstore is an in-memory store.Collection, used in tests and
// anywhere a process-local store suffices.  Documents are deep-cloned on
// the way in and out, so callers never alias the stored trees.
package memstore

import (
	"context"
	"sync"

	"github.com/scribe-data/scribe/ir"
	"github.com/scribe-data/scribe/store"
)

type Collection struct {
	mu   sync.RWMutex
	docs []*store.Document
}

func New() *Collection {
	return &Collection{}
}

var _ store.Collection = (*Collection)(nil)

func (c *Collection) FindOne(ctx context.Context, conds store.Conditions, _ store.Session) (*store.Document, error) {
	m, err := store.NewMatcher(conds)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, d := range c.docs {
		ok, err := m.Match(d)
		if err != nil {
			return nil, err
		}
		if ok {
			return cloneDoc(d), nil
		}
	}
	return nil, nil
}

func (c *Collection) FindMany(ctx context.Context, conds store.Conditions, _ store.Session) ([]*store.Document, error) {
	m, err := store.NewMatcher(conds)
	if err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	var res []*store.Document
	for _, d := range c.docs {
		ok, err := m.Match(d)
		if err != nil {
			return nil, err
		}
		if ok {
			res = append(res, cloneDoc(d))
		}
	}
	return res, nil
}

func (c *Collection) Insert(ctx context.Context, doc *store.Document, _ store.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.docs = append(c.docs, cloneDoc(doc))
	return nil
}

func (c *Collection) Save(ctx context.Context, doc *store.Document, _ store.Session) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.docs {
		if d.ID == doc.ID {
			c.docs[i] = cloneDoc(doc)
			return nil
		}
	}
	c.docs = append(c.docs, cloneDoc(doc))
	return nil
}

func (c *Collection) UpdateOne(ctx context.Context, conds store.Conditions, u store.Update, upsert bool, _ store.Session) (store.UpdateResult, error) {
	return c.update(conds, u, upsert, 1)
}

func (c *Collection) UpdateMany(ctx context.Context, conds store.Conditions, u store.Update, upsert bool, _ store.Session) (store.UpdateResult, error) {
	return c.update(conds, u, upsert, -1)
}

func (c *Collection) update(conds store.Conditions, u store.Update, upsert bool, limit int) (store.UpdateResult, error) {
	m, err := store.NewMatcher(conds)
	if err != nil {
		return store.UpdateResult{}, err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	var res store.UpdateResult
	for _, d := range c.docs {
		if limit >= 0 && res.Matched >= int64(limit) {
			break
		}
		ok, err := m.Match(d)
		if err != nil {
			return res, err
		}
		if !ok {
			continue
		}
		d.Data = store.ApplyUpdate(d.Data, u)
		res.Matched++
	}
	if res.Matched == 0 && upsert {
		id, _ := conds["_id"].(string)
		if id == "" {
			id = store.NewID()
		}
		c.docs = append(c.docs, &store.Document{
			ID:   id,
			Data: store.ApplyUpdate(store.SeedFromConditions(conds), u),
		})
		res.Upserted = 1
	}
	return res, nil
}

func (c *Collection) DeleteOne(ctx context.Context, conds store.Conditions, sess store.Session) error {
	return c.delete(conds, 1)
}

func (c *Collection) DeleteMany(ctx context.Context, conds store.Conditions, sess store.Session) error {
	return c.delete(conds, -1)
}

func (c *Collection) delete(conds store.Conditions, limit int) error {
	m, err := store.NewMatcher(conds)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	kept := c.docs[:0]
	deleted := 0
	for _, d := range c.docs {
		if limit >= 0 && deleted >= limit {
			kept = append(kept, d)
			continue
		}
		ok, err := m.Match(d)
		if err != nil {
			return err
		}
		if ok {
			deleted++
			continue
		}
		kept = append(kept, d)
	}
	c.docs = kept
	return nil
}

func cloneDoc(d *store.Document) *store.Document {
	return &store.Document{ID: d.ID, Data: cloneData(d.Data)}
}

func cloneData(n *ir.Node) *ir.Node {
	if n == nil {
		return ir.Object()
	}
	return n.Clone()
}
