// Package store defines the document store collaborator consumed by the
// change-capture protocol, together with the condition and update
// expression shapes shared by its implementations.
package store

import (
	"context"

	"github.com/scribe-data/scribe/ir"
)

// Session is an opaque transactional handle threaded through every
// operation of one logical mutation.  Implementations type-assert their
// own session kind and ignore a nil Session.
type Session interface{}

// Document pairs a document identity with its data view.
type Document struct {
	ID   string
	Data *ir.Node
}

// Conditions is a match expression over documents.  Plain keys name
// dotted field paths and require equality with the normalized value;
// "_id" addresses the document identity.  A value of type In matches any
// member.  The "$where" key holds an expression string evaluated against
// the document's fields.  Other operator keys are ignored.
type Conditions map[string]any

// In matches a field against any of its members.
type In []any

// Update is a mutation expression.  Plain keys are direct field
// assignments by dotted path.  The "$set", "$unset" and "$inc" operator
// keys hold maps of dotted paths; any other operator key is ignored.
type Update map[string]any

// UpdateResult reports what a conditional update touched.  Matched < 0
// means the store cannot distinguish a no-op from a match, in which case
// the capture protocol always attempts after-resolution.
type UpdateResult struct {
	Matched  int64
	Upserted int64
}

// Collection is one named set of documents.
type Collection interface {
	// FindOne returns the first matching document, or nil when none
	// match.
	FindOne(ctx context.Context, conds Conditions, sess Session) (*Document, error)
	FindMany(ctx context.Context, conds Conditions, sess Session) ([]*Document, error)
	Insert(ctx context.Context, doc *Document, sess Session) error
	// Save fully replaces the document with the given identity,
	// inserting it if absent.
	Save(ctx context.Context, doc *Document, sess Session) error
	UpdateOne(ctx context.Context, conds Conditions, u Update, upsert bool, sess Session) (UpdateResult, error)
	UpdateMany(ctx context.Context, conds Conditions, u Update, upsert bool, sess Session) (UpdateResult, error)
	DeleteOne(ctx context.Context, conds Conditions, sess Session) error
	DeleteMany(ctx context.Context, conds Conditions, sess Session) error
}
