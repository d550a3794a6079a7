package scribe

import "github.com/scribe-data/scribe/store"

// CallConfig holds per-call settings for the capture protocol entry
// points.
type CallConfig struct {
	Session store.Session
	Meta    map[string]any
	Upsert  bool
}

type CallOpt func(*CallConfig)

// WithSession threads a store session through every read and write of
// one logical mutation, so rolling the session back also rolls back its
// change records.
func WithSession(s store.Session) CallOpt {
	return func(c *CallConfig) { c.Session = s }
}

// WithMeta declares extra fields recorded inline on resulting records.
func WithMeta(m map[string]any) CallOpt {
	return func(c *CallConfig) { c.Meta = m }
}

// WithUpsert makes conditional updates insert a document when nothing
// matches.
func WithUpsert(v bool) CallOpt {
	return func(c *CallConfig) { c.Upsert = v }
}

func newCallConfig(opts []CallOpt) *CallConfig {
	cfg := &CallConfig{}
	for _, o := range opts {
		o(cfg)
	}
	return cfg
}
