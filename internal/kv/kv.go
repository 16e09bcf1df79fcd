// Package kv defines the durable string blob store the relationship graph persists to,
// along with its backends.
package kv

import "context"

// Store is an asynchronous string-keyed blob store.
//
// Get returns ok=false with a nil error when the key has never been written; that is a
// distinct state from a stored empty value.
type Store interface {
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
}

// prefixed namespaces every key of the wrapped store.
type prefixed struct {
	store  Store
	prefix string
}

// Prefixed returns a Store that prepends prefix to every key. An empty prefix returns
// store unchanged.
func Prefixed(store Store, prefix string) Store {
	if prefix == "" {
		return store
	}
	return &prefixed{store: store, prefix: prefix}
}

func (p *prefixed) Get(ctx context.Context, key string) (string, bool, error) {
	return p.store.Get(ctx, p.prefix+key)
}

func (p *prefixed) Set(ctx context.Context, key, value string) error {
	return p.store.Set(ctx, p.prefix+key, value)
}
