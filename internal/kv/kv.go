// Package kv is a small string key-value abstraction with an atomic batch write.
// Redis serves it in production and a guarded map serves it in memory.
package kv

import "context"

type Write struct {
	Key    string
	Value  string
	Delete bool
}

type Client interface {
	Get(ctx context.Context, key string) (string, bool, error)
	// Apply writes every entry or none of them.
	Apply(ctx context.Context, writes []Write) error
	Ping(ctx context.Context) error
	Close() error
}

func Set(ctx context.Context, c Client, key, value string) error {
	return c.Apply(ctx, []Write{{Key: key, Value: value}})
}

func Delete(ctx context.Context, c Client, key string) error {
	return c.Apply(ctx, []Write{{Key: key, Delete: true}})
}
