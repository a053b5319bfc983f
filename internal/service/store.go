package service

import "context"

// Store is the durable key/value facility the state containers write through to.
type Store interface {
	Save(ctx context.Context, key string, value any) error
	Load(ctx context.Context, key string, dst any) (bool, error)
	Remove(ctx context.Context, key string) error
}
