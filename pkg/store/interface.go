package store

import "context"

// Store defines the interface for session persistence. Keys are plain
// strings; callers are responsible for namespacing them per channel and
// user (e.g. "vk-123-question"). A missing key is reported via ok=false,
// never as an error.
type Store interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (value string, ok bool, err error)
}
