package store

import (
	"golang.org/x/sync/singleflight"
)

// Coalescer deduplicates concurrent fetches for the same logical resource
// key: while a producer for a key is in flight, every additional caller for
// that key waits on the original operation and receives its result, success
// or failure alike. The key is released the instant the producer settles, so
// a failed attempt never poisons later ones.
type Coalescer struct {
	group singleflight.Group
}

// NewCoalescer creates an empty coalescer.
func NewCoalescer() *Coalescer {
	return &Coalescer{}
}

// FetchOnce runs producer for key unless one is already in flight, in which
// case the caller shares the in-flight result. The producer's error is
// propagated verbatim to every waiter.
func (c *Coalescer) FetchOnce(key string, producer func() (any, error)) (any, error) {
	v, err, _ := c.group.Do(key, producer)
	return v, err
}

// FetchOnceTyped is a typed convenience wrapper around FetchOnce.
func FetchOnceTyped[T any](c *Coalescer, key string, producer func() (T, error)) (T, error) {
	v, err := c.FetchOnce(key, func() (any, error) {
		return producer()
	})
	if err != nil {
		var zero T
		return zero, err
	}
	return v.(T), nil
}

// Resource key scheme shared by all store callers.

// ItineraryKey is the coalescing key for a single itinerary fetch.
func ItineraryKey(id string) string {
	return "itinerary:" + id
}

// ListKey is the coalescing key for an itinerary list fetch, keyed by the
// owner-or-session auth mode.
func ListKey(authMode string) string {
	return "list:" + authMode
}
