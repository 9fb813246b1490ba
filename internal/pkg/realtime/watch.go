package realtime

import (
	"context"
)

// Snapshot is one emission of a live query: the full current result, the keys
// that disappeared since the previous emission, or the error of this refresh.
type Snapshot[T any] struct {
	Docs    []T
	Removed []string
	Err     error
}

// QueryFunc loads the current result of a live query
type QueryFunc[T any] func(ctx context.Context) ([]T, error)

// KeyFunc extracts the identity of a document
type KeyFunc[T any] func(T) string

// Watch runs query once immediately and again after every change signal on
// topic, emitting a Snapshot each time. The returned channel is closed when ctx
// is cancelled or the broker stops; the subscription is released with it.
func Watch[T any](ctx context.Context, sub Subscriber, topic string, query QueryFunc[T], key KeyFunc[T]) (<-chan Snapshot[T], error) {
	subscription, err := sub.Subscribe(topic)
	if err != nil {
		return nil, err
	}

	out := make(chan Snapshot[T])
	go func() {
		defer close(out)
		defer subscription.Close()

		previous := map[string]struct{}{}
		refresh := func() bool {
			docs, err := query(ctx)
			if ctx.Err() != nil {
				return false
			}
			snap := Snapshot[T]{Err: err}
			if err == nil {
				current := make(map[string]struct{}, len(docs))
				for _, d := range docs {
					current[key(d)] = struct{}{}
				}
				for k := range previous {
					if _, ok := current[k]; !ok {
						snap.Removed = append(snap.Removed, k)
					}
				}
				previous = current
				snap.Docs = docs
			}
			select {
			case out <- snap:
				return true
			case <-ctx.Done():
				return false
			}
		}

		if !refresh() {
			return
		}
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-subscription.C():
				if !ok || !refresh() {
					return
				}
			}
		}
	}()
	return out, nil
}
