package realtime

import (
	"context"
	"fmt"
	"sync"

	"github.com/mitchellh/hashstructure/v2"
)

// CancelFunc detaches a subscription. It is synchronous and idempotent: once
// it returns, the subscription's callback will not run again. It must not be
// called from inside that same callback.
type CancelFunc func()

// Subscription is one live query registered with a Hub.
type Subscription struct {
	hub         *Hub
	name        string
	collections []Collection
	notify      chan struct{}
	stop        chan struct{}
	done        chan struct{}
	once        sync.Once
}

func (s *Subscription) poke() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// Cancel stops the subscription and waits for an in-flight callback to return.
func (s *Subscription) Cancel() {
	s.once.Do(func() {
		s.hub.remove(s)
		close(s.stop)
	})
	<-s.done
}

// Subscribe registers a live query. The query runs once synchronously so
// that errors (missing plan, forbidden caller) surface to the caller; that
// first snapshot is then delivered from the subscription goroutine, followed
// by a fresh snapshot whenever one of collections changes and the result
// differs from the last delivery.
func Subscribe[T any](ctx context.Context, h *Hub, name string, collections []Collection, query func(ctx context.Context) (T, error), deliver func(T)) (CancelFunc, error) {
	if len(collections) == 0 {
		return nil, fmt.Errorf("subscription %s: no collections to watch", name)
	}
	initial, err := query(ctx)
	if err != nil {
		return nil, err
	}

	sub := &Subscription{
		hub:         h,
		name:        name,
		collections: collections,
		notify:      make(chan struct{}, 1),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
	}
	h.add(sub)
	h.logger.Debug("subscription_started", "subscription", name)

	go func() {
		defer close(sub.done)
		defer h.logger.Debug("subscription_stopped", "subscription", name)

		// Queries issued after registration run detached from the caller's
		// request context; the subscription lives until cancelled.
		runCtx := context.WithoutCancel(ctx)

		var last uint64
		var haveLast bool
		emit := func(snapshot T) {
			sum, hashErr := hashstructure.Hash(snapshot, hashstructure.FormatV2, nil)
			if hashErr == nil && haveLast && sum == last {
				return
			}
			select {
			case <-sub.stop:
				return
			default:
			}
			if hashErr == nil {
				last, haveLast = sum, true
			} else {
				haveLast = false
			}
			deliver(snapshot)
		}

		emit(initial)
		for {
			select {
			case <-sub.stop:
				return
			case <-sub.notify:
				snapshot, err := query(runCtx)
				if err != nil {
					h.logger.Warn("subscription_query_failed", "subscription", name, "error", err.Error())
					continue
				}
				emit(snapshot)
			}
		}
	}()

	return sub.Cancel, nil
}
