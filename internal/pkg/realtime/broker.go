package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"
)

// ErrBrokerStopped is returned once the broker loop has exited
var ErrBrokerStopped = errors.New("realtime broker stopped")

//go:generate mockgen -source=broker.go -destination=../../app/services/mocks/mock_realtime.go -package=mocks

// Publisher announces that documents under a topic changed
type Publisher interface {
	Publish(ctx context.Context, topics ...string) error
}

// NopPublisher drops every signal. Processes without listeners, such as
// one-shot CLI commands on the local driver, publish through it.
type NopPublisher struct{}

// Publish implements Publisher
func (NopPublisher) Publish(context.Context, ...string) error { return nil }

// Subscriber hands out change signals for a topic
type Subscriber interface {
	Subscribe(topic string) (*Subscription, error)
}

// Subscription receives a signal whenever its topic changes. Signals are
// coalesced: several publishes before the reader wakes up yield one signal.
type Subscription struct {
	topic  string
	signal chan struct{}
	broker *Broker
	once   sync.Once
}

// C is the signal channel; it is closed when the subscription ends
func (s *Subscription) C() <-chan struct{} {
	return s.signal
}

// Topic returns the subscribed topic
func (s *Subscription) Topic() string {
	return s.topic
}

// Close unregisters the subscription; safe to call more than once
func (s *Subscription) Close() {
	s.once.Do(func() {
		select {
		case s.broker.unregister <- s:
		case <-s.broker.done:
		}
	})
}

// Broker fans change signals out to topic subscribers in-process
type Broker struct {
	subs       map[string]map[*Subscription]struct{}
	register   chan *Subscription
	unregister chan *Subscription
	publish    chan string
	done       chan struct{}

	mu     sync.RWMutex
	logger zerolog.Logger
}

// NewBroker creates a broker; call Run to start delivering
func NewBroker(logger zerolog.Logger) *Broker {
	return &Broker{
		subs:       make(map[string]map[*Subscription]struct{}),
		register:   make(chan *Subscription),
		unregister: make(chan *Subscription),
		publish:    make(chan string, 64),
		done:       make(chan struct{}),
		logger:     logger,
	}
}

// Run delivers signals until ctx is cancelled, then closes every subscription
func (b *Broker) Run(ctx context.Context) {
	defer b.shutdown()
	for {
		select {
		case <-ctx.Done():
			return
		case sub := <-b.register:
			b.add(sub)
		case sub := <-b.unregister:
			b.remove(sub)
		case topic := <-b.publish:
			b.deliver(topic)
		}
	}
}

func (b *Broker) shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()
	close(b.done)
	for topic, subs := range b.subs {
		for sub := range subs {
			close(sub.signal)
		}
		delete(b.subs, topic)
	}
	b.logger.Info().Msg("Realtime broker stopped")
}

func (b *Broker) add(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[sub.topic]; !ok {
		b.subs[sub.topic] = make(map[*Subscription]struct{})
	}
	b.subs[sub.topic][sub] = struct{}{}
	b.logger.Debug().Str("topic", sub.topic).Int("subscribers", len(b.subs[sub.topic])).Msg("Subscription registered")
}

func (b *Broker) remove(sub *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.subs[sub.topic]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	close(sub.signal)
	if len(subs) == 0 {
		delete(b.subs, sub.topic)
	}
	b.logger.Debug().Str("topic", sub.topic).Msg("Subscription removed")
}

func (b *Broker) deliver(topic string) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.subs[topic] {
		select {
		case sub.signal <- struct{}{}:
		default:
			// a signal is already pending for this subscriber
		}
	}
}

// Subscribe registers interest in topic
func (b *Broker) Subscribe(topic string) (*Subscription, error) {
	sub := &Subscription{
		topic:  topic,
		signal: make(chan struct{}, 1),
		broker: b,
	}
	select {
	case b.register <- sub:
		return sub, nil
	case <-b.done:
		return nil, ErrBrokerStopped
	}
}

// Publish queues a change signal for each topic
func (b *Broker) Publish(ctx context.Context, topics ...string) error {
	select {
	case <-b.done:
		return ErrBrokerStopped
	default:
	}
	for _, topic := range topics {
		select {
		case b.publish <- topic:
		case <-b.done:
			return ErrBrokerStopped
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// SubscriberCount returns the number of live subscriptions for topic
func (b *Broker) SubscriberCount(topic string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs[topic])
}
