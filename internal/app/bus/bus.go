// Package bus implements the process-wide publish/subscribe registry
// for the application: typed channels, bounded per-subscriber queues,
// fan-out delivery and a caller-chosen publish timeout.
//
//go:generate mockgen -source=bus.go -destination=bus_mock.go -package=bus
package bus

import (
	"fmt"
	"sync"
	"time"

	"tracker-agent/internal/app/apperrors"
	"tracker-agent/internal/config/logger"
)

// Message is a single publish on a Channel.
type Message struct {
	Channel   Channel
	Type      MessageType
	Data      interface{}
	Timestamp time.Time
}

// SubscriberFailure records that one subscriber's queue could not accept a
// published message within the publish timeout.
type SubscriberFailure struct {
	Subscriber string
	Err        error
}

// PublishError is returned by Publish when one or more subscribers could not
// be delivered to. Delivery to every other subscriber still happens; this is
// a partial-delivery error.
type PublishError struct {
	Channel  Channel
	Failures []SubscriberFailure
}

func (e *PublishError) Error() string {
	return fmt.Sprintf("bus: publish on %s: %d subscriber(s) failed", e.Channel, len(e.Failures))
}

// Is lets errors.Is(err, apperrors.ErrQueueFull) and
// errors.Is(err, apperrors.ErrBusTimeout) match a *PublishError, since every
// recorded failure is one of those two sentinels.
func (e *PublishError) Is(target error) bool {
	for _, f := range e.Failures {
		if f.Err == target {
			return true
		}
	}
	return false
}

// Bus is the process-wide pub/sub registry.
type Bus interface {
	// Subscribe idempotently attaches sub to each named channel.
	Subscribe(sub *Subscriber, channels ...Channel)
	// Publish delivers msg to every subscriber of channel, returning success
	// once every delivery fits within timeout. Each delivery is a single
	// non-blocking attempt: a subscriber whose queue is full is reported at
	// once as QUEUE_FULL (delivery is not retried), and subscribers not yet
	// reached when timeout elapses are reported as BUS_TIMEOUT. Failures are
	// collected in a *PublishError and do not stop delivery to the others.
	Publish(channel Channel, msgType MessageType, data interface{}, timeout time.Duration) error
	// Wait blocks the calling task until sub receives a message on any
	// channel it is subscribed to, or timeout elapses.
	Wait(sub *Subscriber, timeout time.Duration) (Message, error)
	// Close tears down every subscriber queue; the bus is unusable after.
	Close()
}

type bus struct {
	mu          sync.RWMutex
	subscribers map[Channel]map[*Subscriber]struct{}
	allSubs     map[*Subscriber]struct{}
	closed      bool
	log         logger.Logger
}

// New creates a Bus.
func New(log logger.Logger) Bus {
	return &bus{
		subscribers: make(map[Channel]map[*Subscriber]struct{}),
		allSubs:     make(map[*Subscriber]struct{}),
		log:         log,
	}
}

// Subscribe attaches sub to the given channels. Attaching to a channel the
// subscriber is already on is a no-op (idempotent).
func (b *bus) Subscribe(sub *Subscriber, channels ...Channel) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.allSubs[sub] = struct{}{}

	for _, ch := range channels {
		if b.subscribers[ch] == nil {
			b.subscribers[ch] = make(map[*Subscriber]struct{})
		}
		b.subscribers[ch][sub] = struct{}{}
	}
}

// Publish fans msg out to every subscriber of channel. Per channel, per
// subscriber, delivery preserves publish order because each subscriber owns
// a single ordered queue.
func (b *bus) Publish(channel Channel, msgType MessageType, data interface{}, timeout time.Duration) error {
	b.mu.RLock()
	closed := b.closed
	subs := make([]*Subscriber, 0, len(b.subscribers[channel]))
	for s := range b.subscribers[channel] {
		subs = append(subs, s)
	}
	b.mu.RUnlock()

	if closed {
		return apperrors.ErrBusClosed
	}

	msg := Message{Channel: channel, Type: msgType, Data: data, Timestamp: time.Now()}

	if b.log != nil {
		b.log.Debug().Str("channel", string(channel)).Str("type", string(msgType)).Msg("publish")
	}

	deadline := time.Now().Add(timeout)
	var failures []SubscriberFailure

	for _, sub := range subs {
		if time.Now().After(deadline) {
			failures = append(failures, SubscriberFailure{Subscriber: sub.Name(), Err: apperrors.ErrBusTimeout})
			continue
		}

		select {
		case sub.queue <- msg:
		default:
			failures = append(failures, SubscriberFailure{Subscriber: sub.Name(), Err: apperrors.ErrQueueFull})
		}
	}

	if len(failures) > 0 {
		return &PublishError{Channel: channel, Failures: failures}
	}

	return nil
}

// Wait blocks until sub's queue yields a message or timeout elapses.
func (b *bus) Wait(sub *Subscriber, timeout time.Duration) (Message, error) {
	select {
	case msg, ok := <-sub.queue:
		if !ok {
			return Message{}, apperrors.ErrBusClosed
		}
		sub.setLastChannel(msg.Channel)
		return msg, nil
	case <-time.After(timeout):
		return Message{}, apperrors.ErrNoMessage
	}
}

// Close closes every subscriber's queue. Subsequent Publish calls return
// ErrBusClosed; subsequent Subscribe calls are no-ops.
func (b *bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true

	for sub := range b.allSubs {
		sub.close()
	}

	b.subscribers = nil
	b.allSubs = nil
}
