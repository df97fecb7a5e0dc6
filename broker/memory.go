// Package broker provides the in-process implementation of the broadcast
// channel carrying event envelopes from the async processor to dispatchers.
package broker

import (
	"context"
	"strings"
	"sync"

	"github.com/mintopia/planka-mcp-sub001/core"
)

const defaultBufferSize = 64

// InProcessBroker fans every published payload out to all current
// subscriptions on the same channel name. Delivery is at-most-once: a
// subscription whose buffer is full misses the payload, and a subscriber
// attached after a publish never sees it. There is no replay log.
type InProcessBroker struct {
	mu         sync.RWMutex
	channels   map[string][]*channelSubscription
	closed     bool
	BufferSize int
}

func NewInProcessBroker() *InProcessBroker {
	return &InProcessBroker{
		channels:   map[string][]*channelSubscription{},
		BufferSize: defaultBufferSize,
	}
}

func (b *InProcessBroker) Publish(_ context.Context, channel string, body []byte) error {
	if b == nil {
		return brokerInternal("broker: broker is nil", nil)
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return brokerBadInput("broker: channel is required", nil)
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return brokerUnavailable("broker: broker is closed", map[string]any{"channel": channel})
	}
	msg := core.Message{Channel: channel, Body: append([]byte(nil), body...)}
	for _, sub := range b.channels[channel] {
		select {
		case sub.ch <- msg:
		default:
			// Slow receiver, drop. Invalidation hints tolerate loss.
		}
	}
	return nil
}

func (b *InProcessBroker) Subscribe(ctx context.Context, channel string) (core.ChannelSubscription, error) {
	if b == nil {
		return nil, brokerInternal("broker: broker is nil", nil)
	}
	channel = strings.TrimSpace(channel)
	if channel == "" {
		return nil, brokerBadInput("broker: channel is required", nil)
	}

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, brokerUnavailable("broker: broker is closed", map[string]any{"channel": channel})
	}
	size := b.BufferSize
	if size <= 0 {
		size = defaultBufferSize
	}
	sub := &channelSubscription{
		broker:  b,
		channel: channel,
		ch:      make(chan core.Message, size),
	}
	b.channels[channel] = append(b.channels[channel], sub)
	b.mu.Unlock()

	if ctx != nil {
		go func() {
			<-ctx.Done()
			_ = sub.Close()
		}()
	}
	return sub, nil
}

// Close detaches every subscription and rejects further publishes.
func (b *InProcessBroker) Close() error {
	if b == nil {
		return nil
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, subs := range b.channels {
		for _, sub := range subs {
			sub.closeOnce.Do(func() {
				close(sub.ch)
			})
		}
	}
	b.channels = map[string][]*channelSubscription{}
	return nil
}

type channelSubscription struct {
	broker    *InProcessBroker
	channel   string
	ch        chan core.Message
	closeOnce sync.Once
}

func (s *channelSubscription) Receive() <-chan core.Message {
	if s == nil {
		return nil
	}
	return s.ch
}

func (s *channelSubscription) Close() error {
	if s == nil {
		return nil
	}
	s.broker.detach(s)
	s.closeOnce.Do(func() {
		close(s.ch)
	})
	return nil
}

func (b *InProcessBroker) detach(sub *channelSubscription) {
	if b == nil || sub == nil {
		return
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	subs := b.channels[sub.channel]
	for i, candidate := range subs {
		if candidate == sub {
			b.channels[sub.channel] = append(subs[:i], subs[i+1:]...)
			break
		}
	}
	if len(b.channels[sub.channel]) == 0 {
		delete(b.channels, sub.channel)
	}
}

var _ core.Broker = (*InProcessBroker)(nil)
