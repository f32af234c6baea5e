// Package activity fans transition notifications out to the live
// monitor: an in-memory feed of recent events, streaming subscribers,
// and a NATS publisher for external consumers.
package activity

import (
	"sync"

	"github.com/shiftworks/timeclock/clock"
)

// feedSize caps the feed at the most recent events, matching the live
// monitor's display window.
const feedSize = 10

// Feed keeps the most recent transition notifications, newest first,
// and streams new ones to subscribers.
type Feed struct {
	mu     sync.RWMutex
	recent []clock.Notification
	subs   map[chan clock.Notification]struct{}
}

// NewFeed creates an empty feed.
func NewFeed() *Feed {
	return &Feed{
		subs: make(map[chan clock.Notification]struct{}),
	}
}

// Notify records the notification and delivers it to subscribers.
// Slow subscribers are skipped rather than blocking the engine.
func (f *Feed) Notify(n clock.Notification) {
	f.mu.Lock()
	f.recent = append([]clock.Notification{n}, f.recent...)
	if len(f.recent) > feedSize {
		f.recent = f.recent[:feedSize]
	}
	for ch := range f.subs {
		select {
		case ch <- n:
		default:
		}
	}
	f.mu.Unlock()
}

// Recent returns the feed contents, newest first.
func (f *Feed) Recent() []clock.Notification {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make([]clock.Notification, len(f.recent))
	copy(out, f.recent)
	return out
}

// Subscribe registers a channel receiving future notifications. The
// returned cancel function removes the subscription.
func (f *Feed) Subscribe() (<-chan clock.Notification, func()) {
	ch := make(chan clock.Notification, 16)

	f.mu.Lock()
	f.subs[ch] = struct{}{}
	f.mu.Unlock()

	cancel := func() {
		f.mu.Lock()
		delete(f.subs, ch)
		f.mu.Unlock()
	}
	return ch, cancel
}

// Multi combines notifiers; each receives every notification.
func Multi(notifiers ...clock.Notifier) clock.Notifier {
	return clock.NotifierFunc(func(n clock.Notification) {
		for _, notifier := range notifiers {
			if notifier != nil {
				notifier.Notify(n)
			}
		}
	})
}
