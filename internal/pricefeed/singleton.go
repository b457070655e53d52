package pricefeed

import "sync"

var (
	defaultMu   sync.Mutex
	defaultFeed *Feed
)

// Default returns the process-wide feed, lazily constructed with no
// pre-subscribed symbols on first use.
func Default() *Feed {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFeed == nil {
		defaultFeed = New(Config{})
	}
	return defaultFeed
}

// ResetForTests disconnects and drops the process-wide feed so tests can
// start from a clean instance.
func ResetForTests() {
	defaultMu.Lock()
	defer defaultMu.Unlock()
	if defaultFeed != nil {
		defaultFeed.Disconnect()
		defaultFeed = nil
	}
}
