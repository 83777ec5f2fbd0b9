package registry

import "sync"

// Base implements Component with optional hooks. Embed it and set the hooks
// with OnInitialize and OnCleanup.
type Base struct {
	mu           sync.Mutex
	onInitialize func()
	onCleanup    func()
}

// OnInitialize sets the hook run by Initialize
func (b *Base) OnInitialize(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onInitialize = fn
}

// OnCleanup sets the hook run by Cleanup
func (b *Base) OnCleanup(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.onCleanup = fn
}

// Initialize implements Component
func (b *Base) Initialize() {
	b.mu.Lock()
	fn := b.onInitialize
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}

// Cleanup implements Component
func (b *Base) Cleanup() {
	b.mu.Lock()
	fn := b.onCleanup
	b.mu.Unlock()
	if fn != nil {
		fn()
	}
}
