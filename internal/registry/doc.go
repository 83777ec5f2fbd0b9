// Package registry is the explicit, synchronous counterpart of the container.
//
// Components are registered and removed by the caller. Register runs
// Initialize, Remove always runs Cleanup, and nothing waits for readiness.
// Use it for helpers whose lifetime is owned by the caller rather than by a
// background goroutine.
package registry
