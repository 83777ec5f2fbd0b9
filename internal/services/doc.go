// Package services defines the capability contract shared by every service
// managed by svcctl and the BaseService state machine that implements it.
//
// # Service Lifecycle
//
// A service moves through the following phases:
//
//	Stopped -> Starting -> Running -> Stopping -> Stopped
//
// Error is reachable from Starting (the start hook failed) and from Running
// (Fail was called). A service in Error can still be shut down.
//
// # Notifications
//
// Instead of polling State, owners block on two channels:
//
//   - Changed is closed on the next transition and then replaced, so a
//     waiter re-reads State and picks up the new channel.
//   - Terminated is closed exactly once, after the final transition into
//     Stopped. The container uses it to drop the registry entry.
//
// # Example Usage
//
//	type Cache struct {
//	    *services.BaseService
//	    data map[string]string
//	}
//
//	func NewCache() *Cache {
//	    c := &Cache{data: map[string]string{}}
//	    c.BaseService = services.NewBaseService("cache", services.WithStopFunc(c.flush))
//	    return c
//	}
//
//	func (c *Cache) Start(ctx context.Context) error {
//	    return c.Launch(ctx, c.warmUp)
//	}
//
// # Thread Safety
//
// State is an atomic read. All transitions are serialized inside
// BaseService; state change callbacks run outside its lock.
package services
