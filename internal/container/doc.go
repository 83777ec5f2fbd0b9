// Package container holds at most one live instance of each service type and
// manages its lifetime.
//
// A factory is registered per type with Provide. The first GetService call for
// a type builds the instance, starts it and inserts it; concurrent callers
// share that construction and every caller waits until the instance reports
// services.StateRunning:
//
//	c := container.New(container.Config{ReadyTimeout: 10 * time.Second})
//	container.Provide(c, kvstore.Factory(def))
//
//	store, err := container.GetService[*kvstore.Store](ctx, c)
//
// Instances are removed by a termination handler once their Terminated
// channel closes, whatever triggered the shutdown. StopService and
// StopAllServices only request shutdown; WaitForTermination and StopService
// wait for the removal.
//
// Identity is the exact Go type parameter: GetService[*kvstore.Store] and
// GetService[services.Service] name different entries.
package container
