// Package delivery defines the contract for inbound transport adapters.
package delivery

import "context"

// Delivery is a serving surface (HTTP today) started by the application entrypoint.
type Delivery interface {
	// Serve blocks serving requests until the context is cancelled or the
	// listener fails.
	Serve(ctx context.Context) error
}
