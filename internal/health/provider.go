package health

import (
	"context"
)

// Provider is a backing dependency that can report its health
type Provider interface {
	// Type returns the dependency type name
	Type() string

	// HealthCheck checks if the dependency is available
	HealthCheck(ctx context.Context) error
}

// BaseProvider provides common functionality for providers
type BaseProvider struct {
	serviceType string
}

// Type returns the dependency type
func (p *BaseProvider) Type() string {
	return p.serviceType
}

// PingFunc is satisfied by repositories and clients with a Ping method
type PingFunc func(ctx context.Context) error

// FuncProvider adapts a ping function into a Provider
type FuncProvider struct {
	BaseProvider
	ping PingFunc
}

// NewFuncProvider creates a provider backed by ping
func NewFuncProvider(serviceType string, ping PingFunc) *FuncProvider {
	return &FuncProvider{
		BaseProvider: BaseProvider{serviceType: serviceType},
		ping:         ping,
	}
}

// HealthCheck calls the wrapped ping
func (p *FuncProvider) HealthCheck(ctx context.Context) error {
	return p.ping(ctx)
}
