// SPDX-License-Identifier: MPL-2.0

package config

import "context"

// Provider resolves Settings from explicit options.
type Provider interface {
	Resolve(ctx context.Context, opts Options) (*Settings, error)
}

type envProvider struct {
	env Environ
}

// NewProvider creates a Provider that reads environment variables through env.
func NewProvider(env Environ) Provider {
	return &envProvider{env: env}
}

// Resolve implements Provider.
func (p *envProvider) Resolve(ctx context.Context, opts Options) (*Settings, error) {
	return Resolve(ctx, opts, p.env)
}
