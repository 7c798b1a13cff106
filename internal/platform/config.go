// Package platform is a client for the execution platform's internal
// services: shared storage provisioning and execution identity lookup.
package platform

import "time"

// Default service locations.
const (
	DefaultDispatcherURL = "http://nf-dispatcher-service.flyte.svc.cluster.local"
	DefaultGraphQLURL    = "https://vacuole.latch.bio/graphql"
	DefaultDataURL       = "https://nucleus.latch.bio"
	DefaultTokenEnv      = "FLYTE_INTERNAL_EXECUTION_ID"
	DefaultTimeout       = 30 * time.Second
)

// Config holds the platform client configuration.
type Config struct {
	// DispatcherURL is the base URL of the Nextflow dispatcher service.
	DispatcherURL string

	// GraphQLURL is the platform GraphQL endpoint used to resolve execution names.
	GraphQLURL string

	// DataURL is the base URL of the platform data service that accepts
	// latch:// uploads.
	DataURL string

	// TokenEnv names the environment variable holding the execution token.
	TokenEnv string

	// Timeout is the HTTP client timeout for each request.
	Timeout time.Duration
}

// DefaultConfig returns the in-cluster configuration.
func DefaultConfig() Config {
	return Config{
		DispatcherURL: DefaultDispatcherURL,
		GraphQLURL:    DefaultGraphQLURL,
		DataURL:       DefaultDataURL,
		TokenEnv:      DefaultTokenEnv,
		Timeout:       DefaultTimeout,
	}
}
