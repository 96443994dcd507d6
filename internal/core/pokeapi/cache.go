package pokeapi

import "time"

// CachePolicy controls how long upstream payloads stay in the store.
type CachePolicy struct {
	SpeciesTTL time.Duration
	MoveTTL    time.Duration
}

func cachePolicyWithDefaults(policy CachePolicy) CachePolicy {
	if policy.SpeciesTTL == 0 {
		policy.SpeciesTTL = time.Hour
	}
	if policy.MoveTTL == 0 {
		policy.MoveTTL = time.Hour
	}
	return policy
}

func cacheTTL(policy CachePolicy, resource string) time.Duration {
	policy = cachePolicyWithDefaults(policy)

	switch resource {
	case ResourcePokemon:
		return policy.SpeciesTTL
	case ResourceMove:
		return policy.MoveTTL
	default:
		return 0
	}
}
