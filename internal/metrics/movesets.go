package metrics

import "time"

// Move set pipeline metrics
const (
	MoveSetsGeneratedTotal   = "movesets_generated_total"
	MoveSetsGenerateDuration = "movesets_generate_duration_ms"
	MoveSetCacheTotal        = "moveset_cache_total"
	UpstreamRequestsTotal    = "pokeapi_requests_total"
	UpstreamRequestDuration  = "pokeapi_request_duration_ms"
)

// RecordMoveSetGenerated records one analysis attempt.
func RecordMoveSetGenerated(success bool, d time.Duration) {
	labels := map[string]string{"status": outcome(success, "success", "failure")}
	count(MoveSetsGeneratedTotal, labels)
	observe(MoveSetsGenerateDuration, d, labels)
}

// RecordMoveSetCache records a result cache lookup.
func RecordMoveSetCache(hit bool) {
	count(MoveSetCacheTotal, map[string]string{"result": outcome(hit, "hit", "miss")})
}

// RecordUpstreamRequest records a PokeAPI request. Status is the HTTP status
// class, "cache", "rate_limited" or "error". Cache hits carry no duration.
func RecordUpstreamRequest(resource string, status string, d time.Duration) {
	labels := map[string]string{
		"resource": resource,
		"status":   status,
	}
	count(UpstreamRequestsTotal, labels)
	if d > 0 {
		observe(UpstreamRequestDuration, d, labels)
	}
}
