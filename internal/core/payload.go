package core

import "time"

// CachedPayload is a raw upstream response held in the persistent cache.
type CachedPayload struct {
	Resource  string
	Key       string
	Payload   []byte
	FetchedAt time.Time
	ExpiresAt time.Time
}

// PayloadStats summarises cached payloads for one resource kind.
type PayloadStats struct {
	Resource string `json:"resource" yaml:"resource"`
	Entries  int    `json:"entries" yaml:"entries"`
	Expired  int    `json:"expired" yaml:"expired"`
	Bytes    int64  `json:"bytes" yaml:"bytes"`

	LastFetched time.Time `json:"lastFetched" yaml:"last_fetched"`
}
