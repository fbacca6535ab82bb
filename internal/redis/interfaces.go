package redis

import (
	"context"
	"encoding/json"
)

// GeoCacheInterface defines the caching operations the geocoding client
// needs. This interface allows for testing with mock implementations.
type GeoCacheInterface interface {
	GetCitySearch(ctx context.Context, namePrefix string) (json.RawMessage, error)
	SetCitySearch(ctx context.Context, namePrefix string, data json.RawMessage) error
	GetRegionSearch(ctx context.Context, countryCode, namePrefix string) (json.RawMessage, error)
	SetRegionSearch(ctx context.Context, countryCode, namePrefix string, data json.RawMessage) error
}

// Ensure concrete types implement interfaces.
var _ GeoCacheInterface = (*CacheStore)(nil)
