package redis

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// CacheStore handles caching of external geocoding lookups in Redis.
type CacheStore struct {
	client *redis.Client
}

// NewCacheStore creates a new CacheStore.
func NewCacheStore(client *redis.Client) *CacheStore {
	return &CacheStore{client: client}
}

// Cache TTL constants
const (
	// GeoLookupTTL bounds how long provider search results are replayed.
	// City data is near-static; a day keeps quota usage low without
	// serving stale results forever.
	GeoLookupTTL = 24 * time.Hour
)

// Key prefixes
const (
	cityLookupPrefix   = "cache:geo:cities:"
	regionLookupPrefix = "cache:geo:regions:"
)

// GetCitySearch retrieves a cached city search result. Returns nil on a
// cache miss.
func (s *CacheStore) GetCitySearch(ctx context.Context, namePrefix string) (json.RawMessage, error) {
	return s.get(ctx, cityLookupPrefix+namePrefix)
}

// SetCitySearch stores a city search result.
func (s *CacheStore) SetCitySearch(ctx context.Context, namePrefix string, data json.RawMessage) error {
	return s.client.Set(ctx, cityLookupPrefix+namePrefix, []byte(data), GeoLookupTTL).Err()
}

// GetRegionSearch retrieves a cached region search result. Returns nil on
// a cache miss.
func (s *CacheStore) GetRegionSearch(ctx context.Context, countryCode, namePrefix string) (json.RawMessage, error) {
	return s.get(ctx, regionLookupPrefix+countryCode+":"+namePrefix)
}

// SetRegionSearch stores a region search result.
func (s *CacheStore) SetRegionSearch(ctx context.Context, countryCode, namePrefix string, data json.RawMessage) error {
	return s.client.Set(ctx, regionLookupPrefix+countryCode+":"+namePrefix, []byte(data), GeoLookupTTL).Err()
}

func (s *CacheStore) get(ctx context.Context, key string) (json.RawMessage, error) {
	data, err := s.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // Cache miss
		}
		return nil, err
	}
	return json.RawMessage(data), nil
}
