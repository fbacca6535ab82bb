package domain

// City is a geocoding-provider city referenced by quotes and shipments.
// The ID is the provider's stable city id, supplied by the caller.
// Cities are created lazily the first time a quote references an unseen
// id and are never mutated afterwards.
type City struct {
	ID          int64
	Name        string
	RegionCode  string
	CountryCode string
	Latitude    *float64
	Longitude   *float64
}

// HasCoordinates reports whether the city carries a usable lat/long pair.
func (c *City) HasCoordinates() bool {
	return c.Latitude != nil && c.Longitude != nil
}
