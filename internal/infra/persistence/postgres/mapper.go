package postgres

import (
	"foodbridge/internal/domain/entity"
)

// toGeoLocation rebuilds a location from its flattened columns. It returns nil when nothing is stored.
func toGeoLocation(lat, lng *float64, address string) *entity.GeoLocation {
	if lat == nil && lng == nil && address == "" {
		return nil
	}

	return &entity.GeoLocation{
		Latitude:  lat,
		Longitude: lng,
		Address:   address,
	}
}

// locationColumns flattens a location into column updates. A nil location leaves the columns untouched.
func locationColumns(loc *entity.GeoLocation, updates map[string]any) {
	if loc == nil {
		return
	}
	updates["latitude"] = loc.Latitude
	updates["longitude"] = loc.Longitude
	updates["address"] = loc.Address
}

func splitLocation(loc *entity.GeoLocation) (lat, lng *float64, address string) {
	if loc == nil {
		return nil, nil, ""
	}

	return loc.Latitude, loc.Longitude, loc.Address
}
