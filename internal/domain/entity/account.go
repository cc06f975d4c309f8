// Package entity contains the core business objects of the project,
// each representing a unique, identifiable concept within the domain.
package entity

import (
	"time"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// Account is the identity record behind every login, for either role.
type Account struct {
	ID           uuid.UUID    // The Global Unique Identifier (GUID) for the account.
	Name         string       // Display name of the restaurant or NGO contact.
	Email        string       // Login identifier, unique across roles.
	Phone        string       // Contact phone number.
	PasswordHash string       // bcrypt hash of the password (or of the Google subject for federated accounts).
	Role         Role         // The single role this account acts under.
	Avatar       string       // Optional avatar URL.
	Location     *GeoLocation // Optional location, set at registration or later.
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// NeedsLocation reports whether the account still has to provide coordinates.
func (a *Account) NeedsLocation() bool {
	return a.Location == nil || !a.Location.HasCoordinates()
}

// Actor returns the role variant for this account.
func (a *Account) Actor() (Actor, error) {
	return NewActor(a.ID, a.Role)
}

// GeoLocation is a point on the map with an optional human readable address.
type GeoLocation struct {
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Address   string   `json:"address,omitempty"`
}

// HasCoordinates reports whether both latitude and longitude are known.
func (l *GeoLocation) HasCoordinates() bool {
	return l != nil && l.Latitude != nil && l.Longitude != nil
}

// Point returns the location as an orb point (longitude, latitude).
func (l *GeoLocation) Point() (orb.Point, bool) {
	if !l.HasCoordinates() {
		return orb.Point{}, false
	}

	return orb.Point{*l.Longitude, *l.Latitude}, true
}

// DistanceKm returns the great-circle distance to another location.
// ok is false when either side lacks coordinates.
func (l *GeoLocation) DistanceKm(other *GeoLocation) (km float64, ok bool) {
	from, ok := l.Point()
	if !ok {
		return 0, false
	}
	to, ok := other.Point()
	if !ok {
		return 0, false
	}

	return geo.Distance(from, to) / 1000, true
}
