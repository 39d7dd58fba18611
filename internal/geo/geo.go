// Package geo contains the pure fare-geometry helpers: coordinate
// normalization, great-circle distance and distance-based fare.
package geo

import (
	"encoding/json"
	"errors"
	"math"
)

const earthRadiusKm = 6371.0

var ErrInvalidCoordinate = errors.New("invalid coordinate")

// Coordinate is the canonical decimal-degrees pair. Request payloads may
// arrive as {latitude,longitude} or {lat,lng}; both are normalized here at
// the boundary so nothing downstream has to care.
type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

func (c Coordinate) Validate() error {
	if math.IsNaN(c.Latitude) || math.IsInf(c.Latitude, 0) ||
		math.IsNaN(c.Longitude) || math.IsInf(c.Longitude, 0) {
		return ErrInvalidCoordinate
	}
	if math.Abs(c.Latitude) > 90 || math.Abs(c.Longitude) > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// CoordinateInput accepts both coordinate shapes used by clients.
type CoordinateInput struct {
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Lat       *float64 `json:"lat"`
	Lng       *float64 `json:"lng"`
}

// Normalize converts the dual-shape input into a canonical Coordinate.
// Missing fields are rejected, long-form names win when both are present.
func (in CoordinateInput) Normalize() (Coordinate, error) {
	lat := in.Latitude
	if lat == nil {
		lat = in.Lat
	}
	lng := in.Longitude
	if lng == nil {
		lng = in.Lng
	}
	if lat == nil || lng == nil {
		return Coordinate{}, ErrInvalidCoordinate
	}
	c := Coordinate{Latitude: *lat, Longitude: *lng}
	if err := c.Validate(); err != nil {
		return Coordinate{}, err
	}
	return c, nil
}

// UnmarshalJSON lets handlers bind a CoordinateInput from either shape
// without a separate struct per client.
func (in *CoordinateInput) UnmarshalJSON(data []byte) error {
	type alias CoordinateInput
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}
	*in = CoordinateInput(a)
	return nil
}

// DistanceKm returns the haversine great-circle distance between two points,
// rounded to two decimal places.
func DistanceKm(a, b Coordinate) float64 {
	dLat := degreesToRadians(b.Latitude - a.Latitude)
	dLng := degreesToRadians(b.Longitude - a.Longitude)

	rLat1 := degreesToRadians(a.Latitude)
	rLat2 := degreesToRadians(b.Latitude)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rLat1)*math.Cos(rLat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return math.Round(earthRadiusKm*c*100) / 100
}

func degreesToRadians(deg float64) float64 {
	return deg * math.Pi / 180.0
}

// FareCalc computes a trip fare from a distance. Rates are in minor currency
// units per kilometre.
type FareCalc struct {
	PerKmCents   int64
	MinimumCents int64
}

func NewFareCalc(perKmCents, minimumCents int64) FareCalc {
	return FareCalc{PerKmCents: perKmCents, MinimumCents: minimumCents}
}

// Fare is round(max(distance * rate, minimum)).
func (f FareCalc) Fare(distanceKm float64) int64 {
	fare := distanceKm * float64(f.PerKmCents)
	if fare < float64(f.MinimumCents) {
		return f.MinimumCents
	}
	return int64(math.Round(fare))
}
