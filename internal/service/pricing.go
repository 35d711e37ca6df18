package service

import (
	"strings"

	"corpcab/internal/domain"
)

// fareTable maps vehicle type to the charge amount in minor currency units.
// Pricing is table-driven policy keyed by vehicle type only; it is not
// derived from distance or time.
var fareTable = map[domain.VehicleType]int64{
	domain.VehicleSedan:  2000,
	domain.VehicleSUV:    3000,
	domain.VehicleLuxury: 5000,
	domain.VehicleVan:    4000,
}

// DefaultFareMinor is charged for unrecognized vehicle types.
const DefaultFareMinor int64 = 2000

// FareMinorUnits returns the deterministic charge amount for a vehicle type.
func FareMinorUnits(vehicleType domain.VehicleType) int64 {
	normalized := domain.VehicleType(strings.ToLower(string(vehicleType)))
	if fare, ok := fareTable[normalized]; ok {
		return fare
	}
	return DefaultFareMinor
}

// ValidateVehicleType validates a vehicle type string for booking creation.
func ValidateVehicleType(vehicleType string) (domain.VehicleType, error) {
	switch v := domain.VehicleType(strings.ToLower(vehicleType)); v {
	case domain.VehicleSedan, domain.VehicleSUV, domain.VehicleLuxury, domain.VehicleVan:
		return v, nil
	default:
		return "", ErrInvalidVehicleType
	}
}
