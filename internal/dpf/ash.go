// Package dpf implements the two DPF ash accumulation models: a
// chemistry-based ash mass calculator fed by oil/fuel specifications,
// and a driving-profile relative-fill model. The two models are
// independent and never call each other.
package dpf

import (
	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/models"
)

// AshFillConfig holds the tunables of the chemical ash calculator
type AshFillConfig struct {
	// DPFCapacityAshG is the assumed ash capacity of the filter in grams
	DPFCapacityAshG float64 `json:"dpf_capacity_ash_g"`

	// SulfurToAshFactor converts grams of fuel sulfur to grams of
	// sulfate ash (~3.0 from sulfate stoichiometry)
	SulfurToAshFactor float64 `json:"sulfur_to_ash_factor"`
}

// DefaultAshFillConfig returns the standard tunables
func DefaultAshFillConfig() AshFillConfig {
	return AshFillConfig{
		DPFCapacityAshG:   1100.0,
		SulfurToAshFactor: 3.0,
	}
}

// OilAshMassG computes the ash mass in grams left behind by burned
// engine oil over the profile's mileage: oil volume consumed, converted
// to mass via density, times the sulfated ash fraction.
func OilAshMassG(profile models.UsageProfile, oil models.OilSpec) (float64, error) {
	if profile.MileageKM < 0 {
		return 0, errors.InvalidInput("mileage_km must be >= 0, got %g", profile.MileageKM)
	}
	if profile.OilConsumptionLPer1000 < 0 {
		return 0, errors.InvalidInput("oil_consumption_l_per_1000km must be >= 0, got %g", profile.OilConsumptionLPer1000)
	}
	if oil.DensityKgPerL < 0 {
		return 0, errors.InvalidInput("oil density_kg_per_l must be >= 0, got %g", oil.DensityKgPerL)
	}
	if oil.SulfatedAshPct < 0 {
		return 0, errors.InvalidInput("sulfated_ash_pct must be >= 0, got %g", oil.SulfatedAshPct)
	}

	oilLiters := (profile.MileageKM / 1000.0) * profile.OilConsumptionLPer1000
	oilMassKg := oilLiters * oil.DensityKgPerL
	ashMassKg := oilMassKg * (oil.SulfatedAshPct / 100.0)
	return ashMassKg * 1000.0, nil
}

// FuelAshMassG computes the approximate ash mass in grams formed from
// fuel sulfur over the profile's mileage. 1 ppm of sulfur is 1e-6 by
// mass; each gram of sulfur yields sulfurToAshFactor grams of sulfate ash.
func FuelAshMassG(profile models.UsageProfile, fuel models.FuelSpec, sulfurToAshFactor float64) (float64, error) {
	if profile.MileageKM < 0 {
		return 0, errors.InvalidInput("mileage_km must be >= 0, got %g", profile.MileageKM)
	}
	if profile.FuelConsumptionLPer100 < 0 {
		return 0, errors.InvalidInput("fuel_consumption_l_per_100km must be >= 0, got %g", profile.FuelConsumptionLPer100)
	}
	if fuel.DensityKgPerL < 0 {
		return 0, errors.InvalidInput("fuel density_kg_per_l must be >= 0, got %g", fuel.DensityKgPerL)
	}
	if fuel.SulfurPPM < 0 {
		return 0, errors.InvalidInput("sulfur_ppm must be >= 0, got %g", fuel.SulfurPPM)
	}
	if sulfurToAshFactor <= 0 {
		return 0, errors.InvalidInput("sulfur_to_ash_factor must be > 0, got %g", sulfurToAshFactor)
	}

	fuelLiters := (profile.MileageKM / 100.0) * profile.FuelConsumptionLPer100
	fuelMassKg := fuelLiters * fuel.DensityKgPerL
	sulfurMassKg := fuelMassKg * (fuel.SulfurPPM * 1e-6)
	ashMassKg := sulfurMassKg * sulfurToAshFactor
	return ashMassKg * 1000.0, nil
}

// AshFill combines the oil and fuel ash contributions into a fill estimate
// against the configured filter capacity. The ratio is deliberately not
// clamped: values above 1.0 mean the filter is past its assumed capacity
// and overdue for cleaning.
func AshFill(profile models.UsageProfile, oil models.OilSpec, fuel models.FuelSpec, cfg AshFillConfig) (models.AshFillResult, error) {
	if cfg.DPFCapacityAshG <= 0 {
		return models.AshFillResult{}, errors.InvalidInput("dpf_capacity_ash_g must be > 0, got %g", cfg.DPFCapacityAshG)
	}

	oilAshG, err := OilAshMassG(profile, oil)
	if err != nil {
		return models.AshFillResult{}, err
	}
	fuelAshG, err := FuelAshMassG(profile, fuel, cfg.SulfurToAshFactor)
	if err != nil {
		return models.AshFillResult{}, err
	}

	totalAshG := oilAshG + fuelAshG
	fillRatio := totalAshG / cfg.DPFCapacityAshG

	return models.AshFillResult{
		OilAshG:         oilAshG,
		FuelAshG:        fuelAshG,
		TotalAshG:       totalAshG,
		DPFCapacityAshG: cfg.DPFCapacityAshG,
		FillRatio:       fillRatio,
		FillPercent:     fillRatio * 100.0,
	}, nil
}
