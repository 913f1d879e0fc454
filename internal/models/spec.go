package models

import "time"

// OilSpec describes an engine oil from its technical data sheet
type OilSpec struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Brand          string  `json:"brand,omitempty"`
	SulfatedAshPct float64 `json:"sulfated_ash_pct"` // % by mass (SAPS)
	DensityKgPerL  float64 `json:"density_kg_per_l"` // kg/l
	PhosphorusPct  float64 `json:"phosphorus_pct,omitempty"`
	SulfurPct      float64 `json:"sulfur_pct,omitempty"`
	Notes          string  `json:"notes,omitempty"`
}

// FuelSpec describes a diesel fuel grade
type FuelSpec struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Brand         string  `json:"brand,omitempty"`
	SulfurPPM     float64 `json:"sulfur_ppm"`       // mass ppm
	DensityKgPerL float64 `json:"density_kg_per_l"` // kg/l
	Notes         string  `json:"notes,omitempty"`
}

// UsageProfile captures how a vehicle has been driven since the DPF
// was new or last cleaned
type UsageProfile struct {
	MileageKM              float64 `json:"mileage_km"`
	OilConsumptionLPer1000 float64 `json:"oil_consumption_l_per_1000km"`
	FuelConsumptionLPer100 float64 `json:"fuel_consumption_l_per_100km"`
}

// AshFillResult is the output of the chemical ash calculator.
// TotalAshG is always OilAshG + FuelAshG, and FillPercent is
// FillRatio * 100. FillRatio is not clamped: values above 1.0 mean
// the filter is past its assumed ash capacity.
type AshFillResult struct {
	OilAshG         float64 `json:"oil_ash_g"`
	FuelAshG        float64 `json:"fuel_ash_g"`
	TotalAshG       float64 `json:"total_ash_g"`
	DPFCapacityAshG float64 `json:"dpf_capacity_ash_g"`
	FillRatio       float64 `json:"fill_ratio"`
	FillPercent     float64 `json:"fill_percent"`
}

// EstimateRecord is a persisted ash fill calculation
type EstimateRecord struct {
	ID        int64         `json:"id"`
	VehicleID string        `json:"vehicle_id,omitempty"`
	OilID     string        `json:"oil_id"`
	FuelID    string        `json:"fuel_id"`
	Profile   UsageProfile  `json:"profile"`
	Result    AshFillResult `json:"result"`
	CreatedAt time.Time     `json:"created_at"`
}
