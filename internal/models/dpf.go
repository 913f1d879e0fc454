package models

// DPFInputs are the operating conditions fed to the driving-profile model
type DPFInputs struct {
	AvgSpeedKMH      float64 `json:"avg_speed_kmh"`
	CityRatio        float64 `json:"city_ratio"` // 0..1
	OilAshContentPct float64 `json:"oil_ash_content_pct"`
	FuelSulfurPPM    float64 `json:"fuel_sulfur_ppm"`
	RegenIntervalKM  float64 `json:"regen_interval_km,omitempty"`
}

// DPFParams are the tunable coefficients of the relative-fill formula
type DPFParams struct {
	DPFCapacityUnits         float64 `json:"dpf_capacity_units"`
	BaseSootRatePer1000KM    float64 `json:"base_soot_rate_per_1000km"`
	AshFactorPerPctPer1000KM float64 `json:"ash_factor_per_pct_per_1000km"`
	SulfurFactorPer1000PPM   float64 `json:"sulfur_factor_per_1000ppm"`
	LowSpeedThresholdKMH     float64 `json:"low_speed_threshold_kmh"`
	LowSpeedSensitivity      float64 `json:"low_speed_sensitivity"`
	CitySensitivity          float64 `json:"city_sensitivity"`
}

// DPFState is a single point on the fill curve
type DPFState struct {
	MileageKM float64 `json:"mileage_km"`
	FillLevel float64 `json:"fill_level"` // 0..1
}
