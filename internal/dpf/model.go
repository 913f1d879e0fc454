package dpf

import (
	"math"

	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/models"
)

// DefaultParams returns the standard coefficients of the relative-fill
// formula. These are illustrative operating assumptions, not calibrated
// against a particular engine.
func DefaultParams() models.DPFParams {
	return models.DPFParams{
		DPFCapacityUnits:         100.0,
		BaseSootRatePer1000KM:    1.0,
		AshFactorPerPctPer1000KM: 0.1,
		SulfurFactorPer1000PPM:   1.0,
		LowSpeedThresholdKMH:     60.0,
		LowSpeedSensitivity:      1.0,
		CitySensitivity:          1.5,
	}
}

// PredictState computes the relative DPF fill level at a single mileage
// point. The accumulation rate per 1000 km is the base soot rate scaled
// by city-driving, low-speed and fuel-sulfur factors, plus an ash rate
// proportional to the oil's ash content. The accumulated load is mapped
// to a fill level through 1 - exp(-load/capacity), which keeps the output
// in [0, 1) while remaining strictly increasing in mileage, city ratio,
// ash content and sulfur ppm.
func PredictState(inputs models.DPFInputs, params models.DPFParams, mileageKM float64) (models.DPFState, error) {
	if mileageKM < 0 {
		return models.DPFState{}, errors.InvalidInput("mileage_km must be >= 0, got %g", mileageKM)
	}
	if inputs.CityRatio < 0 || inputs.CityRatio > 1 {
		return models.DPFState{}, errors.InvalidInput("city_ratio must be in [0, 1], got %g", inputs.CityRatio)
	}
	if params.DPFCapacityUnits <= 0 {
		return models.DPFState{}, errors.InvalidInput("dpf_capacity_units must be > 0, got %g", params.DPFCapacityUnits)
	}

	kmThousands := mileageKM / 1000.0

	cityFactor := 1.0 + params.CitySensitivity*inputs.CityRatio

	lowSpeedDelta := math.Max(0, params.LowSpeedThresholdKMH-inputs.AvgSpeedKMH)
	speedFactor := 1.0
	if params.LowSpeedThresholdKMH > 0 {
		speedFactor = 1.0 + params.LowSpeedSensitivity*(lowSpeedDelta/params.LowSpeedThresholdKMH)
	}

	sulfurFactor := 1.0 + params.SulfurFactorPer1000PPM*(inputs.FuelSulfurPPM/1000.0)

	sootRate := params.BaseSootRatePer1000KM * cityFactor * speedFactor * sulfurFactor
	ashRate := params.AshFactorPerPctPer1000KM * inputs.OilAshContentPct

	load := (sootRate + ashRate) * kmThousands
	fill := 1.0 - math.Exp(-load/params.DPFCapacityUnits)

	return models.DPFState{MileageKM: mileageKM, FillLevel: fill}, nil
}

// SimulateLifecycle evaluates the fill curve from startKM to endKM
// inclusive at stepKM intervals. The sequence has
// floor((endKM-startKM)/stepKM)+1 points; the last point is the largest
// reachable step at or below endKM.
func SimulateLifecycle(inputs models.DPFInputs, params models.DPFParams, startKM, endKM, stepKM float64) ([]models.DPFState, error) {
	if stepKM <= 0 {
		return nil, errors.InvalidInput("step_km must be > 0, got %g", stepKM)
	}
	if endKM < startKM {
		return nil, errors.InvalidInput("mileage_end (%g) must be >= mileage_start (%g)", endKM, startKM)
	}

	steps := int(math.Floor((endKM-startKM)/stepKM)) + 1
	states := make([]models.DPFState, 0, steps)

	for i := 0; i < steps; i++ {
		m := startKM + float64(i)*stepKM
		state, err := PredictState(inputs, params, m)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}

	return states, nil
}
