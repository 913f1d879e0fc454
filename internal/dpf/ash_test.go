package dpf

import (
	"math"
	"testing"

	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/models"
)

var (
	testOil = models.OilSpec{
		ID:             "oil-5w30",
		Name:           "5W-30 Low SAPS",
		SulfatedAshPct: 0.8,
		DensityKgPerL:  0.850,
	}
	testFuel = models.FuelSpec{
		ID:            "fuel-b7",
		Name:          "Diesel B7",
		SulfurPPM:     10,
		DensityKgPerL: 0.835,
	}
	testProfile = models.UsageProfile{
		MileageKM:              180000,
		OilConsumptionLPer1000: 0.3,
		FuelConsumptionLPer100: 7.0,
	}
)

func within(t *testing.T, got, want, tol float64) {
	t.Helper()
	if math.Abs(got-want) > tol {
		t.Fatalf("expected %v (±%v), got %v", want, tol, got)
	}
}

func TestOilAshMassReference(t *testing.T) {
	got, err := OilAshMassG(testProfile, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 54 l of oil * 0.850 kg/l * 0.8% = 367.2 g
	within(t, got, 367.2, 367.2*0.01)
}

func TestFuelAshMassReference(t *testing.T) {
	got, err := FuelAshMassG(testProfile, testFuel, 3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 12600 l of fuel * 0.835 kg/l * 10 ppm * 3.0 = 315.63 g
	within(t, got, 315.6, 315.6*0.01)
}

func TestAshFillReference(t *testing.T) {
	result, err := AshFill(testProfile, testOil, testFuel, DefaultAshFillConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	within(t, result.TotalAshG, 682.8, 682.8*0.01)
	within(t, result.FillRatio, 0.62, 0.62*0.01)
	within(t, result.FillPercent, 62.0, 62.0*0.01)

	if result.TotalAshG != result.OilAshG+result.FuelAshG {
		t.Fatalf("total %v != oil %v + fuel %v", result.TotalAshG, result.OilAshG, result.FuelAshG)
	}
	if result.FillPercent != result.FillRatio*100 {
		t.Fatalf("percent %v != ratio %v * 100", result.FillPercent, result.FillRatio)
	}
	if result.DPFCapacityAshG != 1100.0 {
		t.Fatalf("expected default capacity 1100, got %v", result.DPFCapacityAshG)
	}
}

func TestOilAshLinearInMileage(t *testing.T) {
	base, err := OilAshMassG(testProfile, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	doubled := testProfile
	doubled.MileageKM *= 2
	got, err := OilAshMassG(doubled, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	within(t, got, 2*base, 1e-9)
}

func TestOilAshLinearInConsumption(t *testing.T) {
	base, err := OilAshMassG(testProfile, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	tripled := testProfile
	tripled.OilConsumptionLPer1000 *= 3
	got, err := OilAshMassG(tripled, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	within(t, got, 3*base, 1e-9)
}

func TestZeroMileageYieldsZeroAsh(t *testing.T) {
	profile := models.UsageProfile{OilConsumptionLPer1000: 0.3, FuelConsumptionLPer100: 7.0}

	oilAsh, err := OilAshMassG(profile, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oilAsh != 0 {
		t.Fatalf("expected 0 oil ash at zero mileage, got %v", oilAsh)
	}

	fuelAsh, err := FuelAshMassG(profile, testFuel, 3.0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fuelAsh != 0 {
		t.Fatalf("expected 0 fuel ash at zero mileage, got %v", fuelAsh)
	}
}

func TestZeroConsumptionYieldsZeroAsh(t *testing.T) {
	profile := testProfile
	profile.OilConsumptionLPer1000 = 0

	oilAsh, err := OilAshMassG(profile, testOil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if oilAsh != 0 {
		t.Fatalf("expected 0 oil ash with zero consumption, got %v", oilAsh)
	}
}

func TestNegativeMileageRejected(t *testing.T) {
	profile := testProfile
	profile.MileageKM = -1

	if _, err := OilAshMassG(profile, testOil); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if _, err := FuelAshMassG(profile, testFuel, 3.0); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestNonPositiveSulfurFactorRejected(t *testing.T) {
	if _, err := FuelAshMassG(testProfile, testFuel, 0); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
	if _, err := FuelAshMassG(testProfile, testFuel, -3); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestNonPositiveCapacityRejected(t *testing.T) {
	cfg := DefaultAshFillConfig()
	cfg.DPFCapacityAshG = 0
	if _, err := AshFill(testProfile, testOil, testFuel, cfg); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestFillRatioNotClamped(t *testing.T) {
	profile := testProfile
	profile.MileageKM = 500000

	cfg := DefaultAshFillConfig()
	cfg.DPFCapacityAshG = 120.0

	result, err := AshFill(profile, testOil, testFuel, cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.FillRatio <= 1.0 {
		t.Fatalf("expected ratio above 1.0 for a saturated filter, got %v", result.FillRatio)
	}
}
