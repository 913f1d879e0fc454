package dpf

import (
	"testing"

	"github.com/bmateuszideas/DPF-CALC/internal/errors"
	"github.com/bmateuszideas/DPF-CALC/internal/models"
)

var testInputs = models.DPFInputs{
	AvgSpeedKMH:      45,
	CityRatio:        0.5,
	OilAshContentPct: 0.8,
	FuelSulfurPPM:    10,
}

func TestPredictStateZeroMileage(t *testing.T) {
	state, err := PredictState(testInputs, DefaultParams(), 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if state.FillLevel != 0 {
		t.Fatalf("expected fill 0 at zero mileage, got %v", state.FillLevel)
	}
	if state.MileageKM != 0 {
		t.Fatalf("expected mileage 0, got %v", state.MileageKM)
	}
}

func TestPredictStateBounded(t *testing.T) {
	for _, m := range []float64{0, 10000, 100000, 1000000, 1e9} {
		state, err := PredictState(testInputs, DefaultParams(), m)
		if err != nil {
			t.Fatalf("unexpected error at %v km: %v", m, err)
		}
		if state.FillLevel < 0 || state.FillLevel >= 1 {
			t.Fatalf("fill level out of [0, 1) at %v km: %v", m, state.FillLevel)
		}
	}
}

func TestPredictStateMonotonicInMileage(t *testing.T) {
	prev := -1.0
	for _, m := range []float64{0, 50000, 100000, 200000, 400000} {
		state, err := PredictState(testInputs, DefaultParams(), m)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if state.FillLevel <= prev && m > 0 {
			t.Fatalf("fill level not increasing at %v km: %v <= %v", m, state.FillLevel, prev)
		}
		prev = state.FillLevel
	}
}

func TestPredictStateIncreasingInCityRatio(t *testing.T) {
	low := testInputs
	low.CityRatio = 0.1
	high := testInputs
	high.CityRatio = 0.9

	a, err := PredictState(low, DefaultParams(), 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	b, err := PredictState(high, DefaultParams(), 100000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.FillLevel <= a.FillLevel {
		t.Fatalf("expected more city driving to fill faster: %v <= %v", b.FillLevel, a.FillLevel)
	}
}

func TestPredictStateIncreasingInAshContent(t *testing.T) {
	low := testInputs
	low.OilAshContentPct = 0.5
	high := testInputs
	high.OilAshContentPct = 1.5

	a, _ := PredictState(low, DefaultParams(), 100000)
	b, _ := PredictState(high, DefaultParams(), 100000)
	if b.FillLevel <= a.FillLevel {
		t.Fatalf("expected higher ash oil to fill faster: %v <= %v", b.FillLevel, a.FillLevel)
	}
}

func TestPredictStateIncreasingInSulfur(t *testing.T) {
	low := testInputs
	low.FuelSulfurPPM = 10
	high := testInputs
	high.FuelSulfurPPM = 500

	a, _ := PredictState(low, DefaultParams(), 100000)
	b, _ := PredictState(high, DefaultParams(), 100000)
	if b.FillLevel <= a.FillLevel {
		t.Fatalf("expected higher sulfur fuel to fill faster: %v <= %v", b.FillLevel, a.FillLevel)
	}
}

func TestPredictStateRejectsBadCityRatio(t *testing.T) {
	for _, ratio := range []float64{-0.1, 1.1} {
		inputs := testInputs
		inputs.CityRatio = ratio
		if _, err := PredictState(inputs, DefaultParams(), 100000); !errors.IsType(err, errors.TypeInvalidInput) {
			t.Fatalf("expected invalid input error for city_ratio %v, got %v", ratio, err)
		}
	}
}

func TestPredictStateRejectsNegativeMileage(t *testing.T) {
	if _, err := PredictState(testInputs, DefaultParams(), -1); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}

func TestSimulateLifecycleSequence(t *testing.T) {
	states, err := SimulateLifecycle(testInputs, DefaultParams(), 0, 300000, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(states) != 61 {
		t.Fatalf("expected 61 points, got %d", len(states))
	}
	if states[0].MileageKM != 0 {
		t.Fatalf("expected first mileage 0, got %v", states[0].MileageKM)
	}
	if states[len(states)-1].MileageKM != 300000 {
		t.Fatalf("expected last mileage 300000, got %v", states[len(states)-1].MileageKM)
	}

	for i := 1; i < len(states); i++ {
		if states[i].FillLevel < states[i-1].FillLevel {
			t.Fatalf("fill level decreased at index %d: %v < %v", i, states[i].FillLevel, states[i-1].FillLevel)
		}
	}
}

func TestSimulateLifecycleUnevenRange(t *testing.T) {
	// End not reachable by a whole step: last point stops short of it
	states, err := SimulateLifecycle(testInputs, DefaultParams(), 0, 10500, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 3 {
		t.Fatalf("expected 3 points, got %d", len(states))
	}
	if states[2].MileageKM != 10000 {
		t.Fatalf("expected last mileage 10000, got %v", states[2].MileageKM)
	}
}

func TestSimulateLifecycleSinglePoint(t *testing.T) {
	states, err := SimulateLifecycle(testInputs, DefaultParams(), 50000, 50000, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(states) != 1 || states[0].MileageKM != 50000 {
		t.Fatalf("expected single point at 50000, got %+v", states)
	}
}

func TestSimulateLifecycleRejectsBadRange(t *testing.T) {
	if _, err := SimulateLifecycle(testInputs, DefaultParams(), 0, 100000, 0); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error for zero step, got %v", err)
	}
	if _, err := SimulateLifecycle(testInputs, DefaultParams(), 0, 100000, -5000); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error for negative step, got %v", err)
	}
	if _, err := SimulateLifecycle(testInputs, DefaultParams(), 100000, 50000, 5000); !errors.IsType(err, errors.TypeInvalidInput) {
		t.Fatalf("expected invalid input error for end < start, got %v", err)
	}
}
