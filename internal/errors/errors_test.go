package errors

import (
	stderrors "errors"
	"testing"
)

func TestIsType(t *testing.T) {
	err := InvalidInput("mileage_km must be >= 0, got %g", -1.0)
	if !IsType(err, TypeInvalidInput) {
		t.Fatalf("expected invalid input type, got %v", err)
	}
	if IsType(err, TypeDataFormat) {
		t.Fatal("invalid input error should not match data format type")
	}
	if IsType(stderrors.New("plain"), TypeInvalidInput) {
		t.Fatal("plain error should not match any type")
	}
}

func TestWrapPreservesCause(t *testing.T) {
	cause := stderrors.New("disk full")
	err := Storage("insert estimate", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause to be reachable via errors.Is")
	}
	if err.Error() == "" || err.Unwrap() != cause {
		t.Fatalf("unexpected error: %v", err)
	}
}
