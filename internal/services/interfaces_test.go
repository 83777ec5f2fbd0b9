package services

import (
	"testing"
)

func TestServiceState_String(t *testing.T) {
	tests := []struct {
		state    ServiceState
		expected string
	}{
		{StateStopped, "Stopped"},
		{StateStarting, "Starting"},
		{StateError, "Error"},
		{StateRunning, "Running"},
		{StateStopping, "Stopping"},
		{ServiceState(9), "ServiceState(9)"},
	}

	for _, test := range tests {
		result := test.state.String()
		if result != test.expected {
			t.Errorf("ServiceState(%d).String() = %s, expected %s", int(test.state), result, test.expected)
		}
	}
}

func TestServiceStateValues(t *testing.T) {
	values := map[ServiceState]int{
		StateStopped:  0,
		StateStarting: 1,
		StateError:    2,
		StateRunning:  3,
		StateStopping: 4,
	}

	for state, expected := range values {
		if int(state) != expected {
			t.Errorf("Expected %s to have value %d, got %d", state, expected, int(state))
		}
	}
}

func TestServiceState_IsActive(t *testing.T) {
	if StateStopped.IsActive() {
		t.Error("Stopped should not be active")
	}
	for _, s := range []ServiceState{StateStarting, StateRunning, StateError, StateStopping} {
		if !s.IsActive() {
			t.Errorf("%s should be active", s)
		}
	}
}

func TestBaseServiceImplementsService(t *testing.T) {
	var _ Service = NewBaseService("compile-check")
	var _ Named = NewBaseService("compile-check")
	var _ ErrorReporter = NewBaseService("compile-check")
}
