package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseDoorState(t *testing.T) {
	tests := []struct {
		payload string
		want    DoorState
		valid   bool
	}{
		{"Open", DoorOpen, true},
		{"Closed", DoorClosed, true},
		{"Moving", DoorMoving, true},
		{"Unknown", DoorUnknown, true},
		{"Sideways", DoorUnknown, false},
		{"open", DoorUnknown, false},
		{"", DoorUnknown, false},
	}

	for _, tt := range tests {
		t.Run(tt.payload, func(t *testing.T) {
			got, ok := ParseDoorState(tt.payload)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.valid, ok)
		})
	}
}

func TestDoorState_StringRoundTrips(t *testing.T) {
	for _, s := range []DoorState{DoorOpen, DoorClosed, DoorMoving, DoorUnknown} {
		got, ok := ParseDoorState(s.String())
		assert.True(t, ok)
		assert.Equal(t, s, got)
	}
}

func TestConnectionState_String(t *testing.T) {
	assert.Equal(t, "connected", StateConnected.String())
	assert.Equal(t, "reconnecting", StateReconnecting.String())
	assert.Equal(t, "terminated", StateTerminated.String())
	assert.Equal(t, "unknown", ConnectionState(42).String())
}
