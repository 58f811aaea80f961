package models

// DoorState is the last reported position of the garage door.
type DoorState int

const (
	DoorUnknown DoorState = iota
	DoorOpen
	DoorClosed
	DoorMoving
)

// Wire values carried on the door-state topic.
const (
	DoorOpenPayload    = "Open"
	DoorClosedPayload  = "Closed"
	DoorMovingPayload  = "Moving"
	DoorUnknownPayload = "Unknown"
)

// ParseDoorState maps a door-state payload to a DoorState. The second return
// value is false when the payload is not one of the four known literals, in
// which case DoorUnknown is returned.
func ParseDoorState(payload string) (DoorState, bool) {
	switch payload {
	case DoorOpenPayload:
		return DoorOpen, true
	case DoorClosedPayload:
		return DoorClosed, true
	case DoorMovingPayload:
		return DoorMoving, true
	case DoorUnknownPayload:
		return DoorUnknown, true
	default:
		return DoorUnknown, false
	}
}

func (s DoorState) String() string {
	switch s {
	case DoorOpen:
		return DoorOpenPayload
	case DoorClosed:
		return DoorClosedPayload
	case DoorMoving:
		return DoorMovingPayload
	default:
		return DoorUnknownPayload
	}
}
