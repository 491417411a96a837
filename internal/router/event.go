package router

import (
	"fmt"
)

// EventType names a UI action or an external trigger.
type EventType string

const (
	EventRegistered             EventType = "registered"
	EventSwitchToLogin          EventType = "switchToLogin"
	EventSwitchToRegister       EventType = "switchToRegister"
	EventSwitchToDoctorRegister EventType = "switchToDoctorRegister"
	EventLoginSucceeded         EventType = "loginSucceeded"
	EventBack                   EventType = "back"
	EventBookAppointment        EventType = "bookAppointment"
	EventViewPrescriptions      EventType = "viewPrescriptions"
	EventManageAppointments     EventType = "manageAppointments"
	EventWritePrescription      EventType = "writePrescription"
	EventStartVideoCall         EventType = "startVideoCall"
	EventLogout                 EventType = "logout"
	EventDoctorSelected         EventType = "doctorSelected"
	EventPatientSelected        EventType = "patientSelected"
	EventBooked                 EventType = "booked"
	EventPrescribed             EventType = "prescribed"
	EventLeave                  EventType = "leave"
	EventIncomingCall           EventType = "incomingCall"
)

var eventTypes = map[EventType]struct{}{
	EventRegistered:             {},
	EventSwitchToLogin:          {},
	EventSwitchToRegister:       {},
	EventSwitchToDoctorRegister: {},
	EventLoginSucceeded:         {},
	EventBack:                   {},
	EventBookAppointment:        {},
	EventViewPrescriptions:      {},
	EventManageAppointments:     {},
	EventWritePrescription:      {},
	EventStartVideoCall:         {},
	EventLogout:                 {},
	EventDoctorSelected:         {},
	EventPatientSelected:        {},
	EventBooked:                 {},
	EventPrescribed:             {},
	EventLeave:                  {},
	EventIncomingCall:           {},
}

// ParseEventType validates an event name coming from a client.
func ParseEventType(s string) (EventType, error) {
	t := EventType(s)
	if _, ok := eventTypes[t]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEvent, s)
	}
	return t, nil
}

// Event is one input to the router. ID and Name carry the user for
// loginSucceeded and the counterpart for doctorSelected/patientSelected;
// Channel carries the call channel for incomingCall.
type Event struct {
	Type    EventType `json:"type"`
	ID      string    `json:"id,omitempty"`
	Name    string    `json:"name,omitempty"`
	Channel string    `json:"channel,omitempty"`
}
