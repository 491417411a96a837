package router

import (
	"errors"
	"fmt"

	"medihelp-server/internal/models"
)

var (
	// ErrUnknownEvent is returned for event names the router does not define.
	ErrUnknownEvent = errors.New("unknown event")
	// ErrEventNotAllowed is returned for events the current screen does not expose.
	ErrEventNotAllowed = errors.New("event not allowed on screen")
	// ErrMissingIdentifier is returned when an event lacks an identifier its
	// target screen requires.
	ErrMissingIdentifier = errors.New("missing identifier")
)

// DefaultCallerName is shown to the callee when the caller has no display name.
const DefaultCallerName = "Patient"

// Session is the navigation state of one running client.
type Session struct {
	UserID       string
	DisplayName  string
	SelectedID   string
	SelectedName string
	Screen       Screen
}

// EffectKind tags the asynchronous work a transition asks for.
type EffectKind int

const (
	EffectNone EffectKind = iota
	EffectResolveRole
	EffectStartCall
)

// Effect is asynchronous work requested by a transition. The screen change
// it leads to is applied once the work completes.
type Effect struct {
	Kind        EffectKind
	UserID      string
	Channel     string
	RecipientID string
	CallerName  string
}

// CallChannel builds the channel shared by both call participants.
func CallChannel(idA, idB string) string {
	return fmt.Sprintf("call_%s_%s", idA, idB)
}

// Next applies ev to s. On error s is returned unchanged and no effect is
// requested.
func Next(s Session, ev Event) (Session, Effect, error) {
	if _, ok := eventTypes[ev.Type]; !ok {
		return s, Effect{}, fmt.Errorf("%w: %q", ErrUnknownEvent, ev.Type)
	}

	if ev.Type == EventIncomingCall {
		if ev.Channel == "" {
			return s, Effect{}, missing(ev, "channel")
		}
		return moveTo(s, VideoCall(ev.Channel))
	}

	switch s.Screen.Kind {
	case KindRegister, KindDoctorRegister:
		switch ev.Type {
		case EventRegistered, EventSwitchToLogin, EventBack:
			return moveTo(s, Login())
		}

	case KindLogin:
		switch ev.Type {
		case EventSwitchToRegister:
			return moveTo(s, Register())
		case EventSwitchToDoctorRegister:
			return moveTo(s, DoctorRegister())
		case EventLoginSucceeded:
			return loginSucceeded(s, ev)
		}

	case KindMain:
		if s.Screen.IsDoctorHome() {
			return doctorHome(s, ev)
		}
		return patientHome(s, ev)

	case KindSelectDoctor:
		switch ev.Type {
		case EventDoctorSelected:
			if ev.ID == "" {
				return s, Effect{}, missing(ev, "doctor id")
			}
			s.SelectedID, s.SelectedName = ev.ID, ev.Name
			return moveTo(s, Main(models.RolePatient))
		case EventBack:
			return moveTo(s, Main(models.RolePatient))
		}

	case KindSelectPatient:
		switch ev.Type {
		case EventPatientSelected:
			if ev.ID == "" {
				return s, Effect{}, missing(ev, "patient id")
			}
			s.SelectedID, s.SelectedName = ev.ID, ev.Name
			return moveTo(s, WritePrescription(ev.ID))
		case EventBack:
			return moveTo(s, Main(models.RoleDoctor))
		}

	case KindBookAppointment:
		switch ev.Type {
		case EventBooked:
			return moveTo(s, Main(models.RolePatient))
		case EventBack:
			return moveTo(s, SelectDoctor())
		}

	case KindViewPrescriptions:
		if ev.Type == EventBack {
			return moveTo(s, Main(models.RolePatient))
		}

	case KindManageAppointments:
		if ev.Type == EventBack {
			return moveTo(s, Main(models.RoleDoctor))
		}

	case KindWritePrescription:
		switch ev.Type {
		case EventPrescribed:
			return moveTo(s, Main(models.RoleDoctor))
		case EventBack:
			return moveTo(s, SelectPatient())
		}

	case KindVideoCall:
		if ev.Type == EventLeave {
			return moveTo(s, Main(models.RolePatient))
		}

	default:
		return s, Effect{}, fmt.Errorf("unhandled screen %s", s.Screen)
	}

	return s, Effect{}, fmt.Errorf("%w: %s on %s", ErrEventNotAllowed, ev.Type, s.Screen)
}

func loginSucceeded(s Session, ev Event) (Session, Effect, error) {
	if ev.ID == "" {
		return s, Effect{}, missing(ev, "user id")
	}
	s.UserID, s.DisplayName = ev.ID, ev.Name
	return s, Effect{Kind: EffectResolveRole, UserID: ev.ID}, nil
}

func patientHome(s Session, ev Event) (Session, Effect, error) {
	switch ev.Type {
	case EventBookAppointment:
		return moveTo(s, SelectDoctor())
	case EventViewPrescriptions:
		return moveTo(s, ViewPrescriptions())
	case EventStartVideoCall:
		if s.SelectedID == "" || s.UserID == "" {
			return s, Effect{}, missing(ev, "selected doctor and user")
		}
		return s, Effect{
			Kind:        EffectStartCall,
			Channel:     CallChannel(s.SelectedID, s.UserID),
			RecipientID: s.SelectedID,
			CallerName:  callerName(s),
		}, nil
	case EventLogout:
		return logout()
	}
	return s, Effect{}, fmt.Errorf("%w: %s on %s", ErrEventNotAllowed, ev.Type, s.Screen)
}

func doctorHome(s Session, ev Event) (Session, Effect, error) {
	switch ev.Type {
	case EventManageAppointments:
		return moveTo(s, ManageAppointments())
	case EventWritePrescription:
		return moveTo(s, SelectPatient())
	case EventStartVideoCall:
		doctorID, patientID := s.UserID, s.SelectedID
		if doctorID == "" {
			doctorID = "doctor"
		}
		if patientID == "" {
			patientID = "patient"
		}
		return s, Effect{
			Kind:        EffectStartCall,
			Channel:     CallChannel(doctorID, patientID),
			RecipientID: s.SelectedID,
			CallerName:  callerName(s),
		}, nil
	case EventLogout:
		return logout()
	}
	return s, Effect{}, fmt.Errorf("%w: %s on %s", ErrEventNotAllowed, ev.Type, s.Screen)
}

func logout() (Session, Effect, error) {
	return moveTo(Session{}, Login())
}

func callerName(s Session) string {
	if s.DisplayName == "" {
		return DefaultCallerName
	}
	return s.DisplayName
}

func moveTo(s Session, screen Screen) (Session, Effect, error) {
	s.Screen = screen
	return s, Effect{}, nil
}

func missing(ev Event, what string) error {
	return fmt.Errorf("%w: %s requires %s", ErrMissingIdentifier, ev.Type, what)
}
