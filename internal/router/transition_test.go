package router

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medihelp-server/internal/models"
)

func patientSession(screen Screen) Session {
	return Session{UserID: "p-1", DisplayName: "Pat", Screen: screen}
}

func doctorSession(screen Screen) Session {
	return Session{UserID: "d-1", DisplayName: "Dr. Lee", Screen: screen}
}

func TestNext_TransitionTable(t *testing.T) {
	tests := []struct {
		name  string
		from  Session
		event Event
		want  Screen
	}{
		{"register success", Session{Screen: Register()}, Event{Type: EventRegistered}, Login()},
		{"register switch to login", Session{Screen: Register()}, Event{Type: EventSwitchToLogin}, Login()},
		{"register back", Session{Screen: Register()}, Event{Type: EventBack}, Login()},
		{"doctor register success", Session{Screen: DoctorRegister()}, Event{Type: EventRegistered}, Login()},
		{"doctor register switch to login", Session{Screen: DoctorRegister()}, Event{Type: EventSwitchToLogin}, Login()},
		{"doctor register back", Session{Screen: DoctorRegister()}, Event{Type: EventBack}, Login()},
		{"login to register", Session{Screen: Login()}, Event{Type: EventSwitchToRegister}, Register()},
		{"login to doctor register", Session{Screen: Login()}, Event{Type: EventSwitchToDoctorRegister}, DoctorRegister()},
		{"patient book appointment", patientSession(Main(models.RolePatient)), Event{Type: EventBookAppointment}, SelectDoctor()},
		{"patient view prescriptions", patientSession(Main(models.RolePatient)), Event{Type: EventViewPrescriptions}, ViewPrescriptions()},
		{"patient logout", patientSession(Main(models.RolePatient)), Event{Type: EventLogout}, Login()},
		{"doctor manage appointments", doctorSession(Main(models.RoleDoctor)), Event{Type: EventManageAppointments}, ManageAppointments()},
		{"doctor write prescription", doctorSession(Main(models.RoleDoctor)), Event{Type: EventWritePrescription}, SelectPatient()},
		{"doctor logout", doctorSession(Main(models.RoleDoctor)), Event{Type: EventLogout}, Login()},
		{"select doctor chosen", patientSession(SelectDoctor()), Event{Type: EventDoctorSelected, ID: "d-9", Name: "Dr. Q"}, Main(models.RolePatient)},
		{"select doctor back", patientSession(SelectDoctor()), Event{Type: EventBack}, Main(models.RolePatient)},
		{"select patient chosen", doctorSession(SelectPatient()), Event{Type: EventPatientSelected, ID: "p-5"}, WritePrescription("p-5")},
		{"select patient back", doctorSession(SelectPatient()), Event{Type: EventBack}, Main(models.RoleDoctor)},
		{"book appointment booked", patientSession(BookAppointment("d-9")), Event{Type: EventBooked}, Main(models.RolePatient)},
		{"book appointment back", patientSession(BookAppointment("d-9")), Event{Type: EventBack}, SelectDoctor()},
		{"view prescriptions back", patientSession(ViewPrescriptions()), Event{Type: EventBack}, Main(models.RolePatient)},
		{"manage appointments back", doctorSession(ManageAppointments()), Event{Type: EventBack}, Main(models.RoleDoctor)},
		{"write prescription done", doctorSession(WritePrescription("p-5")), Event{Type: EventPrescribed}, Main(models.RoleDoctor)},
		{"write prescription back", doctorSession(WritePrescription("p-5")), Event{Type: EventBack}, SelectPatient()},
		{"video call leave", patientSession(VideoCall("call_1_2")), Event{Type: EventLeave}, Main(models.RolePatient)},
		{"incoming call on dashboard", doctorSession(Main(models.RoleDoctor)), Event{Type: EventIncomingCall, Channel: "call_d-1_p-1"}, VideoCall("call_d-1_p-1")},
		{"incoming call on login", Session{Screen: Login()}, Event{Type: EventIncomingCall, Channel: "call_42_7"}, VideoCall("call_42_7")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect, err := Next(tt.from, tt.event)

			require.NoError(t, err)
			assert.Equal(t, tt.want, next.Screen)
			assert.Equal(t, EffectNone, effect.Kind)
		})
	}
}

func TestNext_UndefinedEventsRejected(t *testing.T) {
	tests := []struct {
		name  string
		from  Screen
		event EventType
	}{
		{"login has no back", Login(), EventBack},
		{"register cannot logout", Register(), EventLogout},
		{"patient cannot manage appointments", Main(models.RolePatient), EventManageAppointments},
		{"doctor cannot book", Main(models.RoleDoctor), EventBookAppointment},
		{"video call has no back", VideoCall("c"), EventBack},
		{"view prescriptions cannot book", ViewPrescriptions(), EventBooked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := patientSession(tt.from)
			next, effect, err := Next(from, Event{Type: tt.event})

			assert.ErrorIs(t, err, ErrEventNotAllowed)
			assert.Equal(t, from, next)
			assert.Equal(t, EffectNone, effect.Kind)
		})
	}
}

func TestNext_EveryScreenHandled(t *testing.T) {
	for _, k := range Kinds {
		_, _, err := Next(Session{Screen: Screen{Kind: k, Role: models.RolePatient}}, Event{Type: EventLogout})
		if err != nil {
			assert.ErrorIs(t, err, ErrEventNotAllowed, "screen %s", k)
		}
	}
}

func TestNext_UnknownEvent(t *testing.T) {
	_, _, err := Next(Session{Screen: Login()}, Event{Type: "dance"})
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestNext_DoctorSelectedRecordsSelection(t *testing.T) {
	next, _, err := Next(patientSession(SelectDoctor()), Event{Type: EventDoctorSelected, ID: "d-9", Name: "Dr. Q"})

	require.NoError(t, err)
	assert.Equal(t, "d-9", next.SelectedID)
	assert.Equal(t, "Dr. Q", next.SelectedName)
	assert.Equal(t, "p-1", next.UserID)
}

func TestNext_SelectionRequiresID(t *testing.T) {
	_, _, err := Next(patientSession(SelectDoctor()), Event{Type: EventDoctorSelected})
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, _, err = Next(doctorSession(SelectPatient()), Event{Type: EventPatientSelected})
	assert.ErrorIs(t, err, ErrMissingIdentifier)

	_, _, err = Next(Session{Screen: Login()}, Event{Type: EventIncomingCall})
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestNext_LoginSucceededResolvesRole(t *testing.T) {
	next, effect, err := Next(Session{Screen: Login()}, Event{Type: EventLoginSucceeded, ID: "u-1", Name: "Ann"})

	require.NoError(t, err)
	assert.Equal(t, Login(), next.Screen, "stays on login until the role resolves")
	assert.Equal(t, "u-1", next.UserID)
	assert.Equal(t, "Ann", next.DisplayName)
	assert.Equal(t, Effect{Kind: EffectResolveRole, UserID: "u-1"}, effect)

	again, effect, err := Next(next, Event{Type: EventLoginSucceeded, ID: "u-1", Name: "Ann"})
	require.NoError(t, err)
	assert.Equal(t, next, again)
	assert.Equal(t, EffectResolveRole, effect.Kind, "a repeated login asks again; the router drops it while one is in flight")

	_, _, err = Next(Session{Screen: Login()}, Event{Type: EventLoginSucceeded})
	assert.ErrorIs(t, err, ErrMissingIdentifier)
}

func TestNext_LogoutClearsSession(t *testing.T) {
	s := patientSession(Main(models.RolePatient))
	s.SelectedID, s.SelectedName = "d-9", "Dr. Q"

	next, _, err := Next(s, Event{Type: EventLogout})

	require.NoError(t, err)
	assert.Equal(t, Session{Screen: Login()}, next)
}

func TestNext_PatientStartVideoCall(t *testing.T) {
	s := patientSession(Main(models.RolePatient))
	s.SelectedID = "d-9"

	next, effect, err := Next(s, Event{Type: EventStartVideoCall})

	require.NoError(t, err)
	assert.Equal(t, s, next, "screen changes only after the recipient lookup")
	assert.Equal(t, Effect{
		Kind:        EffectStartCall,
		Channel:     "call_d-9_p-1",
		RecipientID: "d-9",
		CallerName:  "Pat",
	}, effect)
}

func TestNext_PatientStartVideoCallPreconditions(t *testing.T) {
	tests := []struct {
		name    string
		session Session
	}{
		{"no selected doctor", Session{UserID: "p-1", Screen: Main(models.RolePatient)}},
		{"no user", Session{SelectedID: "d-9", Screen: Main(models.RolePatient)}},
		{"neither", Session{Screen: Main(models.RolePatient)}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, effect, err := Next(tt.session, Event{Type: EventStartVideoCall})

			assert.ErrorIs(t, err, ErrMissingIdentifier)
			assert.Equal(t, tt.session, next)
			assert.Equal(t, EffectNone, effect.Kind)
		})
	}
}

func TestNext_DoctorStartVideoCall(t *testing.T) {
	s := doctorSession(Main(models.RoleDoctor))
	s.SelectedID = "p-5"

	_, effect, err := Next(s, Event{Type: EventStartVideoCall})
	require.NoError(t, err)
	assert.Equal(t, "call_d-1_p-5", effect.Channel)
	assert.Equal(t, "p-5", effect.RecipientID)
	assert.Equal(t, "Dr. Lee", effect.CallerName)

	_, effect, err = Next(Session{Screen: Main(models.RoleDoctor)}, Event{Type: EventStartVideoCall})
	require.NoError(t, err)
	assert.Equal(t, "call_doctor_patient", effect.Channel)
	assert.Empty(t, effect.RecipientID)
	assert.Equal(t, DefaultCallerName, effect.CallerName)
}

func TestNext_UnknownRoleGetsPatientDashboard(t *testing.T) {
	next, _, err := Next(Session{Screen: Main("nurse")}, Event{Type: EventViewPrescriptions})

	require.NoError(t, err)
	assert.Equal(t, ViewPrescriptions(), next.Screen)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, Register(), Initial(""))
	assert.Equal(t, VideoCall("call_42_7"), Initial("call_42_7"))
}

func TestParseEventType(t *testing.T) {
	et, err := ParseEventType("startVideoCall")
	require.NoError(t, err)
	assert.Equal(t, EventStartVideoCall, et)

	_, err = ParseEventType("jump")
	assert.ErrorIs(t, err, ErrUnknownEvent)
}

func TestScreen_JSON(t *testing.T) {
	raw, err := json.Marshal(Main(models.RoleDoctor))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"main","role":"doctor"}`, string(raw))

	raw, err = json.Marshal(VideoCall("call_42_7"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"videoCall","channelName":"call_42_7"}`, string(raw))

	raw, err = json.Marshal(Login())
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"login"}`, string(raw))
}

func TestScreen_String(t *testing.T) {
	assert.Equal(t, "writePrescription(p-5)", WritePrescription("p-5").String())
	assert.Equal(t, "selectDoctor", SelectDoctor().String())
	assert.Equal(t, "kind(99)", Kind(99).String())
}
