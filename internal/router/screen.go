package router

import (
	"encoding/json"
	"fmt"

	"medihelp-server/internal/models"
)

// Kind identifies a screen variant.
type Kind int

const (
	KindRegister Kind = iota
	KindLogin
	KindDoctorRegister
	KindMain
	KindBookAppointment
	KindViewPrescriptions
	KindManageAppointments
	KindWritePrescription
	KindSelectDoctor
	KindSelectPatient
	KindVideoCall
)

// Kinds lists every variant in declaration order.
var Kinds = []Kind{
	KindRegister,
	KindLogin,
	KindDoctorRegister,
	KindMain,
	KindBookAppointment,
	KindViewPrescriptions,
	KindManageAppointments,
	KindWritePrescription,
	KindSelectDoctor,
	KindSelectPatient,
	KindVideoCall,
}

var kindNames = map[Kind]string{
	KindRegister:           "register",
	KindLogin:              "login",
	KindDoctorRegister:     "doctorRegister",
	KindMain:               "main",
	KindBookAppointment:    "bookAppointment",
	KindViewPrescriptions:  "viewPrescriptions",
	KindManageAppointments: "manageAppointments",
	KindWritePrescription:  "writePrescription",
	KindSelectDoctor:       "selectDoctor",
	KindSelectPatient:      "selectPatient",
	KindVideoCall:          "videoCall",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Screen is the active view. Only the payload field belonging to Kind is set:
// Role for Main, DoctorID for BookAppointment, PatientID for
// WritePrescription, ChannelName for VideoCall.
type Screen struct {
	Kind        Kind
	Role        models.Role
	DoctorID    string
	PatientID   string
	ChannelName string
}

// Variant constructors.

func Register() Screen       { return Screen{Kind: KindRegister} }
func Login() Screen          { return Screen{Kind: KindLogin} }
func DoctorRegister() Screen { return Screen{Kind: KindDoctorRegister} }
func SelectDoctor() Screen   { return Screen{Kind: KindSelectDoctor} }
func SelectPatient() Screen  { return Screen{Kind: KindSelectPatient} }

func ViewPrescriptions() Screen  { return Screen{Kind: KindViewPrescriptions} }
func ManageAppointments() Screen { return Screen{Kind: KindManageAppointments} }

func Main(role models.Role) Screen {
	return Screen{Kind: KindMain, Role: role}
}

func BookAppointment(doctorID string) Screen {
	return Screen{Kind: KindBookAppointment, DoctorID: doctorID}
}

func WritePrescription(patientID string) Screen {
	return Screen{Kind: KindWritePrescription, PatientID: patientID}
}

func VideoCall(channelName string) Screen {
	return Screen{Kind: KindVideoCall, ChannelName: channelName}
}

// Initial is the screen a freshly launched session starts on: the call
// screen when launched from a call notification, registration otherwise.
func Initial(launchChannel string) Screen {
	if launchChannel != "" {
		return VideoCall(launchChannel)
	}
	return Register()
}

// IsDoctorHome reports whether s is the doctor dashboard. Any other role gets
// the patient dashboard.
func (s Screen) IsDoctorHome() bool {
	return s.Kind == KindMain && s.Role == models.RoleDoctor
}

func (s Screen) String() string {
	switch s.Kind {
	case KindMain:
		return fmt.Sprintf("main(%s)", s.Role)
	case KindBookAppointment:
		return fmt.Sprintf("bookAppointment(%s)", s.DoctorID)
	case KindWritePrescription:
		return fmt.Sprintf("writePrescription(%s)", s.PatientID)
	case KindVideoCall:
		return fmt.Sprintf("videoCall(%s)", s.ChannelName)
	}
	return s.Kind.String()
}

type screenJSON struct {
	Name        string      `json:"name"`
	Role        models.Role `json:"role,omitempty"`
	DoctorID    string      `json:"doctorId,omitempty"`
	PatientID   string      `json:"patientId,omitempty"`
	ChannelName string      `json:"channelName,omitempty"`
}

func (s Screen) MarshalJSON() ([]byte, error) {
	return json.Marshal(screenJSON{
		Name:        s.Kind.String(),
		Role:        s.Role,
		DoctorID:    s.DoctorID,
		PatientID:   s.PatientID,
		ChannelName: s.ChannelName,
	})
}
