package model

// Contact kinds shown on the contacts screen.
const (
	ContactCaregiver = "caregiver"
	ContactEmergency = "emergency"
	ContactHospital  = "hospital"
)

// Contact is a phone contact the user can reach from the contacts screen.
type Contact struct {
	Name  string `mapstructure:"name" yaml:"name"`
	Phone string `mapstructure:"phone" yaml:"phone"`
	Kind  string `mapstructure:"kind" yaml:"kind"`
	Note  string `mapstructure:"note" yaml:"note"`
}

// DefaultContacts mirrors the stock contacts list: a caregiver, the
// national emergency number and a placeholder for the nearest hospital.
func DefaultContacts() []Contact {
	return []Contact{
		{Name: "Caregiver (family)", Phone: "081-234-5678", Kind: ContactCaregiver},
		{Name: "Emergency", Phone: "1669", Kind: ContactEmergency, Note: "Call an ambulance now"},
		{Name: "Nearby hospital", Kind: ContactHospital, Note: "Details coming soon"},
	}
}
