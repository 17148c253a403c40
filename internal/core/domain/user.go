package domain

import "time"

const (
	DefaultLoginName       = "Dr. John Doe"
	DefaultLoginRole       = "Attending Physician"
	DefaultMedicalID       = "MD-8872-XP"
	DefaultSpecialty       = "General Practice"
	DefaultProfilePhotoURL = "https://images.unsplash.com/photo-1612349317150-e413f6a5b16d?auto=format&fit=crop&q=80&w=200&h=200"
)

type User struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Role            string    `json:"role"`
	MedicalID       string    `json:"medical_id"`
	Email           string    `json:"email,omitempty"`
	PhotoURL        string    `json:"photo_url"`
	IsAuthenticated bool      `json:"is_authenticated"`
	JoinedAt        time.Time `json:"joined_at"`
}

type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

type LoginRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	MedicalID string `json:"medical_id"`
}

type SignupRequest struct {
	FirstName       string `json:"first_name"`
	LastName        string `json:"last_name"`
	Email           string `json:"email"`
	MedicalID       string `json:"medical_id"`
	Specialty       string `json:"specialty"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
}

type Profile struct {
	User        User `json:"user"`
	ReportCount int  `json:"report_count"`
}

type NetworkStat struct {
	Label string `json:"label"`
	Value string `json:"value"`
	Color string `json:"color"`
}

type Dashboard struct {
	User                   User          `json:"user"`
	TotalReports           int           `json:"total_reports"`
	CriticalReports        []Report      `json:"critical_reports"`
	HasUnreadNotifications bool          `json:"has_unread_notifications"`
	NetworkStats           []NetworkStat `json:"network_stats"`
}

// Reference holds the lookup tables the forms are built from.
type Reference struct {
	States       []string      `json:"states"`
	Specialties  []string      `json:"specialties"`
	Severities   []Severity    `json:"severities"`
	NetworkStats []NetworkStat `json:"network_stats"`
}

func (r Reference) HasState(state string) bool {
	return contains(r.States, state)
}

func (r Reference) HasSpecialty(specialty string) bool {
	return contains(r.Specialties, specialty)
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}

// DefaultReference returns the lookup tables used when no seed file overrides them.
func DefaultReference() Reference {
	return Reference{
		States:      []string{"Delhi", "Maharashtra", "Karnataka", "Tamil Nadu", "West Bengal", "Gujarat", "Other"},
		Specialties: []string{"General Practice", "Emergency Medicine", "Psychiatry", "Surgery", "Pediatrics", "Nursing", "Administration", "Other"},
		Severities:  append([]Severity(nil), Severities...),
		NetworkStats: []NetworkStat{
			{Label: "Reports", Value: "156", Color: "indigo"},
			{Label: "Doctors", Value: "1.2K", Color: "emerald"},
			{Label: "Alerts", Value: "89", Color: "rose"},
		},
	}
}
