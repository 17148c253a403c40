package domain

import (
	"strings"
	"time"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

var Severities = []Severity{SeverityLow, SeverityMedium, SeverityHigh, SeverityCritical}

func ParseSeverity(raw string) (Severity, bool) {
	s := Severity(strings.ToUpper(strings.TrimSpace(raw)))
	for _, known := range Severities {
		if s == known {
			return s, true
		}
	}
	return "", false
}

// Escalated reports are broadcast as security alerts.
func (s Severity) Escalated() bool {
	return s == SeverityHigh || s == SeverityCritical
}

const (
	DefaultBehaviorType   = "Patient Safety Incident"
	AnonymousDoctorName   = "Anonymous Practitioner"
	FallbackReportSummary = "Report synced to network for verification."
	UnknownInitials       = "XX"
	DefaultContact        = "+91-"
	IncidentDateLayout    = "2006-01-02"
)

type Report struct {
	ID              string    `json:"id"`
	PatientInitials string    `json:"patient_initials"`
	IncidentDate    string    `json:"incident_date"`
	BehaviorType    string    `json:"behavior_type"`
	Severity        Severity  `json:"severity"`
	Description     string    `json:"description"`
	DoctorName      string    `json:"doctor_name"`
	ClinicID        string    `json:"clinic_id"`
	AISummary       string    `json:"ai_summary,omitempty"`
	State           string    `json:"state,omitempty"`
	City            string    `json:"city,omitempty"`
	ReporterID      string    `json:"-"`
	CreatedAt       time.Time `json:"created_at"`
}

// ReportSubmission is the report form as the user filled it in.
type ReportSubmission struct {
	PatientName  string `json:"patient_name"`
	PatientAge   int    `json:"patient_age"`
	State        string `json:"state"`
	City         string `json:"city"`
	IncidentDate string `json:"incident_date"`
	Severity     string `json:"severity"`
	Description  string `json:"description"`
	DoctorName   string `json:"doctor_name"`
	ClinicID     string `json:"clinic_id"`
	Contact      string `json:"contact"`
	Anonymous    bool   `json:"anonymous"`
}

type ReportFilter struct {
	Severity Severity
}

// ReportSharedEvent is published when a practitioner broadcasts a report.
type ReportSharedEvent struct {
	ReportID        string    `json:"report_id"`
	Severity        Severity  `json:"severity"`
	PatientInitials string    `json:"patient_initials"`
	ClinicID        string    `json:"clinic_id"`
	SharedBy        string    `json:"shared_by"`
	SharedByName    string    `json:"shared_by_name"`
	SharedAt        time.Time `json:"shared_at"`
}

// PatientInitials returns the upper-cased first letter of each word of name.
func PatientInitials(name string) string {
	fields := strings.Fields(name)
	if len(fields) == 0 {
		return UnknownInitials
	}
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)
		b.WriteString(strings.ToUpper(string(r[0])))
	}
	return b.String()
}
