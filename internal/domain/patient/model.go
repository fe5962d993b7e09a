package patient

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hengadev/errsx"
)

// Patient is one document in the patients collection. ID is the
// store-generated key; Identifier is assigned by the registering clinic and
// must be unique.
type Patient struct {
	ID               uuid.UUID `json:"id"`
	Identifier       string    `json:"identifier"`
	Name             string    `json:"name"`
	Age              int       `json:"age"`
	Gender           string    `json:"gender,omitempty"`
	AdmissionDate    string    `json:"admission_date,omitempty"`
	Condition        string    `json:"condition,omitempty"`
	Phone            string    `json:"phone,omitempty"`
	Email            string    `json:"email,omitempty"`
	Address          string    `json:"address,omitempty"`
	EmergencyContact string    `json:"emergency_contact,omitempty"`
	MedicalHistory   string    `json:"medical_history,omitempty"`
	Allergies        string    `json:"allergies,omitempty"`
	BloodType        string    `json:"blood_type,omitempty"`
	CreatedAt        time.Time `json:"created_at"`
}

// CreateRequest is the body accepted by POST /patients. The key and
// creation time are never taken from the caller.
type CreateRequest struct {
	Identifier       string `json:"identifier"`
	Name             string `json:"name"`
	Age              int    `json:"age"`
	Gender           string `json:"gender"`
	AdmissionDate    string `json:"admission_date"`
	Condition        string `json:"condition"`
	Phone            string `json:"phone"`
	Email            string `json:"email"`
	Address          string `json:"address"`
	EmergencyContact string `json:"emergency_contact"`
	MedicalHistory   string `json:"medical_history"`
	Allergies        string `json:"allergies"`
	BloodType        string `json:"blood_type"`
}

var bloodTypes = map[string]bool{
	"A+": true, "A-": true, "B+": true, "B-": true,
	"AB+": true, "AB-": true, "O+": true, "O-": true,
}

// Normalize trims surrounding whitespace from every text field.
func (r *CreateRequest) Normalize() {
	for _, f := range []*string{
		&r.Identifier, &r.Name, &r.Gender, &r.AdmissionDate, &r.Condition,
		&r.Phone, &r.Email, &r.Address, &r.EmergencyContact,
		&r.MedicalHistory, &r.Allergies, &r.BloodType,
	} {
		*f = strings.TrimSpace(*f)
	}
}

// Validate checks the request shape. The returned error is an errsx.Map
// keyed by JSON field name.
func (r *CreateRequest) Validate() error {
	var errs errsx.Map
	if r.Identifier == "" {
		errs.Set("identifier", "identifier is required")
	}
	if r.Name == "" {
		errs.Set("name", "name is required")
	}
	if r.Age < 0 || r.Age > 150 {
		errs.Set("age", "age must be between 0 and 150")
	}
	if r.AdmissionDate != "" && !validDate(r.AdmissionDate) {
		errs.Set("admission_date", "admission_date must be YYYY-MM-DD or RFC 3339")
	}
	if r.Email != "" && !strings.Contains(r.Email, "@") {
		errs.Set("email", "email is not a valid address")
	}
	if r.BloodType != "" && !bloodTypes[strings.ToUpper(r.BloodType)] {
		errs.Set("blood_type", "blood_type must be one of A+, A-, B+, B-, AB+, AB-, O+, O-")
	}
	return errs.AsError()
}

func validDate(s string) bool {
	if _, err := time.Parse("2006-01-02", s); err == nil {
		return true
	}
	_, err := time.Parse(time.RFC3339, s)
	return err == nil
}

// ToPatient builds the record to persist. The repository assigns ID and
// CreatedAt.
func (r *CreateRequest) ToPatient() *Patient {
	return &Patient{
		Identifier:       r.Identifier,
		Name:             r.Name,
		Age:              r.Age,
		Gender:           r.Gender,
		AdmissionDate:    r.AdmissionDate,
		Condition:        r.Condition,
		Phone:            r.Phone,
		Email:            r.Email,
		Address:          r.Address,
		EmergencyContact: r.EmergencyContact,
		MedicalHistory:   r.MedicalHistory,
		Allergies:        r.Allergies,
		BloodType:        strings.ToUpper(r.BloodType),
	}
}
