package model

// Patient is a patient record as exposed by the patient service.
type Patient struct {
	ID         int64  `json:"id"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Email      string `json:"email"`
	Phone      string `json:"phone,omitempty"`
	HospitalID int64  `json:"hospital_id,omitempty"`
}

// FullName returns "First Last" for display.
func (p Patient) FullName() string {
	return p.FirstName + " " + p.LastName
}

// Hospital is a facility record, used when registering patients.
type Hospital struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}
