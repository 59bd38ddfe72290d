package entities

import "time"

// ICEType classifies an ICE entry (Ideas, Concerns, Expectations)
type ICEType string

const (
	ICETypeIdea        ICEType = "IDEA"
	ICETypeConcern     ICEType = "CONCERN"
	ICETypeExpectation ICEType = "EXPECTATION"
	ICETypeMixed       ICEType = "MIXED"
)

// Valid reports whether the ICE type is one of the known values
func (t ICEType) Valid() bool {
	switch t {
	case ICETypeIdea, ICETypeConcern, ICETypeExpectation, ICETypeMixed:
		return true
	}
	return false
}

// DivulgenceType classifies how a piece of patient information surfaces
type DivulgenceType string

const (
	DivulgenceFreely           DivulgenceType = "FREELY_DIVULGED"
	DivulgenceSpecificallyAsked DivulgenceType = "SPECIFICALLY_ASKED"
)

// Valid reports whether the divulgence type is one of the known values
func (t DivulgenceType) Valid() bool {
	return t == DivulgenceFreely || t == DivulgenceSpecificallyAsked
}

// Gender is the optional patient gender on a case
type Gender string

const (
	GenderMale   Gender = "MALE"
	GenderFemale Gender = "FEMALE"
	GenderOther  Gender = "OTHER"
)

// Valid reports whether the gender is one of the known values
func (g Gender) Valid() bool {
	return g == GenderMale || g == GenderFemale || g == GenderOther
}

// Case is a patient scenario a trainee consults against. The patient-side
// fields (ICE, background, divulged information) are hidden from the trainee
// and drive scoring; DoctorInfo is the trainee-facing briefing.
type Case struct {
	ID                  string                 `json:"id" db:"id"`
	CaseNumber          string                 `json:"case_number" db:"case_number"`
	PatientName         string                 `json:"patient_name,omitempty" db:"patient_name"`
	PatientAge          *int                   `json:"patient_age,omitempty" db:"patient_age"`
	PatientGender       Gender                 `json:"patient_gender,omitempty" db:"patient_gender"`
	PresentingComplaint string                 `json:"presenting_complaint" db:"presenting_complaint"`
	Notes               string                 `json:"notes,omitempty" db:"notes"`
	ICEEntries          []ICEEntry             `json:"ice_entries"`
	BackgroundDetails   []BackgroundDetail     `json:"background_details"`
	InformationDivulged []InformationDivulged  `json:"information_divulged"`
	DoctorInfo          *DoctorInfo            `json:"doctor_info,omitempty"`
	CreatedAt           time.Time              `json:"created_at" db:"created_at"`
	UpdatedAt           time.Time              `json:"updated_at" db:"updated_at"`
}

// CaseSummary is the list-view projection of a case, without children
type CaseSummary struct {
	ID                  string    `json:"id" db:"id"`
	CaseNumber          string    `json:"case_number" db:"case_number"`
	PatientName         string    `json:"patient_name,omitempty" db:"patient_name"`
	PatientAge          *int      `json:"patient_age,omitempty" db:"patient_age"`
	PresentingComplaint string    `json:"presenting_complaint" db:"presenting_complaint"`
	Notes               string    `json:"notes,omitempty" db:"notes"`
	CreatedAt           time.Time `json:"created_at" db:"created_at"`
}

// ICEEntry is one idea, concern or expectation attached to a case
type ICEEntry struct {
	ID          string    `json:"id" db:"id"`
	CaseID      string    `json:"case_id" db:"case_id"`
	ICEType     ICEType   `json:"ice_type" db:"ice_type"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// BackgroundDetail is a free-text background fact about a case
type BackgroundDetail struct {
	ID        string    `json:"id" db:"id"`
	CaseID    string    `json:"case_id" db:"case_id"`
	Detail    string    `json:"detail" db:"detail"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// InformationDivulged is a fact the simulated patient reveals, either freely
// or only when asked directly
type InformationDivulged struct {
	ID             string         `json:"id" db:"id"`
	CaseID         string         `json:"case_id" db:"case_id"`
	DivulgenceType DivulgenceType `json:"divulgence_type" db:"divulgence_type"`
	Description    string         `json:"description" db:"description"`
	CreatedAt      time.Time      `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at" db:"updated_at"`
}

// DoctorInfo is the briefing shown to the trainee before the consultation,
// distinct from the hidden patient-side data. At most one per case.
type DoctorInfo struct {
	ID                 string    `json:"id" db:"id"`
	CaseID             string    `json:"case_id" db:"case_id"`
	Name               string    `json:"name" db:"name"`
	Age                *int      `json:"age,omitempty" db:"age"`
	PastMedicalHistory string    `json:"past_medical_history,omitempty" db:"past_medical_history"`
	CurrentMedication  string    `json:"current_medication,omitempty" db:"current_medication"`
	Context            string    `json:"context,omitempty" db:"context"`
	CreatedAt          time.Time `json:"created_at" db:"created_at"`
	UpdatedAt          time.Time `json:"updated_at" db:"updated_at"`
}

// Summary returns the case's list-view projection
func (c *Case) Summary() CaseSummary {
	return CaseSummary{
		ID:                  c.ID,
		CaseNumber:          c.CaseNumber,
		PatientName:         c.PatientName,
		PatientAge:          c.PatientAge,
		PresentingComplaint: c.PresentingComplaint,
		Notes:               c.Notes,
		CreatedAt:           c.CreatedAt,
	}
}
