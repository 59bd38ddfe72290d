package openai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/wahealth/sca-simulator/internal/domain/entities"
)

const scoringSystemPrompt = `You are an experienced RCGP SCA examiner. You assess recorded GP consultations against the three SCA domains and respond only with JSON matching the schema you are given. Score strictly on the evidence in the transcript.`

const generationSystemPrompt = `You are a medical educator who writes realistic UK general practice consultation scenarios. Respond only with JSON.`

const generateCasePrompt = `Generate a new simulated patient case for GP consultation training.

Return a JSON object with exactly these keys:
{
  "name": "patient first name",
  "age": patient age as an integer,
  "presenting": "one sentence presenting complaint in the patient's own words",
  "context": "two or three sentences of relevant social and medical context"
}

The case should be common in UK general practice and suitable for a 12 minute consultation.`

// scoringRubric is the marking guidance appended to every scoring prompt.
const scoringRubric = `SCORING RUBRIC (score each domain 1-5):

Data Gathering, Technical and Assessment Skills
- 5: Systematic history targeted to the presenting complaint; excludes red flags; elicits hidden agenda; uses the patient's records and briefing effectively.
- 3: Adequate but unfocused history; some relevant questions missed; red flags partially explored.
- 1: Disorganised or formulaic questioning; fails to gather the information needed to assess the problem.

Clinical Management Skills
- 5: Safe, evidence-based management plan; appropriate prescribing, referral and follow-up; clear safety-netting.
- 3: Reasonable plan with gaps; safety-netting vague or incomplete.
- 1: Unsafe, absent or inappropriate management; no safety-netting.

Relating to Others (Interpersonal Skills)
- 5: Explores the patient's ideas, concerns and expectations; shares decisions; clear jargon-free explanations; responds to cues.
- 3: Some rapport and explanation but consultation remains doctor-centred; cues missed.
- 1: Dismissive or mechanical; patient's perspective not sought.`

// BuildScoringPrompt assembles the deterministic evaluation prompt from the
// case record and transcript. Item IDs are echoed into the prompt so the
// evaluator can address each one in its coverage analysis.
func BuildScoringPrompt(transcript string, cs *entities.Case) string {
	var b strings.Builder

	b.WriteString("Assess the following GP consultation.\n\n")

	b.WriteString("CASE DETAILS:\n")
	fmt.Fprintf(&b, "Case number: %s\n", cs.CaseNumber)
	if cs.PatientName != "" {
		fmt.Fprintf(&b, "Patient name: %s\n", cs.PatientName)
	}
	if cs.PatientAge != nil {
		fmt.Fprintf(&b, "Patient age: %d\n", *cs.PatientAge)
	}
	if cs.PatientGender != "" {
		fmt.Fprintf(&b, "Patient gender: %s\n", cs.PatientGender)
	}
	fmt.Fprintf(&b, "Presenting complaint: %s\n", cs.PresentingComplaint)
	if cs.Notes != "" {
		fmt.Fprintf(&b, "Notes: %s\n", cs.Notes)
	}

	if cs.DoctorInfo != nil {
		b.WriteString("\nINFORMATION AVAILABLE TO THE DOCTOR BEFORE THE CONSULTATION:\n")
		fmt.Fprintf(&b, "Name: %s\n", cs.DoctorInfo.Name)
		if cs.DoctorInfo.Age != nil {
			fmt.Fprintf(&b, "Age: %d\n", *cs.DoctorInfo.Age)
		}
		if cs.DoctorInfo.PastMedicalHistory != "" {
			fmt.Fprintf(&b, "Past medical history: %s\n", cs.DoctorInfo.PastMedicalHistory)
		}
		if cs.DoctorInfo.CurrentMedication != "" {
			fmt.Fprintf(&b, "Current medication: %s\n", cs.DoctorInfo.CurrentMedication)
		}
		if cs.DoctorInfo.Context != "" {
			fmt.Fprintf(&b, "Context: %s\n", cs.DoctorInfo.Context)
		}
	}

	if len(cs.ICEEntries) > 0 {
		b.WriteString("\nPATIENT'S IDEAS, CONCERNS AND EXPECTATIONS (hidden from the doctor):\n")
		for _, entry := range cs.ICEEntries {
			fmt.Fprintf(&b, "- [id: %s] [%s] %s\n", entry.ID, entry.ICEType, entry.Description)
		}
	}

	if len(cs.BackgroundDetails) > 0 {
		b.WriteString("\nBACKGROUND DETAILS (hidden from the doctor):\n")
		for _, detail := range cs.BackgroundDetails {
			fmt.Fprintf(&b, "- [id: %s] %s\n", detail.ID, detail.Detail)
		}
	}

	freely := make([]entities.InformationDivulged, 0, len(cs.InformationDivulged))
	onRequest := make([]entities.InformationDivulged, 0, len(cs.InformationDivulged))
	for _, info := range cs.InformationDivulged {
		if info.DivulgenceType == entities.DivulgenceFreely {
			freely = append(freely, info)
		} else {
			onRequest = append(onRequest, info)
		}
	}
	if len(freely) > 0 {
		b.WriteString("\nINFORMATION THE PATIENT VOLUNTEERS FREELY:\n")
		for _, info := range freely {
			fmt.Fprintf(&b, "- [id: %s] %s\n", info.ID, info.Description)
		}
	}
	if len(onRequest) > 0 {
		b.WriteString("\nINFORMATION THE PATIENT REVEALS ONLY IF ASKED DIRECTLY:\n")
		for _, info := range onRequest {
			fmt.Fprintf(&b, "- [id: %s] %s\n", info.ID, info.Description)
		}
	}

	b.WriteString("\n")
	b.WriteString(scoringRubric)

	b.WriteString("\n\nTRANSCRIPT:\n")
	b.WriteString(transcript)

	b.WriteString(`

Return a JSON object with exactly this structure:
{
  "scores": {
    "data_gathering": {"score": <1-5>, "examples": ["..."], "areas_for_improvement": ["..."]},
    "clinical_management": {"score": <1-5>, "examples": ["..."], "areas_for_improvement": ["..."]},
    "interpersonal_skills": {"score": <1-5>, "examples": ["..."], "areas_for_improvement": ["..."]}
  },
  "overall_score": <mean of the three domain scores>,
  "feedback": "<overall narrative feedback>",
  "coverage_analysis": {
    "ice_coverage": [{"id": "<entry id>", "ice_type": "...", "description": "...", "coverage_status": "COVERED|PARTIALLY_COVERED|NOT_COVERED", "evidence": "..."}],
    "information_coverage": [{"id": "<entry id>", "divulgence_type": "...", "description": "...", "coverage_status": "COVERED|PARTIALLY_COVERED|NOT_COVERED", "evidence": "..."}],
    "background_coverage": [{"id": "<entry id>", "description": "...", "coverage_status": "COVERED|PARTIALLY_COVERED|NOT_COVERED", "evidence": "..."}]
  }
}

Include one coverage entry per case item listed above, quoting its id. Use COVERED, PARTIALLY_COVERED or NOT_COVERED only.`)

	return b.String()
}

// ParseScoringResult decodes and validates an evaluator response. Missing
// sections and out-of-contract values are rejected; unrecognised fields are
// ignored.
func ParseScoringResult(data []byte) (*entities.ScoringResult, error) {
	var result entities.ScoringResult
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse scoring response: %w", err)
	}

	if result.Feedback == "" {
		return nil, fmt.Errorf("scoring response missing feedback")
	}

	if err := result.Validate(); err != nil {
		return nil, err
	}

	return &result, nil
}

// ParseGeneratedCase decodes a generated case, requiring the name and
// presenting complaint to be present.
func ParseGeneratedCase(data []byte) (*entities.GeneratedCase, error) {
	var generated entities.GeneratedCase
	if err := json.Unmarshal(data, &generated); err != nil {
		return nil, fmt.Errorf("failed to parse generated case: %w", err)
	}

	if generated.Name == "" || generated.Presenting == "" {
		return nil, fmt.Errorf("generated case missing required fields")
	}

	return &generated, nil
}
