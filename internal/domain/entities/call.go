package entities

// Transcript speaker roles. The doctor (trainee) maps to "human"; the
// simulated patient maps to "assistant".
const (
	SpeakerHuman     = "human"
	SpeakerAssistant = "assistant"
)

// TranscriptTurn is one turn of a normalized consultation transcript
type TranscriptTurn struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
}

// CallDetails is a voice-provider call record with its transcript normalized
// into a uniform turn list
type CallDetails struct {
	CallID     string           `json:"call_id"`
	Status     string           `json:"status"`
	Duration   float64          `json:"duration,omitempty"`
	Transcript []TranscriptTurn `json:"transcript"`
}
